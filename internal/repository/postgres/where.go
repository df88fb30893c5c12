package postgres

import (
	"strconv"
	"strings"
)

// where builds a positional-argument WHERE clause; '?' is replaced by $n.
type where struct {
	parts []string
	args  []any
}

func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.parts = append(w.parts, strings.Replace(cond, "?", "$"+strconv.Itoa(len(w.args)), 1))
}

// addAny ORs conds that all share one argument.
func (w *where) addAny(conds []string, arg any) {
	w.args = append(w.args, arg)
	n := "$" + strconv.Itoa(len(w.args))
	ors := make([]string, len(conds))
	for i, c := range conds {
		ors[i] = strings.Replace(c, "?", n, 1)
	}
	w.parts = append(w.parts, "("+strings.Join(ors, " OR ")+")")
}

func (w *where) sql() string {
	if len(w.parts) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.parts, " AND ")
}

// page appends LIMIT/OFFSET placeholders.
func (w *where) page(limit, offset int) string {
	w.args = append(w.args, limit, offset)
	n := len(w.args)
	return " LIMIT $" + strconv.Itoa(n-1) + " OFFSET $" + strconv.Itoa(n)
}
