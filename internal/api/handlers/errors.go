package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/baharkarakas/jobcard-backend/internal/api/httpx"
	"github.com/baharkarakas/jobcard-backend/internal/middleware"
	"github.com/baharkarakas/jobcard-backend/internal/models"
	"github.com/baharkarakas/jobcard-backend/internal/services"
	"github.com/baharkarakas/jobcard-backend/internal/validate"
)

type errMapping struct {
	target error
	status int
	code   string
}

var errTable = []errMapping{
	{services.ErrNotFound, http.StatusNotFound, "not_found"},
	{services.ErrForbidden, http.StatusForbidden, "forbidden"},
	{services.ErrConflict, http.StatusConflict, "conflict"},
	{services.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{services.ErrAccountDisabled, http.StatusForbidden, "account_disabled"},
	{services.ErrCompanyLocked, http.StatusForbidden, "company_locked"},
	{services.ErrCompanyNotApproved, http.StatusForbidden, "company_not_approved"},
	{services.ErrUnsupportedMedia, http.StatusUnsupportedMediaType, "unsupported_media_type"},
	{services.ErrTooLarge, http.StatusRequestEntityTooLarge, "too_large"},
	{httpx.ErrBadJSON, http.StatusBadRequest, "bad_request"},
}

// writeErr maps service errors to HTTP responses; anything unknown is a 500.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validate.Errs
	if errors.As(err, &verrs) {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "validation_failed", "validation failed", verrs)
		return
	}
	for _, m := range errTable {
		if errors.Is(err, m.target) {
			httpx.WriteError(w, m.status, m.code, err.Error(), nil)
			return
		}
	}
	slog.Error("unhandled error", "err", err, "path", r.URL.Path, "request_id", middleware.RequestIDFrom(r.Context()))
	httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
}

func principal(r *http.Request) services.Principal {
	u, _ := middleware.FromCtx(r.Context())
	return services.Principal{UserID: u.UserID, Role: models.Role(u.Role), CompanyID: u.CompanyID}
}

func page(r *http.Request) (limit, offset int) {
	return httpx.QueryInt(r, "limit", 50), httpx.QueryInt(r, "offset", 0)
}

func query(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}
