package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	assert.NoError(t, Collect(Required("name", "x"), Email("email", "a@b.io")))

	err := Collect(
		Required("name", "  "),
		Email("email", "nope"),
		MinLen("password", "abc", 8),
		OneOf("priority", "asap", "low", "high"),
		MaxLen("title", "abcdef", 3),
		If(true, "provider_id", "unknown provider"),
	)
	var errs Errs
	require.True(t, errors.As(err, &errs))
	require.Len(t, errs, 6)
	assert.Equal(t, ErrField{Field: "name", Msg: "required"}, errs[0])
	assert.Equal(t, "email", errs[1].Field)
	assert.Equal(t, "must be at least 8 characters", errs[2].Msg)
	assert.Equal(t, "must be one of low, high", errs[3].Msg)
	assert.Contains(t, err.Error(), "name: required; email: invalid email")
}

func TestOneOfAllowsEmpty(t *testing.T) {
	assert.Nil(t, OneOf("priority", "", "low"))
}
