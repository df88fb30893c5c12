package middleware

import "context"

type userKey struct{}

// UserCtx is the authenticated caller as carried in the access token.
type UserCtx struct {
	UserID    string
	Role      string
	CompanyID string
}

func WithUser(ctx context.Context, u UserCtx) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

func FromCtx(ctx context.Context) (UserCtx, bool) {
	u, ok := ctx.Value(userKey{}).(UserCtx)
	return u, ok && u.UserID != ""
}
