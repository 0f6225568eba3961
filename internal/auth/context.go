package auth

import (
	"context"

	"github.com/mind-engage/mindengage-tasks/internal/rbac"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// WithUser stores u in ctx and mirrors its role for rbac.
func WithUser(ctx context.Context, u User) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUser, u)
	return rbac.WithRole(ctx, u.Role)
}

func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(User)
	return u, ok
}
