package utils

import "context"

type contextKey string

const (
	UserEmailKey contextKey = "email"
	UserRoleKey  contextKey = "role"

	internalRequestKey contextKey = "internal_request"
)

// SetUserContext sets the authenticated caller into context (called by middleware).
func SetUserContext(ctx context.Context, email string, role string) context.Context {
	ctx = context.WithValue(ctx, UserEmailKey, email)
	ctx = context.WithValue(ctx, UserRoleKey, role)
	return ctx
}

func GetUserEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(UserEmailKey).(string)
	return email
}

func GetUserRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(UserRoleKey).(string)
	return role
}

func WithInternalRequest(ctx context.Context) context.Context {
	return context.WithValue(ctx, internalRequestKey, true)
}

func IsInternalRequest(ctx context.Context) bool {
	internal, _ := ctx.Value(internalRequestKey).(bool)
	return internal
}
