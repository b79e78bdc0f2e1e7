package clinicctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// ClinicContextKey is the request context key for the active clinic ID.
type ClinicContextKey struct{}

// UserContextKey is the request context key for the authenticated user ID.
type UserContextKey struct{}

// WithClinicID stores the clinic ID in the context.
func WithClinicID(ctx context.Context, clinicID snowflake.ID) context.Context {
	return context.WithValue(ctx, ClinicContextKey{}, clinicID)
}

// WithUserID stores the authenticated user ID in the context.
func WithUserID(ctx context.Context, userID snowflake.ID) context.Context {
	return context.WithValue(ctx, UserContextKey{}, userID)
}

// ClinicIDFromContext returns the clinic ID from context, if set.
func ClinicIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	return idFromValue(ctx.Value(ClinicContextKey{}))
}

// UserIDFromContext returns the authenticated user ID from context, if set.
func UserIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	return idFromValue(ctx.Value(UserContextKey{}))
}

func idFromValue(value any) (snowflake.ID, bool) {
	switch typed := value.(type) {
	case int64:
		return snowflake.ID(typed), true
	case snowflake.ID:
		return typed, true
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}
