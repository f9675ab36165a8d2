package middleware

import "context"

type contextKey string

const ctxAccount contextKey = "account"

// AccountFromContext returns the checksummed caller address set by Auth.
func AccountFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccount).(string); ok {
		return v
	}
	return ""
}

// WithAccount injects the caller address into the context.
func WithAccount(ctx context.Context, account string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccount, account)
}
