package csrf

import "context"

type ctxKey string

const (
	tokenKey      ctxKey = "csrf_token_ctx"
	validationKey ctxKey = "csrf_validation_ctx"
)

// contextWithToken returns a derived context that stores the given CSRF token.
func contextWithToken(ctx context.Context, tok string) context.Context {
	return context.WithValue(ctx, tokenKey, tok)
}

// tokenFromContext extracts the CSRF token from ctx, if present.
func tokenFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(tokenKey)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func contextWithValidation(ctx context.Context, vi ValidationInfo) context.Context {
	return context.WithValue(ctx, validationKey, vi)
}

// ValidationFromContext returns the ValidationInfo recorded by Protect for
// an unsafe request that passed validation.
func ValidationFromContext(ctx context.Context) (ValidationInfo, bool) {
	vi, ok := ctx.Value(validationKey).(ValidationInfo)
	return vi, ok
}
