package middleware

import "context"

// GetEmail retrieves the authenticated user's e-mail from the context, if the
// token carried one.
func GetEmail(ctx context.Context) string {
	email, _ := ctx.Value(ContextKeyEmail).(string)
	return email
}

func contextWithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, ContextKeyEmail, email)
}

// WithEmail injects an e-mail claim into a context for tests.
func WithEmail(ctx context.Context, email string) context.Context {
	return contextWithEmail(ctx, email)
}
