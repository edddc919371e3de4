package search

import "context"

// Searcher defines the minimal search API used by the session and the TUI.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// SearcherFunc adapts a plain function to the Searcher interface.
type SearcherFunc func(ctx context.Context, query string) ([]Result, error)

func (f SearcherFunc) Search(ctx context.Context, query string) ([]Result, error) {
	return f(ctx, query)
}

type requestIDKey struct{}

// WithRequestID attaches a request id that the client forwards as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id stored in ctx, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
