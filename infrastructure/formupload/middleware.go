package formupload

import (
	"context"
	"net/http"

	"drive-upload-relay/domain/distribution"
)

type contextKey struct{}

// WithFiles adds staged file descriptors to the context
func WithFiles(ctx context.Context, files []distribution.FileDescriptor) context.Context {
	return context.WithValue(ctx, contextKey{}, files)
}

// FilesFrom returns the staged file descriptors from the context
func FilesFrom(ctx context.Context) []distribution.FileDescriptor {
	files, _ := ctx.Value(contextKey{}).([]distribution.FileDescriptor)
	return files
}

// ErrorHandler writes the response for a request whose body could not be parsed
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Middleware stages the request's files before calling next
func Middleware(p *Parser, onError ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			files, err := p.Parse(r)
			if err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithFiles(r.Context(), files)))
		})
	}
}
