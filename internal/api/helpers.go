package api

import (
	"context"
	"net/http"
	"net/url"
)

type rawPathKey struct{}

// markRawPath records whether the request was routed on its escaped path.
// chi matches on URL.RawPath when it is set, so path params arrive still
// escaped in that case and already decoded otherwise.
func markRawPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawPath != "" {
			r = r.WithContext(context.WithValue(r.Context(), rawPathKey{}, true))
		}
		next.ServeHTTP(w, r)
	})
}

// pathName returns the name carried by a path segment, decoded exactly once.
func pathName(ctx context.Context, segment string) string {
	if escaped, _ := ctx.Value(rawPathKey{}).(bool); !escaped {
		return segment
	}
	if name, err := url.PathUnescape(segment); err == nil {
		return name
	}
	return segment
}
