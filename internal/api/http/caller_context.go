package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/execution-hub/supervisor/internal/application/orchestrator"
)

type callerContextKey string

const callerKey callerContextKey = "callerContext"

const (
	headerUserID    = "X-User-ID"
	headerSessionID = "X-Session-ID"
)

// callerContext copies caller identity headers into an opaque map that is
// handed to the engine unchanged. Credentials are never inspected.
func (s *Server) callerContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := map[string]string{}
		if id := middleware.GetReqID(r.Context()); id != "" {
			caller[orchestrator.CallerRequestID] = id
		}
		if v := strings.TrimSpace(r.Header.Get(headerUserID)); v != "" {
			caller[orchestrator.CallerUserID] = v
		}
		if v := strings.TrimSpace(r.Header.Get(headerSessionID)); v != "" {
			caller[orchestrator.CallerSessionID] = v
		}
		next.ServeHTTP(w, r.WithContext(withCallerContext(r.Context(), caller)))
	})
}

func withCallerContext(ctx context.Context, caller map[string]string) context.Context {
	if caller == nil {
		return ctx
	}
	return context.WithValue(ctx, callerKey, caller)
}

func callerContextFrom(ctx context.Context) map[string]string {
	if v, ok := ctx.Value(callerKey).(map[string]string); ok {
		out := make(map[string]string, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out
	}
	return map[string]string{}
}
