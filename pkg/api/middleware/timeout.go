package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"shipdesk-hq/gateway/pkg/api/types"
)

// TimeoutMiddleware bounds each request with a context deadline. Handlers
// and every outbound call they make observe the deadline through the
// request context. If the deadline passes and the handler returned without
// writing a response, a 504 is written.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			if !rw.written && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				rw.Header().Set("Content-Type", "application/json")
				rw.WriteHeader(http.StatusGatewayTimeout)
				_ = json.NewEncoder(rw).Encode(types.NewErrorResponse(types.MsgTimeout, ctx.Err().Error()))
			}
		})
	}
}
