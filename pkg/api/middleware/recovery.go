package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"shipdesk-hq/gateway/pkg/api/types"
)

// RecoveryMiddleware turns a panic in a handler into a 500 response. The
// panic value and stack are logged but never sent to the client.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				panic(err)
			}

			slog.ErrorContext(r.Context(), "panic in handler",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(types.NewErrorResponse(types.MsgInternal, nil))
		}()

		next.ServeHTTP(w, r)
	})
}
