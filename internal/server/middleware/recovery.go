package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/iudanet/vitrina/internal/server/handlers"
	"github.com/iudanet/vitrina/pkg/api"
)

// Recover turns a handler panic into a 500 with code XX000.
// Panic details and the stack go to the log only.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				// net/http сам обрывает соединение для ErrAbortHandler
				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}

				logger.Error("Handler panicked",
					"panic", v,
					"method", r.Method,
					"route", routeLabel(r.URL.Path),
					"stack", string(debug.Stack()),
				)
				handlers.SendError(w, http.StatusInternalServerError, api.CodeInternal, "internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
