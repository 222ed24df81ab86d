package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/vitrina/internal/server/handlers"
	"github.com/iudanet/vitrina/pkg/api"
)

// AuthMiddleware создает middleware для проверки API ключа
// Ключ читается из заголовка apikey, затем из Authorization: Bearer.
// Ключ с ролью anon допускает только чтение.
func AuthMiddleware(logger *slog.Logger, keyConfig handlers.KeyConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := extractKey(r)
			if !ok {
				logger.Warn("Missing API key", "path", r.URL.Path)
				handlers.SendError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing API key")
				return
			}

			// Валидируем ключ
			claims, err := handlers.ValidateAPIKey(keyConfig, key)
			if err != nil {
				logger.Warn("Invalid API key", "error", err)
				handlers.SendError(w, http.StatusUnauthorized, api.CodeUnauthorized, "invalid API key")
				return
			}

			if claims.Role != api.RoleService && !readOnly(r.Method) {
				logger.Warn("Write rejected for read-only key", "method", r.Method, "path", r.URL.Path)
				handlers.SendError(w, http.StatusForbidden, api.CodeInsufficientPriv, "permission denied: key is read-only")
				return
			}

			logger.Debug("Key authenticated", "role", claims.Role)

			// Передаем запрос дальше с ролью в контексте
			next.ServeHTTP(w, r.WithContext(handlers.WithRole(r.Context(), claims.Role)))
		})
	}
}

func extractKey(r *http.Request) (string, bool) {
	if key := strings.TrimSpace(r.Header.Get(api.HeaderAPIKey)); key != "" {
		return key, true
	}

	// Ожидаем формат: "Bearer <token>"
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	key := strings.TrimSpace(parts[1])
	return key, key != ""
}

func readOnly(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}
