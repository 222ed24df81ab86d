package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/vitrina/pkg/api"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

// RoleKey is the context key for the role of the authenticated API key
const RoleKey ContextKey = "role"

// KeyIssuer is put into the iss claim of generated keys
const KeyIssuer = "vitrina"

// ErrUnknownRole is returned for keys whose role claim is neither anon nor service_role
var ErrUnknownRole = errors.New("unknown role")

// KeyClaims представляет JWT claims API ключа
type KeyClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// KeyConfig содержит конфигурацию для подписи API ключей
type KeyConfig struct {
	Secret []byte
}

// ValidRole reports whether role is one of the roles known to the store
func ValidRole(role string) bool {
	return role == api.RoleAnon || role == api.RoleService
}

// GenerateAPIKey создает новый API ключ для роли
// ttl <= 0 creates a key without expiry
func GenerateAPIKey(cfg KeyConfig, role string, ttl time.Duration) (string, error) {
	if !ValidRole(role) {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	now := time.Now()
	claims := KeyClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    KeyIssuer,
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign key: %w", err)
	}

	return tokenString, nil
}

// ValidateAPIKey валидирует и парсит API ключ
func ValidateAPIKey(cfg KeyConfig, tokenString string) (*KeyClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &KeyClaims{}, func(token *jwt.Token) (any, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse key: %w", err)
	}

	claims, ok := token.Claims.(*KeyClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid key")
	}
	if !ValidRole(claims.Role) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, claims.Role)
	}

	return claims, nil
}

// WithRole returns a context carrying the key role
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, RoleKey, role)
}

// GetRole извлекает роль из контекста
func GetRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}
