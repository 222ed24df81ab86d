// Package api содержит типы и константы REST протокола, общие для клиента и сервера
package api

// RestPrefix is the path prefix of table endpoints: /rest/v1/{table}
const RestPrefix = "/rest/v1/"

// HeaderAPIKey carries the API key; Authorization: Bearer is accepted as well
const HeaderAPIKey = "apikey"

// Tables served by the record store
const (
	TableProducts   = "products"
	TableCategories = "categories"
	TableAttributes = "attributes"
)

// Error codes returned in ErrorResponse.Code
const (
	CodeUndefinedTable   = "42P01"    // неизвестная таблица
	CodeBadRequest       = "PGRST100" // некорректный фильтр или сортировка
	CodeInvalidBody      = "PGRST102" // некорректное тело запроса
	CodeUnauthorized     = "PGRST301" // отсутствует или недействителен API ключ
	CodeInsufficientPriv = "42501"    // ключ не дает права на запись
	CodeCheckViolation   = "23514"    // запись не прошла проверку схемы
	CodeInternal         = "XX000"    // ошибка хранилища
	CodeRateLimited      = "PGRST429"
)

// PreferRepresentation asks write endpoints to return the affected rows
const PreferRepresentation = "return=representation"

// Roles carried by API keys
const (
	RoleAnon    = "anon"         // только чтение
	RoleService = "service_role" // чтение и запись
)

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Code    string `json:"code"`              // машиночитаемый код ошибки
	Message string `json:"message"`           // описание ошибки
	Details string `json:"details,omitempty"` // подробности
	Hint    string `json:"hint,omitempty"`    // подсказка по исправлению
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
