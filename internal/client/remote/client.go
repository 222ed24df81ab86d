// Package remote is the HTTP adapter to the hosted record store.
// Every call returns an explicit Result: transport failures and HTTP errors
// are reported through Result.Err, never as a Go error or a panic.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/vitrina/pkg/api"
)

// DefaultTimeout bounds a single request to the record store.
const DefaultTimeout = 30 * time.Second

// Client представляет HTTP клиент для взаимодействия с хранилищем записей
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient создает новый клиент хранилища
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем ключ при редиректе
				if len(via) > 0 {
					if key := via[0].Header.Get(api.HeaderAPIKey); key != "" {
						req.Header.Set(api.HeaderAPIKey, key)
						req.Header.Set("Authorization", "Bearer "+key)
					}
				}
				return nil
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the record store address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health проверяет доступность хранилища
func (c *Client) Health(ctx context.Context) Result[api.HealthResponse] {
	var resp api.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &resp); err != nil {
		return Fail[api.HealthResponse](err)
	}
	return OK(resp)
}

// do выполняет HTTP запрос и декодирует ответ в result
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, result any) *Error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return &Error{Code: CodeEncode, Message: "failed to marshal request body", Details: err.Error()}
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return &Error{Code: CodeNetwork, Message: "failed to create request", Details: err.Error()}
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", api.PreferRepresentation)
	}
	if c.apiKey != "" {
		req.Header.Set(api.HeaderAPIKey, c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Code: CodeNetwork, Message: "request failed", Details: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: resp.StatusCode, Code: CodeNetwork, Message: "failed to read response body", Details: err.Error()}
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, respBody)
	}

	// Декодируем успешный ответ
	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &Error{Status: resp.StatusCode, Code: CodeDecode, Message: "failed to decode response", Details: err.Error()}
		}
	}

	return nil
}

func decodeError(status int, body []byte) *Error {
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && (errResp.Code != "" || errResp.Message != "") {
		return &Error{
			Status:  status,
			Code:    errResp.Code,
			Message: errResp.Message,
			Details: errResp.Details,
			Hint:    errResp.Hint,
		}
	}
	return &Error{
		Status:  status,
		Message: fmt.Sprintf("request failed with status %d", status),
		Details: strings.TrimSpace(string(body)),
	}
}
