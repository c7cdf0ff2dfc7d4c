package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"crownsync/internal/domain/remote"
)

// ErrUnauthorized сервер отклонил токен
var ErrUnauthorized = errors.New("unauthorized")

// HTTPClient шлюз к хранилищу объектов на сервере
type HTTPClient struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	root      string
	userAgent string

	mu    sync.RWMutex
	token string
}

var _ remote.ObjectStore = (*HTTPClient)(nil)

// NewHTTPClient root добавляется к префиксу листинга, если хранилище использует общий корень
func NewHTTPClient(baseURL, root string, log *slog.Logger) *HTTPClient {
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	return &HTTPClient{
		client:    client,
		log:       log.With(slog.String("component", "http_client")),
		baseURL:   strings.TrimRight(baseURL, "/"),
		root:      root,
		userAgent: "Crownsync-Client/1.0",
	}
}

// HTTP клиент для скачивания по подписанным ссылкам
func (h *HTTPClient) HTTP() *http.Client {
	return h.client
}

func (h *HTTPClient) SetToken(token string) {
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()
}

func (h *HTTPClient) getToken() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// HealthCheck проверяет доступность сервера
func (h *HTTPClient) HealthCheck(ctx context.Context) error {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/v1/health", nil)
	if err != nil {
		return fmt.Errorf("сервер недоступен: %w", err)
	}
	return h.parseResponse(resp, nil)
}

// Login возвращает токен и роль пользователя
func (h *HTTPClient) Login(ctx context.Context, login, password string) (string, string, error) {
	req := map[string]string{"login": login, "password": password}

	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", req)
	if err != nil {
		return "", "", err
	}

	var loginResp struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	if err := h.parseResponse(resp, &loginResp); err != nil {
		return "", "", err
	}

	h.SetToken(loginResp.Token)
	return loginResp.Token, loginResp.Role, nil
}

func (h *HTTPClient) Register(ctx context.Context, login, password, role string) error {
	req := map[string]string{"login": login, "password": password, "role": role}

	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/auth/register", req)
	if err != nil {
		return err
	}
	return h.parseResponse(resp, nil)
}

func (h *HTTPClient) ListFiles(ctx context.Context, prefix, marker string, maxItems int) (*remote.ListPage, error) {
	if h.root != "" && !strings.HasPrefix(prefix, h.root) {
		prefix = h.root + prefix
	}

	q := url.Values{}
	q.Set("prefix", prefix)
	if marker != "" {
		q.Set("marker", marker)
	}
	if maxItems > 0 {
		q.Set("max", strconv.Itoa(maxItems))
	}

	resp, err := h.doRequest(ctx, http.MethodGet, "/api/v1/objects?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var page remote.ListPage
	if err := h.parseResponse(resp, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (h *HTTPClient) GetSignedDownloadURL(ctx context.Context, key string, expirationMinutes int) (string, error) {
	req := struct {
		Key               string `json:"key"`
		ExpirationMinutes int    `json:"expirationMinutes"`
	}{Key: key, ExpirationMinutes: expirationMinutes}

	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/objects/sign", req)
	if err != nil {
		return "", err
	}

	var signResp struct {
		URL string `json:"url"`
	}
	if err := h.parseResponse(resp, &signResp); err != nil {
		return "", err
	}
	return signResp.URL, nil
}

func (h *HTTPClient) DeleteFile(ctx context.Context, key string) (bool, error) {
	resp, err := h.doRequest(ctx, http.MethodDelete, "/api/v1/objects?key="+url.QueryEscape(key), nil)
	if err != nil {
		return false, err
	}

	var delResp struct {
		Deleted bool `json:"deleted"`
	}
	if err := h.parseResponse(resp, &delResp); err != nil {
		return false, err
	}
	return delResp.Deleted, nil
}

// Upload загружает объект, нужна роль editor
func (h *HTTPClient) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		h.baseURL+"/api/v1/objects/content?key="+url.QueryEscape(key), body)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	h.setHeaders(req)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	return h.parseResponse(resp, nil)
}

func (h *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", h.userAgent)
	if token := h.getToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (h *HTTPClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	h.setHeaders(req)

	h.log.Debug("Отправка запроса", "method", method, "path", req.URL.Path)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	return resp, nil
}

func (h *HTTPClient) parseResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	h.log.Debug("Получен ответ", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil {
			if msg := errResp.Detail + errResp.Error; msg != "" {
				return fmt.Errorf("ошибка сервера (%d): %s", resp.StatusCode, msg)
			}
		}
		return fmt.Errorf("ошибка сервера: статус %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
	}
	return nil
}
