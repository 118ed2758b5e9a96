package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"interview-room/internal/domain"
)

const (
	DefaultConnDetailsEndpoint = "/api/connection-details"
	tokenEndpoint              = "/api/token"
)

var ErrTokenFetch = errors.New("failed to fetch token")

// ConnectionDetailsRequest es el cuerpo que se envia a /api/connection-details.
type ConnectionDetailsRequest struct {
	RoomName        string               `json:"roomName"`
	ParticipantName string               `json:"participantName"`
	Region          string               `json:"region,omitempty"`
	Metadata        domain.AgentMetadata `json:"metadata"`
}

// HTTPClient habla con los endpoints de emision de tokens.
type HTTPClient struct {
	baseURL             string
	connDetailsEndpoint string
	client              *http.Client
	logger              *zap.Logger
}

// NewHTTPClient construye un cliente apuntando al servidor de tokens.
func NewHTTPClient(baseURL, connDetailsEndpoint string, logger *zap.Logger) *HTTPClient {
	if connDetailsEndpoint == "" {
		connDetailsEndpoint = DefaultConnDetailsEndpoint
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL:             strings.TrimRight(baseURL, "/"),
		connDetailsEndpoint: connDetailsEndpoint,
		client:              &http.Client{Timeout: 15 * time.Second},
		logger:              logger,
	}
}

// FetchToken pide un token join-only y devuelve URL del servidor y token.
func (c *HTTPClient) FetchToken(ctx context.Context) (string, string, error) {
	var out struct {
		AccessToken string `json:"accessToken"`
		URL         string `json:"url"`
	}
	if err := c.post(ctx, c.resolve(tokenEndpoint), nil, &out); err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrTokenFetch, err)
	}
	return out.URL, out.AccessToken, nil
}

// FetchConnectionDetails pide credenciales para la sala de entrevista.
func (c *HTTPClient) FetchConnectionDetails(ctx context.Context, req ConnectionDetailsRequest) (domain.ConnectionDetails, error) {
	var details domain.ConnectionDetails
	if err := c.post(ctx, c.resolve(c.connDetailsEndpoint), req, &details); err != nil {
		return domain.ConnectionDetails{}, err
	}
	return details, nil
}

// resolve permite que el endpoint sea relativo al servidor o una URL absoluta.
func (c *HTTPClient) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + endpoint
}

func (c *HTTPClient) post(ctx context.Context, url string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("token endpoint error",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)),
		)
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// StatusError es una respuesta no-2xx del servidor de tokens.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("token server http error: status=%d", e.Status)
	}
	return fmt.Sprintf("token server http error: status=%d: %s", e.Status, e.Body)
}
