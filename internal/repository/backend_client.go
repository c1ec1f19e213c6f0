// Package repository implements the REST calls this service makes against the
// OCR backend collaborator.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"docscan-gateway/internal/domain"
	apperrors "docscan-gateway/pkg/errors"
)

const requestTimeout = 30 * time.Second

// BackendClient builds authenticated request clients against the OCR backend.
type BackendClient struct {
	baseURL string
	logger  domain.Logger
}

// NewBackendClient creates a client factory for the configured backend.
func NewBackendClient(config domain.Config, logger domain.Logger) *BackendClient {
	return &BackendClient{
		baseURL: config.GetBackendURL(),
		logger:  logger,
	}
}

// AuthedClient is a request client bound to one session: bearer token and
// user id headers are attached to every request, the cookie jar carries the
// backend's session cookies, and the CSRF token negotiated at construction is
// sent on every call.
type AuthedClient struct {
	httpClient *http.Client
	baseURL    string
	headers    http.Header
	logger     domain.Logger
}

// Authenticated produces a request client for the given session. It performs
// one CSRF round-trip against the backend; the returned token guards every
// mutating request made through the client. Callers must not attempt requests
// without a session.
func (c *BackendClient) Authenticated(ctx context.Context, session *domain.Session) (*AuthedClient, error) {
	if session == nil || session.AccessToken == "" {
		return nil, domain.ErrSessionMissing
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to create cookie jar", err)
	}

	client := &AuthedClient{
		httpClient: &http.Client{Jar: jar, Timeout: requestTimeout},
		baseURL:    c.baseURL,
		headers:    http.Header{},
		logger:     c.logger,
	}
	client.headers.Set("Authorization", "Bearer "+session.AccessToken)
	client.headers.Set("X-User-ID", session.UserID)

	var csrf struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := client.getJSON(ctx, "/csrf", &csrf); err != nil {
		return nil, err
	}
	client.headers.Set("X-CSRFToken", csrf.CSRFToken)

	return client, nil
}

func (a *AuthedClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build request", err)
	}
	for key, values := range a.headers {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}
	return req, nil
}

// do performs the request and normalizes every non-2xx response into an
// AppError carrying the HTTP status and raw body. A 202 becomes the soft
// not-ready condition rather than a failure.
func (a *AuthedClient) do(req *http.Request) (*http.Response, error) {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError("request to backend failed", err)
	}

	if resp.StatusCode == http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		message := backendMessage(body, "File is not available yet. Please try again later.")
		return nil, apperrors.NewNotReadyError(message)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		message := backendMessage(body, fmt.Sprintf("request failed: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
		a.logger.Warn("Backend returned an error", "status", resp.StatusCode, "path", req.URL.Path)
		return nil, apperrors.NewBackendError(message, resp.StatusCode, body)
	}

	return resp, nil
}

// getJSON issues a GET and decodes the JSON response into out.
func (a *AuthedClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := a.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	resp, err := a.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewInternalError("failed to decode backend response", err)
	}
	return nil
}

// backendMessage extracts the most specific message from a backend error
// body: the structured detail field is preferred, then message, then the
// fallback.
func backendMessage(body []byte, fallback string) string {
	var parsed struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Detail != "" {
			return parsed.Detail
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return fallback
}
