package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "finanzas/internal/errors"
)

// HTTPStore talks to a hosted document store over its JSON REST API.
// Failures are wrapped as REMOTE_UNAVAILABLE; the sync layer logs and
// swallows them.
type HTTPStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPStore creates a new HTTPStore. token is the bearer token obtained
// from the auth provider; httpClient may carry a custom timeout (callers
// should set one; remote timeouts are ordinary, loggable failures).
func NewHTTPStore(baseURL, token string, httpClient *http.Client) *HTTPStore {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// Get fetches a single document.
func (s *HTTPStore) Get(ctx context.Context, path Path) (Document, error) {
	var doc Document
	if err := s.do(ctx, http.MethodGet, path, nil, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Set writes a document with full-overwrite semantics.
func (s *HTTPStore) Set(ctx context.Context, path Path, doc Document) error {
	return s.do(ctx, http.MethodPut, path, doc, nil)
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *HTTPStore) Delete(ctx context.Context, path Path) error {
	err := s.do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil && isStatus(err, http.StatusNotFound) {
		return nil
	}
	return err
}

// ListAll fetches every document in a collection.
func (s *HTTPStore) ListAll(ctx context.Context, path Path) ([]Document, error) {
	var result struct {
		Documents []Document `json:"documents"`
	}
	if err := s.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Documents, nil
}

// statusError carries the HTTP status of a non-2xx response.
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.status)
}

func isStatus(err error, status int) bool {
	var se *statusError
	return errors.As(err, &se) && se.status == status
}

func (s *HTTPStore) do(ctx context.Context, method string, path Path, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrRemoteUnavailable, fmt.Errorf("marshaling %s: %w", path, err))
		}
		reader = bytes.NewReader(jsonBody)
	} else {
		reader = bytes.NewReader(nil)
	}

	url := s.baseURL + "/api/v1/" + path.String()
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRemoteUnavailable, fmt.Errorf("creating request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRemoteUnavailable, fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.Wrap(apperrors.ErrRemoteUnavailable, &statusError{status: resp.StatusCode})
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperrors.Wrap(apperrors.ErrRemoteUnavailable, fmt.Errorf("decoding %s response: %w", path, err))
		}
	}
	return nil
}
