package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"revision-runtime/backend/internal/auth"
	"revision-runtime/backend/pkg/models"
)

// HTTPBackendClient is an HTTP implementation of the BackendClient interface.
type HTTPBackendClient struct {
	url    string
	tokens auth.TokenSource
	basic  auth.BasicAuth
	client *http.Client
}

// NewHTTPBackendClient creates a new HTTPBackendClient. tokens may be nil
// when the backend does not require bearer tokens.
func NewHTTPBackendClient(url string, tokens auth.TokenSource, basic auth.BasicAuth) *HTTPBackendClient {
	return &HTTPBackendClient{url: url, tokens: tokens, basic: basic, client: http.DefaultClient}
}

// WithHTTPClient replaces the client used for requests.
func (c *HTTPBackendClient) WithHTTPClient(client *http.Client) *HTTPBackendClient {
	c.client = client
	return c
}

// PutRevision creates or replaces the revision at the backend.
func (c *HTTPBackendClient) PutRevision(ctx context.Context, tr *models.TransformationRevision) error {
	requestBody, err := json.Marshal(tr)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url+"/transformations/"+tr.ID.String(), bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	headers, err := auth.Headers(ctx, c.tokens)
	if err != nil {
		return fmt.Errorf("failed to build auth headers: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	c.basic.Apply(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("failed to store transformation revision %s: status code %d: %s", tr.ID, resp.StatusCode, bytes.TrimSpace(body))
	}

	return nil
}

// DeployRevisions stores every revision through client, stopping at the first failure.
func DeployRevisions(ctx context.Context, client BackendClient, revisions []*models.TransformationRevision) error {
	for _, tr := range revisions {
		if err := client.PutRevision(ctx, tr); err != nil {
			return err
		}
	}
	return nil
}
