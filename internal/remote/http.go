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

	"github.com/Mschirtzinger/tcsync/internal/schema"
)

const (
	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second

	maxResponseSize = 50 * 1024 * 1024
	maxErrorBody    = 512
)

// HTTPClient is a Client for the service's JSON API:
//
//	GET  {base}/targets/{target}/test-cases          -> Snapshot
//	GET  {base}/targets/{target}/test-cases/{id}     -> TestCase
//	POST {base}/targets/{target}/test-cases/sync     <- Payload (main)
//	POST {base}/targets/{target}/test-cases/drafts   <- Payload (draft)
type HTTPClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithHTTPClient returns a new client with a custom HTTP client.
func (c *HTTPClient) WithHTTPClient(httpClient *http.Client) *HTTPClient {
	return &HTTPClient{BaseURL: c.BaseURL, Token: c.Token, HTTPClient: httpClient}
}

// WithTimeout returns a new client whose requests time out after d.
func (c *HTTPClient) WithTimeout(d time.Duration) *HTTPClient {
	return c.WithHTTPClient(&http.Client{Timeout: d, Transport: c.HTTPClient.Transport})
}

// Pull implements Client.
func (c *HTTPClient) Pull(ctx context.Context, targetID string) (*Snapshot, error) {
	body, err := c.do(ctx, "pull", http.MethodGet, c.casesURL(targetID), nil)
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, &Error{Op: "pull", Err: fmt.Errorf("failed to parse snapshot: %w", err)}
	}
	if snap.TargetID == "" {
		snap.TargetID = targetID
	}
	return &snap, nil
}

// PushMain implements Client.
func (c *HTTPClient) PushMain(ctx context.Context, p Payload) error {
	_, err := c.do(ctx, "push-main", http.MethodPost, c.casesURL(p.TargetID)+"/sync", p)
	return err
}

// PushDraft implements Client.
func (c *HTTPClient) PushDraft(ctx context.Context, p Payload) error {
	_, err := c.do(ctx, "push-draft", http.MethodPost, c.casesURL(p.TargetID)+"/drafts", p)
	return err
}

// FetchCase implements Client.
func (c *HTTPClient) FetchCase(ctx context.Context, targetID, caseID string) (*schema.TestCase, error) {
	body, err := c.do(ctx, "fetch-case", http.MethodGet, c.casesURL(targetID)+"/"+url.PathEscape(caseID), nil)
	if err != nil {
		return nil, err
	}

	var tc schema.TestCase
	if err := json.Unmarshal(body, &tc); err != nil {
		return nil, &Error{Op: "fetch-case", Err: fmt.Errorf("failed to parse test case: %w", err)}
	}
	return &tc, nil
}

func (c *HTTPClient) casesURL(targetID string) string {
	return c.BaseURL + "/targets/" + url.PathEscape(targetID) + "/test-cases"
}

// do performs one authenticated JSON request. Retries are left to the
// caller, see Retrying.
func (c *HTTPClient) do(ctx context.Context, op, method, urlStr string, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Op: op, Err: fmt.Errorf("failed to marshal request body: %w", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, reqBody)
	if err != nil {
		return nil, &Error{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &Error{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(respBody))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody] + "..."
		}
		return nil, &Error{Op: op, StatusCode: resp.StatusCode, Body: msg}
	}
	return respBody, nil
}
