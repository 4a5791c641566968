// Package immo is a client for the Immo real-estate platform REST API.
// Every response arrives in a {success, message, data} envelope; the
// client unwraps it and surfaces failures as *APIError values.
package immo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// Auth endpoints. The request authorizer bypasses these so the login
// call itself is never sent with a stale bearer token and the refresh
// call can never recurse into another refresh.
const (
	PathLogin    = "/auth/login"
	PathRegister = "/auth/register"
	PathRefresh  = "/auth/refresh"
)

// IsAuthBypassPath reports whether a request path belongs to the
// endpoints that must skip the authorization pipeline.
func IsAuthBypassPath(path string) bool {
	return strings.HasSuffix(path, PathLogin) ||
		strings.HasSuffix(path, PathRegister) ||
		strings.HasSuffix(path, PathRefresh)
}

// APIError is a non-2xx response or an envelope with success=false.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API %s (%d): %s", e.Endpoint, e.StatusCode, e.Message)
	}

	return fmt.Sprintf("API %s: %s", e.Endpoint, e.Message)
}

// IsUnauthorized reports whether err is an APIError carrying a 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError

	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Params are optional query parameters for list endpoints. Empty
// values are skipped, matching the server's treatment of absent
// filters.
type Params map[string]string

func (p Params) encode() string {
	if len(p) == 0 {
		return ""
	}

	vals := url.Values{}
	for k, v := range p {
		if v != "" {
			vals.Set(k, v)
		}
	}

	return vals.Encode()
}

// Client talks to the Immo platform API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates an API client rooted at baseURL. If httpClient is
// nil, http.DefaultClient is used; callers normally pass a client whose
// transport is the authorization pipeline.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// get sends a GET request and decodes the envelope data into result.
func (c *Client) get(ctx context.Context, endpoint string, params Params, result any) error {
	u := c.baseURL + endpoint
	if q := params.encode(); q != "" {
		u += "?" + q
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	return c.send(req, endpoint, result)
}

// send executes a prepared request and unwraps the response envelope.
func (c *Client) send(req *http.Request, endpoint string, result any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request to %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    errorMessage(respBody),
		}
	}

	var env Envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("decoding response from %s: %w", endpoint, err)
	}

	// The API reports some failures as 200 with success=false.
	if !env.Success {
		return &APIError{
			StatusCode: 0,
			Endpoint:   endpoint,
			Message:    errorMessage(respBody),
		}
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("decoding response data from %s: %w", endpoint, err)
		}
	}

	return nil
}

// write sends a request with a JSON body (POST, PUT, PATCH, DELETE).
func (c *Client) write(ctx context.Context, method, endpoint string, body, result any) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshalling request body: %w", err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, endpoint, result)
}

// newEmptyPost builds a POST request with an empty JSON object body,
// for endpoints whose caller needs to set headers before sending.
func (c *Client) newEmptyPost(ctx context.Context, endpoint string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, strings.NewReader("{}"))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body, result any) error {
	return c.write(ctx, http.MethodPost, endpoint, body, result)
}

func (c *Client) put(ctx context.Context, endpoint string, body, result any) error {
	return c.write(ctx, http.MethodPut, endpoint, body, result)
}

func (c *Client) patch(ctx context.Context, endpoint string, body, result any) error {
	return c.write(ctx, http.MethodPatch, endpoint, body, result)
}

func (c *Client) del(ctx context.Context, endpoint string) error {
	return c.write(ctx, http.MethodDelete, endpoint, nil, nil)
}

// UploadFile is one file in a multipart upload.
type UploadFile struct {
	Field    string
	FileName string
	Content  []byte
}

// postMultipart uploads files plus form fields to an endpoint.
func (c *Client) postMultipart(ctx context.Context, endpoint string, files []UploadFile, fields map[string]string, result any) error {
	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.FileName)
		if err != nil {
			return fmt.Errorf("creating form file %s: %w", f.FileName, err)
		}

		if _, err := part.Write(f.Content); err != nil {
			return fmt.Errorf("writing form file %s: %w", f.FileName, err)
		}
	}

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("writing form field %s: %w", k, err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.send(req, endpoint, result)
}

// errorMessage pulls a human-readable message out of an arbitrary error
// body. The API usually sends {"message": "..."} and sometimes a
// Laravel-style {"errors": {"field": ["..."]}} map; fall back to the
// raw body for anything else.
func errorMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "message").Str; msg != "" {
		return msg
	}

	if errs := gjson.GetBytes(body, "errors"); errs.IsObject() {
		var first string

		errs.ForEach(func(_, value gjson.Result) bool {
			if value.IsArray() && len(value.Array()) > 0 {
				first = value.Array()[0].Str
				return false
			}

			first = value.Str

			return first == ""
		})

		if first != "" {
			return first
		}
	}

	return strings.TrimSpace(string(body))
}
