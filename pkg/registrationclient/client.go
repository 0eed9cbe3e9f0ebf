// Package registrationclient is a typed HTTP client for the registration API. Calls return
// the raw status and content type next to the decoded body so that callers can assert on the
// wire contract itself, not only on the payload.
package registrationclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is used when Client.BaseURL is empty.
const DefaultBaseURL = "http://localhost:8080"

// ParamEncoding selects how Register sends its parameters.
type ParamEncoding int

const (
	// EncodeQuery sends parameters in the URL query string.
	EncodeQuery ParamEncoding = iota
	// EncodeForm sends an application/x-www-form-urlencoded body.
	EncodeForm
	// EncodeJSON sends a flat JSON object body.
	EncodeJSON
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// AdminToken is sent as X-Admin-Token on operator calls.
	AdminToken string
	// Encoding applies to Register. Defaults to EncodeQuery.
	Encoding ParamEncoding
}

// New returns a client with a bounded timeout that never follows redirects.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Result is one HTTP exchange as seen on the wire.
type Result struct {
	Status      int
	ContentType string
	// Feedback is the "feedback" field of a JSON body, if any.
	Feedback string
	Body     []byte
}

// MediaType is ContentType without parameters, e.g. "text/html".
func (r *Result) MediaType() string {
	mt, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return r.ContentType
	}
	return mt
}

// IsJSON reports whether the body was declared as JSON.
func (r *Result) IsJSON() bool {
	return r.MediaType() == "application/json"
}

// Decode unmarshals the body into v.
func (r *Result) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// Register creates a registration. Only non-empty parameters are sent.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Result, error) {
	return c.RegisterParams(ctx, req.Params())
}

// RegisterParams posts arbitrary parameters, including ones the server does not know.
func (c *Client) RegisterParams(ctx context.Context, params url.Values) (*Result, error) {
	endpoint := c.url("/registration")
	var body io.Reader
	var contentType string

	switch c.Encoding {
	case EncodeForm:
		body = strings.NewReader(params.Encode())
		contentType = "application/x-www-form-urlencoded"
	case EncodeJSON:
		flat := make(map[string]string, len(params))
		for k := range params {
			flat[k] = params.Get(k)
		}
		payload, err := json.Marshal(flat)
		if err != nil {
			return nil, fmt.Errorf("encode registration: %w", err)
		}
		body = strings.NewReader(string(payload))
		contentType = "application/json"
	default:
		if len(params) > 0 {
			endpoint += "?" + params.Encode()
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	return c.do(httpReq)
}

// Get fetches the registration for citizenID. The record is decoded only on 200.
func (c *Client) Get(ctx context.Context, citizenID string) (*Result, *Registration, error) {
	res, err := c.send(ctx, http.MethodGet, "/registration/"+url.PathEscape(citizenID), nil)
	if err != nil {
		return nil, nil, err
	}
	if res.Status != http.StatusOK {
		return res, nil, nil
	}
	var reg Registration
	if err := res.Decode(&reg); err != nil {
		return res, nil, err
	}
	return res, &reg, nil
}

// Delete removes the registration for citizenID.
func (c *Client) Delete(ctx context.Context, citizenID string) (*Result, error) {
	return c.send(ctx, http.MethodDelete, "/registration/"+url.PathEscape(citizenID), nil)
}

// Do issues a raw request against path, for routes outside the typed API.
func (c *Client) Do(ctx context.Context, method, path string) (*Result, error) {
	return c.send(ctx, method, path, nil)
}

// List returns every registration. Requires AdminToken.
func (c *Client) List(ctx context.Context) (*Result, *ListResponse, error) {
	res, err := c.send(ctx, http.MethodGet, "/admin/registrations", map[string]string{
		"X-Admin-Token": c.AdminToken,
	})
	if err != nil {
		return nil, nil, err
	}
	if res.Status != http.StatusOK {
		return res, nil, nil
	}
	var list ListResponse
	if err := res.Decode(&list); err != nil {
		return res, nil, err
	}
	return res, &list, nil
}

func (c *Client) send(ctx context.Context, method, path string, headers map[string]string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Result, error) {
	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	res := &Result{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}
	var fb feedbackBody
	if json.Unmarshal(body, &fb) == nil {
		res.Feedback = fb.Feedback
	}
	return res, nil
}

func (c *Client) url(path string) string {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + path
}
