package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// snippetLen bounds how much of an unexpected body ends up in an error
const snippetLen = 200

// Client talks to the panel's client API with a bearer API key
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a client for the panel at baseURL (scheme and host, no /api suffix)
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing panel url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("panel url %q must include scheme and host", baseURL)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		userAgent:  "ClumsyLoader/0.1",
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListServers returns the servers the API key has access to, in panel order
func (c *Client) ListServers(ctx context.Context) ([]Server, error) {
	var body list[Server]
	if err := c.get(ctx, "list servers", "/api/client", &body); err != nil {
		return nil, err
	}
	if body.Data == nil {
		return nil, &DecodeError{Op: "list servers", Err: fmt.Errorf("missing data member")}
	}
	return unwrap(*body.Data), nil
}

// ListBackups returns the backups of one server. An empty slice means the server has none.
func (c *Client) ListBackups(ctx context.Context, serverUUID string) ([]Backup, error) {
	var body list[Backup]
	path := "/api/client/servers/" + url.PathEscape(serverUUID) + "/backups"
	if err := c.get(ctx, "list backups", path, &body); err != nil {
		return nil, err
	}
	if body.Data == nil {
		return nil, &DecodeError{Op: "list backups", Err: fmt.Errorf("missing data member")}
	}
	return unwrap(*body.Data), nil
}

// DownloadLink asks the panel for a pre-signed URL serving the backup archive
func (c *Client) DownloadLink(ctx context.Context, serverIdentifier, backupUUID string) (string, error) {
	var body downloadLink
	path := "/api/client/servers/" + url.PathEscape(serverIdentifier) +
		"/backups/" + url.PathEscape(backupUUID) + "/download"
	if err := c.get(ctx, "download link", path, &body); err != nil {
		return "", err
	}
	if body.Attributes == nil || body.Attributes.URL == "" {
		return "", &DecodeError{Op: "download link", Err: fmt.Errorf("missing attributes.url")}
	}
	return body.Attributes.URL, nil
}

func unwrap[T any](items []item[T]) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		out = append(out, it.Attributes)
	}
	return out
}

func (c *Client) get(ctx context.Context, op, path string, v any) error {
	reqURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	log.Debug().Str("op", op).Str("path", path).Int("status", resp.StatusCode).Msg("panel request")

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, URL: reqURL, Err: fmt.Errorf("reading body: %w", err)}
	}
	contentType := resp.Header.Get("Content-Type")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(op, resp.StatusCode, data)
	}

	if !looksLikeJSON(contentType, data) {
		return &DecodeError{Op: op, ContentType: contentType, Snippet: snippet(data)}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &DecodeError{Op: op, ContentType: contentType, Snippet: snippet(data), Err: err}
	}
	return nil
}

// apiError builds an APIError, using the panel's error envelope when the body has one
func apiError(op string, status int, data []byte) *APIError {
	e := &APIError{Op: op, Status: status}
	var env errorEnvelope
	if json.Unmarshal(data, &env) == nil && len(env.Errors) > 0 {
		e.Code = env.Errors[0].Code
		e.Detail = env.Errors[0].Detail
		return e
	}
	e.Detail = snippet(data)
	return e
}

// looksLikeJSON rejects HTML error pages before they reach the decoder.
// A missing or generic content type is accepted if the body starts like JSON.
func looksLikeJSON(contentType string, data []byte) bool {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if mediaType == "text/html" {
			return false
		}
		if mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") {
			return true
		}
	}
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > snippetLen {
		s = s[:snippetLen] + "..."
	}
	return s
}
