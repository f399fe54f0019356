package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/dmitrijs2005/cloudvault/internal/common"
	"github.com/dmitrijs2005/cloudvault/internal/logging"
	"github.com/google/uuid"
)

// TokenSource returns the bearer token for the current session, or "" when
// signed out.
type TokenSource func() string

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.httpClient = c }
}

// WithTimeout sets the per-request timeout of the default *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) { h.httpClient.Timeout = d }
}

// WithTokenSource attaches session tokens to backend calls.
func WithTokenSource(ts TokenSource) Option {
	return func(h *HTTPClient) { h.tokens = ts }
}

func WithLogger(l logging.Logger) Option {
	return func(h *HTTPClient) { h.logger = l }
}

// NewHTTPClient builds a client for the backend at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", baseURL)
	}
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "api")
	return c, nil
}

func (c *HTTPClient) ListFiles(ctx context.Context, r ListFilesRequest) (*ListFilesResponse, error) {
	q := url.Values{}
	q.Set("user_email", r.UserEmail)
	if r.Filter != "" && r.Filter != models.FilterAll {
		q.Set("type", string(r.Filter))
	}
	if r.Search != "" {
		q.Set("search", r.Search)
	}
	page := r.Page
	if page < 1 {
		page = 1
	}
	limit := r.Limit
	if limit < 1 {
		limit = models.DefaultPageSize
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	req, err := c.newRequest(ctx, http.MethodGet, "/api/files?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out ListFilesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode files response: %w", err)
	}
	return &out, nil
}

func (c *HTTPClient) Upload(ctx context.Context, r UploadRequest) error {
	if r.File == nil {
		return errors.New("upload: no file content")
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeUploadForm(mw, r))
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload", pr)
	if err != nil {
		_ = pr.Close()
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		_ = pr.CloseWithError(err)
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func writeUploadForm(mw *multipart.Writer, r UploadRequest) error {
	fileName := r.FileName
	if fileName == "" {
		fileName = r.Name
	}
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r.File); err != nil {
		return fmt.Errorf("read upload source: %w", err)
	}
	fields := []struct{ k, v string }{
		{"name", r.Name},
		{"type", string(r.Type)},
		{"description", r.Description},
		{"tags", r.Tags},
		{"user_email", r.UserEmail},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.k, f.v); err != nil {
			return err
		}
	}
	return mw.Close()
}

func (c *HTTPClient) DeleteFile(ctx context.Context, id, userEmail string) error {
	q := url.Values{}
	q.Set("id", id)
	q.Set("user_email", userEmail)
	return c.deleteAndDrain(ctx, "/api/files?"+q.Encode())
}

func (c *HTTPClient) DeleteUser(ctx context.Context, userEmail string) error {
	q := url.Values{}
	q.Set("user_email", userEmail)
	return c.deleteAndDrain(ctx, "/api/user?"+q.Encode())
}

func (c *HTTPClient) deleteAndDrain(ctx context.Context, path string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *HTTPClient) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid file url %q", rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	// stored URLs point at object storage, so no bearer token here
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if tok := c.tokens(); tok != "" {
			req.Header.Set(common.AuthorizationHeaderName, "Bearer "+tok)
		}
	}
	return req, nil
}

// do sends req and returns the response only for 2xx statuses. Otherwise the
// body is consumed and closed and an error is returned.
func (c *HTTPClient) do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	reqID := req.Header.Get(common.RequestIDHeaderName)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn(ctx, "request failed", "method", req.Method, "path", req.URL.Path, "request_id", reqID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.logger.Debug(ctx, "request done", "method", req.Method, "path", req.URL.Path, "request_id", reqID,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, decodeAPIError(resp)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Message = payload.Message
	}
	return apiErr
}
