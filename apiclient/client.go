// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds every request unless WithTimeout says otherwise.
	DefaultTimeout = 30 * time.Second

	headerRequestID = "X-Request-ID"

	// maxErrorBody caps how much of a failed response is read.
	maxErrorBody = 1 << 20
)

var emptyObject = json.RawMessage("{}")

// CredentialsPolicy controls whether cookies are stored and sent.
type CredentialsPolicy int

const (
	CredentialsOmit CredentialsPolicy = iota
	CredentialsInclude
)

// Request describes one API call. Endpoint is either an absolute http(s)
// URL or a path relative to the client's base URL.
type Request struct {
	Method   string
	Endpoint string
	// Body is JSON-encoded unless nil or the method is GET.
	Body any
	// Header entries replace the client defaults for this call. An entry
	// with no values removes the default.
	Header http.Header
}

// Response is a successful API response. Body is always valid JSON, and is
// exactly {} for 204 No Content.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       json.RawMessage
}

// Decode unmarshals the body into out. For a 204, maps, structs and
// interfaces receive an empty object and any other type is left untouched.
func (r *Response) Decode(out any) error {
	if out == nil {
		return nil
	}
	if r.StatusCode == http.StatusNoContent {
		if !acceptsObject(out) {
			return nil
		}
		if err := json.Unmarshal(emptyObject, out); err != nil {
			return newDecodeError(r.StatusCode, err)
		}
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return newDecodeError(r.StatusCode, err)
	}
	return nil
}

// acceptsObject reports whether out points to a map, a struct, or an
// interface that can hold a decoded object.
func acceptsObject(out any) bool {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return false
	}
	switch rv.Elem().Kind() {
	case reflect.Map, reflect.Struct, reflect.Interface:
		return true
	}
	return false
}

// Client issues JSON requests against one API. It is safe for concurrent
// use; default headers and the bound token are copied into each request when
// it is built, so changing them never affects calls already in flight.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	timeout        time.Duration
	credentials    CredentialsPolicy
	logger         *slog.Logger
	metrics        *Metrics
	limiter        *rate.Limiter
	onUnauthorized func(*APIError)
	tracing        bool

	mu      sync.RWMutex
	headers http.Header
	token   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. The client is copied;
// a cookie jar is added to the copy under CredentialsInclude.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the client-wide request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithCredentials(p CredentialsPolicy) Option {
	return func(c *Client) { c.credentials = p }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithRateLimit limits outgoing requests to r per second with the given
// burst. Waiting for the limiter honours the request context.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// WithToken binds a bearer token at construction time.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHeader adds a default header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

// OnUnauthorized registers a hook called for every 401 response. The hook
// runs on the calling goroutine before the error is returned.
func OnUnauthorized(fn func(*APIError)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithoutTracing skips the otelhttp transport wrapper.
func WithoutTracing() Option {
	return func(c *Client) { c.tracing = false }
}

// New creates a client for baseURL, e.g. "https://api.example.com/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		logger:  slog.Default(),
		tracing: true,
		headers: http.Header{
			"Content-Type": {"application/json"},
			"Accept":       {"application/json"},
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := &http.Client{}
	if c.httpClient != nil {
		copied := *c.httpClient
		hc = &copied
	}
	if c.tracing {
		base := hc.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc.Transport = otelhttp.NewTransport(base)
	}
	switch c.credentials {
	case CredentialsInclude:
		if hc.Jar == nil {
			// cookiejar.New only fails for a non-nil Options with a bad
			// PublicSuffixList.
			jar, _ := cookiejar.New(nil)
			hc.Jar = jar
		}
	case CredentialsOmit:
		hc.Jar = nil
	}
	c.httpClient = hc
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// SetToken binds a bearer token for requests issued from now on.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken removes the bound token. Requests already in flight keep the
// header they were built with.
func (c *Client) ClearToken() {
	c.SetToken("")
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetHeader sets a default header for requests issued from now on.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	c.headers.Set(key, value)
	c.mu.Unlock()
}

func (c *Client) DelHeader(key string) {
	c.mu.Lock()
	c.headers.Del(key)
	c.mu.Unlock()
}

// Send performs req and returns the response, or an *APIError.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := c.send(ctx, req)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	} else if apiErr, ok := AsAPIError(err); ok {
		status = apiErr.Status
	}
	c.metrics.observe(req.Method, status, time.Since(start))
	return resp, err
}

func (c *Client) send(ctx context.Context, req Request) (*Response, error) {
	if !validMethod(req.Method) {
		return nil, newNetworkError(fmt.Errorf("unsupported method %q", req.Method))
	}

	url := c.resolve(req.Endpoint)
	header := c.buildHeader(ctx, req.Header)

	var body io.Reader
	if req.Body != nil && req.Method != http.MethodGet {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, newNetworkError(fmt.Errorf("encode request body: %w", err))
		}
		body = bytes.NewReader(data)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, newNetworkError(err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, body)
	if err != nil {
		return nil, newNetworkError(err)
	}
	httpReq.Header = header

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("api request failed",
			"method", req.Method,
			"url", url,
			"request_id", header.Get(headerRequestID),
			"error", err,
		)
		return nil, newNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		if err != nil && !errors.Is(err, io.EOF) {
			data = nil
		}
		apiErr := newResponseError(httpResp.StatusCode, httpResp.Status, data)
		if apiErr.IsUnauthorized() {
			c.logger.Warn("authentication required",
				"method", req.Method,
				"url", url,
				"request_id", header.Get(headerRequestID),
			)
			if c.onUnauthorized != nil {
				c.onUnauthorized(apiErr)
			}
		} else {
			c.logger.Debug("api request rejected",
				"method", req.Method,
				"url", url,
				"status", httpResp.StatusCode,
				"message", apiErr.Message,
			)
		}
		return nil, apiErr
	}

	resp := &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header}
	if httpResp.StatusCode == http.StatusNoContent {
		resp.Body = emptyObject
		return resp, nil
	}

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, newNetworkError(err)
	}
	if !json.Valid(data) {
		return nil, newDecodeError(httpResp.StatusCode, errors.New("body is not valid JSON"))
	}
	resp.Body = data

	c.logger.Debug("api request completed",
		"method", req.Method,
		"url", url,
		"status", httpResp.StatusCode,
	)
	return resp, nil
}

// Do sends a request and decodes a successful body into out, which may be
// nil.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any, opts ...CallOption) error {
	req := Request{Method: method, Endpoint: endpoint, Body: body}
	for _, opt := range opts {
		opt(&req)
	}
	resp, err := c.Send(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

func (c *Client) Get(ctx context.Context, endpoint string, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodGet, endpoint, nil, out, opts...)
}

func (c *Client) Post(ctx context.Context, endpoint string, body, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodPost, endpoint, body, out, opts...)
}

func (c *Client) Put(ctx context.Context, endpoint string, body, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodPut, endpoint, body, out, opts...)
}

func (c *Client) Patch(ctx context.Context, endpoint string, body, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodPatch, endpoint, body, out, opts...)
}

func (c *Client) Delete(ctx context.Context, endpoint string, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodDelete, endpoint, nil, out, opts...)
}

// GetJSON fetches endpoint and decodes it as T. A 204 yields the zero T.
func GetJSON[T any](ctx context.Context, c *Client, endpoint string, opts ...CallOption) (T, error) {
	return doJSON[T](ctx, c, http.MethodGet, endpoint, nil, opts)
}

func PostJSON[T any](ctx context.Context, c *Client, endpoint string, body any, opts ...CallOption) (T, error) {
	return doJSON[T](ctx, c, http.MethodPost, endpoint, body, opts)
}

func PutJSON[T any](ctx context.Context, c *Client, endpoint string, body any, opts ...CallOption) (T, error) {
	return doJSON[T](ctx, c, http.MethodPut, endpoint, body, opts)
}

func PatchJSON[T any](ctx context.Context, c *Client, endpoint string, body any, opts ...CallOption) (T, error) {
	return doJSON[T](ctx, c, http.MethodPatch, endpoint, body, opts)
}

func DeleteJSON[T any](ctx context.Context, c *Client, endpoint string, opts ...CallOption) (T, error) {
	return doJSON[T](ctx, c, http.MethodDelete, endpoint, nil, opts)
}

func doJSON[T any](ctx context.Context, c *Client, method, endpoint string, body any, opts []CallOption) (T, error) {
	var out T
	err := c.Do(ctx, method, endpoint, body, &out, opts...)
	return out, err
}

// CallOption adjusts a single request.
type CallOption func(*Request)

// Header overrides one header for a single call.
func Header(key, value string) CallOption {
	return func(r *Request) {
		if r.Header == nil {
			r.Header = make(http.Header)
		}
		r.Header.Set(key, value)
	}
}

// NoAuth drops the Authorization header for a single call.
func NoAuth() CallOption {
	return func(r *Request) {
		if r.Header == nil {
			r.Header = make(http.Header)
		}
		r.Header[http.CanonicalHeaderKey("Authorization")] = nil
	}
}

func (c *Client) resolve(endpoint string) string {
	lower := strings.ToLower(endpoint)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return endpoint
	}
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

// buildHeader snapshots the defaults and bound token, then applies the
// per-call identity and overrides, in that order of precedence.
func (c *Client) buildHeader(ctx context.Context, overrides http.Header) http.Header {
	c.mu.RLock()
	header := make(http.Header, len(c.headers)+2)
	for k, v := range c.headers {
		header[k] = slices.Clone(v)
	}
	token := c.token
	c.mu.RUnlock()

	if id, ok := IdentityFrom(ctx); ok {
		token = id.Token
	}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	for k, v := range overrides {
		header.Del(k)
		for _, val := range v {
			header.Add(k, val)
		}
	}

	if header.Get(headerRequestID) == "" {
		header.Set(headerRequestID, uuid.NewString())
	}
	return header
}

func validMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
