package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/parseflow/parseflow-go/logger"
	"github.com/parseflow/parseflow-go/trace"
)

const tracerName = "github.com/parseflow/parseflow-go/client"

// client implements the Client interface
type client struct {
	httpClient *nethttp.Client
	logger     logger.Logger
	config     *Config
	baseURL    *url.URL
	tracer     oteltrace.Tracer

	// sleep is swapped out in tests to assert the backoff schedule
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an API client from the given configuration. A nil logger is
// replaced with a silent one.
func New(cfg *Config, log logger.Logger) (Client, error) {
	if cfg == nil {
		return nil, &Error{Kind: KindValidation, Message: "configuration cannot be nil"}
	}
	if cfg.APIKey == "" {
		return nil, &Error{Kind: KindValidation, Message: "API key cannot be empty"}
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, &Error{Kind: KindValidation, Message: fmt.Sprintf("invalid base URL %q", cfg.BaseURL), wrapped: err}
	}
	if log == nil {
		log = logger.Noop()
	}

	resolved := *cfg
	if resolved.Timeout <= 0 {
		resolved.Timeout = DefaultTimeout
	}
	if resolved.MaxAttempts < 1 {
		resolved.MaxAttempts = DefaultMaxAttempts
	}
	if resolved.UserAgent == "" {
		resolved.UserAgent = defaultUserAgent
	}

	return &client{
		httpClient: &nethttp.Client{
			Timeout:   resolved.Timeout,
			Transport: resolved.Transport,
		},
		logger:  log,
		config:  &resolved,
		baseURL: base,
		tracer:  otel.Tracer(tracerName),
		sleep:   sleepContext,
	}, nil
}

// Builder provides a fluent interface for configuring the API client
type Builder struct {
	config *Config
	logger logger.Logger
}

// NewBuilder creates a client builder for the given endpoint and credential
func NewBuilder(baseURL, apiKey string) *Builder {
	return &Builder{
		config: &Config{
			BaseURL:        baseURL,
			APIKey:         apiKey,
			Timeout:        DefaultTimeout,
			MaxAttempts:    DefaultMaxAttempts,
			DefaultHeaders: make(map[string]string),
		},
	}
}

// WithTimeout sets the per-attempt timeout
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.config.Timeout = timeout
	return b
}

// WithMaxAttempts sets the total attempt cap per logical call
func (b *Builder) WithMaxAttempts(attempts int) *Builder {
	b.config.MaxAttempts = attempts
	return b
}

// WithLogger attaches a structured logger
func (b *Builder) WithLogger(log logger.Logger) *Builder {
	b.logger = log
	return b
}

// WithUserAgent overrides the product identifier header
func (b *Builder) WithUserAgent(ua string) *Builder {
	b.config.UserAgent = ua
	return b
}

// WithDefaultHeader adds a header sent with all requests
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	b.config.DefaultHeaders[key] = value
	return b
}

// WithTransport overrides the underlying round tripper
func (b *Builder) WithTransport(t nethttp.RoundTripper) *Builder {
	b.config.Transport = t
	return b
}

// WithRateLimit paces outbound requests to rps with the given burst
func (b *Builder) WithRateLimit(rps float64, burst int) *Builder {
	b.config.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return b
}

// Build creates the API client with the configured options
func (b *Builder) Build() (Client, error) {
	return New(b.config, b.logger)
}

// Get performs a GET request
func (c *client) Get(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodGet, req)
}

// Post performs a POST request
func (c *client) Post(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPost, req)
}

// Put performs a PUT request
func (c *client) Put(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPut, req)
}

// Patch performs a PATCH request
func (c *client) Patch(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPatch, req)
}

// Delete performs a DELETE request
func (c *client) Delete(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodDelete, req)
}

// Do performs one logical call: encode the payload once, then attempt until
// success, a permanent failure, or the attempt cap.
func (c *client) Do(ctx context.Context, method string, req *Request) (*Response, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	payload, contentType, err := encodeBody(req)
	if err != nil {
		return nil, NewRequestError("failed to encode request body", err)
	}

	ctx, span := c.tracer.Start(ctx, method+" "+req.Path,
		oteltrace.WithSpanKind(oteltrace.SpanKindClient),
		oteltrace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", req.Path),
		))
	defer span.End()

	start := time.Now()
	maxAttempts := c.config.MaxAttempts

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, c.fail(span, &Error{Kind: KindSDK, Message: "call abandoned", wrapped: err})
		}
		if c.config.Limiter != nil {
			if err := c.config.Limiter.Wait(ctx); err != nil {
				return nil, c.fail(span, &Error{Kind: KindSDK, Message: "rate limiter wait interrupted", wrapped: err})
			}
		}

		httpReq, err := c.buildRequest(ctx, method, req, payload, contentType)
		if err != nil {
			return nil, c.fail(span, err)
		}
		c.logRequest(method, httpReq.URL.String(), attempt)

		httpResp, doErr := c.httpClient.Do(httpReq)
		if doErr != nil {
			// Caller cancellation is not a transient failure.
			if ctx.Err() != nil {
				return nil, c.fail(span, &Error{Kind: KindSDK, Message: "call abandoned", wrapped: ctx.Err()})
			}
			netErr := NewNetworkError("request execution failed", doErr)
			if attempt < maxAttempts {
				if serr := c.backoff(ctx, attempt); serr != nil {
					return nil, c.fail(span, serr)
				}
				continue
			}
			return nil, c.fail(span, netErr)
		}

		resp, readErr := c.buildResponse(start, attempt, httpResp)
		if readErr != nil {
			if attempt < maxAttempts {
				if serr := c.backoff(ctx, attempt); serr != nil {
					return nil, c.fail(span, serr)
				}
				continue
			}
			return nil, c.fail(span, readErr)
		}

		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

		if IsSuccessStatus(resp.StatusCode) {
			span.SetAttributes(attribute.Int("http.request.resend_count", attempt-1))
			c.logResponse(resp)
			return resp, nil
		}

		apiErr := classifyStatus(resp.StatusCode, resp.Headers, resp.Body)
		if isRetryableStatus(resp.StatusCode) && attempt < maxAttempts {
			c.logRetry(method, req.Path, resp.StatusCode, attempt)
			if serr := c.backoff(ctx, attempt); serr != nil {
				return nil, c.fail(span, serr)
			}
			continue
		}

		c.logResponse(resp)
		return resp, c.fail(span, apiErr)
	}
}

// fail records the terminal error on the span and passes it through.
func (c *client) fail(span oteltrace.Span, err *Error) *Error {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, string(err.Kind))
	return err
}

// backoffDelay returns the sleep after the Nth failed attempt (1-indexed):
// 2^N seconds, so 2s, 4s, 8s, ...
func backoffDelay(attempt int) time.Duration {
	if attempt > 30 {
		attempt = 30
	}
	return time.Duration(1<<uint(attempt)) * time.Second
}

func (c *client) backoff(ctx context.Context, attempt int) *Error {
	if err := c.sleep(ctx, backoffDelay(attempt)); err != nil {
		return &Error{Kind: KindSDK, Message: "call abandoned during backoff", wrapped: err}
	}
	return nil
}

// sleepContext waits for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// validateRequest validates the request before any network activity
func (c *client) validateRequest(req *Request) *Error {
	if req == nil {
		return NewRequestError("request cannot be nil", nil)
	}
	if req.Path == "" {
		return NewRequestError("request path cannot be empty", nil)
	}
	return nil
}

// buildRequest constructs a fresh *http.Request for one attempt and applies
// the fixed header set.
func (c *client) buildRequest(ctx context.Context, method string, req *Request, payload []byte, contentType string) (*nethttp.Request, *Error) {
	endpoint := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		endpoint.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, NewRequestError("failed to construct HTTP request", err)
	}

	c.applyHeaders(ctx, httpReq, req, contentType)
	return httpReq, nil
}

// applyHeaders sets the fixed header set, then request-specific overrides
func (c *client) applyHeaders(ctx context.Context, httpReq *nethttp.Request, req *Request, contentType string) {
	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("User-Agent", c.config.UserAgent)
	httpReq.Header.Set(trace.HeaderXRequestID, trace.EnsureRequestID(ctx))
	if tp, ok := trace.TraceParentFromContext(ctx); ok {
		httpReq.Header.Set(trace.HeaderTraceParent, tp)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	// Request-specific headers override everything above.
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
}

// buildResponse drains the body and builds a Response snapshot.
func (c *client) buildResponse(start time.Time, attempt int, httpResp *nethttp.Response) (*Response, *Error) {
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewNetworkError("failed to read response body", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
		Stats: Stats{
			ElapsedTime: time.Since(start),
			Attempts:    attempt,
		},
	}, nil
}

// logRequest logs the outgoing request
func (c *client) logRequest(method, endpoint string, attempt int) {
	c.logger.Debug().
		Str("direction", "outbound").
		Str("method", method).
		Str("url", redactQuery(endpoint)).
		Int("attempt", attempt).
		Msg("API request")
}

// logResponse logs the final response of a logical call
func (c *client) logResponse(resp *Response) {
	c.logger.Debug().
		Str("direction", "inbound").
		Int("status", resp.StatusCode).
		Dur("elapsed", resp.Stats.ElapsedTime).
		Int("attempts", resp.Stats.Attempts).
		Msg("API response")
}

// logRetry logs a scheduled retry after a rejected attempt
func (c *client) logRetry(method, path string, status, attempt int) {
	c.logger.Warn().
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Int("attempt", attempt).
		Dur("backoff", backoffDelay(attempt)).
		Msg("retrying API request")
}

// redactQuery strips query values from logged URLs; keys alone are enough
// for diagnostics and values may carry tokens.
func redactQuery(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.RawQuery == "" {
		return endpoint
	}
	keys := make([]string, 0, 4)
	for key := range u.Query() {
		keys = append(keys, key)
	}
	u.RawQuery = strings.Join(keys, ",")
	return u.String()
}
