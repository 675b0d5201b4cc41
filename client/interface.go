package client

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default per-request timeout duration
	DefaultTimeout = 30 * time.Second

	// DefaultMaxAttempts is the default total number of attempts per
	// logical call, the first try included
	DefaultMaxAttempts = 3
)

// Client defines the API client interface for making HTTP requests
type Client interface {
	Get(ctx context.Context, req *Request) (*Response, error)
	Post(ctx context.Context, req *Request) (*Response, error)
	Put(ctx context.Context, req *Request) (*Response, error)
	Patch(ctx context.Context, req *Request) (*Response, error)
	Delete(ctx context.Context, req *Request) (*Response, error)
	Do(ctx context.Context, method string, req *Request) (*Response, error)
}

// Request describes one logical API call. Body is JSON-marshaled unless Form
// is set, in which case the payload is multipart/form-data and Body is
// ignored.
type Request struct {
	Path    string
	Query   url.Values
	Headers map[string]string
	Body    any
	Form    *Form
}

// Response represents an API response with execution statistics
type Response struct {
	StatusCode int
	Body       []byte
	Headers    nethttp.Header
	Stats      Stats
}

// Decode unmarshals the JSON response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &Error{
			Kind:    KindSDK,
			Message: "failed to decode response body",
			Status:  r.StatusCode,
			Body:    r.Body,
			wrapped: err,
		}
	}
	return nil
}

// Stats contains request execution statistics
type Stats struct {
	ElapsedTime time.Duration
	Attempts    int
}

// Config holds the client configuration. It is read-only after construction
// and safe to share across concurrent calls.
type Config struct {
	// BaseURL is the API endpoint every request path is resolved against.
	BaseURL string
	// APIKey is sent as a bearer credential on every request.
	APIKey string
	// Timeout bounds each individual attempt. Defaults to DefaultTimeout.
	Timeout time.Duration
	// MaxAttempts is the total attempt cap per logical call, first try
	// included. Defaults to DefaultMaxAttempts.
	MaxAttempts int
	// UserAgent overrides the product identifier header.
	UserAgent string
	// DefaultHeaders are applied to every request; per-request headers
	// override them.
	DefaultHeaders map[string]string
	// Transport optionally overrides the underlying round tripper,
	// connection pooling included.
	Transport nethttp.RoundTripper
	// Limiter optionally paces outbound requests client-side.
	Limiter *rate.Limiter
}
