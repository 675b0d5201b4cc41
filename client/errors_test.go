package client

import (
	"errors"
	"fmt"
	nethttp "net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		kind   Kind
	}{
		{400, KindValidation},
		{401, KindAuthentication},
		{404, KindNotFound},
		{429, KindRateLimit},
		{500, KindServer},
		{502, KindServer},
		{503, KindServer},
		{504, KindServer},
		{402, KindSDK},
		{403, KindSDK},
		{409, KindSDK},
		{501, KindSDK},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			err := classifyStatus(tt.status, nethttp.Header{}, nil)
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.status, err.Status)
		})
	}
}

func TestClassifyStatusParsesErrorBody(t *testing.T) {
	t.Run("nested envelope", func(t *testing.T) {
		body := []byte(`{"error":{"message":"document too large","code":"doc_too_large"}}`)
		err := classifyStatus(400, nethttp.Header{}, body)

		assert.Equal(t, KindValidation, err.Kind)
		assert.Equal(t, "document too large", err.Message)
		assert.Equal(t, "doc_too_large", err.Code)
	})

	t.Run("flat envelope", func(t *testing.T) {
		body := []byte(`{"message":"unknown key","code":"bad_key"}`)
		err := classifyStatus(401, nethttp.Header{}, body)

		assert.Equal(t, "unknown key", err.Message)
		assert.Equal(t, "bad_key", err.Code)
	})

	t.Run("non-JSON body falls back to generic message", func(t *testing.T) {
		err := classifyStatus(500, nethttp.Header{}, []byte("<html>oops</html>"))
		assert.Equal(t, "request failed with status 500", err.Message)
	})
}

func TestRetryAfterParsing(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{"integer seconds", "7", 7 * time.Second},
		{"zero", "0", 0},
		{"absent", "", DefaultRetryAfter},
		{"unparsable", "soon", DefaultRetryAfter},
		{"negative", "-3", DefaultRetryAfter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := nethttp.Header{}
			if tt.header != "" {
				headers.Set("Retry-After", tt.header)
			}
			err := classifyStatus(429, headers, nil)
			assert.Equal(t, KindRateLimit, err.Kind)
			assert.Equal(t, tt.want, err.RetryAfter)
		})
	}
}

func TestRetryAfterOnlySetForRateLimit(t *testing.T) {
	headers := nethttp.Header{}
	headers.Set("Retry-After", "30")

	err := classifyStatus(503, headers, nil)
	assert.Equal(t, KindServer, err.Kind)
	assert.Zero(t, err.RetryAfter)
}

func TestIsKind(t *testing.T) {
	err := classifyStatus(404, nethttp.Header{}, nil)

	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindServer))
	assert.False(t, IsKind(nil, KindNotFound))
	assert.False(t, IsKind(errors.New("plain"), KindNotFound))

	wrapped := fmt.Errorf("call failed: %w", err)
	assert.True(t, IsKind(wrapped, KindNotFound))
}

func TestErrorStringForms(t *testing.T) {
	withStatus := classifyStatus(404, nethttp.Header{}, nil)
	assert.Contains(t, withStatus.Error(), "not_found")
	assert.Contains(t, withStatus.Error(), "404")

	network := NewNetworkError("request execution failed", errors.New("connection refused"))
	assert.Contains(t, network.Error(), "network failure")
	assert.Contains(t, network.Error(), "connection refused")

	construction := NewRequestError("request cannot be nil", nil)
	assert.Contains(t, construction.Error(), "request construction failed")
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewNetworkError("request execution failed", cause)

	require.ErrorIs(t, err, cause)
	assert.True(t, IsKind(err, KindSDK))
}

func TestIsRetryableStatus(t *testing.T) {
	for _, status := range []int{429, 500, 502, 503, 504} {
		assert.True(t, isRetryableStatus(status), "status %d", status)
	}
	for _, status := range []int{400, 401, 404, 409, 418, 501, 505} {
		assert.False(t, isRetryableStatus(status), "status %d", status)
	}
}

func TestBackoffDelaySchedule(t *testing.T) {
	assert.Equal(t, 2*time.Second, backoffDelay(1))
	assert.Equal(t, 4*time.Second, backoffDelay(2))
	assert.Equal(t, 8*time.Second, backoffDelay(3))
	assert.Equal(t, 1024*time.Second, backoffDelay(10))

	// Overflow guard: very large attempt indexes saturate instead of wrapping.
	assert.Positive(t, backoffDelay(500))
}
