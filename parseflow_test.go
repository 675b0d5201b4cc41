package parseflow

import (
	"context"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parseflow/parseflow-go/config"
	"github.com/parseflow/parseflow-go/graphql"
	"github.com/parseflow/parseflow-go/jobs"
)

func testConfig(endpoint string) *config.Config {
	cfg := &config.Config{
		Endpoint: endpoint,
		Timeout:  5 * time.Second,
	}
	cfg.API.Key = "pfk_test"
	cfg.Retry.Attempts = 1
	cfg.Poll.Interval = time.Millisecond
	cfg.Poll.Timeout = time.Second
	cfg.Log.Level = "disabled"
	return cfg
}

func TestNewWiresAllServices(t *testing.T) {
	sdk, err := New(testConfig("https://api.parseflow.dev"))
	require.NoError(t, err)

	assert.NotNil(t, sdk.Client)
	assert.NotNil(t, sdk.Documents)
	assert.NotNil(t, sdk.Jobs)
	assert.NotNil(t, sdk.GraphQL)
}

func TestNewRejectsInvalidEndpoint(t *testing.T) {
	_, err := New(testConfig(""))
	assert.Error(t, err)
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("PARSEFLOW_API_KEY", "pfk_env")
	t.Setenv("PARSEFLOW_ENDPOINT", "https://env.parseflow.dev")

	sdk, err := NewFromEnv()
	require.NoError(t, err)
	assert.NotNil(t, sdk.Documents)
}

func TestServicesShareOnePipeline(t *testing.T) {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/v1/documents/doc_1", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		require.Equal(t, "Bearer pfk_test", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"doc_1","name":"a.pdf","status":"stored"}`))
	})
	mux.HandleFunc("/v1/operations/op_1", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_, _ = w.Write([]byte(`{"id":"op_1","status":"completed","progress":100}`))
	})
	mux.HandleFunc("/graphql", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_, _ = w.Write([]byte(`{"data":{"viewer":{"id":"u_1"}}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	sdk, err := New(testConfig(server.URL))
	require.NoError(t, err)

	doc, err := sdk.Documents.Get(context.Background(), "doc_1")
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", doc.Name)

	op, err := sdk.Jobs.WaitForCompletion(context.Background(), "op_1")
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusCompleted, op.Status)

	data, err := sdk.GraphQL.Execute(context.Background(), graphql.Request{Query: "{ viewer { id } }"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"viewer":{"id":"u_1"}}`, string(data))
}
