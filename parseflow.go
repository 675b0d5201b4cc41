// Package parseflow is the Go SDK for the ParseFlow document intelligence
// API. The SDK type bundles the typed resource services behind one shared
// request pipeline; see the client package for retry and error semantics.
package parseflow

import (
	"github.com/parseflow/parseflow-go/client"
	"github.com/parseflow/parseflow-go/config"
	"github.com/parseflow/parseflow-go/documents"
	"github.com/parseflow/parseflow-go/graphql"
	"github.com/parseflow/parseflow-go/jobs"
	"github.com/parseflow/parseflow-go/logger"
)

// SDK is the entry point: every service shares one request pipeline and its
// retry, logging, and error classification behavior.
type SDK struct {
	Client    client.Client
	Documents *documents.Service
	Jobs      *jobs.Service
	GraphQL   *graphql.Service
}

// New constructs an SDK from resolved configuration.
func New(cfg *config.Config) (*SDK, error) {
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	c, err := client.New(cfg.ClientConfig(), log)
	if err != nil {
		return nil, err
	}

	j := jobs.New(c, log,
		jobs.WithPollInterval(cfg.Poll.Interval),
		jobs.WithWaitTimeout(cfg.Poll.Timeout))

	return &SDK{
		Client:    c,
		Documents: documents.New(c, j, log),
		Jobs:      j,
		GraphQL:   graphql.New(c),
	}, nil
}

// NewFromEnv loads configuration from defaults, parseflow.yaml when present,
// and PARSEFLOW_* environment variables, then constructs the SDK.
func NewFromEnv() (*SDK, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return New(cfg)
}
