// Package jobs tracks server-side asynchronous operations: fetching status
// snapshots and blocking until an operation reaches a terminal state.
package jobs

import (
	"context"
	"time"

	"github.com/parseflow/parseflow-go/client"
	"github.com/parseflow/parseflow-go/logger"
)

const (
	// DefaultPollInterval is the pause between status fetches
	DefaultPollInterval = 5 * time.Second

	// DefaultWaitTimeout bounds a whole wait operation
	DefaultWaitTimeout = time.Hour

	operationsPath = "/v1/operations"
)

// Status is the lifecycle state of a server-side operation
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status can never change again
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Operation is one immutable snapshot of an asynchronous job. Each poll
// produces a fresh snapshot.
type Operation struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	Progress  float64   `json:"progress"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service fetches operation status through the request pipeline and waits
// for completion.
type Service struct {
	client   client.Client
	logger   logger.Logger
	interval time.Duration
	timeout  time.Duration

	// test seams for deterministic wait-loop tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option customizes a Service
type Option func(*Service)

// WithPollInterval overrides the pause between status fetches
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithWaitTimeout overrides the total wait deadline
func WithWaitTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates an operations service on top of an API client
func New(c client.Client, log logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.Noop()
	}
	s := &Service{
		client:   c,
		logger:   log,
		interval: DefaultPollInterval,
		timeout:  DefaultWaitTimeout,
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get fetches the current snapshot of one operation
func (s *Service) Get(ctx context.Context, operationID string) (*Operation, error) {
	resp, err := s.client.Get(ctx, &client.Request{Path: operationsPath + "/" + operationID})
	if err != nil {
		return nil, err
	}
	var op Operation
	if err := resp.Decode(&op); err != nil {
		return nil, err
	}
	return &op, nil
}

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
