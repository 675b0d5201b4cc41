// Package graphql executes queries and mutations against the ParseFlow
// GraphQL endpoint through the shared request pipeline. A response carrying
// a non-empty errors array is always surfaced as a single failure combining
// every reported message.
package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/parseflow/parseflow-go/client"
)

const defaultPath = "/graphql"

// Request is one GraphQL document plus its inputs
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// Response is the standard GraphQL response envelope
type Response struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors []ResponseError `json:"errors,omitempty"`
}

// ResponseError is one entry of the errors array
type ResponseError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// ExecutionError is raised when the server answers with a non-empty errors
// array. Data keeps whatever partial result accompanied the errors.
type ExecutionError struct {
	Errors []ResponseError
	Data   json.RawMessage
	merged error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("graphql execution failed: %v", e.merged)
}

func (e *ExecutionError) Unwrap() error {
	return e.merged
}

// Service executes GraphQL operations
type Service struct {
	client client.Client
	path   string
}

// New creates a GraphQL service on top of an API client
func New(c client.Client) *Service {
	return &Service{client: c, path: defaultPath}
}

// NewWithPath creates a GraphQL service for a non-standard endpoint path
func NewWithPath(c client.Client, path string) *Service {
	return &Service{client: c, path: path}
}

// Execute posts the request and returns the raw data payload. Transport and
// HTTP failures carry the pipeline's error taxonomy unchanged; server-side
// execution errors become an *ExecutionError.
func (s *Service) Execute(ctx context.Context, req Request) (json.RawMessage, error) {
	resp, err := s.client.Post(ctx, &client.Request{Path: s.path, Body: req})
	if err != nil {
		return nil, err
	}

	var out Response
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}

	if len(out.Errors) > 0 {
		var merged *multierror.Error
		for _, gqlErr := range out.Errors {
			merged = multierror.Append(merged, errors.New(gqlErr.Message))
		}
		return nil, &ExecutionError{
			Errors: out.Errors,
			Data:   out.Data,
			merged: merged.ErrorOrNil(),
		}
	}
	return out.Data, nil
}

// Query executes the request and decodes the data payload into out
func (s *Service) Query(ctx context.Context, query string, variables map[string]any, out any) error {
	data, err := s.Execute(ctx, Request{Query: query, Variables: variables})
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &client.Error{
			Kind:    client.KindSDK,
			Message: "failed to decode graphql data payload",
		}
	}
	return nil
}
