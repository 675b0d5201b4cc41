// Package documents is the typed surface for the documents resource: upload,
// retrieval, listing, deletion, and asynchronous parsing.
package documents

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/parseflow/parseflow-go/client"
	"github.com/parseflow/parseflow-go/jobs"
	"github.com/parseflow/parseflow-go/logger"
)

const basePath = "/v1/documents"

// Document is one stored document as reported by the API
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListOptions narrows a document listing
type ListOptions struct {
	Limit  int
	Offset int
	Status string
}

// ListResult is one page of documents
type ListResult struct {
	Documents []Document `json:"documents"`
	Total     int        `json:"total"`
}

// ParseOptions configures a parse job. Extra carries server-defined keys the
// SDK has no field for yet; explicit fields win on collision.
type ParseOptions struct {
	OCR      bool           `json:"ocr,omitempty"`
	Language string         `json:"language,omitempty"`
	Extra    map[string]any `json:"-"`
}

// MarshalJSON merges Extra under the explicit fields.
func (o ParseOptions) MarshalJSON() ([]byte, error) {
	merged := make(map[string]any, len(o.Extra)+2)
	for k, v := range o.Extra {
		merged[k] = v
	}
	if o.OCR {
		merged["ocr"] = true
	}
	if o.Language != "" {
		merged["language"] = o.Language
	}
	return json.Marshal(merged)
}

// parseResponse is the API's acknowledgement of a started parse job
type parseResponse struct {
	OperationID string `json:"operation_id"`
}

// Service exposes the documents resource
type Service struct {
	client client.Client
	jobs   *jobs.Service
	logger logger.Logger
}

// New creates a documents service. The jobs service is used by ParseAndWait.
func New(c client.Client, j *jobs.Service, log logger.Logger) *Service {
	if log == nil {
		log = logger.Noop()
	}
	return &Service{client: c, jobs: j, logger: log}
}

// Upload stores a new document from the given content. The upload carries an
// idempotency key so a retried attempt can never create a duplicate.
func (s *Service) Upload(ctx context.Context, name, contentType string, content io.Reader) (*Document, error) {
	req := &client.Request{
		Path: basePath,
		Headers: map[string]string{
			"Idempotency-Key": uuid.NewString(),
		},
		Form: &client.Form{
			Fields: map[string]string{
				"name":         name,
				"content_type": contentType,
			},
			Files: []client.File{
				{Field: "file", Name: name, Content: content},
			},
		},
	}

	resp, err := s.client.Post(ctx, req)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := resp.Decode(&doc); err != nil {
		return nil, err
	}
	s.logger.Info().Str("document_id", doc.ID).Str("name", name).Msg("document uploaded")
	return &doc, nil
}

// Get fetches one document by id
func (s *Service) Get(ctx context.Context, documentID string) (*Document, error) {
	resp, err := s.client.Get(ctx, &client.Request{Path: basePath + "/" + documentID})
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := resp.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// List fetches a page of documents
func (s *Service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	query := url.Values{}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}

	resp, err := s.client.Get(ctx, &client.Request{Path: basePath, Query: query})
	if err != nil {
		return nil, err
	}
	var result ListResult
	if err := resp.Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes a document
func (s *Service) Delete(ctx context.Context, documentID string) error {
	_, err := s.client.Delete(ctx, &client.Request{Path: basePath + "/" + documentID})
	return err
}

// Parse starts an asynchronous parse job and returns its operation id
func (s *Service) Parse(ctx context.Context, documentID string, opts ParseOptions) (string, error) {
	resp, err := s.client.Post(ctx, &client.Request{
		Path: basePath + "/" + documentID + "/parse",
		Body: opts,
	})
	if err != nil {
		return "", err
	}
	var parsed parseResponse
	if err := resp.Decode(&parsed); err != nil {
		return "", err
	}
	s.logger.Info().
		Str("document_id", documentID).
		Str("operation_id", parsed.OperationID).
		Msg("parse job started")
	return parsed.OperationID, nil
}

// ParseAndWait starts a parse job and blocks until it reaches a terminal
// state, per the jobs service's poll interval and wait deadline.
func (s *Service) ParseAndWait(ctx context.Context, documentID string, opts ParseOptions) (*jobs.Operation, error) {
	operationID, err := s.Parse(ctx, documentID, opts)
	if err != nil {
		return nil, err
	}
	return s.jobs.WaitForCompletion(ctx, operationID)
}
