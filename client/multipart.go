package client

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
)

const contentTypeJSON = "application/json"

// Form describes a multipart/form-data payload: plain fields plus file
// parts. The encoded content type carries the boundary and replaces the
// default JSON content type.
type Form struct {
	Fields map[string]string
	Files  []File
}

// File is one file part of a multipart form.
type File struct {
	// Field is the form field name the part is sent under.
	Field string
	// Name is the filename reported to the server.
	Name string
	// Content is read fully when the form is encoded.
	Content io.Reader
}

// encode renders the form to bytes so the payload can be replayed across
// retry attempts, and returns the boundary-qualified content type.
func (f *Form) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, value := range f.Fields {
		if err := w.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}
	for _, file := range f.Files {
		part, err := w.CreateFormFile(file.Field, file.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// encodeBody resolves a request's payload once per logical call: multipart
// when a Form is present, raw bytes passed through, anything else
// JSON-marshaled.
func encodeBody(req *Request) (payload []byte, contentType string, err error) {
	if req.Form != nil {
		return req.Form.encode()
	}
	if req.Body == nil {
		return nil, "", nil
	}
	if raw, ok := req.Body.([]byte); ok {
		return raw, contentTypeJSON, nil
	}
	b, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", err
	}
	return b, contentTypeJSON, nil
}
