// Package fopbridge holds the response shapes and query filter parsing
// shared by the repository bridges.
package fopbridge

import (
	"encoding/json"
	"net/http"
	"strings"
)

// SuccessResponse acknowledges a write that returns no record.
type SuccessResponse struct {
	Success bool `json:"success"`
}

func NewSuccessResponse() SuccessResponse {
	return SuccessResponse{Success: true}
}

func (s SuccessResponse) Encode() ([]byte, string, error) {
	data, err := json.Marshal(s)
	return data, "application/json", err
}

// RecordResponse is a single record encoded bare.
type RecordResponse[T any] struct {
	Record T
	Status int
}

func NewRecordResponse[T any](record T) RecordResponse[T] {
	return RecordResponse[T]{Record: record}
}

// NewCreatedResponse is a RecordResponse sent with 201.
func NewCreatedResponse[T any](record T) RecordResponse[T] {
	return RecordResponse[T]{Record: record, Status: http.StatusCreated}
}

func (r RecordResponse[T]) Encode() ([]byte, string, error) {
	data, err := json.Marshal(r.Record)
	return data, "application/json", err
}

func (r RecordResponse[T]) HTTPStatus() int {
	if r.Status == 0 {
		return http.StatusOK
	}
	return r.Status
}

// ListResponse is a list of records encoded as a bare array; nil encodes
// as [].
type ListResponse[T any] []T

func (l ListResponse[T]) Encode() ([]byte, string, error) {
	records := []T(l)
	if records == nil {
		records = []T{}
	}
	data, err := json.Marshal(records)
	return data, "application/json", err
}

// QueryFilter reads the trimmed value of each key from the query string.
// Missing keys map to "".
func QueryFilter(r *http.Request, keys ...string) map[string]string {
	q := r.URL.Query()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = strings.TrimSpace(q.Get(k))
	}
	return out
}
