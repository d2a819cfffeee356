package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrClientGone is returned by Respond when the request context was
// canceled before anything was written.
var ErrClientGone = errors.New("client disconnected")

// NoResponse tells Respond to write nothing; the handler already did.
type NoResponse struct{}

func NewNoResponse() NoResponse {
	return NoResponse{}
}

func (NoResponse) Encode() ([]byte, string, error) {
	return nil, "", nil
}

// JSONResponse encodes any value as JSON with an optional status.
type JSONResponse[T any] struct {
	Data   T
	Status int
}

func NewJSONResponse[T any](data T) *JSONResponse[T] {
	return &JSONResponse[T]{Data: data}
}

func NewJSONResponseWithStatus[T any](data T, status int) *JSONResponse[T] {
	return &JSONResponse[T]{Data: data, Status: status}
}

func (j *JSONResponse[T]) Encode() ([]byte, string, error) {
	data, err := json.Marshal(j.Data)
	return data, "application/json", err
}

func (j *JSONResponse[T]) HTTPStatus() int {
	if j.Status == 0 {
		return http.StatusOK
	}
	return j.Status
}

type httpStatus interface {
	HTTPStatus() int
}

// statusOf picks the status for resp: its own HTTPStatus, 500 for a bare
// error, 204 for nil and 200 otherwise.
func statusOf(resp Encoder) int {
	switch v := resp.(type) {
	case nil:
		return http.StatusNoContent
	case httpStatus:
		return v.HTTPStatus()
	case error:
		return http.StatusInternalServerError
	}
	return http.StatusOK
}

// Respond encodes resp onto w.
func Respond(ctx context.Context, w http.ResponseWriter, resp Encoder) error {
	if _, ok := resp.(NoResponse); ok {
		return nil
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return ErrClientGone
	}

	status := statusOf(resp)
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return nil
	}

	data, contentType, err := resp.Encode()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return fmt.Errorf("respond: encode: %w", err)
	}

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("respond: write: %w", err)
	}
	return nil
}
