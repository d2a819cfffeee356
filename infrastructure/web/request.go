package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes bounds request bodies. Sync batches are the largest payloads.
const maxBodyBytes = 32 << 20

// Param returns the web call parameters from the request.
func Param(r *http.Request, key string) string {
	return r.PathValue(key)
}

// QueryParam returns query parameters from the request.
func QueryParam(r *http.Request, key string) string {
	return r.URL.Query().Get(key)
}

// Decoder represents data that can be decoded.
type Decoder interface {
	Decode(data []byte) error
}

type validator interface {
	Validate() error
}

// Decode reads the body of an HTTP request and decodes it into the specified data model.
// If the data model implements the validator interface, the Validate method will be called.
func Decode(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("unable to read request body: %w", err)
	}

	if len(data) == 0 {
		return fmt.Errorf("request body is empty")
	}

	if decoder, ok := v.(Decoder); ok {
		if err := decoder.Decode(data); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
	} else if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	if validator, ok := v.(validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("validation: %w", err)
		}
	}

	return nil
}

// DecodeOptional behaves like Decode but treats an empty body as an empty
// JSON object.
func DecodeOptional(r *http.Request, v any) error {
	if r.ContentLength == 0 && r.Body == http.NoBody {
		if validator, ok := v.(validator); ok {
			return validator.Validate()
		}
		return nil
	}
	return Decode(r, v)
}
