package web

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the last-resort error body used when the errs package is
// not in the chain.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewError(msg string) ErrorResponse {
	return ErrorResponse{Code: "internal", Message: msg}
}

func (e ErrorResponse) Encode() ([]byte, string, error) {
	data, err := json.Marshal(e)
	return data, "application/json", err
}

func (e ErrorResponse) HTTPStatus() int {
	return http.StatusInternalServerError
}
