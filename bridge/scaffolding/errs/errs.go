// Package errs maps application errors to the HTTP error body.
package errs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"github.com/jrazmi/yata/core/repositories"
	"github.com/jrazmi/yata/core/syncengine"
	"github.com/jrazmi/yata/sdk/validation"
)

// ErrCode is the machine readable code sent to clients.
type ErrCode string

const (
	Invalid          ErrCode = "validation_error"
	Unauthenticated  ErrCode = "unauthenticated"
	NotFound         ErrCode = "not_found"
	Conflict         ErrCode = "conflict"
	ResyncRequired   ErrCode = "resync_required"
	Unavailable      ErrCode = "store_unavailable"
	DeadlineExceeded ErrCode = "deadline_exceeded"
	SyncFailed       ErrCode = "sync_failed"
	Internal         ErrCode = "internal"
	InternalOnlyLog  ErrCode = "internal_only_log"
)

var httpStatus = map[ErrCode]int{
	Invalid:          http.StatusBadRequest,
	Unauthenticated:  http.StatusUnauthorized,
	NotFound:         http.StatusNotFound,
	Conflict:         http.StatusConflict,
	ResyncRequired:   http.StatusGone,
	Unavailable:      http.StatusServiceUnavailable,
	DeadlineExceeded: http.StatusServiceUnavailable,
	SyncFailed:       http.StatusInternalServerError,
	Internal:         http.StatusInternalServerError,
	InternalOnlyLog:  http.StatusInternalServerError,
}

// Error is the single error object returned by every endpoint.
type Error struct {
	Code     ErrCode                `json:"code"`
	Message  string                 `json:"message"`
	Fields   validation.FieldErrors `json:"fields,omitempty"`
	FuncName string                 `json:"-"`
	FileName string                 `json:"-"`
}

// New wraps err with code, recording the caller for the error log.
func New(code ErrCode, err error) *Error {
	e := newError(code, err.Error())
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		e.Fields = fe
	}
	return e
}

func Newf(code ErrCode, format string, args ...any) *Error {
	return newError(code, fmt.Sprintf(format, args...))
}

func newError(code ErrCode, msg string) *Error {
	pc, file, line, _ := runtime.Caller(2)
	name := "unknown"
	if fn := runtime.FuncForPC(pc); fn != nil {
		name = fn.Name()
	}
	return &Error{
		Code:     code,
		Message:  msg,
		FuncName: name,
		FileName: fmt.Sprintf("%s:%d", file, line),
	}
}

// FromError classifies err by the sentinels it wraps. The most specific
// cause wins, so a sync failure caused by a missing row is a 404.
func FromError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var code ErrCode
	switch {
	case errors.Is(err, syncengine.ErrResyncRequired):
		code = ResyncRequired
	case errors.Is(err, repositories.ErrInvalid):
		code = Invalid
	case errors.Is(err, repositories.ErrNotFound):
		code = NotFound
	case errors.Is(err, repositories.ErrConflict):
		code = Conflict
	case errors.Is(err, context.DeadlineExceeded):
		code = DeadlineExceeded
	case errors.Is(err, repositories.ErrUnavailable):
		code = Unavailable
	case errors.Is(err, syncengine.ErrSyncFailed):
		code = SyncFailed
	default:
		return newError(InternalOnlyLog, err.Error())
	}

	e := newError(code, err.Error())
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		e.Fields = fe
	}
	return e
}

func (e *Error) Error() string {
	return e.Message
}

// Encode implements web.Encoder.
func (e *Error) Encode() ([]byte, string, error) {
	data, err := json.Marshal(e)
	return data, "application/json", err
}

func (e *Error) HTTPStatus() int {
	if s, ok := httpStatus[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}
