package apiutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/tournament"
)

const (
	CodeFixtureExists = "FIXTURE_EXISTS"
	CodeValidation    = "VALIDATION_FAILED"
	CodeNotFound      = "NOT_FOUND"
	CodeBadRequest    = "BAD_REQUEST"
	CodeRateLimited   = "RATE_LIMITED"
	CodeTimeout       = "TIMEOUT"
	CodeInternal      = "INTERNAL"
)

type HandlerError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Detail  string `json:"detail,omitempty"`
	} `json:"error"`
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

// DecodeOptionalJSON is DecodeJSON that accepts an empty body, leaving dst
// untouched.
func DecodeOptionalJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := DecodeJSON(r, dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

func WriteError(w http.ResponseWriter, status int, code, message, detail string) {
	resp := ErrorResponse{}
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Detail = detail
	w.Header().Set("Cache-Control", "no-store")
	_ = WriteJSON(w, status, resp)
}

// WriteServiceError maps errors returned by the tournament service onto the
// error envelope. Internal failures are already logged by the service and
// only expose their generic message.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var handlerErr HandlerError
	var exists *tournament.AlreadyExistsError
	var invalid *tournament.ValidationError
	var missing *tournament.NotFoundError

	switch {
	case errors.As(err, &handlerErr):
		WriteError(w, handlerErr.Status, handlerErr.Code, handlerErr.Message, "")
	case errors.As(err, &exists):
		WriteError(w, http.StatusConflict, CodeFixtureExists, exists.Error(), "")
	case errors.As(err, &invalid):
		detail := ""
		if invalid.Err != nil {
			detail = invalid.Err.Error()
		}
		WriteError(w, http.StatusUnprocessableEntity, CodeValidation, invalid.Error(), detail)
	case errors.As(err, &missing):
		WriteError(w, http.StatusNotFound, CodeNotFound, missing.Error(), "")
	case errors.Is(err, context.DeadlineExceeded):
		log.Ctx(r.Context()).Warn().Err(err).Msg("Request timed out")
		WriteError(w, http.StatusGatewayTimeout, CodeTimeout, "Request timed out", "")
	case errors.Is(err, tournament.ErrGenerationFailed),
		errors.Is(err, tournament.ErrFinalizeFailed),
		errors.Is(err, tournament.ErrResultFailed):
		WriteError(w, http.StatusInternalServerError, CodeInternal, err.Error(), "")
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("Unhandled request error")
		WriteError(w, http.StatusInternalServerError, CodeInternal, "Internal server error", "")
	}
}

// BadRequest wraps a decoding or parameter error.
func BadRequest(err error) HandlerError {
	return HandlerError{Status: http.StatusBadRequest, Code: CodeBadRequest, Message: err.Error(), Err: err}
}
