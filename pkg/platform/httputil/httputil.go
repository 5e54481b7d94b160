// Package httputil holds the JSON request/response helpers shared by handlers.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "simtax/pkg/domain-errors"
)

const maxBodyBytes = 1 << 20

var errTrailingData = errors.New("unexpected data after JSON body")

// Validatable is implemented by request DTOs that check themselves after decoding.
type Validatable interface {
	Validate() error
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error       string                `json:"error"`
	Description string                `json:"error_description,omitempty"`
	Fields      []dErrors.FieldDetail `json:"fields,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into a JSON error envelope. Internal errors never
// expose their description.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusFor(err), ErrorBody(err))
}

// StatusFor returns the HTTP status for err.
func StatusFor(err error) int {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return dErrors.ToHTTPStatus(de.Code)
	}
	return http.StatusInternalServerError
}

// ErrorBody builds the envelope for err.
func ErrorBody(err error) ErrorResponse {
	var de *dErrors.Error
	if !errors.As(err, &de) || de.Code == dErrors.CodeInternal {
		return ErrorResponse{Error: string(dErrors.CodeInternal)}
	}
	return ErrorResponse{
		Error:       string(de.Code),
		Description: de.Message,
		Fields:      de.Fields,
	}
}

// DecodeAndPrepare decodes a JSON body into T and runs its Validate method when
// present. On failure the error response has already been written and ok is false.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req T
	err := dec.Decode(&req)
	if err == nil && dec.More() {
		err = errTrailingData
	}
	if err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "failed to decode request body",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, dErrors.New(dErrors.CodeInvalidRequest, "request body must be valid JSON matching the schema"))
		return nil, false
	}

	if v, ok := any(&req).(Validatable); ok {
		if err := v.Validate(); err != nil {
			WriteError(w, err)
			return nil, false
		}
	}
	return &req, true
}
