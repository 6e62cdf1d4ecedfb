// internal/app/system/respond/respond.go
//
// Package respond owns the uniform response envelope every entity action
// returns: {status, message, data, error}. Actions never leak raw errors;
// guard failures and store errors are converted here and the transport
// status code mirrors the envelope status.
package respond

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Envelope is the wire shape of every action response.
type Envelope struct {
	Status  int     `json:"status"`
	Message string  `json:"message"`
	Data    any     `json:"data"`
	Error   *string `json:"error"`
}

// ServerResponse builds a success envelope (error is always null).
func ServerResponse(status int, message string, data any) Envelope {
	return Envelope{Status: status, Message: message, Data: data}
}

// ServerError builds a failure envelope. Non-scalar error payloads are
// serialized; data defaults to null unless the caller supplies one (e.g.
// false for boolean-style results).
func ServerError(status int, message string, errPayload any, data any) Envelope {
	s := stringify(errPayload)
	return Envelope{Status: status, Message: message, Data: data, Error: &s}
}

func stringify(payload any) string {
	switch v := payload.(type) {
	case nil:
		return ""
	case string:
		return v
	case error:
		return v.Error()
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprint(payload)
	}
	return string(b)
}

// Write emits the envelope as JSON with its status as the HTTP code.
func Write(w http.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(env.Status)
	_ = json.NewEncoder(w).Encode(env)
}

// JSON is shorthand for writing a success envelope.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	Write(w, ServerResponse(status, message, data))
}

// Fail is shorthand for writing a failure envelope with null data.
func Fail(w http.ResponseWriter, status int, message string, errPayload any) {
	Write(w, ServerError(status, message, errPayload, nil))
}

// Internal logs the underlying error and writes a 500 envelope. Handlers
// use it for store failures that are not guard conflicts.
func Internal(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	log.Error(op, zap.Error(err))
	Fail(w, http.StatusInternalServerError, "a database error occurred", err)
}
