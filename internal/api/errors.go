package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed backend request.
type Kind string

const (
	// KindNetwork covers transport failures, timeouts, and unexpected
	// server errors. Surfaced to the user with a retry control.
	KindNetwork Kind = "network"

	// KindAuth covers 401/403 responses. Never clears an existing session.
	KindAuth Kind = "auth"

	// KindValidation covers 400/422 responses for rejected input.
	KindValidation Kind = "validation"

	// KindCanceled marks a superseded request. Silently discarded.
	KindCanceled Kind = "canceled"
)

// genericMessage is shown when the backend gives no usable error payload.
const genericMessage = "Something went wrong. Please try again."

// Error is the classified form every failed request is reported as.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("api: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// IsAuth reports whether err is an authentication/authorization rejection.
func IsAuth(err error) bool {
	return kindOf(err) == KindAuth
}

// IsValidation reports whether err is a rejected-input error.
func IsValidation(err error) bool {
	return kindOf(err) == KindValidation
}

// IsCanceled reports whether err is a superseded (canceled) request.
func IsCanceled(err error) bool {
	if kindOf(err) == KindCanceled {
		return true
	}
	return errors.Is(err, context.Canceled)
}

// IsNetwork reports whether err is a transport or server failure.
func IsNetwork(err error) bool {
	return kindOf(err) == KindNetwork
}

func kindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// classifyStatus maps an HTTP status to an error kind.
func classifyStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindNetwork
	}
}

// errorMessage extracts a human-readable message from an error payload,
// falling back to a generic string when the body is empty or unrecognized.
func errorMessage(body []byte) string {
	if len(body) == 0 {
		return genericMessage
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			return payload.Message
		case payload.Error != "":
			return payload.Error
		case payload.Detail != "":
			return payload.Detail
		}
	}
	return genericMessage
}
