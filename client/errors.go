// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed call by how the UI should surface it.
type Kind int

const (
	// KindTransport covers network failures, timeouts and 5xx responses.
	KindTransport Kind = iota
	// KindAuth means the user must log in again.
	KindAuth
	// KindValidation is a request the backend rejected with a reason.
	KindValidation
	// KindDecode is a 2xx body that does not match the expected schema.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindDecode:
		return "decode"
	default:
		return "transport"
	}
}

// Default messages shown when the backend gives none.
const (
	MsgLoginRequired = "Please login to continue"
	MsgSessionExpiry = "Your session has expired, please login again"
	MsgGeneric       = "Request failed, please try again"
	MsgBadResponse   = "Unexpected response from server"
)

var (
	ErrUnauthenticated = &APIError{Kind: KindAuth, Message: MsgLoginRequired}
	ErrSessionExpired  = &APIError{Kind: KindAuth, Message: MsgSessionExpiry}
)

// APIError is returned by every Client method that fails.
type APIError struct {
	Kind    Kind
	Status  int    // HTTP status, 0 when no response was received
	Message string // human readable, safe to display
	Method  string
	Path    string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	}
	if e.Err != nil && e.Method != "" {
		return fmt.Sprintf("%s %s: %s: %v", e.Method, e.Path, e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches APIErrors of the same kind and message, so that
// errors.Is(err, ErrUnauthenticated) holds for any login-required failure.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message && t.Status == 0
}

// KindOf returns the kind of err, or KindTransport for foreign errors.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransport
}

// IsAuth reports whether err asks the user to log in.
func IsAuth(err error) bool {
	return err != nil && KindOf(err) == KindAuth
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Message returns the single line to show the user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return MsgGeneric
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return MsgGeneric
	}
	// Local rule violations carry their own text.
	return err.Error()
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status >= 400 && status < 500:
		return KindValidation
	default:
		return KindTransport
	}
}
