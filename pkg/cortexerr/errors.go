// Package cortexerr defines the error taxonomy used across the Cortex
// client core: a small set of kinds that the resilient layer uses to
// decide whether an error is worth retrying.
package cortexerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the resilient client can decide whether to
// retry, reconnect, refresh a token, or surface the failure as-is.
type Kind int

const (
	// KindConfig marks invalid configuration or missing credentials.
	KindConfig Kind = iota
	// KindTransport marks a socket/TLS failure or write failure.
	KindTransport
	// KindTimeout marks a deadline elapsed waiting for a response.
	KindTimeout
	// KindConnectionClosed marks a reader-observed EOF or explicit shutdown.
	KindConnectionClosed
	// KindProtocol marks a malformed frame, unknown response id, or schema mismatch.
	KindProtocol
	// KindTokenInvalid marks a server-rejected cortex token.
	KindTokenInvalid
	// KindPermissionDenied marks a missing access right or scope.
	KindPermissionDenied
	// KindNotFound marks a resource that does not exist.
	KindNotFound
	// KindInvalidArgument marks a local validation failure or server-side arg rejection.
	KindInvalidArgument
	// KindServer marks any other Cortex-reported error.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "Config"
	case KindTransport:
		return "Transport"
	case KindTimeout:
		return "Timeout"
	case KindConnectionClosed:
		return "ConnectionClosed"
	case KindProtocol:
		return "Protocol"
	case KindTokenInvalid:
		return "TokenInvalid"
	case KindPermissionDenied:
		return "PermissionDenied"
	case KindNotFound:
		return "NotFound"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindServer:
		return "Server"
	default:
		return "Unknown"
	}
}

// Error is the structured error type returned by every operation in this
// module. It always carries a Kind and, where applicable, the originating
// RPC method name to aid diagnosis.
type Error struct {
	Kind    Kind
	Method  string // originating RPC method, empty if not applicable
	Message string
	Code    int // upstream Cortex error code, 0 if not applicable
	Data    any // upstream error data payload, nil if not applicable
	Cause   error
}

func (e *Error) Error() string {
	if e.Method != "" {
		if e.Code != 0 {
			return fmt.Sprintf("%s: %s (%s, code %d)", e.Method, e.Message, e.Kind, e.Code)
		}
		return fmt.Sprintf("%s: %s (%s)", e.Method, e.Message, e.Kind)
	}
	if e.Code != 0 {
		return fmt.Sprintf("%s (%s, code %d)", e.Message, e.Kind, e.Code)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Retryable reports whether this error belongs to the Transient class that
// the resilient client retries once after reconnect/refresh.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindConnectionClosed, KindTransport, KindTimeout, KindTokenInvalid:
		return true
	default:
		return false
	}
}

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind wrapping an underlying cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// WithMethod returns a copy of e annotated with the originating RPC method.
func (e *Error) WithMethod(method string) *Error {
	clone := *e
	clone.Method = method
	return &clone
}

// Is allows errors.Is to match on Kind when the target is a *Error with a
// zero Message (used as a sentinel), e.g. errors.Is(err, &Error{Kind: KindTimeout}).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
	}
	return false
}

// KindOf extracts the Kind from err if it is (or wraps) a *Error, defaulting
// to KindServer for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// Retryable reports whether err is a *Error in the Transient class.
func Retryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable()
	}
	return false
}

// Well-known Cortex API error codes, mirroring the JSON-RPC error codes
// returned by the Cortex v2 service.
const (
	CodeMethodNotFound       = -32601
	CodeNoHeadsetConnected   = -32001
	CodeInvalidLicenseID     = -32002
	CodeHeadsetUnavailable   = -32004
	CodeSessionAlreadyExists = -32005
	CodeSessionMustBeActive  = -32012
	CodeInvalidCortexToken   = -32014
	CodeTokenExpired         = -32015
	CodeInvalidStream        = -32016
	CodeInvalidClientCreds   = -32021
	CodeLicenseExpired       = -32024
	CodeUserNotLoggedIn      = -32033
	CodeUnpublishedApp       = -32142
	CodeHeadsetNotReady      = -32152
)

// FromAPI maps a Cortex JSON-RPC error code + message to the nearest Kind.
// Unknown codes default to KindServer.
func FromAPI(method string, code int, message string, data any) *Error {
	kind := KindServer
	switch code {
	case CodeMethodNotFound:
		kind = KindProtocol
	case CodeInvalidCortexToken, CodeTokenExpired:
		kind = KindTokenInvalid
	case CodeInvalidLicenseID, CodeUnpublishedApp, CodeUserNotLoggedIn:
		kind = KindPermissionDenied
	case CodeNoHeadsetConnected, CodeHeadsetUnavailable:
		kind = KindNotFound
	case CodeInvalidStream, CodeInvalidClientCreds:
		kind = KindInvalidArgument
	case CodeSessionAlreadyExists, CodeSessionMustBeActive, CodeLicenseExpired, CodeHeadsetNotReady:
		kind = KindServer
	}
	return &Error{Kind: kind, Method: method, Message: message, Code: code, Data: data}
}
