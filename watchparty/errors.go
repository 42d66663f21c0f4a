package watchparty

import (
	"errors"
	"fmt"
)

// ErrorCode represents a categorized error type.
type ErrorCode int

const (
	// Protocol errors (from server error responses)
	ErrorUnknown ErrorCode = iota
	ErrorUnsupportedVersion
	ErrorInvalidMessage
	ErrorRoomNotFound
	ErrorBadRoomCode
	ErrorNameConflict
	ErrorAlreadyInRoom
	ErrorNotInRoom
	ErrorNotHost
	ErrorRoomFull
	ErrorInternalServer

	// Client-side errors
	ErrorConnection
	ErrorDisconnected
	ErrorTimeout
	ErrorRetriesExhausted
	ErrorInvalidConfig
	ErrorInvalidArgument
	ErrorNotConnected
	ErrorSerialization
)

// String returns the string representation of an ErrorCode.
func (e ErrorCode) String() string {
	switch e {
	case ErrorUnknown:
		return "unknown"
	case ErrorUnsupportedVersion:
		return "unsupported_version"
	case ErrorInvalidMessage:
		return "invalid_message"
	case ErrorRoomNotFound:
		return "room_not_found"
	case ErrorBadRoomCode:
		return "bad_room_code"
	case ErrorNameConflict:
		return "name_conflict"
	case ErrorAlreadyInRoom:
		return "already_in_room"
	case ErrorNotInRoom:
		return "not_in_room"
	case ErrorNotHost:
		return "not_host"
	case ErrorRoomFull:
		return "room_full"
	case ErrorInternalServer:
		return "internal_error"
	case ErrorConnection:
		return "connection_error"
	case ErrorDisconnected:
		return "disconnected"
	case ErrorTimeout:
		return "timeout"
	case ErrorRetriesExhausted:
		return "retries_exhausted"
	case ErrorInvalidConfig:
		return "invalid_config"
	case ErrorInvalidArgument:
		return "invalid_argument"
	case ErrorNotConnected:
		return "not_connected"
	case ErrorSerialization:
		return "serialization_error"
	default:
		return fmt.Sprintf("unknown_code_%d", e)
	}
}

// ParseErrorCode converts a protocol error code string to ErrorCode.
func ParseErrorCode(code string) ErrorCode {
	switch code {
	case "unsupported_version":
		return ErrorUnsupportedVersion
	case "invalid_message":
		return ErrorInvalidMessage
	case "room_not_found":
		return ErrorRoomNotFound
	case "bad_room_code":
		return ErrorBadRoomCode
	case "name_conflict":
		return ErrorNameConflict
	case "already_in_room":
		return ErrorAlreadyInRoom
	case "not_in_room":
		return ErrorNotInRoom
	case "not_host":
		return ErrorNotHost
	case "room_full":
		return ErrorRoomFull
	case "internal_error":
		return ErrorInternalServer
	default:
		return ErrorUnknown
	}
}

// PartyError is a structured error with code and context.
type PartyError struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *PartyError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s (wrapped: %v)", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Unwrap support.
func (e *PartyError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface for error comparison.
func (e *PartyError) Is(target error) bool {
	t, ok := target.(*PartyError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new PartyError with the given code and message.
func NewError(code ErrorCode, message string) *PartyError {
	return &PartyError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with a PartyError.
func WrapError(code ErrorCode, message string, err error) *PartyError {
	return &PartyError{
		Code:    code,
		Message: message,
		Wrapped: err,
	}
}

// FromProtocolError converts a protocol Error to PartyError.
func FromProtocolError(e *Error) *PartyError {
	if e == nil {
		return nil
	}
	return &PartyError{
		Code:    ParseErrorCode(e.Code),
		Message: e.Msg,
	}
}

// IsProtocolError checks if an error is a protocol error (from server).
// Protocol errors are surfaced to the user and leave room state unchanged.
func IsProtocolError(err error) bool {
	if err == nil {
		return false
	}
	var pe *PartyError
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Code >= ErrorUnsupportedVersion && pe.Code <= ErrorInternalServer
}

// IsConnectionError checks if an error is a connection-related error.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var pe *PartyError
	if !errors.As(err, &pe) {
		return false
	}
	switch pe.Code {
	case ErrorConnection, ErrorDisconnected, ErrorTimeout, ErrorRetriesExhausted:
		return true
	default:
		return false
	}
}
