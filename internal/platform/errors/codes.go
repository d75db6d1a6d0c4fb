// Package errors provides structured error handling with i18n support.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Command errors
	CodeInvalidCommand        Code = "INVALID_COMMAND"
	CodeInvalidArgumentCount  Code = "INVALID_ARGUMENT_COUNT"
	CodeInvalidArgument       Code = "INVALID_ARGUMENT"
	CodeInvalidCardReference  Code = "INVALID_CARD_REFERENCE"
	CodeInvalidLineReference  Code = "INVALID_LINE_REFERENCE"
	CodeInvalidPlayer         Code = "INVALID_PLAYER"
	CodeUnimplementedProtocol Code = "UNIMPLEMENTED_PROTOCOL"

	// Role and turn errors
	CodeMissingRoleHolder        Code = "MISSING_ROLE_HOLDER"
	CodeUnauthorizedRole         Code = "UNAUTHORIZED_ROLE"
	CodeTurnPreconditionViolated Code = "TURN_PRECONDITION_VIOLATED"
	CodeGameNotStarted           Code = "GAME_NOT_STARTED"

	// Game lifecycle errors
	CodeGameNotFound    Code = "GAME_NOT_FOUND"
	CodeUnknownGenre    Code = "UNKNOWN_GENRE"
	CodeDuplicatePlayer Code = "DUPLICATE_PLAYER"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeInvalidCommand,
		CodeInvalidArgumentCount,
		CodeInvalidArgument,
		CodeInvalidCardReference,
		CodeInvalidLineReference,
		CodeInvalidPlayer,
		CodeUnknownGenre:
		return http.StatusBadRequest

	// Conflict - state doesn't allow operation
	case CodeMissingRoleHolder,
		CodeTurnPreconditionViolated,
		CodeGameNotStarted,
		CodeDuplicatePlayer:
		return http.StatusConflict

	case CodeUnauthorizedRole:
		return http.StatusForbidden

	case CodeUnimplementedProtocol:
		return http.StatusNotImplemented

	case CodeNotFound,
		CodeGameNotFound:
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}
