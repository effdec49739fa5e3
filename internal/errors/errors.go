package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// UnsupportedAlgorithm indicates the algorithm name is not registered
	UnsupportedAlgorithm ErrorCode = "UNSUPPORTED_ALGORITHM"
	// InvalidOperation indicates an operation other than cipher/decipher
	InvalidOperation ErrorCode = "INVALID_OPERATION"
	// MissingParameter indicates a required keyword or number was not given
	MissingParameter ErrorCode = "MISSING_PARAMETER"
	// InvalidParameter indicates the cipher rejected its configuration
	InvalidParameter ErrorCode = "INVALID_PARAMETER"
	// EmptyInput indicates there was no text to process
	EmptyInput ErrorCode = "EMPTY_INPUT"
	// UnsupportedHash indicates an unknown digest algorithm
	UnsupportedHash ErrorCode = "UNSUPPORTED_HASH"
	// InputTooLarge indicates the text exceeds the configured limit
	InputTooLarge ErrorCode = "INPUT_TOO_LARGE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// CipherError represents an error with code, message, and suggestions
type CipherError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a CipherError carrying the default fixes for its code
func New(code ErrorCode, message string, cause error) *CipherError {
	return &CipherError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf is New with a formatted message and no cause
func Newf(code ErrorCode, format string, args ...interface{}) *CipherError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *CipherError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CipherError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *CipherError) WithDetails(details interface{}) *CipherError {
	e.Details = details
	return e
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	UnsupportedAlgorithm: {
		{
			Type:        RunCommand,
			Command:     "cipherkit algorithms",
			Safe:        true,
			Description: "List the available algorithms",
		},
	},
	MissingParameter: {
		{
			Type:        RunCommand,
			Command:     "cipherkit algorithms --verbose",
			Safe:        true,
			Description: "Show which parameter each algorithm expects",
		},
	},
	UnsupportedHash: {
		{
			Type:        RunCommand,
			Command:     "cipherkit hash --list",
			Safe:        true,
			Description: "List the supported digests",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}

// CodeOf returns the code of a CipherError anywhere in err's chain,
// or InternalError.
func CodeOf(err error) ErrorCode {
	for err != nil {
		if ce, ok := err.(*CipherError); ok {
			return ce.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return InternalError
}
