package usecase

import (
	"errors"
	"strings"
)

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeMalformedPayload = "MALFORMED_PAYLOAD"
	CodeInvalidSignature = "INVALID_SIGNATURE"
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidStatus    = "INVALID_STATUS"
	CodeConflict         = "CONFLICT"

	CodeDatabase = "DATABASE_ERROR"
)

// DomainError is a failure the caller can act on; its message is safe to return.
type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// AsDomainError unwraps err into a *DomainError when possible.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// TechnicalError wraps infrastructure failures. Message is generic; Err is for logs only.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func newValidationError(fields []ValidationError) *DomainError {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Error())
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(parts, ", "),
		Fields:  fields,
	}
}

func newMalformedPayloadError(msg string, fields []ValidationError) *DomainError {
	return &DomainError{Code: CodeMalformedPayload, Message: msg, Fields: fields}
}

func newNotFoundError(id string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: "lead " + id + " not found"}
}

func newInvalidStatusError(status string) *DomainError {
	return &DomainError{
		Code:    CodeInvalidStatus,
		Message: "invalid status: " + status,
		Fields:  []ValidationError{{Field: "status", Message: "must be one of " + joinStatuses()}},
	}
}

func newConflictError(id string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: "lead " + id + " was modified by another request"}
}

func newDatabaseError(op string, err error) *TechnicalError {
	return &TechnicalError{Code: CodeDatabase, Message: "failed to " + op, Err: err}
}
