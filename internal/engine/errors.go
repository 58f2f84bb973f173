package engine

import (
	"errors"
	"fmt"
)

var (
	ErrSectionNotFound     = errors.New("section not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrInvalidReorder      = errors.New("invalid reorder")
	ErrInvalidQuestionType = errors.New("invalid question type")
	ErrUnknownTemplate     = errors.New("unknown template")
)

// ErrorCode is the stable tag carried by a SubmissionError.
type ErrorCode string

const (
	CodeValidationFailed ErrorCode = "VALIDATION_ERROR"
	CodeAlreadySubmitted ErrorCode = "ALREADY_SUBMITTED"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeStorageFailure   ErrorCode = "SUBMISSION_ERROR"
)

// SubmissionError is the failure variant of a submit. Violations is only set
// for CodeValidationFailed; Err carries the storage cause when there is one.
type SubmissionError struct {
	Code       ErrorCode
	Violations map[string][]Violation
	Err        error
}

func (e *SubmissionError) Error() string {
	switch e.Code {
	case CodeValidationFailed:
		return fmt.Sprintf("validation failed on %d question(s)", len(e.Violations))
	case CodeAlreadySubmitted:
		return "assessment already submitted"
	case CodeNotFound:
		if e.Err != nil {
			return "not found: " + e.Err.Error()
		}
		return "not found"
	}
	if e.Err != nil {
		return "submission failed: " + e.Err.Error()
	}
	return "submission failed"
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

func ValidationFailed(violations map[string][]Violation) *SubmissionError {
	return &SubmissionError{Code: CodeValidationFailed, Violations: violations}
}

func AlreadySubmitted() *SubmissionError {
	return &SubmissionError{Code: CodeAlreadySubmitted}
}

func NotFound(err error) *SubmissionError {
	return &SubmissionError{Code: CodeNotFound, Err: err}
}

func StorageFailure(err error) *SubmissionError {
	return &SubmissionError{Code: CodeStorageFailure, Err: err}
}

// AsSubmissionError unwraps err into a *SubmissionError when it is one.
func AsSubmissionError(err error) (*SubmissionError, bool) {
	var se *SubmissionError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
