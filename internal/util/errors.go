package util

import "errors"

var (
	ErrAssessmentNotFound  = errors.New("assessment not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrAssessmentExists    = errors.New("assessment already exists for this job")
	ErrNotFileQuestion     = errors.New("question does not accept file uploads")
	ErrFileTypeNotAllowed  = errors.New("file type not allowed")
	ErrFileTooLarge        = errors.New("file too large")
	ErrEmptyFile           = errors.New("empty file")
	ErrCandidateIDRequired = errors.New("candidateId is required")
)
