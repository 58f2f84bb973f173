package repository

import (
	"context"
	"errors"

	"talentflow_backend/internal/model"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateAttempt is returned when the (assessment, candidate, attempt)
	// key is already taken, e.g. by a concurrent submit.
	ErrDuplicateAttempt = errors.New("submission attempt already recorded")
)

// AssessmentStore is the persistence boundary of the assessment engine: one
// document per assessment and one per submission attempt, keyed by id.
type AssessmentStore interface {
	LoadAssessment(ctx context.Context, id string) (*model.Assessment, error)
	// LoadAssessmentsByJob returns the job's assessments oldest first.
	LoadAssessmentsByJob(ctx context.Context, jobID string) ([]*model.Assessment, error)
	// SaveAssessment creates or replaces the assessment keyed by its id.
	SaveAssessment(ctx context.Context, a *model.Assessment) (*model.Assessment, error)
	// DeleteAssessment also removes every submission of the assessment.
	DeleteAssessment(ctx context.Context, id string) error

	// LoadSubmission returns the latest attempt of a candidate.
	LoadSubmission(ctx context.Context, assessmentID, candidateID string) (*model.Submission, error)
	// ListCandidateSubmissions returns a candidate's attempts, first attempt first.
	ListCandidateSubmissions(ctx context.Context, assessmentID, candidateID string) ([]model.Submission, error)
	// SaveSubmission fails with ErrDuplicateAttempt when the attempt number is
	// already stored for the candidate.
	SaveSubmission(ctx context.Context, s *model.Submission) (*model.Submission, error)
	// ListSubmissions returns all attempts ordered by submission time.
	ListSubmissions(ctx context.Context, assessmentID string) ([]model.Submission, error)
}
