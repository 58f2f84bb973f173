package model

import (
	"encoding/json"
	"time"
)

// swagger:model AssessmentSubmission
type Submission struct {
	ID                string          `json:"id"`
	AssessmentID      string          `json:"assessmentId"`
	AssessmentVersion int             `json:"assessmentVersion"`
	CandidateID       string          `json:"candidateId"`
	Responses         AnswerSet       `json:"responses"`
	Score             int             `json:"score"`
	Passed            bool            `json:"passed"`
	StartedAt         time.Time       `json:"startedAt"`
	SubmittedAt       time.Time       `json:"submittedAt"`
	TimeTaken         int64           `json:"timeTaken"` // seconds
	Attempt           int             `json:"attempt"`
	QuestionsAnswered int             `json:"questionsAnswered"`
	TotalQuestions    int             `json:"totalQuestions"`
	Snapshot          json.RawMessage `json:"assessmentSnapshot,omitempty" swaggertype:"object"`
}

// ForCandidate drops the assessment snapshot, which still carries the answer
// keys, from a record shown to the candidate.
func (s Submission) ForCandidate() Submission {
	s.Snapshot = nil
	return s
}

// Feedback is returned to the candidate alongside the stored record.
type Feedback struct {
	Message            string              `json:"message"`
	ShowScore          bool                `json:"showScore"`
	ShowCorrectAnswers bool                `json:"showCorrectAnswers"`
	CorrectAnswers     map[string][]string `json:"correctAnswers,omitempty"`
}

type SubmissionResult struct {
	Submission *Submission `json:"submission"`
	Feedback   Feedback    `json:"feedback"`
}

// ResponseStats summarises every stored attempt of one assessment.
type ResponseStats struct {
	TotalSubmissions int     `json:"totalSubmissions"`
	UniqueCandidates int     `json:"uniqueCandidates"`
	AverageScore     float64 `json:"averageScore"`
	PassRate         float64 `json:"passRate"`
	AverageTimeTaken float64 `json:"averageTimeTaken"`
}
