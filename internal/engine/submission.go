package engine

import (
	"encoding/json"
	"math"
	"time"

	"talentflow_backend/internal/model"
)

// Outcome is what a valid answer set scores against an assessment.
type Outcome struct {
	ScoreResult
	Passed bool
}

// Grade runs visibility, validation and scoring for one answer set. Hidden
// questions keep their answers but are neither validated nor scored.
func Grade(a *model.Assessment, answers model.AnswerSet, passingFallback int) (*Outcome, error) {
	if violations := ValidateAnswers(a, answers, ""); len(violations) > 0 {
		return nil, ValidationFailed(violations)
	}
	res := ScoreAnswers(a, answers)
	return &Outcome{
		ScoreResult: res,
		Passed:      Passed(res.Score, a.Settings, passingFallback),
	}, nil
}

// NewSubmission builds the record for a graded attempt, including a snapshot
// of the assessment as it was scored.
func NewSubmission(a *model.Assessment, candidateID string, answers model.AnswerSet, startedAt, submittedAt time.Time, attempt int, out *Outcome) (*model.Submission, error) {
	snapshot, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	if startedAt.IsZero() || startedAt.After(submittedAt) {
		startedAt = submittedAt
	}
	return &model.Submission{
		ID:                NewID(),
		AssessmentID:      a.ID,
		AssessmentVersion: a.Version,
		CandidateID:       candidateID,
		Responses:         answers.Clone(),
		Score:             out.Score,
		Passed:            out.Passed,
		StartedAt:         startedAt,
		SubmittedAt:       submittedAt,
		TimeTaken:         int64(submittedAt.Sub(startedAt) / time.Second),
		Attempt:           attempt,
		QuestionsAnswered: out.QuestionsAnswered,
		TotalQuestions:    out.TotalQuestions,
		Snapshot:          snapshot,
	}, nil
}

// OverTimeLimit reports whether an attempt took longer than the advisory
// time limit. Late attempts are still accepted.
func OverTimeLimit(a *model.Assessment, startedAt, submittedAt time.Time) bool {
	limit := a.Settings.TimeLimit
	if limit == nil || *limit <= 0 || startedAt.IsZero() {
		return false
	}
	return submittedAt.Sub(startedAt) > time.Duration(*limit)*time.Minute
}

// Stats aggregates score, pass rate and time over stored attempts.
func Stats(subs []model.Submission) model.ResponseStats {
	st := model.ResponseStats{TotalSubmissions: len(subs)}
	if len(subs) == 0 {
		return st
	}
	candidates := make(map[string]struct{})
	var scoreSum, timeSum float64
	passed := 0
	for _, s := range subs {
		candidates[s.CandidateID] = struct{}{}
		scoreSum += float64(s.Score)
		timeSum += float64(s.TimeTaken)
		if s.Passed {
			passed++
		}
	}
	n := float64(len(subs))
	st.UniqueCandidates = len(candidates)
	st.AverageScore = roundTo(scoreSum/n, 1)
	st.PassRate = roundTo(float64(passed)/n*100, 1)
	st.AverageTimeTaken = roundTo(timeSum/n, 1)
	return st
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
