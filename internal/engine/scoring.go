package engine

import (
	"math"

	"talentflow_backend/internal/model"
)

// EmptyAssessmentScore is the score given when no visible question carries
// any points.
const EmptyAssessmentScore = 0

type QuestionScore struct {
	QuestionID string   `json:"questionId"`
	Gradable   bool     `json:"gradable"`
	Answered   bool     `json:"answered"`
	Correct    *bool    `json:"correct,omitempty"`
	Earned     float64  `json:"earned"`
	Max        float64  `json:"max"`
	Key        []string `json:"-"`
}

type ScoreResult struct {
	Score             int             `json:"score"`
	Earned            float64         `json:"earned"`
	Total             float64         `json:"total"`
	QuestionsAnswered int             `json:"questionsAnswered"`
	TotalQuestions    int             `json:"totalQuestions"`
	Questions         []QuestionScore `json:"questions"`
}

// grader scores one visible question. ok=false means the question has no
// answer key and falls back to answered-means-full-credit.
type grader func(q model.Question, answer any) (res QuestionScore, ok bool)

var graders = map[model.QuestionType]grader{
	model.SingleChoice: gradeSingleChoice,
	model.MultiChoice:  gradeMultiChoice,
}

// RegisterGrader installs an auto-grading strategy for a question type.
func RegisterGrader(t model.QuestionType, fn func(q model.Question, answer any) (QuestionScore, bool)) {
	graders[t] = fn
}

func answerKey(q model.Question) []string {
	var key []string
	for _, o := range q.Options {
		if o.IsCorrect {
			key = append(key, o.Value)
		}
	}
	return key
}

func gradeSingleChoice(q model.Question, answer any) (QuestionScore, bool) {
	key := answerKey(q)
	if len(key) == 0 {
		return QuestionScore{}, false
	}
	res := QuestionScore{QuestionID: q.ID, Gradable: true, Max: q.Points, Key: key}
	if isEmptyAnswer(answer) {
		return res, true
	}
	res.Answered = true
	selected, _ := asScalarString(answer)
	correct := false
	for _, k := range key {
		if selected == k {
			correct = true
			break
		}
	}
	res.Correct = &correct
	if correct {
		res.Earned = q.Points
	}
	return res, true
}

func gradeMultiChoice(q model.Question, answer any) (QuestionScore, bool) {
	key := answerKey(q)
	if len(key) == 0 {
		return QuestionScore{}, false
	}
	res := QuestionScore{QuestionID: q.ID, Gradable: true, Max: q.Points, Key: key}
	if isEmptyAnswer(answer) {
		return res, true
	}
	res.Answered = true
	selected, ok := asList(answer)
	if !ok {
		if s, scalar := asScalarString(answer); scalar {
			selected = []string{s}
		}
	}
	correct := equalSet(selected, key)
	res.Correct = &correct
	if correct {
		res.Earned = q.Points
	}
	return res, true
}

func equalSet(a, b []string) bool {
	left := make(map[string]struct{}, len(a))
	for _, v := range a {
		left[v] = struct{}{}
	}
	right := make(map[string]struct{}, len(b))
	for _, v := range b {
		right[v] = struct{}{}
	}
	if len(left) != len(right) {
		return false
	}
	for v := range left {
		if _, ok := right[v]; !ok {
			return false
		}
	}
	return true
}

// ScoreAnswers grades the visible questions. Questions without an answer key
// earn their full points when answered and nothing when left empty.
func ScoreAnswers(a *model.Assessment, answers model.AnswerSet) ScoreResult {
	visible := VisibleQuestions(a, answers)
	res := ScoreResult{TotalQuestions: len(visible), Questions: make([]QuestionScore, 0, len(visible))}
	for _, q := range visible {
		answer := answers[q.ID]
		var qs QuestionScore
		ok := false
		if fn, found := graders[q.Type]; found {
			qs, ok = fn(q, answer)
		}
		if !ok {
			qs = QuestionScore{QuestionID: q.ID, Max: q.Points}
			if !isEmptyAnswer(answer) {
				qs.Answered = true
				qs.Earned = q.Points
			}
		}
		// negative points count as zero; score stays within 0-100
		qs.Max = math.Max(qs.Max, 0)
		qs.Earned = math.Min(math.Max(qs.Earned, 0), qs.Max)
		if qs.Answered {
			res.QuestionsAnswered++
		}
		res.Earned += qs.Earned
		res.Total += qs.Max
		res.Questions = append(res.Questions, qs)
	}
	if res.Total <= 0 {
		res.Score = EmptyAssessmentScore
		return res
	}
	res.Score = int(math.Round(res.Earned / res.Total * 100))
	return res
}

// Passed compares a score with the assessment's passing threshold, falling
// back to fallback (or the package default) when the assessment sets none.
func Passed(score int, settings model.Settings, fallback int) bool {
	threshold := model.DefaultPassingScore
	if fallback > 0 {
		threshold = fallback
	}
	if settings.PassingScore != nil {
		threshold = *settings.PassingScore
	}
	return score >= threshold
}

// BuildFeedback assembles the candidate-facing summary. Correct answers are
// only revealed when the assessment allows it and the candidate passed.
func BuildFeedback(a *model.Assessment, res ScoreResult, passed bool) model.Feedback {
	fb := model.Feedback{
		ShowScore:          a.Settings.ShowResults,
		ShowCorrectAnswers: a.Settings.ShowCorrectAnswers && passed,
	}
	switch {
	case !a.Settings.ShowResults:
		fb.Message = "Thank you! Your responses have been submitted."
	case passed:
		fb.Message = "Congratulations! You passed the assessment."
	default:
		fb.Message = "Thank you for completing the assessment. Unfortunately you did not reach the passing score."
	}
	if fb.ShowCorrectAnswers {
		fb.CorrectAnswers = make(map[string][]string)
		for _, qs := range res.Questions {
			if qs.Gradable {
				fb.CorrectAnswers[qs.QuestionID] = append([]string(nil), qs.Key...)
			}
		}
	}
	return fb
}
