package engine

import (
	"talentflow_backend/internal/model"
)

// IsVisible evaluates the question's showIf clause against the answers.
// Questions without conditional logic are always visible, and an unknown
// operator or a self reference fails open. IsVisible cannot tell a missing
// target question from an unanswered one, so a dangling reference is
// evaluated as an empty answer; use NewEvaluator when references to deleted
// questions must fail open.
func IsVisible(q model.Question, answers model.AnswerSet) bool {
	if q.ConditionalLogic == nil {
		return true
	}
	cond := q.ConditionalLogic.ShowIf
	if cond.QuestionID == "" || cond.QuestionID == q.ID {
		return true
	}
	target := answers[cond.QuestionID]

	switch cond.Operator {
	case model.OpEquals:
		return strictEqual(target, cond.Value)
	case model.OpNotEquals:
		return !strictEqual(target, cond.Value)
	case model.OpContains:
		list, ok := target.([]any)
		if ok {
			for _, item := range list {
				if strictEqual(item, cond.Value) {
					return true
				}
			}
			return false
		}
		if strs, ok := target.([]string); ok {
			for _, item := range strs {
				if strictEqual(item, cond.Value) {
					return true
				}
			}
		}
		return false
	case model.OpGreaterThan, model.OpLessThan:
		left, ok := parseNumber(target)
		if !ok {
			return false
		}
		right, ok := parseNumber(cond.Value)
		if !ok {
			return false
		}
		if cond.Operator == model.OpGreaterThan {
			return left > right
		}
		return left < right
	case model.OpIsEmpty:
		return isEmptyAnswer(target)
	case model.OpIsNotEmpty:
		return !isEmptyAnswer(target)
	}
	return true
}

// Evaluator knows the question ids of one assessment so that references to
// missing questions fail open instead of hiding the dependent question.
type Evaluator struct {
	known map[string]struct{}
}

func NewEvaluator(a *model.Assessment) *Evaluator {
	ev := &Evaluator{known: make(map[string]struct{})}
	if a == nil {
		return ev
	}
	for _, s := range a.Sections {
		for _, q := range s.Questions {
			ev.known[q.ID] = struct{}{}
		}
	}
	return ev
}

func (e *Evaluator) IsVisible(q model.Question, answers model.AnswerSet) bool {
	if q.ConditionalLogic != nil {
		if _, ok := e.known[q.ConditionalLogic.ShowIf.QuestionID]; !ok {
			return true
		}
	}
	return IsVisible(q, answers)
}

// VisibleQuestions returns the active questions in section/question order.
func VisibleQuestions(a *model.Assessment, answers model.AnswerSet) []model.Question {
	ev := NewEvaluator(a)
	var out []model.Question
	for _, q := range a.Questions() {
		if ev.IsVisible(q, answers) {
			out = append(out, q)
		}
	}
	return out
}
