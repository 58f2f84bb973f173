package engine

import (
	"fmt"
	"unicode/utf8"

	"talentflow_backend/internal/model"
)

const (
	ViolationRequired      = "required"
	ViolationMinLength     = "min_length"
	ViolationMaxLength     = "max_length"
	ViolationInvalidNumber = "invalid_number"
	ViolationMinValue      = "min_value"
	ViolationMaxValue      = "max_value"
	ViolationMinSelections = "min_selections"
	ViolationMaxSelections = "max_selections"
)

type Violation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// validatorFunc checks type-specific rules against a present answer.
type validatorFunc func(q model.Question, answer any) []Violation

var validators = map[model.QuestionType]validatorFunc{
	model.ShortText:   validateText,
	model.LongText:    validateText,
	model.Numeric:     validateNumeric,
	model.MultiChoice: validateSelections,
}

// RegisterValidator installs (or replaces) the rule set for a question type.
// Not safe to call concurrently with Validate; register at init time.
func RegisterValidator(t model.QuestionType, fn func(q model.Question, answer any) []Violation) {
	validators[t] = fn
}

// Validate runs every applicable rule and returns all violations in order.
// Range rules only run when an answer is present.
func Validate(q model.Question, answer any) []Violation {
	var out []Violation
	empty := isEmptyAnswer(answer)
	if q.IsRequired() && empty {
		out = append(out, Violation{Code: ViolationRequired, Message: "This question is required"})
	}
	if empty {
		return out
	}
	if fn, ok := validators[q.Type]; ok {
		out = append(out, fn(q, answer)...)
	}
	return out
}

func validateText(q model.Question, answer any) []Violation {
	s, ok := asScalarString(answer)
	if !ok {
		return nil
	}
	n := utf8.RuneCountInString(s)
	var out []Violation
	if min := q.Validation.MinLength; min != nil && n < *min {
		out = append(out, Violation{Code: ViolationMinLength, Message: fmt.Sprintf("Minimum %d characters required", *min)})
	}
	if max := q.Validation.MaxLength; max != nil && n > *max {
		out = append(out, Violation{Code: ViolationMaxLength, Message: fmt.Sprintf("Maximum %d characters allowed", *max)})
	}
	return out
}

func validateNumeric(q model.Question, answer any) []Violation {
	n, ok := parseNumber(answer)
	if !ok {
		return []Violation{{Code: ViolationInvalidNumber, Message: "Please enter a valid number"}}
	}
	var out []Violation
	if min := q.Validation.MinValue; min != nil && n < *min {
		out = append(out, Violation{Code: ViolationMinValue, Message: fmt.Sprintf("Value must be at least %s", formatNumber(*min))})
	}
	if max := q.Validation.MaxValue; max != nil && n > *max {
		out = append(out, Violation{Code: ViolationMaxValue, Message: fmt.Sprintf("Value must be at most %s", formatNumber(*max))})
	}
	return out
}

func validateSelections(q model.Question, answer any) []Violation {
	list, ok := asList(answer)
	if !ok {
		return nil
	}
	var out []Violation
	if min := q.Validation.MinSelections; min != nil && len(list) < *min {
		out = append(out, Violation{Code: ViolationMinSelections, Message: fmt.Sprintf("Select at least %d options", *min)})
	}
	if max := q.Validation.MaxSelections; max != nil && len(list) > *max {
		out = append(out, Violation{Code: ViolationMaxSelections, Message: fmt.Sprintf("Select at most %d options", *max)})
	}
	return out
}

func formatNumber(f float64) string {
	s, _ := asScalarString(f)
	return s
}

// ValidateAnswers validates every visible question of the assessment (or of
// one section when sectionID is non-empty) and returns only the questions
// that have violations.
func ValidateAnswers(a *model.Assessment, answers model.AnswerSet, sectionID string) map[string][]Violation {
	ev := NewEvaluator(a)
	out := make(map[string][]Violation)
	for _, s := range a.Sections {
		if sectionID != "" && s.ID != sectionID {
			continue
		}
		for _, q := range s.Questions {
			if !ev.IsVisible(q, answers) {
				continue
			}
			if v := Validate(q, answers[q.ID]); len(v) > 0 {
				out[q.ID] = v
			}
		}
	}
	return out
}
