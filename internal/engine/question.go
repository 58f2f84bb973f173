package engine

import (
	"fmt"
	"time"

	"talentflow_backend/internal/model"

	"github.com/google/uuid"
)

// DefaultMaxFileSize is the file-upload size hint in MB for new questions.
const DefaultMaxFileSize = 5.0

var (
	// NewID generates ids for sections, questions, options and submissions.
	NewID = func() string { return uuid.New().String() }
	// Now stamps updatedAt on every builder mutation.
	Now = func() time.Time { return time.Now().UTC() }
)

// CreateQuestion returns a question with the defaults for t. Choice
// questions get one placeholder option.
func CreateQuestion(t model.QuestionType, sectionID string) (model.Question, error) {
	if !t.IsValid() {
		return model.Question{}, fmt.Errorf("%w: %q", ErrInvalidQuestionType, t)
	}
	q := model.Question{
		ID:         NewID(),
		SectionID:  sectionID,
		Type:       t,
		Title:      "",
		Points:     1,
		Validation: DefaultValidation(t),
	}
	if t.IsChoice() {
		q.Options = []model.Option{placeholderOption(1)}
	}
	return q, nil
}

// DefaultValidation returns the rule set a new question of type t starts with.
func DefaultValidation(t model.QuestionType) model.Validation {
	v := model.Validation{Required: false}
	if t == model.FileUpload {
		size := DefaultMaxFileSize
		v.FileTypes = []string{}
		v.MaxFileSize = &size
	}
	return v
}

func placeholderOption(n int) model.Option {
	return model.Option{
		ID:    NewID(),
		Text:  fmt.Sprintf("Option %d", n),
		Value: fmt.Sprintf("option-%d", n),
	}
}
