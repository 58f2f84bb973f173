package engine

import (
	"fmt"

	"talentflow_backend/internal/model"
)

const (
	DefaultSectionTitle  = "New Section"
	DefaultQuestionTitle = "Untitled Question"
	copySuffix           = " (Copy)"
)

// Builder operations never touch their input: each one deep-copies the
// assessment, applies the change, renumbers order fields and stamps
// UpdatedAt.

type SectionPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type QuestionPatch struct {
	Type             *model.QuestionType     `json:"type"`
	Title            *string                 `json:"title"`
	Description      *string                 `json:"description"`
	Required         *bool                   `json:"required"`
	Options          *[]model.Option         `json:"options"`
	Points           *float64                `json:"points" binding:"omitempty,gte=0"`
	Validation       *model.Validation       `json:"validation"`
	ConditionalLogic *model.ConditionalLogic `json:"conditionalLogic"`
	// ClearConditionalLogic removes the showIf clause; ConditionalLogic is ignored.
	ClearConditionalLogic bool `json:"clearConditionalLogic"`
}

// NewAssessment returns an empty draft for a job.
func NewAssessment(jobID, title string) *model.Assessment {
	now := Now()
	return &model.Assessment{
		ID:        NewID(),
		JobID:     jobID,
		Title:     title,
		Sections:  []model.Section{},
		Settings:  model.DefaultSettings(),
		Status:    model.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func AddSection(a *model.Assessment) (*model.Assessment, model.Section) {
	out := a.Clone()
	s := model.Section{
		ID:        NewID(),
		Title:     DefaultSectionTitle,
		Questions: []model.Question{},
	}
	out.Sections = append(out.Sections, s)
	touch(out)
	return out, out.Sections[len(out.Sections)-1]
}

func UpdateSection(a *model.Assessment, sectionID string, patch SectionPatch) (*model.Assessment, error) {
	out := a.Clone()
	idx := sectionIndex(out, sectionID)
	if idx < 0 {
		return nil, ErrSectionNotFound
	}
	if patch.Title != nil {
		out.Sections[idx].Title = *patch.Title
	}
	if patch.Description != nil {
		out.Sections[idx].Description = *patch.Description
	}
	touch(out)
	return out, nil
}

// DeleteSection removes the section together with its questions.
func DeleteSection(a *model.Assessment, sectionID string) (*model.Assessment, error) {
	out := a.Clone()
	idx := sectionIndex(out, sectionID)
	if idx < 0 {
		return nil, ErrSectionNotFound
	}
	out.Sections = append(out.Sections[:idx], out.Sections[idx+1:]...)
	touch(out)
	return out, nil
}

func AddQuestion(a *model.Assessment, sectionID string, t model.QuestionType) (*model.Assessment, model.Question, error) {
	out := a.Clone()
	idx := sectionIndex(out, sectionID)
	if idx < 0 {
		return nil, model.Question{}, ErrSectionNotFound
	}
	q, err := CreateQuestion(t, sectionID)
	if err != nil {
		return nil, model.Question{}, err
	}
	q.Title = DefaultQuestionTitle
	out.Sections[idx].Questions = append(out.Sections[idx].Questions, q)
	touch(out)
	s := out.Sections[idx]
	return out, s.Questions[len(s.Questions)-1], nil
}

func UpdateQuestion(a *model.Assessment, questionID string, patch QuestionPatch) (*model.Assessment, error) {
	out := a.Clone()
	si, qi := questionIndex(out, questionID)
	if si < 0 {
		return nil, ErrQuestionNotFound
	}
	q := &out.Sections[si].Questions[qi]

	if patch.Type != nil && *patch.Type != q.Type {
		if !patch.Type.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidQuestionType, *patch.Type)
		}
		q.Type = *patch.Type
		q.Validation = DefaultValidation(q.Type)
		switch {
		case !q.Type.IsChoice():
			q.Options = nil
		case len(q.Options) == 0:
			q.Options = []model.Option{placeholderOption(1)}
		}
	}
	if patch.Title != nil {
		q.Title = *patch.Title
	}
	if patch.Description != nil {
		q.Description = *patch.Description
	}
	if patch.Required != nil {
		q.Required = *patch.Required
	}
	if patch.Options != nil && q.Type.IsChoice() {
		opts := make([]model.Option, len(*patch.Options))
		copy(opts, *patch.Options)
		for i := range opts {
			if opts[i].ID == "" {
				opts[i].ID = NewID()
			}
		}
		q.Options = opts
	}
	if patch.Points != nil {
		q.Points = *patch.Points
	}
	if patch.Validation != nil {
		q.Validation = patch.Validation.Clone()
	}
	switch {
	case patch.ClearConditionalLogic:
		q.ConditionalLogic = nil
	case patch.ConditionalLogic != nil:
		cl := *patch.ConditionalLogic
		q.ConditionalLogic = &cl
	}
	touch(out)
	return out, nil
}

func DeleteQuestion(a *model.Assessment, questionID string) (*model.Assessment, error) {
	out := a.Clone()
	si, qi := questionIndex(out, questionID)
	if si < 0 {
		return nil, ErrQuestionNotFound
	}
	qs := out.Sections[si].Questions
	out.Sections[si].Questions = append(qs[:qi], qs[qi+1:]...)
	touch(out)
	return out, nil
}

// DuplicateQuestion appends a copy with fresh question and option ids to the
// end of the source question's section.
func DuplicateQuestion(a *model.Assessment, questionID string) (*model.Assessment, model.Question, error) {
	out := a.Clone()
	si, qi := questionIndex(out, questionID)
	if si < 0 {
		return nil, model.Question{}, ErrQuestionNotFound
	}
	dup := out.Sections[si].Questions[qi].Clone()
	dup.ID = NewID()
	dup.Title += copySuffix
	for i := range dup.Options {
		dup.Options[i].ID = NewID()
	}
	out.Sections[si].Questions = append(out.Sections[si].Questions, dup)
	touch(out)
	s := out.Sections[si]
	return out, s.Questions[len(s.Questions)-1], nil
}

// ReorderSections arranges sections to match newOrder, which must name every
// section exactly once.
func ReorderSections(a *model.Assessment, newOrder []string) (*model.Assessment, error) {
	if len(newOrder) != len(a.Sections) {
		return nil, fmt.Errorf("%w: expected %d section ids, got %d", ErrInvalidReorder, len(a.Sections), len(newOrder))
	}
	out := a.Clone()
	byID := make(map[string]model.Section, len(out.Sections))
	for _, s := range out.Sections {
		byID[s.ID] = s
	}
	sections := make([]model.Section, 0, len(newOrder))
	for _, id := range newOrder {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown or repeated section %q", ErrInvalidReorder, id)
		}
		delete(byID, id)
		sections = append(sections, s)
	}
	out.Sections = sections
	touch(out)
	return out, nil
}

// ReorderQuestions moves the question at from to position to within one
// section; the other questions keep their relative order.
func ReorderQuestions(a *model.Assessment, sectionID string, from, to int) (*model.Assessment, error) {
	out := a.Clone()
	idx := sectionIndex(out, sectionID)
	if idx < 0 {
		return nil, ErrSectionNotFound
	}
	qs := out.Sections[idx].Questions
	if from < 0 || from >= len(qs) || to < 0 || to >= len(qs) {
		return nil, fmt.Errorf("%w: index out of range", ErrInvalidReorder)
	}
	moved := qs[from]
	qs = append(qs[:from], qs[from+1:]...)
	qs = append(qs[:to], append([]model.Question{moved}, qs[to:]...)...)
	out.Sections[idx].Questions = qs
	touch(out)
	return out, nil
}

// Renumber rewrites order and sectionId fields from slice positions.
func Renumber(a *model.Assessment) {
	for i := range a.Sections {
		s := &a.Sections[i]
		s.Order = i
		for j := range s.Questions {
			s.Questions[j].Order = j
			s.Questions[j].SectionID = s.ID
		}
	}
}

func touch(a *model.Assessment) {
	Renumber(a)
	a.UpdatedAt = Now()
}

func sectionIndex(a *model.Assessment, id string) int {
	for i, s := range a.Sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func questionIndex(a *model.Assessment, id string) (int, int) {
	for i, s := range a.Sections {
		for j, q := range s.Questions {
			if q.ID == id {
				return i, j
			}
		}
	}
	return -1, -1
}
