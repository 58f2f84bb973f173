package model

import "time"

type QuestionType string

const (
	SingleChoice QuestionType = "single-choice"
	MultiChoice  QuestionType = "multi-choice"
	ShortText    QuestionType = "short-text"
	LongText     QuestionType = "long-text"
	Numeric      QuestionType = "numeric"
	FileUpload   QuestionType = "file-upload"
)

var QuestionTypes = []QuestionType{SingleChoice, MultiChoice, ShortText, LongText, Numeric, FileUpload}

func (t QuestionType) IsValid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsChoice reports whether questions of this type carry options.
func (t QuestionType) IsChoice() bool {
	return t == SingleChoice || t == MultiChoice
}

type AssessmentStatus string

const (
	StatusDraft    AssessmentStatus = "draft"
	StatusActive   AssessmentStatus = "active"
	StatusArchived AssessmentStatus = "archived"
)

func (s AssessmentStatus) IsValid() bool {
	return s == StatusDraft || s == StatusActive || s == StatusArchived
}

type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpIsEmpty     Operator = "is_empty"
	OpIsNotEmpty  Operator = "is_not_empty"
)

// DefaultPassingScore applies when Settings.PassingScore is nil.
const DefaultPassingScore = 70

// swagger:model AssessmentOption
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Value     string `json:"value"`
	IsCorrect bool   `json:"isCorrect,omitempty"`
}

// Validation holds the rule keys recognised for a question type. Nil pointers
// mean the rule is unset.
type Validation struct {
	Required      bool     `json:"required"`
	MinLength     *int     `json:"minLength,omitempty"`
	MaxLength     *int     `json:"maxLength,omitempty"`
	MinValue      *float64 `json:"minValue,omitempty"`
	MaxValue      *float64 `json:"maxValue,omitempty"`
	MinSelections *int     `json:"minSelections,omitempty"`
	MaxSelections *int     `json:"maxSelections,omitempty"`
	FileTypes     []string `json:"fileTypes,omitempty"`
	MaxFileSize   *float64 `json:"maxFileSize,omitempty"` // MB
}

type ShowIf struct {
	QuestionID string   `json:"questionId"`
	Operator   Operator `json:"operator"`
	Value      any      `json:"value,omitempty"`
}

type ConditionalLogic struct {
	ShowIf ShowIf `json:"showIf"`
}

// swagger:model AssessmentQuestion
type Question struct {
	ID               string            `json:"id"`
	SectionID        string            `json:"sectionId"`
	Type             QuestionType      `json:"type"`
	Title            string            `json:"title"`
	Description      string            `json:"description,omitempty"`
	Required         bool              `json:"required"`
	Options          []Option          `json:"options,omitempty"`
	Points           float64           `json:"points"`
	Order            int               `json:"order"`
	Validation       Validation        `json:"validation"`
	ConditionalLogic *ConditionalLogic `json:"conditionalLogic"`
}

// IsRequired combines the question flag with the validation flag.
func (q Question) IsRequired() bool {
	return q.Required || q.Validation.Required
}

func (q Question) Clone() Question {
	c := q
	if q.Options != nil {
		c.Options = append([]Option(nil), q.Options...)
	}
	c.Validation = q.Validation.Clone()
	if q.ConditionalLogic != nil {
		cl := *q.ConditionalLogic
		c.ConditionalLogic = &cl
	}
	return c
}

func (v Validation) Clone() Validation {
	c := v
	c.MinLength = cloneInt(v.MinLength)
	c.MaxLength = cloneInt(v.MaxLength)
	c.MinSelections = cloneInt(v.MinSelections)
	c.MaxSelections = cloneInt(v.MaxSelections)
	c.MinValue = cloneFloat(v.MinValue)
	c.MaxValue = cloneFloat(v.MaxValue)
	c.MaxFileSize = cloneFloat(v.MaxFileSize)
	if v.FileTypes != nil {
		c.FileTypes = append([]string{}, v.FileTypes...)
	}
	return c
}

// swagger:model AssessmentSection
type Section struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Order       int        `json:"order"`
	Questions   []Question `json:"questions"`
}

func (s Section) Clone() Section {
	c := s
	c.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		c.Questions[i] = q.Clone()
	}
	return c
}

type Settings struct {
	TimeLimit           *int `json:"timeLimit"` // minutes
	AllowBackNavigation bool `json:"allowBackNavigation"`
	RandomizeQuestions  bool `json:"randomizeQuestions"`
	ShowProgressBar     bool `json:"showProgressBar"`
	AllowRetakes        bool `json:"allowRetakes"`
	ShowResults         bool `json:"showResults"`
	ShowCorrectAnswers  bool `json:"showCorrectAnswers"`
	PassingScore        *int `json:"passingScore"`
}

func DefaultSettings() Settings {
	return Settings{
		AllowBackNavigation: true,
		ShowProgressBar:     true,
		ShowResults:         true,
	}
}

// EffectivePassingScore returns PassingScore or DefaultPassingScore when unset.
func (s Settings) EffectivePassingScore() int {
	if s.PassingScore == nil {
		return DefaultPassingScore
	}
	return *s.PassingScore
}

// swagger:model Assessment
type Assessment struct {
	ID          string           `json:"id"`
	JobID       string           `json:"jobId"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Sections    []Section        `json:"sections"`
	Settings    Settings         `json:"settings"`
	Status      AssessmentStatus `json:"status"`
	Version     int              `json:"version"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Clone returns a deep copy so callers never share sections, questions or
// option slices with the receiver.
func (a *Assessment) Clone() *Assessment {
	if a == nil {
		return nil
	}
	c := *a
	c.Sections = make([]Section, len(a.Sections))
	for i, s := range a.Sections {
		c.Sections[i] = s.Clone()
	}
	c.Settings.TimeLimit = cloneInt(a.Settings.TimeLimit)
	c.Settings.PassingScore = cloneInt(a.Settings.PassingScore)
	return &c
}

// Questions flattens all questions in section/question order.
func (a *Assessment) Questions() []Question {
	var out []Question
	for _, s := range a.Sections {
		out = append(out, s.Questions...)
	}
	return out
}

func (a *Assessment) FindQuestion(id string) (Question, bool) {
	for _, s := range a.Sections {
		for _, q := range s.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return Question{}, false
}

func (a *Assessment) QuestionCount() int {
	n := 0
	for _, s := range a.Sections {
		n += len(s.Questions)
	}
	return n
}

// AnswerSet maps question ids to raw answers: strings for text, numeric,
// single-choice and file-upload questions, string lists for multi-choice.
type AnswerSet map[string]any

func (a AnswerSet) Clone() AnswerSet {
	if a == nil {
		return nil
	}
	c := make(AnswerSet, len(a))
	for k, v := range a {
		if list, ok := v.([]any); ok {
			v = append([]any(nil), list...)
		} else if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		c[k] = v
	}
	return c
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
