package engine

import (
	"fmt"
	"sort"
	"strings"

	"talentflow_backend/internal/model"
)

// TemplateScreening is the built-in candidate screening questionnaire.
const TemplateScreening = "screening"

var templates = map[string]func(jobID string) *model.Assessment{
	TemplateScreening: screeningTemplate,
}

// NewFromTemplate seeds a draft assessment for jobID from a named template.
func NewFromTemplate(jobID, name string) (*model.Assessment, error) {
	build, ok := templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownTemplate, name, strings.Join(TemplateNames(), ", "))
	}
	a := build(jobID)
	Renumber(a)
	return a, nil
}

// TemplateNames lists the built-in templates in name order.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func screeningTemplate(jobID string) *model.Assessment {
	a := NewAssessment(jobID, "Candidate Screening")
	a.Description = "Basic screening questions for applicants."

	background := model.Section{ID: NewID(), Title: "Background", Questions: []model.Question{}}
	years := mustQuestion(model.Numeric, background.ID, "Years of professional experience")
	years.Required = true
	min, max := 0.0, 50.0
	years.Validation.MinValue = &min
	years.Validation.MaxValue = &max

	relocate := mustQuestion(model.SingleChoice, background.ID, "Are you willing to relocate?")
	relocate.Required = true
	relocate.Options = []model.Option{
		{ID: NewID(), Text: "Yes", Value: "yes"},
		{ID: NewID(), Text: "No", Value: "no"},
	}

	details := mustQuestion(model.LongText, background.ID, "Which locations would you consider?")
	maxLen := 500
	details.Validation.MaxLength = &maxLen
	details.ConditionalLogic = &model.ConditionalLogic{ShowIf: model.ShowIf{
		QuestionID: relocate.ID,
		Operator:   model.OpEquals,
		Value:      "yes",
	}}
	background.Questions = append(background.Questions, years, relocate, details)

	motivation := model.Section{ID: NewID(), Title: "Motivation", Questions: []model.Question{}}
	why := mustQuestion(model.LongText, motivation.ID, "Why are you interested in this role?")
	why.Required = true
	minLen, maxWhy := 20, 2000
	why.Validation.MinLength = &minLen
	why.Validation.MaxLength = &maxWhy

	resume := mustQuestion(model.FileUpload, motivation.ID, "Upload your resume")
	resume.Validation.FileTypes = []string{".pdf", ".doc", ".docx"}
	motivation.Questions = append(motivation.Questions, why, resume)

	a.Sections = []model.Section{background, motivation}
	return a
}

func mustQuestion(t model.QuestionType, sectionID, title string) model.Question {
	q, err := CreateQuestion(t, sectionID)
	if err != nil {
		panic(err)
	}
	q.Title = title
	return q
}
