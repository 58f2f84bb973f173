package engine

import (
	"errors"
	"fmt"
	"strings"

	"talentflow_backend/internal/model"
)

const (
	IssueMissingTitle         = "missing_title"
	IssueNoQuestions          = "no_questions"
	IssueInvalidType          = "invalid_question_type"
	IssueMissingOptions       = "missing_options"
	IssueDuplicateOptionValue = "duplicate_option_value"
	IssueDuplicateID          = "duplicate_id"
	IssueMalformedCondition   = "malformed_conditional_logic"
	IssueNegativePoints       = "negative_points"
	IssueInvalidStatus        = "invalid_status"
	IssueInvalidPassingScore  = "invalid_passing_score"
)

// Issue is a builder-time structural problem. Field is a path such as
// sections[0].questions[2].options.
type Issue struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StructureError reports every issue found by ValidateStructure.
type StructureError struct {
	Issues []Issue
}

func (err *StructureError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return "assessment structure invalid: " + strings.Join(parts, "; ")
}

type issueCollector struct {
	issues []Issue
}

func (c *issueCollector) add(field, code, message string) {
	c.issues = append(c.issues, Issue{Field: field, Code: code, Message: message})
}

func (c *issueCollector) result() error {
	if len(c.issues) == 0 {
		return nil
	}
	return &StructureError{Issues: c.issues}
}

// ValidateStructure checks what must hold before an assessment is saved: a
// title, at least one question, known types, options for choice questions
// and conditional logic that points at another existing question.
func ValidateStructure(a *model.Assessment) error {
	c := &issueCollector{}
	if strings.TrimSpace(a.Title) == "" {
		c.add("title", IssueMissingTitle, "is required")
	}
	if a.QuestionCount() == 0 {
		c.add("sections", IssueNoQuestions, "must include at least one question")
	}
	if a.Status != "" && !a.Status.IsValid() {
		c.add("status", IssueInvalidStatus, fmt.Sprintf("unknown status %q", a.Status))
	}
	if p := a.Settings.PassingScore; p != nil && (*p < 0 || *p > 100) {
		c.add("settings.passingScore", IssueInvalidPassingScore, "must be between 0 and 100")
	}

	checkQuestions(c, a, questionIDs(a), nil)
	return c.result()
}

// ValidateQuestions runs the per-question checks builder edits must pass:
// known type, non-negative points, distinct option values and a showIf that
// is neither empty nor self-referencing. References to missing questions are
// only reported for the questions named in changed, so a draft left with a
// dangling showIf by a delete can still be edited.
func ValidateQuestions(a *model.Assessment, changed ...string) error {
	c := &issueCollector{}
	strict := make(map[string]bool, len(changed))
	for _, id := range changed {
		strict[id] = true
	}
	checkQuestions(c, a, questionIDs(a), strict)
	return c.result()
}

func questionIDs(a *model.Assessment) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, s := range a.Sections {
		for _, q := range s.Questions {
			ids[q.ID] = struct{}{}
		}
	}
	return ids
}

// checkQuestions reports question issues. A nil strict set checks every
// showIf target against ids.
func checkQuestions(c *issueCollector, a *model.Assessment, ids map[string]struct{}, strict map[string]bool) {
	seen := make(map[string]struct{})
	for si, s := range a.Sections {
		for qi, q := range s.Questions {
			prefix := fmt.Sprintf("sections[%d].questions[%d]", si, qi)
			if _, dup := seen[q.ID]; dup || q.ID == "" {
				c.add(prefix+".id", IssueDuplicateID, fmt.Sprintf("duplicate or empty id %q", q.ID))
			}
			seen[q.ID] = struct{}{}

			if !q.Type.IsValid() {
				c.add(prefix+".type", IssueInvalidType, fmt.Sprintf("unknown type %q", q.Type))
			}
			if q.Points < 0 {
				c.add(prefix+".points", IssueNegativePoints, "must not be negative")
			}
			if q.Type.IsChoice() {
				checkOptions(c, prefix, q.Options)
			}
			if cl := q.ConditionalLogic; cl != nil {
				target := cl.ShowIf.QuestionID
				switch {
				case target == q.ID:
					c.add(prefix+".conditionalLogic", IssueMalformedCondition, "must not reference itself")
				case target == "":
					c.add(prefix+".conditionalLogic", IssueMalformedCondition, "questionId is required")
				case strict == nil || strict[q.ID]:
					if _, ok := ids[target]; !ok {
						c.add(prefix+".conditionalLogic", IssueMalformedCondition, fmt.Sprintf("references unknown question %q", target))
					}
				}
			}
		}
	}
}

func checkOptions(c *issueCollector, prefix string, options []model.Option) {
	if len(options) == 0 {
		c.add(prefix+".options", IssueMissingOptions, "choice questions need at least one option")
		return
	}
	values := make(map[string]struct{}, len(options))
	for i, o := range options {
		if _, dup := values[o.Value]; dup {
			c.add(fmt.Sprintf("%s.options[%d].value", prefix, i), IssueDuplicateOptionValue, fmt.Sprintf("duplicate value %q", o.Value))
		}
		values[o.Value] = struct{}{}
	}
}

// StructureIssues unwraps the issues of a ValidateStructure error.
func StructureIssues(err error) []Issue {
	var se *StructureError
	if errors.As(err, &se) {
		return se.Issues
	}
	return nil
}

// SuggestedStatus keeps empty assessments, or ones with an empty section, in
// draft; otherwise the current status stands.
func SuggestedStatus(a *model.Assessment) model.AssessmentStatus {
	if len(a.Sections) == 0 {
		return model.StatusDraft
	}
	for _, s := range a.Sections {
		if len(s.Questions) == 0 {
			return model.StatusDraft
		}
	}
	if a.Status == "" {
		return model.StatusDraft
	}
	return a.Status
}

// Sanitize returns a candidate-facing copy with answer keys removed.
func Sanitize(a *model.Assessment) *model.Assessment {
	out := a.Clone()
	for si := range out.Sections {
		for qi := range out.Sections[si].Questions {
			opts := out.Sections[si].Questions[qi].Options
			for oi := range opts {
				opts[oi].IsCorrect = false
			}
		}
	}
	return out
}
