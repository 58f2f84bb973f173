package engine

import (
	"errors"
	"testing"
	"time"

	"talentflow_backend/internal/model"
)

func fixedClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := Now
	Now = func() time.Time { return at }
	t.Cleanup(func() { Now = prev })
}

// builderFixture returns an assessment with two sections: s1 holding a
// single-choice and a short-text question, s2 empty.
func builderFixture(t *testing.T) *model.Assessment {
	t.Helper()
	a := NewAssessment("job-1", "Backend screening")
	a, s1 := AddSection(a)
	a, _ = AddSection(a)
	var err error
	a, _, err = AddQuestion(a, s1.ID, model.SingleChoice)
	if err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}
	a, _, err = AddQuestion(a, s1.ID, model.ShortText)
	if err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}
	return a
}

func assertOrders(t *testing.T, a *model.Assessment) {
	t.Helper()
	for i, s := range a.Sections {
		if s.Order != i {
			t.Fatalf("section %s order = %d, want %d", s.ID, s.Order, i)
		}
		for j, q := range s.Questions {
			if q.Order != j {
				t.Fatalf("question %s order = %d, want %d", q.ID, q.Order, j)
			}
			if q.SectionID != s.ID {
				t.Fatalf("question %s sectionId = %s, want %s", q.ID, q.SectionID, s.ID)
			}
		}
	}
}

func TestBuilder_DoesNotMutateInput(t *testing.T) {
	a := builderFixture(t)
	before := a.Clone()
	q := a.Sections[0].Questions[0]

	title := "Changed"
	if _, err := UpdateQuestion(a, q.ID, QuestionPatch{Title: &title}); err != nil {
		t.Fatalf("UpdateQuestion: %v", err)
	}
	if _, err := DeleteSection(a, a.Sections[0].ID); err != nil {
		t.Fatalf("DeleteSection: %v", err)
	}
	if _, err := ReorderQuestions(a, a.Sections[0].ID, 0, 1); err != nil {
		t.Fatalf("ReorderQuestions: %v", err)
	}

	if a.Sections[0].Questions[0].Title != before.Sections[0].Questions[0].Title {
		t.Fatalf("input question was mutated")
	}
	if len(a.Sections) != len(before.Sections) || a.Sections[0].Questions[0].ID != before.Sections[0].Questions[0].ID {
		t.Fatalf("input sections were mutated")
	}
}

func TestBuilder_StampsUpdatedAt(t *testing.T) {
	a := builderFixture(t)
	later := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	fixedClock(t, later)

	out, _ := AddSection(a)
	if !out.UpdatedAt.Equal(later) {
		t.Fatalf("updatedAt = %v, want %v", out.UpdatedAt, later)
	}
	if a.UpdatedAt.Equal(later) {
		t.Fatalf("input updatedAt should be unchanged")
	}
}

func TestDeleteSection_CascadesAndRenumbers(t *testing.T) {
	a := builderFixture(t)
	out, err := DeleteSection(a, a.Sections[0].ID)
	if err != nil {
		t.Fatalf("DeleteSection: %v", err)
	}
	if len(out.Sections) != 1 || out.QuestionCount() != 0 {
		t.Fatalf("expected one empty section left, got %+v", out.Sections)
	}
	assertOrders(t, out)

	if _, err := DeleteSection(a, "missing"); !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("err = %v, want ErrSectionNotFound", err)
	}
}

func TestUpdateSection(t *testing.T) {
	a := builderFixture(t)
	title, desc := "Experience", "Tell us about yourself"
	out, err := UpdateSection(a, a.Sections[1].ID, SectionPatch{Title: &title, Description: &desc})
	if err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}
	if out.Sections[1].Title != title || out.Sections[1].Description != desc {
		t.Fatalf("section not updated: %+v", out.Sections[1])
	}
	if _, err := UpdateSection(a, "missing", SectionPatch{}); !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("err = %v, want ErrSectionNotFound", err)
	}
}

func TestAddQuestion_Errors(t *testing.T) {
	a := builderFixture(t)
	if _, _, err := AddQuestion(a, "missing", model.ShortText); !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("err = %v, want ErrSectionNotFound", err)
	}
	if _, _, err := AddQuestion(a, a.Sections[0].ID, "matrix"); !errors.Is(err, ErrInvalidQuestionType) {
		t.Fatalf("err = %v, want ErrInvalidQuestionType", err)
	}
}

func TestUpdateQuestion_Patch(t *testing.T) {
	a := builderFixture(t)
	q := a.Sections[0].Questions[0]
	source := a.Sections[0].Questions[1]

	required := true
	points := 3.0
	options := []model.Option{{Text: "Yes", Value: "yes", IsCorrect: true}, {Text: "No", Value: "no"}}
	out, err := UpdateQuestion(a, q.ID, QuestionPatch{
		Required:         &required,
		Points:           &points,
		Options:          &options,
		ConditionalLogic: &model.ConditionalLogic{ShowIf: model.ShowIf{QuestionID: source.ID, Operator: model.OpIsNotEmpty}},
	})
	if err != nil {
		t.Fatalf("UpdateQuestion: %v", err)
	}
	got, _ := out.FindQuestion(q.ID)
	if !got.Required || got.Points != 3 || len(got.Options) != 2 || got.ConditionalLogic == nil {
		t.Fatalf("patch not applied: %+v", got)
	}
	for _, o := range got.Options {
		if o.ID == "" {
			t.Fatalf("options should get ids")
		}
	}

	out, err = UpdateQuestion(out, q.ID, QuestionPatch{ClearConditionalLogic: true})
	if err != nil {
		t.Fatalf("UpdateQuestion: %v", err)
	}
	got, _ = out.FindQuestion(q.ID)
	if got.ConditionalLogic != nil {
		t.Fatalf("conditional logic should be cleared")
	}
}

func TestUpdateQuestion_TypeChangeResetsShape(t *testing.T) {
	a := builderFixture(t)
	q := a.Sections[0].Questions[0]

	numeric := model.Numeric
	out, err := UpdateQuestion(a, q.ID, QuestionPatch{Type: &numeric})
	if err != nil {
		t.Fatalf("UpdateQuestion: %v", err)
	}
	got, _ := out.FindQuestion(q.ID)
	if got.Type != model.Numeric || len(got.Options) != 0 {
		t.Fatalf("type change not applied: %+v", got)
	}

	multi := model.MultiChoice
	out, _ = UpdateQuestion(out, q.ID, QuestionPatch{Type: &multi})
	got, _ = out.FindQuestion(q.ID)
	if len(got.Options) != 1 {
		t.Fatalf("choice type should get a placeholder option, got %d", len(got.Options))
	}

	bogus := model.QuestionType("slider")
	if _, err := UpdateQuestion(a, q.ID, QuestionPatch{Type: &bogus}); !errors.Is(err, ErrInvalidQuestionType) {
		t.Fatalf("err = %v, want ErrInvalidQuestionType", err)
	}
	if _, err := UpdateQuestion(a, "missing", QuestionPatch{}); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("err = %v, want ErrQuestionNotFound", err)
	}
}

func TestDeleteQuestion(t *testing.T) {
	a := builderFixture(t)
	first := a.Sections[0].Questions[0]
	out, err := DeleteQuestion(a, first.ID)
	if err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}
	if _, ok := out.FindQuestion(first.ID); ok {
		t.Fatalf("question still present")
	}
	assertOrders(t, out)
	if _, err := DeleteQuestion(a, "missing"); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("err = %v, want ErrQuestionNotFound", err)
	}
}

func TestDuplicateQuestion(t *testing.T) {
	a := builderFixture(t)
	orig := a.Sections[0].Questions[0]
	orig.Title = "Favourite language"
	orig.Validation.Required = true
	a.Sections[0].Questions[0] = orig

	out, dup, err := DuplicateQuestion(a, orig.ID)
	if err != nil {
		t.Fatalf("DuplicateQuestion: %v", err)
	}
	if dup.ID == orig.ID {
		t.Fatalf("duplicate must get a new id")
	}
	if dup.Title != "Favourite language (Copy)" {
		t.Fatalf("title = %q", dup.Title)
	}
	if dup.Type != orig.Type || len(dup.Options) != len(orig.Options) || dup.Validation.Required != orig.Validation.Required {
		t.Fatalf("duplicate should copy type, options and validation: %+v", dup)
	}
	if dup.Options[0].Value != orig.Options[0].Value || dup.Options[0].ID == orig.Options[0].ID {
		t.Fatalf("duplicate options should keep values with new ids")
	}

	sec := out.Sections[0]
	if last := sec.Questions[len(sec.Questions)-1]; last.ID != dup.ID {
		t.Fatalf("duplicate should be appended to the same section")
	}
	stillOrig, _ := out.FindQuestion(orig.ID)
	if stillOrig.Title != orig.Title {
		t.Fatalf("original changed: %q", stillOrig.Title)
	}
	assertOrders(t, out)
}

func TestReorderSections(t *testing.T) {
	a := builderFixture(t)
	ids := []string{a.Sections[1].ID, a.Sections[0].ID}
	out, err := ReorderSections(a, ids)
	if err != nil {
		t.Fatalf("ReorderSections: %v", err)
	}
	if out.Sections[0].ID != ids[0] || out.Sections[1].ID != ids[1] {
		t.Fatalf("sections not reordered")
	}
	assertOrders(t, out)

	bad := [][]string{
		{ids[0]},
		{ids[0], ids[0]},
		{ids[0], "missing"},
	}
	for _, order := range bad {
		if _, err := ReorderSections(a, order); !errors.Is(err, ErrInvalidReorder) {
			t.Fatalf("order %v: err = %v, want ErrInvalidReorder", order, err)
		}
	}
}

func TestReorderQuestions(t *testing.T) {
	a := builderFixture(t)
	sec := a.Sections[0]
	a, _, _ = AddQuestion(a, sec.ID, model.Numeric)
	sec = a.Sections[0]
	first, second, last := sec.Questions[0].ID, sec.Questions[1].ID, sec.Questions[2].ID

	out, err := ReorderQuestions(a, sec.ID, 0, 2)
	if err != nil {
		t.Fatalf("ReorderQuestions: %v", err)
	}
	got := out.Sections[0].Questions
	if got[0].ID != second || got[1].ID != last || got[2].ID != first {
		t.Fatalf("unexpected order: %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
	assertOrders(t, out)

	if _, err := ReorderQuestions(a, sec.ID, 0, 3); !errors.Is(err, ErrInvalidReorder) {
		t.Fatalf("err = %v, want ErrInvalidReorder", err)
	}
	if _, err := ReorderQuestions(a, "missing", 0, 0); !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("err = %v, want ErrSectionNotFound", err)
	}
}
