package engine

import (
	"testing"

	"talentflow_backend/internal/model"
)

func conditional(target string, op model.Operator, value any) model.Question {
	return model.Question{
		ID:   "dependent",
		Type: model.ShortText,
		ConditionalLogic: &model.ConditionalLogic{ShowIf: model.ShowIf{
			QuestionID: target,
			Operator:   op,
			Value:      value,
		}},
	}
}

func TestIsVisible_Operators(t *testing.T) {
	tests := []struct {
		name   string
		op     model.Operator
		value  any
		answer any
		want   bool
	}{
		{name: "equals match", op: model.OpEquals, value: "yes", answer: "yes", want: true},
		{name: "equals mismatch", op: model.OpEquals, value: "yes", answer: "no", want: false},
		{name: "equals is strict on types", op: model.OpEquals, value: float64(5), answer: "5", want: false},
		{name: "equals numbers", op: model.OpEquals, value: float64(5), answer: 5, want: true},
		{name: "equals bools", op: model.OpEquals, value: true, answer: true, want: true},
		{name: "equals never matches lists", op: model.OpEquals, value: "a", answer: []any{"a"}, want: false},
		{name: "equals absent", op: model.OpEquals, value: "yes", answer: nil, want: false},
		{name: "not equals mismatch", op: model.OpNotEquals, value: "yes", answer: "no", want: true},
		{name: "not equals absent", op: model.OpNotEquals, value: "yes", answer: nil, want: true},
		{name: "not equals match", op: model.OpNotEquals, value: "yes", answer: "yes", want: false},
		{name: "contains in list", op: model.OpContains, value: "go", answer: []any{"rust", "go"}, want: true},
		{name: "contains in string list", op: model.OpContains, value: "go", answer: []string{"go"}, want: true},
		{name: "contains missing", op: model.OpContains, value: "go", answer: []any{"rust"}, want: false},
		{name: "contains on string target", op: model.OpContains, value: "go", answer: "golang", want: false},
		{name: "greater than", op: model.OpGreaterThan, value: float64(2), answer: "5", want: true},
		{name: "greater than equal", op: model.OpGreaterThan, value: "2", answer: "2", want: false},
		{name: "greater than non numeric", op: model.OpGreaterThan, value: float64(2), answer: "many", want: false},
		{name: "greater than absent", op: model.OpGreaterThan, value: float64(2), answer: nil, want: false},
		{name: "less than", op: model.OpLessThan, value: float64(2), answer: "1", want: true},
		{name: "less than json number", op: model.OpLessThan, value: float64(2), answer: float64(3), want: false},
		{name: "is empty absent", op: model.OpIsEmpty, answer: nil, want: true},
		{name: "is empty blank", op: model.OpIsEmpty, answer: "", want: true},
		{name: "is empty list", op: model.OpIsEmpty, answer: []any{}, want: true},
		{name: "is empty answered", op: model.OpIsEmpty, answer: "x", want: false},
		{name: "is not empty answered", op: model.OpIsNotEmpty, answer: []any{"x"}, want: true},
		{name: "is not empty blank", op: model.OpIsNotEmpty, answer: "", want: false},
		{name: "unknown operator fails open", op: "matches_regex", value: "x", answer: "y", want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := conditional("source", tc.op, tc.value)
			answers := model.AnswerSet{}
			if tc.answer != nil {
				answers["source"] = tc.answer
			}
			if got := IsVisible(q, answers); got != tc.want {
				t.Fatalf("IsVisible = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsVisible_NoConditionalLogic(t *testing.T) {
	q := model.Question{ID: "q", Type: model.ShortText}
	if !IsVisible(q, nil) {
		t.Fatalf("question without conditional logic should be visible")
	}
}

func TestEvaluator_FailsOpenOnMissingReference(t *testing.T) {
	a := &model.Assessment{Sections: []model.Section{{
		ID: "s1",
		Questions: []model.Question{
			{ID: "source", Type: model.ShortText},
		},
	}}}
	ev := NewEvaluator(a)

	ops := []model.Operator{model.OpEquals, model.OpContains, model.OpGreaterThan, model.OpLessThan, model.OpIsEmpty, model.OpIsNotEmpty}
	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			q := conditional("deleted-question", op, "anything")
			if !ev.IsVisible(q, model.AnswerSet{"deleted-question": "x"}) {
				t.Fatalf("missing reference should fail open")
			}
		})
	}
}

func TestIsVisible_DanglingReferenceNeedsEvaluator(t *testing.T) {
	q := conditional("deleted-question", model.OpEquals, "x")
	a := &model.Assessment{Sections: []model.Section{{ID: "s1", Questions: []model.Question{q}}}}
	if IsVisible(q, model.AnswerSet{}) {
		t.Fatalf("package IsVisible treats a missing target as unanswered")
	}
	if !NewEvaluator(a).IsVisible(q, model.AnswerSet{}) {
		t.Fatalf("evaluator should fail open on a missing target")
	}
}

func TestEvaluator_SelfReferenceFailsOpen(t *testing.T) {
	q := conditional("dependent", model.OpEquals, "never")
	a := &model.Assessment{Sections: []model.Section{{ID: "s1", Questions: []model.Question{q}}}}
	if !NewEvaluator(a).IsVisible(q, model.AnswerSet{}) {
		t.Fatalf("self reference should fail open")
	}
}

func TestVisibleQuestions_KeepsOrder(t *testing.T) {
	a := &model.Assessment{Sections: []model.Section{
		{ID: "s1", Questions: []model.Question{
			{ID: "q1", Type: model.SingleChoice},
			{ID: "q2", Type: model.ShortText, ConditionalLogic: &model.ConditionalLogic{ShowIf: model.ShowIf{QuestionID: "q1", Operator: model.OpEquals, Value: "yes"}}},
		}},
		{ID: "s2", Questions: []model.Question{
			{ID: "q3", Type: model.ShortText},
		}},
	}}

	visible := VisibleQuestions(a, model.AnswerSet{"q1": "no", "q2": "kept but hidden"})
	if len(visible) != 2 || visible[0].ID != "q1" || visible[1].ID != "q3" {
		t.Fatalf("visible = %+v", visible)
	}

	visible = VisibleQuestions(a, model.AnswerSet{"q1": "yes"})
	if len(visible) != 3 || visible[1].ID != "q2" {
		t.Fatalf("visible = %+v", visible)
	}
}
