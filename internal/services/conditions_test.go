package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/GoosefleetEO/aa-hrapplications-two/internal/models"
	"github.com/GoosefleetEO/aa-hrapplications-two/pkg/fault"
)

func strPtr(s string) *string { return &s }

func conditionalForm() []models.ApplicationQuestion {
	return []models.ApplicationQuestion{
		{
			ID:    1,
			Title: "Have you been in a corp before?",
			Choices: []models.ApplicationChoice{
				{ID: 10, QuestionID: 1, ChoiceText: "Yes"},
				{ID: 11, QuestionID: 1, ChoiceText: "No"},
			},
		},
		{
			ID:        2,
			Title:     "Which corp?",
			Condition: strPtr(`q1 == "Yes"`),
		},
		{
			ID:          3,
			Title:       "What do you fly?",
			MultiSelect: true,
			Choices: []models.ApplicationChoice{
				{ID: 20, QuestionID: 3, ChoiceText: "Frigates"},
				{ID: 21, QuestionID: 3, ChoiceText: "Cruisers"},
				{ID: 22, QuestionID: 3, ChoiceText: "Capitals"},
			},
		},
	}
}

func TestIsVisible_ConditionMatches(t *testing.T) {
	questions := conditionalForm()
	env := answerEnv(questions, map[int]string{1: "Yes"})

	visible, err := isVisible(questions[1], env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !visible {
		t.Errorf("expected question 2 to be visible")
	}
}

func TestIsVisible_UnansweredDependency(t *testing.T) {
	questions := conditionalForm()
	env := answerEnv(questions, map[int]string{})

	visible, err := isVisible(questions[1], env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if visible {
		t.Errorf("expected question 2 to be hidden")
	}
}

func TestIsVisible_NoCondition(t *testing.T) {
	visible, err := isVisible(models.ApplicationQuestion{ID: 1, Condition: strPtr("")}, nil)
	if err != nil || !visible {
		t.Errorf("expected empty condition to mean visible, got %v, %v", visible, err)
	}
}

func TestEvaluateExpression_NonBoolean(t *testing.T) {
	_, err := evaluateExpression(`q1`, map[string]any{"q1": "Yes"})
	if err == nil || !strings.Contains(err.Error(), "did not return a boolean") {
		t.Errorf("expected boolean error, got %v", err)
	}
}

func TestEvaluateExpression_QuestionNotOnForm(t *testing.T) {
	ok, err := evaluateExpression(`q99 == "Yes"`, map[string]any{"q1": "Yes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Errorf("expected a missing answer to never equal a choice")
	}
}

func TestCheckFormConditions(t *testing.T) {
	bank := map[int]models.ApplicationQuestion{}
	for _, q := range conditionalForm() {
		bank[q.ID] = q
	}

	if err := checkFormConditions([]int{1, 2, 3}, bank); err != nil {
		t.Errorf("expected form order 1, 2, 3 to be accepted, got %v", err)
	}
	if err := checkFormConditions([]int{3, 1}, bank); err != nil {
		t.Errorf("expected form without conditions to be accepted, got %v", err)
	}

	err := checkFormConditions([]int{2, 1}, bank)
	if !fault.IsClientError(err) {
		t.Errorf("expected client error when the condition refers to a later question, got %v", err)
	}

	err = checkFormConditions([]int{3, 2}, bank)
	if !fault.IsClientError(err) {
		t.Errorf("expected client error when the condition refers to a question not on the form, got %v", err)
	}

	err = checkFormConditions([]int{1, 5}, bank)
	if !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("expected not found for a question outside the bank, got %v", err)
	}
}

func TestCheckCondition(t *testing.T) {
	if err := checkCondition(`q4 == "Yes" && q5 != ""`); err != nil {
		t.Errorf("expected condition on unknown questions to compile, got %v", err)
	}
	if err := checkCondition(`q4 ==`); err == nil {
		t.Errorf("expected syntax error")
	}
}

func TestValidateAnswers_DropsHiddenAnswers(t *testing.T) {
	responses, err := validateAnswers(conditionalForm(), map[int]string{
		1: "No",
		2: "Goose Fleet",
		3: "Frigates",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}
	if responses[0].QuestionID != 1 || responses[1].QuestionID != 3 {
		t.Errorf("expected responses for questions 1 and 3, got %+v", responses)
	}
}

func TestValidateAnswers_RequiresVisibleAnswers(t *testing.T) {
	_, err := validateAnswers(conditionalForm(), map[int]string{1: "Yes", 3: "Cruisers"})
	if !fault.IsClientError(err) {
		t.Fatalf("expected client error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Which corp?") {
		t.Errorf("expected error to name the question, got %v", err)
	}
}

func TestValidateAnswers_UnknownQuestion(t *testing.T) {
	_, err := validateAnswers(conditionalForm(), map[int]string{1: "No", 3: "Frigates", 42: "?"})
	if !fault.IsClientError(err) {
		t.Errorf("expected client error, got %v", err)
	}
}

func TestValidateAnswers_ConditionOnQuestionNotOnForm(t *testing.T) {
	questions := []models.ApplicationQuestion{
		{ID: 1, Title: "Name"},
		{ID: 2, Title: "Why?", Condition: strPtr(`q7 == "Yes"`)},
	}

	responses, err := validateAnswers(questions, map[int]string{1: "Bob"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(responses) != 1 || responses[0].QuestionID != 1 {
		t.Errorf("expected only question 1 to be answered, got %+v", responses)
	}
}

func TestValidateAnswers_BrokenCondition(t *testing.T) {
	questions := conditionalForm()
	questions[1].Condition = strPtr(`q1`)

	_, err := validateAnswers(questions, map[int]string{1: "No", 3: "Frigates"})
	if !fault.IsInternalError(err) {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestNormalizeAnswer(t *testing.T) {
	questions := conditionalForm()

	tests := []struct {
		name     string
		question models.ApplicationQuestion
		answer   string
		want     string
		wantErr  bool
	}{
		{"free text is trimmed", questions[1], "  Goose Fleet ", "Goose Fleet", false},
		{"blank", questions[1], "   ", "", true},
		{"single choice", questions[0], "Yes", "Yes", false},
		{"not a choice", questions[0], "Maybe", "", true},
		{"multi select", questions[2], "Frigates,Capitals", "Frigates, Capitals", false},
		{"multi select with spaces", questions[2], " Cruisers ,  Frigates", "Cruisers, Frigates", false},
		{"multi select with unknown choice", questions[2], "Frigates,Titans", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeAnswer(tt.question, tt.answer)
			if tt.wantErr {
				if !fault.IsClientError(err) {
					t.Errorf("expected client error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
