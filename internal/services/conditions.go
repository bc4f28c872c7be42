package services

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/GoosefleetEO/aa-hrapplications-two/internal/models"
	"github.com/GoosefleetEO/aa-hrapplications-two/pkg/fault"
	"github.com/expr-lang/expr"
)

// answerVar is the name a question's answer goes by inside conditions.
func answerVar(questionID int) string {
	return "q" + strconv.Itoa(questionID)
}

// answerEnv exposes every question of the form to conditions, answered or not.
func answerEnv(questions []models.ApplicationQuestion, answers map[int]string) map[string]any {
	env := make(map[string]any, len(questions))
	for _, q := range questions {
		env[answerVar(q.ID)] = answers[q.ID]
	}
	return env
}

// checkCondition compiles a condition without knowing which form it will
// end up on.
func checkCondition(expression string) error {
	_, err := expr.Compile(expression, expr.AllowUndefinedVariables(), expr.AsBool())
	return err
}

// checkFormConditions compiles each condition against the questions asked
// before it, in form order. ids lists the form's questions and bank holds
// them keyed by id.
func checkFormConditions(ids []int, bank map[int]models.ApplicationQuestion) error {
	env := make(map[string]any, len(ids))
	for _, id := range ids {
		q, ok := bank[id]
		if !ok {
			return fault.NewClientError(fmt.Sprintf("question %d not found", id), fault.ErrNotFound)
		}

		if q.Condition != nil && *q.Condition != "" {
			if _, err := expr.Compile(*q.Condition, expr.Env(env), expr.AsBool()); err != nil {
				return fault.NewClientError(
					fmt.Sprintf("condition of question %d may only refer to questions asked before it", id), err)
			}
		}
		env[answerVar(id)] = ""
	}
	return nil
}

// isVisible reports whether a question is asked given the answers so far.
func isVisible(question models.ApplicationQuestion, env map[string]any) (bool, error) {
	if question.Condition == nil || *question.Condition == "" {
		return true, nil
	}
	return evaluateExpression(*question.Condition, env)
}

func evaluateExpression(expression string, input map[string]any) (bool, error) {
	// Answers to questions the form does not ask read as nil.
	program, err := expr.Compile(expression, expr.Env(input), expr.AllowUndefinedVariables())
	if err != nil {
		return false, err
	}

	output, err := expr.Run(program, input)
	if err != nil {
		return false, err
	}

	result, ok := output.(bool)

	if !ok {
		return false, errors.New("expression did not return a boolean")
	}

	return result, nil
}
