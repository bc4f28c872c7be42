package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/GoosefleetEO/aa-hrapplications-two/internal/models"
	"github.com/GoosefleetEO/aa-hrapplications-two/pkg/fault"
	"github.com/GoosefleetEO/aa-hrapplications-two/pkg/store"
)

// Manages the question bank forms draw from.
type QuestionService interface {
	Create(ctx context.Context, data models.CreateQuestionDTO) (*models.ApplicationQuestion, error)
	Update(ctx context.Context, id int, data models.UpdateQuestionDTO) (*models.ApplicationQuestion, error)
	AddChoice(ctx context.Context, questionID int, text string) (*models.ApplicationChoice, error)
	Get(ctx context.Context, id int) (*models.ApplicationQuestion, error)
}

type questionServiceImpl struct {
	questions store.Datastorer[models.ApplicationQuestion]
	choices   store.Datastorer[models.ApplicationChoice]
}

// Instantiate the QuestionService.
func NewQuestionService(questions store.Datastorer[models.ApplicationQuestion], choices store.Datastorer[models.ApplicationChoice]) QuestionService {
	return &questionServiceImpl{questions: questions, choices: choices}
}

func (s *questionServiceImpl) Create(ctx context.Context, data models.CreateQuestionDTO) (*models.ApplicationQuestion, error) {
	data.Title = strings.TrimSpace(data.Title)
	if data.Title == "" {
		return nil, fault.NewClientError("question title is required", nil)
	}
	if data.Condition != nil && *data.Condition != "" {
		if err := checkCondition(*data.Condition); err != nil {
			return nil, fault.NewClientError("invalid question condition", err)
		}
	}

	created, err := s.questions.Create(ctx, data)
	if err != nil {
		return nil, err
	}

	q, ok := created.(*models.ApplicationQuestion)
	if !ok {
		return nil, fault.NewInternalError(fmt.Sprintf("unexpected question model %T", created), nil)
	}
	return q, nil
}

func (s *questionServiceImpl) Update(ctx context.Context, id int, data models.UpdateQuestionDTO) (*models.ApplicationQuestion, error) {
	if data.Title != "" {
		data.Title = strings.TrimSpace(data.Title)
		if data.Title == "" {
			return nil, fault.NewClientError("question title may not be blank", nil)
		}
	}
	if data.Title == "" && data.HelpText == nil {
		return nil, fault.NewClientError("nothing to update", nil)
	}

	q, err := s.questions.Update(ctx, id, data)
	if err != nil {
		return nil, notFoundAsClient(err, fmt.Sprintf("question %d", id))
	}

	return s.withChoices(ctx, q)
}

func (s *questionServiceImpl) AddChoice(ctx context.Context, questionID int, text string) (*models.ApplicationChoice, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fault.NewClientError("choice text is required", nil)
	}
	if strings.Contains(text, multiSelectSeparator) {
		return nil, fault.NewClientError(fmt.Sprintf("choice text may not contain %q", multiSelectSeparator), nil)
	}

	created, err := s.choices.Create(ctx, models.CreateChoiceDTO{QuestionID: questionID, ChoiceText: text})
	if errors.Is(err, fault.ErrForeignKeyViolation) {
		return nil, fault.NewClientError(fmt.Sprintf("question %d not found", questionID), err)
	}
	if err != nil {
		return nil, err
	}

	c, ok := created.(*models.ApplicationChoice)
	if !ok {
		return nil, fault.NewInternalError(fmt.Sprintf("unexpected choice model %T", created), nil)
	}
	return c, nil
}

func (s *questionServiceImpl) Get(ctx context.Context, id int) (*models.ApplicationQuestion, error) {
	q, err := s.questions.Get(ctx,
		`SELECT id, title, help_text, multi_select, condition FROM hr_application_question WHERE id = $1`, id)
	if err != nil {
		return nil, notFoundAsClient(err, fmt.Sprintf("question %d", id))
	}

	return s.withChoices(ctx, q)
}

func (s *questionServiceImpl) withChoices(ctx context.Context, q *models.ApplicationQuestion) (*models.ApplicationQuestion, error) {
	choices, err := s.choices.Select(ctx,
		`SELECT id, question_id, choice_text FROM hr_application_choice WHERE question_id = $1 ORDER BY id`, q.ID)
	if err != nil {
		return nil, err
	}
	q.Choices = choices

	return q, nil
}
