package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/GoosefleetEO/aa-hrapplications-two/internal/models"
	"github.com/GoosefleetEO/aa-hrapplications-two/internal/pkg/database"
	"github.com/GoosefleetEO/aa-hrapplications-two/pkg/fault"
	"github.com/jmoiron/sqlx"
)

type FormRepository interface {
	FormLister
	Corporation(ctx context.Context, q sqlx.QueryerContext, corpID int) (*models.Corporation, error)
	Upsert(ctx context.Context, ext sqlx.ExtContext, corpID int) (int, error)
	ReplaceQuestions(ctx context.Context, ext sqlx.ExtContext, formID int, questionIDs []int) error
	QuestionConditions(ctx context.Context, q sqlx.QueryerContext, ids []int) ([]models.ApplicationQuestion, error)
	Delete(ctx context.Context, ext sqlx.ExtContext, id int) error
	Get(ctx context.Context, q sqlx.QueryerContext, id int) (*models.ApplicationForm, error)
	GetByCorp(ctx context.Context, corpID int) (*models.ApplicationForm, error)
	Questions(ctx context.Context, formID int) ([]models.ApplicationQuestion, error)
}

// Manages application forms. Saving or deleting a form updates the
// corporation's smart filters in the same transaction.
type FormService interface {
	Save(ctx context.Context, data models.SaveFormDTO) (*models.ApplicationForm, error)
	Delete(ctx context.Context, id int) error
	Get(ctx context.Context, id int) (*models.ApplicationForm, error)
	GetByCorp(ctx context.Context, corpID int) (*models.ApplicationForm, error)
}

type formServiceImpl struct {
	db    *sqlx.DB
	forms FormRepository
	sync  FilterSyncService
}

// Instantiate the FormService.
func NewFormService(db *sqlx.DB, forms FormRepository, sync FilterSyncService) FormService {
	return &formServiceImpl{db: db, forms: forms, sync: sync}
}

func (s *formServiceImpl) Save(ctx context.Context, data models.SaveFormDTO) (*models.ApplicationForm, error) {
	if err := validateQuestionIDs(data.QuestionIDs); err != nil {
		return nil, err
	}

	var form *models.ApplicationForm

	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		corp, err := s.forms.Corporation(ctx, tx, data.CorpID)
		if err != nil {
			return notFoundAsClient(err, fmt.Sprintf("corporation %d", data.CorpID))
		}

		if len(data.QuestionIDs) > 0 {
			if err := s.checkQuestions(ctx, tx, data.QuestionIDs); err != nil {
				return err
			}
		}

		id, err := s.forms.Upsert(ctx, tx, corp.ID)
		if err != nil {
			return err
		}

		if data.QuestionIDs != nil {
			if err := s.forms.ReplaceQuestions(ctx, tx, id, data.QuestionIDs); err != nil {
				return err
			}
		}

		form = &models.ApplicationForm{ID: id, CorpID: corp.ID, Corp: *corp}

		return s.sync.OnFormSaved(ctx, tx, *form)
	})
	if err != nil {
		return nil, err
	}

	return form, nil
}

func (s *formServiceImpl) Delete(ctx context.Context, id int) error {
	return database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		form, err := s.forms.Get(ctx, tx, id)
		if err != nil {
			return notFoundAsClient(err, fmt.Sprintf("form %d", id))
		}

		if err := s.sync.OnFormDeleted(ctx, tx, *form); err != nil {
			return err
		}

		return s.forms.Delete(ctx, tx, id)
	})
}

func (s *formServiceImpl) Get(ctx context.Context, id int) (*models.ApplicationForm, error) {
	form, err := s.forms.Get(ctx, s.db, id)
	if err != nil {
		return nil, notFoundAsClient(err, fmt.Sprintf("form %d", id))
	}
	return s.withQuestions(ctx, form)
}

func (s *formServiceImpl) GetByCorp(ctx context.Context, corpID int) (*models.ApplicationForm, error) {
	form, err := s.forms.GetByCorp(ctx, corpID)
	if err != nil {
		return nil, notFoundAsClient(err, fmt.Sprintf("form for corporation %d", corpID))
	}
	return s.withQuestions(ctx, form)
}

func (s *formServiceImpl) withQuestions(ctx context.Context, form *models.ApplicationForm) (*models.ApplicationForm, error) {
	questions, err := s.forms.Questions(ctx, form.ID)
	if err != nil {
		return nil, err
	}
	form.Questions = questions
	return form, nil
}

func (s *formServiceImpl) checkQuestions(ctx context.Context, tx *sqlx.Tx, ids []int) error {
	questions, err := s.forms.QuestionConditions(ctx, tx, ids)
	if err != nil {
		return err
	}

	bank := make(map[int]models.ApplicationQuestion, len(questions))
	for _, q := range questions {
		bank[q.ID] = q
	}
	return checkFormConditions(ids, bank)
}

func validateQuestionIDs(ids []int) error {
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fault.NewClientError(fmt.Sprintf("question %d listed twice", id), nil)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// notFoundAsClient turns a missing row into a client error; anything else is
// returned as is.
func notFoundAsClient(err error, what string) error {
	if errors.Is(err, fault.ErrNotFound) {
		return fault.NewClientError(what+" not found", err)
	}
	return err
}
