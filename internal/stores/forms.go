package stores

import (
	"context"
	"fmt"

	"github.com/GoosefleetEO/aa-hrapplications-two/internal/models"
	"github.com/GoosefleetEO/aa-hrapplications-two/pkg/fault"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type formRow struct {
	ID              int    `db:"id"`
	CorpID          int    `db:"corp_id"`
	CorporationName string `db:"corporation_name"`
}

func (r formRow) toModel() models.ApplicationForm {
	return models.ApplicationForm{
		ID:     r.ID,
		CorpID: r.CorpID,
		Corp:   models.Corporation{ID: r.CorpID, CorporationName: r.CorporationName},
	}
}

const formSelect = `SELECT f.id, f.corp_id, c.corporation_name FROM hr_application_form f
	JOIN hr_corporation c ON c.id = f.corp_id`

// FormStore reads and writes application forms and their ordered questions.
type FormStore struct {
	db *sqlx.DB
}

func NewFormStore(db *sqlx.DB) *FormStore {
	return &FormStore{db: db}
}

func (s *FormStore) Corporation(ctx context.Context, q sqlx.QueryerContext, corpID int) (*models.Corporation, error) {
	var corp models.Corporation
	if err := sqlx.GetContext(ctx, q, &corp, `SELECT id, corporation_name FROM hr_corporation WHERE id = $1`, corpID); err != nil {
		return nil, fault.FromPQ(err)
	}
	return &corp, nil
}

// Upsert returns the id of corpID's form, creating it if needed.
func (s *FormStore) Upsert(ctx context.Context, ext sqlx.ExtContext, corpID int) (int, error) {
	var id int
	err := sqlx.GetContext(ctx, ext, &id,
		`INSERT INTO hr_application_form (corp_id) VALUES ($1)
		ON CONFLICT (corp_id) DO UPDATE SET corp_id = EXCLUDED.corp_id
		RETURNING id`, corpID)
	if err != nil {
		return 0, fmt.Errorf("upsert form for corp %d: %w", corpID, fault.FromPQ(err))
	}
	return id, nil
}

// ReplaceQuestions sets the form's question list to questionIDs, in order.
func (s *FormStore) ReplaceQuestions(ctx context.Context, ext sqlx.ExtContext, formID int, questionIDs []int) error {
	if _, err := ext.ExecContext(ctx, `DELETE FROM hr_application_form_question WHERE form_id = $1`, formID); err != nil {
		return fmt.Errorf("clear form questions: %w", err)
	}

	for pos, qid := range questionIDs {
		_, err := ext.ExecContext(ctx,
			`INSERT INTO hr_application_form_question (form_id, question_id, position) VALUES ($1, $2, $3)`,
			formID, qid, pos)
		if err != nil {
			return fmt.Errorf("add question %d to form %d: %w", qid, formID, fault.FromPQ(err))
		}
	}
	return nil
}

func (s *FormStore) Delete(ctx context.Context, ext sqlx.ExtContext, id int) error {
	res, err := ext.ExecContext(ctx, `DELETE FROM hr_application_form WHERE id = $1`, id)
	if err != nil {
		return fault.FromPQ(err)
	}
	return expectOneRow(res)
}

// Get loads a form with its corporation, without questions.
func (s *FormStore) Get(ctx context.Context, q sqlx.QueryerContext, id int) (*models.ApplicationForm, error) {
	var row formRow
	if err := sqlx.GetContext(ctx, q, &row, formSelect+` WHERE f.id = $1`, id); err != nil {
		return nil, fault.FromPQ(err)
	}
	form := row.toModel()
	return &form, nil
}

func (s *FormStore) GetByCorp(ctx context.Context, corpID int) (*models.ApplicationForm, error) {
	var row formRow
	if err := s.db.GetContext(ctx, &row, formSelect+` WHERE f.corp_id = $1`, corpID); err != nil {
		return nil, fault.FromPQ(err)
	}
	form := row.toModel()
	return &form, nil
}

func (s *FormStore) List(ctx context.Context) ([]models.ApplicationForm, error) {
	rows := []formRow{}
	if err := s.db.SelectContext(ctx, &rows, formSelect+` ORDER BY f.id`); err != nil {
		return nil, fmt.Errorf("select forms: %w", err)
	}

	forms := make([]models.ApplicationForm, 0, len(rows))
	for _, r := range rows {
		forms = append(forms, r.toModel())
	}
	return forms, nil
}

// Questions returns the form's questions in display order, with choices.
func (s *FormStore) Questions(ctx context.Context, formID int) ([]models.ApplicationQuestion, error) {
	questions := []models.ApplicationQuestion{}

	query := `SELECT q.id, q.title, q.help_text, q.multi_select, q.condition
		FROM hr_application_question q
		JOIN hr_application_form_question fq ON fq.question_id = q.id
		WHERE fq.form_id = $1
		ORDER BY fq.position`

	if err := s.db.SelectContext(ctx, &questions, query, formID); err != nil {
		return nil, fmt.Errorf("select form questions: %w", err)
	}
	if err := s.attachChoices(ctx, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// QuestionConditions loads the bank questions picked for a form, without
// their choices. Ids not in the bank are left out of the result.
func (s *FormStore) QuestionConditions(ctx context.Context, q sqlx.QueryerContext, ids []int) ([]models.ApplicationQuestion, error) {
	questions := []models.ApplicationQuestion{}
	if len(ids) == 0 {
		return questions, nil
	}

	query := `SELECT id, title, condition FROM hr_application_question WHERE id = ANY($1)`

	if err := sqlx.SelectContext(ctx, q, &questions, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("select question conditions: %w", err)
	}
	return questions, nil
}

func (s *FormStore) attachChoices(ctx context.Context, questions []models.ApplicationQuestion) error {
	if len(questions) == 0 {
		return nil
	}

	ids := make([]int, len(questions))
	byID := make(map[int]int, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
		byID[q.ID] = i
	}

	choices := []models.ApplicationChoice{}
	query := `SELECT id, question_id, choice_text FROM hr_application_choice
		WHERE question_id = ANY($1) ORDER BY id`

	if err := s.db.SelectContext(ctx, &choices, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("select choices: %w", err)
	}

	for _, c := range choices {
		i := byID[c.QuestionID]
		questions[i].Choices = append(questions[i].Choices, c)
	}
	return nil
}
