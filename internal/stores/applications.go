package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/GoosefleetEO/aa-hrapplications-two/internal/models"
	"github.com/GoosefleetEO/aa-hrapplications-two/pkg/fault"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const applicationColumns = "a.id, a.form_id, a.user_id, a.approved, a.reviewer_id, a.reviewer_character_id, a.created"

// ApplicationStore reads and writes hr_application rows.
type ApplicationStore struct {
	db *sqlx.DB
}

func NewApplicationStore(db *sqlx.DB) *ApplicationStore {
	return &ApplicationStore{db: db}
}

func (s *ApplicationStore) HasApplications(ctx context.Context, userID int) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM hr_application WHERE user_id = $1)`, userID)
	if err != nil {
		return false, fmt.Errorf("check applications: %w", err)
	}
	return exists, nil
}

func (s *ApplicationStore) CountMatching(ctx context.Context, userID, corpID int, target models.Classification) (int, error) {
	cond, err := ClassificationCondition(target)
	if err != nil {
		return 0, err
	}

	query := `SELECT COUNT(*) FROM hr_application a
		JOIN hr_application_form f ON f.id = a.form_id
		WHERE a.user_id = $1 AND f.corp_id = $2 AND ` + cond

	var count int
	if err := s.db.GetContext(ctx, &count, query, userID, corpID); err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return count, nil
}

func (s *ApplicationStore) ReviewStates(ctx context.Context, userIDs []int, corpID int) ([]models.ReviewState, error) {
	states := []models.ReviewState{}
	if len(userIDs) == 0 {
		return states, nil
	}

	query := `SELECT a.user_id, a.approved, a.reviewer_id FROM hr_application a
		JOIN hr_application_form f ON f.id = a.form_id
		WHERE a.user_id = ANY($1) AND f.corp_id = $2
		ORDER BY a.created, a.id`

	if err := s.db.SelectContext(ctx, &states, query, pq.Array(userIDs), corpID); err != nil {
		return nil, fmt.Errorf("select review states: %w", err)
	}
	return states, nil
}

// Insert stores a new application and fills in its id and creation time.
func (s *ApplicationStore) Insert(ctx context.Context, ext sqlx.ExtContext, app *models.Application) error {
	if app.Created.IsZero() {
		app.Created = time.Now().UTC()
	}

	row := ext.QueryRowxContext(ctx,
		`INSERT INTO hr_application (form_id, user_id, approved, reviewer_id, reviewer_character_id, created)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		app.FormID, app.UserID, app.Approved, app.ReviewerID, app.ReviewerCharacterID, app.Created)

	if err := row.Scan(&app.ID); err != nil {
		return fault.FromPQ(err)
	}
	return nil
}

func (s *ApplicationStore) InsertResponses(ctx context.Context, ext sqlx.ExtContext, responses []models.ApplicationResponse) error {
	for _, r := range responses {
		_, err := ext.ExecContext(ctx,
			`INSERT INTO hr_application_response (question_id, application_id, answer) VALUES ($1, $2, $3)`,
			r.QuestionID, r.ApplicationID, r.Answer)
		if err != nil {
			return fault.FromPQ(err)
		}
	}
	return nil
}

func (s *ApplicationStore) Get(ctx context.Context, id int) (*models.Application, error) {
	var app models.Application

	query := `SELECT ` + applicationColumns + `, c.character_name AS reviewer_character_name
		FROM hr_application a
		LEFT JOIN hr_character c ON c.id = a.reviewer_character_id
		WHERE a.id = $1`

	if err := s.db.GetContext(ctx, &app, query, id); err != nil {
		return nil, fault.FromPQ(err)
	}
	return &app, nil
}

func (s *ApplicationStore) Responses(ctx context.Context, applicationID int) ([]models.ApplicationResponse, error) {
	responses := []models.ApplicationResponse{}

	query := `SELECT id, question_id, application_id, answer FROM hr_application_response
		WHERE application_id = $1 ORDER BY id`

	if err := s.db.SelectContext(ctx, &responses, query, applicationID); err != nil {
		return nil, fmt.Errorf("select responses: %w", err)
	}
	return responses, nil
}

// MarkInReview assigns a reviewer to an application that has no decision yet.
func (s *ApplicationStore) MarkInReview(ctx context.Context, id, reviewerID int, reviewerCharacterID *int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE hr_application SET reviewer_id = $2, reviewer_character_id = $3
		WHERE id = $1 AND approved IS NULL`,
		id, reviewerID, reviewerCharacterID)
	if err != nil {
		return fault.FromPQ(err)
	}
	return expectOneRow(res)
}

// SetDecision records the review outcome. A nil approved reopens the
// application and clears the reviewer.
func (s *ApplicationStore) SetDecision(ctx context.Context, id int, approved *bool, reviewerID *int) error {
	var (
		query string
		args  []any
	)
	if approved == nil {
		query = `UPDATE hr_application SET approved = NULL, reviewer_id = NULL, reviewer_character_id = NULL WHERE id = $1`
		args = []any{id}
	} else {
		query = `UPDATE hr_application SET approved = $2, reviewer_id = $3 WHERE id = $1`
		args = []any{id, *approved, reviewerID}
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fault.FromPQ(err)
	}
	return expectOneRow(res)
}

// Stats counts corpID's applications per classification.
func (s *ApplicationStore) Stats(ctx context.Context, corpID int) (*models.ReviewStats, error) {
	columns := []struct {
		name   string
		target models.Classification
	}{
		{"accepted", models.Accepted},
		{"in_review", models.InReview},
		{"pending", models.Pending},
		{"rejected", models.Rejected},
	}

	query := `SELECT COUNT(*) AS total`
	for _, c := range columns {
		cond, err := ClassificationCondition(c.target)
		if err != nil {
			return nil, err
		}
		query += fmt.Sprintf(", COUNT(*) FILTER (WHERE %s) AS %s", cond, c.name)
	}
	query += ` FROM hr_application a
		JOIN hr_application_form f ON f.id = a.form_id
		WHERE f.corp_id = $1`

	var stats models.ReviewStats
	if err := s.db.GetContext(ctx, &stats, query, corpID); err != nil {
		return nil, fmt.Errorf("count applications for corp %d: %w", corpID, err)
	}
	return &stats, nil
}

// CountPending counts the applications nobody has picked up yet across
// corpIDs.
func (s *ApplicationStore) CountPending(ctx context.Context, corpIDs []int) (int, error) {
	if len(corpIDs) == 0 {
		return 0, nil
	}

	cond, err := ClassificationCondition(models.Pending)
	if err != nil {
		return 0, err
	}

	query := `SELECT COUNT(*) FROM hr_application a
		JOIN hr_application_form f ON f.id = a.form_id
		WHERE f.corp_id = ANY($1) AND ` + cond

	var count int
	if err := s.db.GetContext(ctx, &count, query, pq.Array(corpIDs)); err != nil {
		return 0, fmt.Errorf("count pending applications: %w", err)
	}
	return count, nil
}

// ReviewQueueQuery builds the listing query for a corp's applications,
// optionally narrowed to one classification.
func (s *ApplicationStore) ReviewQueueQuery(corpID int, only models.Classification) (string, []any, error) {
	cond := "TRUE"
	if only != 0 {
		var err error
		if cond, err = ClassificationCondition(only); err != nil {
			return "", nil, err
		}
	}

	query := `SELECT a.id, a.user_id, a.approved, a.reviewer_id, a.created FROM hr_application a
		JOIN hr_application_form f ON f.id = a.form_id
		WHERE f.corp_id = $1 AND ` + cond + `
		ORDER BY a.created DESC, a.id DESC`

	return query, []any{corpID}, nil
}

// ClassificationCondition is the SQL predicate over hr_application a that
// selects rows with the given classification. It must agree with
// models.Classify.
func ClassificationCondition(target models.Classification) (string, error) {
	switch target {
	case models.Any:
		return "TRUE", nil
	case models.Accepted:
		return "a.approved IS TRUE", nil
	case models.Rejected:
		return "a.approved IS FALSE", nil
	case models.Pending:
		return "a.approved IS NULL AND a.reviewer_id IS NULL", nil
	case models.InReview:
		return "a.approved IS NULL AND a.reviewer_id IS NOT NULL", nil
	default:
		return "", fault.NewInternalError(fmt.Sprintf("classification %d", target), fault.ErrRuleNotImplemented)
	}
}
