package stores

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/GoosefleetEO/aa-hrapplications-two/internal/models"
	"github.com/GoosefleetEO/aa-hrapplications-two/pkg/fault"
	"github.com/jmoiron/sqlx"
)

// FilterStore keeps the hr_filter rows, one per (rule, filter_corp_id).
type FilterStore struct {
	db *sqlx.DB
}

func NewFilterStore(db *sqlx.DB) *FilterStore {
	return &FilterStore{db: db}
}

// Upsert inserts the filter or refreshes its name and description.
func (s *FilterStore) Upsert(ctx context.Context, ext sqlx.ExtContext, f *models.Filter) error {
	query := `INSERT INTO hr_filter (rule, name, description, filter_corp_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (rule, filter_corp_id)
		DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description
		RETURNING id`

	row := ext.QueryRowxContext(ctx, query, f.Rule, f.Name, f.Description, f.FilterCorpID)
	if err := row.Scan(&f.ID); err != nil {
		return fmt.Errorf("upsert filter %s for corp %d: %w", f.Rule, f.FilterCorpID, fault.FromPQ(err))
	}
	return nil
}

// DeleteForCorp removes every filter scoped to corpID.
func (s *FilterStore) DeleteForCorp(ctx context.Context, ext sqlx.ExtContext, corpID int) (int64, error) {
	res, err := ext.ExecContext(ctx, `DELETE FROM hr_filter WHERE filter_corp_id = $1`, corpID)
	if err != nil {
		return 0, fmt.Errorf("delete filters for corp %d: %w", corpID, err)
	}
	return res.RowsAffected()
}

func (s *FilterStore) ListForCorp(ctx context.Context, corpID int) ([]models.Filter, error) {
	filters := []models.Filter{}

	query := `SELECT id, rule, name, description, filter_corp_id FROM hr_filter
		WHERE filter_corp_id = $1 ORDER BY id`

	if err := s.db.SelectContext(ctx, &filters, query, corpID); err != nil {
		return nil, fmt.Errorf("select filters: %w", err)
	}
	return filters, nil
}

func (s *FilterStore) Get(ctx context.Context, id int) (*models.Filter, error) {
	var f models.Filter

	query := `SELECT id, rule, name, description, filter_corp_id FROM hr_filter WHERE id = $1`

	if err := s.db.GetContext(ctx, &f, query, id); err != nil {
		return nil, fault.FromPQ(err)
	}
	return &f, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fault.ErrNotFound
	}
	return nil
}
