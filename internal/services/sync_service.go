package services

import (
	"context"
	"fmt"

	"github.com/GoosefleetEO/aa-hrapplications-two/internal/models"
	"github.com/GoosefleetEO/aa-hrapplications-two/internal/pkg/metrics"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// FilterWriter is the write side of the filter table.
type FilterWriter interface {
	// Upsert is keyed on (Rule, FilterCorpID) and fills in the row id.
	Upsert(ctx context.Context, ext sqlx.ExtContext, f *models.Filter) error
	DeleteForCorp(ctx context.Context, ext sqlx.ExtContext, corpID int) (int64, error)
}

// FormLister lists every form, for full resyncs.
type FormLister interface {
	List(ctx context.Context) ([]models.ApplicationForm, error)
}

// Keeps one filter per rule for every corporation that has a form.
//
// OnFormSaved and OnFormDeleted run on the caller's transaction so the
// filters change in the same commit as the form.
type FilterSyncService interface {
	OnFormSaved(ctx context.Context, tx sqlx.ExtContext, form models.ApplicationForm) error
	OnFormDeleted(ctx context.Context, tx sqlx.ExtContext, form models.ApplicationForm) error
	// SyncAll re-runs OnFormSaved for every form.
	SyncAll(ctx context.Context, ext sqlx.ExtContext) error
}

type filterSyncServiceImpl struct {
	filters FilterWriter
	forms   FormLister
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

// Instantiate the FilterSyncService.
func NewFilterSyncService(filters FilterWriter, forms FormLister, log logrus.FieldLogger, m *metrics.Metrics) FilterSyncService {
	return &filterSyncServiceImpl{filters: filters, forms: forms, log: log, metrics: m}
}

func (s *filterSyncServiceImpl) OnFormSaved(ctx context.Context, tx sqlx.ExtContext, form models.ApplicationForm) error {
	for _, rule := range rules {
		f := &models.Filter{
			Rule:         rule.ID,
			Name:         rule.Label,
			Description:  form.Corp.CorporationName,
			FilterCorpID: form.CorpID,
		}
		if err := s.filters.Upsert(ctx, tx, f); err != nil {
			s.metrics.IncrementSync("failed")
			return err
		}
	}

	s.metrics.IncrementSync("saved")
	s.log.WithFields(logrus.Fields{
		"form_id": form.ID,
		"corp_id": form.CorpID,
	}).Info("smart filters synced")

	return nil
}

func (s *filterSyncServiceImpl) OnFormDeleted(ctx context.Context, tx sqlx.ExtContext, form models.ApplicationForm) error {
	n, err := s.filters.DeleteForCorp(ctx, tx, form.CorpID)
	if err != nil {
		s.metrics.IncrementSync("failed")
		return err
	}

	s.metrics.IncrementSync("deleted")
	s.log.WithFields(logrus.Fields{
		"form_id": form.ID,
		"corp_id": form.CorpID,
		"removed": n,
	}).Info("smart filters removed")

	return nil
}

func (s *filterSyncServiceImpl) SyncAll(ctx context.Context, ext sqlx.ExtContext) error {
	forms, err := s.forms.List(ctx)
	if err != nil {
		return err
	}

	for _, form := range forms {
		if err := s.OnFormSaved(ctx, ext, form); err != nil {
			s.log.WithError(err).WithField("corp_id", form.CorpID).Error("smart filter resync failed")
			return fmt.Errorf("sync filters for corp %d: %w", form.CorpID, err)
		}
	}
	return nil
}
