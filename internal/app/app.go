package app

import (
	"context"

	"github.com/GoosefleetEO/aa-hrapplications-two/internal/models"
	"github.com/GoosefleetEO/aa-hrapplications-two/internal/pkg/config"
	"github.com/GoosefleetEO/aa-hrapplications-two/internal/pkg/database"
	"github.com/GoosefleetEO/aa-hrapplications-two/internal/pkg/logger"
	"github.com/GoosefleetEO/aa-hrapplications-two/internal/pkg/metrics"
	"github.com/GoosefleetEO/aa-hrapplications-two/internal/pkg/paginator"
	datastore "github.com/GoosefleetEO/aa-hrapplications-two/internal/pkg/store"
	"github.com/GoosefleetEO/aa-hrapplications-two/internal/services"
	"github.com/GoosefleetEO/aa-hrapplications-two/internal/stores"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// App bundles the services the host platform calls into.
type App struct {
	DB  *sqlx.DB
	Log *logrus.Logger

	Filters      services.FilterService
	FilterSync   services.FilterSyncService
	Forms        services.FormService
	Questions    services.QuestionService
	Applications services.ApplicationService

	FilterStore *stores.FilterStore
}

// Open connects to the database named by cfg and wires the services,
// registering metrics with reg.
func Open(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*App, error) {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(db, cfg, logger.New(cfg.LogLevel, cfg.LogFormat), reg), nil
}

func New(db *sqlx.DB, cfg *config.Config, log *logrus.Logger, reg prometheus.Registerer) *App {
	m := metrics.New(reg)

	applicationStore := stores.NewApplicationStore(db)
	formStore := stores.NewFormStore(db)
	filterStore := stores.NewFilterStore(db)

	sync := services.NewFilterSyncService(filterStore, formStore, log.WithField("component", "filter_sync"), m)

	return &App{
		DB:  db,
		Log: log,

		Filters:    services.NewFilterService(applicationStore, log.WithField("component", "filters"), m),
		FilterSync: sync,
		Forms:      services.NewFormService(db, formStore, sync),
		Questions: services.NewQuestionService(
			datastore.NewDataStore[models.ApplicationQuestion](db, "hr_application_question"),
			datastore.NewDataStore[models.ApplicationChoice](db, "hr_application_choice"),
		),
		Applications: services.NewApplicationService(services.ApplicationServiceDeps{
			DB:           db,
			Applications: applicationStore,
			Forms:        formStore,
			Records:      datastore.NewDataStore[models.Application](db, "hr_application"),
			CommentStore: datastore.NewDataStore[models.ApplicationComment](db, "hr_application_comment"),
			Queue: paginator.NewPaginator(
				datastore.NewDataStore[models.ApplicationSummary](db, "hr_application"),
				cfg.PageSize,
			),
			Log: log.WithField("component", "applications"),
		}),

		FilterStore: filterStore,
	}
}

// Filter evaluates a stored smart filter for one user.
func (a *App) Filter(ctx context.Context, filterID, userID int) (bool, error) {
	f, err := a.FilterStore.Get(ctx, filterID)
	if err != nil {
		return false, err
	}
	return a.Filters.EvaluateFilter(ctx, *f, userID)
}

// AuditFilter audits a stored smart filter for many users.
func (a *App) AuditFilter(ctx context.Context, filterID int, userIDs []int) (map[int]models.AuditResult, error) {
	f, err := a.FilterStore.Get(ctx, filterID)
	if err != nil {
		return nil, err
	}
	return a.Filters.AuditFilter(ctx, *f, userIDs)
}

func (a *App) Close() error {
	return a.DB.Close()
}
