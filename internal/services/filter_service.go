package services

import (
	"context"
	"fmt"
	"time"

	"github.com/GoosefleetEO/aa-hrapplications-two/internal/models"
	"github.com/GoosefleetEO/aa-hrapplications-two/internal/pkg/metrics"
	"github.com/sirupsen/logrus"
)

const (
	// MessageNoApplication is reported for users without an application to the corp.
	MessageNoApplication = "No Application Found"
	// StatusUnavailable is what consumers should show when Evaluate or Audit fail.
	StatusUnavailable = "Unable to determine status"
)

// ApplicationReader is the read side of the application store the filters need.
type ApplicationReader interface {
	// HasApplications reports whether the user applied anywhere at all.
	HasApplications(ctx context.Context, userID int) (bool, error)
	// CountMatching counts the user's applications to corpID whose
	// classification satisfies target.
	CountMatching(ctx context.Context, userID, corpID int, target models.Classification) (int, error)
	// ReviewStates returns one row per application to corpID by any of
	// userIDs, oldest first.
	ReviewStates(ctx context.Context, userIDs []int, corpID int) ([]models.ReviewState, error)
}

// Answers whether users' applications satisfy smart filter rules.
type FilterService interface {
	// Evaluate reports whether the user's application to corpID satisfies rule.
	Evaluate(ctx context.Context, rule Rule, userID, corpID int) (bool, error)
	// Audit classifies every user in one read. The result has an entry for
	// every id in userIDs.
	Audit(ctx context.Context, rule Rule, userIDs []int, corpID int) (map[int]models.AuditResult, error)

	EvaluateFilter(ctx context.Context, filter models.Filter, userID int) (bool, error)
	AuditFilter(ctx context.Context, filter models.Filter, userIDs []int) (map[int]models.AuditResult, error)
}

type filterServiceImpl struct {
	reader  ApplicationReader
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

// Instantiate the FilterService.
func NewFilterService(reader ApplicationReader, log logrus.FieldLogger, m *metrics.Metrics) FilterService {
	return &filterServiceImpl{reader: reader, log: log, metrics: m}
}

func (s *filterServiceImpl) Evaluate(ctx context.Context, rule Rule, userID, corpID int) (bool, error) {
	ok, err := s.evaluate(ctx, rule, userID, corpID)
	s.metrics.ObserveEvaluation(rule.ID, ok, err)
	if err != nil {
		return false, err
	}

	s.log.WithFields(logrus.Fields{
		"rule":    rule.ID,
		"user_id": userID,
		"corp_id": corpID,
		"result":  ok,
	}).Debug("filter evaluated")

	return ok, nil
}

func (s *filterServiceImpl) evaluate(ctx context.Context, rule Rule, userID, corpID int) (bool, error) {
	if err := rule.check(); err != nil {
		return false, err
	}

	// Most users checked by group filters never applied anywhere.
	applied, err := s.reader.HasApplications(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("evaluate %s for user %d: %w", rule, userID, err)
	}
	if !applied {
		return false, nil
	}

	count, err := s.reader.CountMatching(ctx, userID, corpID, rule.Target)
	if err != nil {
		return false, fmt.Errorf("evaluate %s for user %d: %w", rule, userID, err)
	}

	return count > 0, nil
}

func (s *filterServiceImpl) Audit(ctx context.Context, rule Rule, userIDs []int, corpID int) (map[int]models.AuditResult, error) {
	start := time.Now()
	defer s.metrics.ObserveAudit(rule.ID, start)

	if err := rule.check(); err != nil {
		return nil, err
	}

	output := make(map[int]models.AuditResult, len(userIDs))
	for _, id := range userIDs {
		output[id] = models.AuditResult{Message: MessageNoApplication, Check: false}
	}
	if len(output) == 0 {
		return output, nil
	}

	states, err := s.reader.ReviewStates(ctx, uniqueIDs(userIDs), corpID)
	if err != nil {
		return nil, fmt.Errorf("audit %s for corp %d: %w", rule, corpID, err)
	}

	// Rows come oldest first, so with duplicate applications the newest wins.
	for _, st := range states {
		if _, asked := output[st.UserID]; !asked {
			continue
		}
		c := st.Classification()
		output[st.UserID] = models.AuditResult{
			Message: "Application " + c.String(),
			Check:   rule.Target.Matches(c),
		}
	}

	s.log.WithFields(logrus.Fields{
		"rule":    rule.ID,
		"corp_id": corpID,
		"users":   len(output),
		"rows":    len(states),
	}).Debug("filter audited")

	return output, nil
}

func (s *filterServiceImpl) EvaluateFilter(ctx context.Context, filter models.Filter, userID int) (bool, error) {
	rule, err := LookupRule(filter.Rule)
	if err != nil {
		return false, err
	}
	return s.Evaluate(ctx, rule, userID, filter.FilterCorpID)
}

func (s *filterServiceImpl) AuditFilter(ctx context.Context, filter models.Filter, userIDs []int) (map[int]models.AuditResult, error) {
	rule, err := LookupRule(filter.Rule)
	if err != nil {
		return nil, err
	}
	return s.Audit(ctx, rule, userIDs, filter.FilterCorpID)
}

func uniqueIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
