package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GoosefleetEO/aa-hrapplications-two/internal/models"
	"github.com/GoosefleetEO/aa-hrapplications-two/internal/pkg/database"
	"github.com/GoosefleetEO/aa-hrapplications-two/internal/pkg/paginator"
	"github.com/GoosefleetEO/aa-hrapplications-two/pkg/fault"
	"github.com/GoosefleetEO/aa-hrapplications-two/pkg/store"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// Answers to multi-select questions list the picked choices separated by this.
const multiSelectSeparator = ","

type ApplicationRepository interface {
	Insert(ctx context.Context, ext sqlx.ExtContext, app *models.Application) error
	InsertResponses(ctx context.Context, ext sqlx.ExtContext, responses []models.ApplicationResponse) error
	Get(ctx context.Context, id int) (*models.Application, error)
	Responses(ctx context.Context, applicationID int) ([]models.ApplicationResponse, error)
	MarkInReview(ctx context.Context, id, reviewerID int, reviewerCharacterID *int) error
	SetDecision(ctx context.Context, id int, approved *bool, reviewerID *int) error
	ReviewQueueQuery(corpID int, only models.Classification) (string, []any, error)
	Stats(ctx context.Context, corpID int) (*models.ReviewStats, error)
	CountPending(ctx context.Context, corpIDs []int) (int, error)
}

// FormReader is the part of the form store submissions need.
type FormReader interface {
	Get(ctx context.Context, q sqlx.QueryerContext, id int) (*models.ApplicationForm, error)
	Questions(ctx context.Context, formID int) ([]models.ApplicationQuestion, error)
}

// Handles submitted applications and their review.
type ApplicationService interface {
	Submit(ctx context.Context, data models.SubmitApplicationDTO) (*models.Application, error)
	Get(ctx context.Context, id int) (*models.Application, error)
	Delete(ctx context.Context, id int) error

	// AssignReviewer puts an undecided application in review.
	AssignReviewer(ctx context.Context, id, reviewerID int, reviewerCharacterID *int) error
	Decide(ctx context.Context, id, reviewerID int, approve bool) error
	// Reopen clears the decision and the reviewer.
	Reopen(ctx context.Context, id int) error

	AddComment(ctx context.Context, id, userID int, text string) (*models.ApplicationComment, error)
	Comments(ctx context.Context, id int) ([]models.ApplicationComment, error)

	// ListForCorp pages through a corporation's applications, newest first.
	// A zero classification lists all of them.
	ListForCorp(ctx context.Context, corpID int, only models.Classification, page, limit int) (*paginator.PaginatedResponse[models.ApplicationSummary], error)
	Stats(ctx context.Context, corpID int) (*models.ReviewStats, error)
	// PendingCount is the number of applications waiting for a reviewer in
	// the corporations the caller reviews for.
	PendingCount(ctx context.Context, corpIDs []int) (int, error)
}

type ApplicationServiceDeps struct {
	DB           *sqlx.DB
	Applications ApplicationRepository
	Forms        FormReader
	Records      store.Datastorer[models.Application]
	CommentStore store.Datastorer[models.ApplicationComment]
	Queue        paginator.Paginator[models.ApplicationSummary]
	Log          logrus.FieldLogger
}

type applicationServiceImpl struct {
	ApplicationServiceDeps
	now func() time.Time
}

// Instantiate the ApplicationService.
func NewApplicationService(deps ApplicationServiceDeps) ApplicationService {
	return &applicationServiceImpl{
		ApplicationServiceDeps: deps,
		now:                    func() time.Time { return time.Now().UTC() },
	}
}

func (s *applicationServiceImpl) Submit(ctx context.Context, data models.SubmitApplicationDTO) (*models.Application, error) {
	form, err := s.Forms.Get(ctx, s.DB, data.FormID)
	if err != nil {
		return nil, notFoundAsClient(err, fmt.Sprintf("form %d", data.FormID))
	}

	questions, err := s.Forms.Questions(ctx, form.ID)
	if err != nil {
		return nil, err
	}

	responses, err := validateAnswers(questions, data.Answers)
	if err != nil {
		return nil, err
	}

	app := &models.Application{FormID: form.ID, UserID: data.UserID, Created: s.now()}

	err = database.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		if err := s.Applications.Insert(ctx, tx, app); err != nil {
			if errors.Is(err, fault.ErrUniqueViolation) {
				return fault.NewClientError("application already submitted", err)
			}
			return err
		}

		for i := range responses {
			responses[i].ApplicationID = app.ID
		}
		return s.Applications.InsertResponses(ctx, tx, responses)
	})
	if err != nil {
		return nil, err
	}

	app.Responses = responses

	s.Log.WithFields(logrus.Fields{
		"application_id": app.ID,
		"user_id":        app.UserID,
		"corp_id":        form.CorpID,
	}).Info("application submitted")

	return app, nil
}

// validateAnswers checks the answers against the form and returns the
// responses to store, in question order. Answers to questions the
// conditions hide are dropped.
func validateAnswers(questions []models.ApplicationQuestion, answers map[int]string) ([]models.ApplicationResponse, error) {
	known := make(map[int]struct{}, len(questions))
	for _, q := range questions {
		known[q.ID] = struct{}{}
	}
	for id := range answers {
		if _, ok := known[id]; !ok {
			return nil, fault.NewClientError(fmt.Sprintf("question %d is not on this form", id), nil)
		}
	}

	env := answerEnv(questions, answers)
	responses := make([]models.ApplicationResponse, 0, len(questions))

	for _, q := range questions {
		visible, err := isVisible(q, env)
		if err != nil {
			return nil, fault.NewInternalError(fmt.Sprintf("condition of question %d", q.ID), err)
		}
		if !visible {
			continue
		}

		answer, err := normalizeAnswer(q, answers[q.ID])
		if err != nil {
			return nil, err
		}
		responses = append(responses, models.ApplicationResponse{QuestionID: q.ID, Answer: answer})
	}

	return responses, nil
}

func normalizeAnswer(q models.ApplicationQuestion, answer string) (string, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fault.NewClientError(fmt.Sprintf("question %q needs an answer", q.Title), nil)
	}
	if len(q.Choices) == 0 {
		return answer, nil
	}

	picked := []string{answer}
	if q.MultiSelect {
		picked = strings.Split(answer, multiSelectSeparator)
	}

	allowed := make(map[string]struct{}, len(q.Choices))
	for _, c := range q.Choices {
		allowed[c.ChoiceText] = struct{}{}
	}

	for i, p := range picked {
		p = strings.TrimSpace(p)
		if _, ok := allowed[p]; !ok {
			return "", fault.NewClientError(fmt.Sprintf("%q is not a choice of question %q", p, q.Title), nil)
		}
		picked[i] = p
	}

	return strings.Join(picked, multiSelectSeparator+" "), nil
}

func (s *applicationServiceImpl) Get(ctx context.Context, id int) (*models.Application, error) {
	app, err := s.Applications.Get(ctx, id)
	if err != nil {
		return nil, notFoundAsClient(err, fmt.Sprintf("application %d", id))
	}

	responses, err := s.Applications.Responses(ctx, id)
	if err != nil {
		return nil, err
	}
	app.Responses = responses

	return app, nil
}

func (s *applicationServiceImpl) Delete(ctx context.Context, id int) error {
	if err := s.Records.Delete(ctx, id); err != nil {
		return notFoundAsClient(err, fmt.Sprintf("application %d", id))
	}
	s.Log.WithField("application_id", id).Info("application deleted")
	return nil
}

func (s *applicationServiceImpl) AssignReviewer(ctx context.Context, id, reviewerID int, reviewerCharacterID *int) error {
	if err := s.Applications.MarkInReview(ctx, id, reviewerID, reviewerCharacterID); err != nil {
		return notFoundAsClient(err, fmt.Sprintf("undecided application %d", id))
	}
	s.Log.WithFields(logrus.Fields{"application_id": id, "reviewer_id": reviewerID}).Info("application in review")
	return nil
}

func (s *applicationServiceImpl) Decide(ctx context.Context, id, reviewerID int, approve bool) error {
	if err := s.Applications.SetDecision(ctx, id, &approve, &reviewerID); err != nil {
		return notFoundAsClient(err, fmt.Sprintf("application %d", id))
	}
	s.Log.WithFields(logrus.Fields{"application_id": id, "reviewer_id": reviewerID, "approved": approve}).Info("application decided")
	return nil
}

func (s *applicationServiceImpl) Reopen(ctx context.Context, id int) error {
	if err := s.Applications.SetDecision(ctx, id, nil, nil); err != nil {
		return notFoundAsClient(err, fmt.Sprintf("application %d", id))
	}
	s.Log.WithField("application_id", id).Info("application reopened")
	return nil
}

func (s *applicationServiceImpl) AddComment(ctx context.Context, id, userID int, text string) (*models.ApplicationComment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fault.NewClientError("comment text is required", nil)
	}

	created, err := s.CommentStore.Create(ctx, models.CreateCommentDTO{
		ApplicationID: id,
		UserID:        userID,
		Text:          text,
		Created:       s.now(),
	})
	if errors.Is(err, fault.ErrForeignKeyViolation) {
		return nil, fault.NewClientError(fmt.Sprintf("application %d not found", id), err)
	}
	if err != nil {
		return nil, err
	}

	comment, ok := created.(*models.ApplicationComment)
	if !ok {
		return nil, fault.NewInternalError(fmt.Sprintf("unexpected comment model %T", created), nil)
	}
	return comment, nil
}

func (s *applicationServiceImpl) Comments(ctx context.Context, id int) ([]models.ApplicationComment, error) {
	return s.CommentStore.Select(ctx,
		`SELECT id, application_id, user_id, text, created FROM hr_application_comment
		WHERE application_id = $1 ORDER BY created, id`, id)
}

func (s *applicationServiceImpl) ListForCorp(ctx context.Context, corpID int, only models.Classification, page, limit int) (*paginator.PaginatedResponse[models.ApplicationSummary], error) {
	query, args, err := s.Applications.ReviewQueueQuery(corpID, only)
	if err != nil {
		return nil, err
	}
	return s.Queue.PaginateQuery(ctx, query, args, page, limit)
}

func (s *applicationServiceImpl) Stats(ctx context.Context, corpID int) (*models.ReviewStats, error) {
	stats, err := s.Applications.Stats(ctx, corpID)
	if err != nil {
		return nil, err
	}

	rate, err := AcceptanceRate(*stats)
	if err != nil {
		return nil, fault.NewInternalError(fmt.Sprintf("review stats of corporation %d", corpID), err)
	}
	stats.AcceptanceRate = rate

	return stats, nil
}

func (s *applicationServiceImpl) PendingCount(ctx context.Context, corpIDs []int) (int, error) {
	return s.Applications.CountPending(ctx, uniqueIDs(corpIDs))
}
