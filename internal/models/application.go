package models

import (
	"fmt"
	"time"
)

type Corporation struct {
	ID              int    `db:"id" json:"id"`
	CorporationName string `db:"corporation_name" json:"corporation_name"`
}

type ApplicationQuestion struct {
	ID          int     `db:"id" json:"id"`
	Title       string  `db:"title" json:"title"`
	HelpText    *string `db:"help_text" json:"help_text"`
	MultiSelect bool    `db:"multi_select" json:"multi_select"`
	// Condition is an optional expression over earlier answers deciding
	// whether the question is asked at all.
	Condition *string `db:"condition" json:"condition"`

	Choices []ApplicationChoice `db:"-" json:"choices"`
}

type ApplicationChoice struct {
	ID         int    `db:"id" json:"id"`
	QuestionID int    `db:"question_id" json:"question_id"`
	ChoiceText string `db:"choice_text" json:"choice_text"`
}

type ApplicationForm struct {
	ID     int `db:"id" json:"id"`
	CorpID int `db:"corp_id" json:"corp_id"`

	Corp      Corporation           `db:"-" json:"corp"`
	Questions []ApplicationQuestion `db:"-" json:"questions"` // in display order
}

func (f ApplicationForm) String() string {
	return f.Corp.CorporationName
}

type Application struct {
	ID                  int       `db:"id" json:"id"`
	FormID              int       `db:"form_id" json:"form_id"`
	UserID              int       `db:"user_id" json:"user_id"`
	Approved            *bool     `db:"approved" json:"approved"`
	ReviewerID          *int      `db:"reviewer_id" json:"reviewer_id"`
	ReviewerCharacterID *int      `db:"reviewer_character_id" json:"reviewer_character_id"`
	Created             time.Time `db:"created" json:"created"`

	// Populated by joins where the caller asks for them.
	ReviewerCharacterName *string               `db:"reviewer_character_name" json:"reviewer_character_name,omitempty"`
	Responses             []ApplicationResponse `db:"-" json:"responses,omitempty"`
}

// Classification is the review state of the application.
func (a Application) Classification() Classification {
	return Classify(a.Approved, a.ReviewerID != nil)
}

// ReviewerLabel names whoever reviews the application, preferring the
// reviewer's character over the bare user.
func (a Application) ReviewerLabel() string {
	switch {
	case a.ReviewerCharacterName != nil:
		return *a.ReviewerCharacterName
	case a.ReviewerID != nil:
		return fmt.Sprintf("User %d", *a.ReviewerID)
	default:
		return ""
	}
}

type ApplicationResponse struct {
	ID            int    `db:"id" json:"id"`
	QuestionID    int    `db:"question_id" json:"question_id"`
	ApplicationID int    `db:"application_id" json:"application_id"`
	Answer        string `db:"answer" json:"answer"`
}

type ApplicationComment struct {
	ID            int       `db:"id" json:"id"`
	ApplicationID int       `db:"application_id" json:"application_id"`
	UserID        int       `db:"user_id" json:"user_id"`
	Text          string    `db:"text" json:"text"`
	Created       time.Time `db:"created" json:"created"`
}

// ReviewState is the projection the smart filters read: who applied and
// where the review stands.
type ReviewState struct {
	UserID     int   `db:"user_id"`
	Approved   *bool `db:"approved"`
	ReviewerID *int  `db:"reviewer_id"`
}

func (r ReviewState) Classification() Classification {
	return Classify(r.Approved, r.ReviewerID != nil)
}

// ApplicationSummary is a row of the review queue.
type ApplicationSummary struct {
	ID         int       `db:"id" json:"id"`
	UserID     int       `db:"user_id" json:"user_id"`
	Approved   *bool     `db:"approved" json:"approved"`
	ReviewerID *int      `db:"reviewer_id" json:"reviewer_id"`
	Created    time.Time `db:"created" json:"created"`
}

func (s ApplicationSummary) Classification() Classification {
	return Classify(s.Approved, s.ReviewerID != nil)
}

// ReviewStats tallies a corporation's applications by classification.
type ReviewStats struct {
	Total    int `db:"total" json:"total"`
	Accepted int `db:"accepted" json:"accepted"`
	InReview int `db:"in_review" json:"in_review"`
	Pending  int `db:"pending" json:"pending"`
	Rejected int `db:"rejected" json:"rejected"`

	// AcceptanceRate is filled in from the counts above.
	AcceptanceRate int `db:"-" json:"acceptance_rate"`
}
