package models

import "time"

type CreateQuestionDTO struct {
	Title       string  `db:"title" json:"title"`
	HelpText    *string `db:"help_text" json:"help_text"`
	MultiSelect bool    `db:"multi_select" json:"multi_select"`
	Condition   *string `db:"condition" json:"condition"`
}

func (d CreateQuestionDTO) ToModel(id int) any {
	return &ApplicationQuestion{
		ID:          id,
		Title:       d.Title,
		HelpText:    d.HelpText,
		MultiSelect: d.MultiSelect,
		Condition:   d.Condition,
	}
}

// UpdateQuestionDTO edits the wording of a bank question. Empty fields keep
// their stored value. Conditions are fixed once forms use the question.
type UpdateQuestionDTO struct {
	Title    string  `db:"title" json:"title"`
	HelpText *string `db:"help_text" json:"help_text"`
}

func (d UpdateQuestionDTO) ToModel(id int) any {
	return &ApplicationQuestion{ID: id, Title: d.Title, HelpText: d.HelpText}
}

type CreateChoiceDTO struct {
	QuestionID int    `db:"question_id" json:"question_id"`
	ChoiceText string `db:"choice_text" json:"choice_text"`
}

func (d CreateChoiceDTO) ToModel(id int) any {
	return &ApplicationChoice{ID: id, QuestionID: d.QuestionID, ChoiceText: d.ChoiceText}
}

type CreateCommentDTO struct {
	ApplicationID int       `db:"application_id" json:"application_id"`
	UserID        int       `db:"user_id" json:"user_id"`
	Text          string    `db:"text" json:"text"`
	Created       time.Time `db:"created" json:"created"`
}

func (d CreateCommentDTO) ToModel(id int) any {
	return &ApplicationComment{
		ID:            id,
		ApplicationID: d.ApplicationID,
		UserID:        d.UserID,
		Text:          d.Text,
		Created:       d.Created,
	}
}

// SaveFormDTO creates the form for CorpID, or replaces its questions when one
// already exists.
type SaveFormDTO struct {
	CorpID      int   `json:"corp_id"`
	QuestionIDs []int `json:"question_ids"` // display order
}

type SubmitApplicationDTO struct {
	FormID  int            `json:"form_id"`
	UserID  int            `json:"user_id"`
	Answers map[int]string `json:"answers"` // keyed by question id
}
