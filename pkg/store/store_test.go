package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type questionDTO struct {
	Title    string  `db:"title"`
	HelpText *string `db:"help_text"`
	Position int     `db:"position"`
	Internal string
	Skipped  string `db:"-"`
}

func (d questionDTO) ToModel(id int) any { return nil }

func TestInsertColumns(t *testing.T) {
	columns, placeholders := InsertColumns(questionDTO{})

	assert.Equal(t, "title, help_text, position", columns)
	assert.Equal(t, ":title, :help_text, :position", placeholders)
	assert.Equal(t, []string{"title", "help_text", "position"}, StructColumns(&questionDTO{}))
}

func TestUpdateAssignments(t *testing.T) {
	params := map[string]any{"id": 3}

	set := UpdateAssignments(&questionDTO{Position: 2, Internal: "x"}, params)

	assert.Equal(t, "position = :position", set)
	assert.Equal(t, map[string]any{"id": 3, "position": 2}, params)
}
