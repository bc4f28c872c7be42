package store

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

// DTO is the write side of a table row. ToModel builds the stored model once
// the database has assigned the row id.
type DTO interface {
	ToModel(id int) any
}

type Datastorer[T any] interface {
	Create(ctx context.Context, data DTO) (any, error)
	Update(ctx context.Context, id int, data DTO) (*T, error)
	Delete(ctx context.Context, id int) error
	QueryRow(ctx context.Context, query string, args ...any) (any, error)
	Get(ctx context.Context, query string, args ...any) (*T, error)
	Select(ctx context.Context, query string, args ...any) ([]T, error)
}

// StructColumns returns the db columns of a struct, in field order.
func StructColumns(instance any) []string {
	var columns []string
	for _, f := range taggedFields(reflect.TypeOf(instance)) {
		columns = append(columns, f.column)
	}
	return columns
}

// InsertColumns returns the column list and the matching named placeholders
// for inserting dto.
func InsertColumns(dto DTO) (columns string, placeholders string) {
	fields := taggedFields(reflect.TypeOf(dto))

	names := make([]string, len(fields))
	params := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.column
		params[i] = ":" + f.column
	}

	return strings.Join(names, ", "), strings.Join(params, ", ")
}

// UpdateAssignments builds a SET clause from the fields of dto that carry a
// value and copies those values into params. Nil pointers and empty strings
// are left untouched.
func UpdateAssignments(dto DTO, params map[string]any) string {
	v := reflect.Indirect(reflect.ValueOf(dto))

	var sets []string
	for _, f := range taggedFields(v.Type()) {
		value := v.Field(f.index)
		if value.Kind() == reflect.Ptr && value.IsNil() || value.Kind() == reflect.String && value.String() == "" {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = :%s", f.column, f.column))
		params[f.column] = value.Interface()
	}

	return strings.Join(sets, ", ")
}

type taggedField struct {
	index  int
	column string
}

// taggedFields lists the fields of a struct type that map to a column.
func taggedFields(t reflect.Type) []taggedField {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var fields []taggedField
	for i := range t.NumField() {
		tag := t.Field(i).Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		fields = append(fields, taggedField{index: i, column: tag})
	}
	return fields
}
