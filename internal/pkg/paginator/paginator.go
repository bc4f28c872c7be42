package paginator

import (
	"context"
	"fmt"

	"github.com/GoosefleetEO/aa-hrapplications-two/pkg/store"
)

// MaxLimit caps the page size a caller can ask for.
const MaxLimit = 100

type PaginatedResponse[T any] struct {
	Items       []T  `json:"items"`
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	PrevPage    *int `json:"prev_page"`
	NextPage    *int `json:"next_page"`
	TotalItems  int  `json:"total_items"`
}

type Paginator[T any] interface {
	// Pagination based from custom query.
	PaginateQuery(ctx context.Context, query string, args []any, page, limit int) (*PaginatedResponse[T], error)
}

type paginatorImpl[T any] struct {
	datastore    store.Datastorer[T]
	defaultLimit int
}

// NewPaginator pages through queries run on ds. A limit below 1 falls back
// to defaultLimit.
func NewPaginator[T any](ds store.Datastorer[T], defaultLimit int) Paginator[T] {
	if defaultLimit < 1 {
		defaultLimit = 10
	}
	return &paginatorImpl[T]{datastore: ds, defaultLimit: defaultLimit}
}

func (p *paginatorImpl[T]) PaginateQuery(ctx context.Context, query string, args []any, page, limit int) (*PaginatedResponse[T], error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = p.defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset := (page - 1) * limit

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM (%s) AS total_count", query)
	totalItemsRaw, err := p.datastore.QueryRow(ctx, countQuery, args...)
	if err != nil {
		return nil, err
	}

	var totalItems int
	switch v := totalItemsRaw.(type) {
	case int:
		totalItems = v
	case int64:
		totalItems = int(v)
	default:
		return nil, fmt.Errorf("expected int for total count, got %T", totalItemsRaw)
	}

	totalPages := (totalItems + limit - 1) / limit

	paginatedQuery := fmt.Sprintf("%s LIMIT $%d OFFSET $%d", query, len(args)+1, len(args)+2)
	pageArgs := append(append([]any{}, args...), limit, offset)

	items, err := p.datastore.Select(ctx, paginatedQuery, pageArgs...)
	if err != nil {
		return nil, err
	}

	var prevPage, nextPage *int
	if page > 1 {
		p := page - 1
		prevPage = &p
	}
	if page < totalPages {
		p := page + 1
		nextPage = &p
	}

	return &PaginatedResponse[T]{
		Items:       items,
		CurrentPage: page,
		TotalPages:  totalPages,
		PrevPage:    prevPage,
		NextPage:    nextPage,
		TotalItems:  totalItems,
	}, nil
}
