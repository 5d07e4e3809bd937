package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trezcool/yuva/core/request"
)

const requestTable = "request"

var requestColumns = columns{
	"id", "kind", "title", "description", "items", "location", "child_id", "urgency", "status", "requester_id",
	"assignee_id", "response_note", "handled_at", "created_at", "updated_at",
}

type requestRepository struct {
	db *sqlx.DB
}

var _ request.Repository = (*requestRepository)(nil) // interface compliance check

func NewRequestRepository(db *sqlx.DB) request.Repository {
	return &requestRepository{db: db}
}

func (repo *requestRepository) CreateRequest(ctx context.Context, r request.Request) (request.Request, error) {
	r.ID = newID()
	if r.Items == nil {
		r.Items = pq.StringArray{}
	}
	if err := insertRow(ctx, repo.db, requestColumns, requestTable, r); err != nil {
		return request.Request{}, err
	}
	return r, nil
}

func (repo *requestRepository) GetRequest(ctx context.Context, id string) (request.Request, error) {
	return getByID[request.Request](ctx, repo.db, requestColumns, requestTable, id, request.ErrNotFound)
}

func (repo *requestRepository) QueryRequests(ctx context.Context, filter *request.QueryFilter) ([]request.Request, error) {
	w := new(where)
	if filter.Kind != "" {
		w.and("kind = ?", filter.Kind)
	}
	if filter.Status != "" {
		w.and("status = ?", filter.Status)
	}
	if filter.Kinds != nil {
		if filter.RequesterID != "" {
			w.and("(kind = ANY(?::text[]) OR requester_id::text = ?)", pq.Array(filter.Kinds), filter.RequesterID)
		} else {
			w.and("kind = ANY(?::text[])", pq.Array(filter.Kinds))
		}
	}
	suffix := "ORDER BY CASE urgency WHEN 'high' THEN 0 WHEN 'normal' THEN 1 ELSE 2 END, created_at DESC"
	return selectWhere[request.Request](ctx, repo.db, w, requestColumns.selectFrom(requestTable), suffix, "querying requests")
}

func (repo *requestRepository) UpdateRequest(ctx context.Context, r request.Request) (request.Request, error) {
	if r.Items == nil {
		r.Items = pq.StringArray{}
	}
	if err := updateRow(ctx, repo.db, requestColumns, requestTable, r, request.ErrNotFound); err != nil {
		return request.Request{}, err
	}
	return r, nil
}

func (repo *requestRepository) DeleteRequest(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, requestTable, id, request.ErrNotFound)
}
