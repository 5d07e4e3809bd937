package inmemdb

import (
	"context"

	"github.com/trezcool/yuva/core/request"
)

type requestRepository struct {
	db *table[request.Request]
}

var _ request.Repository = (*requestRepository)(nil) // interface compliance check

func NewRequestRepository(db *DB) request.Repository {
	return &requestRepository{db: db.requests}
}

var urgencyRank = map[string]int{request.UrgencyHigh: 0, request.UrgencyNormal: 1, request.UrgencyLow: 2}

func (repo *requestRepository) CreateRequest(_ context.Context, r request.Request) (request.Request, error) {
	r.ID = newID()
	repo.db.insert(r.ID, r)
	return r, nil
}

func (repo *requestRepository) GetRequest(_ context.Context, id string) (request.Request, error) {
	if r, ok := repo.db.get(id); ok {
		return r, nil
	}
	return request.Request{}, request.ErrNotFound
}

func (repo *requestRepository) QueryRequests(_ context.Context, filter *request.QueryFilter) ([]request.Request, error) {
	rows := repo.db.filter(func(r request.Request) bool {
		if filter.Kind != "" && r.Kind != filter.Kind {
			return false
		}
		if filter.Status != "" && r.Status != filter.Status {
			return false
		}
		if filter.Kinds != nil && !in(r.Kind, filter.Kinds) {
			return filter.RequesterID != "" && r.RequesterID.String == filter.RequesterID
		}
		return true
	})
	return sorted(rows, func(a, b request.Request) bool {
		if urgencyRank[a.Urgency] != urgencyRank[b.Urgency] {
			return urgencyRank[a.Urgency] < urgencyRank[b.Urgency]
		}
		return a.CreatedAt.After(b.CreatedAt)
	}), nil
}

func (repo *requestRepository) UpdateRequest(_ context.Context, r request.Request) (request.Request, error) {
	if !repo.db.update(r.ID, r) {
		return request.Request{}, request.ErrNotFound
	}
	return r, nil
}

func (repo *requestRepository) DeleteRequest(_ context.Context, id string) error {
	if repo.db.delete(id) == 0 {
		return request.ErrNotFound
	}
	return nil
}
