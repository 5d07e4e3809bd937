package inmemdb

import (
	"context"

	"github.com/trezcool/yuva/core/incident"
)

type incidentRepository struct {
	db *table[incident.Incident]
}

var _ incident.Repository = (*incidentRepository)(nil) // interface compliance check

func NewIncidentRepository(db *DB) incident.Repository {
	return &incidentRepository{db: db.incidents}
}

func (repo *incidentRepository) CreateIncident(_ context.Context, i incident.Incident) (incident.Incident, error) {
	i.ID = newID()
	repo.db.insert(i.ID, i)
	return i, nil
}

func (repo *incidentRepository) GetIncident(_ context.Context, id string) (incident.Incident, error) {
	if i, ok := repo.db.get(id); ok {
		return i, nil
	}
	return incident.Incident{}, incident.ErrNotFound
}

func (repo *incidentRepository) QueryIncidents(_ context.Context, filter *incident.QueryFilter) ([]incident.Incident, error) {
	rows := repo.db.filter(func(i incident.Incident) bool {
		if filter.ChildIDs != nil && !in(i.ChildID, filter.ChildIDs) {
			return false
		}
		if filter.Status != "" && i.Status != filter.Status {
			return false
		}
		if filter.Severity != "" && i.Severity != filter.Severity {
			return false
		}
		if !filter.From.IsZero() && i.OccurredOn.Before(filter.From) {
			return false
		}
		if !filter.To.IsZero() && i.OccurredOn.After(filter.To) {
			return false
		}
		return true
	})
	return sorted(rows, func(a, b incident.Incident) bool {
		if a.OccurredOn.Equal(b.OccurredOn) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.OccurredOn.After(b.OccurredOn)
	}), nil
}

func (repo *incidentRepository) UpdateIncident(_ context.Context, i incident.Incident) (incident.Incident, error) {
	if !repo.db.update(i.ID, i) {
		return incident.Incident{}, incident.ErrNotFound
	}
	return i, nil
}

func (repo *incidentRepository) DeleteIncident(_ context.Context, id string) error {
	if repo.db.delete(id) == 0 {
		return incident.ErrNotFound
	}
	return nil
}
