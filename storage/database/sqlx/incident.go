package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/yuva/core/incident"
)

const incidentTable = "behavior_incident"

var incidentColumns = columns{
	"id", "child_id", "reporter_id", "occurred_on", "category", "severity", "description", "action_taken", "status",
	"counselor_id", "evaluation", "evaluated_at", "parent_notified", "created_at", "updated_at",
}

type incidentRepository struct {
	db *sqlx.DB
}

var _ incident.Repository = (*incidentRepository)(nil) // interface compliance check

func NewIncidentRepository(db *sqlx.DB) incident.Repository {
	return &incidentRepository{db: db}
}

func (repo *incidentRepository) CreateIncident(ctx context.Context, i incident.Incident) (incident.Incident, error) {
	i.ID = newID()
	if err := insertRow(ctx, repo.db, incidentColumns, incidentTable, i); err != nil {
		return incident.Incident{}, err
	}
	return i, nil
}

func (repo *incidentRepository) GetIncident(ctx context.Context, id string) (incident.Incident, error) {
	return getByID[incident.Incident](ctx, repo.db, incidentColumns, incidentTable, id, incident.ErrNotFound)
}

func (repo *incidentRepository) QueryIncidents(ctx context.Context, filter *incident.QueryFilter) ([]incident.Incident, error) {
	w := new(where)
	if filter.ChildIDs != nil {
		w.in("child_id", filter.ChildIDs)
	}
	if filter.Status != "" {
		w.and("status = ?", filter.Status)
	}
	if filter.Severity != "" {
		w.and("severity = ?", filter.Severity)
	}
	if !filter.From.IsZero() {
		w.and("occurred_on >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		w.and("occurred_on <= ?", filter.To)
	}
	return selectWhere[incident.Incident](ctx, repo.db, w, incidentColumns.selectFrom(incidentTable),
		"ORDER BY occurred_on DESC, created_at DESC", "querying incidents")
}

func (repo *incidentRepository) UpdateIncident(ctx context.Context, i incident.Incident) (incident.Incident, error) {
	if err := updateRow(ctx, repo.db, incidentColumns, incidentTable, i, incident.ErrNotFound); err != nil {
		return incident.Incident{}, err
	}
	return i, nil
}

func (repo *incidentRepository) DeleteIncident(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, incidentTable, id, incident.ErrNotFound)
}
