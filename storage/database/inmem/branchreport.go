package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/yuva/core/branchreport"
)

type branchReportRepository struct {
	db *table[branchreport.Report]
}

var _ branchreport.Repository = (*branchReportRepository)(nil) // interface compliance check

func NewBranchReportRepository(db *DB) branchreport.Repository {
	return &branchReportRepository{db: db.branchReports}
}

func (repo *branchReportRepository) CreateReport(_ context.Context, r branchreport.Report) (branchreport.Report, error) {
	r.ID = newID()
	repo.db.insert(r.ID, r)
	return r, nil
}

func (repo *branchReportRepository) GetReport(_ context.Context, id string) (branchreport.Report, error) {
	if r, ok := repo.db.get(id); ok {
		return r, nil
	}
	return branchreport.Report{}, branchreport.ErrNotFound
}

func (repo *branchReportRepository) QueryReports(_ context.Context, filter *branchreport.QueryFilter) ([]branchreport.Report, error) {
	rows := repo.db.filter(func(r branchreport.Report) bool {
		if filter.ChildIDs != nil && !in(r.ChildID, filter.ChildIDs) {
			return false
		}
		if filter.Course != "" && !strings.EqualFold(r.Course, filter.Course) {
			return false
		}
		if filter.Period != "" && !strings.EqualFold(r.Period, filter.Period) {
			return false
		}
		return filter.TeacherID == "" || r.TeacherID.String == filter.TeacherID
	})
	return sorted(rows, func(a, b branchreport.Report) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
}

func (repo *branchReportRepository) UpdateReport(_ context.Context, r branchreport.Report) (branchreport.Report, error) {
	if !repo.db.update(r.ID, r) {
		return branchreport.Report{}, branchreport.ErrNotFound
	}
	return r, nil
}

func (repo *branchReportRepository) DeleteReport(_ context.Context, id string) error {
	if repo.db.delete(id) == 0 {
		return branchreport.ErrNotFound
	}
	return nil
}
