package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/yuva/core/branchreport"
)

const branchReportTable = "branch_course_report"

var branchReportColumns = columns{
	"id", "child_id", "teacher_id", "course", "period", "assessment", "notes", "created_at", "updated_at",
}

type branchReportRepository struct {
	db *sqlx.DB
}

var _ branchreport.Repository = (*branchReportRepository)(nil) // interface compliance check

func NewBranchReportRepository(db *sqlx.DB) branchreport.Repository {
	return &branchReportRepository{db: db}
}

func (repo *branchReportRepository) CreateReport(ctx context.Context, r branchreport.Report) (branchreport.Report, error) {
	r.ID = newID()
	if err := insertRow(ctx, repo.db, branchReportColumns, branchReportTable, r); err != nil {
		return branchreport.Report{}, err
	}
	return r, nil
}

func (repo *branchReportRepository) GetReport(ctx context.Context, id string) (branchreport.Report, error) {
	return getByID[branchreport.Report](ctx, repo.db, branchReportColumns, branchReportTable, id, branchreport.ErrNotFound)
}

func (repo *branchReportRepository) QueryReports(ctx context.Context, filter *branchreport.QueryFilter) ([]branchreport.Report, error) {
	w := new(where)
	if filter.ChildIDs != nil {
		w.in("child_id", filter.ChildIDs)
	}
	if filter.Course != "" {
		w.and("LOWER(course) = LOWER(?)", filter.Course)
	}
	if filter.Period != "" {
		w.and("LOWER(period) = LOWER(?)", filter.Period)
	}
	if filter.TeacherID != "" {
		w.and("teacher_id::text = ?", filter.TeacherID)
	}
	return selectWhere[branchreport.Report](ctx, repo.db, w, branchReportColumns.selectFrom(branchReportTable),
		"ORDER BY created_at DESC", "querying branch course reports")
}

func (repo *branchReportRepository) UpdateReport(ctx context.Context, r branchreport.Report) (branchreport.Report, error) {
	if err := updateRow(ctx, repo.db, branchReportColumns, branchReportTable, r, branchreport.ErrNotFound); err != nil {
		return branchreport.Report{}, err
	}
	return r, nil
}

func (repo *branchReportRepository) DeleteReport(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, branchReportTable, id, branchreport.ErrNotFound)
}
