package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/child"
)

const childTable = "child"

var (
	childColumns = columns{
		"id", "name", "birth_date", "class_name", "teacher_id", "parent_ids", "allergies", "notes", "is_active",
		"created_at", "updated_at",
	}
	childOrderings = []string{"name", "class_name", "birth_date", "created_at"}
)

type childRepository struct {
	db *sqlx.DB
}

var _ child.Repository = (*childRepository)(nil) // interface compliance check

func NewChildRepository(db *sqlx.DB) child.Repository {
	return &childRepository{db: db}
}

func (repo *childRepository) CreateChild(ctx context.Context, c child.Child) (child.Child, error) {
	c.ID = newID()
	if c.ParentIDs == nil {
		c.ParentIDs = pq.StringArray{}
	}
	if err := insertRow(ctx, repo.db, childColumns, childTable, c); err != nil {
		return child.Child{}, err
	}
	return c, nil
}

func (repo *childRepository) GetChild(ctx context.Context, id string) (child.Child, error) {
	return getByID[child.Child](ctx, repo.db, childColumns, childTable, id, child.ErrNotFound)
}

func (repo *childRepository) QueryChildren(ctx context.Context, filter *child.QueryFilter, ordering []core.DBOrdering) ([]child.Child, error) {
	w := new(where)
	if filter != nil {
		if filter.Search != "" {
			w.and("name ILIKE ?", "%"+filter.Search+"%")
		}
		if filter.ClassName != "" {
			w.and("LOWER(class_name) = LOWER(?)", filter.ClassName)
		}
		if filter.TeacherID != "" {
			w.and("teacher_id::text = ?", filter.TeacherID)
		}
		if filter.ParentID != "" {
			w.and("? = ANY(parent_ids)", filter.ParentID)
		}
		if filter.IsActive != nil {
			w.and("is_active = ?", *filter.IsActive)
		}
		if filter.IDs != nil {
			w.in("id", filter.IDs)
		}
	}
	suffix := "ORDER BY " + core.OrderBy(ordering, childOrderings, "name ASC")
	return selectWhere[child.Child](ctx, repo.db, w, childColumns.selectFrom(childTable), suffix, "querying children")
}

func (repo *childRepository) UpdateChild(ctx context.Context, c child.Child) (child.Child, error) {
	if c.ParentIDs == nil {
		c.ParentIDs = pq.StringArray{}
	}
	if err := updateRow(ctx, repo.db, childColumns, childTable, c, child.ErrNotFound); err != nil {
		return child.Child{}, err
	}
	return c, nil
}

func (repo *childRepository) DeleteChild(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, childTable, id, child.ErrNotFound)
}
