package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/child"
)

type childRepository struct {
	db *table[child.Child]
}

var _ child.Repository = (*childRepository)(nil) // interface compliance check

func NewChildRepository(db *DB) child.Repository {
	return &childRepository{db: db.children}
}

func (repo *childRepository) CreateChild(_ context.Context, c child.Child) (child.Child, error) {
	c.ID = newID()
	repo.db.insert(c.ID, c)
	return c, nil
}

func (repo *childRepository) GetChild(_ context.Context, id string) (child.Child, error) {
	if c, ok := repo.db.get(id); ok {
		return c, nil
	}
	return child.Child{}, child.ErrNotFound
}

func (repo *childRepository) QueryChildren(_ context.Context, filter *child.QueryFilter, _ []core.DBOrdering) ([]child.Child, error) {
	children := repo.db.filter(func(c child.Child) bool {
		if filter == nil {
			return true
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Search)) {
			return false
		}
		if filter.ClassName != "" && !strings.EqualFold(c.ClassName, filter.ClassName) {
			return false
		}
		if filter.TeacherID != "" && c.TeacherID.String != filter.TeacherID {
			return false
		}
		if filter.ParentID != "" && !c.HasParent(filter.ParentID) {
			return false
		}
		if filter.IsActive != nil && c.IsActive != *filter.IsActive {
			return false
		}
		if filter.IDs != nil && !in(c.ID, filter.IDs) {
			return false
		}
		return true
	})
	return sorted(children, func(a, b child.Child) bool { return a.Name < b.Name }), nil
}

func (repo *childRepository) UpdateChild(_ context.Context, c child.Child) (child.Child, error) {
	if !repo.db.update(c.ID, c) {
		return child.Child{}, child.ErrNotFound
	}
	return c, nil
}

func (repo *childRepository) DeleteChild(_ context.Context, id string) error {
	if repo.db.delete(id) == 0 {
		return child.ErrNotFound
	}
	return nil
}
