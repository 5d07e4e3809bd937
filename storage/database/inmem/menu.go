package inmemdb

import (
	"context"

	"github.com/trezcool/yuva/core/menu"
)

var mealRank = map[string]int{"breakfast": 0, "lunch": 1, "snack": 2}

type menuRepository struct {
	db *table[menu.Menu]
}

var _ menu.Repository = (*menuRepository)(nil) // interface compliance check

func NewMenuRepository(db *DB) menu.Repository {
	return &menuRepository{db: db.menus}
}

func (repo *menuRepository) UpsertMenu(_ context.Context, m menu.Menu) (menu.Menu, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	existing := repo.db.filterLocked(func(row menu.Menu) bool {
		return row.Meal == m.Meal && row.Date.Equal(m.Date)
	})
	if len(existing) > 0 {
		m.ID = existing[0].ID
		m.CreatedAt = existing[0].CreatedAt
	} else {
		m.ID = newID()
	}
	repo.db.insertLocked(m.ID, m)
	return m, nil
}

func (repo *menuRepository) GetMenu(_ context.Context, id string) (menu.Menu, error) {
	if m, ok := repo.db.get(id); ok {
		return m, nil
	}
	return menu.Menu{}, menu.ErrNotFound
}

func (repo *menuRepository) QueryMenus(_ context.Context, filter *menu.QueryFilter) ([]menu.Menu, error) {
	rows := repo.db.filter(func(m menu.Menu) bool {
		if !filter.From.IsZero() && m.Date.Before(filter.From) {
			return false
		}
		if !filter.To.IsZero() && m.Date.After(filter.To) {
			return false
		}
		return filter.Meal == "" || m.Meal == filter.Meal
	})
	return sorted(rows, func(a, b menu.Menu) bool {
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return mealRank[a.Meal] < mealRank[b.Meal]
	}), nil
}

func (repo *menuRepository) DeleteMenu(_ context.Context, id string) error {
	if repo.db.delete(id) == 0 {
		return menu.ErrNotFound
	}
	return nil
}
