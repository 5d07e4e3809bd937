package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core/menu"
)

const menuTable = "meal_menu"

var menuColumns = columns{"id", "date", "meal", "items", "allergens", "notes", "created_by", "created_at", "updated_at"}

type menuRepository struct {
	db *sqlx.DB
}

var _ menu.Repository = (*menuRepository)(nil) // interface compliance check

func NewMenuRepository(db *sqlx.DB) menu.Repository {
	return &menuRepository{db: db}
}

func (repo *menuRepository) UpsertMenu(ctx context.Context, m menu.Menu) (menu.Menu, error) {
	m.ID = newID()
	q := menuColumns.insert(menuTable) + `
		ON CONFLICT (date, meal) DO UPDATE SET
			items = EXCLUDED.items, allergens = EXCLUDED.allergens, notes = EXCLUDED.notes,
			created_by = EXCLUDED.created_by, updated_at = EXCLUDED.updated_at
		RETURNING ` + menuColumns.String()

	stmt, err := repo.db.PrepareNamedContext(ctx, q)
	if err != nil {
		return menu.Menu{}, errors.Wrap(err, "preparing menu upsert")
	}
	defer func() { _ = stmt.Close() }()

	var saved menu.Menu
	if err = stmt.GetContext(ctx, &saved, m); err != nil {
		return menu.Menu{}, errors.Wrap(err, "upserting menu")
	}
	return saved, nil
}

func (repo *menuRepository) GetMenu(ctx context.Context, id string) (menu.Menu, error) {
	return getByID[menu.Menu](ctx, repo.db, menuColumns, menuTable, id, menu.ErrNotFound)
}

func (repo *menuRepository) QueryMenus(ctx context.Context, filter *menu.QueryFilter) ([]menu.Menu, error) {
	w := new(where)
	if !filter.From.IsZero() {
		w.and("date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		w.and("date <= ?", filter.To)
	}
	if filter.Meal != "" {
		w.and("meal = ?", filter.Meal)
	}
	suffix := "ORDER BY date, CASE meal WHEN 'breakfast' THEN 0 WHEN 'lunch' THEN 1 ELSE 2 END"
	return selectWhere[menu.Menu](ctx, repo.db, w, menuColumns.selectFrom(menuTable), suffix, "querying menus")
}

func (repo *menuRepository) DeleteMenu(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, menuTable, id, menu.ErrNotFound)
}
