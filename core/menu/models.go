package menu

import (
	"time"

	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
)

type Menu struct {
	ID        string         `db:"id" json:"id"`
	Date      core.Date      `db:"date" json:"date"`
	Meal      string         `db:"meal" json:"meal"`
	Items     pq.StringArray `db:"items" json:"items"`
	Allergens pq.StringArray `db:"allergens" json:"allergens"`
	Notes     string         `db:"notes" json:"notes"`
	CreatedBy null.String    `db:"created_by" json:"created_by"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// MenuData is the menu form; saving it replaces the menu of the same date and meal.
type MenuData struct {
	Date      core.Date `json:"date" validate:"required"`
	Meal      string    `json:"meal" validate:"required,oneof=breakfast lunch snack"`
	Items     []string  `json:"items" validate:"required,min=1"`
	Allergens []string  `json:"allergens"`
	Notes     string    `json:"notes"`
}

func (md *MenuData) clean() {
	md.Meal = core.CleanString(md.Meal, true /* lower */)
	md.Items = core.CleanStrings(md.Items)
	md.Allergens = core.CleanStrings(md.Allergens, true /* lower */)
	md.Notes = core.CleanString(md.Notes)
	if md.Allergens == nil {
		md.Allergens = []string{}
	}
}

type QueryFilter struct {
	From core.Date `query:"from"`
	To   core.Date `query:"to"`
	Meal string    `query:"meal"`
}
