package menu

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/user"
)

var (
	ErrNotFound = core.NewNotFoundError("menu")
	ErrBadRange = core.NewFieldError("to", "range ends before it starts")
)

type (
	Repository interface {
		// UpsertMenu inserts m, or replaces the menu with the same date and meal (keeping its id).
		UpsertMenu(ctx context.Context, m Menu) (Menu, error)
		GetMenu(ctx context.Context, id string) (Menu, error)
		// QueryMenus returns menus by date, then meal.
		QueryMenus(ctx context.Context, filter *QueryFilter) ([]Menu, error)
		DeleteMenu(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		now      func() time.Time
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate, now: time.Now}
}

func canPlan(actor user.User) bool {
	return actor.IsAdmin() || actor.IsChef()
}

// Save creates or replaces the menu of a date and meal.
func (svc *Service) Save(ctx context.Context, actor user.User, md MenuData) (Menu, error) {
	if !canPlan(actor) {
		return Menu{}, core.ErrPermissionDenied
	}
	md.clean()
	if err := svc.validate.Struct(md); err != nil {
		return Menu{}, err
	}

	now := svc.now().UTC()
	return svc.repo.UpsertMenu(ctx, Menu{
		Date:      md.Date,
		Meal:      md.Meal,
		Items:     md.Items,
		Allergens: md.Allergens,
		Notes:     md.Notes,
		CreatedBy: null.StringFrom(actor.ID),
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Query lists menus; everyone can read them. The range defaults to the current week (Monday to Sunday).
func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Menu, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	if filter.From.IsZero() && filter.To.IsZero() {
		today := core.DateOf(svc.now().UTC())
		offset := (int(today.Weekday()) + 6) % 7
		filter.From = core.DateOf(today.AddDate(0, 0, -offset))
		filter.To = core.DateOf(filter.From.AddDate(0, 0, 6))
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, ErrBadRange
	}
	filter.Meal = core.CleanString(filter.Meal, true /* lower */)
	return svc.repo.QueryMenus(ctx, filter)
}

func (svc *Service) Delete(ctx context.Context, actor user.User, id string) error {
	if !canPlan(actor) {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteMenu(ctx, id)
}
