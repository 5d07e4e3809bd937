package child

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/user"
)

var ErrNotFound = core.NewNotFoundError("child")

type (
	Repository interface {
		CreateChild(ctx context.Context, c Child) (Child, error)
		GetChild(ctx context.Context, id string) (Child, error)
		QueryChildren(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Child, error)
		UpdateChild(ctx context.Context, c Child) (Child, error)
		DeleteChild(ctx context.Context, id string) error
	}

	// Guard tells other feature services which children an actor may see.
	Guard interface {
		// VisibleIDs returns the IDs of the children `actor` may see, or all=true when unrestricted.
		VisibleIDs(ctx context.Context, actor user.User) (ids []string, all bool, err error)
		// Authorize returns the child when `actor` may see it, core.ErrPermissionDenied otherwise.
		Authorize(ctx context.Context, actor user.User, childID string) (Child, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		now      func() time.Time
	}
)

var _ Guard = (*Service)(nil) // interface compliance check

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate, now: time.Now}
}

func (svc *Service) Create(ctx context.Context, actor user.User, nc NewChild) (Child, error) {
	if !actor.IsAdmin() {
		return Child{}, core.ErrPermissionDenied
	}
	nc.clean()
	if err := svc.validate.Struct(nc); err != nil {
		return Child{}, err
	}

	now := svc.now().UTC()
	c := Child{
		Name:      nc.Name,
		BirthDate: nc.BirthDate,
		ClassName: nc.ClassName,
		TeacherID: null.NewString(nc.TeacherID, nc.TeacherID != ""),
		ParentIDs: nc.ParentIDs,
		Allergies: nc.Allergies,
		Notes:     nc.Notes,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.ParentIDs == nil {
		c.ParentIDs = []string{}
	}
	return svc.repo.CreateChild(ctx, c)
}

func (svc *Service) Get(ctx context.Context, actor user.User, id string) (Child, error) {
	return svc.Authorize(ctx, actor, id)
}

// Query lists children; parents only ever get their own.
func (svc *Service) Query(ctx context.Context, actor user.User, filter *QueryFilter, ordering []core.DBOrdering) ([]Child, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	switch {
	case actor.IsEmployee():
	case actor.IsParent():
		filter.ParentID = actor.ID
	default:
		return []Child{}, nil
	}
	return svc.repo.QueryChildren(ctx, filter, ordering)
}

// Update is allowed to admins and to the child's class teacher.
func (svc *Service) Update(ctx context.Context, actor user.User, id string, uc UpdateChild) (Child, error) {
	c, err := svc.repo.GetChild(ctx, id)
	if err != nil {
		return Child{}, err
	}
	if !(actor.IsAdmin() || (actor.IsTeacher() && c.TeacherID.String == actor.ID)) {
		return Child{}, core.ErrPermissionDenied
	}
	// only admins re-assign children
	if !actor.IsAdmin() && (uc.TeacherID != nil || uc.ParentIDs != nil || uc.IsActive != nil) {
		return Child{}, core.ErrPermissionDenied
	}
	if err = svc.validate.Struct(uc); err != nil {
		return Child{}, err
	}

	uc.apply(&c)
	c.UpdatedAt = svc.now().UTC()
	return svc.repo.UpdateChild(ctx, c)
}

func (svc *Service) Delete(ctx context.Context, actor user.User, id string) error {
	if !actor.IsAdmin() {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteChild(ctx, id)
}

func (svc *Service) VisibleIDs(ctx context.Context, actor user.User) ([]string, bool, error) {
	if actor.IsEmployee() {
		return nil, true, nil
	}
	if !actor.IsParent() {
		return []string{}, false, nil
	}

	children, err := svc.repo.QueryChildren(ctx, &QueryFilter{ParentID: actor.ID}, nil)
	if err != nil {
		return nil, false, errors.Wrap(err, "querying parent's children")
	}
	ids := make([]string, 0, len(children))
	for _, c := range children {
		ids = append(ids, c.ID)
	}
	return ids, false, nil
}

func (svc *Service) Authorize(ctx context.Context, actor user.User, childID string) (Child, error) {
	c, err := svc.repo.GetChild(ctx, childID)
	if err != nil {
		return Child{}, err
	}
	if actor.IsEmployee() || (actor.IsParent() && c.HasParent(actor.ID)) {
		return c, nil
	}
	return Child{}, core.ErrPermissionDenied
}
