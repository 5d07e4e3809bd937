package branchreport

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/child"
	"github.com/trezcool/yuva/core/user"
)

var ErrNotFound = core.NewNotFoundError("branch course report")

type (
	Repository interface {
		CreateReport(ctx context.Context, r Report) (Report, error)
		GetReport(ctx context.Context, id string) (Report, error)
		// QueryReports returns the most recent first. A nil Filter.ChildIDs means every child.
		QueryReports(ctx context.Context, filter *QueryFilter) ([]Report, error)
		UpdateReport(ctx context.Context, r Report) (Report, error)
		DeleteReport(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		children child.Guard
		validate *validator.Validate
		now      func() time.Time
	}
)

func NewService(repo Repository, children child.Guard, validate *validator.Validate) *Service {
	return &Service{repo: repo, children: children, validate: validate, now: time.Now}
}

func (svc *Service) Create(ctx context.Context, actor user.User, rd ReportData) (Report, error) {
	if !(actor.IsAdmin() || actor.IsTeacher()) {
		return Report{}, core.ErrPermissionDenied
	}
	rd.clean()
	if err := svc.validate.Struct(rd); err != nil {
		return Report{}, err
	}
	if _, err := svc.children.Authorize(ctx, actor, rd.ChildID); err != nil {
		return Report{}, err
	}

	now := svc.now().UTC()
	r := Report{TeacherID: null.StringFrom(actor.ID), CreatedAt: now, UpdatedAt: now}
	rd.apply(&r)
	return svc.repo.CreateReport(ctx, r)
}

func (svc *Service) Get(ctx context.Context, actor user.User, id string) (Report, error) {
	r, err := svc.repo.GetReport(ctx, id)
	if err != nil {
		return Report{}, err
	}
	if _, err = svc.children.Authorize(ctx, actor, r.ChildID); err != nil {
		if core.IsPermissionDenied(err) {
			return Report{}, ErrNotFound
		}
		return Report{}, err
	}
	return r, nil
}

// Query lists reports; parents only get their own children's.
func (svc *Service) Query(ctx context.Context, actor user.User, filter *QueryFilter) ([]Report, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.ChildIDs = core.CleanStrings(filter.ChildIDs)
	if len(filter.ChildIDs) == 0 {
		filter.ChildIDs = nil
	}
	filter.Course = core.CleanString(filter.Course)
	filter.Period = core.CleanString(filter.Period)

	ids, all, err := svc.children.VisibleIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !all {
		filter.ChildIDs = core.RestrictIDs(filter.ChildIDs, ids)
	}
	return svc.repo.QueryReports(ctx, filter)
}

func (svc *Service) editable(ctx context.Context, actor user.User, id string) (Report, error) {
	r, err := svc.Get(ctx, actor, id)
	if err != nil {
		return Report{}, err
	}
	if !(actor.IsAdmin() || (actor.IsTeacher() && r.TeacherID.String == actor.ID)) {
		return Report{}, core.ErrPermissionDenied
	}
	return r, nil
}

func (svc *Service) Update(ctx context.Context, actor user.User, id string, rd ReportData) (Report, error) {
	r, err := svc.editable(ctx, actor, id)
	if err != nil {
		return Report{}, err
	}
	rd.clean()
	if err = svc.validate.Struct(rd); err != nil {
		return Report{}, err
	}
	if rd.ChildID != r.ChildID {
		if _, err = svc.children.Authorize(ctx, actor, rd.ChildID); err != nil {
			return Report{}, err
		}
	}
	rd.apply(&r)
	r.UpdatedAt = svc.now().UTC()
	return svc.repo.UpdateReport(ctx, r)
}

func (svc *Service) Delete(ctx context.Context, actor user.User, id string) error {
	if _, err := svc.editable(ctx, actor, id); err != nil {
		return err
	}
	return svc.repo.DeleteReport(ctx, id)
}
