package incident

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/child"
	"github.com/trezcool/yuva/core/user"
)

var (
	ErrNotFound          = core.NewNotFoundError("incident")
	ErrInvalidTransition = core.NewFieldError("status", "invalid status transition")
	ErrAlreadyEvaluated  = core.NewFieldError("status", "incident has already been evaluated")
)

var transitions = map[string][]string{
	StatusReported:    {StatusUnderReview, StatusEvaluated},
	StatusUnderReview: {StatusEvaluated},
	StatusEvaluated:   {StatusClosed},
}

type (
	Repository interface {
		CreateIncident(ctx context.Context, i Incident) (Incident, error)
		GetIncident(ctx context.Context, id string) (Incident, error)
		// QueryIncidents returns the most recent first. A nil Filter.ChildIDs means every child.
		QueryIncidents(ctx context.Context, filter *QueryFilter) ([]Incident, error)
		UpdateIncident(ctx context.Context, i Incident) (Incident, error)
		DeleteIncident(ctx context.Context, id string) error
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

func canReport(actor user.User) bool {
	return actor.IsAdmin() || actor.IsEducator()
}

func (svc *Service) Report(ctx context.Context, actor user.User, ni NewIncident) (Incident, error) {
	if !canReport(actor) {
		return Incident{}, core.ErrPermissionDenied
	}
	ni.clean()
	if err := svc.validate.Struct(ni); err != nil {
		return Incident{}, err
	}
	if _, err := svc.children.Authorize(ctx, actor, ni.ChildID); err != nil {
		return Incident{}, err
	}

	now := svc.now().UTC()
	i := Incident{
		ChildID:     ni.ChildID,
		ReporterID:  null.StringFrom(actor.ID),
		OccurredOn:  ni.OccurredOn,
		Category:    ni.Category,
		Severity:    ni.Severity,
		Description: ni.Description,
		ActionTaken: ni.ActionTaken,
		Status:      StatusReported,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if i.OccurredOn.IsZero() {
		i.OccurredOn = core.DateOf(now)
	}
	return svc.repo.CreateIncident(ctx, i)
}

// Get returns an incident; parents only see their own children's.
func (svc *Service) Get(ctx context.Context, actor user.User, id string) (Incident, error) {
	i, err := svc.repo.GetIncident(ctx, id)
	if err != nil {
		return Incident{}, err
	}
	if !(canReport(actor) || actor.IsParent()) {
		return Incident{}, core.ErrPermissionDenied
	}
	if _, err = svc.children.Authorize(ctx, actor, i.ChildID); err != nil {
		if core.IsPermissionDenied(err) {
			return Incident{}, ErrNotFound
		}
		return Incident{}, err
	}
	return i, nil
}

func (svc *Service) Query(ctx context.Context, actor user.User, filter *QueryFilter) ([]Incident, error) {
	if !(canReport(actor) || actor.IsParent()) {
		return nil, core.ErrPermissionDenied
	}
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.clean()

	ids, all, err := svc.children.VisibleIDs(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !all {
		filter.ChildIDs = core.RestrictIDs(filter.ChildIDs, ids)
	}
	return svc.repo.QueryIncidents(ctx, filter)
}

// Update edits a report before its evaluation; the reporter, counselors and admins may.
func (svc *Service) Update(ctx context.Context, actor user.User, id string, ui UpdateIncident) (Incident, error) {
	ui.clean()
	if err := svc.validate.Struct(ui); err != nil {
		return Incident{}, err
	}
	i, err := svc.Get(ctx, actor, id)
	if err != nil {
		return Incident{}, err
	}
	if !(actor.IsAdmin() || actor.IsCounselor() || i.ReporterID.String == actor.ID) {
		return Incident{}, core.ErrPermissionDenied
	}
	if i.Status == StatusEvaluated || i.Status == StatusClosed {
		return Incident{}, ErrAlreadyEvaluated
	}

	ui.apply(&i)
	i.UpdatedAt = svc.now().UTC()
	return svc.repo.UpdateIncident(ctx, i)
}

// Transition moves an incident through review; counselors and admins only.
func (svc *Service) Transition(ctx context.Context, actor user.User, id string, tr Transition) (Incident, error) {
	if !(actor.IsAdmin() || actor.IsCounselor()) {
		return Incident{}, core.ErrPermissionDenied
	}
	tr.Status = core.CleanString(tr.Status, true /* lower */)
	tr.Evaluation = core.CleanString(tr.Evaluation)
	if err := svc.validate.Struct(tr); err != nil {
		return Incident{}, err
	}
	i, err := svc.repo.GetIncident(ctx, id)
	if err != nil {
		return Incident{}, err
	}
	if !core.ContainsString(transitions[i.Status], tr.Status) {
		return Incident{}, ErrInvalidTransition
	}

	now := svc.now().UTC()
	i.Status = tr.Status
	switch tr.Status {
	case StatusUnderReview:
		i.CounselorID = null.StringFrom(actor.ID)
	case StatusEvaluated:
		i.CounselorID = null.StringFrom(actor.ID)
		i.Evaluation = tr.Evaluation
		i.EvaluatedAt = null.TimeFrom(now)
	}
	i.UpdatedAt = now
	return svc.repo.UpdateIncident(ctx, i)
}

func (svc *Service) Delete(ctx context.Context, actor user.User, id string) error {
	if !actor.IsAdmin() {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteIncident(ctx, id)
}
