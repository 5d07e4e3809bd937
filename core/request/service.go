package request

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
	ErrNotFound   = core.NewNotFoundError("request")
	ErrNotPending = core.NewFieldError("status", "request is already being handled")
	ErrNoChild    = core.NewFieldError("child_id", "toilet notifications are about a child")
)

type (
	Repository interface {
		CreateRequest(ctx context.Context, r Request) (Request, error)
		GetRequest(ctx context.Context, id string) (Request, error)
		// QueryRequests returns urgent requests first, then the most recent.
		// With both Kinds and RequesterID set, a request matching either is returned.
		QueryRequests(ctx context.Context, filter *QueryFilter) ([]Request, error)
		UpdateRequest(ctx context.Context, r Request) (Request, error)
		DeleteRequest(ctx context.Context, id string) error
	}

	Service struct {
		repo      Repository
		children  child.Guard
		publisher core.Publisher
		validate  *validator.Validate
		now       func() time.Time
	}
)

func NewService(repo Repository, children child.Guard, publisher core.Publisher, validate *validator.Validate) *Service {
	return &Service{repo: repo, children: children, publisher: publisher, validate: validate, now: time.Now}
}

func (svc *Service) publish(action, id string) {
	svc.publisher.Publish(core.Event{Topic: core.TopicRequests, Action: action, ID: id})
}

func (svc *Service) Create(ctx context.Context, actor user.User, nr NewRequest) (Request, error) {
	if !actor.IsEmployee() {
		return Request{}, core.ErrPermissionDenied
	}
	nr.clean()
	if err := svc.validate.Struct(nr); err != nil {
		return Request{}, err
	}
	if nr.Kind == KindToilet && nr.ChildID == "" {
		return Request{}, ErrNoChild
	}
	if nr.ChildID != "" {
		if _, err := svc.children.Authorize(ctx, actor, nr.ChildID); err != nil {
			return Request{}, err
		}
	}

	now := svc.now().UTC()
	r := Request{
		Kind:        nr.Kind,
		Title:       nr.Title,
		Description: nr.Description,
		Items:       nr.Items,
		Location:    nr.Location,
		ChildID:     null.NewString(nr.ChildID, nr.ChildID != ""),
		Urgency:     nr.Urgency,
		Status:      StatusPending,
		RequesterID: null.StringFrom(actor.ID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if r.Items == nil {
		r.Items = []string{}
	}

	r, err := svc.repo.CreateRequest(ctx, r)
	if err != nil {
		return Request{}, err
	}
	svc.publish(core.ActionInsert, r.ID)
	return r, nil
}

func (svc *Service) canSee(actor user.User, r Request) bool {
	return canHandle(actor, r.Kind) || r.RequesterID.String == actor.ID
}

func (svc *Service) Get(ctx context.Context, actor user.User, id string) (Request, error) {
	r, err := svc.repo.GetRequest(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if !svc.canSee(actor, r) {
		return Request{}, ErrNotFound
	}
	return r, nil
}

// Query lists the requests `actor` made or handles.
func (svc *Service) Query(ctx context.Context, actor user.User, filter *QueryFilter) ([]Request, error) {
	if !actor.IsEmployee() {
		return nil, core.ErrPermissionDenied
	}
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Kind = core.CleanString(filter.Kind, true /* lower */)
	filter.Status = core.CleanString(filter.Status, true /* lower */)
	filter.Kinds = handledKinds(actor)
	filter.RequesterID = ""
	if filter.Kinds != nil {
		filter.RequesterID = actor.ID
	}
	return svc.repo.QueryRequests(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, actor user.User, id string, ur UpdateRequest) (Request, error) {
	ur.clean()
	if err := svc.validate.Struct(ur); err != nil {
		return Request{}, err
	}
	r, err := svc.Get(ctx, actor, id)
	if err != nil {
		return Request{}, err
	}
	if r.RequesterID.String != actor.ID && !actor.IsAdmin() {
		return Request{}, core.ErrPermissionDenied
	}
	if r.Status != StatusPending {
		return Request{}, ErrNotPending
	}

	ur.apply(&r)
	r.UpdatedAt = svc.now().UTC()
	if r, err = svc.repo.UpdateRequest(ctx, r); err != nil {
		return Request{}, err
	}
	svc.publish(core.ActionUpdate, r.ID)
	return r, nil
}

// Transition is for the handlers of the request's kind: admins for materials, cleaning staff for
// cleaning requests, toilet attendants for toilet notifications.
func (svc *Service) Transition(ctx context.Context, actor user.User, id string, tr Transition) (Request, error) {
	tr.Status = core.CleanString(tr.Status, true /* lower */)
	if err := svc.validate.Struct(tr); err != nil {
		return Request{}, err
	}
	r, err := svc.Get(ctx, actor, id)
	if err != nil {
		return Request{}, err
	}
	if !canHandle(actor, r.Kind) {
		return Request{}, core.ErrPermissionDenied
	}
	if err = checkTransition(r.Kind, r.Status, tr.Status); err != nil {
		return Request{}, err
	}

	now := svc.now().UTC()
	r.Status = tr.Status
	r.AssigneeID = null.StringFrom(actor.ID)
	if note := core.CleanString(tr.Note); note != "" {
		r.ResponseNote = note
	}
	if tr.Status == StatusCompleted || tr.Status == StatusRejected {
		r.HandledAt = null.TimeFrom(now)
	}
	r.UpdatedAt = now
	if r, err = svc.repo.UpdateRequest(ctx, r); err != nil {
		return Request{}, err
	}
	svc.publish(core.ActionUpdate, r.ID)
	return r, nil
}

// Delete withdraws a request; requesters may only withdraw pending ones.
func (svc *Service) Delete(ctx context.Context, actor user.User, id string) error {
	r, err := svc.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if !(actor.IsAdmin() || (r.RequesterID.String == actor.ID && r.Status == StatusPending)) {
		return core.ErrPermissionDenied
	}
	if err = svc.repo.DeleteRequest(ctx, id); err != nil {
		return err
	}
	svc.publish(core.ActionDelete, id)
	return nil
}
