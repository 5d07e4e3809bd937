package task

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/user"
)

var (
	ErrNotFound         = core.NewNotFoundError("task")
	ErrUnknownAssignee  = core.NewFieldError("assignee_ids", "tasks are assigned to active personnel")
	ErrNotAnAssignee    = core.NewPermissionError("only assignees can respond to this task")
	ErrBlockedNeedsBody = core.NewFieldError("body", "explain what blocks the task")
)

type (
	Repository interface {
		CreateTask(ctx context.Context, t Task) (Task, error)
		GetTask(ctx context.Context, id string) (Task, error)
		// QueryTasks returns tasks by due date (tasks without one last).
		QueryTasks(ctx context.Context, filter *QueryFilter) ([]Task, error)
		UpdateTask(ctx context.Context, t Task) (Task, error)
		DeleteTask(ctx context.Context, id string) error

		CreateResponse(ctx context.Context, r Response) (Response, error)
		QueryResponses(ctx context.Context, taskID string) ([]Response, error)
	}

	// Directory looks up profiles.
	Directory interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo     Repository
		users    Directory
		validate *validator.Validate
		now      func() time.Time
	}
)

func NewService(repo Repository, users Directory, validate *validator.Validate) *Service {
	return &Service{repo: repo, users: users, validate: validate, now: time.Now}
}

func canAssign(actor user.User) bool {
	return actor.IsAdmin() || actor.IsChef()
}

func (svc *Service) checkAssignees(ctx context.Context, ids []string) error {
	for _, id := range ids {
		usr, err := svc.users.GetByID(ctx, id)
		if err != nil {
			if core.IsNotFound(err) {
				return ErrUnknownAssignee
			}
			return errors.Wrap(err, "finding assignee")
		}
		if !usr.IsActive || !usr.IsEmployee() {
			return ErrUnknownAssignee
		}
	}
	return nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !core.ContainsString(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// Create assigns a task to personnel. Admins assign to anyone, chefs to the kitchen staff they lead.
func (svc *Service) Create(ctx context.Context, actor user.User, nt NewTask) (Task, error) {
	if !canAssign(actor) {
		return Task{}, core.ErrPermissionDenied
	}
	nt.clean()
	if err := svc.validate.Struct(nt); err != nil {
		return Task{}, err
	}
	nt.AssigneeIDs = dedupe(nt.AssigneeIDs)
	if err := svc.checkAssignees(ctx, nt.AssigneeIDs); err != nil {
		return Task{}, err
	}

	now := svc.now().UTC()
	return svc.repo.CreateTask(ctx, Task{
		Title:       nt.Title,
		Description: nt.Description,
		AssignerID:  null.StringFrom(actor.ID),
		AssigneeIDs: nt.AssigneeIDs,
		DueDate:     nt.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) canSee(actor user.User, t Task) bool {
	return actor.IsAdmin() || t.AssignerID.String == actor.ID || t.AssignedTo(actor.ID)
}

func (svc *Service) Get(ctx context.Context, actor user.User, id string) (Task, error) {
	t, err := svc.repo.GetTask(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if !svc.canSee(actor, t) {
		return Task{}, ErrNotFound
	}
	return t, nil
}

// Query lists the tasks the actor assigned or was assigned (every task for admins).
func (svc *Service) Query(ctx context.Context, actor user.User, filter *QueryFilter) ([]Task, error) {
	if !actor.IsEmployee() {
		return nil, core.ErrPermissionDenied
	}
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.AssigneeID = core.CleanString(filter.AssigneeID)
	filter.VisibleTo = ""
	if !actor.IsAdmin() {
		filter.VisibleTo = actor.ID
	}
	return svc.repo.QueryTasks(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, actor user.User, id string, ut UpdateTask) (Task, error) {
	ut.clean()
	if err := svc.validate.Struct(ut); err != nil {
		return Task{}, err
	}
	t, err := svc.Get(ctx, actor, id)
	if err != nil {
		return Task{}, err
	}
	if !(actor.IsAdmin() || t.AssignerID.String == actor.ID) {
		return Task{}, core.ErrPermissionDenied
	}

	if ut.AssigneeIDs != nil {
		ids := dedupe(ut.AssigneeIDs)
		if err = svc.checkAssignees(ctx, ids); err != nil {
			return Task{}, err
		}
		t.AssigneeIDs = ids
	}
	if ut.Title != nil {
		t.Title = *ut.Title
	}
	if ut.Description != nil {
		t.Description = *ut.Description
	}
	if ut.DueDate != nil {
		t.DueDate = *ut.DueDate
	}
	t.UpdatedAt = svc.now().UTC()
	return svc.repo.UpdateTask(ctx, t)
}

func (svc *Service) Delete(ctx context.Context, actor user.User, id string) error {
	t, err := svc.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if !(actor.IsAdmin() || t.AssignerID.String == actor.ID) {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteTask(ctx, id)
}

// Respond records an assignee's progress on a task.
func (svc *Service) Respond(ctx context.Context, actor user.User, taskID string, nr NewResponse) (Response, error) {
	nr.Status = core.CleanString(nr.Status, true /* lower */)
	nr.Body = core.CleanString(nr.Body)
	if err := svc.validate.Struct(nr); err != nil {
		return Response{}, err
	}
	t, err := svc.Get(ctx, actor, taskID)
	if err != nil {
		return Response{}, err
	}
	if !t.AssignedTo(actor.ID) {
		return Response{}, ErrNotAnAssignee
	}
	if nr.Status == StatusBlocked && nr.Body == "" {
		return Response{}, ErrBlockedNeedsBody
	}

	return svc.repo.CreateResponse(ctx, Response{
		TaskID:      t.ID,
		ResponderID: actor.ID,
		Status:      nr.Status,
		Body:        nr.Body,
		CreatedAt:   svc.now().UTC(),
	})
}

// Responses returns a task's responses, oldest first.
func (svc *Service) Responses(ctx context.Context, actor user.User, taskID string) ([]Response, error) {
	if _, err := svc.Get(ctx, actor, taskID); err != nil {
		return nil, err
	}
	return svc.repo.QueryResponses(ctx, taskID)
}
