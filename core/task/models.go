package task

import (
	"time"

	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
)

const (
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusBlocked    = "blocked"
)

type Task struct {
	ID          string         `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	AssignerID  null.String    `db:"assigner_id" json:"assigner_id"`
	AssigneeIDs pq.StringArray `db:"assignee_ids" json:"assignee_ids"`
	DueDate     core.Date      `db:"due_date" json:"due_date"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

func (t Task) AssignedTo(userID string) bool {
	return core.ContainsString(t.AssigneeIDs, userID)
}

// Response is an assignee's progress report on a task.
type Response struct {
	ID          string    `db:"id" json:"id"`
	TaskID      string    `db:"task_id" json:"task_id"`
	ResponderID string    `db:"responder_id" json:"responder_id"`
	Status      string    `db:"status" json:"status"`
	Body        string    `db:"body" json:"body"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type NewTask struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	AssigneeIDs []string  `json:"assignee_ids" validate:"required,min=1,dive,uuid"`
	DueDate     core.Date `json:"due_date"`
}

func (nt *NewTask) clean() {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	nt.AssigneeIDs = core.CleanStrings(nt.AssigneeIDs)
}

type UpdateTask struct {
	Title       *string    `json:"title" validate:"omitempty,min=1"`
	Description *string    `json:"description"`
	AssigneeIDs []string   `json:"assignee_ids" validate:"omitempty,min=1,dive,uuid"`
	DueDate     *core.Date `json:"due_date"`
}

func (ut *UpdateTask) clean() {
	if ut.Title != nil {
		t := core.CleanString(*ut.Title)
		ut.Title = &t
	}
	if ut.Description != nil {
		d := core.CleanString(*ut.Description)
		ut.Description = &d
	}
	if ut.AssigneeIDs != nil {
		ut.AssigneeIDs = core.CleanStrings(ut.AssigneeIDs)
	}
}

type NewResponse struct {
	Status string `json:"status" validate:"required,oneof=in_progress done blocked"`
	Body   string `json:"body"`
}

type QueryFilter struct {
	AssigneeID string    `query:"assignee_id"`
	From       core.Date `query:"from"` // due date range
	To         core.Date `query:"to"`

	// set by the service; a task matching either is returned
	VisibleTo string `query:"-"`
}
