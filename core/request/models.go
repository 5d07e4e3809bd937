package request

import (
	"time"

	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
)

const (
	KindMaterial = "material"
	KindCleaning = "cleaning"
	KindToilet   = "toilet"

	UrgencyLow    = "low"
	UrgencyNormal = "normal"
	UrgencyHigh   = "high"

	StatusPending    = "pending"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Request is a material request, a cleaning request or a toilet notification.
type Request struct {
	ID           string         `db:"id" json:"id"`
	Kind         string         `db:"kind" json:"kind"`
	Title        string         `db:"title" json:"title"`
	Description  string         `db:"description" json:"description"`
	Items        pq.StringArray `db:"items" json:"items"`
	Location     string         `db:"location" json:"location"`
	ChildID      null.String    `db:"child_id" json:"child_id"`
	Urgency      string         `db:"urgency" json:"urgency"`
	Status       string         `db:"status" json:"status"`
	RequesterID  null.String    `db:"requester_id" json:"requester_id"`
	AssigneeID   null.String    `db:"assignee_id" json:"assignee_id"`
	ResponseNote string         `db:"response_note" json:"response_note"`
	HandledAt    null.Time      `db:"handled_at" json:"handled_at"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

type NewRequest struct {
	Kind        string   `json:"kind" validate:"required,oneof=material cleaning toilet"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Items       []string `json:"items"`
	Location    string   `json:"location"`
	ChildID     string   `json:"child_id" validate:"omitempty,uuid"`
	Urgency     string   `json:"urgency" validate:"omitempty,oneof=low normal high"`
}

func (nr *NewRequest) clean() {
	nr.Kind = core.CleanString(nr.Kind, true /* lower */)
	nr.Title = core.CleanString(nr.Title)
	nr.Description = core.CleanString(nr.Description)
	nr.Items = core.CleanStrings(nr.Items)
	nr.Location = core.CleanString(nr.Location)
	nr.ChildID = core.CleanString(nr.ChildID)
	nr.Urgency = core.CleanString(nr.Urgency, true /* lower */)
	if nr.Urgency == "" {
		nr.Urgency = UrgencyNormal
	}
}

// UpdateRequest lets the requester amend a request still pending.
type UpdateRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1"`
	Description *string  `json:"description"`
	Items       []string `json:"items"`
	Location    *string  `json:"location"`
	Urgency     *string  `json:"urgency" validate:"omitempty,oneof=low normal high"`
}

func (ur *UpdateRequest) clean() {
	clean := func(s *string, lower bool) *string {
		if s == nil {
			return nil
		}
		c := core.CleanString(*s, lower)
		return &c
	}
	ur.Title = clean(ur.Title, false)
	ur.Description = clean(ur.Description, false)
	ur.Location = clean(ur.Location, false)
	ur.Urgency = clean(ur.Urgency, true)
	if ur.Items != nil {
		ur.Items = core.CleanStrings(ur.Items)
	}
}

func (ur UpdateRequest) apply(r *Request) {
	if ur.Title != nil {
		r.Title = *ur.Title
	}
	if ur.Description != nil {
		r.Description = *ur.Description
	}
	if ur.Items != nil {
		r.Items = ur.Items
	}
	if ur.Location != nil {
		r.Location = *ur.Location
	}
	if ur.Urgency != nil {
		r.Urgency = *ur.Urgency
	}
}

type Transition struct {
	Status string `json:"status" validate:"required,oneof=approved rejected in_progress completed"`
	Note   string `json:"note"`
}

type QueryFilter struct {
	Kind   string `query:"kind"`
	Status string `query:"status"`

	// set by the service
	Kinds       []string `query:"-"` // nil means every kind
	RequesterID string   `query:"-"`
}
