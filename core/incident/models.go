package incident

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
)

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"

	StatusReported    = "reported"
	StatusUnderReview = "under_review"
	StatusEvaluated   = "evaluated"
	StatusClosed      = "closed"
)

// Incident is a behavior incident reported about a child.
type Incident struct {
	ID             string      `db:"id" json:"id"`
	ChildID        string      `db:"child_id" json:"child_id"`
	ReporterID     null.String `db:"reporter_id" json:"reporter_id"`
	OccurredOn     core.Date   `db:"occurred_on" json:"occurred_on"`
	Category       string      `db:"category" json:"category"`
	Severity       string      `db:"severity" json:"severity"`
	Description    string      `db:"description" json:"description"`
	ActionTaken    string      `db:"action_taken" json:"action_taken"`
	Status         string      `db:"status" json:"status"`
	CounselorID    null.String `db:"counselor_id" json:"counselor_id"`
	Evaluation     string      `db:"evaluation" json:"evaluation"`
	EvaluatedAt    null.Time   `db:"evaluated_at" json:"evaluated_at"`
	ParentNotified bool        `db:"parent_notified" json:"parent_notified"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`
}

type NewIncident struct {
	ChildID     string    `json:"child_id" validate:"required,uuid"`
	OccurredOn  core.Date `json:"occurred_on"`
	Category    string    `json:"category" validate:"required"`
	Severity    string    `json:"severity" validate:"required,oneof=low medium high"`
	Description string    `json:"description" validate:"required"`
	ActionTaken string    `json:"action_taken"`
}

func (ni *NewIncident) clean() {
	ni.ChildID = core.CleanString(ni.ChildID)
	ni.Category = core.CleanString(ni.Category, true /* lower */)
	ni.Severity = core.CleanString(ni.Severity, true /* lower */)
	ni.Description = core.CleanString(ni.Description)
	ni.ActionTaken = core.CleanString(ni.ActionTaken)
}

// UpdateIncident edits the report itself; only allowed before evaluation.
type UpdateIncident struct {
	OccurredOn     *core.Date `json:"occurred_on"`
	Category       *string    `json:"category" validate:"omitempty,min=1"`
	Severity       *string    `json:"severity" validate:"omitempty,oneof=low medium high"`
	Description    *string    `json:"description" validate:"omitempty,min=1"`
	ActionTaken    *string    `json:"action_taken"`
	ParentNotified *bool      `json:"parent_notified"`
}

func (ui *UpdateIncident) clean() {
	clean := func(s *string, lower bool) *string {
		if s == nil {
			return nil
		}
		c := core.CleanString(*s, lower)
		return &c
	}
	ui.Category = clean(ui.Category, true)
	ui.Severity = clean(ui.Severity, true)
	ui.Description = clean(ui.Description, false)
	ui.ActionTaken = clean(ui.ActionTaken, false)
}

func (ui UpdateIncident) apply(i *Incident) {
	if ui.OccurredOn != nil && !ui.OccurredOn.IsZero() {
		i.OccurredOn = *ui.OccurredOn
	}
	if ui.Category != nil {
		i.Category = *ui.Category
	}
	if ui.Severity != nil {
		i.Severity = *ui.Severity
	}
	if ui.Description != nil {
		i.Description = *ui.Description
	}
	if ui.ActionTaken != nil {
		i.ActionTaken = *ui.ActionTaken
	}
	if ui.ParentNotified != nil {
		i.ParentNotified = *ui.ParentNotified
	}
}

// Transition moves an incident through review. Evaluation is required to reach evaluated.
type Transition struct {
	Status     string `json:"status" validate:"required,oneof=under_review evaluated closed"`
	Evaluation string `json:"evaluation" validate:"required_if=Status evaluated"`
}

type QueryFilter struct {
	ChildIDs []string  `query:"child_id"`
	Status   string    `query:"status"`
	Severity string    `query:"severity"`
	From     core.Date `query:"from"`
	To       core.Date `query:"to"`
}

func (qf *QueryFilter) clean() {
	qf.ChildIDs = core.CleanStrings(qf.ChildIDs)
	if len(qf.ChildIDs) == 0 {
		qf.ChildIDs = nil
	}
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.Severity = core.CleanString(qf.Severity, true /* lower */)
}
