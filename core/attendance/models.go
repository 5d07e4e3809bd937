package attendance

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
)

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusExcused = "excused"
)

var Statuses = []string{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

type Attendance struct {
	ID            string      `db:"id" json:"id"`
	ChildID       string      `db:"child_id" json:"child_id"`
	Date          core.Date   `db:"date" json:"date"`
	Status        string      `db:"status" json:"status"`
	ArrivalTime   null.Time   `db:"arrival_time" json:"arrival_time"`
	DepartureTime null.Time   `db:"departure_time" json:"departure_time"`
	Note          string      `db:"note" json:"note"`
	MarkedBy      null.String `db:"marked_by" json:"marked_by"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

// Mark records a child's attendance for a day. Date defaults to today.
type Mark struct {
	ChildID string    `json:"child_id" validate:"required,uuid"`
	Date    core.Date `json:"date"`
	Status  string    `json:"status" validate:"required,oneof=present absent late excused"`
	Note    string    `json:"note"`
}

func (m *Mark) clean() {
	m.ChildID = core.CleanString(m.ChildID)
	m.Status = core.CleanString(m.Status, true /* lower */)
	m.Note = core.CleanString(m.Note)
}

type QueryFilter struct {
	ChildIDs []string  `query:"child_id"`
	Date     core.Date `query:"date"`
	From     core.Date `query:"from"`
	To       core.Date `query:"to"`
	Status   string    `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.ChildIDs = core.CleanStrings(qf.ChildIDs)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

// Summary counts a child's attendance rows per status over a period.
type Summary struct {
	ChildID string         `json:"child_id"`
	From    core.Date      `json:"from"`
	To      core.Date      `json:"to"`
	Total   int            `json:"total"`
	Counts  map[string]int `json:"counts"`
}
