package duty

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
)

const (
	ShiftMorning   = "morning"
	ShiftAfternoon = "afternoon"
	ShiftFullDay   = "full_day"
)

// Description is a reusable duty definition ("Garden watch", "Gate", ...).
type Description struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Details   string    `db:"details" json:"details"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type DescriptionData struct {
	Title   string `json:"title" validate:"required"`
	Details string `json:"details"`
}

func (dd *DescriptionData) clean() {
	dd.Title = core.CleanString(dd.Title)
	dd.Details = core.CleanString(dd.Details)
}

// Schedule puts a staff member on duty for a shift.
type Schedule struct {
	ID            string      `db:"id" json:"id"`
	StaffID       string      `db:"staff_id" json:"staff_id"`
	Date          core.Date   `db:"date" json:"date"`
	Shift         string      `db:"shift" json:"shift"`
	Location      string      `db:"location" json:"location"`
	DescriptionID null.String `db:"description_id" json:"description_id"`
	Note          string      `db:"note" json:"note"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

type ScheduleData struct {
	StaffID       string    `json:"staff_id" validate:"required,uuid"`
	Date          core.Date `json:"date" validate:"required"`
	Shift         string    `json:"shift" validate:"required,oneof=morning afternoon full_day"`
	Location      string    `json:"location"`
	DescriptionID string    `json:"description_id" validate:"omitempty,uuid"`
	Note          string    `json:"note"`
}

func (sd *ScheduleData) clean() {
	sd.StaffID = core.CleanString(sd.StaffID)
	sd.Shift = core.CleanString(sd.Shift, true /* lower */)
	sd.Location = core.CleanString(sd.Location)
	sd.DescriptionID = core.CleanString(sd.DescriptionID)
	sd.Note = core.CleanString(sd.Note)
}

func (sd ScheduleData) apply(s *Schedule) {
	s.StaffID = sd.StaffID
	s.Date = sd.Date
	s.Shift = sd.Shift
	s.Location = sd.Location
	s.DescriptionID = null.NewString(sd.DescriptionID, sd.DescriptionID != "")
	s.Note = sd.Note
}

type ScheduleFilter struct {
	StaffID string    `query:"staff_id"`
	From    core.Date `query:"from"`
	To      core.Date `query:"to"`
}
