package branchreport

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
)

// Report is a branch-course teacher's (music, English, sports...) assessment of a child over a period.
type Report struct {
	ID         string      `db:"id" json:"id"`
	ChildID    string      `db:"child_id" json:"child_id"`
	TeacherID  null.String `db:"teacher_id" json:"teacher_id"`
	Course     string      `db:"course" json:"course"`
	Period     string      `db:"period" json:"period"`
	Assessment string      `db:"assessment" json:"assessment"`
	Notes      string      `db:"notes" json:"notes"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}

type ReportData struct {
	ChildID    string `json:"child_id" validate:"required,uuid"`
	Course     string `json:"course" validate:"required"`
	Period     string `json:"period" validate:"required"`
	Assessment string `json:"assessment" validate:"required"`
	Notes      string `json:"notes"`
}

func (rd *ReportData) clean() {
	rd.ChildID = core.CleanString(rd.ChildID)
	rd.Course = core.CleanString(rd.Course)
	rd.Period = core.CleanString(rd.Period)
	rd.Assessment = core.CleanString(rd.Assessment)
	rd.Notes = core.CleanString(rd.Notes)
}

func (rd ReportData) apply(r *Report) {
	r.ChildID = rd.ChildID
	r.Course = rd.Course
	r.Period = rd.Period
	r.Assessment = rd.Assessment
	r.Notes = rd.Notes
}

type QueryFilter struct {
	ChildIDs  []string `query:"child_id"`
	Course    string   `query:"course"`
	Period    string   `query:"period"`
	TeacherID string   `query:"teacher_id"`
}
