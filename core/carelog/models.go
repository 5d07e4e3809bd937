package carelog

import (
	"time"

	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
)

const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealSnack     = "snack"

	SleepGood     = "good"
	SleepRestless = "restless"
	SleepNone     = "none"
)

type (
	MealLog struct {
		ID         string      `db:"id" json:"id"`
		ChildID    string      `db:"child_id" json:"child_id"`
		Date       core.Date   `db:"date" json:"date"`
		Meal       string      `db:"meal" json:"meal"`
		Amount     string      `db:"amount" json:"amount"`
		Note       string      `db:"note" json:"note"`
		RecordedBy null.String `db:"recorded_by" json:"recorded_by"`
		CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	}

	SleepLog struct {
		ID         string      `db:"id" json:"id"`
		ChildID    string      `db:"child_id" json:"child_id"`
		Date       core.Date   `db:"date" json:"date"`
		StartedAt  time.Time   `db:"started_at" json:"started_at"`
		EndedAt    null.Time   `db:"ended_at" json:"ended_at"`
		Quality    string      `db:"quality" json:"quality"`
		Note       string      `db:"note" json:"note"`
		RecordedBy null.String `db:"recorded_by" json:"recorded_by"`
		CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	}

	// DailyReport is the Montessori daily report of a child.
	DailyReport struct {
		ID            string         `db:"id" json:"id"`
		ChildID       string         `db:"child_id" json:"child_id"`
		Date          core.Date      `db:"date" json:"date"`
		Mood          string         `db:"mood" json:"mood"`
		PracticalLife string         `db:"practical_life" json:"practical_life"`
		Sensorial     string         `db:"sensorial" json:"sensorial"`
		Language      string         `db:"language" json:"language"`
		Mathematics   string         `db:"mathematics" json:"mathematics"`
		Culture       string         `db:"culture" json:"culture"`
		Notes         string         `db:"notes" json:"notes"`
		MediaURLs     pq.StringArray `db:"media_urls" json:"media_urls"`
		TeacherID     null.String    `db:"teacher_id" json:"teacher_id"`
		CreatedAt     time.Time      `db:"created_at" json:"created_at"`
		UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
	}
)

type (
	NewMealLog struct {
		ChildID string    `json:"child_id" validate:"required,uuid"`
		Date    core.Date `json:"date"`
		Meal    string    `json:"meal" validate:"required,oneof=breakfast lunch snack"`
		Amount  string    `json:"amount" validate:"required,oneof=all most half little none"`
		Note    string    `json:"note"`
	}

	NewSleepLog struct {
		ChildID   string     `json:"child_id" validate:"required,uuid"`
		Date      core.Date  `json:"date"`
		StartedAt time.Time  `json:"started_at" validate:"required"`
		EndedAt   *time.Time `json:"ended_at"`
		Quality   string     `json:"quality" validate:"omitempty,oneof=good restless none"`
		Note      string     `json:"note"`
	}

	// EndSleep closes an open sleep log.
	EndSleep struct {
		EndedAt time.Time `json:"ended_at"`
		Quality string    `json:"quality" validate:"omitempty,oneof=good restless none"`
		Note    *string   `json:"note"`
	}

	// ReportFields are the free-text sections of a DailyReport.
	ReportFields struct {
		Mood          string `json:"mood"`
		PracticalLife string `json:"practical_life"`
		Sensorial     string `json:"sensorial"`
		Language      string `json:"language"`
		Mathematics   string `json:"mathematics"`
		Culture       string `json:"culture"`
		Notes         string `json:"notes"`
	}

	NewDailyReport struct {
		ChildID string    `json:"child_id" validate:"required,uuid"`
		Date    core.Date `json:"date"`
		ReportFields
	}

	QueryFilter struct {
		ChildIDs []string  `query:"child_id"`
		Date     core.Date `query:"date"`
		From     core.Date `query:"from"`
		To       core.Date `query:"to"`
	}
)

func (f *ReportFields) clean() {
	f.Mood = core.CleanString(f.Mood)
	f.PracticalLife = core.CleanString(f.PracticalLife)
	f.Sensorial = core.CleanString(f.Sensorial)
	f.Language = core.CleanString(f.Language)
	f.Mathematics = core.CleanString(f.Mathematics)
	f.Culture = core.CleanString(f.Culture)
	f.Notes = core.CleanString(f.Notes)
}

func (f ReportFields) apply(r *DailyReport) {
	r.Mood = f.Mood
	r.PracticalLife = f.PracticalLife
	r.Sensorial = f.Sensorial
	r.Language = f.Language
	r.Mathematics = f.Mathematics
	r.Culture = f.Culture
	r.Notes = f.Notes
}

func (qf *QueryFilter) Clean() {
	qf.ChildIDs = core.CleanStrings(qf.ChildIDs)
}
