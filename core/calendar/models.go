package calendar

import (
	"time"

	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
)

type Event struct {
	ID          string         `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Location    string         `db:"location" json:"location"`
	StartsAt    time.Time      `db:"starts_at" json:"starts_at"`
	EndsAt      time.Time      `db:"ends_at" json:"ends_at"`
	AllDay      bool           `db:"all_day" json:"all_day"`
	Audience    pq.StringArray `db:"audience" json:"audience"`
	CreatedBy   null.String    `db:"created_by" json:"created_by"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// EventData is the calendar event form.
type EventData struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at"`
	AllDay      bool      `json:"all_day"`
	Audience    []string  `json:"audience" validate:"omitempty,allroles"`
}

func (ed *EventData) clean() {
	ed.Title = core.CleanString(ed.Title)
	ed.Description = core.CleanString(ed.Description)
	ed.Location = core.CleanString(ed.Location)
	ed.Audience = core.CleanStrings(ed.Audience, true /* lower */)
	ed.StartsAt = ed.StartsAt.UTC()
	ed.EndsAt = ed.EndsAt.UTC()

	if ed.AllDay {
		y, m, d := ed.StartsAt.Date()
		ed.StartsAt = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		ed.EndsAt = ed.StartsAt.Add(24*time.Hour - time.Second)
	} else if ed.EndsAt.IsZero() {
		ed.EndsAt = ed.StartsAt.Add(time.Hour)
	}
}

func (ed EventData) apply(e *Event) {
	e.Title = ed.Title
	e.Description = ed.Description
	e.Location = ed.Location
	e.StartsAt = ed.StartsAt
	e.EndsAt = ed.EndsAt
	e.AllDay = ed.AllDay
	e.Audience = ed.Audience
	if e.Audience == nil {
		e.Audience = []string{}
	}
}

// QueryFilter selects the events overlapping [From, To].
type QueryFilter struct {
	From time.Time `query:"-"`
	To   time.Time `query:"-"`

	// set by the service
	Audience []string `query:"-"`
}
