package child

import (
	"time"

	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
)

// Child is a pupil enrolled in the kindergarten.
type Child struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	BirthDate core.Date      `db:"birth_date" json:"birth_date"`
	ClassName string         `db:"class_name" json:"class_name"`
	TeacherID null.String    `db:"teacher_id" json:"teacher_id"`
	ParentIDs pq.StringArray `db:"parent_ids" json:"parent_ids"`
	Allergies string         `db:"allergies" json:"allergies"`
	Notes     string         `db:"notes" json:"notes"`
	IsActive  bool           `db:"is_active" json:"is_active"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

func (c Child) HasParent(id string) bool {
	return core.ContainsString(c.ParentIDs, id)
}

type NewChild struct {
	Name      string    `json:"name" validate:"required"`
	BirthDate core.Date `json:"birth_date"`
	ClassName string    `json:"class_name" validate:"required"`
	TeacherID string    `json:"teacher_id" validate:"omitempty,uuid"`
	ParentIDs []string  `json:"parent_ids" validate:"dive,uuid"`
	Allergies string    `json:"allergies"`
	Notes     string    `json:"notes"`
}

func (nc *NewChild) clean() {
	nc.Name = core.CleanString(nc.Name)
	nc.ClassName = core.CleanString(nc.ClassName)
	nc.TeacherID = core.CleanString(nc.TeacherID)
	nc.ParentIDs = core.CleanStrings(nc.ParentIDs)
	nc.Allergies = core.CleanString(nc.Allergies)
	nc.Notes = core.CleanString(nc.Notes)
}

// UpdateChild holds the fields to change; nil fields are left untouched.
type UpdateChild struct {
	Name      *string    `json:"name"`
	BirthDate *core.Date `json:"birth_date"`
	ClassName *string    `json:"class_name"`
	TeacherID *string    `json:"teacher_id" validate:"omitempty,len=0|uuid"`
	ParentIDs []string   `json:"parent_ids" validate:"omitempty,dive,uuid"`
	Allergies *string    `json:"allergies"`
	Notes     *string    `json:"notes"`
	IsActive  *bool      `json:"is_active"`
}

func (uc UpdateChild) apply(c *Child) {
	if uc.Name != nil {
		if name := core.CleanString(*uc.Name); name != "" {
			c.Name = name
		}
	}
	if uc.BirthDate != nil {
		c.BirthDate = *uc.BirthDate
	}
	if uc.ClassName != nil {
		if class := core.CleanString(*uc.ClassName); class != "" {
			c.ClassName = class
		}
	}
	if uc.TeacherID != nil {
		tid := core.CleanString(*uc.TeacherID)
		c.TeacherID = null.NewString(tid, tid != "")
	}
	if uc.ParentIDs != nil {
		c.ParentIDs = core.CleanStrings(uc.ParentIDs)
	}
	if uc.Allergies != nil {
		c.Allergies = core.CleanString(*uc.Allergies)
	}
	if uc.Notes != nil {
		c.Notes = core.CleanString(*uc.Notes)
	}
	if uc.IsActive != nil {
		c.IsActive = *uc.IsActive
	}
}

type QueryFilter struct {
	Search    string   `query:"search"`
	ClassName string   `query:"class_name"`
	TeacherID string   `query:"teacher_id"`
	ParentID  string   `query:"parent_id"`
	IsActive  *bool    `query:"is_active"`
	IDs       []string `query:"id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.ClassName = core.CleanString(qf.ClassName)
	qf.TeacherID = core.CleanString(qf.TeacherID)
	qf.ParentID = core.CleanString(qf.ParentID)
	qf.IDs = core.CleanStrings(qf.IDs)
}
