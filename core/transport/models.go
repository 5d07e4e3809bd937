package transport

import (
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
)

const (
	DirectionMorning = "morning"
	DirectionEvening = "evening"
)

// normalizePlate upper-cases a licence plate and collapses its whitespace.
func normalizePlate(p string) string {
	return strings.ToUpper(strings.Join(strings.Fields(p), " "))
}

// Vehicle is a school service vehicle.
type Vehicle struct {
	ID        string      `db:"id" json:"id"`
	Plate     string      `db:"plate" json:"plate"`
	Name      string      `db:"name" json:"name"`
	DriverID  null.String `db:"driver_id" json:"driver_id"`
	Capacity  int         `db:"capacity" json:"capacity"`
	IsActive  bool        `db:"is_active" json:"is_active"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// Route is the ordered list of stops a vehicle serves and the children it carries.
type Route struct {
	ID        string         `db:"id" json:"id"`
	VehicleID string         `db:"vehicle_id" json:"vehicle_id"`
	Name      string         `db:"name" json:"name"`
	Direction string         `db:"direction" json:"direction"`
	Stops     pq.StringArray `db:"stops" json:"stops"`
	ChildIDs  pq.StringArray `db:"child_ids" json:"child_ids"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// Location is one reported position of a vehicle.
type Location struct {
	ID         string       `db:"id" json:"id"`
	VehicleID  string       `db:"vehicle_id" json:"vehicle_id"`
	Latitude   float64      `db:"latitude" json:"latitude"`
	Longitude  float64      `db:"longitude" json:"longitude"`
	Speed      null.Float64 `db:"speed" json:"speed"`
	Heading    null.Float64 `db:"heading" json:"heading"`
	Accuracy   null.Float64 `db:"accuracy" json:"accuracy"`
	RecordedAt time.Time    `db:"recorded_at" json:"recorded_at"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
}

// LatestLocation is the most recent position of a vehicle and how old it is.
type LatestLocation struct {
	Location
	TimeSince string `json:"time_since"`
	Stale     bool   `json:"stale"`
}

type NewVehicle struct {
	Plate    string `json:"plate" validate:"required"`
	Name     string `json:"name"`
	DriverID string `json:"driver_id" validate:"omitempty,uuid"`
	Capacity int    `json:"capacity" validate:"min=0,max=100"`
}

func (nv *NewVehicle) clean() {
	nv.Plate = normalizePlate(nv.Plate)
	nv.Name = core.CleanString(nv.Name)
	nv.DriverID = core.CleanString(nv.DriverID)
}

type UpdateVehicle struct {
	Plate    *string `json:"plate" validate:"omitempty,min=1"`
	Name     *string `json:"name"`
	DriverID *string `json:"driver_id" validate:"omitempty,len=0|uuid"`
	Capacity *int    `json:"capacity" validate:"omitempty,min=0,max=100"`
	IsActive *bool   `json:"is_active"`
}

func (uv *UpdateVehicle) clean() {
	if uv.Plate != nil {
		p := normalizePlate(*uv.Plate)
		uv.Plate = &p
	}
	if uv.Name != nil {
		n := core.CleanString(*uv.Name)
		uv.Name = &n
	}
	if uv.DriverID != nil {
		d := core.CleanString(*uv.DriverID)
		uv.DriverID = &d
	}
}

type NewRoute struct {
	VehicleID string   `json:"vehicle_id" validate:"required,uuid"`
	Name      string   `json:"name" validate:"required"`
	Direction string   `json:"direction" validate:"required,oneof=morning evening"`
	Stops     []string `json:"stops"`
	ChildIDs  []string `json:"child_ids" validate:"dive,uuid"`
}

func (nr *NewRoute) clean() {
	nr.VehicleID = core.CleanString(nr.VehicleID)
	nr.Name = core.CleanString(nr.Name)
	nr.Direction = core.CleanString(nr.Direction, true /* lower */)
	nr.Stops = core.CleanStrings(nr.Stops)
	nr.ChildIDs = core.CleanStrings(nr.ChildIDs)
}

type UpdateRoute struct {
	VehicleID *string  `json:"vehicle_id" validate:"omitempty,uuid"`
	Name      *string  `json:"name" validate:"omitempty,min=1"`
	Direction *string  `json:"direction" validate:"omitempty,oneof=morning evening"`
	Stops     []string `json:"stops"`
	ChildIDs  []string `json:"child_ids" validate:"omitempty,dive,uuid"`
}

func (ur *UpdateRoute) clean() {
	if ur.VehicleID != nil {
		v := core.CleanString(*ur.VehicleID)
		ur.VehicleID = &v
	}
	if ur.Name != nil {
		n := core.CleanString(*ur.Name)
		ur.Name = &n
	}
	if ur.Direction != nil {
		d := core.CleanString(*ur.Direction, true /* lower */)
		ur.Direction = &d
	}
	if ur.Stops != nil {
		ur.Stops = core.CleanStrings(ur.Stops)
	}
	if ur.ChildIDs != nil {
		ur.ChildIDs = core.CleanStrings(ur.ChildIDs)
	}
}

// LocationReport is a position sent by a driver's device.
type LocationReport struct {
	Latitude   *float64   `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude  *float64   `json:"longitude" validate:"required,min=-180,max=180"`
	Speed      *float64   `json:"speed" validate:"omitempty,min=0"`
	Heading    *float64   `json:"heading" validate:"omitempty,min=0,max=360"`
	Accuracy   *float64   `json:"accuracy" validate:"omitempty,min=0"`
	RecordedAt *time.Time `json:"recorded_at"`
}

type VehicleFilter struct {
	IDs        []string `query:"id"`
	DriverID   string   `query:"driver_id"`
	ActiveOnly bool     `query:"active"`
}

type RouteFilter struct {
	VehicleID string   `query:"vehicle_id"`
	Direction string   `query:"direction"`
	ChildIDs  []string `query:"child_id"` // routes carrying any of these children
}

type HistoryFilter struct {
	From  core.Date `query:"from"`
	To    core.Date `query:"to"`
	Limit int       `query:"limit"`
}
