package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/yuva/core/transport"
	"github.com/trezcool/yuva/core/user"
	"github.com/trezcool/yuva/tests"
)

func Test_transportApi_locations(t *testing.T) {
	e := setup(t)

	admin := e.createUser(t, "Admin", "admin", user.RoleAdmin)
	driver := e.createUser(t, "Driver", "driver", user.RoleStaffDriver)
	otherDriver := e.createUser(t, "Other Driver", "otherdriver", user.RoleStaffDriver)
	mum := e.createUser(t, "Mum", "mum", user.RoleParent)
	amani := testutil.CreateChild(t, e.childRepo, "Amani", "Sunflowers", "", mum.ID)

	adminToken := getToken(t, e.conf, admin)
	driverToken := getToken(t, e.conf, driver)
	mumToken := getToken(t, e.conf, mum)

	req, rec := newAuthRequest(http.MethodPost, "/v1/vehicles", adminToken,
		marchallObj(t, transport.NewVehicle{Plate: "kbc 123a", Name: "Blue bus", DriverID: driver.ID, Capacity: 20}))
	e.serve(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var bus transport.Vehicle
	unmarshall(t, rec, &bus)

	lat, lng, far := -1.2921, 36.8219, 120.0
	locPath := "/v1/vehicles/" + bus.ID + "/locations"

	runHTTPTests(t, e, []httpTest{
		{
			name: "only admins add vehicles", method: http.MethodPost, path: "/v1/vehicles", token: driverToken,
			body: marchallObj(t, transport.NewVehicle{Plate: "KBD 1"}), wantCode: http.StatusForbidden,
		},
		{
			name: "another driver", method: http.MethodPost, path: locPath, token: getToken(t, e.conf, otherDriver),
			body:     marchallObj(t, transport.LocationReport{Latitude: &lat, Longitude: &lng}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "only the assigned driver can share this vehicle's location"}),
		},
		{
			name: "a parent", method: http.MethodPost, path: locPath, token: mumToken,
			body: marchallObj(t, transport.LocationReport{Latitude: &lat, Longitude: &lng}), wantCode: http.StatusForbidden,
		},
		{
			name: "out of range", method: http.MethodPost, path: locPath, token: driverToken,
			body: marchallObj(t, transport.LocationReport{Latitude: &far, Longitude: &lng}), wantCode: http.StatusBadRequest,
		},
		{
			name: "no position yet", path: locPath + "/latest", token: driverToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "location not found"}),
		},
		{
			name: "assigned driver", method: http.MethodPost, path: locPath, token: driverToken,
			body: marchallObj(t, transport.LocationReport{Latitude: &lat, Longitude: &lng}), wantCode: http.StatusCreated,
		},
		{name: "parent without a route", path: locPath + "/latest", token: mumToken, wantCode: http.StatusNotFound},
		{name: "history is for admins", path: locPath, token: driverToken, wantCode: http.StatusForbidden},
	})

	// once the child rides the bus, the parent can follow it
	req, rec = newAuthRequest(http.MethodPost, "/v1/routes", adminToken, marchallObj(t, transport.NewRoute{
		VehicleID: bus.ID,
		Name:      "Westlands morning",
		Direction: transport.DirectionMorning,
		Stops:     []string{"Sarit", "School"},
		ChildIDs:  []string{amani.ID},
	}))
	e.serve(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req, rec = newAuthRequest(http.MethodGet, locPath+"/latest", mumToken)
	e.serve(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var latest transport.LatestLocation
	unmarshall(t, rec, &latest)
	assert.Equal(t, bus.ID, latest.VehicleID)
	assert.Equal(t, lat, latest.Latitude)
	assert.False(t, latest.Stale)
	assert.NotEmpty(t, latest.TimeSince)

	req, rec = newAuthRequest(http.MethodGet, "/v1/locations/latest", mumToken)
	e.serve(req, rec)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []transport.LatestLocation
	unmarshall(t, rec, &all)
	assert.Len(t, all, 1)

	req, rec = newAuthRequest(http.MethodGet, locPath, adminToken)
	e.serve(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var history []transport.Location
	unmarshall(t, rec, &history)
	assert.Len(t, history, 1)
}
