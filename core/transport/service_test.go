package transport_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/child"
	"github.com/trezcool/yuva/core/transport"
	"github.com/trezcool/yuva/core/user"
	emailsvc "github.com/trezcool/yuva/services/email"
	inmemdb "github.com/trezcool/yuva/storage/database/inmem"
	testutil "github.com/trezcool/yuva/tests"
)

type fixture struct {
	svc                                           *transport.Service
	pub                                           *testutil.Publisher
	admin, teacher, driver, driver2, parent, cook user.User
	kid                                           child.Child
	bus, van                                      transport.Vehicle
}

func ptr[T any](v T) *T { return &v }

func setup(t *testing.T) fixture {
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	childRepo := inmemdb.NewChildRepository(db)
	validate := testutil.NewValidator()
	conf := core.NewTestConfig()
	ctx := context.Background()

	f := fixture{
		pub:     new(testutil.Publisher),
		admin:   testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@yuva.test", "", []string{user.RoleAdmin}, true),
		teacher: testutil.CreateUser(t, usrRepo, "Ayse", "ayse", "ayse@yuva.test", "", []string{user.RoleTeacher}, true),
		driver:  testutil.CreateUser(t, usrRepo, "Hasan", "hasan", "hasan@yuva.test", "", []string{user.RoleStaffDriver}, true),
		driver2: testutil.CreateUser(t, usrRepo, "Kemal", "kemal", "kemal@yuva.test", "", []string{user.RoleStaffDriver}, true),
		parent:  testutil.CreateUser(t, usrRepo, "Mehmet", "mehmet", "mehmet@yuva.test", "", []string{user.RoleParent}, true),
		cook:    testutil.CreateUser(t, usrRepo, "Fatma", "fatma", "fatma@yuva.test", "", []string{user.RoleStaffCook}, true),
	}
	f.kid = testutil.CreateChild(t, childRepo, "Ela", "Papatya", f.teacher.ID, f.parent.ID)
	usrSvc := user.NewService(usrRepo, emailsvc.NewConsoleServiceMock(), validate, conf)
	f.svc = transport.NewService(inmemdb.NewTransportRepository(db), usrSvc, child.NewService(childRepo, validate), f.pub, validate, conf)

	var err error
	f.bus, err = f.svc.CreateVehicle(ctx, f.admin, transport.NewVehicle{Plate: " 34 abc  123 ", Name: "Bus", DriverID: f.driver.ID, Capacity: 16})
	require.NoError(t, err)
	f.van, err = f.svc.CreateVehicle(ctx, f.admin, transport.NewVehicle{Plate: "34 XYZ 9", Name: "Van", DriverID: f.driver2.ID, Capacity: 8})
	require.NoError(t, err)
	_, err = f.svc.CreateRoute(ctx, f.admin, transport.NewRoute{
		VehicleID: f.bus.ID, Name: "Kadıköy morning", Direction: "Morning",
		Stops: []string{"Moda", "Yeldeğirmeni"}, ChildIDs: []string{f.kid.ID},
	})
	require.NoError(t, err)
	return f
}

func report(lat, lon float64) transport.LocationReport {
	return transport.LocationReport{Latitude: &lat, Longitude: &lon}
}

func TestService_Vehicles(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	assert.Equal(t, "34 ABC 123", f.bus.Plate)

	_, err := f.svc.CreateVehicle(ctx, f.admin, transport.NewVehicle{Plate: "34 abc 123"})
	assert.Equal(t, transport.ErrPlateExists, err)
	_, err = f.svc.CreateVehicle(ctx, f.admin, transport.NewVehicle{Plate: "06 A 1", DriverID: f.cook.ID})
	assert.Equal(t, transport.ErrNotADriver, err)
	_, err = f.svc.CreateVehicle(ctx, f.teacher, transport.NewVehicle{Plate: "06 A 1"})
	assert.True(t, core.IsPermissionDenied(err))

	tests := []struct {
		name  string
		actor user.User
		want  []string
	}{
		{"admin", f.admin, []string{f.bus.ID, f.van.ID}},
		{"teacher", f.teacher, []string{f.bus.ID, f.van.ID}},
		{"driver", f.driver2, []string{f.van.ID}},
		{"parent", f.parent, []string{f.bus.ID}},
		{"cook", f.cook, []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			vehicles, err := f.svc.QueryVehicles(ctx, tc.actor, nil)
			require.NoError(t, err)
			got := make([]string, 0, len(vehicles))
			for _, v := range vehicles {
				got = append(got, v.ID)
			}
			assert.ElementsMatch(t, tc.want, got)
		})
	}

	v, err := f.svc.UpdateVehicle(ctx, f.admin, f.van.ID, transport.UpdateVehicle{DriverID: ptr(""), IsActive: ptr(false)})
	require.NoError(t, err)
	assert.False(t, v.DriverID.Valid)
	assert.False(t, v.IsActive)
}

func TestService_Routes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	other := testutil.CreateChild(t, inmemdb.NewChildRepository(inmemdb.Open()), "Ghost", "Lale", "")
	_, err := f.svc.CreateRoute(ctx, f.admin, transport.NewRoute{VehicleID: f.van.ID, Name: "x", Direction: "evening", ChildIDs: []string{other.ID}})
	assert.Error(t, err, "unknown child")
	_, err = f.svc.CreateRoute(ctx, f.admin, transport.NewRoute{VehicleID: f.van.ID, Name: "x", Direction: "noon"})
	assert.Error(t, err)

	routes, err := f.svc.QueryRoutes(ctx, f.parent, nil)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, transport.DirectionMorning, routes[0].Direction)

	_, err = f.svc.UpdateRoute(ctx, f.admin, routes[0].ID, transport.UpdateRoute{ChildIDs: []string{}})
	require.NoError(t, err)
	routes, err = f.svc.QueryRoutes(ctx, f.parent, nil)
	require.NoError(t, err)
	assert.Empty(t, routes)

	_, err = f.svc.Latest(ctx, f.parent, f.bus.ID)
	assert.Equal(t, transport.ErrVehicleNotFound, err, "parents stop following a bus not carrying their child")
}

func TestService_ReportLocation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	t.Run("only the assigned driver", func(t *testing.T) {
		for _, actor := range []user.User{f.driver2, f.teacher, f.parent} {
			_, err := f.svc.ReportLocation(ctx, actor, f.bus.ID, report(41.0, 29.0))
			assert.Equal(t, transport.ErrNotAssigned, err, actor.Username)
			assert.Equal(t, "only the assigned driver can share this vehicle's location", err.Error())
		}
	})

	t.Run("coordinates range", func(t *testing.T) {
		_, err := f.svc.ReportLocation(ctx, f.driver, f.bus.ID, report(91, 29))
		assert.Error(t, err)
		_, err = f.svc.ReportLocation(ctx, f.driver, f.bus.ID, report(41, -181))
		assert.Error(t, err)
		_, err = f.svc.ReportLocation(ctx, f.driver, f.bus.ID, transport.LocationReport{Latitude: ptr(41.0)})
		assert.Error(t, err)
	})

	t.Run("one row per report", func(t *testing.T) {
		first, err := f.svc.ReportLocation(ctx, f.driver, f.bus.ID, report(40.98, 29.02))
		require.NoError(t, err)
		second, err := f.svc.ReportLocation(ctx, f.driver, f.bus.ID, report(40.98, 29.02))
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		history, err := f.svc.History(ctx, f.admin, f.bus.ID, nil)
		require.NoError(t, err)
		assert.Len(t, history, 2)

		events := f.pub.Events()
		require.Len(t, events, 2)
		assert.Equal(t, core.TopicLocationTracking, events[1].Topic)
		assert.Equal(t, second.ID, events[1].ID)
	})

	t.Run("history is for admins", func(t *testing.T) {
		_, err := f.svc.History(ctx, f.teacher, f.bus.ID, nil)
		assert.True(t, core.IsPermissionDenied(err))
	})
}

func TestService_Latest(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Latest(ctx, f.parent, f.bus.ID)
	assert.Equal(t, transport.ErrNoLocation, err)

	now := time.Now().UTC()
	old := report(40.0, 29.0)
	old.RecordedAt = ptr(now.Add(-10 * time.Minute))
	_, err = f.svc.ReportLocation(ctx, f.driver, f.bus.ID, old)
	require.NoError(t, err)

	latest, err := f.svc.Latest(ctx, f.parent, f.bus.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, latest.Latitude)
	assert.True(t, latest.Stale)
	assert.Equal(t, "10 minutes ago", latest.TimeSince)

	// reported later but recorded earlier: not the latest
	older := report(39.0, 28.0)
	older.RecordedAt = ptr(now.Add(-20 * time.Minute))
	_, err = f.svc.ReportLocation(ctx, f.driver, f.bus.ID, older)
	require.NoError(t, err)

	fresh, err := f.svc.ReportLocation(ctx, f.driver, f.bus.ID, report(41.0, 29.1))
	require.NoError(t, err)

	latest, err = f.svc.Latest(ctx, f.parent, f.bus.ID)
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, latest.ID)
	assert.False(t, latest.Stale)
	assert.Equal(t, "just now", latest.TimeSince)

	_, err = f.svc.Latest(ctx, f.parent, f.van.ID)
	assert.Equal(t, transport.ErrVehicleNotFound, err)

	all, err := f.svc.LatestAll(ctx, f.teacher)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, fresh.ID, all[0].ID)

	future := report(41.0, 29.1)
	future.RecordedAt = ptr(now.Add(time.Hour))
	_, err = f.svc.ReportLocation(ctx, f.driver, f.bus.ID, future)
	assert.Equal(t, transport.ErrRecordedInFuture, err)
}

func TestService_Prune(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	old := report(40.0, 29.0)
	old.RecordedAt = ptr(time.Now().UTC().AddDate(0, 0, -40))
	_, err := f.svc.ReportLocation(ctx, f.driver, f.bus.ID, old)
	require.NoError(t, err)
	_, err = f.svc.ReportLocation(ctx, f.driver, f.bus.ID, report(41.0, 29.0))
	require.NoError(t, err)

	n, err := f.svc.Prune(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
