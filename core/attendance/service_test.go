package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/attendance"
	"github.com/trezcool/yuva/core/child"
	"github.com/trezcool/yuva/core/user"
	inmemdb "github.com/trezcool/yuva/storage/database/inmem"
	testutil "github.com/trezcool/yuva/tests"
)

type fixture struct {
	svc                   *attendance.Service
	teacher, parent, chef user.User
	kid, otherKid         child.Child
}

func setup(t *testing.T) fixture {
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	childRepo := inmemdb.NewChildRepository(db)
	validate := testutil.NewValidator()

	f := fixture{
		teacher: testutil.CreateUser(t, usrRepo, "Ayse", "ayse", "ayse@yuva.test", "", []string{user.RoleTeacher}, true),
		parent:  testutil.CreateUser(t, usrRepo, "Mehmet", "mehmet", "mehmet@yuva.test", "", []string{user.RoleParent}, true),
		chef:    testutil.CreateUser(t, usrRepo, "Chef", "chef", "chef@yuva.test", "", []string{user.RoleChef}, true),
	}
	f.kid = testutil.CreateChild(t, childRepo, "Ela", "Papatya", f.teacher.ID, f.parent.ID)
	f.otherKid = testutil.CreateChild(t, childRepo, "Can", "Papatya", f.teacher.ID)
	f.svc = attendance.NewService(inmemdb.NewAttendanceRepository(db), child.NewService(childRepo, validate), validate)
	return f
}

func TestService_Mark(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	t.Run("present sets arrival time", func(t *testing.T) {
		before := time.Now().UTC()
		a, err := f.svc.Mark(ctx, f.teacher, attendance.Mark{ChildID: f.kid.ID, Status: attendance.StatusPresent})
		require.NoError(t, err)
		assert.True(t, a.ArrivalTime.Valid)
		assert.False(t, a.ArrivalTime.Time.Before(before))
		assert.Equal(t, core.DateOf(time.Now().UTC()), a.Date)
	})

	t.Run("absent leaves arrival time null", func(t *testing.T) {
		a, err := f.svc.Mark(ctx, f.teacher, attendance.Mark{ChildID: f.otherKid.ID, Status: attendance.StatusAbsent})
		require.NoError(t, err)
		assert.False(t, a.ArrivalTime.Valid)
	})

	t.Run("re-marking updates the same row", func(t *testing.T) {
		first, err := f.svc.Mark(ctx, f.teacher, attendance.Mark{ChildID: f.otherKid.ID, Status: attendance.StatusLate})
		require.NoError(t, err)
		assert.True(t, first.ArrivalTime.Valid)

		rows, err := f.svc.Query(ctx, f.teacher, &attendance.QueryFilter{ChildIDs: []string{f.otherKid.ID}})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, attendance.StatusLate, rows[0].Status)
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := f.svc.Mark(ctx, f.teacher, attendance.Mark{ChildID: f.kid.ID, Status: "sick"})
		assert.Error(t, err)
	})

	t.Run("chef may not take the roll", func(t *testing.T) {
		_, err := f.svc.Mark(ctx, f.chef, attendance.Mark{ChildID: f.kid.ID, Status: attendance.StatusPresent})
		assert.True(t, core.IsPermissionDenied(err))
	})

	t.Run("parent may not take the roll", func(t *testing.T) {
		_, err := f.svc.Mark(ctx, f.parent, attendance.Mark{ChildID: f.kid.ID, Status: attendance.StatusPresent})
		assert.True(t, core.IsPermissionDenied(err))
	})
}

func TestService_CheckOut(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	absent, err := f.svc.Mark(ctx, f.teacher, attendance.Mark{ChildID: f.otherKid.ID, Status: attendance.StatusAbsent})
	require.NoError(t, err)
	_, err = f.svc.CheckOut(ctx, f.teacher, absent.ID)
	assert.Equal(t, attendance.ErrNotArrived, err)

	present, err := f.svc.Mark(ctx, f.teacher, attendance.Mark{ChildID: f.kid.ID, Status: attendance.StatusPresent})
	require.NoError(t, err)
	out, err := f.svc.CheckOut(ctx, f.teacher, present.ID)
	require.NoError(t, err)
	assert.True(t, out.DepartureTime.Valid)

	_, err = f.svc.CheckOut(ctx, f.teacher, present.ID)
	assert.Equal(t, attendance.ErrDepartedTwice, err)

	t.Run("re-marking clears the departure", func(t *testing.T) {
		a, err := f.svc.Mark(ctx, f.teacher, attendance.Mark{ChildID: f.kid.ID, Status: attendance.StatusAbsent})
		require.NoError(t, err)
		assert.Equal(t, present.ID, a.ID)
		assert.False(t, a.ArrivalTime.Valid)
		assert.False(t, a.DepartureTime.Valid)

		a, err = f.svc.Mark(ctx, f.teacher, attendance.Mark{ChildID: f.kid.ID, Status: attendance.StatusPresent})
		require.NoError(t, err)
		assert.True(t, a.ArrivalTime.Valid)
		assert.False(t, a.DepartureTime.Valid)

		out, err := f.svc.CheckOut(ctx, f.teacher, a.ID)
		require.NoError(t, err)
		assert.True(t, out.DepartureTime.Valid)
	})
}

func TestService_Query_parentScope(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, id := range []string{f.kid.ID, f.otherKid.ID} {
		_, err := f.svc.Mark(ctx, f.teacher, attendance.Mark{ChildID: id, Status: attendance.StatusPresent})
		require.NoError(t, err)
	}

	rows, err := f.svc.Query(ctx, f.parent, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, f.kid.ID, rows[0].ChildID)

	// asking for another child's rows yields nothing
	rows, err = f.svc.Query(ctx, f.parent, &attendance.QueryFilter{ChildIDs: []string{f.otherKid.ID}})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = f.svc.Query(ctx, f.teacher, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = f.svc.Summarize(ctx, f.parent, f.otherKid.ID, core.Date{}, core.Date{})
	assert.True(t, core.IsPermissionDenied(err))
}

func TestService_Summarize(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	days := []struct {
		date   core.Date
		status string
	}{
		{core.NewDate(2024, time.March, 4), attendance.StatusPresent},
		{core.NewDate(2024, time.March, 5), attendance.StatusLate},
		{core.NewDate(2024, time.March, 6), attendance.StatusAbsent},
		{core.NewDate(2024, time.March, 7), attendance.StatusPresent},
		{core.NewDate(2024, time.April, 1), attendance.StatusPresent},
	}
	for _, d := range days {
		_, err := f.svc.Mark(ctx, f.teacher, attendance.Mark{ChildID: f.kid.ID, Date: d.date, Status: d.status})
		require.NoError(t, err)
	}

	sum, err := f.svc.Summarize(ctx, f.parent, f.kid.ID, core.NewDate(2024, time.March, 1), core.NewDate(2024, time.March, 31))
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, map[string]int{
		attendance.StatusPresent: 2,
		attendance.StatusLate:    1,
		attendance.StatusAbsent:  1,
		attendance.StatusExcused: 0,
	}, sum.Counts)
}
