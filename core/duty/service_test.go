package duty_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/duty"
	"github.com/trezcool/yuva/core/user"
	emailsvc "github.com/trezcool/yuva/services/email"
	inmemdb "github.com/trezcool/yuva/storage/database/inmem"
	testutil "github.com/trezcool/yuva/tests"
)

func TestService(t *testing.T) {
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	validate := testutil.NewValidator()
	usrSvc := user.NewService(usrRepo, emailsvc.NewConsoleServiceMock(), validate, core.NewTestConfig())
	svc := duty.NewService(inmemdb.NewDutyRepository(db), usrSvc, validate)
	ctx := context.Background()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@yuva.test", "", []string{user.RoleAdmin}, true)
	guard := testutil.CreateUser(t, usrRepo, "Hasan", "hasan", "hasan@yuva.test", "", []string{user.RoleStaffSecurity}, true)
	cleaner := testutil.CreateUser(t, usrRepo, "Emine", "emine", "emine@yuva.test", "", []string{user.RoleStaffCleaning}, true)
	parent := testutil.CreateUser(t, usrRepo, "Mehmet", "mehmet", "mehmet@yuva.test", "", []string{user.RoleParent}, true)

	today := core.DateOf(time.Now().UTC())

	_, err := svc.CreateDescription(ctx, guard, duty.DescriptionData{Title: "Gate"})
	assert.True(t, core.IsPermissionDenied(err))
	gate, err := svc.CreateDescription(ctx, admin, duty.DescriptionData{Title: " Gate ", Details: "Check every pick-up card"})
	require.NoError(t, err)
	assert.Equal(t, "Gate", gate.Title)
	garden, err := svc.CreateDescription(ctx, admin, duty.DescriptionData{Title: "Garden watch"})
	require.NoError(t, err)

	t.Run("descriptions", func(t *testing.T) {
		descs, err := svc.QueryDescriptions(ctx, cleaner)
		require.NoError(t, err)
		require.Len(t, descs, 2)
		assert.Equal(t, garden.ID, descs[0].ID)

		_, err = svc.QueryDescriptions(ctx, parent)
		assert.True(t, core.IsPermissionDenied(err))
	})

	morning, err := svc.CreateSchedule(ctx, admin, duty.ScheduleData{
		StaffID: guard.ID, Date: today, Shift: "Morning", Location: "Main gate", DescriptionID: gate.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, duty.ShiftMorning, morning.Shift)
	assert.Equal(t, gate.ID, morning.DescriptionID.String)

	_, err = svc.CreateSchedule(ctx, admin, duty.ScheduleData{StaffID: cleaner.ID, Date: today, Shift: duty.ShiftFullDay, Location: "Garden"})
	require.NoError(t, err)

	t.Run("schedule validation", func(t *testing.T) {
		_, err := svc.CreateSchedule(ctx, admin, duty.ScheduleData{StaffID: parent.ID, Date: today, Shift: duty.ShiftMorning})
		assert.Equal(t, duty.ErrUnknownStaff, err)
		_, err = svc.CreateSchedule(ctx, admin, duty.ScheduleData{StaffID: guard.ID, Date: today, Shift: duty.ShiftFullDay})
		assert.Equal(t, duty.ErrDoubleBooked, err)
		_, err = svc.CreateSchedule(ctx, admin, duty.ScheduleData{StaffID: guard.ID, Date: today, Shift: "night"})
		assert.Error(t, err)
		_, err = svc.CreateSchedule(ctx, admin, duty.ScheduleData{
			StaffID: guard.ID, Date: today, Shift: duty.ShiftAfternoon, DescriptionID: "d4f0e3a2-3f4b-4f0e-9d55-0a7c1c3b2e11",
		})
		assert.Equal(t, duty.ErrUnknownDescription, err)

		// re-saving a schedule does not conflict with itself
		_, err = svc.UpdateSchedule(ctx, admin, morning.ID, duty.ScheduleData{StaffID: guard.ID, Date: today, Shift: duty.ShiftMorning, Location: "Back gate"})
		require.NoError(t, err)
	})

	t.Run("schedule visibility", func(t *testing.T) {
		all, err := svc.QuerySchedules(ctx, admin, &duty.ScheduleFilter{From: today, To: today})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, duty.ShiftFullDay, all[0].Shift)

		own, err := svc.QuerySchedules(ctx, guard, &duty.ScheduleFilter{StaffID: cleaner.ID})
		require.NoError(t, err)
		require.Len(t, own, 1)
		assert.Equal(t, "Back gate", own[0].Location)
	})

	t.Run("deleting a description keeps its schedules", func(t *testing.T) {
		_, err := svc.UpdateSchedule(ctx, admin, morning.ID, duty.ScheduleData{StaffID: guard.ID, Date: today, Shift: duty.ShiftMorning, DescriptionID: gate.ID})
		require.NoError(t, err)
		require.NoError(t, svc.DeleteDescription(ctx, admin, gate.ID))

		own, err := svc.QuerySchedules(ctx, guard, nil)
		require.NoError(t, err)
		require.Len(t, own, 1)
		assert.False(t, own[0].DescriptionID.Valid)

		assert.True(t, core.IsPermissionDenied(svc.DeleteSchedule(ctx, guard, morning.ID)))
		require.NoError(t, svc.DeleteSchedule(ctx, admin, morning.ID))
	})
}
