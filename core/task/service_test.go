package task_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/task"
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
	svc := task.NewService(inmemdb.NewTaskRepository(db), usrSvc, validate)
	ctx := context.Background()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@yuva.test", "", []string{user.RoleAdmin}, true)
	chef := testutil.CreateUser(t, usrRepo, "Chef", "chef", "chef@yuva.test", "", []string{user.RoleChef}, true)
	cook := testutil.CreateUser(t, usrRepo, "Fatma", "fatma", "fatma@yuva.test", "", []string{user.RoleStaffCook}, true)
	cleaner := testutil.CreateUser(t, usrRepo, "Emine", "emine", "emine@yuva.test", "", []string{user.RoleStaffCleaning}, true)
	teacher := testutil.CreateUser(t, usrRepo, "Ayse", "ayse", "ayse@yuva.test", "", []string{user.RoleTeacher}, true)
	parent := testutil.CreateUser(t, usrRepo, "Mehmet", "mehmet", "mehmet@yuva.test", "", []string{user.RoleParent}, true)

	_, err := svc.Create(ctx, teacher, task.NewTask{Title: "x", AssigneeIDs: []string{cook.ID}})
	assert.True(t, core.IsPermissionDenied(err))
	_, err = svc.Create(ctx, admin, task.NewTask{Title: "x", AssigneeIDs: []string{parent.ID}})
	assert.Equal(t, task.ErrUnknownAssignee, err)
	_, err = svc.Create(ctx, admin, task.NewTask{Title: "x"})
	assert.Error(t, err)

	prep, err := svc.Create(ctx, chef, task.NewTask{
		Title: "Prep vegetables", AssigneeIDs: []string{cook.ID, cook.ID}, DueDate: core.DateOf(time.Now().UTC()),
	})
	require.NoError(t, err)
	assert.Len(t, prep.AssigneeIDs, 1)
	windows, err := svc.Create(ctx, admin, task.NewTask{Title: "Clean windows", AssigneeIDs: []string{cleaner.ID}})
	require.NoError(t, err)

	t.Run("visibility", func(t *testing.T) {
		list, err := svc.Query(ctx, admin, nil)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, prep.ID, list[0].ID, "tasks without due date come last")

		list, err = svc.Query(ctx, cook, nil)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, prep.ID, list[0].ID)

		list, err = svc.Query(ctx, chef, nil)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		_, err = svc.Get(ctx, cook, windows.ID)
		assert.Equal(t, task.ErrNotFound, err)
		_, err = svc.Query(ctx, parent, nil)
		assert.True(t, core.IsPermissionDenied(err))
	})

	t.Run("responses", func(t *testing.T) {
		_, err := svc.Respond(ctx, chef, prep.ID, task.NewResponse{Status: task.StatusDone})
		assert.Equal(t, task.ErrNotAnAssignee, err)
		_, err = svc.Respond(ctx, cook, prep.ID, task.NewResponse{Status: task.StatusBlocked})
		assert.Equal(t, task.ErrBlockedNeedsBody, err)

		_, err = svc.Respond(ctx, cook, prep.ID, task.NewResponse{Status: "In_Progress"})
		require.NoError(t, err)
		_, err = svc.Respond(ctx, cook, prep.ID, task.NewResponse{Status: task.StatusDone, Body: "All done"})
		require.NoError(t, err)

		responses, err := svc.Responses(ctx, chef, prep.ID)
		require.NoError(t, err)
		require.Len(t, responses, 2)
		assert.Equal(t, task.StatusInProgress, responses[0].Status)
		assert.Equal(t, task.StatusDone, responses[1].Status)
	})

	t.Run("update and delete", func(t *testing.T) {
		title := "Prep vegetables and fruit"
		_, err := svc.Update(ctx, cook, prep.ID, task.UpdateTask{Title: &title})
		assert.True(t, core.IsPermissionDenied(err))
		got, err := svc.Update(ctx, chef, prep.ID, task.UpdateTask{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, title, got.Title)

		require.NoError(t, svc.Delete(ctx, admin, prep.ID))
		_, err = svc.Responses(ctx, admin, prep.ID)
		assert.Equal(t, task.ErrNotFound, err)
	})
}
