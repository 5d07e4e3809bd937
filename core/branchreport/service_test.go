package branchreport_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/branchreport"
	"github.com/trezcool/yuva/core/child"
	"github.com/trezcool/yuva/core/user"
	inmemdb "github.com/trezcool/yuva/storage/database/inmem"
	testutil "github.com/trezcool/yuva/tests"
)

func TestService(t *testing.T) {
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	childRepo := inmemdb.NewChildRepository(db)
	validate := testutil.NewValidator()
	svc := branchreport.NewService(inmemdb.NewBranchReportRepository(db), child.NewService(childRepo, validate), validate)
	ctx := context.Background()

	music := testutil.CreateUser(t, usrRepo, "Deniz", "deniz", "deniz@yuva.test", "", []string{user.RoleTeacher}, true)
	english := testutil.CreateUser(t, usrRepo, "Kate", "kate", "kate@yuva.test", "", []string{user.RoleTeacher}, true)
	parent := testutil.CreateUser(t, usrRepo, "Mehmet", "mehmet", "mehmet@yuva.test", "", []string{user.RoleParent}, true)
	cook := testutil.CreateUser(t, usrRepo, "Fatma", "fatma", "fatma@yuva.test", "", []string{user.RoleStaffCook}, true)
	kid := testutil.CreateChild(t, childRepo, "Ela", "Papatya", "", parent.ID)
	other := testutil.CreateChild(t, childRepo, "Can", "Papatya", "")

	_, err := svc.Create(ctx, cook, branchreport.ReportData{ChildID: kid.ID, Course: "Music", Period: "Fall", Assessment: "x"})
	assert.True(t, core.IsPermissionDenied(err))
	_, err = svc.Create(ctx, music, branchreport.ReportData{ChildID: kid.ID, Course: "Music"})
	assert.Error(t, err)

	rep, err := svc.Create(ctx, music, branchreport.ReportData{
		ChildID: kid.ID, Course: " Music ", Period: "2026 Fall", Assessment: "Keeps rhythm well",
	})
	require.NoError(t, err)
	assert.Equal(t, "Music", rep.Course)
	assert.Equal(t, music.ID, rep.TeacherID.String)
	_, err = svc.Create(ctx, english, branchreport.ReportData{ChildID: other.ID, Course: "English", Period: "2026 Fall", Assessment: "Knows colors"})
	require.NoError(t, err)

	t.Run("query", func(t *testing.T) {
		list, err := svc.Query(ctx, parent, nil)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, rep.ID, list[0].ID)

		list, err = svc.Query(ctx, parent, &branchreport.QueryFilter{ChildIDs: []string{other.ID}})
		require.NoError(t, err)
		assert.Empty(t, list)

		list, err = svc.Query(ctx, english, &branchreport.QueryFilter{Course: "music"})
		require.NoError(t, err)
		assert.Len(t, list, 1)

		_, err = svc.Get(ctx, parent, list[0].ID)
		require.NoError(t, err)
	})

	t.Run("only the author edits", func(t *testing.T) {
		data := branchreport.ReportData{ChildID: kid.ID, Course: "Music", Period: "2026 Fall", Assessment: "Sings along"}
		_, err := svc.Update(ctx, english, rep.ID, data)
		assert.True(t, core.IsPermissionDenied(err))

		got, err := svc.Update(ctx, music, rep.ID, data)
		require.NoError(t, err)
		assert.Equal(t, "Sings along", got.Assessment)

		assert.True(t, core.IsPermissionDenied(svc.Delete(ctx, english, rep.ID)))
		require.NoError(t, svc.Delete(ctx, music, rep.ID))
		_, err = svc.Get(ctx, music, rep.ID)
		assert.Equal(t, branchreport.ErrNotFound, err)
	})
}
