package announcement_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/announcement"
	"github.com/trezcool/yuva/core/user"
	inmemdb "github.com/trezcool/yuva/storage/database/inmem"
	testutil "github.com/trezcool/yuva/tests"
)

func titles(as []announcement.Announcement) []string {
	out := make([]string, 0, len(as))
	for _, a := range as {
		out = append(out, a.Title)
	}
	return out
}

func TestService(t *testing.T) {
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	pub := new(testutil.Publisher)
	svc := announcement.NewService(inmemdb.NewAnnouncementRepository(db), pub, testutil.NewValidator())
	ctx := context.Background()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@yuva.test", "", []string{user.RoleAdmin}, true)
	teacher := testutil.CreateUser(t, usrRepo, "Ayse", "ayse", "ayse@yuva.test", "", []string{user.RoleTeacher}, true)
	parent := testutil.CreateUser(t, usrRepo, "Mehmet", "mehmet", "mehmet@yuva.test", "", []string{user.RoleParent}, true)
	driver := testutil.CreateUser(t, usrRepo, "Ali", "ali", "ali@yuva.test", "", []string{user.RoleStaffDriver}, true)

	past := time.Now().Add(-time.Hour)
	_, err := svc.Create(ctx, admin, announcement.NewAnnouncement{Title: "Everyone", Body: "Hello all"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, admin, announcement.NewAnnouncement{Title: "Parents", Body: "Meeting", Audience: []string{user.RoleParent}, Pinned: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, teacher, announcement.NewAnnouncement{Title: "Staff", Body: "Shuttle", Audience: []string{user.RoleStaff}})
	require.NoError(t, err)
	expired, err := svc.Create(ctx, admin, announcement.NewAnnouncement{
		Title: "Expired", Body: "Old news", PublishedAt: timePtr(past.Add(-time.Hour)), ExpiresAt: timePtr(past),
	})
	require.NoError(t, err)

	t.Run("validation", func(t *testing.T) {
		_, err := svc.Create(ctx, admin, announcement.NewAnnouncement{Title: "No body"})
		assert.Error(t, err)
		_, err = svc.Create(ctx, admin, announcement.NewAnnouncement{Title: "x", Body: "y", Audience: []string{"aliens:"}})
		assert.Error(t, err)
	})

	t.Run("parents cannot publish", func(t *testing.T) {
		_, err := svc.Create(ctx, parent, announcement.NewAnnouncement{Title: "x", Body: "y"})
		assert.True(t, core.IsPermissionDenied(err))
	})

	t.Run("audience", func(t *testing.T) {
		got, err := svc.Query(ctx, parent, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"Parents", "Everyone"}, titles(got))

		got, err = svc.Query(ctx, driver, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"Staff", "Everyone"}, titles(got))

		got, err = svc.Query(ctx, admin, &announcement.QueryFilter{IncludeExpired: true})
		require.NoError(t, err)
		assert.Len(t, got, 4)

		_, err = svc.Get(ctx, parent, expired.ID)
		assert.NoError(t, err)
	})

	t.Run("only the author edits", func(t *testing.T) {
		staff, err := svc.Query(ctx, driver, &announcement.QueryFilter{Search: "shuttle"})
		require.NoError(t, err)
		require.Len(t, staff, 1)

		other := testutil.CreateUser(t, usrRepo, "Zeynep", "zeynep", "zeynep@yuva.test", "", []string{user.RoleTeacher}, true)
		_, err = svc.Update(ctx, other, staff[0].ID, announcement.UpdateAnnouncement{Pinned: boolPtr(true)})
		assert.True(t, core.IsPermissionDenied(err))

		a, err := svc.Update(ctx, teacher, staff[0].ID, announcement.UpdateAnnouncement{Pinned: boolPtr(true)})
		require.NoError(t, err)
		assert.True(t, a.Pinned)

		require.NoError(t, svc.Delete(ctx, admin, a.ID))
	})

	t.Run("events", func(t *testing.T) {
		events := pub.Events()
		require.NotEmpty(t, events)
		for _, evt := range events {
			assert.Equal(t, core.TopicAnnouncements, evt.Topic)
			assert.Empty(t, evt.UserIDs)
		}
		assert.Equal(t, core.ActionDelete, events[len(events)-1].Action)
	})
}

func timePtr(t time.Time) *time.Time { return &t }
func boolPtr(b bool) *bool           { return &b }
