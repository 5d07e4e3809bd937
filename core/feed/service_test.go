package feed_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/feed"
	"github.com/trezcool/yuva/core/user"
	inmemdb "github.com/trezcool/yuva/storage/database/inmem"
	testutil "github.com/trezcool/yuva/tests"
)

type fakeSource struct {
	posts []feed.Post
	err   error
}

func (s *fakeSource) Fetch(context.Context) ([]feed.Post, error) {
	out := make([]feed.Post, len(s.posts))
	copy(out, s.posts)
	return out, s.err
}

func TestService(t *testing.T) {
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	src := new(fakeSource)
	svc := feed.NewService(inmemdb.NewFeedRepository(db), src)
	ctx := context.Background()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@yuva.test", "", []string{user.RoleAdmin}, true)
	parent := testutil.CreateUser(t, usrRepo, "Mehmet", "mehmet", "mehmet@yuva.test", "", []string{user.RoleParent}, true)

	posted := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	src.posts = []feed.Post{
		{ExternalID: "17890001", Caption: "Autumn walk", MediaType: "IMAGE", PostedAt: posted},
		{ExternalID: "17890002", Caption: "Painting day", MediaType: "IMAGE", PostedAt: posted.Add(24 * time.Hour)},
		{ExternalID: " ", Caption: "ignored"},
	}

	_, err := svc.SyncNow(ctx, parent)
	assert.True(t, core.IsPermissionDenied(err))

	n, err := svc.SyncNow(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	t.Run("sync upserts by external id", func(t *testing.T) {
		src.posts[0].Caption = "Autumn walk in the park"
		src.posts = append(src.posts, feed.Post{ExternalID: "17890003", Caption: "Music class", PostedAt: posted.Add(48 * time.Hour)})

		n, err := svc.Sync(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		posts, err := svc.Query(ctx, nil)
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, "17890003", posts[0].ExternalID)
		assert.Equal(t, "Autumn walk in the park", posts[2].Caption)
		assert.False(t, posts[2].SyncedAt.IsZero())

		posts, err = svc.Query(ctx, &feed.QueryFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, posts, 1)
	})

	t.Run("source errors", func(t *testing.T) {
		src.err = errors.New("rate limited")
		defer func() { src.err = nil }()
		_, err := svc.Sync(ctx)
		assert.Error(t, err)

		_, err = feed.NewService(inmemdb.NewFeedRepository(db), nil).Sync(ctx)
		assert.Equal(t, feed.ErrNotConfigured, err)
	})

	t.Run("delete", func(t *testing.T) {
		posts, err := svc.Query(ctx, nil)
		require.NoError(t, err)
		assert.True(t, core.IsPermissionDenied(svc.Delete(ctx, parent, posts[0].ID)))
		require.NoError(t, svc.Delete(ctx, admin, posts[0].ID))
		assert.Equal(t, feed.ErrNotFound, svc.Delete(ctx, admin, posts[0].ID))
	})
}
