package feed

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/user"
)

const defaultLimit = 30

var (
	ErrNotFound      = core.NewNotFoundError("post")
	ErrNotConfigured = errors.New("feed source is not configured")
)

type (
	// Source fetches the most recent posts of the mirrored account.
	Source interface {
		Fetch(ctx context.Context) ([]Post, error)
	}

	Repository interface {
		// UpsertPosts inserts posts, or updates the ones with a known ExternalID. It returns the number of new posts.
		UpsertPosts(ctx context.Context, posts []Post) (int, error)
		// QueryPosts returns the newest first.
		QueryPosts(ctx context.Context, filter *QueryFilter) ([]Post, error)
		DeletePost(ctx context.Context, id string) error
	}

	Service struct {
		repo   Repository
		source Source
		now    func() time.Time
	}
)

// NewService returns a feed service; a nil source disables syncing.
func NewService(repo Repository, source Source) *Service {
	return &Service{repo: repo, source: source, now: time.Now}
}

// Sync pulls the latest posts from the source into the mirror and returns how many were new.
func (svc *Service) Sync(ctx context.Context) (int, error) {
	if svc.source == nil {
		return 0, ErrNotConfigured
	}
	posts, err := svc.source.Fetch(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "fetching posts")
	}

	now := svc.now().UTC()
	valid := posts[:0]
	for _, p := range posts {
		p.ExternalID = core.CleanString(p.ExternalID)
		if p.ExternalID == "" {
			continue
		}
		p.PostedAt = p.PostedAt.UTC()
		p.SyncedAt = now
		valid = append(valid, p)
	}
	if len(valid) == 0 {
		return 0, nil
	}
	return svc.repo.UpsertPosts(ctx, valid)
}

// SyncNow is the admin-triggered Sync.
func (svc *Service) SyncNow(ctx context.Context, actor user.User) (int, error) {
	if !actor.IsAdmin() {
		return 0, core.ErrPermissionDenied
	}
	return svc.Sync(ctx)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Post, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = defaultLimit
	}
	return svc.repo.QueryPosts(ctx, filter)
}

// Delete hides a post from the mirror. It comes back on the next sync if still published.
func (svc *Service) Delete(ctx context.Context, actor user.User, id string) error {
	if !actor.IsAdmin() {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeletePost(ctx, id)
}
