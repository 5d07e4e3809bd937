package carelog_test

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/carelog"
	"github.com/trezcool/yuva/core/child"
	"github.com/trezcool/yuva/core/user"
	inmemdb "github.com/trezcool/yuva/storage/database/inmem"
	testutil "github.com/trezcool/yuva/tests"
)

// memStore keeps uploaded objects in memory and fails the Nth Put when failOn > 0.
type memStore struct {
	mu      sync.Mutex
	objects map[string]string
	puts    int
	failOn  int
}

func newMemStore(failOn int) *memStore {
	return &memStore{objects: make(map[string]string), failOn: failOn}
}

func (s *memStore) Put(_ context.Context, key string, r io.Reader, _ string) (core.StoredFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.puts == s.failOn {
		return core.StoredFile{}, errors.New("bucket unavailable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return core.StoredFile{}, err
	}
	s.objects[key] = string(data)
	return core.StoredFile{Key: key, URL: "https://cdn.yuva.test/" + key}, nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func upload(name, content string) core.Upload {
	return core.Upload{
		Filename:    name,
		ContentType: "text/plain",
		Size:        int64(len(content)),
		Open:        func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(content)), nil },
	}
}

type fixture struct {
	db                               *inmemdb.DB
	teacher, colleague, parent, cook user.User
	kid, otherKid                    child.Child
}

func setup(t *testing.T) fixture {
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	childRepo := inmemdb.NewChildRepository(db)

	f := fixture{
		db:        db,
		teacher:   testutil.CreateUser(t, usrRepo, "Ayse", "ayse", "ayse@yuva.test", "", []string{user.RoleTeacher}, true),
		colleague: testutil.CreateUser(t, usrRepo, "Zeynep", "zeynep", "zeynep@yuva.test", "", []string{user.RoleTeacher}, true),
		parent:    testutil.CreateUser(t, usrRepo, "Mehmet", "mehmet", "mehmet@yuva.test", "", []string{user.RoleParent}, true),
		cook:      testutil.CreateUser(t, usrRepo, "Cook", "cook", "cook@yuva.test", "", []string{user.RoleStaffCook}, true),
	}
	f.kid = testutil.CreateChild(t, childRepo, "Ela", "Papatya", f.teacher.ID, f.parent.ID)
	f.otherKid = testutil.CreateChild(t, childRepo, "Can", "Papatya", f.teacher.ID)
	return f
}

func (f fixture) service(store core.FileStore) *carelog.Service {
	validate := testutil.NewValidator()
	children := child.NewService(inmemdb.NewChildRepository(f.db), validate)
	return carelog.NewService(inmemdb.NewCarelogRepository(f.db), children, store, validate)
}

func TestService_Meals(t *testing.T) {
	f := setup(t)
	svc := f.service(newMemStore(0))
	ctx := context.Background()

	_, err := svc.RecordMeal(ctx, f.cook, carelog.NewMealLog{ChildID: f.kid.ID, Meal: "Lunch", Amount: "most"})
	require.NoError(t, err)
	_, err = svc.RecordMeal(ctx, f.teacher, carelog.NewMealLog{ChildID: f.otherKid.ID, Meal: "snack", Amount: "all"})
	require.NoError(t, err)

	_, err = svc.RecordMeal(ctx, f.teacher, carelog.NewMealLog{ChildID: f.kid.ID, Meal: "dinner", Amount: "all"})
	assert.Error(t, err)
	_, err = svc.RecordMeal(ctx, f.parent, carelog.NewMealLog{ChildID: f.kid.ID, Meal: "lunch", Amount: "all"})
	assert.True(t, core.IsPermissionDenied(err))

	meals, err := svc.QueryMeals(ctx, f.parent, nil)
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Equal(t, carelog.MealLunch, meals[0].Meal)

	meals, err = svc.QueryMeals(ctx, f.teacher, nil)
	require.NoError(t, err)
	assert.Len(t, meals, 2)
}

func TestService_Sleep(t *testing.T) {
	f := setup(t)
	svc := f.service(newMemStore(0))
	ctx := context.Background()

	start := time.Date(2024, time.May, 2, 12, 30, 0, 0, time.UTC)
	sl, err := svc.RecordSleep(ctx, f.teacher, carelog.NewSleepLog{ChildID: f.kid.ID, StartedAt: start})
	require.NoError(t, err)
	assert.Equal(t, core.NewDate(2024, time.May, 2), sl.Date)
	assert.False(t, sl.EndedAt.Valid)

	_, err = svc.EndSleep(ctx, f.teacher, sl.ID, carelog.EndSleep{EndedAt: start.Add(-time.Minute)})
	assert.Equal(t, carelog.ErrSleepEndsEarly, err)

	sl, err = svc.EndSleep(ctx, f.teacher, sl.ID, carelog.EndSleep{EndedAt: start.Add(90 * time.Minute), Quality: "good"})
	require.NoError(t, err)
	assert.True(t, sl.EndedAt.Valid)
	assert.Equal(t, carelog.SleepGood, sl.Quality)

	_, err = svc.EndSleep(ctx, f.teacher, sl.ID, carelog.EndSleep{})
	assert.Equal(t, carelog.ErrSleepEnded, err)
}

func TestService_Reports(t *testing.T) {
	f := setup(t)
	svc := f.service(newMemStore(0))
	ctx := context.Background()
	day := core.NewDate(2024, time.May, 2)

	r, err := svc.CreateReport(ctx, f.teacher, carelog.NewDailyReport{
		ChildID:      f.kid.ID,
		Date:         day,
		ReportFields: carelog.ReportFields{Mood: " happy ", Sensorial: "color tablets"},
	})
	require.NoError(t, err)
	assert.Equal(t, "happy", r.Mood)

	_, err = svc.CreateReport(ctx, f.teacher, carelog.NewDailyReport{ChildID: f.kid.ID, Date: day})
	assert.Equal(t, carelog.ErrReportExists, err)

	// only the author may edit
	_, err = svc.UpdateReport(ctx, f.colleague, r.ID, carelog.ReportFields{Mood: "sad"})
	assert.True(t, core.IsPermissionDenied(err))

	r, err = svc.UpdateReport(ctx, f.teacher, r.ID, carelog.ReportFields{Mood: "calm", Language: "sandpaper letters"})
	require.NoError(t, err)
	assert.Equal(t, "calm", r.Mood)

	got, err := svc.GetReport(ctx, f.parent, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "sandpaper letters", got.Language)

	other, err := svc.CreateReport(ctx, f.teacher, carelog.NewDailyReport{ChildID: f.otherKid.ID, Date: day})
	require.NoError(t, err)
	_, err = svc.GetReport(ctx, f.parent, other.ID)
	assert.True(t, core.IsPermissionDenied(err))
}

func TestService_AddMedia(t *testing.T) {
	ctx := context.Background()

	t.Run("all uploaded", func(t *testing.T) {
		f := setup(t)
		store := newMemStore(0)
		svc := f.service(store)

		r, err := svc.CreateReport(ctx, f.teacher, carelog.NewDailyReport{ChildID: f.kid.ID})
		require.NoError(t, err)

		r, err = svc.AddMedia(ctx, f.teacher, r.ID, []core.Upload{upload("a.txt", "a"), upload("b.TXT", "b")})
		require.NoError(t, err)
		assert.Len(t, r.MediaURLs, 2)
		assert.Len(t, store.objects, 2)
		for _, u := range r.MediaURLs {
			assert.True(t, strings.HasPrefix(u, "https://cdn.yuva.test/daily-reports/"+r.ID+"/"))
			assert.True(t, strings.HasSuffix(u, ".txt"))
		}
	})

	t.Run("failure rolls back uploaded files", func(t *testing.T) {
		f := setup(t)
		store := newMemStore(3)
		svc := f.service(store)

		r, err := svc.CreateReport(ctx, f.teacher, carelog.NewDailyReport{ChildID: f.kid.ID})
		require.NoError(t, err)

		_, err = svc.AddMedia(ctx, f.teacher, r.ID, []core.Upload{upload("a.txt", "a"), upload("b.txt", "b"), upload("c.txt", "c")})
		require.Error(t, err)
		assert.Empty(t, store.objects)

		got, err := svc.GetReport(ctx, f.teacher, r.ID)
		require.NoError(t, err)
		assert.Empty(t, got.MediaURLs)
	})

	t.Run("no file", func(t *testing.T) {
		f := setup(t)
		svc := f.service(newMemStore(0))
		r, err := svc.CreateReport(ctx, f.teacher, carelog.NewDailyReport{ChildID: f.kid.ID})
		require.NoError(t, err)
		_, err = svc.AddMedia(ctx, f.teacher, r.ID, nil)
		assert.Error(t, err)
	})
}
