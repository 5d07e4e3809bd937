package fee_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/child"
	"github.com/trezcool/yuva/core/fee"
	"github.com/trezcool/yuva/core/user"
	emailsvc "github.com/trezcool/yuva/services/email"
	inmemdb "github.com/trezcool/yuva/storage/database/inmem"
	testutil "github.com/trezcool/yuva/tests"
)

type fixture struct {
	svc                             *fee.Service
	mail                            *emailsvc.ConsoleServiceMock
	admin, teacher, parent, parent2 user.User
	kid, otherKid                   child.Child
}

func setup(t *testing.T) fixture {
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	childRepo := inmemdb.NewChildRepository(db)
	validate := testutil.NewValidator()
	conf := core.NewTestConfig()

	f := fixture{
		mail:    emailsvc.NewConsoleServiceMock(),
		admin:   testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@yuva.test", "", []string{user.RoleAdmin}, true),
		teacher: testutil.CreateUser(t, usrRepo, "Ayse", "ayse", "ayse@yuva.test", "", []string{user.RoleTeacher}, true),
		parent:  testutil.CreateUser(t, usrRepo, "Mehmet", "mehmet", "mehmet@yuva.test", "", []string{user.RoleParent}, true),
		parent2: testutil.CreateUser(t, usrRepo, "Zeynep", "zeynep", "zeynep@yuva.test", "", []string{user.RoleParent}, true),
	}
	f.kid = testutil.CreateChild(t, childRepo, "Ela", "Papatya", f.teacher.ID, f.parent.ID)
	f.otherKid = testutil.CreateChild(t, childRepo, "Can", "Papatya", f.teacher.ID, f.parent2.ID)
	usrSvc := user.NewService(usrRepo, f.mail, validate, conf)
	f.svc = fee.NewService(inmemdb.NewFeeRepository(db), child.NewService(childRepo, validate), usrSvc, f.mail, validate, conf)
	return f
}

func TestService_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	due := core.NewDate(2026, time.September, 15)

	t.Run("stationery is billed yearly", func(t *testing.T) {
		got, err := f.svc.Create(ctx, f.admin, fee.NewFee{
			ChildID: f.kid.ID, PaymentType: "Stationery", Month: "Eylül", Amount: 750, DueDate: due,
		})
		require.NoError(t, err)
		assert.Equal(t, "Yıllık", got.Month)
		assert.Equal(t, fee.TypeStationery, got.PaymentType)
		assert.Equal(t, fee.StatusPending, got.Status)
	})

	t.Run("tuition keeps its month", func(t *testing.T) {
		got, err := f.svc.Create(ctx, f.admin, fee.NewFee{
			ChildID: f.kid.ID, PaymentType: fee.TypeTuition, Month: "Eylül", Amount: 12000, DueDate: due,
		})
		require.NoError(t, err)
		assert.Equal(t, "Eylül", got.Month)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.admin, fee.NewFee{ChildID: f.kid.ID, PaymentType: "bribe", Month: "Ekim", Amount: 1, DueDate: due})
		assert.Error(t, err)
		_, err = f.svc.Create(ctx, f.admin, fee.NewFee{ChildID: f.kid.ID, PaymentType: fee.TypeMeal, Month: "Ekim", Amount: 0, DueDate: due})
		assert.Error(t, err)
	})

	t.Run("admins only", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.teacher, fee.NewFee{ChildID: f.kid.ID, PaymentType: fee.TypeMeal, Month: "Ekim", Amount: 1, DueDate: due})
		assert.True(t, core.IsPermissionDenied(err))
	})
}

func TestService_BulkCreate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	fees, err := f.svc.BulkCreate(ctx, f.admin, fee.BulkFee{
		ChildID:      f.kid.ID,
		PaymentType:  fee.TypeTuition,
		Months:       []string{"Ocak", "Şubat", "Mart", "Nisan"},
		Amount:       12000,
		FirstDueDate: core.NewDate(2027, time.January, 31),
	})
	require.NoError(t, err)
	require.Len(t, fees, 4)

	want := []core.Date{
		core.NewDate(2027, time.January, 31),
		core.NewDate(2027, time.February, 28),
		core.NewDate(2027, time.March, 31),
		core.NewDate(2027, time.April, 30),
	}
	for i, got := range fees {
		assert.Equal(t, want[i], got.DueDate, i)
	}
	assert.Equal(t, "Şubat", fees[1].Month)

	all, err := f.svc.Query(ctx, f.admin, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = f.svc.BulkCreate(ctx, f.admin, fee.BulkFee{ChildID: f.kid.ID, PaymentType: fee.TypeTuition, Amount: 1, FirstDueDate: want[0]})
	assert.Error(t, err)
}

func TestService_Query(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	due := core.NewDate(2026, time.October, 1)

	mine, err := f.svc.Create(ctx, f.admin, fee.NewFee{ChildID: f.kid.ID, PaymentType: fee.TypeMeal, Month: "Ekim", Amount: 900, DueDate: due})
	require.NoError(t, err)
	theirs, err := f.svc.Create(ctx, f.admin, fee.NewFee{ChildID: f.otherKid.ID, PaymentType: fee.TypeMeal, Month: "Ekim", Amount: 900, DueDate: due})
	require.NoError(t, err)

	list, err := f.svc.Query(ctx, f.parent, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	list, err = f.svc.Query(ctx, f.parent, &fee.QueryFilter{ChildIDs: []string{f.otherKid.ID}})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.Get(ctx, f.parent, theirs.ID)
	assert.Equal(t, fee.ErrNotFound, err)

	_, err = f.svc.Query(ctx, f.teacher, nil)
	assert.True(t, core.IsPermissionDenied(err))
}

func TestService_Transition(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	past := core.DateOf(time.Now().UTC().AddDate(0, 0, -3))
	late, err := f.svc.Create(ctx, f.admin, fee.NewFee{ChildID: f.kid.ID, PaymentType: fee.TypeTuition, Month: "Ekim", Amount: 100, DueDate: past})
	require.NoError(t, err)
	onTime, err := f.svc.Create(ctx, f.admin, fee.NewFee{ChildID: f.kid.ID, PaymentType: fee.TypeTuition, Month: "Kasım", Amount: 100, DueDate: core.DateOf(time.Now().UTC().AddDate(0, 1, 0))})
	require.NoError(t, err)

	n, err := f.svc.SweepOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	late, err = f.svc.Get(ctx, f.admin, late.ID)
	require.NoError(t, err)
	assert.Equal(t, fee.StatusOverdue, late.Status)

	_, err = f.svc.Transition(ctx, f.admin, onTime.ID, fee.Transition{Status: fee.StatusOverdue})
	assert.Error(t, err, "overdue is set by the sweep only")

	paid, err := f.svc.Transition(ctx, f.admin, late.ID, fee.Transition{Status: fee.StatusPaid})
	require.NoError(t, err)
	assert.True(t, paid.PaidAt.Valid)

	_, err = f.svc.Transition(ctx, f.admin, late.ID, fee.Transition{Status: fee.StatusCancelled})
	assert.Equal(t, fee.ErrInvalidTransition, err)

	_, err = f.svc.Transition(ctx, f.parent, onTime.ID, fee.Transition{Status: fee.StatusPaid})
	assert.True(t, core.IsPermissionDenied(err))

	sum, err := f.svc.Summarize(ctx, f.admin, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Total.Count)
	assert.Equal(t, 200.0, sum.Total.Amount)
	assert.Equal(t, 1, sum.ByStatus[fee.StatusPaid].Count)
	assert.Equal(t, 1, sum.ByStatus[fee.StatusPending].Count)
	assert.Zero(t, sum.ByStatus[fee.StatusOverdue].Count)
}

func TestService_Update(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	got, err := f.svc.Create(ctx, f.admin, fee.NewFee{ChildID: f.kid.ID, PaymentType: fee.TypeActivity, Month: "Ekim", Amount: 300, DueDate: core.NewDate(2026, time.October, 5)})
	require.NoError(t, err)

	pt, amount := fee.TypeStationery, 350.0
	got, err = f.svc.Update(ctx, f.admin, got.ID, fee.UpdateFee{PaymentType: &pt, Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, "Yıllık", got.Month)
	assert.Equal(t, 350.0, got.Amount)

	require.NoError(t, f.svc.Delete(ctx, f.admin, got.ID))
	_, err = f.svc.Get(ctx, f.admin, got.ID)
	assert.Equal(t, fee.ErrNotFound, err)
}

func TestService_SendPaymentReminder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	due, err := f.svc.Create(ctx, f.admin, fee.NewFee{ChildID: f.kid.ID, PaymentType: fee.TypeTuition, Month: "Ekim", Amount: 12000, DueDate: core.NewDate(2026, time.October, 5)})
	require.NoError(t, err)

	reminders, err := f.svc.SendPaymentReminder(ctx, f.admin, due.ID, fee.NewPaymentReminder{Message: "Please pay by Friday"})
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, f.parent.ID, reminders[0].ParentID)

	sent := f.mail.Messages()
	require.Len(t, sent, 1)
	assert.Equal(t, f.parent.Email, sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "12000.00")
	assert.Contains(t, sent[0].TextContent, "Please pay by Friday")

	stored, err := f.svc.QueryPaymentReminders(ctx, f.parent, due.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	_, err = f.svc.Transition(ctx, f.admin, due.ID, fee.Transition{Status: fee.StatusPaid})
	require.NoError(t, err)
	_, err = f.svc.SendPaymentReminder(ctx, f.admin, due.ID, fee.NewPaymentReminder{})
	assert.Equal(t, fee.ErrClosed, err)
}

func TestService_Export(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.BulkCreate(ctx, f.admin, fee.BulkFee{
		ChildID: f.kid.ID, PaymentType: fee.TypeMeal, Months: []string{"Ekim", "Kasım"}, Amount: 900,
		FirstDueDate: core.NewDate(2026, time.October, 1),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.svc.Export(ctx, f.admin, nil, &buf))

	xlsx, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer xlsx.Close()

	rows, err := xlsx.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Child", rows[0][0])
	assert.Equal(t, []string{"Ela", "meal", "Kasım", "900", "2026-11-01", "pending"}, rows[2][:6])
}
