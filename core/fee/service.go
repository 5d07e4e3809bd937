package fee

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/child"
	"github.com/trezcool/yuva/core/user"
)

var (
	ErrNotFound = core.NewNotFoundError("fee")
	ErrClosed   = core.NewFieldError("status", "fee is already paid or cancelled")
	ErrNoParent = core.NewFieldError("child_id", "child has no reachable parent")
)

type (
	Repository interface {
		// CreateFees inserts every fee in a single transaction.
		CreateFees(ctx context.Context, fees ...Fee) ([]Fee, error)
		GetFee(ctx context.Context, id string) (Fee, error)
		// QueryFees returns fees by due date. A nil Filter.ChildIDs means every child.
		QueryFees(ctx context.Context, filter *QueryFilter) ([]Fee, error)
		UpdateFee(ctx context.Context, f Fee) (Fee, error)
		DeleteFee(ctx context.Context, id string) error
		// MarkOverdue moves pending fees due before `today` to overdue and returns how many moved.
		MarkOverdue(ctx context.Context, today core.Date, at time.Time) (int, error)

		CreatePaymentReminders(ctx context.Context, reminders ...PaymentReminder) ([]PaymentReminder, error)
		QueryPaymentReminders(ctx context.Context, feeID string) ([]PaymentReminder, error)
	}

	// Directory looks up profiles.
	Directory interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo     Repository
		children child.Guard
		users    Directory
		mailSvc  core.EmailService
		validate *validator.Validate
		async    bool
		now      func() time.Time
	}
)

func NewService(
	repo Repository,
	children child.Guard,
	users Directory,
	mailSvc core.EmailService,
	validate *validator.Validate,
	conf *core.Config,
) *Service {
	return &Service{
		repo:     repo,
		children: children,
		users:    users,
		mailSvc:  mailSvc,
		validate: validate,
		async:    !conf.TestMode,
		now:      time.Now,
	}
}

func (svc *Service) newFee(actor user.User, nf NewFee, now time.Time) Fee {
	return Fee{
		ChildID:     nf.ChildID,
		PaymentType: nf.PaymentType,
		Month:       nf.Month,
		Amount:      nf.Amount,
		DueDate:     nf.DueDate,
		Status:      StatusPending,
		Note:        nf.Note,
		CreatedBy:   null.StringFrom(actor.ID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (svc *Service) Create(ctx context.Context, actor user.User, nf NewFee) (Fee, error) {
	if !actor.IsAdmin() {
		return Fee{}, core.ErrPermissionDenied
	}
	nf.clean()
	if err := svc.validate.Struct(nf); err != nil {
		return Fee{}, err
	}
	if _, err := svc.children.Authorize(ctx, actor, nf.ChildID); err != nil {
		return Fee{}, err
	}

	fees, err := svc.repo.CreateFees(ctx, svc.newFee(actor, nf, svc.now().UTC()))
	if err != nil {
		return Fee{}, err
	}
	return fees[0], nil
}

// BulkCreate inserts one fee per selected month, all or nothing.
func (svc *Service) BulkCreate(ctx context.Context, actor user.User, bf BulkFee) ([]Fee, error) {
	if !actor.IsAdmin() {
		return nil, core.ErrPermissionDenied
	}
	bf.clean()
	if err := svc.validate.Struct(bf); err != nil {
		return nil, err
	}
	if _, err := svc.children.Authorize(ctx, actor, bf.ChildID); err != nil {
		return nil, err
	}

	now := svc.now().UTC()
	nfs := bf.fees()
	fees := make([]Fee, 0, len(nfs))
	for _, nf := range nfs {
		fees = append(fees, svc.newFee(actor, nf, now))
	}
	return svc.repo.CreateFees(ctx, fees...)
}

func (svc *Service) Get(ctx context.Context, actor user.User, id string) (Fee, error) {
	if !(actor.IsAdmin() || actor.IsParent()) {
		return Fee{}, core.ErrPermissionDenied
	}
	f, err := svc.repo.GetFee(ctx, id)
	if err != nil {
		return Fee{}, err
	}
	if _, err = svc.children.Authorize(ctx, actor, f.ChildID); err != nil {
		if core.IsPermissionDenied(err) {
			return Fee{}, ErrNotFound
		}
		return Fee{}, err
	}
	return f, nil
}

// Query lists fees; parents only get their own children's.
func (svc *Service) Query(ctx context.Context, actor user.User, filter *QueryFilter) ([]Fee, error) {
	if !(actor.IsAdmin() || actor.IsParent()) {
		return nil, core.ErrPermissionDenied
	}
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.clean()

	if !actor.IsAdmin() {
		ids, _, err := svc.children.VisibleIDs(ctx, actor)
		if err != nil {
			return nil, err
		}
		filter.ChildIDs = core.RestrictIDs(filter.ChildIDs, ids)
	}
	return svc.repo.QueryFees(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, actor user.User, id string, uf UpdateFee) (Fee, error) {
	if !actor.IsAdmin() {
		return Fee{}, core.ErrPermissionDenied
	}
	uf.clean()
	if err := svc.validate.Struct(uf); err != nil {
		return Fee{}, err
	}
	f, err := svc.repo.GetFee(ctx, id)
	if err != nil {
		return Fee{}, err
	}

	uf.apply(&f)
	f.UpdatedAt = svc.now().UTC()
	return svc.repo.UpdateFee(ctx, f)
}

// Transition marks a fee paid or cancelled.
func (svc *Service) Transition(ctx context.Context, actor user.User, id string, tr Transition) (Fee, error) {
	if !actor.IsAdmin() {
		return Fee{}, core.ErrPermissionDenied
	}
	tr.Status = core.CleanString(tr.Status, true /* lower */)
	if err := svc.validate.Struct(tr); err != nil {
		return Fee{}, err
	}
	f, err := svc.repo.GetFee(ctx, id)
	if err != nil {
		return Fee{}, err
	}
	if err = checkTransition(f.Status, tr.Status); err != nil {
		return Fee{}, err
	}

	now := svc.now().UTC()
	f.Status = tr.Status
	if tr.Status == StatusPaid {
		f.PaidAt = null.TimeFrom(now)
	}
	if note := core.CleanString(tr.Note); note != "" {
		f.Note = note
	}
	f.UpdatedAt = now
	return svc.repo.UpdateFee(ctx, f)
}

func (svc *Service) Delete(ctx context.Context, actor user.User, id string) error {
	if !actor.IsAdmin() {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteFee(ctx, id)
}

// Summarize totals the fees matching `filter` per status.
func (svc *Service) Summarize(ctx context.Context, actor user.User, filter *QueryFilter) (Summary, error) {
	fees, err := svc.Query(ctx, actor, filter)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{ByStatus: make(map[string]StatusTotal, 4)}
	for _, status := range []string{StatusPending, StatusOverdue, StatusPaid, StatusCancelled} {
		sum.ByStatus[status] = StatusTotal{}
	}
	for _, f := range fees {
		st := sum.ByStatus[f.Status]
		st.Count++
		st.Amount += f.Amount
		sum.ByStatus[f.Status] = st

		sum.Total.Count++
		sum.Total.Amount += f.Amount
	}
	return sum, nil
}

// SweepOverdue flags the pending fees whose due date has passed.
func (svc *Service) SweepOverdue(ctx context.Context) (int, error) {
	now := svc.now().UTC()
	n, err := svc.repo.MarkOverdue(ctx, core.DateOf(now), now)
	if err != nil {
		return 0, errors.Wrap(err, "marking overdue fees")
	}
	return n, nil
}
