package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/fee"
)

const (
	feeTable             = "tuition_fee"
	paymentReminderTable = "payment_reminder"
)

var (
	feeColumns = columns{
		"id", "child_id", "payment_type", "month", "amount", "due_date", "status", "paid_at", "note", "created_by",
		"created_at", "updated_at",
	}
	paymentReminderColumns = columns{"id", "fee_id", "parent_id", "message", "sent_at", "created_by"}
)

type feeRepository struct {
	db *sqlx.DB
}

var _ fee.Repository = (*feeRepository)(nil) // interface compliance check

func NewFeeRepository(db *sqlx.DB) fee.Repository {
	return &feeRepository{db: db}
}

// CreateFees inserts every fee or none.
func (repo *feeRepository) CreateFees(ctx context.Context, fees ...fee.Fee) (created []fee.Fee, err error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	created = make([]fee.Fee, 0, len(fees))
	for _, f := range fees {
		f.ID = newID()
		if err = insertRow(ctx, tx, feeColumns, feeTable, f); err != nil {
			return nil, err
		}
		created = append(created, f)
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing fees")
	}
	return created, nil
}

func (repo *feeRepository) GetFee(ctx context.Context, id string) (fee.Fee, error) {
	return getByID[fee.Fee](ctx, repo.db, feeColumns, feeTable, id, fee.ErrNotFound)
}

func (repo *feeRepository) QueryFees(ctx context.Context, filter *fee.QueryFilter) ([]fee.Fee, error) {
	w := new(where)
	if filter.ChildIDs != nil {
		w.in("child_id", filter.ChildIDs)
	}
	if filter.Status != "" {
		w.and("status = ?", filter.Status)
	}
	if filter.PaymentType != "" {
		w.and("payment_type = ?", filter.PaymentType)
	}
	if filter.Month != "" {
		w.and("month = ?", filter.Month)
	}
	if !filter.From.IsZero() {
		w.and("due_date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		w.and("due_date <= ?", filter.To)
	}
	return selectWhere[fee.Fee](ctx, repo.db, w, feeColumns.selectFrom(feeTable), "ORDER BY due_date, created_at", "querying fees")
}

func (repo *feeRepository) UpdateFee(ctx context.Context, f fee.Fee) (fee.Fee, error) {
	if err := updateRow(ctx, repo.db, feeColumns, feeTable, f, fee.ErrNotFound); err != nil {
		return fee.Fee{}, err
	}
	return f, nil
}

func (repo *feeRepository) DeleteFee(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, feeTable, id, fee.ErrNotFound)
}

func (repo *feeRepository) MarkOverdue(ctx context.Context, today core.Date, at time.Time) (int, error) {
	res, err := repo.db.ExecContext(ctx,
		"UPDATE tuition_fee SET status = $1, updated_at = $2 WHERE status = $3 AND due_date < $4",
		fee.StatusOverdue, at, fee.StatusPending, today)
	if err != nil {
		return 0, errors.Wrap(err, "marking fees overdue")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "reading affected rows")
	}
	return int(n), nil
}

func (repo *feeRepository) CreatePaymentReminders(ctx context.Context, reminders ...fee.PaymentReminder) ([]fee.PaymentReminder, error) {
	if len(reminders) == 0 {
		return []fee.PaymentReminder{}, nil
	}
	created := make([]fee.PaymentReminder, 0, len(reminders))
	for _, r := range reminders {
		r.ID = newID()
		created = append(created, r)
	}
	// batch insert: sqlx expands a slice of structs into one VALUES list
	if _, err := repo.db.NamedExecContext(ctx, paymentReminderColumns.insert(paymentReminderTable), created); err != nil {
		return nil, errors.Wrap(err, "inserting payment reminders")
	}
	return created, nil
}

func (repo *feeRepository) QueryPaymentReminders(ctx context.Context, feeID string) ([]fee.PaymentReminder, error) {
	w := new(where)
	w.and("fee_id::text = ?", feeID)
	return selectWhere[fee.PaymentReminder](ctx, repo.db, w, paymentReminderColumns.selectFrom(paymentReminderTable),
		"ORDER BY sent_at DESC", "querying payment reminders")
}
