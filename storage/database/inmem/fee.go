package inmemdb

import (
	"context"
	"time"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/fee"
)

type feeRepository struct {
	db        *table[fee.Fee]
	reminders *table[fee.PaymentReminder]
}

var _ fee.Repository = (*feeRepository)(nil) // interface compliance check

func NewFeeRepository(db *DB) fee.Repository {
	return &feeRepository{db: db.fees, reminders: db.paymentReminders}
}

func (repo *feeRepository) CreateFees(_ context.Context, fees ...fee.Fee) ([]fee.Fee, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	created := make([]fee.Fee, 0, len(fees))
	for _, f := range fees {
		f.ID = newID()
		repo.db.insertLocked(f.ID, f)
		created = append(created, f)
	}
	return created, nil
}

func (repo *feeRepository) GetFee(_ context.Context, id string) (fee.Fee, error) {
	if f, ok := repo.db.get(id); ok {
		return f, nil
	}
	return fee.Fee{}, fee.ErrNotFound
}

func (repo *feeRepository) QueryFees(_ context.Context, filter *fee.QueryFilter) ([]fee.Fee, error) {
	rows := repo.db.filter(func(f fee.Fee) bool {
		if filter.ChildIDs != nil && !in(f.ChildID, filter.ChildIDs) {
			return false
		}
		if filter.Status != "" && f.Status != filter.Status {
			return false
		}
		if filter.PaymentType != "" && f.PaymentType != filter.PaymentType {
			return false
		}
		if filter.Month != "" && f.Month != filter.Month {
			return false
		}
		if !filter.From.IsZero() && f.DueDate.Before(filter.From) {
			return false
		}
		if !filter.To.IsZero() && f.DueDate.After(filter.To) {
			return false
		}
		return true
	})
	return sorted(rows, func(a, b fee.Fee) bool { return a.DueDate.Before(b.DueDate) }), nil
}

func (repo *feeRepository) UpdateFee(_ context.Context, f fee.Fee) (fee.Fee, error) {
	if !repo.db.update(f.ID, f) {
		return fee.Fee{}, fee.ErrNotFound
	}
	return f, nil
}

func (repo *feeRepository) DeleteFee(_ context.Context, id string) error {
	if repo.db.delete(id) == 0 {
		return fee.ErrNotFound
	}
	repo.reminders.mu.Lock()
	defer repo.reminders.mu.Unlock()
	var ids []string
	for rid, r := range repo.reminders.rows {
		if r.FeeID == id {
			ids = append(ids, rid)
		}
	}
	repo.reminders.deleteLocked(ids...)
	return nil
}

func (repo *feeRepository) MarkOverdue(_ context.Context, today core.Date, at time.Time) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var n int
	for id, f := range repo.db.rows {
		if f.Status == fee.StatusPending && f.DueDate.Before(today) {
			f.Status = fee.StatusOverdue
			f.UpdatedAt = at
			repo.db.rows[id] = f
			n++
		}
	}
	return n, nil
}

func (repo *feeRepository) CreatePaymentReminders(_ context.Context, reminders ...fee.PaymentReminder) ([]fee.PaymentReminder, error) {
	repo.reminders.mu.Lock()
	defer repo.reminders.mu.Unlock()

	created := make([]fee.PaymentReminder, 0, len(reminders))
	for _, r := range reminders {
		r.ID = newID()
		repo.reminders.insertLocked(r.ID, r)
		created = append(created, r)
	}
	return created, nil
}

func (repo *feeRepository) QueryPaymentReminders(_ context.Context, feeID string) ([]fee.PaymentReminder, error) {
	rows := repo.reminders.filter(func(r fee.PaymentReminder) bool { return r.FeeID == feeID })
	return sorted(rows, func(a, b fee.PaymentReminder) bool { return a.SentAt.After(b.SentAt) }), nil
}
