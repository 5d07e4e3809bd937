package fee

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/yuva/core"
)

const (
	TypeTuition    = "tuition"
	TypeStationery = "stationery"
	TypeMeal       = "meal"
	TypeTransport  = "transport"
	TypeActivity   = "activity"
	TypeOther      = "other"

	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusOverdue   = "overdue"
	StatusCancelled = "cancelled"

	// stationery is billed once a year
	stationeryMonth = "Yıllık"
)

type Fee struct {
	ID          string      `db:"id" json:"id"`
	ChildID     string      `db:"child_id" json:"child_id"`
	PaymentType string      `db:"payment_type" json:"payment_type"`
	Month       string      `db:"month" json:"month"`
	Amount      float64     `db:"amount" json:"amount"`
	DueDate     core.Date   `db:"due_date" json:"due_date"`
	Status      string      `db:"status" json:"status"`
	PaidAt      null.Time   `db:"paid_at" json:"paid_at"`
	Note        string      `db:"note" json:"note"`
	CreatedBy   null.String `db:"created_by" json:"created_by"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// Open reports whether the fee still awaits payment.
func (f Fee) Open() bool {
	return f.Status == StatusPending || f.Status == StatusOverdue
}

type PaymentReminder struct {
	ID        string      `db:"id" json:"id"`
	FeeID     string      `db:"fee_id" json:"fee_id"`
	ParentID  string      `db:"parent_id" json:"parent_id"`
	Message   string      `db:"message" json:"message"`
	SentAt    time.Time   `db:"sent_at" json:"sent_at"`
	CreatedBy null.String `db:"created_by" json:"created_by"`
}

type NewFee struct {
	ChildID     string    `json:"child_id" validate:"required,uuid"`
	PaymentType string    `json:"payment_type" validate:"required,oneof=tuition stationery meal transport activity other"`
	Month       string    `json:"month" validate:"required"`
	Amount      float64   `json:"amount" validate:"gt=0"`
	DueDate     core.Date `json:"due_date" validate:"required"`
	Note        string    `json:"note"`
}

func (nf *NewFee) clean() {
	nf.ChildID = core.CleanString(nf.ChildID)
	nf.PaymentType = core.CleanString(nf.PaymentType, true /* lower */)
	nf.Month = core.CleanString(nf.Month)
	nf.Note = core.CleanString(nf.Note)
	if nf.PaymentType == TypeStationery {
		nf.Month = stationeryMonth
	}
}

// BulkFee adds one fee per month; the i-th fee is due i calendar months after FirstDueDate.
type BulkFee struct {
	ChildID      string    `json:"child_id" validate:"required,uuid"`
	PaymentType  string    `json:"payment_type" validate:"required,oneof=tuition stationery meal transport activity other"`
	Months       []string  `json:"months" validate:"required,min=1,max=24,dive,required"`
	Amount       float64   `json:"amount" validate:"gt=0"`
	FirstDueDate core.Date `json:"first_due_date" validate:"required"`
	Note         string    `json:"note"`
}

func (bf *BulkFee) clean() {
	bf.ChildID = core.CleanString(bf.ChildID)
	bf.PaymentType = core.CleanString(bf.PaymentType, true /* lower */)
	bf.Note = core.CleanString(bf.Note)
	for i := range bf.Months {
		bf.Months[i] = core.CleanString(bf.Months[i])
		if bf.PaymentType == TypeStationery {
			bf.Months[i] = stationeryMonth
		}
	}
}

// fees expands the bulk form into its rows.
func (bf BulkFee) fees() []NewFee {
	fees := make([]NewFee, 0, len(bf.Months))
	for i, month := range bf.Months {
		fees = append(fees, NewFee{
			ChildID:     bf.ChildID,
			PaymentType: bf.PaymentType,
			Month:       month,
			Amount:      bf.Amount,
			DueDate:     bf.FirstDueDate.AddMonths(i),
			Note:        bf.Note,
		})
	}
	return fees
}

type UpdateFee struct {
	PaymentType *string    `json:"payment_type" validate:"omitempty,oneof=tuition stationery meal transport activity other"`
	Month       *string    `json:"month" validate:"omitempty,min=1"`
	Amount      *float64   `json:"amount" validate:"omitempty,gt=0"`
	DueDate     *core.Date `json:"due_date"`
	Note        *string    `json:"note"`
}

func (uf *UpdateFee) clean() {
	if uf.PaymentType != nil {
		pt := core.CleanString(*uf.PaymentType, true /* lower */)
		uf.PaymentType = &pt
	}
	if uf.Month != nil {
		m := core.CleanString(*uf.Month)
		uf.Month = &m
	}
	if uf.Note != nil {
		n := core.CleanString(*uf.Note)
		uf.Note = &n
	}
}

func (uf UpdateFee) apply(f *Fee) {
	if uf.PaymentType != nil {
		f.PaymentType = *uf.PaymentType
	}
	if uf.Month != nil {
		f.Month = *uf.Month
	}
	if uf.Amount != nil {
		f.Amount = *uf.Amount
	}
	if uf.DueDate != nil && !uf.DueDate.IsZero() {
		f.DueDate = *uf.DueDate
	}
	if uf.Note != nil {
		f.Note = *uf.Note
	}
	if f.PaymentType == TypeStationery {
		f.Month = stationeryMonth
	}
}

// Transition records a payment or a cancellation.
type Transition struct {
	Status string `json:"status" validate:"required,oneof=paid cancelled"`
	Note   string `json:"note"`
}

type NewPaymentReminder struct {
	Message string `json:"message" validate:"max=2000"`
}

type QueryFilter struct {
	ChildIDs    []string  `query:"child_id"`
	Status      string    `query:"status"`
	PaymentType string    `query:"payment_type"`
	Month       string    `query:"month"`
	From        core.Date `query:"from"` // due date range
	To          core.Date `query:"to"`
}

func (qf *QueryFilter) clean() {
	qf.ChildIDs = core.CleanStrings(qf.ChildIDs)
	if len(qf.ChildIDs) == 0 {
		qf.ChildIDs = nil
	}
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.PaymentType = core.CleanString(qf.PaymentType, true /* lower */)
	qf.Month = core.CleanString(qf.Month)
}

// StatusTotal is the number of fees and their total amount.
type StatusTotal struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

type Summary struct {
	Total    StatusTotal            `json:"total"`
	ByStatus map[string]StatusTotal `json:"by_status"`
}
