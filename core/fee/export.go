package fee

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/user"
)

const exportSheet = "Sheet1" // excelize's default sheet

var exportHeader = []interface{}{"Child", "Payment type", "Month", "Amount", "Due date", "Status", "Paid at", "Note"}

// Export writes the fees matching `filter` as an xlsx workbook.
func (svc *Service) Export(ctx context.Context, actor user.User, filter *QueryFilter, w io.Writer) error {
	fees, err := svc.Query(ctx, actor, filter)
	if err != nil {
		return err
	}

	names := make(map[string]string)
	for _, f := range fees {
		if _, ok := names[f.ChildID]; ok {
			continue
		}
		c, err := svc.children.Authorize(ctx, actor, f.ChildID)
		if err != nil && !core.IsNotFound(err) {
			return err
		}
		names[f.ChildID] = c.Name
	}

	xlsx := excelize.NewFile()
	defer func() { _ = xlsx.Close() }()

	if err = xlsx.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for i, f := range fees {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "computing cell name")
		}
		var paidAt string
		if f.PaidAt.Valid {
			paidAt = f.PaidAt.Time.Format(core.DateLayout)
		}
		row := []interface{}{names[f.ChildID], f.PaymentType, f.Month, f.Amount, f.DueDate.String(), f.Status, paidAt, f.Note}
		if err = xlsx.SetSheetRow(exportSheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}

	if _, err = xlsx.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}
