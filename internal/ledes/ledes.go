// Package ledes builds and validates LEDES 1998B invoice files: the
// pipe-delimited 24-field legal e-billing format.
package ledes

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/billexact/billexact/internal/model"
)

// Fields1998B is the canonical LEDES 1998B column order.
var Fields1998B = []string{
	"INVOICE_DATE", "INVOICE_NUMBER", "CLIENT_ID", "LAW_FIRM_MATTER_ID", "INVOICE_TOTAL",
	"BILLING_START_DATE", "BILLING_END_DATE", "INVOICE_DESCRIPTION", "LINE_ITEM_NUMBER",
	"EXP/FEE/INV_ADJ_TYPE", "LINE_ITEM_NUMBER_OF_UNITS", "LINE_ITEM_ADJUSTMENT_AMOUNT",
	"LINE_ITEM_TOTAL", "LINE_ITEM_DATE", "LINE_ITEM_TASK_CODE", "LINE_ITEM_EXPENSE_CODE",
	"LINE_ITEM_ACTIVITY_CODE", "TIMEKEEPER_ID", "LINE_ITEM_DESCRIPTION", "LAW_FIRM_ID",
	"LINE_ITEM_UNIT_COST", "TIMEKEEPER_NAME", "TIMEKEEPER_CLASSIFICATION", "CLIENT_MATTER_ID",
}

// Line is one fee line item with all 24 LEDES 1998B fields.
type Line struct {
	InvoiceDate        string
	InvoiceNumber      string
	ClientID           string
	LawFirmMatterID    string
	InvoiceTotal       string
	BillingStartDate   string
	BillingEndDate     string
	InvoiceDescription string
	LineItemNumber     int
	AdjType            string
	Units              decimal.Decimal
	AdjustmentAmount   decimal.Decimal
	Total              decimal.Decimal
	LineItemDate       string
	TaskCode           string
	ExpenseCode        string
	ActivityCode       string
	TimekeeperID       string
	Description        string
	LawFirmID          string
	UnitCost           decimal.Decimal
	TimekeeperName     string
	TimekeeperClass    string
	ClientMatterID     string
}

// record renders the line in canonical field order.
func (l Line) record() []string {
	return []string{
		l.InvoiceDate, l.InvoiceNumber, l.ClientID, l.LawFirmMatterID, l.InvoiceTotal,
		l.BillingStartDate, l.BillingEndDate, l.InvoiceDescription, fmt.Sprintf("%d", l.LineItemNumber),
		l.AdjType, l.Units.StringFixed(2), l.AdjustmentAmount.StringFixed(2),
		l.Total.StringFixed(2), l.LineItemDate, l.TaskCode, l.ExpenseCode,
		l.ActivityCode, l.TimekeeperID, l.Description, l.LawFirmID,
		l.UnitCost.StringFixed(2), l.TimekeeperName, l.TimekeeperClass, l.ClientMatterID,
	}
}

// Invoice identifies one billing run over a matter and date range.
type Invoice struct {
	Number      string
	Description string
	Start       time.Time
	End         time.Time
	Matter      model.Matter
}

// fmtDate renders a date as YYYYMMDD per 1998B.
func fmtDate(t time.Time) string {
	return t.Format("20060102")
}

// sanitize keeps descriptions out of the delimiter's way.
func sanitize(s string) string {
	return strings.ReplaceAll(s, "|", " ")
}

// BuildLines converts entries into LEDES fee lines. Every entry must carry a
// resolvable timekeeper; the invoice total is backfilled on all lines once
// known. Entries without a UTBMS task code are exported with an empty task
// code field (validation does not require one).
func BuildLines(inv Invoice, entries []model.TimeEntry, timekeepers map[string]model.Timekeeper) ([]Line, error) {
	invoiceDate := fmtDate(inv.End)
	desc := inv.Description
	if desc == "" {
		desc = inv.Matter.Description
	}

	lines := make([]Line, 0, len(entries))
	total := decimal.Zero
	for i, e := range entries {
		tk, ok := timekeepers[e.TimekeeperID]
		if !ok {
			return nil, fmt.Errorf("missing timekeeper %q: add it with a non-zero rate", e.TimekeeperID)
		}

		units := decimal.NewFromFloat(e.DurationHours)
		adj := decimal.Zero
		lineTotal := units.Mul(tk.Rate).Add(adj).Round(2)
		total = total.Add(lineTotal)

		lineDate := ""
		if e.WorkDate != nil {
			lineDate = fmtDate(*e.WorkDate)
		}

		lines = append(lines, Line{
			InvoiceDate:        invoiceDate,
			InvoiceNumber:      inv.Number,
			ClientID:           inv.Matter.ClientID,
			LawFirmMatterID:    inv.Matter.LawFirmMatterID,
			BillingStartDate:   fmtDate(inv.Start),
			BillingEndDate:     fmtDate(inv.End),
			InvoiceDescription: sanitize(desc),
			LineItemNumber:     i + 1,
			AdjType:            "F",
			Units:              units,
			AdjustmentAmount:   adj,
			Total:              lineTotal,
			LineItemDate:       lineDate,
			TaskCode:           e.UTBMSCode,
			ActivityCode:       e.ActivityCode,
			TimekeeperID:       e.TimekeeperID,
			Description:        sanitize(e.Description),
			LawFirmID:          inv.Matter.LawFirmID,
			UnitCost:           tk.Rate,
			TimekeeperName:     tk.Name,
			TimekeeperClass:    tk.Classification,
			ClientMatterID:     inv.Matter.ClientMatterID,
		})
	}

	invoiceTotal := total.StringFixed(2)
	for i := range lines {
		lines[i].InvoiceTotal = invoiceTotal
	}
	return lines, nil
}

// Validate checks every line against the 1998B constraints: timekeeper
// present, positive units and rate, total = units*rate+adjustment, and the
// required header fields. It returns one message per violation.
func Validate(lines []Line) []string {
	var errs []string
	for i, l := range lines {
		n := i + 1
		if l.TimekeeperID == "" {
			errs = append(errs, fmt.Sprintf("Line %d: TIMEKEEPER_ID is required", n))
		}
		if !l.Units.IsPositive() {
			errs = append(errs, fmt.Sprintf("Line %d: LINE_ITEM_NUMBER_OF_UNITS > 0", n))
		}
		if !l.UnitCost.IsPositive() {
			errs = append(errs, fmt.Sprintf("Line %d: LINE_ITEM_UNIT_COST > 0", n))
		}
		want := l.Units.Mul(l.UnitCost).Add(l.AdjustmentAmount).Round(2)
		if !l.Total.Equal(want) {
			errs = append(errs, fmt.Sprintf("Line %d: LINE_ITEM_TOTAL must equal units*rate+adj", n))
		}
		for _, f := range []struct{ name, v string }{
			{"INVOICE_DATE", l.InvoiceDate},
			{"INVOICE_NUMBER", l.InvoiceNumber},
			{"CLIENT_ID", l.ClientID},
			{"LAW_FIRM_MATTER_ID", l.LawFirmMatterID},
			{"LAW_FIRM_ID", l.LawFirmID},
			{"CLIENT_MATTER_ID", l.ClientMatterID},
		} {
			if strings.TrimSpace(f.v) == "" {
				errs = append(errs, fmt.Sprintf("Line %d: %s is required", n, f.name))
			}
		}
	}
	return errs
}

// Write validates and serializes lines as a pipe-delimited 1998B document
// with a header row.
func Write(w io.Writer, lines []Line) error {
	if errs := Validate(lines); len(errs) > 0 {
		return fmt.Errorf("LEDES validation failed:\n%s", strings.Join(errs, "\n"))
	}

	cw := csv.NewWriter(w)
	cw.Comma = '|'
	if err := cw.Write(Fields1998B); err != nil {
		return fmt.Errorf("writing LEDES header: %w", err)
	}
	for _, l := range lines {
		if err := cw.Write(l.record()); err != nil {
			return fmt.Errorf("writing LEDES line %d: %w", l.LineItemNumber, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
