package paysheet

import (
	"strings"

	"github.com/denismitr/paysheet/internal/xlsx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Header is row 0 of every dataset sheet.
var Header = []string{"Name", "LastName", "Company", "Amount", "PaymentMethod", "Date"}

const (
	colFirstName = iota
	colLastName
	colCompany
	colAmount
	colPaymentMethod
	colTimestamp
)

var minAmount = decimal.RequireFromString("0.01")

// PaymentRecord is one submitted payment.
type PaymentRecord struct {
	FirstName     string          `json:"firstName"`
	LastName      string          `json:"lastName"`
	Company       string          `json:"company"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
	Timestamp     string          `json:"timestamp"`
}

// Equal compares two records field by field, amounts numerically.
func (r PaymentRecord) Equal(other PaymentRecord) bool {
	return r.FirstName == other.FirstName &&
		r.LastName == other.LastName &&
		r.Company == other.Company &&
		r.Amount.Equal(other.Amount) &&
		r.PaymentMethod == other.PaymentMethod &&
		r.Timestamp == other.Timestamp
}

type recordField struct {
	name  string
	value string
}

// Validate reports the first field that a submission form would have rejected,
// and any value a workbook cell could not hold unchanged.
func (r PaymentRecord) Validate() error {
	required := []recordField{
		{"firstName", r.FirstName},
		{"lastName", r.LastName},
		{"company", r.Company},
		{"paymentMethod", r.PaymentMethod},
	}

	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return errors.Wrapf(ErrInvalidRecord, "%s is empty", f.name)
		}
	}

	for _, f := range append(required, recordField{"timestamp", r.Timestamp}) {
		if err := xlsx.CheckText(f.value); err != nil {
			return errors.Wrapf(ErrInvalidRecord, "%s: %v", f.name, err)
		}
	}

	if r.Amount.LessThan(minAmount) {
		return errors.Wrapf(ErrInvalidRecord, "amount %s is below %s", r.Amount.String(), minAmount.String())
	}

	// amounts are stored as numeric cells, which hold a float64
	if !decimal.NewFromFloat(r.Amount.InexactFloat64()).Equal(r.Amount) {
		return errors.Wrapf(ErrInvalidRecord, "amount %s cannot be stored without rounding", r.Amount.String())
	}

	return nil
}

func (r PaymentRecord) row() xlsx.Row {
	return xlsx.Row{
		xlsx.Text(r.FirstName),
		xlsx.Text(r.LastName),
		xlsx.Text(r.Company),
		xlsx.Number(r.Amount.InexactFloat64()),
		xlsx.Text(r.PaymentMethod),
		xlsx.Text(r.Timestamp),
	}
}

// recordFromRow maps a data row back to a record. Absent cells become empty
// strings and a zero amount.
func recordFromRow(row xlsx.Row) PaymentRecord {
	text := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return row[i].String()
	}

	return PaymentRecord{
		FirstName:     text(colFirstName),
		LastName:      text(colLastName),
		Company:       text(colCompany),
		Amount:        amountFromRow(row),
		PaymentMethod: text(colPaymentMethod),
		Timestamp:     text(colTimestamp),
	}
}

func amountFromRow(row xlsx.Row) decimal.Decimal {
	if colAmount >= len(row) {
		return decimal.Zero
	}

	c := row[colAmount]
	if f, ok := c.Float(); ok {
		return decimal.NewFromFloat(f)
	}

	d, err := decimal.NewFromString(strings.TrimSpace(c.String()))
	if err != nil {
		return decimal.Zero
	}

	return d
}

func newDatasetSheet(name string) xlsx.Sheet {
	return xlsx.NewSheet(name, Header...)
}
