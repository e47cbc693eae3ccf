package paysheet

import (
	"testing"

	"github.com/denismitr/paysheet/internal/xlsx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validRecord() PaymentRecord {
	return PaymentRecord{
		FirstName:     "Ana",
		LastName:      "Gomez",
		Company:       "Empresa A",
		Amount:        decimal.RequireFromString("150.50"),
		PaymentMethod: "Card",
		Timestamp:     "01/01/2024 10:00:00",
	}
}

func TestPaymentRecord_Validate(t *testing.T) {
	tt := []struct {
		name   string
		mutate func(r *PaymentRecord)
		valid  bool
	}{
		{name: "valid", mutate: func(r *PaymentRecord) {}, valid: true},
		{name: "minimum amount", mutate: func(r *PaymentRecord) { r.Amount = decimal.RequireFromString("0.01") }, valid: true},
		{name: "empty timestamp is allowed", mutate: func(r *PaymentRecord) { r.Timestamp = "" }, valid: true},
		{name: "blank first name", mutate: func(r *PaymentRecord) { r.FirstName = "  " }},
		{name: "empty last name", mutate: func(r *PaymentRecord) { r.LastName = "" }},
		{name: "empty company", mutate: func(r *PaymentRecord) { r.Company = "" }},
		{name: "empty payment method", mutate: func(r *PaymentRecord) { r.PaymentMethod = "" }},
		{name: "zero amount", mutate: func(r *PaymentRecord) { r.Amount = decimal.Zero }},
		{name: "below minimum", mutate: func(r *PaymentRecord) { r.Amount = decimal.RequireFromString("0.009") }},
		{name: "negative amount", mutate: func(r *PaymentRecord) { r.Amount = decimal.RequireFromString("-5") }},
		{name: "large two decimal amount", mutate: func(r *PaymentRecord) { r.Amount = decimal.RequireFromString("1234567.89") }, valid: true},
		{name: "amount a float cannot hold", mutate: func(r *PaymentRecord) { r.Amount = decimal.RequireFromString("99999999999999999.99") }},
		{name: "amount with too many digits", mutate: func(r *PaymentRecord) { r.Amount = decimal.RequireFromString("1.00000000000000000001") }},
		{name: "tab and newline in company", mutate: func(r *PaymentRecord) { r.Company = "Empresa\tA\nSur" }, valid: true},
		{name: "control character in last name", mutate: func(r *PaymentRecord) { r.LastName = "Go\x01mez" }},
		{name: "invalid utf-8 in company", mutate: func(r *PaymentRecord) { r.Company = "Empresa \xff" }},
		{name: "noncharacter in payment method", mutate: func(r *PaymentRecord) { r.PaymentMethod = "Card\uFFFE" }},
		{name: "control character in timestamp", mutate: func(r *PaymentRecord) { r.Timestamp = "01/01/2024\x00" }},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			r := validRecord()
			tc.mutate(&r)

			err := r.Validate()
			if tc.valid {
				assert.NoError(t, err)
				return
			}

			assert.True(t, errors.Is(err, ErrInvalidRecord), "got %v", err)
		})
	}
}

func TestPaymentRecord_Equal(t *testing.T) {
	a := validRecord()
	b := validRecord()
	b.Amount = decimal.NewFromFloat(150.5)

	assert.True(t, a.Equal(b))

	b.Company = "Empresa B"
	assert.False(t, a.Equal(b))
}

func TestPaymentRecord_RowMapping(t *testing.T) {
	r := validRecord()
	row := r.row()

	assert.Equal(t, xlsx.Row{
		xlsx.Text("Ana"),
		xlsx.Text("Gomez"),
		xlsx.Text("Empresa A"),
		xlsx.Number(150.5),
		xlsx.Text("Card"),
		xlsx.Text("01/01/2024 10:00:00"),
	}, row)

	assert.True(t, r.Equal(recordFromRow(row)))
	assert.Equal(t, PaymentRecord{Amount: decimal.Zero}, recordFromRow(nil))
}
