package form

import (
	"net/url"
	"testing"
	"time"

	"github.com/denismitr/paysheet"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() Input {
	return Input{
		FirstName:     "Ana",
		LastName:      "Gomez",
		Company:       "Empresa A",
		Amount:        "150.50",
		PaymentMethod: "Card",
	}
}

func TestValidate(t *testing.T) {
	tt := []struct {
		name     string
		mutate   func(in *Input)
		problems []string
	}{
		{name: "valid", mutate: func(in *Input) {}},
		{name: "free text company", mutate: func(in *Input) { in.Company = "Acme" }},
		{name: "comma decimal", mutate: func(in *Input) { in.Amount = "150,50" }},
		{name: "minimum amount", mutate: func(in *Input) { in.Amount = "0.01" }},
		{name: "blank first name", mutate: func(in *Input) { in.FirstName = "   " }, problems: []string{"firstName"}},
		{name: "missing last name", mutate: func(in *Input) { in.LastName = "" }, problems: []string{"lastName"}},
		{name: "missing company", mutate: func(in *Input) { in.Company = "" }, problems: []string{"company"}},
		{name: "missing amount", mutate: func(in *Input) { in.Amount = "" }, problems: []string{"amount"}},
		{name: "amount not a number", mutate: func(in *Input) { in.Amount = "lots" }, problems: []string{"amount"}},
		{name: "amount too small", mutate: func(in *Input) { in.Amount = "0.001" }, problems: []string{"amount"}},
		{name: "negative amount", mutate: func(in *Input) { in.Amount = "-10" }, problems: []string{"amount"}},
		{
			name:     "everything missing",
			mutate:   func(in *Input) { *in = Input{} },
			problems: []string{"amount", "company", "firstName", "lastName"},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			_, err := Validate(in)
			if len(tc.problems) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.problems, verr.Problems.Fields())
			assert.Contains(t, err.Error(), Message)
		})
	}
}

func TestValidated_Record(t *testing.T) {
	in := validInput()
	in.FirstName = "  Ana "
	in.PaymentMethod = ""

	v, err := Validate(in)
	require.NoError(t, err)

	rec := v.Record(time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC))

	expected := paysheet.PaymentRecord{
		FirstName:     "Ana",
		LastName:      "Gomez",
		Company:       "Empresa A",
		Amount:        decimal.RequireFromString("150.5"),
		PaymentMethod: DefaultPaymentMethod,
		Timestamp:     "01/01/2024 10:00:00",
	}
	assert.Truef(t, expected.Equal(rec), "got %+v", rec)
	assert.NoError(t, rec.Validate())
}

func TestFromJSON(t *testing.T) {
	tt := []struct {
		name   string
		in     string
		amount string
	}{
		{name: "numeric amount", in: `{"firstName":"Ana","lastName":"Gomez","company":"Empresa A","amount":150.50,"paymentMethod":"Card"}`, amount: "150.50"},
		{name: "string amount", in: `{"firstName":"Ana","lastName":"Gomez","company":"Empresa A","amount":"150.50","paymentMethod":"Card"}`, amount: "150.50"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			in, err := FromJSON([]byte(tc.in))
			require.NoError(t, err)
			assert.Equal(t, validInput(), in)
			assert.Equal(t, tc.amount, in.Amount)
		})
	}
}

func TestFromJSON_Partial(t *testing.T) {
	in, err := FromJSON([]byte(`{"firstName":"Ana","amount":null,"company":7}`))
	require.NoError(t, err)
	assert.Equal(t, Input{FirstName: "Ana"}, in)

	_, err = Validate(in)
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestFromJSON_Malformed(t *testing.T) {
	for _, in := range []string{``, `{`, `{"firstName":}`, `[1,2]`, `"text"`} {
		_, err := FromJSON([]byte(in))
		assert.Truef(t, errors.Is(err, ErrMalformedJSON), "input %q", in)
	}
}

func TestFromValues(t *testing.T) {
	values := url.Values{}
	values.Set("firstName", "Ana")
	values.Set("lastName", "Gomez")
	values.Set("company", "Empresa A")
	values.Set("amount", "150.50")
	values.Set("paymentMethod", "Card")

	assert.Equal(t, validInput(), FromValues(values))
}
