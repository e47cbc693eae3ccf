// Package form turns submitted payment forms into payment records.
package form

import (
	"sort"
	"strings"
	"time"

	"github.com/denismitr/paysheet"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Message is what the submitter is told when any field is rejected.
const Message = "all fields must be completed correctly"

const DefaultPaymentMethod = "Card"

// TimestampLayout stamps records as day/month/year and 24h time.
const TimestampLayout = "02/01/2006 15:04:05"

var ErrInvalid = errors.New(Message)

var minAmount = decimal.RequireFromString("0.01")

// Companies are offered as choices. Any other non-empty company is accepted.
var Companies = []string{
	"Empresa A",
	"Empresa B",
	"Empresa C",
	"Institutos Educativos Parroquiales",
	"Otra Empresa",
}

// Input is a submission exactly as received.
type Input struct {
	FirstName     string
	LastName      string
	Company       string
	Amount        string
	PaymentMethod string
}

// Problems maps a field name to what is wrong with it.
type Problems map[string]string

// Fields lists the rejected field names in order.
func (p Problems) Fields() []string {
	fields := make([]string, 0, len(p))
	for f := range p {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

type ValidationError struct {
	Problems Problems
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, f := range e.Problems.Fields() {
		parts = append(parts, f+": "+e.Problems[f])
	}

	return Message + " (" + strings.Join(parts, ", ") + ")"
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Validated is an input that passed Validate.
type Validated struct {
	firstName     string
	lastName      string
	company       string
	amount        decimal.Decimal
	paymentMethod string
}

func (v Validated) Amount() decimal.Decimal {
	return v.amount
}

// Record stamps the submission with now.
func (v Validated) Record(now time.Time) paysheet.PaymentRecord {
	return paysheet.PaymentRecord{
		FirstName:     v.firstName,
		LastName:      v.lastName,
		Company:       v.company,
		Amount:        v.amount,
		PaymentMethod: v.paymentMethod,
		Timestamp:     now.Format(TimestampLayout),
	}
}

// Validate trims every field and checks that none is empty and that the amount
// is a number of at least 0.01. An empty payment method becomes Card.
func Validate(in Input) (Validated, error) {
	problems := Problems{}

	v := Validated{
		firstName:     strings.TrimSpace(in.FirstName),
		lastName:      strings.TrimSpace(in.LastName),
		company:       strings.TrimSpace(in.Company),
		paymentMethod: strings.TrimSpace(in.PaymentMethod),
	}

	if v.paymentMethod == "" {
		v.paymentMethod = DefaultPaymentMethod
	}

	required := []struct {
		name  string
		value string
	}{
		{"firstName", v.firstName},
		{"lastName", v.lastName},
		{"company", v.company},
	}

	for _, f := range required {
		if f.value == "" {
			problems[f.name] = "required"
		}
	}

	amount, err := parseAmount(in.Amount)
	switch {
	case err != nil:
		problems["amount"] = err.Error()
	case amount.LessThan(minAmount):
		problems["amount"] = "must be at least " + minAmount.String()
	default:
		v.amount = amount
	}

	if len(problems) > 0 {
		return Validated{}, &ValidationError{Problems: problems}
	}

	return v, nil
}

// parseAmount accepts a dot or, when there is no dot, a single comma as the
// decimal separator.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errors.New("required")
	}

	if !strings.Contains(s, ".") && strings.Count(s, ",") == 1 {
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.New("not a number")
	}

	return d, nil
}
