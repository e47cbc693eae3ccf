package form

import (
	"net/url"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

var ErrMalformedJSON = errors.New("json contents could not be parsed")

// FromJSON reads a submission object. The amount may be sent as a number or
// as a string.
func FromJSON(b []byte) (Input, error) {
	if !gjson.ValidBytes(b) {
		return Input{}, ErrMalformedJSON
	}

	root := gjson.ParseBytes(b)
	if !root.IsObject() {
		return Input{}, errors.Wrap(ErrMalformedJSON, "expected an object")
	}

	return Input{
		FirstName:     text(root.Get("firstName")),
		LastName:      text(root.Get("lastName")),
		Company:       text(root.Get("company")),
		Amount:        amount(root.Get("amount")),
		PaymentMethod: text(root.Get("paymentMethod")),
	}, nil
}

// FromValues reads an HTML form post.
func FromValues(values url.Values) Input {
	return Input{
		FirstName:     values.Get("firstName"),
		LastName:      values.Get("lastName"),
		Company:       values.Get("company"),
		Amount:        values.Get("amount"),
		PaymentMethod: values.Get("paymentMethod"),
	}
}

func text(r gjson.Result) string {
	if r.Type != gjson.String {
		return ""
	}

	return r.Str
}

func amount(r gjson.Result) string {
	switch r.Type {
	case gjson.Number:
		// raw keeps the digits exactly as sent
		return r.Raw
	case gjson.String:
		return r.Str
	default:
		return ""
	}
}
