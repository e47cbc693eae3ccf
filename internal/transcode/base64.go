// Package transcode maps binary payloads to printable text and back so they
// can live in stores that only hold strings.
package transcode

import (
	"encoding/base64"

	"github.com/pkg/errors"
)

var ErrInvalidEncoding = errors.New("invalid text encoding")

// ToText encodes b with the standard, padded base64 alphabet.
func ToText(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// FromText reverses ToText. Characters outside the alphabet, bad padding or
// a truncated tail yield ErrInvalidEncoding.
func FromText(s string) ([]byte, error) {
	b, err := base64.StdEncoding.Strict().DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidEncoding, err.Error())
	}

	return b, nil
}
