// Package phone normalizes caller-entered phone numbers before they are
// stored or matched against.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// defaultRegion resolves numbers entered without a country prefix.
const defaultRegion = "NL"

func parse(input string) (*phonenumbers.PhoneNumber, bool) {
	number, err := phonenumbers.Parse(input, defaultRegion)
	if err != nil {
		return nil, false
	}
	return number, phonenumbers.IsValidNumber(number)
}

// NormalizeE164 formats a phone number to E.164 so the same lead entered
// with local and international notation matches on lookup. Input that does
// not parse as a valid number is returned trimmed but otherwise untouched.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, ok := parse(trimmed)
	if !ok {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// Valid reports whether the input parses as a dialable number.
func Valid(input string) bool {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return false
	}
	_, ok := parse(trimmed)
	return ok
}
