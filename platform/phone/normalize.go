// Package phone normalizes contact phone numbers before storage.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// defaultRegion is assumed for numbers entered without a country code.
const defaultRegion = "US"

// NormalizeE164 formats a phone number to E.164. Input that cannot be
// parsed as a valid number is returned trimmed but otherwise unchanged,
// so the lead is never rejected over a phone field.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}
