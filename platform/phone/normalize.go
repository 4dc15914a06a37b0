// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when a number carries no country prefix.
const DefaultRegion = "AU"

// ErrInvalidNumber is returned when a number cannot be parsed or is not dialable.
var ErrInvalidNumber = errors.New("invalid phone number")

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input, region string) string {
	formatted, err := ToE164(input, region)
	if err != nil {
		return strings.TrimSpace(input)
	}
	return formatted
}

// ToE164 parses input in region and returns it in E.164 form.
func ToE164(input, region string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", ErrInvalidNumber
	}
	if region == "" {
		region = DefaultRegion
	}

	number, err := phonenumbers.Parse(trimmed, strings.ToUpper(region))
	if err != nil {
		return "", ErrInvalidNumber
	}
	if !phonenumbers.IsValidNumber(number) {
		return "", ErrInvalidNumber
	}

	return phonenumbers.Format(number, phonenumbers.E164), nil
}

// Digits returns the E.164 form without the leading plus, as used by wa.me links.
func Digits(input, region string) (string, error) {
	formatted, err := ToE164(input, region)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(formatted, "+"), nil
}
