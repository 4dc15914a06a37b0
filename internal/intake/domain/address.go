package domain

import "strings"

// Address is a delivery address as captured on the quote form.
type Address struct {
	Street   string
	Suburb   string
	State    string
	Postcode string
}

// Normalize trims the street, upper-cases and collapses whitespace in the
// suburb, and upper-cases the state code. Only ASCII letters change case so
// non-ASCII text survives untouched. Normalize is idempotent.
func (a Address) Normalize() Address {
	return Address{
		Street:   strings.TrimSpace(a.Street),
		Suburb:   asciiUpper(strings.Join(strings.Fields(a.Suburb), " ")),
		State:    asciiUpper(strings.TrimSpace(a.State)),
		Postcode: strings.TrimSpace(a.Postcode),
	}
}

// Formatted returns the two-line delivery address: the street, then the
// non-empty suburb, state and postcode joined by spaces. Empty lines are
// left out.
func (a Address) Formatted() string {
	locality := make([]string, 0, 3)
	for _, part := range []string{a.Suburb, a.State, a.Postcode} {
		if part != "" {
			locality = append(locality, part)
		}
	}

	lines := make([]string, 0, 2)
	if a.Street != "" {
		lines = append(lines, a.Street)
	}
	if len(locality) > 0 {
		lines = append(lines, strings.Join(locality, " "))
	}
	return strings.Join(lines, "\n")
}

func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
