package domain

import "testing"

func TestNormalizeAddress(t *testing.T) {
	in := Address{
		Street:   "  12 Collins St  ",
		Suburb:   "  south   melbourne ",
		State:    "vic",
		Postcode: " 3205 ",
	}
	got := in.Normalize()
	want := Address{Street: "12 Collins St", Suburb: "SOUTH MELBOURNE", State: "VIC", Postcode: "3205"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if got.Formatted() != "12 Collins St\nSOUTH MELBOURNE VIC 3205" {
		t.Fatalf("unexpected formatted address %q", got.Formatted())
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []Address{
		{Street: " 1 George St", Suburb: "sydney", State: "nsw", Postcode: "2000"},
		{Street: "Unit 4/88 Rue de l'Église", Suburb: "  coteau  éléphant ", State: "qld"},
		{Street: "", Suburb: "", State: "", Postcode: ""},
	}
	for _, in := range inputs {
		once := in.Normalize()
		twice := once.Normalize()
		if once != twice {
			t.Fatalf("normalize not idempotent: %+v then %+v", once, twice)
		}
		if once.Formatted() != twice.Formatted() {
			t.Fatalf("formatted address changed on second pass")
		}
	}
}

func TestNormalizeLeavesNonASCIIAlone(t *testing.T) {
	got := Address{Suburb: "café  élan"}.Normalize()
	if got.Suburb != "CAFé éLAN" {
		t.Fatalf("expected only ASCII letters upper-cased, got %q", got.Suburb)
	}
}

func TestFormattedOmitsEmptyComponents(t *testing.T) {
	cases := []struct {
		in   Address
		want string
	}{
		{Address{Street: "5 Main Rd", Suburb: "HOBART", State: "TAS"}, "5 Main Rd\nHOBART TAS"},
		{Address{Street: "5 Main Rd", State: "TAS", Postcode: "7000"}, "5 Main Rd\nTAS 7000"},
		{Address{Street: "5 Main Rd"}, "5 Main Rd"},
		{Address{Suburb: "DARWIN", State: "NT"}, "DARWIN NT"},
	}
	for _, tc := range cases {
		if got := tc.in.Formatted(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestStatusEnums(t *testing.T) {
	if !IsQuoteStatus("quoted") || IsQuoteStatus("read") {
		t.Fatalf("quote status enum mismatch")
	}
	if !IsContactStatus("archived") || IsContactStatus("accepted") {
		t.Fatalf("contact status enum mismatch")
	}
	if !IsAustralianState(" act ") || IsAustralianState("NZ") {
		t.Fatalf("state enum mismatch")
	}
}
