package phone

import "testing"

func TestToE164AustralianMobile(t *testing.T) {
	got, err := ToE164("0412 345 678", "AU")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "+61412345678" {
		t.Fatalf("expected +61412345678, got %s", got)
	}
}

func TestDigitsStripsPlus(t *testing.T) {
	got, err := Digits("+61 412 345 678", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "61412345678" {
		t.Fatalf("expected 61412345678, got %s", got)
	}
}

func TestNormalizeE164FallsBackToTrimmedInput(t *testing.T) {
	if got := NormalizeE164("  not a number ", "AU"); got != "not a number" {
		t.Fatalf("expected trimmed input, got %q", got)
	}
}
