package forms

import "testing"

func TestNormalizeCollapsesDuplicatedLines(t *testing.T) {
	got := Normalize("Are you legal?\nAre you legal?")
	if got != "are you legal?" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

func TestNormalizeDropsRepeatedLinesKeepingOrder(t *testing.T) {
	got := Normalize("First line\nSecond line\nFirst line\nThird line")
	want := "first line\nsecond line\nthird line"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"  Mixed CASE question  ",
		"Are you legal?\nAre you legal?",
		"one\n\ntwo\none",
	}
	for _, input := range inputs {
		once := Normalize(input)
		if twice := Normalize(once); twice != once {
			t.Fatalf("normalize not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	if got := Normalize("   \n  "); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestNormalizeKeyCollapsesWhitespace(t *testing.T) {
	got := NormalizeKey("  How   many\nyears of    experience?  ")
	if got != "how many years of experience?" {
		t.Fatalf("unexpected key: %q", got)
	}
}
