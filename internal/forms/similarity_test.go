package forms

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSequenceRatio(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abc", "", 0},
		{"", "abc", 0},
		{"abcd", "abcd", 1},
		{"abcd", "bcde", 0.75},
	}
	for _, tc := range cases {
		if got := sequenceRatio(tc.a, tc.b); !almostEqual(got, tc.want) {
			t.Fatalf("sequenceRatio(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSequenceRatioSymmetric(t *testing.T) {
	a, b := "are you legally authorized to work?", "are you legally authorized to work in the us?"
	if got, rev := sequenceRatio(a, b), sequenceRatio(b, a); !almostEqual(got, rev) {
		t.Fatalf("ratio not symmetric: %v vs %v", got, rev)
	}
}

func TestWeightedJaccard(t *testing.T) {
	weight := func(item string) float64 {
		if item == "heavy" {
			return 3
		}
		return 1
	}

	got := weightedJaccard([]string{"heavy", "a"}, []string{"heavy", "b"}, weight)
	// intersection 3, union 3 + 1 + 1
	if !almostEqual(got, 0.6) {
		t.Fatalf("weightedJaccard = %v, want 0.6", got)
	}

	if got := weightedJaccard(nil, []string{"a"}, weight); got != 0 {
		t.Fatalf("expected 0 for empty input, got %v", got)
	}
}

func TestJaccard(t *testing.T) {
	got := jaccard([]string{"a", "b", "c"}, []string{"b", "c", "d"})
	if !almostEqual(got, 0.5) {
		t.Fatalf("jaccard = %v, want 0.5", got)
	}
}

func TestAcceptedIsStrict(t *testing.T) {
	if accepted(0.6, 0.6) {
		t.Fatal("score equal to threshold must be a miss")
	}
	if !accepted(0.6000001, 0.6) {
		t.Fatal("score above threshold must be accepted")
	}
	if accepted(0.59, 0.6) {
		t.Fatal("score below threshold must be a miss")
	}
}
