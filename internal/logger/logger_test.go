package logger

import "testing"

func TestNew(t *testing.T) {
	for _, json := range []bool{false, true} {
		for _, debug := range []bool{false, true} {
			logger, err := New(json, debug)
			if err != nil {
				t.Fatalf("New(%v, %v): %v", json, debug, err)
			}
			if logger == nil {
				t.Fatalf("New(%v, %v) returned nil logger", json, debug)
			}
			if debug != logger.Core().Enabled(-1) {
				t.Fatalf("New(%v, %v): unexpected debug enablement", json, debug)
			}
		}
	}
}

func TestTruncateForLog(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"  padded  ", 10, "padded"},
		{"truncate me", 8, "truncate..."},
		{"anything", 0, ""},
		{"anything", -1, ""},
		{"日本語のテキスト", 3, "日本語..."},
	}
	for _, tc := range cases {
		if got := TruncateForLog(tc.in, tc.limit); got != tc.want {
			t.Fatalf("TruncateForLog(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}
