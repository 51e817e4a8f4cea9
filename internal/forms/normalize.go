package forms

import "strings"

// Normalize cleans raw question text as extracted from the page. The text is
// lower-cased and trimmed, and duplicated lines are removed: some form layouts
// render the question twice (visible text plus an accessibility copy), which
// comes back from the DOM as the same line repeated.
func Normalize(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}

	lines := strings.Split(raw, "\n")
	if len(lines) == 2 && lines[0] == lines[1] {
		return strings.TrimSpace(lines[0])
	}

	seen := make(map[string]bool, len(lines))
	unique := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		unique = append(unique, line)
	}

	return strings.Join(unique, "\n")
}

// NormalizeKey produces the store lookup key for a question: normalized text
// with all whitespace runs collapsed to single spaces.
func NormalizeKey(text string) string {
	return strings.Join(strings.Fields(Normalize(text)), " ")
}
