package forms

import "testing"

func hasString(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}

func TestExtractKeywordsNumericNormalization(t *testing.T) {
	set := ExtractKeywords("5+ years of experience required")

	if !set.HasTag("5+ years") {
		t.Fatalf("expected duration tag, got %v", set.Tags)
	}
	if !set.HasTag("required_field") {
		t.Fatalf("expected required_field tag, got %v", set.Tags)
	}
	if !set.HasTag("category_experience") {
		t.Fatalf("expected experience category tag, got %v", set.Tags)
	}
	if set.QuestionType() != "experience_question" {
		t.Fatalf("unexpected question type: %q", set.QuestionType())
	}
}

func TestExtractKeywordsYearsWithoutPlus(t *testing.T) {
	set := ExtractKeywords("do you have 3 yrs of python work?")
	if !set.HasTag("3 years") {
		t.Fatalf("expected 3 years tag, got %v", set.Tags)
	}
	if !hasString(set.Stemmed, "python") {
		t.Fatalf("expected python keyword, got %v", set.Stemmed)
	}
	if set.QuestionType() != "yes_no_question" {
		t.Fatalf("unexpected question type: %q", set.QuestionType())
	}
}

func TestExtractKeywordsSalary(t *testing.T) {
	set := ExtractKeywords("what is your expected salary? $120,000")
	if !set.HasTag("$120000 salary") {
		t.Fatalf("expected salary tag, got %v", set.Tags)
	}
	if !set.HasTag("category_compensation") {
		t.Fatalf("expected compensation category, got %v", set.Tags)
	}
}

func TestExtractKeywordsCompoundTerm(t *testing.T) {
	set := ExtractKeywords("Do you hold a bachelor's degree?")
	if !hasString(set.Stemmed, "bachelor's degree") {
		t.Fatalf("expected compound keyword, got %v", set.Stemmed)
	}
}

func TestExtractKeywordsForcedDomainKeyword(t *testing.T) {
	// "c++" never survives tokenization but must still be force-included.
	set := ExtractKeywords("rate your c++ proficiency")
	if !hasString(set.Stemmed, "c++") {
		t.Fatalf("expected c++ keyword, got %v", set.Stemmed)
	}
}

func TestExtractKeywordsEmptyInput(t *testing.T) {
	set := ExtractKeywords("   ")
	if len(set.Stemmed) != 0 || len(set.Raw) != 0 || len(set.Tags) != 0 {
		t.Fatalf("expected empty set, got %+v", set)
	}
}

func TestExtractKeywordsDeterministic(t *testing.T) {
	const text = "are you authorized to work in the us? 5 years experience required"
	first := ExtractKeywords(text)
	for i := 0; i < 5; i++ {
		again := ExtractKeywords(text)
		if len(again.Stemmed) != len(first.Stemmed) || len(again.Tags) != len(first.Tags) {
			t.Fatalf("extraction not deterministic: %+v vs %+v", first, again)
		}
		for j := range first.Stemmed {
			if again.Stemmed[j] != first.Stemmed[j] {
				t.Fatalf("stemmed order changed: %v vs %v", first.Stemmed, again.Stemmed)
			}
		}
		for j := range first.Tags {
			if again.Tags[j] != first.Tags[j] {
				t.Fatalf("tag order changed: %v vs %v", first.Tags, again.Tags)
			}
		}
	}
}

func TestYearsOfExperience(t *testing.T) {
	set := ExtractKeywords("5+ years of experience required")
	years, ok := set.YearsOfExperience()
	if !ok || years != 5 {
		t.Fatalf("expected 5 years, got %d (ok=%v)", years, ok)
	}

	set = ExtractKeywords("tell us about yourself")
	if _, ok := set.YearsOfExperience(); ok {
		t.Fatal("expected no years value")
	}
}

func TestStemKeepsShortWords(t *testing.T) {
	if got := stem("sql"); got != "sql" {
		t.Fatalf("short word changed: %q", got)
	}
}

func TestStemCollapsesInflections(t *testing.T) {
	pairs := map[string]string{
		"worked":  "work",
		"working": "work",
	}
	for word, want := range pairs {
		if got := stem(word); got != want {
			t.Fatalf("stem(%q) = %q, want %q", word, got, want)
		}
	}
	if stem("relocating") != stem("relocated") {
		t.Fatalf("inflections did not collapse: %q vs %q", stem("relocating"), stem("relocated"))
	}
}

func TestTagWeight(t *testing.T) {
	cases := map[string]float64{
		"5+ years":               3.0,
		"3 months":               3.0,
		"$120000 salary":         3.0,
		"experience_question":    2.5,
		"category_authorization": 2.0,
		"python":                 1.0,
	}
	for item, want := range cases {
		if got := tagWeight(item); got != want {
			t.Fatalf("tagWeight(%q) = %v, want %v", item, got, want)
		}
	}
}
