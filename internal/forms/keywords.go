package forms

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// KeywordSet is the ephemeral product of keyword extraction: stemmed content
// words (plus force-included domain keywords and compound terms), the raw
// token sequence, and higher-level semantic tags used to boost similarity
// scoring beyond plain token overlap. It is recomputed per question and never
// persisted.
type KeywordSet struct {
	Stemmed []string
	Raw     []string
	Tags    []string
}

// All returns stemmed keywords and semantic tags as one slice for weighted
// set similarity.
func (k KeywordSet) All() []string {
	all := make([]string, 0, len(k.Stemmed)+len(k.Tags))
	all = append(all, k.Stemmed...)
	all = append(all, k.Tags...)
	return all
}

// HasTag reports whether the given semantic tag was detected.
func (k KeywordSet) HasTag(tag string) bool {
	for _, t := range k.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// QuestionType returns the first detected "<type>_question" tag, or "".
func (k KeywordSet) QuestionType() string {
	for _, tag := range k.Tags {
		if strings.HasSuffix(tag, "_question") {
			return tag
		}
	}
	return ""
}

// YearsOfExperience returns the years value mentioned in the text, when a
// duration tag was extracted.
func (k KeywordSet) YearsOfExperience() (int, bool) {
	for _, tag := range k.Tags {
		m := yearsTagPattern.FindStringSubmatch(tag)
		if m == nil {
			continue
		}
		var years int
		if _, err := fmt.Sscanf(m[1], "%d", &years); err == nil {
			return years, true
		}
	}
	return 0, false
}

var tokenPattern = regexp.MustCompile(`[a-z0-9']+`)

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"if": true, "then": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "being": true, "do": true,
	"does": true, "did": true, "to": true, "of": true, "in": true,
	"on": true, "for": true, "with": true, "at": true, "by": true,
	"from": true, "as": true, "that": true, "this": true, "these": true,
	"those": true, "it": true, "its": true, "you": true, "your": true,
	"we": true, "our": true, "they": true, "their": true, "have": true,
	"has": true, "had": true, "will": true, "would": true, "can": true,
	"could": true, "what": true, "which": true, "who": true, "whom": true,
	"how": true, "when": true, "where": true, "why": true, "please": true,
	"any": true, "there": true, "here": true, "about": true, "into": true,
}

// keywordCategories maps a category name to domain-important terms. Any
// member that literally appears in the question text is force-included as a
// keyword even when stop-word filtering or tokenization would drop it, and
// the matching category contributes a "category_<name>" tag.
var keywordCategories = map[string][]string{
	"work": {
		"work", "job", "employment", "position", "role", "career",
		"company", "employer", "occupation",
	},
	"location": {
		"location", "city", "state", "country", "relocate", "relocation",
		"remote", "hybrid", "onsite", "on-site", "commute", "address", "zip",
	},
	"experience": {
		"experience", "years", "worked", "background", "skills",
		"expertise", "proficiency", "familiar", "level",
	},
	"education": {
		"education", "degree", "university", "college", "school",
		"bachelor", "master", "phd", "gpa", "graduation", "major",
	},
	"authorization": {
		"authorized", "authorization", "visa", "sponsorship", "citizen",
		"citizenship", "clearance", "eligible", "legally", "permit",
	},
	"languages": {
		"python", "java", "javascript", "typescript", "golang", "sql",
		"c++", "c#", "ruby", "php", "swift", "kotlin", "rust", "scala",
	},
	"technologies": {
		"aws", "azure", "gcp", "docker", "kubernetes", "linux", "react",
		"django", "flask", "spark", "terraform", "jenkins", "git",
	},
	"personal": {
		"name", "email", "phone", "gender", "race", "ethnicity",
		"veteran", "disability", "pronouns", "age",
	},
	"compensation": {
		"salary", "compensation", "pay", "wage", "rate", "bonus", "equity",
	},
	"availability": {
		"available", "availability", "start", "notice", "schedule",
		"shift", "hours", "overtime", "travel",
	},
	"application": {
		"resume", "cover", "portfolio", "linkedin", "website", "github",
		"references", "referral",
	},
	"industry": {
		"healthcare", "finance", "fintech", "banking", "insurance",
		"retail", "automotive", "aerospace", "defense", "biotech",
		"manufacturing",
	},
}

// compoundPatterns match multi-word concepts whose full span is kept as a
// single keyword.
var compoundPatterns = []*regexp.Regexp{
	regexp.MustCompile(`work experience`),
	regexp.MustCompile(`years? of experience`),
	regexp.MustCompile(`bachelor'?s? degree`),
	regexp.MustCompile(`master'?s? degree`),
	regexp.MustCompile(`work authorization`),
	regexp.MustCompile(`remote work`),
	regexp.MustCompile(`green card`),
	regexp.MustCompile(`security clearance`),
	regexp.MustCompile(`notice period`),
	regexp.MustCompile(`cover letter`),
	regexp.MustCompile(`start date`),
	regexp.MustCompile(`hourly rate`),
	regexp.MustCompile(`driver'?s? licen[cs]e`),
}

// questionTypes are checked in order; each matching category appends a
// "<type>_question" tag. QuestionType() reports the first one.
var questionTypes = []struct {
	name       string
	indicators []string
}{
	{"yes_no", []string{"are you", "do you", "have you", "did you", "will you", "can you", "would you", "is your"}},
	{"demographic", []string{"gender", "race", "ethnicity", "veteran", "disability", "orientation", "pronouns"}},
	{"authorization", []string{"authorized", "authorization", "sponsorship", "visa", "citizen", "clearance", "legally"}},
	{"experience", []string{"experience", "years", "worked with", "familiar with", "proficien"}},
	{"location", []string{"located", "location", "relocate", "commute", "remote", "on-site", "onsite", "hybrid", "city"}},
}

var requiredIndicators = []string{"required", "must", "mandatory", "necessary"}

var (
	yearsPattern    = regexp.MustCompile(`(\d+)\s*(\+)?\s*(?:years?|yrs?)\b`)
	monthsPattern   = regexp.MustCompile(`(\d+)\s*(?:months?|mos?)\b`)
	moneyPattern    = regexp.MustCompile(`\$\s*(\d[\d,]*)`)
	bareSumPattern  = regexp.MustCompile(`\b(\d{4,7})\b`)
	yearsTagPattern = regexp.MustCompile(`^(\d+)\+? years$`)
	durationTag     = regexp.MustCompile(`^(\d+\+? (?:years|months)|\$\d+ salary)$`)
)

var salaryIndicators = []string{"salary", "compensation", "pay", "wage"}

// ExtractKeywords derives the keyword set for a piece of question text. Pure
// function of the input and the static tables above; only the stem cache is
// touched, and only as a memo.
func ExtractKeywords(text string) KeywordSet {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return KeywordSet{}
	}

	var set KeywordSet
	set.Raw = tokenPattern.FindAllString(text, -1)

	seen := make(map[string]bool)
	addStemmed := func(keyword string) {
		if keyword == "" || seen[keyword] {
			return
		}
		seen[keyword] = true
		set.Stemmed = append(set.Stemmed, keyword)
	}

	for _, token := range set.Raw {
		if len(token) <= 1 || stopWords[token] {
			continue
		}
		addStemmed(stem(token))
	}

	// Domain keywords are re-scanned on the original text so terms lost to
	// tokenization or stop-word filtering still participate in matching.
	categoryNames := make([]string, 0, 2)
	for _, name := range categoryOrder {
		matched := false
		for _, keyword := range keywordCategories[name] {
			if strings.Contains(text, keyword) {
				addStemmed(keyword)
				matched = true
			}
		}
		if matched {
			categoryNames = append(categoryNames, name)
		}
	}

	for _, pattern := range compoundPatterns {
		for _, span := range pattern.FindAllString(text, -1) {
			addStemmed(span)
		}
	}

	tags := make([]string, 0, 4)
	if m := yearsPattern.FindStringSubmatch(text); m != nil {
		if m[2] != "" {
			tags = append(tags, m[1]+"+ years")
		} else {
			tags = append(tags, m[1]+" years")
		}
	} else if m := monthsPattern.FindStringSubmatch(text); m != nil {
		tags = append(tags, m[1]+" months")
	}
	if containsAny(text, salaryIndicators) {
		if amount := extractAmount(text); amount != "" {
			tags = append(tags, "$"+amount+" salary")
		}
	}

	for _, qt := range questionTypes {
		if containsAny(text, qt.indicators) {
			tags = append(tags, qt.name+"_question")
		}
	}

	if containsAny(text, requiredIndicators) {
		tags = append(tags, "required_field")
	}

	for _, name := range categoryNames {
		tags = append(tags, "category_"+name)
	}

	set.Tags = tags
	return set
}

// categoryOrder fixes iteration order over keywordCategories so extraction is
// deterministic.
var categoryOrder = []string{
	"work", "location", "experience", "education", "authorization",
	"languages", "technologies", "personal", "compensation",
	"availability", "application", "industry",
}

func containsAny(text string, indicators []string) bool {
	for _, indicator := range indicators {
		if strings.Contains(text, indicator) {
			return true
		}
	}
	return false
}

func extractAmount(text string) string {
	if m := moneyPattern.FindStringSubmatch(text); m != nil {
		return strings.ReplaceAll(m[1], ",", "")
	}
	if m := bareSumPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// tagWeight returns the contribution of a keyword or tag to the weighted
// Jaccard similarity. Duration tags weigh most: two questions both asking
// about "5 years" are far more likely the same question than two sharing a
// generic token.
func tagWeight(item string) float64 {
	switch {
	case durationTag.MatchString(item):
		return 3.0
	case strings.HasSuffix(item, "_question"):
		return 2.5
	case strings.HasPrefix(item, "category_"):
		return 2.0
	default:
		return 1.0
	}
}

const stemCacheCapacity = 4096

// stemCache memoizes stem results. The cache is capped, not evicted: once
// full, new stems are computed on the fly and simply not retained.
var stemCache = struct {
	sync.Mutex
	entries map[string]string
}{entries: make(map[string]string, 256)}

var stemSuffixes = []struct {
	suffix  string
	replace string
}{
	{"ization", "ize"},
	{"ational", "ate"},
	{"iveness", "ive"},
	{"fulness", "ful"},
	{"ation", "ate"},
	{"ities", "ity"},
	{"ies", "y"},
	{"edly", ""},
	{"ing", ""},
	{"ed", ""},
	{"ally", "al"},
	{"ly", ""},
	{"ment", ""},
	{"ness", ""},
	{"es", ""},
	{"s", ""},
}

// stem applies a light suffix-stripping transform. It is deliberately crude:
// both sides of every comparison go through the same rules, so collapsing
// inflections consistently matters more than linguistic accuracy.
func stem(word string) string {
	if len(word) <= 3 {
		return word
	}

	stemCache.Lock()
	if cached, ok := stemCache.entries[word]; ok {
		stemCache.Unlock()
		return cached
	}
	stemCache.Unlock()

	stemmed := strings.TrimSuffix(word, "'s")
	for _, rule := range stemSuffixes {
		if !strings.HasSuffix(stemmed, rule.suffix) {
			continue
		}
		candidate := stemmed[:len(stemmed)-len(rule.suffix)] + rule.replace
		if len(candidate) >= 3 {
			stemmed = candidate
			break
		}
	}

	stemCache.Lock()
	if len(stemCache.entries) < stemCacheCapacity {
		stemCache.entries[word] = stemmed
	}
	stemCache.Unlock()

	return stemmed
}
