package forms

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// optionConcepts maps a concept name to substring indicators. Concepts let
// "Yes" match "Yes, I am authorized" and "I'd rather not say" match "Decline
// to answer" where token overlap alone would not.
var optionConcepts = []struct {
	name       string
	indicators []string
}{
	{"affirmative", []string{"yes", "yeah", "yep", "true", "agree", "certainly", "definitely", "i do", "i am", "i have"}},
	{"negative", []string{"no", "not", "false", "never", "decline", "don't", "do not", "none"}},
	{"privacy", []string{"prefer not", "decline to", "rather not", "do not wish", "not to answer", "not specified", "self-describe"}},
	{"location", []string{"remote", "hybrid", "on-site", "onsite", "in office", "in-office", "relocat"}},
	{"temporal", []string{"current", "present", "now", "immediately", "former", "previous"}},
}

var integerPattern = regexp.MustCompile(`\d+`)

// conceptTags derives the concept tag set for an answer or option text.
// Single-word indicators must match a whole token ("no" must not fire inside
// "now" or "knowledge"); phrases match as substrings. Every embedded integer
// adds a numeric_<n> tag so "5" lines up with "5 years".
func conceptTags(text string) []string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil
	}

	tokens := toSet(tokenPattern.FindAllString(text, -1))

	var tags []string
	for _, concept := range optionConcepts {
		for _, indicator := range concept.indicators {
			var hit bool
			if strings.ContainsAny(indicator, " -") {
				hit = strings.Contains(text, indicator)
			} else {
				hit = tokens[indicator]
			}
			if hit {
				tags = append(tags, "concept_"+concept.name)
				break
			}
		}
	}

	for _, n := range integerPattern.FindAllString(text, -1) {
		tags = append(tags, "numeric_"+n)
	}

	return tags
}

func stemmedTokens(text string) []string {
	var stems []string
	for _, token := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if len(token) <= 1 || stopWords[token] {
			continue
		}
		stems = append(stems, stem(token))
	}
	return stems
}

// OptionResolver maps a free-text answer onto the closest of the options
// currently presented by the page. Selection only; it never mutates state.
type OptionResolver struct {
	thresholds Thresholds
	logger     *zap.Logger
}

func NewOptionResolver(thresholds Thresholds, logger *zap.Logger) *OptionResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OptionResolver{thresholds: thresholds, logger: logger}
}

// Resolve returns the option best matching the answer, ok=false when nothing
// qualifies. Passes run in order, first success wins: exact, semantic
// (stemmed tokens + concepts + string ratio), fuzzy string, containment.
// The caller decides what a miss means: re-query the AI, or take the first
// option for a required field.
func (r *OptionResolver) Resolve(answer string, options []string) (string, bool) {
	if len(options) == 0 {
		return answer, true
	}

	answer = strings.TrimSpace(answer)
	lowered := strings.ToLower(answer)

	for _, option := range options {
		if strings.ToLower(strings.TrimSpace(option)) == lowered {
			return option, true
		}
	}

	if option, ok := r.semanticPass(lowered, options); ok {
		return option, true
	}

	if option, ok := r.fuzzyPass(lowered, options); ok {
		return option, true
	}

	for _, option := range options {
		optLowered := strings.ToLower(strings.TrimSpace(option))
		if optLowered == "" {
			continue
		}
		if strings.Contains(lowered, optLowered) || strings.Contains(optLowered, lowered) {
			r.logger.Debug("option matched by containment",
				zap.String("answer", answer),
				zap.String("option", option),
			)
			return option, true
		}
	}

	r.logger.Debug("no option matched answer", zap.String("answer", answer))
	return "", false
}

func (r *OptionResolver) semanticPass(answer string, options []string) (string, bool) {
	answerStems := stemmedTokens(answer)
	answerConcepts := conceptTags(answer)

	best, bestScore := "", 0.0
	for _, option := range options {
		lowered := strings.ToLower(strings.TrimSpace(option))
		score := 0.5*jaccard(answerStems, stemmedTokens(lowered)) +
			0.3*jaccard(answerConcepts, conceptTags(lowered)) +
			0.2*sequenceRatio(answer, lowered)
		if score > bestScore {
			best, bestScore = option, score
		}
	}

	if !accepted(bestScore, r.thresholds.SemanticOption) {
		return "", false
	}

	r.logger.Debug("option matched semantically",
		zap.String("answer", answer),
		zap.String("option", best),
		zap.Float64("score", bestScore),
	)
	return best, true
}

func (r *OptionResolver) fuzzyPass(answer string, options []string) (string, bool) {
	best, bestRatio := "", 0.0
	for _, option := range options {
		ratio := sequenceRatio(answer, strings.ToLower(strings.TrimSpace(option)))
		if ratio > bestRatio {
			best, bestRatio = option, ratio
		}
	}

	if !accepted(bestRatio, r.thresholds.FuzzyOption) {
		return "", false
	}

	r.logger.Debug("option matched fuzzily",
		zap.String("answer", answer),
		zap.String("option", best),
		zap.Float64("ratio", bestRatio),
	)
	return best, true
}

// answerIsAffirmative reports whether a free-text answer expresses consent,
// used when the target control is a lone checkbox.
func answerIsAffirmative(answer string) bool {
	for _, tag := range conceptTags(answer) {
		if tag == "concept_negative" || tag == "concept_privacy" {
			return false
		}
	}
	for _, tag := range conceptTags(answer) {
		if tag == "concept_affirmative" {
			return true
		}
	}
	return false
}
