package forms

import (
	"strings"

	"go.uber.org/zap"
)

// MatchRequest describes one question to resolve against the store.
type MatchRequest struct {
	Question string
	// Options are the choices currently rendered by the page, empty for
	// open-text questions. A cached answer must map onto one of them.
	Options []string
	// ErrorContext carries the page's validation message after a rejected
	// submit. When set, the store is bypassed entirely: the cached answer is
	// presumed to be exactly what triggered the error.
	ErrorContext string
	// JobKeywords are keywords derived from the current job description,
	// passed explicitly per request so no job state leaks across questions.
	JobKeywords []string
}

// Matcher finds the best stored answer for an incoming question. Lookup is
// layered: exact normalized key, then weighted keyword similarity over every
// stored question, then a stricter plain string-similarity fallback. The
// matcher is read-only against the store.
type Matcher struct {
	store      *Store
	resolver   *OptionResolver
	thresholds Thresholds
	logger     *zap.Logger
}

func NewMatcher(store *Store, resolver *OptionResolver, thresholds Thresholds, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{
		store:      store,
		resolver:   resolver,
		thresholds: thresholds,
		logger:     logger,
	}
}

// FindBestMatch is the plain-arguments form of Match.
func (m *Matcher) FindBestMatch(question string, options []string, errorContext string) (string, bool) {
	return m.Match(MatchRequest{Question: question, Options: options, ErrorContext: errorContext})
}

// Match returns the stored answer for the request, remapped onto the current
// options when they are present. ok=false is a cache miss, not an error; the
// caller falls through to the AI generator.
func (m *Matcher) Match(req MatchRequest) (string, bool) {
	if strings.TrimSpace(req.ErrorContext) != "" {
		m.logger.Info("error context supplied, bypassing cached responses",
			zap.String("error", req.ErrorContext),
		)
		return "", false
	}

	key := NormalizeKey(req.Question)
	if key == "" {
		return "", false
	}

	if rec, ok := m.store.Get(key); ok && rec.Answer != "" {
		m.logger.Debug("exact match in response store", zap.String("question", key))
		// An exact hit is final: if its answer no longer maps onto the
		// current options the cache entry is outdated and the whole lookup
		// is a miss.
		return m.deliver(rec.Answer, req.Options)
	}

	if answer, ok := m.keywordMatch(key, req); ok {
		return m.deliver(answer, req.Options)
	}

	if answer, ok := m.fuzzyMatch(key); ok {
		return m.deliver(answer, req.Options)
	}

	m.logger.Debug("no match in response store", zap.String("question", key))
	return "", false
}

func (m *Matcher) deliver(answer string, options []string) (string, bool) {
	if len(options) == 0 {
		return answer, true
	}
	resolved, ok := m.resolver.Resolve(answer, options)
	if !ok {
		m.logger.Info("cached answer does not map onto current options",
			zap.String("answer", answer),
		)
		return "", false
	}
	return resolved, true
}

func (m *Matcher) keywordMatch(key string, req MatchRequest) (string, bool) {
	incoming := ExtractKeywords(key)

	var (
		bestKey   string
		bestScore float64
		best      *Record
	)
	for _, storedKey := range m.store.Keys() {
		rec, ok := m.store.Get(storedKey)
		if !ok || rec.Answer == "" {
			// Malformed records are skipped, not fatal to the lookup.
			continue
		}
		score := combinedScore(key, storedKey, incoming, ExtractKeywords(storedKey), req.JobKeywords)
		if score > bestScore {
			bestKey, bestScore, best = storedKey, score, rec
		}
	}

	if best == nil || !accepted(bestScore, m.thresholds.Combined) {
		return "", false
	}

	m.logger.Info("matched stored question by keywords",
		zap.String("question", key),
		zap.String("matched", bestKey),
		zap.Float64("score", bestScore),
	)
	return best.Answer, true
}

func (m *Matcher) fuzzyMatch(key string) (string, bool) {
	var (
		bestKey   string
		bestRatio float64
		best      *Record
	)
	for _, storedKey := range m.store.Keys() {
		rec, ok := m.store.Get(storedKey)
		if !ok || rec.Answer == "" {
			continue
		}
		if ratio := sequenceRatio(key, storedKey); ratio > bestRatio {
			bestKey, bestRatio, best = storedKey, ratio, rec
		}
	}

	if best == nil || !accepted(bestRatio, m.thresholds.StrictFuzzy) {
		return "", false
	}

	m.logger.Info("matched stored question by string similarity",
		zap.String("question", key),
		zap.String("matched", bestKey),
		zap.Float64("ratio", bestRatio),
	)
	return best.Answer, true
}

// combinedScore blends weighted keyword similarity with raw string similarity
// and applies contextual bonuses. Capped at 1.0.
func combinedScore(keyA, keyB string, a, b KeywordSet, jobKeywords []string) float64 {
	score := 0.7*weightedJaccard(a.All(), b.All(), tagWeight) +
		0.3*sequenceRatio(keyA, keyB)

	if t := a.QuestionType(); t != "" && t == b.QuestionType() {
		score += 0.1
	}

	if lengthsComparable(keyA, keyB) {
		score += 0.05
	}

	if jobOverlapBonus(a, b, jobKeywords) {
		score += 0.1
	}

	score += experienceBonus(a, b)

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// lengthsComparable reports whether the two question lengths are within 80%
// of each other.
func lengthsComparable(a, b string) bool {
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return false
	}
	if la > lb {
		la, lb = lb, la
	}
	return float64(la)/float64(lb) >= 0.8
}

// jobOverlapBonus reports whether both questions share job-description
// keywords above a 70% overlap ratio.
func jobOverlapBonus(a, b KeywordSet, jobKeywords []string) bool {
	if len(jobKeywords) == 0 {
		return false
	}
	job := toSet(jobKeywords)
	inJobA := intersectSet(a.Stemmed, job)
	inJobB := intersectSet(b.Stemmed, job)
	if len(inJobA) == 0 || len(inJobB) == 0 {
		return false
	}
	return jaccard(inJobA, inJobB) > 0.7
}

func intersectSet(items []string, set map[string]bool) []string {
	var out []string
	for _, item := range items {
		if set[item] {
			out = append(out, item)
		}
	}
	return out
}

// experienceBonus rewards experience questions that mention close
// years-of-experience figures. Tag presence is what matters: an experience
// question phrased as "do you have N years" carries yes_no_question first,
// so the first-tag accessor would miss it.
func experienceBonus(a, b KeywordSet) float64 {
	if !a.HasTag("experience_question") || !b.HasTag("experience_question") {
		return 0
	}
	yearsA, okA := a.YearsOfExperience()
	yearsB, okB := b.YearsOfExperience()
	if !okA || !okB {
		return 0
	}
	diff := yearsA - yearsB
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 1:
		return 0.15
	case diff <= 3:
		return 0.05
	default:
		return 0
	}
}
