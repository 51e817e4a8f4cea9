package forms

// Thresholds collects the acceptance cutoffs used across matching. The values
// are empirical and tunable; they are carried as configuration rather than
// embedded literals. All comparisons are strict: a score exactly at a cutoff
// is a miss.
type Thresholds struct {
	// SemanticOption accepts an option in the resolver's semantic pass.
	SemanticOption float64 `mapstructure:"semantic-option"`
	// FuzzyOption accepts an option in the resolver's fuzzy pass.
	FuzzyOption float64 `mapstructure:"fuzzy-option"`
	// Combined accepts a stored question by weighted keyword + string score.
	Combined float64 `mapstructure:"combined"`
	// StrictFuzzy accepts a stored question by raw string similarity alone.
	StrictFuzzy float64 `mapstructure:"strict-fuzzy"`
}

// DefaultThresholds returns the stock cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SemanticOption: 0.4,
		FuzzyOption:    0.5,
		Combined:       0.6,
		StrictFuzzy:    0.8,
	}
}

// accepted reports whether a score clears a threshold. Strictly greater by
// contract; boundary scores are treated as misses.
func accepted(score, threshold float64) bool {
	return score > threshold
}
