package forms

// sequenceRatio reports character-level similarity of two strings in [0, 1],
// computed as 2*M/T where M is the total length of matching blocks and T the
// combined length. Matching blocks are found by locating the longest common
// substring and recursing on the pieces left and right of it, which keeps the
// ratios aligned with the values the matching thresholds were tuned against.
func sequenceRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return 2 * float64(matchedSize(ra, rb)) / float64(len(ra)+len(rb))
}

func matchedSize(a, b []rune) int {
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchedSize(a[:ai], b[:bi])
	total += matchedSize(a[ai+size:], b[bi+size:])
	return total
}

// longestMatch finds the longest common substring of a and b, preferring the
// earliest occurrence on ties.
func longestMatch(a, b []rune) (bestA, bestB, bestSize int) {
	j2len := make(map[int]int)
	for i := range a {
		next := make(map[int]int)
		for j := range b {
			if a[i] != b[j] {
				continue
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestSize {
				bestA, bestB, bestSize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	return bestA, bestB, bestSize
}

// weightedJaccard computes set similarity where every element contributes the
// weight returned by the supplied function, summed over the intersection and
// divided by the weighted union. Empty inputs score zero.
func weightedJaccard(a, b []string, weight func(string) float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA, setB := toSet(a), toSet(b)

	var intersection, union float64
	for item := range setA {
		w := weight(item)
		union += w
		if setB[item] {
			intersection += w
		}
	}
	for item := range setB {
		if !setA[item] {
			union += weight(item)
		}
	}

	if union == 0 {
		return 0
	}
	return intersection / union
}

// jaccard is weightedJaccard with uniform weights.
func jaccard(a, b []string) float64 {
	return weightedJaccard(a, b, func(string) float64 { return 1 })
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
