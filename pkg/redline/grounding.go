package redline

// GroundingThreshold is the minimum similarity ratio between the longest
// common substring and the model's claimed "from" text for a replacement
// to be grounded.
const GroundingThreshold = 0.70

// LongestCommonSubstring returns the longest contiguous run of characters
// shared by a and b, as (start offset in a, length), measured in runes.
// When several equally long runs exist the first occurrence in a wins;
// ties are otherwise ambiguous and a deterministic pick keeps grounding
// reproducible.
func LongestCommonSubstring(a, b string) (int, int) {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0, 0
	}

	// Rolling single-row DP: row[j] is the length of the common suffix
	// ending at ra[i], rb[j].
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	bestLen := 0
	bestEnd := 0

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > bestLen {
					bestLen = curr[j]
					bestEnd = i
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}
	return bestEnd - bestLen, bestLen
}

// SimilarityRatio is a difflib-style measure in [0,1]: twice the longest
// common subsequence length over the total length of both strings. It is
// a heuristic, not a formal edit distance; it only has to separate "the
// model paraphrased the quote" from "the model hallucinated it".
func SimilarityRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	matched := prev[len(rb)]
	return 2.0 * float64(matched) / float64(total)
}

// Ground rewrites each replacement's "from" field to the exact literal
// substring present in the original paragraph, so downstream patching can
// locate it unambiguously. The model quotes text imperfectly (whitespace,
// punctuation, truncation); applying an imprecise quote as a literal
// search either misses or corrupts unrelated text.
//
// A replacement whose claimed quote cannot be anchored above the threshold
// is kept but left ungrounded: the pipeline drains results rather than
// silently losing them, and the patcher refuses to apply anything
// ungrounded.
func Ground(originalText string, delta Delta) Delta {
	return GroundWithThreshold(originalText, delta, GroundingThreshold)
}

// GroundWithThreshold is Ground with a caller-supplied acceptance ratio.
// A non-positive threshold falls back to the default.
func GroundWithThreshold(originalText string, delta Delta, threshold float64) Delta {
	if threshold <= 0 {
		threshold = GroundingThreshold
	}
	if len(delta.Replacements) == 0 {
		return delta
	}

	originalRunes := []rune(originalText)
	grounded := make([]Replacement, 0, len(delta.Replacements))

	for _, rep := range delta.Replacements {
		if rep.From == "" {
			continue
		}

		start, length := LongestCommonSubstring(originalText, rep.From)
		if length > 0 {
			matched := string(originalRunes[start : start+length])
			if SimilarityRatio(matched, rep.From) > threshold {
				rep.From = matched
				rep.Grounded = true
			}
		}
		grounded = append(grounded, rep)
	}

	delta.Replacements = grounded
	return delta
}
