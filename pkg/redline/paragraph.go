package redline

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// ExtractParagraphs splits raw document text into non-empty trimmed
// paragraphs, one per line, preserving document order. Duplicate
// paragraphs stay as separate entries.
func ExtractParagraphs(rawText string) []string {
	if rawText == "" {
		return []string{}
	}

	lines := strings.Split(rawText, "\n")
	paragraphs := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		paragraphs = append(paragraphs, trimmed)
	}
	return paragraphs
}

const (
	stitchHeadingMax = 60 // a line shorter than this may be a clause heading
	stitchBodyMin    = 50 // the following line must be at least this long
)

// StitchParagraphs merges a short heading line with the longer body line
// that follows it. Extraction often splits "12. Indemnification" from its
// clause body; a heading on its own has no actionable content and degrades
// matching.
func StitchParagraphs(paragraphs []string) []string {
	stitched := make([]string, 0, len(paragraphs))
	skipNext := false

	for i := range paragraphs {
		if skipNext {
			skipNext = false
			continue
		}
		current := strings.TrimSpace(paragraphs[i])
		if i+1 < len(paragraphs) {
			next := strings.TrimSpace(paragraphs[i+1])
			if len(current) < stitchHeadingMax && len(next) > stitchBodyMin {
				stitched = append(stitched, current+"\n"+next)
				skipNext = true
				continue
			}
		}
		stitched = append(stitched, current)
	}
	return stitched
}

// Fingerprint returns a 16-character hex digest of the trimmed paragraph
// text. It is a pure function of content: the same text always hashes to
// the same value across runs and processes. Empty input returns "".
func Fingerprint(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(sum[:])[:16]
}

// IsNoise reports whether a paragraph is too short or purely numeric to be
// a clause of interest. Noise paragraphs are discarded before
// classification so they never produce a false clause match.
func IsNoise(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 5 {
		return true
	}
	for _, r := range trimmed {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// headerTerminators are the punctuation marks that signal a paragraph is a
// full sentence rather than a bare heading.
var headerTerminators = []string{".", ";", ":", "”", "\""}

// IsHeaderLike reports whether text looks like a section title or page
// artifact ("Article 1", "User Materials") rather than clause prose: short
// and lacking terminal punctuation. The delta generator skips these
// entirely so the model never invents edits to headings.
func IsHeaderLike(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	if len(strings.Fields(trimmed)) >= 8 {
		return false
	}
	for _, term := range headerTerminators {
		if strings.HasSuffix(trimmed, term) {
			return false
		}
	}
	return true
}
