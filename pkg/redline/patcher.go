package redline

import "strings"

// SpanKind marks how a span of a patched paragraph should be rendered in a
// tracked-changes representation.
type SpanKind string

const (
	SpanEqual  SpanKind = "equal"
	SpanInsert SpanKind = "insert"
	SpanDelete SpanKind = "delete"
)

// Span is one contiguous run of text with a single tracked-change state.
type Span struct {
	Kind SpanKind `json:"kind"`
	Text string   `json:"text"`
}

// PatchedParagraph is one source paragraph rewritten into spans. An
// untouched paragraph has a single equal span.
type PatchedParagraph struct {
	Hash    string `json:"hash"`
	Spans   []Span `json:"spans"`
	Touched bool   `json:"touched"`
}

// PatchResult is the patched paragraph sequence plus bookkeeping for the
// deltas that could not be applied. Ordering is structurally identical to
// the input sequence.
type PatchResult struct {
	Paragraphs []PatchedParagraph `json:"paragraphs"`
	Unapplied  []string           `json:"unapplied"` // clause labels of skipped deltas
}

const (
	// patchRatioThreshold is the fuzzy-locate floor for the slow path.
	patchRatioThreshold = 0.70

	// comparableLengthFactor limits the slow path to paragraphs within
	// this length factor of the delta's recorded source text.
	comparableLengthFactor = 2.0
)

// ApplyRedlines rewrites the paragraphs targeted by grounded delta records
// into exact/insert/delete span sequences. Each delta's target paragraph
// is located by fingerprint, then substring containment, then fuzzy ratio;
// a delta whose target cannot be found is skipped and reported, never an
// error for the batch.
func ApplyRedlines(paragraphs []string, records []DeltaRecord) PatchResult {
	result := PatchResult{
		Paragraphs: make([]PatchedParagraph, len(paragraphs)),
		Unapplied:  []string{},
	}

	byHash := make(map[string]int, len(paragraphs))
	for i, para := range paragraphs {
		result.Paragraphs[i] = PatchedParagraph{
			Hash:  Fingerprint(para),
			Spans: []Span{{Kind: SpanEqual, Text: para}},
		}
		// First occurrence wins for duplicate paragraphs.
		if _, seen := byHash[result.Paragraphs[i].Hash]; !seen {
			byHash[result.Paragraphs[i].Hash] = i
		}
	}

	for _, record := range records {
		if record.Delta.IsEmpty() {
			continue
		}
		idx, found := locateParagraph(paragraphs, byHash, record)
		if !found {
			result.Unapplied = append(result.Unapplied, record.ClauseType)
			continue
		}
		result.Paragraphs[idx] = patchParagraph(paragraphs[idx], record)
	}
	return result
}

// locateParagraph resolves a delta record to its source paragraph index.
func locateParagraph(paragraphs []string, byHash map[string]int, record DeltaRecord) (int, bool) {
	// Fast path: fingerprint exact match.
	if idx, ok := byHash[record.CpHash]; ok {
		return idx, true
	}

	// Stitching upstream may have altered paragraph boundaries; fall back
	// to substring containment in either direction.
	if record.CpText != "" {
		for i, para := range paragraphs {
			if strings.Contains(para, record.CpText) || strings.Contains(record.CpText, para) {
				return i, true
			}
		}
	}

	// Slow path: best fuzzy ratio among paragraphs of comparable length.
	bestIdx := -1
	bestRatio := 0.0
	srcLen := len(record.CpText)
	if srcLen == 0 {
		return 0, false
	}
	for i, para := range paragraphs {
		pLen := len(para)
		if pLen == 0 || float64(pLen) > float64(srcLen)*comparableLengthFactor ||
			float64(srcLen) > float64(pLen)*comparableLengthFactor {
			continue
		}
		ratio := SimilarityRatio(para, record.CpText)
		if ratio > bestRatio {
			bestRatio = ratio
			bestIdx = i
		}
	}
	if bestIdx >= 0 && bestRatio >= patchRatioThreshold {
		return bestIdx, true
	}
	return 0, false
}

// patchParagraph rewrites one paragraph into spans: at most one grounded
// replacement splits the text around its anchor (overlapping edits within
// one paragraph are not supported); further grounded replacements and
// plain deletions become trailing delete(+insert) spans; insertions become
// trailing insert spans. Ungrounded replacements are never applied — an
// unanchored quote applied verbatim would corrupt the document.
func patchParagraph(original string, record DeltaRecord) PatchedParagraph {
	patched := PatchedParagraph{
		Hash:    Fingerprint(original),
		Touched: true,
	}

	splitDone := false
	var trailing []Span

	for _, rep := range record.Delta.Replacements {
		if !rep.Grounded {
			continue
		}
		if !splitDone {
			if pos := strings.Index(original, rep.From); pos >= 0 {
				prefix := original[:pos]
				suffix := original[pos+len(rep.From):]
				if prefix != "" {
					patched.Spans = append(patched.Spans, Span{Kind: SpanEqual, Text: prefix})
				}
				patched.Spans = append(patched.Spans,
					Span{Kind: SpanDelete, Text: rep.From},
					Span{Kind: SpanInsert, Text: rep.To},
				)
				if suffix != "" {
					patched.Spans = append(patched.Spans, Span{Kind: SpanEqual, Text: suffix})
				}
				splitDone = true
				continue
			}
		}
		trailing = append(trailing,
			Span{Kind: SpanDelete, Text: rep.From},
			Span{Kind: SpanInsert, Text: rep.To},
		)
	}

	if !splitDone {
		patched.Spans = append([]Span{{Kind: SpanEqual, Text: original}}, patched.Spans...)
	}

	for _, del := range record.Delta.Deletions {
		trailing = append(trailing, Span{Kind: SpanDelete, Text: del})
	}
	for _, ins := range record.Delta.Insertions {
		trailing = append(trailing, Span{Kind: SpanInsert, Text: ins})
	}

	patched.Spans = append(patched.Spans, trailing...)
	return patched
}
