package redline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Replacement is a single search-and-replace edit. From is the text the
// model claims exists in the counterparty clause; after grounding it is
// guaranteed to be a literal substring of the source paragraph and
// Grounded is set. Grounded is internal state, not part of the wire shape.
type Replacement struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Grounded bool   `json:"-"`
}

// Delta is the normalized edit proposal for one clause. Every field is
// always a non-nil slice; an all-empty Delta means "no change".
type Delta struct {
	Insertions   []string      `json:"insertions"`
	Deletions    []string      `json:"deletions"`
	Replacements []Replacement `json:"replacements"`
	Comments     []string      `json:"comments"`
}

// EmptyDelta returns a Delta with all four lists empty (never nil).
func EmptyDelta() Delta {
	return Delta{
		Insertions:   []string{},
		Deletions:    []string{},
		Replacements: []Replacement{},
		Comments:     []string{},
	}
}

// IsEmpty reports whether the Delta proposes no change at all.
func (d Delta) IsEmpty() bool {
	return len(d.Insertions) == 0 && len(d.Deletions) == 0 &&
		len(d.Replacements) == 0 && len(d.Comments) == 0
}

// MatchRecord is the result of comparing one counterparty paragraph
// against a candidate pool. A record below the match threshold has a nil
// TpText and nil Similarity; "no match" and "low-confidence match" are
// never conflated.
type MatchRecord struct {
	CpText     string   `json:"cp_text"`
	TpText     *string  `json:"tp_text"`
	CpHash     string   `json:"cp_hash"`
	TpHash     *string  `json:"tp_hash"`
	Similarity *float64 `json:"similarity"`
}

// ParseStatus reports how the model output for one clause was handled.
// Parse failures are data, not errors: a batch of N clause analyses
// reports partial success uniformly.
type ParseStatus string

const (
	ParseOK    ParseStatus = "ok"          // valid JSON, possibly after brace extraction
	ParseError ParseStatus = "parse_error" // no usable JSON, delta forced empty
	CallError  ParseStatus = "call_error"  // the generation call itself failed
)

// DeltaRecord is the full per-clause analysis result: the matched pair,
// traceability metadata, the normalized Delta, and how generation went.
type DeltaRecord struct {
	ClauseType string      `json:"clause_type"`
	CpText     string      `json:"cp_text"`
	TpText     string      `json:"tp_text,omitempty"`
	CpHash     string      `json:"cp_hash"`
	TpHash     string      `json:"tp_hash,omitempty"`
	Similarity float64     `json:"similarity"`
	Method     string      `json:"method,omitempty"`
	RiskScore  int         `json:"risk_score"`
	Reasoning  string      `json:"reasoning,omitempty"`
	Delta      Delta       `json:"delta"`
	Status     ParseStatus `json:"status"`
	Error      string      `json:"error,omitempty"`
	Retries    int         `json:"retries,omitempty"`
}

// ParseDelta decodes untrusted model output into a normalized Delta. The
// raw text is decoded into a generic value tree first, never directly into
// the strict type: the model routinely returns scalars where lists belong,
// bare strings inside the replacements list, or prose around the JSON
// body. Whatever cannot be coerced is dropped, not fatal.
func ParseDelta(raw string) (Delta, DeltaMeta, ParseStatus) {
	tree, ok := decodeValueTree(raw)
	if !ok {
		return EmptyDelta(), DeltaMeta{}, ParseError
	}
	delta := NormalizeDelta(tree)
	meta := extractMeta(tree)
	return delta, meta, ParseOK
}

// DeltaMeta carries the optional risk fields the model returns alongside
// the four edit lists.
type DeltaMeta struct {
	RiskScore int
	Reasoning string
}

// decodeValueTree attempts a direct JSON decode, then falls back to the
// first top-level {...} block found in the text (models often wrap JSON in
// markdown fences or explanatory prose).
func decodeValueTree(raw string) (map[string]any, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var tree map[string]any
	if err := json.Unmarshal([]byte(cleaned), &tree); err == nil {
		return tree, true
	}

	extracted := extractJSON(cleaned)
	if extracted == "" {
		return nil, false
	}
	if err := json.Unmarshal([]byte(extracted), &tree); err != nil {
		return nil, false
	}
	return tree, true
}

// extractJSON isolates the outermost {...} block from a response.
func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")
	if startIdx == -1 || endIdx <= startIdx {
		return ""
	}
	return response[startIdx : endIdx+1]
}

// NormalizeDelta coerces a generic value tree into a strict Delta:
// every field becomes a list, scalar values occupying a list field are
// stringified and wrapped, and a replacement entry survives only if it is
// an object with non-empty "from" and "to" strings. Normalizing an
// already-normalized Delta is a no-op.
func NormalizeDelta(tree map[string]any) Delta {
	delta := EmptyDelta()
	if tree == nil {
		return delta
	}

	delta.Insertions = coerceStringList(tree["insertions"])
	delta.Deletions = coerceStringList(tree["deletions"])
	delta.Comments = coerceStringList(tree["comments"])

	items, ok := tree["replacements"].([]any)
	if !ok {
		return delta
	}
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			// Frequent failure mode: a bare string where the
			// {from,to} object belongs. Dropped, never fatal.
			continue
		}
		from := stringValue(obj["from"])
		to := stringValue(obj["to"])
		if from == "" || to == "" {
			continue
		}
		delta.Replacements = append(delta.Replacements, Replacement{From: from, To: to})
	}
	return delta
}

// coerceStringList forces a value into a list of non-empty strings.
// nil → empty list; a scalar → single-element list; list items are
// stringified individually.
func coerceStringList(v any) []string {
	switch val := v.(type) {
	case nil:
		return []string{}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := stringValue(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := stringValue(val); s != "" {
			return []string{s}
		}
		return []string{}
	}
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		// JSON numbers decode as float64; print integers without the
		// trailing ".0" noise.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func extractMeta(tree map[string]any) DeltaMeta {
	meta := DeltaMeta{}
	if score, ok := tree["risk_score"].(float64); ok {
		meta.RiskScore = int(score)
	}
	if reason, ok := tree["reasoning"].(string); ok {
		meta.Reasoning = reason
	}
	return meta
}
