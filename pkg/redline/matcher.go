package redline

import (
	"context"
	"fmt"
	"sort"

	"contract-redline-be/pkg/embedding"
	"contract-redline-be/pkg/playbook"
)

// DefaultMatchThreshold is the minimum pairwise similarity for a template
// paragraph to count as a match.
const DefaultMatchThreshold = 0.50

// Matcher computes semantic similarity between paragraphs using a
// pluggable embedding provider.
type Matcher struct {
	provider embedding.EmbeddingProvider
}

func NewMatcher(provider embedding.EmbeddingProvider) *Matcher {
	return &Matcher{provider: provider}
}

// Embed returns the embedding vector for one text.
func (m *Matcher) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := m.provider.Generate(ctx, text)
	if err != nil {
		return nil, err
	}
	return res.Values, nil
}

// BestInLibrary compares one query paragraph against a labeled library of
// canonical texts and returns the best-scoring label with its cosine
// similarity. Empty query or library returns the Unknown sentinel with
// score 0. Library keys are visited in sorted order so equal scores break
// ties deterministically.
func (m *Matcher) BestInLibrary(ctx context.Context, query string, library map[string]string) (string, float64, error) {
	if query == "" || len(library) == 0 {
		return playbook.CategoryUnknown, 0, nil
	}

	keys := make([]string, 0, len(library))
	for k := range library {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	texts := make([]string, len(keys))
	for i, k := range keys {
		texts[i] = library[k]
	}

	queryRes, err := m.provider.Generate(ctx, query)
	if err != nil {
		return playbook.CategoryUnknown, 0, fmt.Errorf("embed query: %w", err)
	}
	libRes, err := m.provider.GenerateBatch(ctx, texts)
	if err != nil {
		return playbook.CategoryUnknown, 0, fmt.Errorf("embed library: %w", err)
	}

	bestKey := playbook.CategoryUnknown
	bestScore := -1.0
	for i, res := range libRes {
		score := embedding.CosineSimilarity(queryRes.Values, res.Values)
		if score > bestScore {
			bestScore = score
			bestKey = keys[i]
		}
	}
	if bestScore < 0 {
		return playbook.CategoryUnknown, 0, nil
	}
	return bestKey, bestScore, nil
}

// PairwiseMatch matches every counterparty paragraph against its most
// similar template paragraph. Each counterparty paragraph is matched
// independently: the same template paragraph may win for several
// counterparty paragraphs. A best score below the threshold yields a
// record with nil match fields rather than a weak match. An empty template
// yields all-unmatched records; it is not an error.
func (m *Matcher) PairwiseMatch(ctx context.Context, cpParagraphs, tpParagraphs []string, threshold float64) ([]MatchRecord, error) {
	if len(cpParagraphs) == 0 {
		return []MatchRecord{}, nil
	}

	if len(tpParagraphs) == 0 {
		records := make([]MatchRecord, len(cpParagraphs))
		for i, cp := range cpParagraphs {
			records[i] = MatchRecord{
				CpText: cp,
				CpHash: Fingerprint(cp),
			}
		}
		return records, nil
	}

	cpEmb, err := m.provider.GenerateBatch(ctx, cpParagraphs)
	if err != nil {
		return nil, fmt.Errorf("embed counterparty paragraphs: %w", err)
	}
	tpEmb, err := m.provider.GenerateBatch(ctx, tpParagraphs)
	if err != nil {
		return nil, fmt.Errorf("embed template paragraphs: %w", err)
	}

	records := make([]MatchRecord, len(cpParagraphs))
	for i, cp := range cpParagraphs {
		bestIdx := 0
		bestScore := -1.0
		for j := range tpParagraphs {
			score := embedding.CosineSimilarity(cpEmb[i].Values, tpEmb[j].Values)
			if score > bestScore {
				bestScore = score
				bestIdx = j
			}
		}

		record := MatchRecord{
			CpText: cp,
			CpHash: Fingerprint(cp),
		}
		if bestScore >= threshold {
			tpText := tpParagraphs[bestIdx]
			tpHash := Fingerprint(tpText)
			similarity := bestScore
			record.TpText = &tpText
			record.TpHash = &tpHash
			record.Similarity = &similarity
		}
		records[i] = record
	}
	return records, nil
}
