package redline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"contract-redline-be/pkg/playbook"
)

const (
	// SemanticFloor is the minimum library similarity for a paragraph
	// with no keyword anchor to be classified at all.
	SemanticFloor = 0.40

	// ContinuationThreshold is the score above which a second candidate
	// for an already-claimed category is kept as a "(Cont.)" entry.
	// Clauses are sometimes split across paragraphs.
	ContinuationThreshold = 0.85
)

// Methods tagged on a classification.
const (
	MethodKeyword  = "keyword"
	MethodSemantic = "semantic"
)

// Classification is the outcome of classifying one paragraph.
type Classification struct {
	Text     string
	Category string
	Score    float64
	Method   string
}

// QueueItem is one matched (counterparty, standard) pair ready for delta
// generation.
type QueueItem struct {
	CpText string
	TpText string
	Label  string
	Score  float64
	Method string
}

// LibrarySearcher resolves an embedding vector to the nearest canonical
// clause category. A persistent vector index (pgvector) implements this;
// when absent the classifier scores against the in-memory playbook
// library instead.
type LibrarySearcher interface {
	Nearest(ctx context.Context, vector []float32) (category string, similarity float64, err error)
}

// ClassifierConfig tunes the semantic fallback.
type ClassifierConfig struct {
	// SemanticFloor overrides the default minimum similarity for a
	// semantic classification. Zero keeps the default.
	SemanticFloor float64

	// Searcher, when set, serves the semantic fallback from a vector
	// index instead of in-memory scoring.
	Searcher LibrarySearcher
}

// Classifier assigns counterparty paragraphs to standard clause
// categories. Keyword anchoring runs first as a hard override: clause
// headings are highly reliable signals that must not be outvoted by noisy
// embedding similarity. Semantic matching is the fallback.
type Classifier struct {
	matcher  *Matcher
	playbook *playbook.Playbook
	floor    float64
	searcher LibrarySearcher
}

func NewClassifier(matcher *Matcher, pb *playbook.Playbook, config ClassifierConfig) *Classifier {
	if config.SemanticFloor <= 0 {
		config.SemanticFloor = SemanticFloor
	}
	return &Classifier{
		matcher:  matcher,
		playbook: pb,
		floor:    config.SemanticFloor,
		searcher: config.Searcher,
	}
}

// KeywordAnchor returns the first category whose anchor keywords appear in
// the text (case-insensitive substring), following the playbook's fixed
// category order. Empty string means no anchor hit.
func (c *Classifier) KeywordAnchor(text string) string {
	textLower := strings.ToLower(text)
	for _, category := range c.playbook.Categories {
		for _, keyword := range c.playbook.Keywords[category] {
			if strings.Contains(textLower, keyword) {
				return category
			}
		}
	}
	return ""
}

// Classify decides which clause category a paragraph most likely
// represents. Returns nil (no error) when the paragraph is noise or
// matches nothing of interest.
func (c *Classifier) Classify(ctx context.Context, paragraph string) (*Classification, error) {
	if IsNoise(paragraph) {
		return nil, nil
	}

	if anchor := c.KeywordAnchor(paragraph); anchor != "" {
		return &Classification{
			Text:     paragraph,
			Category: anchor,
			Score:    1.0,
			Method:   MethodKeyword,
		}, nil
	}

	category, score, err := c.semanticMatch(ctx, paragraph)
	if err != nil {
		return nil, fmt.Errorf("semantic classification: %w", err)
	}
	if category == playbook.CategoryUnknown || score <= c.floor {
		return nil, nil
	}
	return &Classification{
		Text:     paragraph,
		Category: category,
		Score:    score,
		Method:   MethodSemantic,
	}, nil
}

// semanticMatch scores a paragraph against the clause library: via the
// vector index when one is wired, in memory otherwise.
func (c *Classifier) semanticMatch(ctx context.Context, paragraph string) (string, float64, error) {
	if c.searcher == nil {
		return c.matcher.BestInLibrary(ctx, paragraph, c.playbook.Library)
	}
	vector, err := c.matcher.Embed(ctx, paragraph)
	if err != nil {
		return playbook.CategoryUnknown, 0, err
	}
	return c.searcher.Nearest(ctx, vector)
}

// BuildQueue classifies a stitched paragraph sequence and deduplicates the
// candidates per category: the top scorer becomes the canonical
// representative; a runner-up with different text scoring above the
// continuation threshold is retained as a "<Category> (Cont.)" entry.
func (c *Classifier) BuildQueue(ctx context.Context, paragraphs []string) ([]QueueItem, error) {
	candidates := make(map[string][]*Classification)
	for _, para := range paragraphs {
		cls, err := c.Classify(ctx, para)
		if err != nil {
			return nil, err
		}
		if cls == nil {
			continue
		}
		candidates[cls.Category] = append(candidates[cls.Category], cls)
	}

	queue := make([]QueueItem, 0, len(candidates))
	for _, category := range c.playbook.Categories {
		group := candidates[category]
		if len(group) == 0 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Score > group[j].Score
		})
		winner := group[0]
		standard := c.playbook.StandardText(category)

		queue = append(queue, QueueItem{
			CpText: winner.Text,
			TpText: standard,
			Label:  category,
			Score:  winner.Score,
			Method: winner.Method,
		})

		if len(group) > 1 {
			runnerUp := group[1]
			if runnerUp.Score > ContinuationThreshold && runnerUp.Text != winner.Text {
				queue = append(queue, QueueItem{
					CpText: runnerUp.Text,
					TpText: standard,
					Label:  category + " (Cont.)",
					Score:  runnerUp.Score,
					Method: runnerUp.Method,
				})
			}
		}
	}
	return queue, nil
}
