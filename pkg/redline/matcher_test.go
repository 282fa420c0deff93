package redline

import (
	"context"
	"errors"
	"testing"

	"contract-redline-be/pkg/embedding"
	"contract-redline-be/pkg/playbook"
)

// stubEmbedder returns fixed vectors per text, and a shared fallback for
// anything unregistered. It counts calls so tests can assert a path never
// touched the provider.
type stubEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
	calls    int
	err      error
}

func (s *stubEmbedder) Generate(ctx context.Context, text string) (*embedding.EmbeddingResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if vec, ok := s.vectors[text]; ok {
		return &embedding.EmbeddingResponse{Values: vec}, nil
	}
	return &embedding.EmbeddingResponse{Values: s.fallback}, nil
}

func (s *stubEmbedder) GenerateBatch(ctx context.Context, texts []string) ([]*embedding.EmbeddingResponse, error) {
	out := make([]*embedding.EmbeddingResponse, len(texts))
	for i, text := range texts {
		res, err := s.Generate(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = res
	}
	return out, nil
}

func TestBestInLibraryEmptyInputs(t *testing.T) {
	m := NewMatcher(&stubEmbedder{fallback: []float32{1, 0}})

	category, score, err := m.BestInLibrary(context.Background(), "", map[string]string{"A": "a"})
	if err != nil || category != playbook.CategoryUnknown || score != 0 {
		t.Errorf("empty query: got (%q, %v, %v)", category, score, err)
	}

	category, score, err = m.BestInLibrary(context.Background(), "query", nil)
	if err != nil || category != playbook.CategoryUnknown || score != 0 {
		t.Errorf("empty library: got (%q, %v, %v)", category, score, err)
	}
}

func TestBestInLibraryPicksHighest(t *testing.T) {
	stub := &stubEmbedder{
		vectors: map[string][]float32{
			"the query":     {1, 0},
			"close text":    {0.9, 0.1},
			"orthogonal":    {0, 1},
			"opposite text": {-1, 0},
		},
	}
	m := NewMatcher(stub)

	library := map[string]string{
		"Near": "close text",
		"Far":  "orthogonal",
		"Anti": "opposite text",
	}
	category, score, err := m.BestInLibrary(context.Background(), "the query", library)
	if err != nil {
		t.Fatal(err)
	}
	if category != "Near" {
		t.Errorf("category = %q, want Near", category)
	}
	if score <= 0.9 {
		t.Errorf("score = %v, want > 0.9", score)
	}
}

func TestBestInLibraryDeterministicTies(t *testing.T) {
	// Every library text embeds to the same vector: scores tie exactly.
	// Sorted key order must make the winner stable across runs.
	stub := &stubEmbedder{fallback: []float32{1, 0}}
	m := NewMatcher(stub)

	library := map[string]string{"Zeta": "z", "Alpha": "a", "Mid": "m"}
	for i := 0; i < 10; i++ {
		category, _, err := m.BestInLibrary(context.Background(), "query", library)
		if err != nil {
			t.Fatal(err)
		}
		if category != "Alpha" {
			t.Fatalf("run %d: category = %q, want Alpha (first sorted key)", i, category)
		}
	}
}

func TestBestInLibraryProviderError(t *testing.T) {
	m := NewMatcher(&stubEmbedder{err: errors.New("backend down")})
	_, _, err := m.BestInLibrary(context.Background(), "query", map[string]string{"A": "a"})
	if err == nil {
		t.Fatal("expected error from failing provider")
	}
}

func TestPairwiseMatchEmptyTemplate(t *testing.T) {
	m := NewMatcher(&stubEmbedder{fallback: []float32{1, 0}})

	cp := []string{"first paragraph", "second paragraph"}
	records, err := m.PairwiseMatch(context.Background(), cp, nil, DefaultMatchThreshold)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != len(cp) {
		t.Fatalf("got %d records, want %d", len(records), len(cp))
	}
	for i, rec := range records {
		if rec.CpText != cp[i] || rec.CpHash != Fingerprint(cp[i]) {
			t.Errorf("record %d source fields wrong: %+v", i, rec)
		}
		if rec.TpText != nil || rec.TpHash != nil || rec.Similarity != nil {
			t.Errorf("record %d should be unmatched: %+v", i, rec)
		}
	}
}

func TestPairwiseMatchThreshold(t *testing.T) {
	stub := &stubEmbedder{
		vectors: map[string][]float32{
			"strong candidate": {1, 0, 0},
			"strong target":    {0.95, 0.05, 0},
			"weak candidate":   {0, 0, 1}, // orthogonal to both targets
			"weak target":      {0, 1, 0},
		},
	}
	m := NewMatcher(stub)

	records, err := m.PairwiseMatch(context.Background(),
		[]string{"strong candidate", "weak candidate"},
		[]string{"strong target", "weak target"},
		DefaultMatchThreshold)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records", len(records))
	}

	strong := records[0]
	if strong.TpText == nil || *strong.TpText != "strong target" {
		t.Errorf("strong match missing: %+v", strong)
	}
	if strong.Similarity == nil || *strong.Similarity < DefaultMatchThreshold {
		t.Errorf("strong similarity wrong: %+v", strong.Similarity)
	}
	if strong.TpHash == nil || *strong.TpHash != Fingerprint("strong target") {
		t.Errorf("strong tp hash wrong: %+v", strong.TpHash)
	}

	weak := records[1]
	if weak.TpText != nil || weak.Similarity != nil {
		t.Errorf("below-threshold match must have nil fields, got %+v", weak)
	}
	if weak.CpHash != Fingerprint("weak candidate") {
		t.Errorf("weak record lost its source hash")
	}
}

func TestPairwiseMatchEmptyCounterparty(t *testing.T) {
	stub := &stubEmbedder{fallback: []float32{1, 0}}
	m := NewMatcher(stub)
	records, err := m.PairwiseMatch(context.Background(), nil, []string{"target"}, DefaultMatchThreshold)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
	if stub.calls != 0 {
		t.Errorf("provider called %d times for empty input", stub.calls)
	}
}
