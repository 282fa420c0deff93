package redline

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"contract-redline-be/pkg/llm"
	"contract-redline-be/pkg/playbook"
)

// stubLLM returns a canned response (or error) and counts calls.
type stubLLM struct {
	response string
	err      error
	failures int // fail this many calls before succeeding
	calls    int64
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.Generate(ctx, "", options...)
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	n := atomic.AddInt64(&s.calls, 1)
	if s.err != nil && int(n) <= s.failures {
		return "", s.err
	}
	if s.err != nil && s.failures == 0 {
		return "", s.err
	}
	return s.response, nil
}

func fastConfig() GeneratorConfig {
	return GeneratorConfig{
		MaxConcurrent: 4,
		Timeout:       5 * time.Second,
		Retries:       1,
		RetryDelay:    time.Millisecond,
	}
}

func prosperousItem() QueueItem {
	return QueueItem{
		CpText: "The Supplier shall indemnify the Customer against any and all claims without limit.",
		TpText: playbook.Default().Library["Indemnification"],
		Label:  "Indemnification",
		Score:  1.0,
		Method: MethodKeyword,
	}
}

func TestBuildPromptContents(t *testing.T) {
	g := NewGenerator(&stubLLM{}, playbook.Default(), fastConfig(), nil)
	item := prosperousItem()

	prompt := g.BuildPrompt(item, "Protect the buyer at all costs.", "Customer")

	for _, want := range []string{
		item.CpText,
		item.TpText,
		"Protect the buyer at all costs.",
		"CUSTOMER",
		"risk_score",
		"replacements",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// Section rules for the category must be included.
	if !strings.Contains(prompt, "uncapped indemnification") {
		t.Errorf("prompt missing indemnification section rules")
	}
}

func TestBuildPromptContinuationSharesRules(t *testing.T) {
	g := NewGenerator(&stubLLM{}, playbook.Default(), fastConfig(), nil)
	item := prosperousItem()
	item.Label = "Indemnification (Cont.)"

	prompt := g.BuildPrompt(item, "strategy", "Customer")
	if !strings.Contains(prompt, "uncapped indemnification") {
		t.Errorf("continuation label lost its parent section rules")
	}
}

func TestGenerateDeltaHeaderShortCircuit(t *testing.T) {
	stub := &stubLLM{response: `{"insertions": ["should never be seen"]}`}
	g := NewGenerator(stub, playbook.Default(), fastConfig(), nil)

	item := QueueItem{CpText: "Article 1", Label: "Indemnification", Score: 1.0, Method: MethodKeyword}
	record := g.GenerateDelta(context.Background(), item, "strategy", "Customer")

	if record.Status != ParseOK {
		t.Errorf("status = %q", record.Status)
	}
	if !record.Delta.IsEmpty() {
		t.Errorf("header delta not empty: %+v", record.Delta)
	}
	if atomic.LoadInt64(&stub.calls) != 0 {
		t.Errorf("header-like text reached the model")
	}
}

func TestGenerateDeltaParsesResponse(t *testing.T) {
	stub := &stubLLM{response: `{
		"risk_score": 4,
		"reasoning": "uncapped exposure",
		"insertions": [],
		"deletions": [],
		"replacements": [{"from": "without limit", "to": "limited to direct damages"}],
		"comments": ["Capping indemnity exposure."]
	}`}
	g := NewGenerator(stub, playbook.Default(), fastConfig(), nil)

	record := g.GenerateDelta(context.Background(), prosperousItem(), "strategy", "Customer")

	if record.Status != ParseOK {
		t.Fatalf("status = %q, error = %q", record.Status, record.Error)
	}
	if record.RiskScore != 4 || record.Reasoning != "uncapped exposure" {
		t.Errorf("meta = %d %q", record.RiskScore, record.Reasoning)
	}
	if len(record.Delta.Replacements) != 1 {
		t.Errorf("replacements = %+v", record.Delta.Replacements)
	}
	if record.CpHash != Fingerprint(record.CpText) || record.TpHash != Fingerprint(record.TpText) {
		t.Errorf("traceability hashes wrong")
	}
}

func TestGenerateDeltaUnparseableOutput(t *testing.T) {
	stub := &stubLLM{response: "I refuse to answer in JSON."}
	g := NewGenerator(stub, playbook.Default(), fastConfig(), nil)

	record := g.GenerateDelta(context.Background(), prosperousItem(), "strategy", "Customer")
	if record.Status != ParseError {
		t.Errorf("status = %q, want %q", record.Status, ParseError)
	}
	if !record.Delta.IsEmpty() {
		t.Errorf("unparseable output must yield an empty delta: %+v", record.Delta)
	}
}

func TestGenerateDeltaRetriesThenSucceeds(t *testing.T) {
	stub := &stubLLM{
		response: `{"insertions": [], "deletions": [], "replacements": [], "comments": ["ok"]}`,
		err:      errors.New("transient"),
		failures: 1,
	}
	g := NewGenerator(stub, playbook.Default(), fastConfig(), nil)

	record := g.GenerateDelta(context.Background(), prosperousItem(), "strategy", "Customer")
	if record.Status != ParseOK {
		t.Fatalf("status = %q, error = %q", record.Status, record.Error)
	}
	if record.Retries != 1 {
		t.Errorf("retries = %d, want 1", record.Retries)
	}
	if atomic.LoadInt64(&stub.calls) != 2 {
		t.Errorf("calls = %d, want 2", stub.calls)
	}
}

func TestGenerateDeltaCallFailure(t *testing.T) {
	stub := &stubLLM{err: errors.New("backend unreachable")}
	g := NewGenerator(stub, playbook.Default(), fastConfig(), nil)

	record := g.GenerateDelta(context.Background(), prosperousItem(), "strategy", "Customer")
	if record.Status != CallError {
		t.Errorf("status = %q, want %q", record.Status, CallError)
	}
	if record.Error == "" {
		t.Errorf("call failure must surface the error text")
	}
	if !record.Delta.IsEmpty() {
		t.Errorf("failed call must yield an empty delta")
	}
}

func TestGenerateBatchNoProvider(t *testing.T) {
	g := NewGenerator(nil, playbook.Default(), fastConfig(), nil)
	_, err := g.GenerateBatch(context.Background(), []QueueItem{prosperousItem()}, "strategy", "Customer")
	if !errors.Is(err, ErrNoProvider) {
		t.Errorf("err = %v, want ErrNoProvider", err)
	}
}

func TestGenerateBatchPartialFailure(t *testing.T) {
	// One clause fails its call; its siblings still complete.
	stub := &stubLLM{
		response: `{"risk_score": 1, "insertions": [], "deletions": [], "replacements": [], "comments": ["fine"]}`,
		err:      errors.New("flaky"),
		failures: 2, // first item burns both its attempts
	}
	g := NewGenerator(stub, playbook.Default(), GeneratorConfig{
		MaxConcurrent: 1, // serialize so the failure lands deterministically
		Timeout:       5 * time.Second,
		Retries:       1,
		RetryDelay:    time.Millisecond,
	}, nil)

	first := prosperousItem()
	second := prosperousItem()
	second.CpText = "Recipient shall guard all confidential information with reasonable care at minimum."
	second.Label = "Confidentiality"

	records, err := g.GenerateBatch(context.Background(), []QueueItem{first, second}, "strategy", "Customer")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d", len(records))
	}

	var failed, succeeded int
	for _, rec := range records {
		switch rec.Status {
		case CallError:
			failed++
		case ParseOK:
			succeeded++
		}
	}
	if failed != 1 || succeeded != 1 {
		t.Errorf("failed=%d succeeded=%d, want 1 and 1: %+v", failed, succeeded, records)
	}
}

func TestGenerateBatchSortsByRisk(t *testing.T) {
	// All items hit the same stub, so craft distinct responses via a
	// response-per-call provider.
	responses := []string{
		`{"risk_score": 1, "comments": ["minor"]}`,
		`{"risk_score": 5, "comments": ["severe"]}`,
		`{"risk_score": 3, "comments": ["moderate"]}`,
	}
	idx := int64(-1)
	provider := &sequenceLLM{responses: responses, idx: &idx}

	g := NewGenerator(provider, playbook.Default(), GeneratorConfig{
		MaxConcurrent: 1,
		Timeout:       5 * time.Second,
		Retries:       0,
		RetryDelay:    time.Millisecond,
	}, nil)

	items := make([]QueueItem, 3)
	for i := range items {
		items[i] = prosperousItem()
	}

	records, err := g.GenerateBatch(context.Background(), items, "strategy", "Customer")
	if err != nil {
		t.Fatal(err)
	}
	wantScores := []int{5, 3, 1}
	for i, want := range wantScores {
		if records[i].RiskScore != want {
			t.Errorf("records[%d].RiskScore = %d, want %d", i, records[i].RiskScore, want)
		}
	}
}

type sequenceLLM struct {
	responses []string
	idx       *int64
}

func (s *sequenceLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.Generate(ctx, "")
}

func (s *sequenceLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	n := atomic.AddInt64(s.idx, 1)
	return s.responses[int(n)%len(s.responses)], nil
}
