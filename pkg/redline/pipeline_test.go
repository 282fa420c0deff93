package redline

import (
	"context"
	"strings"
	"testing"

	"contract-redline-be/pkg/playbook"
)

// End-to-end run of the core pipeline against canned providers: extract,
// stitch, classify, generate, ground, patch. The model's quote is
// deliberately imperfect so grounding has real work to do.
func TestPipelineEndToEnd(t *testing.T) {
	document := "MASTER SERVICES AGREEMENT\n" +
		"1\n" +
		"12. Indemnification\n" +
		"Vendor shall indemnify Customer without limit for any and all claims.\n"

	modelOutput := `{
		"risk_score": 4,
		"reasoning": "Uncapped indemnity exposure.",
		"insertions": [],
		"deletions": [],
		"replacements": [{"from": "without limit", "to": "limited to direct damages"}],
		"comments": ["Capping indemnification at direct damages."]
	}`

	embedder := &stubEmbedder{fallback: []float32{1, 0}}
	model := &stubLLM{response: modelOutput}
	pb := playbook.Default()

	classifier := NewClassifier(NewMatcher(embedder), pb, ClassifierConfig{})
	generator := NewGenerator(model, pb, fastConfig(), nil)

	ctx := context.Background()

	paragraphs := StitchParagraphs(ExtractParagraphs(document))
	queue, err := classifier.BuildQueue(ctx, paragraphs)
	if err != nil {
		t.Fatal(err)
	}
	if len(queue) == 0 {
		t.Fatal("empty clause queue")
	}

	var indemnity *QueueItem
	for i := range queue {
		if queue[i].Label == "Indemnification" {
			indemnity = &queue[i]
		}
	}
	if indemnity == nil {
		t.Fatalf("no indemnification entry in queue: %+v", queue)
	}
	if indemnity.Method != MethodKeyword || indemnity.Score != 1.0 {
		t.Errorf("indemnification entry = %+v, want keyword anchor", indemnity)
	}

	records, err := generator.GenerateBatch(ctx, []QueueItem{*indemnity}, "Balance risk.", "Customer")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Status != ParseOK {
		t.Fatalf("records = %+v", records)
	}

	records[0].Delta = Ground(records[0].CpText, records[0].Delta)
	rep := records[0].Delta.Replacements[0]
	if !rep.Grounded {
		t.Fatal("replacement not grounded")
	}
	if rep.From != "without limit" {
		t.Fatalf("grounded From = %q, want the literal source substring", rep.From)
	}
	if !strings.Contains(records[0].CpText, rep.From) {
		t.Fatalf("grounded From %q not literal in source", rep.From)
	}

	result := ApplyRedlines(paragraphs, records)
	if len(result.Unapplied) != 0 {
		t.Fatalf("unapplied = %v", result.Unapplied)
	}

	var touched *PatchedParagraph
	for i := range result.Paragraphs {
		if result.Paragraphs[i].Touched {
			if touched != nil {
				t.Fatal("more than one paragraph touched")
			}
			touched = &result.Paragraphs[i]
		}
	}
	if touched == nil {
		t.Fatal("no paragraph touched")
	}

	var sawDelete, sawInsert bool
	for _, span := range touched.Spans {
		switch span.Kind {
		case SpanDelete:
			sawDelete = true
			if span.Text != "without limit" {
				t.Errorf("delete span = %q", span.Text)
			}
		case SpanInsert:
			sawInsert = true
			if span.Text != "limited to direct damages" {
				t.Errorf("insert span = %q", span.Text)
			}
		}
	}
	if !sawDelete || !sawInsert {
		t.Errorf("patched spans missing delete/insert: %+v", touched.Spans)
	}
}
