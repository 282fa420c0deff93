package redline

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"contract-redline-be/pkg/llm"
	"contract-redline-be/pkg/playbook"
)

// GeneratorConfig bounds the external generation calls.
type GeneratorConfig struct {
	// MaxConcurrent caps outstanding LLM calls. This is the system's only
	// backpressure mechanism; it protects the model endpoint, not
	// internal state.
	MaxConcurrent int

	// Timeout is the per-clause ceiling on a single generation call.
	// Generous on purpose: local models redline slowly.
	Timeout time.Duration

	// Retries is how many additional attempts a failed call gets before
	// the clause is surfaced as errored. The retry count is reported on
	// the record.
	Retries int

	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration
}

func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		MaxConcurrent: 10,
		Timeout:       600 * time.Second,
		Retries:       1,
		RetryDelay:    2 * time.Second,
	}
}

// Generator produces structured redline deltas for matched clause pairs by
// prompting an external text-generation model and normalizing whatever it
// returns.
type Generator struct {
	provider llm.LLMProvider
	playbook *playbook.Playbook
	config   GeneratorConfig
	logger   *log.Logger
}

func NewGenerator(provider llm.LLMProvider, pb *playbook.Playbook, config GeneratorConfig, logger *log.Logger) *Generator {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	if config.Timeout <= 0 {
		config.Timeout = 600 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{
		provider: provider,
		playbook: pb,
		config:   config,
		logger:   logger,
	}
}

// ErrNoProvider means the generation capability is entirely absent. This
// is the one fatal condition: the whole analysis fails explicitly rather
// than silently returning an empty report.
var ErrNoProvider = errors.New("no text-generation provider configured")

// BuildPrompt assembles the single prompt string for one clause pair:
// firm-wide guidance, category rules, the assigned persona strategy, and
// the two texts clearly delimited, ending with the strict JSON contract.
func (g *Generator) BuildPrompt(item QueueItem, personaInstructions, role string) string {
	if role == "" {
		role = "Neutral"
	}
	cpBlock := item.CpText
	if cpBlock == "" {
		cpBlock = "(no counterparty clause present)"
	}
	tpBlock := item.TpText
	if tpBlock == "" {
		tpBlock = "(no template clause present)"
	}

	var b strings.Builder
	b.WriteString("You are a contract redlining engine acting as legal counsel for the ")
	b.WriteString(strings.ToUpper(role))
	b.WriteString(".\n\n")

	b.WriteString("### 1. FIRM-WIDE GUIDANCE (INTERNAL RULES)\n")
	b.WriteString("Apply these rules strictly, but DO NOT reference \"Playbook\", \"Policy\", or \"AI Instructions\" in your output.\n")
	b.WriteString("Write your comments as a human lawyer explaining the legal reasoning (e.g., \"Standardizing venue to New York\").\n\n")
	b.WriteString("Global Rules:\n")
	b.WriteString(g.playbook.GlobalGuidance)
	b.WriteString("\n\n")

	if rules, ok := g.playbook.SectionRules[baseCategory(item.Label)]; ok {
		b.WriteString("Section-Specific Rules (")
		b.WriteString(item.Label)
		b.WriteString("):\n")
		b.WriteString(rules)
		b.WriteString("\n\n")
	}

	b.WriteString("### 2. ASSIGNED STRATEGY\n")
	b.WriteString(personaInstructions)
	b.WriteString("\n\n---\n\n### TASK\n")
	b.WriteString("Review the Counterparty Clause against the Standard Provision.\n\n")
	b.WriteString("Clause Type: ")
	b.WriteString(item.Label)
	b.WriteString("\n\nCOUNTERPARTY VERSION:\n\"\"\"")
	b.WriteString(cpBlock)
	b.WriteString("\"\"\"\n\nSTANDARD VERSION:\n\"\"\"")
	b.WriteString(tpBlock)
	b.WriteString("\"\"\"\n\n")

	b.WriteString("Instructions:\n")
	b.WriteString("1. Ignore Headers: if the text is just a title (e.g., \"Article 1\"), return empty diffs unless it is factually wrong.\n")
	b.WriteString("2. Analyze: check for risks to the ")
	b.WriteString(role)
	b.WriteString(" or violations of the firm-wide guidance.\n")
	b.WriteString("3. Redline: generate JSON diffs. Ignore minor wording differences if the legal effect is the same.\n")
	b.WriteString("4. Comment: explain why you made changes using legal reasoning.\n\n")

	b.WriteString("Output STRICT JSON with this schema:\n")
	b.WriteString(`{
  "risk_score": 0,
  "reasoning": "one-line assessment",
  "insertions": ["text to add"],
  "deletions": ["text to remove"],
  "replacements": [{"from": "old text", "to": "new text"}],
  "comments": ["Legal reasoning for the change"]
}`)
	b.WriteString("\n\nRules:\n- Keep comments professional and direct.\n- Return empty lists if the clause is acceptable.\n- Output VALID JSON ONLY.\n")

	return b.String()
}

// baseCategory strips the "(Cont.)" suffix so continuation entries share
// their parent category's section rules.
func baseCategory(label string) string {
	return strings.TrimSpace(strings.TrimSuffix(label, "(Cont.)"))
}

// GenerateDelta produces the redline for a single matched clause pair.
// Header-like counterparty text short-circuits to an empty Delta without
// touching the model. Call failures and unparseable output are recovered
// into the record's Status field, never returned as errors.
func (g *Generator) GenerateDelta(ctx context.Context, item QueueItem, personaInstructions, role string) DeltaRecord {
	record := DeltaRecord{
		ClauseType: item.Label,
		CpText:     item.CpText,
		TpText:     item.TpText,
		CpHash:     Fingerprint(item.CpText),
		TpHash:     Fingerprint(item.TpText),
		Similarity: item.Score,
		Method:     item.Method,
		Delta:      EmptyDelta(),
		Status:     ParseOK,
	}

	if IsHeaderLike(item.CpText) {
		return record
	}

	prompt := g.BuildPrompt(item, personaInstructions, role)

	var raw string
	var err error
	for attempt := 0; attempt <= g.config.Retries; attempt++ {
		if attempt > 0 {
			record.Retries = attempt
			select {
			case <-ctx.Done():
				record.Status = CallError
				record.Error = ctx.Err().Error()
				return record
			case <-time.After(g.config.RetryDelay):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, g.config.Timeout)
		raw, err = g.provider.Generate(callCtx, prompt, llm.WithJSONFormat())
		cancel()
		if err == nil {
			break
		}
		g.logger.Printf("[WARN] generation attempt %d failed for %q: %v", attempt+1, item.Label, err)
	}
	if err != nil {
		record.Status = CallError
		record.Error = err.Error()
		return record
	}

	delta, meta, status := ParseDelta(raw)
	record.Delta = delta
	record.RiskScore = meta.RiskScore
	record.Reasoning = meta.Reasoning
	record.Status = status
	if status == ParseError {
		g.logger.Printf("[WARN] unparseable model output for %q, returning empty delta", item.Label)
	}
	return record
}

// GenerateBatch runs delta generation for every queue item concurrently,
// bounded by the configured semaphore. Tasks own their records start to
// finish; one clause failing does not cancel its siblings. Results are
// re-sorted by risk score descending after the gather — submission order
// is NOT preserved otherwise.
func (g *Generator) GenerateBatch(ctx context.Context, items []QueueItem, personaInstructions, role string) ([]DeltaRecord, error) {
	if g.provider == nil {
		return nil, ErrNoProvider
	}

	records := make([]DeltaRecord, len(items))
	sem := make(chan struct{}, g.config.MaxConcurrent)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(idx int, it QueueItem) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			records[idx] = g.GenerateDelta(ctx, it, personaInstructions, role)
		}(i, item)
	}
	wg.Wait()

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RiskScore > records[j].RiskScore
	})
	return records, nil
}
