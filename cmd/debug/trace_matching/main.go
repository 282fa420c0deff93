package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"contract-redline-be/internal/config"
	"contract-redline-be/internal/repository/contract"
	"contract-redline-be/internal/repository/implementation"
	"contract-redline-be/internal/service"
	"contract-redline-be/pkg/database"
	"contract-redline-be/pkg/embedding"
	"contract-redline-be/pkg/playbook"
	"contract-redline-be/pkg/redline"

	"github.com/fatih/color"
)

// Traces the classification path for a contract file: paragraph
// extraction, stitching, noise filtering, keyword anchors vs semantic
// scores, and the final clause queue. When DB_CONNECTION_STRING is set
// the semantic scores come from the stored clause library via vector
// search. Usage:
//
//	go run ./cmd/debug/trace_matching contract.txt
func main() {
	cfg := config.Load()

	if len(os.Args) < 2 {
		log.Fatal("Usage: trace_matching <contract-text-file>")
	}
	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	provider, err := embedding.NewProvider(cfg.Ai.EmbeddingProvider, cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
	if err != nil {
		log.Fatalf("Failed to initialize embedding provider: %v", err)
	}
	pb := playbook.Default()
	matcher := redline.NewMatcher(provider)

	var clauseRepo contract.ClauseLibraryRepository
	var searcher redline.LibrarySearcher
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		clauseRepo = implementation.NewClauseLibraryRepository(db)
		searcher = service.NewClauseLibrarySearcher(clauseRepo)
		color.Cyan("Clause library: database vector search")
	} else {
		color.Cyan("Clause library: built-in playbook")
	}

	classifier := redline.NewClassifier(matcher, pb, redline.ClassifierConfig{
		SemanticFloor: cfg.Redline.SemanticFloor,
		Searcher:      searcher,
	})

	ctx := context.Background()

	paragraphs := redline.StitchParagraphs(redline.ExtractParagraphs(string(raw)))
	color.Cyan("Extracted %d paragraphs after stitching\n", len(paragraphs))

	for i, paragraph := range paragraphs {
		preview := paragraph
		if len(preview) > 80 {
			preview = preview[:80] + "..."
		}
		fmt.Printf("\n--- paragraph %d [%s] ---\n%s\n", i, redline.Fingerprint(paragraph), preview)

		if redline.IsNoise(paragraph) {
			color.Yellow("  noise: skipped")
			continue
		}
		if anchor := classifier.KeywordAnchor(paragraph); anchor != "" {
			color.Green("  keyword anchor: %s (score 1.0)", anchor)
			continue
		}

		if clauseRepo != nil {
			traceVectorSearch(ctx, matcher, clauseRepo, paragraph, cfg.Redline.SemanticFloor)
			continue
		}

		category, score, err := matcher.BestInLibrary(ctx, paragraph, pb.Library)
		if err != nil {
			color.Red("  embedding error: %v", err)
			continue
		}
		if category == playbook.CategoryUnknown || score <= cfg.Redline.SemanticFloor {
			color.Yellow("  semantic: best %s at %.4f (below floor %.2f, dropped)", category, score, cfg.Redline.SemanticFloor)
		} else {
			color.Green("  semantic: %s at %.4f", category, score)
		}
	}

	queue, err := classifier.BuildQueue(ctx, paragraphs)
	if err != nil {
		log.Fatalf("BuildQueue failed: %v", err)
	}

	color.Cyan("\n=== FINAL QUEUE (%d items) ===", len(queue))
	for _, item := range queue {
		fmt.Printf("  %-30s score=%.4f method=%s\n", item.Label, item.Score, item.Method)
		if clauseRepo == nil || item.Method != "semantic" {
			continue
		}
		clause, err := clauseRepo.FindByCategory(ctx, item.Label)
		if err != nil {
			color.Red("    library lookup error: %v", err)
			continue
		}
		if clause != nil {
			standard := clause.StandardText
			if len(standard) > 70 {
				standard = standard[:70] + "..."
			}
			fmt.Printf("    standard: %s\n", standard)
		}
	}
}

// traceVectorSearch shows the top library neighbors for one paragraph.
func traceVectorSearch(ctx context.Context, matcher *redline.Matcher, repo contract.ClauseLibraryRepository, paragraph string, floor float64) {
	vector, err := matcher.Embed(ctx, paragraph)
	if err != nil {
		color.Red("  embedding error: %v", err)
		return
	}
	scored, err := repo.SearchSimilar(ctx, vector, 3)
	if err != nil {
		color.Red("  vector search error: %v", err)
		return
	}
	if len(scored) == 0 {
		color.Yellow("  vector search: library empty")
		return
	}
	for rank, hit := range scored {
		if rank == 0 && hit.Similarity > floor {
			color.Green("  vector #%d: %s at %.4f", rank+1, hit.Clause.Category, hit.Similarity)
		} else if rank == 0 {
			color.Yellow("  vector #%d: %s at %.4f (below floor %.2f, dropped)", rank+1, hit.Clause.Category, hit.Similarity, floor)
		} else {
			fmt.Printf("  vector #%d: %s at %.4f\n", rank+1, hit.Clause.Category, hit.Similarity)
		}
	}
}
