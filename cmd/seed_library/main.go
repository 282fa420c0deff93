package main

import (
	"context"
	"log"
	"os"

	"contract-redline-be/internal/config"
	"contract-redline-be/internal/entity"
	"contract-redline-be/internal/model"
	"contract-redline-be/internal/repository/implementation"
	"contract-redline-be/pkg/database"
	"contract-redline-be/pkg/embedding"
	"contract-redline-be/pkg/playbook"

	"github.com/fatih/color"
)

// Seeds the clause library table from the built-in playbook: one row per
// category, standard text embedded with the configured model. Re-running
// re-embeds and overwrites, so it doubles as a migration after changing
// the embedding model.
func main() {
	cfg := config.Load()

	if cfg.Database.Connection == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	if err := db.AutoMigrate(&model.ClauseEmbedding{}); err != nil {
		log.Fatal("Error: AutoMigrate failed:", err)
	}

	provider, err := embedding.NewProvider(cfg.Ai.EmbeddingProvider, cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
	if err != nil {
		log.Fatal("Error: Failed to initialize embedding provider:", err)
	}
	repo := implementation.NewClauseLibraryRepository(db)
	pb := playbook.Default()

	ctx := context.Background()

	color.Cyan("Seeding clause library (%d categories, model %s)\n", len(pb.Categories), cfg.Ai.EmbeddingModel)

	var failed int
	for _, category := range pb.Categories {
		standardText := pb.Library[category]
		resp, err := provider.Generate(ctx, standardText)
		if err != nil {
			color.Red("  %s: embedding failed: %v", category, err)
			failed++
			continue
		}

		clause := &entity.ClauseEmbedding{
			Category:       category,
			StandardText:   standardText,
			Keywords:       pb.Keywords[category],
			EmbeddingValue: resp.Values,
		}
		if err := repo.Upsert(ctx, clause); err != nil {
			color.Red("  %s: upsert failed: %v", category, err)
			failed++
			continue
		}
		color.Green("  %s: seeded (%d dims, %d keywords)", category, len(resp.Values), len(clause.Keywords))
	}

	if failed > 0 {
		color.Yellow("\nDone with %d failures", failed)
		os.Exit(1)
	}
	color.Cyan("\nClause library seeding completed!")
}
