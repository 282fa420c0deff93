package main

import (
	"context"
	"log"

	"contract-redline-be/internal/bootstrap"
	"contract-redline-be/internal/config"
	"contract-redline-be/internal/model"
	"contract-redline-be/internal/server"
	"contract-redline-be/internal/tracer"
	"contract-redline-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database (optional: without it the pipeline runs off
	// the built-in playbook library)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		if err := db.AutoMigrate(&model.ClauseEmbedding{}); err != nil {
			log.Printf("[WARN] AutoMigrate failed: %v", err)
		}
		gormDB = db
	} else {
		log.Println("[INFO] DB_CONNECTION_STRING not set, running without clause library database")
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
