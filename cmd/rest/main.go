package main

import (
	"context"
	"log"
	"time"

	"practicehub-be/internal/bootstrap"
	"practicehub-be/internal/config"
	"practicehub-be/internal/server"
	"practicehub-be/internal/tracer"
	"practicehub-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Progress Consumer...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	go func() {
		interval := time.Duration(cfg.Jobs.SweepIntervalSecs) * time.Second
		log.Printf("Background: Starting Job Sweep (interval %s, claim limit %d)...", interval, cfg.Jobs.SweepClaimLimit)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			result, err := container.JobRunner.ProcessPendingJobs(context.Background(), cfg.Jobs.SweepClaimLimit)
			if err != nil {
				log.Printf("Background Sweep Error: %v", err)
			} else if result.Processed > 0 {
				log.Printf("Background Sweep: processed %d jobs (%d failed)", result.Processed, result.Failed)
			}
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
