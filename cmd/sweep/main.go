package main

import (
	"context"
	"flag"
	"log"
	"time"

	"practicehub-be/internal/bootstrap"
	"practicehub-be/internal/config"
	"practicehub-be/pkg/database"

	"github.com/fatih/color"
)

// Standalone queue worker. Runs the same claim-and-dispatch loop the REST
// process exposes via POST /api/job/v1/sweep, for deployments that want the
// pipeline off the request path.
func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	go func() {
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	interval := time.Duration(cfg.Jobs.SweepIntervalSecs) * time.Second
	color.Cyan("Sweep worker started (interval %s, claim limit %d)", interval, cfg.Jobs.SweepClaimLimit)

	for {
		result, err := container.JobRunner.ProcessPendingJobs(context.Background(), cfg.Jobs.SweepClaimLimit)
		if err != nil {
			color.Red("Sweep failed: %v", err)
		} else if result.Processed > 0 {
			color.Green("Sweep: processed %d jobs (%d failed)", result.Processed, result.Failed)
		}

		if *once {
			return
		}
		time.Sleep(interval)
	}
}
