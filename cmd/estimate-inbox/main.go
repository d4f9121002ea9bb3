// Command estimate-inbox receives takeoff handoffs over HTTP and stores them
// in SQLite for the estimating team.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"plan-takeoff/internal/config"
	"plan-takeoff/internal/estimate"
	"plan-takeoff/internal/version"
)

func main() {
	cfg := config.Load()
	log.Printf("Starting %s", version.String())

	store, err := estimate.Open(cfg.InboxDB)
	if err != nil {
		log.Fatalf("Failed to open inbox: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = store.Init(ctx)
	cancel()
	if err != nil {
		log.Fatalf("Failed to migrate inbox: %v", err)
	}

	app := estimate.NewApp(estimate.NewHandler(store), estimate.AppConfig{
		ReadTimeout:  cfg.ReadTimeoutDuration(),
		WriteTimeout: cfg.WriteTimeoutDuration(),
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Println("Shutting down estimate inbox")
		if err := app.Shutdown(); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Estimate Inbox on %s (env: %s, db: %s)", addr, cfg.Environment, cfg.InboxDB)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
