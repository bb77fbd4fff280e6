package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rollcall/internal/config"
	"rollcall/internal/seed"
	"rollcall/internal/store"
)

// Seed loads the demo teacher and classes into the configured store.
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.StoreBackend == "memory" {
		log.Fatal("seeding the memory backend has no lasting effect; use SEED_DEMO=true on the api instead")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	backend, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("store open failed: %v", err)
	}
	defer backend.Close()

	if err := seed.Run(ctx, backend.Store); err != nil {
		log.Printf("seed failed: %v", err)
		backend.Close()
		os.Exit(1)
	}
	log.Printf("seeded %s store", cfg.StoreBackend)
}
