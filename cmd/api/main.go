package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pageza/foodtracking/backend/config"
	"github.com/pageza/foodtracking/backend/internal/app"
	"github.com/pageza/foodtracking/backend/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Channel to listen for an interrupt or terminate signal from the OS
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close()

	router, err := application.Router()
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	srv := server.New(cfg.ServerHost, cfg.ServerPort, router)
	log.Printf("Starting server on %s (env %s)", srv.Addr(), config.GetEnvironment())
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
