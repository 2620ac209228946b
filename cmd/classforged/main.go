// Package main starts the game HTTP service process lifecycle.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bergenthala/ai-class-generator/internal/game/app"
	"github.com/bergenthala/ai-class-generator/internal/platform/otel"
)

func main() {
	log.SetPrefix("[CLASSFORGED] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := otel.Setup(ctx, "classforged")
	if err != nil {
		log.Printf("otel setup: %v", err)
		shutdown = func(context.Context) error { return nil }
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
