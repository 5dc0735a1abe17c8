package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"ship-framework-be/internal/bootstrap"
	"ship-framework-be/internal/config"
	"ship-framework-be/internal/server"
	"ship-framework-be/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Tracer
	shutdownTracer := tracer.InitTracer(cfg)
	defer shutdownTracer(context.Background())

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(nil, cfg)
	if err != nil {
		log.Fatalf("[FATAL] Failed to bootstrap: %v", err)
	}

	// 4. Start Background Services
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := container.Start(ctx); err != nil {
		log.Fatalf("[FATAL] Failed to start background services: %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)
	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
	stop()
	container.Close()
}
