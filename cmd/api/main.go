package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"focusflow/internal/api"
	"focusflow/internal/config"
	"focusflow/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Failed to load config:", err)
	}
	if cfg.Server.JWTSecret == "" {
		log.Fatal("❌ JWT_SECRET is not set")
	}

	database, err := db.Connect(cfg.DB.Driver, cfg.ConnString())
	if err != nil {
		log.Fatal("❌ Failed to connect DB:", err)
	}
	defer database.Close()

	if err := db.Migrate(database, cfg.DB.Driver); err != nil {
		log.Fatal("❌ Failed to migrate DB:", err)
	}
	log.Printf("✅ Connected to %s", cfg.DB.Driver)

	workspaces := api.NewWorkspaces(database, cfg.Sync.Debounce)

	mux := http.NewServeMux()
	api.Routes(mux, database, workspaces, []byte(cfg.Server.JWTSecret))

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Platform", "X-App-Version", "X-Session-Id", "Idempotency-Key"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           c.Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 API server is running on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[WARN] shutdown: %v", err)
	}
	// push anything still waiting on the debounce
	workspaces.Close(ctx)
	log.Println("👋 API server stopped")
}
