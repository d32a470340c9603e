package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/moodfuse-labs/moodfuse/internal/adapters/engine"
	"github.com/moodfuse-labs/moodfuse/internal/adapters/memstore"
	"github.com/moodfuse-labs/moodfuse/internal/adapters/redisstore"
	"github.com/moodfuse-labs/moodfuse/internal/adapters/rest"
	"github.com/moodfuse-labs/moodfuse/internal/adapters/sqlite"
	"github.com/moodfuse-labs/moodfuse/internal/core/ports"
	"github.com/moodfuse-labs/moodfuse/internal/core/services"
	"github.com/moodfuse-labs/moodfuse/internal/worker"
)

func main() {
	// 1. Configuration (Environment Variables)
	// A local .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("WARN: could not load .env file: %v", err)
	}

	port := envOr("PORT", "8080")
	ttl := sessionTTL()

	// 2. Initialize "Driven" Adapters (The Tools)
	// -- Session Store Adapter
	sessionDriver := envOr("SESSION_DRIVER", "memory")

	var sessions ports.SessionStore
	var sessionsCloser func()

	switch sessionDriver {
	case "memory":
		store := memstore.New(ttl)
		sessions = store
		sessionsCloser = store.Close
	case "redis":
		store, err := redisstore.New(context.Background(),
			envOr("REDIS_ADDR", "127.0.0.1:6379"), os.Getenv("REDIS_PASSWORD"), ttl)
		if err != nil {
			log.Fatalf("FATAL: Failed to connect to redis: %v", err)
		}
		sessions = store
		sessionsCloser = func() {
			if err := store.Close(); err != nil {
				log.Printf("WARN: closing redis: %v", err)
			}
		}
	default:
		log.Fatalf("Unknown session driver: %s", sessionDriver)
	}
	defer sessionsCloser()

	// -- Database Adapter
	repo, err := sqlite.NewAdapter(envOr("STORAGE_PATH", "moodfuse.db"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	defer repo.Close()

	// -- Expression Engine Adapter
	classifier := engine.NewClient(os.Getenv("ENGINE_URL"))

	// 3. Initialize Core Logic (The Driver)
	// We inject the specific adapters into the agnostic service.
	svc := services.NewOrchestrator(sessions, repo, classifier)

	// 4. Initialize "Driving" Adapter (The Interface)
	pool := worker.NewPool(sessions, classifier, 100)
	pool.Start(2)
	defer pool.Stop()

	handler := rest.NewHandler(svc, pool)

	// 5. Start the Server
	log.Println("------------------------------------------------")
	log.Printf("😊 MoodFuse API is running on http://localhost:%s", port)
	log.Println("------------------------------------------------")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Fatal(err)
		}
	case <-ctx.Done():
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// sessionTTL reads SESSION_TTL as seconds; zero or unset means the store default.
func sessionTTL() time.Duration {
	raw := os.Getenv("SESSION_TTL")
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw + "s")
	if err != nil {
		log.Fatalf("FATAL: invalid SESSION_TTL %q: %v", raw, err)
	}
	return d
}
