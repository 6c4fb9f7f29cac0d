/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the route-sheet capture server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse command-line flags
  2. Parse the compensation plan (built-in defaults or -plan file)
  3. Initialize SQLite store
  4. Create API handler with dependencies
  5. Configure HTTP router
  6. Start server with graceful shutdown

CONFIGURATION:
  Flags win over environment variables; a .env file in the working
  directory seeds the environment.

  -port / PORT          HTTP server port (default: 8080)
  -db   / DB_PATH       SQLite database path (default: routesheet.db)
                        Use ":memory:" for an in-memory database
  -plan / PLAN_PATH     Compensation plan JSON file (default: built-in)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/fleet.db"

  # Run with a fleet-specific compensation plan
  ./server -plan="./plans/night-shift.json"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/routesheet-engine/api"
	"github.com/warp/routesheet-engine/factory"
	"github.com/warp/routesheet-engine/pay"
	"github.com/warp/routesheet-engine/store/sqlite"
)

func main() {
	// A missing .env is fine; flags and the environment still apply.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envString("DB_PATH", "routesheet.db"), "SQLite database path")
	planPath := flag.String("plan", envString("PLAN_PATH", ""), "compensation plan JSON file")
	flag.Parse()

	plan, err := loadPlan(*planPath)
	if err != nil {
		log.Fatalf("Failed to load compensation plan: %v", err)
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler and router
	handler := api.NewHandler(store, plan)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// loadPlan parses a plan file, or returns the built-in defaults when no
// path is configured.
func loadPlan(path string) (pay.Plan, error) {
	if path == "" {
		return pay.DefaultPlan(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return pay.Plan{}, err
	}
	return factory.NewPlanFactory().ParsePlan(string(raw))
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return n
}
