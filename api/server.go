/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the capture frontend

ROUTE GROUPS:
  /api/drafts/*    Draft workflow and ledger editing
  /api/sheets/*    Submitted route sheets (read-only)

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Draft workflow routes
		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", h.CreateDraft)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetDraft)
				r.Post("/advance", h.Advance)
				r.Post("/retreat", h.Retreat)
				r.Post("/reset", h.Reset)
				r.Get("/summary", h.GetSummary)
				r.Post("/submit", h.Submit)

				r.Route("/trips", func(r chi.Router) {
					r.Post("/", h.AddTrip)
					r.Put("/{tripID}", h.UpdateTrip)
					r.Delete("/{tripID}", h.RemoveTrip)
				})

				r.Route("/expenses", func(r chi.Router) {
					r.Post("/", h.AddExpense)
					r.Put("/{expenseID}", h.UpdateExpense)
					r.Delete("/{expenseID}", h.RemoveExpense)
				})
			})
		})

		// Submitted sheet routes
		r.Route("/sheets", func(r chi.Router) {
			r.Get("/", h.ListSheets)
			r.Get("/{id}", h.GetSheet)
		})
	})

	return r
}
