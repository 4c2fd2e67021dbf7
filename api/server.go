/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. Timeout:    Bounds every request
  5. CORS:       Cross-origin requests for the kiosk and admin frontends

ROUTE GROUPS:
  /api/employees/*   Clock actions, hours, time cards, day deletion
  /api/entries/*     Activity log and admin corrections
  /api/periods/*     Pay period navigation
  /api/reports/*     Payroll report and snapshots
  /api/dashboard     Admin dashboard
  /api/settings      Company settings
  /api/scenarios/*   Demo data
  /api/admin/reset   Database reset (dev only)

SECURITY NOTE:
  Only the per-employee PIN on the clock endpoint. Admin routes are public
  and must sit behind an authenticating proxy in production.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// requestTimeout bounds handler work that reaches the store.
const requestTimeout = 15 * time.Second

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins ...string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Post("/{id}/clock", h.ClockEmployee)
			r.Get("/{id}/hours", h.GetHours)
			r.Get("/{id}/timecard", h.GetTimeCard)
			r.Delete("/{id}/entries", h.DeleteDay)
		})

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Post("/", h.CreateEntry)
			r.Put("/{id}", h.EditEntry)
		})

		r.Route("/periods", func(r chi.Router) {
			r.Get("/current", h.GetCurrentPeriod)
			r.Put("/current", h.SetPeriod)
			r.Post("/navigate", h.NavigatePeriod)
			r.Post("/reset", h.ResetPeriod)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/payroll", h.GetPayrollReport)
			r.Get("/snapshot", h.GetSnapshot)
		})

		r.Get("/dashboard", h.GetDashboard)

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})

		r.Post("/admin/reset", h.ResetDatabase)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
