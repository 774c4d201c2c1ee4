package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vendhub/vendhub-core/internal/planogram"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)
	r.Use(s.applicationIDMiddleware)

	// Health check (no application header required)
	r.Get("/health", s.handleHealth)

	// Planogram set endpoints, one per device family. Paths follow the
	// frontend contract, which is why retailset and friends are flat.
	r.Route("/planogram", func(r chi.Router) {
		r.Post("/combo-porto-set", s.handleFamilySet(planogram.FamilyComboPorto))
		r.Post("/mc-pro-set", s.handleFamilySet(planogram.FamilyMcPro))
		r.Post("/playstationset", s.handleFamilySet(planogram.FamilyPlayStation))
		r.Post("/arcadeset", s.handleFamilySet(planogram.FamilyArcade))
		r.Post("/coffee-franke-set", s.handleFamilySet(planogram.FamilyCoffeeFranke))
		r.Post("/retailset", s.handleRetailSet)
		r.Post("/set", s.handlePlanogramSet)

		r.Post("/stock/history", s.handleStockHistory)

		r.Get("/get", s.handlePlanogramGet)
		r.Get("/get-ice", s.handlePlanogramGetIce)
		r.Get("/coffee-milano", s.handleCoffeeMilanoGet)
	})

	r.Post("/api/water-dispenser/set", s.handleFamilySet(planogram.FamilyWaterDispenser))

	// Raw command pass-through (reboot, door unlock)
	r.Post("/command/set", s.handleCommandSet)

	// RFID reader user table
	r.Get("/user-rfid-get", s.handleRFIDGet)
	r.Post("/user-rfid-set", s.handleRFIDSet)

	// Fleet
	r.Get("/devices", s.handleListDevices)

	// Scheduled task entry points
	r.Post("/tasks/stock", s.handleStockScan)

	// Audit trail
	r.Get("/audit/logs", s.handleAuditLogs)

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
