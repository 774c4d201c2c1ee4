// Package api provides the HTTP REST API for VendHub Core.
//
// It exposes the per-device-family planogram endpoints, RFID access rule
// management, stock reconciliation, device fleet reads, and the local
// dispatch audit trail to internal operator tooling.
//
// The server follows the same lifecycle pattern as the infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Every mutating endpoint identifies its tenant through the
// X-Application-Id header; the platform client forwards it upstream
// unchanged. All methods are safe for concurrent use.
package api
