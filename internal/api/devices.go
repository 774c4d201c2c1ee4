package api

import (
	"net/http"
	"time"
)

// handleListDevices relays the platform's device list for the application,
// optionally filtered by repeated tag query parameters.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	appID := applicationID(r)
	if appID == "" {
		writeFailure(w, time.Now().UnixMilli(), failCodeMissingApplication, "Application id not found")
		return
	}

	tags := r.URL.Query()["tag"]

	status, body, err := s.platform.ListDevices(r.Context(), appID, tags)
	if err != nil {
		s.logger.Error("device list read failed", "error", err)
		writeInternalError(w, "platform read failed")
		return
	}
	s.relayPlatformResponse(w, status, body)
}
