package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/vendhub/vendhub-core/internal/audit"
)

// handleAuditLogs lists recorded dispatch and stock-reconcile outcomes,
// newest first.
func (s *Server) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "audit trail is not enabled")
		return
	}

	result, err := s.audit.List(r.Context(), auditFilterFromQuery(r.URL.Query()))
	if err != nil {
		s.logger.Error("audit log list failed", "error", err)
		writeInternalError(w, "failed to list audit logs")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// auditFilterFromQuery maps query parameters onto a repository filter.
// Unparseable numbers fall back to the repository defaults.
func auditFilterFromQuery(q url.Values) audit.Filter {
	filter := audit.Filter{
		Action:   q.Get("action"),
		DeviceID: q.Get("device_id"),
		Status:   q.Get("status"),
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = v
	}
	return filter
}
