package api

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vendhub/vendhub-core/internal/audit"
	"github.com/vendhub/vendhub-core/internal/planogram"
)

// handleStockHistory diffs two planogram snapshots and dispatches the
// resulting stock-change records through the normal batch contract, so the
// platform's per-device history picks them up alongside configuration
// changes.
func (s *Server) handleStockHistory(w http.ResponseWriter, r *http.Request) {
	ts := time.Now().UnixMilli()

	appID := applicationID(r)
	if appID == "" {
		writeFailure(w, ts, failCodeMissingApplication, "Application id not found")
		return
	}

	var req struct {
		DeviceID   string         `json:"device_id"`
		Previous   map[string]any `json:"previous"`
		New        map[string]any `json:"new"`
		Actor      string         `json:"actor"`
		WaitResult *bool          `json:"wait_result"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, ts, failCodeInvalidPayload, "Invalid payload")
		return
	}
	if req.DeviceID == "" {
		writeFailure(w, ts, failCodeValidation, "Invalid payload: device_id is required")
		return
	}
	if req.Previous == nil || req.New == nil {
		writeFailure(w, ts, failCodeValidation, "Invalid payload: previous and new snapshots are required")
		return
	}

	actor := req.Actor
	if actor == "" {
		actor = "system"
	}

	changes := planogram.Reconcile(toSnapshot(req.Previous), toSnapshot(req.New), actor, ts)
	if len(changes) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"result":    planogram.ResultSuccess,
			"device_id": req.DeviceID,
			"changes":   0,
			"message":   "No stock changes detected",
		})
		return
	}

	if s.stockTS != nil {
		when := time.UnixMilli(ts)
		for _, c := range changes {
			s.stockTS.WriteStockChange(req.DeviceID, c.Slot, c.Start, c.End, c.Difference, when)
		}
	}

	waitResult := true
	if req.WaitResult != nil {
		waitResult = *req.WaitResult
	}
	batch := planogram.ConfigBatch{
		DeviceID:   req.DeviceID,
		Payload:    planogram.StockHistoryEntries(changes),
		WaitResult: waitResult,
	}

	res, err := s.dispatcher.Dispatch(r.Context(), appID, batch)
	if err != nil {
		s.logger.Error("stock history dispatch failed", "device_id", req.DeviceID, "error", err)
		writeFailure(w, ts, failCodeInternal, "Internal server error")
		return
	}

	s.recordAudit(r.Context(), &audit.Log{
		Action:        audit.ActionStockReconcile,
		ApplicationID: appID,
		DeviceID:      req.DeviceID,
		Status:        string(res.Status),
		ResultCode:    res.Code,
		CommandID:     res.CommandID,
		EntryCount:    len(changes),
		Details:       map[string]any{"actor": actor},
	})

	if !res.OK() {
		writeDispatchOutcome(w, req.DeviceID, res)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"result":     res.Code,
		"command_id": res.CommandID,
		"device_id":  req.DeviceID,
		"changes":    len(changes),
		"message":    res.Message(),
	})
}

// toSnapshot narrows a decoded JSON object to slot records, dropping
// values that are not objects; the reconciler skips malformed records
// anyway, this just keeps its input typed.
func toSnapshot(raw map[string]any) planogram.Snapshot {
	snap := make(planogram.Snapshot, len(raw))
	for slot, v := range raw {
		if record, ok := v.(map[string]any); ok {
			snap[slot] = record
		}
	}
	return snap
}

// lowStockItem is one product at or below the alert threshold.
type lowStockItem struct {
	DeviceID string `json:"device_id"`
	Sensor   string `json:"sensor"`
	Stock    int    `json:"stock"`
}

// handleStockScan scans the latest stock levels across the application's
// fleet and, when any product sits at or below the configured threshold,
// sends a summary to the application's notification channel.
func (s *Server) handleStockScan(w http.ResponseWriter, r *http.Request) {
	ts := time.Now().UnixMilli()

	appID := applicationID(r)
	if appID == "" {
		writeFailure(w, ts, failCodeMissingApplication, "Application id not found")
		return
	}

	status, body, err := s.platform.StockLevels(r.Context(), appID)
	if err != nil {
		s.logger.Error("stock scan read failed", "error", err)
		writeInternalError(w, "platform read failed")
		return
	}
	if status != http.StatusOK {
		s.relayPlatformResponse(w, status, body)
		return
	}

	low := collectLowStock(body, s.stockCfg.AlertThreshold)

	notified := false
	if len(low) > 0 && s.notifier != nil {
		if err := s.notifier.SendText(r.Context(), appID, formatLowStockMessage(low, s.stockCfg.AlertThreshold)); err != nil {
			s.logger.Warn("low stock notification failed", "error", err)
		} else {
			notified = true
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scanned":   true,
		"threshold": s.stockCfg.AlertThreshold,
		"low_stock": low,
		"notified":  notified,
	})
}

// collectLowStock pulls (device, sensor, stock) triples at or below the
// threshold out of the platform's latest-data response.
func collectLowStock(body map[string]any, threshold int) []lowStockItem {
	items, _ := body["sensors"].([]any)

	var low []lowStockItem
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		value, ok := item["value"].(float64)
		if !ok || int(value) > threshold {
			continue
		}
		deviceID, _ := item["device_id"].(string)
		sensor, _ := item["sensor"].(string)
		low = append(low, lowStockItem{
			DeviceID: deviceID,
			Sensor:   sensor,
			Stock:    int(value),
		})
	}

	sort.Slice(low, func(i, j int) bool {
		if low[i].DeviceID != low[j].DeviceID {
			return low[i].DeviceID < low[j].DeviceID
		}
		return low[i].Sensor < low[j].Sensor
	})
	return low
}

// formatLowStockMessage renders the Telegram alert body (HTML).
func formatLowStockMessage(low []lowStockItem, threshold int) string {
	msg := fmt.Sprintf("<b>Low stock alert</b> (threshold %d)\n", threshold)
	for _, item := range low {
		msg += fmt.Sprintf("%s / %s: %d left\n", item.DeviceID, item.Sensor, item.Stock)
	}
	return msg
}
