package api

import (
	"net/http"
	"sort"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vendhub/vendhub-core/internal/planogram"
)

var rfidTableKeys = []string{"RFID", "QUOTA", "STATE"}

// rfidCell is one rendered table cell. The operator frontend expects every
// cell wrapped with a success flag, even on the read path.
type rfidCell struct {
	Value   any    `json:"value"`
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

func cell(v any) rfidCell {
	return rfidCell{Value: v, Success: true, Status: ""}
}

// handleRFIDGet joins the reader's rule sensor (card id to quota) with its
// state sensor (card id to remaining balance) into table rows. Cards with
// a rule but no reported state show state 0.
func (s *Server) handleRFIDGet(w http.ResponseWriter, r *http.Request) {
	appID := applicationID(r)
	if appID == "" {
		writeFailure(w, time.Now().UnixMilli(), failCodeMissingApplication, "Application id not found")
		return
	}
	deviceID := r.URL.Query().Get("device_id")
	if deviceID == "" {
		writeBadRequest(w, "device_id query parameter is required")
		return
	}

	status, body, err := s.platform.RFIDRules(r.Context(), appID, deviceID)
	if err != nil || status != http.StatusOK {
		s.logger.Error("rfid rule read failed", "device_id", deviceID, "status", status, "error", err)
		writeInternalError(w, "failed to read rfid rules")
		return
	}
	rules := sensorValueMap(body)

	status, body, err = s.platform.RFIDStates(r.Context(), appID, deviceID)
	if err != nil || status != http.StatusOK {
		s.logger.Error("rfid state read failed", "device_id", deviceID, "status", status, "error", err)
		writeInternalError(w, "failed to read rfid states")
		return
	}
	states := sensorValueMap(body)

	ids := make([]string, 0, len(rules))
	for id := range rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tableData := make([]map[string]rfidCell, 0, len(ids))
	for _, id := range ids {
		state, ok := states[id]
		if !ok {
			state = 0
		}
		tableData = append(tableData, map[string]rfidCell{
			"RFID":  cell(id),
			"QUOTA": cell(rules[id]),
			"STATE": cell(state),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device_id":  deviceID,
		"table_data": tableData,
		"table_keys": rfidTableKeys,
		"time":       time.Now().UTC().Format(time.RFC3339),
	})
}

// sensorValueMap digs the first sensor's latest value object out of a
// platform latest-data response. Anything missing yields an empty map.
func sensorValueMap(body map[string]any) map[string]any {
	sensors, _ := body["sensors"].([]any)
	if len(sensors) == 0 {
		return map[string]any{}
	}
	first, _ := sensors[0].(map[string]any)
	latest, _ := first["latest_data"].(map[string]any)
	value, _ := latest["value"].(map[string]any)
	if value == nil {
		return map[string]any{}
	}
	return value
}

// handleRFIDSet converts operator table rows back into the reader's single
// rule entry and dispatches it. Rows missing either cell are dropped rather
// than failing the whole update.
func (s *Server) handleRFIDSet(w http.ResponseWriter, r *http.Request) {
	ts := time.Now().UnixMilli()

	appID := applicationID(r)
	if appID == "" {
		writeFailure(w, ts, failCodeMissingApplication, "Application id not found")
		return
	}

	var req struct {
		DeviceID   string                `json:"id"`
		Configs    []map[string]rfidCell `json:"configs"`
		WaitResult *bool                 `json:"wait_result"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, ts, failCodeInvalidPayload, "Invalid payload")
		return
	}
	if req.DeviceID == "" {
		writeFailure(w, ts, failCodeValidation, "Invalid payload: id is required")
		return
	}

	rules := make([]map[string]any, 0, len(req.Configs))
	for _, row := range req.Configs {
		id := row["RFID"].Value
		quota := row["QUOTA"].Value
		if id == nil || quota == nil {
			continue
		}
		rules = append(rules, map[string]any{"id": id, "quota": quota})
	}
	if len(rules) == 0 {
		writeFailure(w, ts, failCodeNoEntries, "No valid rfid rows in payload")
		return
	}

	waitResult := true
	if req.WaitResult != nil {
		waitResult = *req.WaitResult
	}
	batch := planogram.ConfigBatch{
		DeviceID: req.DeviceID,
		Payload: []planogram.ConfigEntry{{
			Sensor:     "user",
			Param:      "rule",
			Value:      rules,
			ConfigKind: "config",
		}},
		WaitResult: waitResult,
	}
	s.dispatchBatch(w, r, "rfid", appID, batch, ts)
}
