package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vendhub/vendhub-core/internal/audit"
	"github.com/vendhub/vendhub-core/internal/planogram"
)

// handleFamilySet builds the handler for one device family's set endpoint:
// decode per the family's envelope, normalize against its field table,
// dispatch, classify. Success and offline answer 200 with the uniform
// result shape; platform failures answer 400 with the collaborator's raw
// diagnostic body.
func (s *Server) handleFamilySet(fam planogram.Family) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ts := time.Now().UnixMilli()

		appID := applicationID(r)
		if appID == "" {
			writeFailure(w, ts, failCodeMissingApplication, "Application id not found")
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeFailure(w, ts, failCodeInvalidPayload, "Invalid payload")
			return
		}

		payload, err := planogram.Decode(body, fam.Envelope)
		if err != nil {
			writeFailure(w, ts, failCodeInvalidPayload, "Invalid payload")
			return
		}

		deviceID, err := payload.DeviceID()
		if err != nil {
			writeFailure(w, ts, failCodeValidation, "Invalid payload: device_id is required")
			return
		}

		entries, fieldErrs := planogram.Normalize(payload, fam)
		if len(fieldErrs) > 0 {
			writeFailure(w, ts, failCodeValidation, "Invalid payload: "+joinFieldErrors(fieldErrs))
			return
		}
		if len(entries) == 0 {
			writeFailure(w, ts, failCodeNoEntries, "No configuration data provided")
			return
		}

		waitResult := payload.WaitResult()
		if fam.GroupBySensor {
			s.dispatchGrouped(w, r, fam.Name, appID, deviceID, entries, waitResult, ts)
			return
		}
		s.dispatchBatch(w, r, fam.Name, appID, planogram.ConfigBatch{
			DeviceID:   deviceID,
			Payload:    entries,
			WaitResult: waitResult,
		}, ts)
	}
}

// dispatchBatch sends one batch and writes the uniform outcome response.
func (s *Server) dispatchBatch(w http.ResponseWriter, r *http.Request, family, appID string, batch planogram.ConfigBatch, ts int64) {
	res, err := s.dispatcher.Dispatch(r.Context(), appID, batch)
	if err != nil {
		if errors.Is(err, planogram.ErrEmptyBatch) || errors.Is(err, planogram.ErrMissingDeviceID) {
			writeFailure(w, ts, failCodeNoEntries, "No configuration data provided")
			return
		}
		s.logger.Error("dispatch failed", "device_id", batch.DeviceID, "error", err)
		writeFailure(w, ts, failCodeInternal, "Internal server error")
		return
	}

	s.recordAudit(r.Context(), &audit.Log{
		Action:        audit.ActionDispatch,
		ApplicationID: appID,
		DeviceID:      batch.DeviceID,
		Family:        family,
		Status:        string(res.Status),
		ResultCode:    res.Code,
		CommandID:     res.CommandID,
		EntryCount:    len(batch.Payload),
	})

	writeDispatchOutcome(w, batch.DeviceID, res)
}

// dispatchGrouped sends one batch per sensor and reports the first failing
// sensor, if any. Accepted partitions stay accepted.
func (s *Server) dispatchGrouped(w http.ResponseWriter, r *http.Request, family, appID, deviceID string, entries []planogram.ConfigEntry, waitResult bool, ts int64) {
	res, err := s.dispatcher.DispatchGrouped(r.Context(), appID, deviceID, entries, waitResult)

	status := "success"
	resultCode := planogram.ResultSuccess
	commandID := ""
	if res.FailedSensor != "" {
		status = string(planogram.StatusFailed)
		resultCode = res.FailedResult.Code
	} else if len(res.Dispatched) > 0 {
		last := res.Dispatched[len(res.Dispatched)-1].Result
		status = string(last.Status)
		commandID = last.CommandID
	}
	s.recordAudit(r.Context(), &audit.Log{
		Action:        audit.ActionDispatch,
		ApplicationID: appID,
		DeviceID:      deviceID,
		Family:        family,
		Status:        status,
		ResultCode:    resultCode,
		CommandID:     commandID,
		EntryCount:    len(entries),
		Details:       groupedAuditDetails(res),
	})

	if err != nil {
		s.logger.Error("grouped dispatch failed",
			"device_id", deviceID,
			"failed_sensor", res.FailedSensor,
			"error", err)
		writeFailure(w, ts, failCodeInternal, "Internal server error")
		return
	}

	if !res.OK() {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"result":        res.FailedResult.Code,
			"device_id":     deviceID,
			"failed_sensor": res.FailedSensor,
			"message":       res.FailedResult.Message(),
			"dispatched":    len(res.Dispatched),
		})
		return
	}

	sensors := make([]map[string]any, 0, len(res.Dispatched))
	for _, d := range res.Dispatched {
		sensors = append(sensors, map[string]any{
			"sensor":     d.Sensor,
			"result":     d.Result.Code,
			"command_id": d.Result.CommandID,
			"message":    d.Result.Message(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"result":    planogram.ResultSuccess,
		"device_id": deviceID,
		"message":   "Command executed successfully",
		"sensors":   sensors,
	})
}

// writeDispatchOutcome writes the uniform single-batch outcome: 200 with
// {result, command_id, device_id, message} for executed or queued
// commands, 400 with the platform's raw body otherwise.
func writeDispatchOutcome(w http.ResponseWriter, deviceID string, res planogram.DispatchResult) {
	if res.OK() {
		writeJSON(w, http.StatusOK, map[string]any{
			"result":     res.Code,
			"command_id": res.CommandID,
			"device_id":  deviceID,
			"message":    res.Message(),
		})
		return
	}

	// Relay the collaborator's diagnostics verbatim; device-side error
	// detail must not be lost in translation.
	body := res.Body
	if body == nil {
		body = map[string]any{
			"result":    res.Code,
			"device_id": deviceID,
			"message":   res.Message(),
		}
	}
	writeJSON(w, http.StatusBadRequest, body)
}

func joinFieldErrors(errs []planogram.FieldError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ", ")
}

func groupedAuditDetails(res planogram.GroupedResult) map[string]any {
	sensors := make([]any, 0, len(res.Dispatched))
	for _, d := range res.Dispatched {
		sensors = append(sensors, d.Sensor)
	}
	details := map[string]any{"dispatched_sensors": sensors}
	if res.FailedSensor != "" {
		details["failed_sensor"] = res.FailedSensor
	}
	return details
}

// handleRetailSet imports a tabular retail planogram and dispatches it as
// one batch. Rows missing their selection, SKU, or name are skipped; a bad
// header rejects the whole import.
func (s *Server) handleRetailSet(w http.ResponseWriter, r *http.Request) {
	ts := time.Now().UnixMilli()

	appID := applicationID(r)
	if appID == "" {
		writeFailure(w, ts, failCodeMissingApplication, "Application id not found")
		return
	}

	var req struct {
		DeviceID   string  `json:"device_id"`
		WaitResult *bool   `json:"wait_result"`
		Table      [][]any `json:"table"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, ts, failCodeInvalidPayload, "Invalid payload")
		return
	}
	if req.DeviceID == "" {
		writeFailure(w, ts, failCodeValidation, "Invalid payload: device_id is required")
		return
	}

	entries, err := planogram.ImportRetailTable(req.Table)
	if err != nil {
		writeFailure(w, ts, failCodeValidation, err.Error())
		return
	}
	if len(entries) == 0 {
		writeFailure(w, ts, failCodeNoEntries, "No configuration data provided")
		return
	}

	waitResult := true
	if req.WaitResult != nil {
		waitResult = *req.WaitResult
	}
	s.dispatchBatch(w, r, "retail", appID, planogram.ConfigBatch{
		DeviceID:   req.DeviceID,
		Payload:    entries,
		WaitResult: waitResult,
	}, ts)
}

// handlePlanogramSet relays a raw config payload to the platform without
// normalization; legacy tooling builds the entry list itself.
func (s *Server) handlePlanogramSet(w http.ResponseWriter, r *http.Request) {
	ts := time.Now().UnixMilli()

	appID := applicationID(r)
	if appID == "" {
		writeFailure(w, ts, failCodeMissingApplication, "Application id not found")
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload == nil {
		writeFailure(w, ts, failCodeInvalidPayload, "Invalid payload")
		return
	}

	status, body, err := s.platform.SendConfig(r.Context(), appID, payload)
	if err != nil {
		s.logger.Error("config pass-through failed", "error", err)
		writeFailure(w, ts, failCodeInternal, "Internal server error")
		return
	}
	s.relayPlatformResponse(w, status, body)
}

// handleCommandSet relays a raw device command to the platform. Operator
// tooling uses this for non-planogram commands (reboot, door unlock) that
// don't go through normalization.
func (s *Server) handleCommandSet(w http.ResponseWriter, r *http.Request) {
	ts := time.Now().UnixMilli()

	appID := applicationID(r)
	if appID == "" {
		writeFailure(w, ts, failCodeMissingApplication, "Application id not found")
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload == nil {
		writeFailure(w, ts, failCodeInvalidPayload, "Invalid payload")
		return
	}

	status, body, err := s.platform.SendCommand(r.Context(), appID, payload)
	if err != nil {
		s.logger.Error("command pass-through failed", "error", err)
		writeFailure(w, ts, failCodeInternal, "Internal server error")
		return
	}
	s.relayPlatformResponse(w, status, body)
}

// handlePlanogramGet reads the latest sensor data for one device.
func (s *Server) handlePlanogramGet(w http.ResponseWriter, r *http.Request) {
	s.platformRead(w, r, func(ctx context.Context, appID, deviceID string) (int, map[string]any, error) {
		return s.platform.DeviceSensors(ctx, appID, deviceID)
	})
}

// handlePlanogramGetIce reads the flattened sensor tree ice machines
// report their planogram through.
func (s *Server) handlePlanogramGetIce(w http.ResponseWriter, r *http.Request) {
	s.platformRead(w, r, func(ctx context.Context, appID, deviceID string) (int, map[string]any, error) {
		return s.platform.FlattenedSensors(ctx, appID, deviceID)
	})
}

// handleCoffeeMilanoGet reads the current planogram of a Milano coffee
// machine. Identical to the generic read but kept as its own route; the
// machines' bridge firmware has the path baked in.
func (s *Server) handleCoffeeMilanoGet(w http.ResponseWriter, r *http.Request) {
	s.platformRead(w, r, func(ctx context.Context, appID, deviceID string) (int, map[string]any, error) {
		return s.platform.DeviceSensors(ctx, appID, deviceID)
	})
}

// platformRead runs one device-scoped platform read and relays the result.
// The device ID comes from either the device_id or id query parameter;
// older bridges use the short form.
func (s *Server) platformRead(w http.ResponseWriter, r *http.Request, read func(ctx context.Context, appID, deviceID string) (int, map[string]any, error)) {
	ts := time.Now().UnixMilli()

	appID := applicationID(r)
	if appID == "" {
		writeFailure(w, ts, failCodeMissingApplication, "Application id not found")
		return
	}

	deviceID := r.URL.Query().Get("device_id")
	if deviceID == "" {
		deviceID = r.URL.Query().Get("id")
	}
	if deviceID == "" {
		writeBadRequest(w, "device_id is required")
		return
	}

	status, body, err := read(r.Context(), appID, deviceID)
	if err != nil {
		s.logger.Error("platform read failed", "device_id", deviceID, "error", err)
		writeInternalError(w, "platform read failed")
		return
	}
	s.relayPlatformResponse(w, status, body)
}

// relayPlatformResponse forwards a platform response: 200 passes the body
// through, anything else becomes a 400 with the platform's body verbatim.
func (s *Server) relayPlatformResponse(w http.ResponseWriter, status int, body map[string]any) {
	if status == http.StatusOK {
		writeJSON(w, http.StatusOK, body)
		return
	}
	if body == nil {
		body = map[string]any{"result": -1, "message": "platform request failed"}
	}
	writeJSON(w, http.StatusBadRequest, body)
}
