package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vendhub/vendhub-core/internal/planogram"
)

func okResult(code int) planogram.DispatchResult {
	status := planogram.StatusSuccess
	if code == planogram.ResultOffline {
		status = planogram.StatusOffline
	}
	return planogram.DispatchResult{
		Status:    status,
		Code:      code,
		CommandID: "cmd-1",
		Body:      map[string]any{"result": float64(code), "command_id": "cmd-1"},
	}
}

func failedResult(code int, body map[string]any) planogram.DispatchResult {
	return planogram.DispatchResult{Status: planogram.StatusFailed, Code: code, Body: body}
}

// ─── Family Set Tests ──────────────────────────────────────────────

func TestComboPortoSet(t *testing.T) {
	dispatcher := &stubDispatcher{res: okResult(planogram.ResultSuccess)}
	srv := testServer(t, dispatcher, nil)
	router := srv.buildRouter()

	payload := planogram.Payload{
		"device_id": "dev-1",
		"ids":       map[string]any{"A1": "101"},
		"prices":    map[string]any{"A1": 2.5},
	}
	envelope, err := planogram.EncodeBase64(payload)
	if err != nil {
		t.Fatalf("EncodeBase64: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/planogram/combo-porto-set", bytes.NewReader(envelope))
	req.Header.Set(HeaderApplicationID, testAppID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["message"] != "Command executed successfully" {
		t.Errorf("message = %v", resp["message"])
	}
	if resp["device_id"] != "dev-1" {
		t.Errorf("device_id = %v, want dev-1", resp["device_id"])
	}
	if resp["command_id"] != "cmd-1" {
		t.Errorf("command_id = %v, want cmd-1", resp["command_id"])
	}

	if len(dispatcher.batches) != 1 {
		t.Fatalf("dispatched %d batches, want 1", len(dispatcher.batches))
	}
	batch := dispatcher.batches[0]
	if batch.DeviceID != "dev-1" {
		t.Errorf("batch device = %q", batch.DeviceID)
	}
	if !batch.WaitResult {
		t.Error("wait_result should default to true")
	}
	if len(batch.Payload) != 2 {
		t.Errorf("batch entries = %d, want 2", len(batch.Payload))
	}
	if dispatcher.appIDs[0] != testAppID {
		t.Errorf("application id = %q, want %q", dispatcher.appIDs[0], testAppID)
	}
}

func TestComboPortoSetRejectsPlainJSON(t *testing.T) {
	srv := testServer(t, nil, nil)
	router := srv.buildRouter()

	// Body missing the base64 data wrapper.
	w := doJSON(t, router, http.MethodPost, "/planogram/combo-porto-set", testAppID,
		map[string]any{"device_id": "dev-1"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	resp := decodeBody(t, w)
	if code, _ := resp["code"].(float64); int(code) != failCodeInvalidPayload {
		t.Errorf("code = %v, want %d", resp["code"], failCodeInvalidPayload)
	}
}

func TestWaterDispenserSet(t *testing.T) {
	dispatcher := &stubDispatcher{res: okResult(planogram.ResultSuccess)}
	srv := testServer(t, dispatcher, nil)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodPost, "/api/water-dispenser/set", testAppID, map[string]any{
		"device_id":     "wd-1",
		"durationWater": 12.0,
		"priceWater":    3.0,
		"durationCup":   8.0,
		"priceCup":      1.5,
		"stockCup":      40.0,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if len(dispatcher.batches) != 1 {
		t.Fatalf("dispatched %d batches, want 1", len(dispatcher.batches))
	}
	if got := len(dispatcher.batches[0].Payload); got != 5 {
		t.Errorf("batch entries = %d, want 5", got)
	}
}

func TestWaterDispenserSetMissingField(t *testing.T) {
	dispatcher := &stubDispatcher{res: okResult(planogram.ResultSuccess)}
	srv := testServer(t, dispatcher, nil)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodPost, "/api/water-dispenser/set", testAppID, map[string]any{
		"device_id":     "wd-1",
		"durationWater": 12.0,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	resp := decodeBody(t, w)
	if code, _ := resp["code"].(float64); int(code) != failCodeValidation {
		t.Errorf("code = %v, want %d", resp["code"], failCodeValidation)
	}
	if len(dispatcher.batches) != 0 {
		t.Error("nothing should be dispatched on validation failure")
	}
}

func TestFamilySetMissingDeviceID(t *testing.T) {
	srv := testServer(t, nil, nil)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodPost, "/planogram/mc-pro-set", testAppID, map[string]any{
		"prices": map[string]any{"A1": 2.5},
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	resp := decodeBody(t, w)
	if code, _ := resp["code"].(float64); int(code) != failCodeValidation {
		t.Errorf("code = %v, want %d", resp["code"], failCodeValidation)
	}
}

func TestFamilySetNoEntries(t *testing.T) {
	srv := testServer(t, nil, nil)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodPost, "/planogram/mc-pro-set", testAppID, map[string]any{
		"device_id": "dev-1",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	resp := decodeBody(t, w)
	if code, _ := resp["code"].(float64); int(code) != failCodeNoEntries {
		t.Errorf("code = %v, want %d", resp["code"], failCodeNoEntries)
	}
}

func TestOfflineDeviceIsAccepted(t *testing.T) {
	dispatcher := &stubDispatcher{res: okResult(planogram.ResultOffline)}
	srv := testServer(t, dispatcher, nil)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodPost, "/planogram/arcadeset", testAppID, map[string]any{
		"device_id": "arc-1",
		"pulse":     4.0,
		"price":     map[string]any{"token": 1.0},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["message"] != "Command queued successfully but device is currently offline" {
		t.Errorf("message = %v", resp["message"])
	}
	if code, _ := resp["result"].(float64); int(code) != planogram.ResultOffline {
		t.Errorf("result = %v, want %d", resp["result"], planogram.ResultOffline)
	}
}

func TestFailureRelaysPlatformBody(t *testing.T) {
	raw := map[string]any{
		"result":  float64(3),
		"message": "motor jam on column 3",
		"detail":  map[string]any{"column": float64(3)},
	}
	dispatcher := &stubDispatcher{res: failedResult(3, raw)}
	srv := testServer(t, dispatcher, nil)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodPost, "/planogram/arcadeset", testAppID, map[string]any{
		"device_id": "arc-1",
		"pulse":     4.0,
		"price":     map[string]any{"token": 1.0},
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	resp := decodeBody(t, w)
	if resp["message"] != "motor jam on column 3" {
		t.Errorf("platform body not relayed: %v", resp)
	}
}

func TestFamilySetRecordsAudit(t *testing.T) {
	dispatcher := &stubDispatcher{res: okResult(planogram.ResultSuccess)}
	srv := testServer(t, dispatcher, nil)
	trail := &memAudit{}
	srv.audit = trail
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodPost, "/planogram/mc-pro-set", testAppID, map[string]any{
		"device_id": "dev-1",
		"prices":    map[string]any{"A1": 2.5},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	if len(trail.logs) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(trail.logs))
	}
	log := trail.logs[0]
	if log.Family != "mc-pro" {
		t.Errorf("family = %q", log.Family)
	}
	if log.Status != "success" || log.EntryCount != 1 {
		t.Errorf("log = %+v", log)
	}
}

// ─── Grouped Dispatch Tests ────────────────────────────────────────

func TestCoffeeFrankeSetGrouped(t *testing.T) {
	dispatcher := &stubDispatcher{grouped: planogram.GroupedResult{
		Dispatched: []planogram.SensorDispatch{
			{Sensor: "s1", Result: okResult(planogram.ResultSuccess)},
			{Sensor: "s2", Result: okResult(planogram.ResultOffline)},
		},
	}}
	srv := testServer(t, dispatcher, nil)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodPost, "/planogram/coffee-franke-set", testAppID, map[string]any{
		"device_id": "cf-1",
		"prices":    map[string]any{"s1": 3.0, "s2": 3.5},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	sensors, _ := resp["sensors"].([]any)
	if len(sensors) != 2 {
		t.Fatalf("sensors = %d, want 2", len(sensors))
	}
	second, _ := sensors[1].(map[string]any)
	if second["message"] != "Command queued successfully but device is currently offline" {
		t.Errorf("offline partition message = %v", second["message"])
	}
}

func TestCoffeeFrankeSetGroupedFailure(t *testing.T) {
	dispatcher := &stubDispatcher{grouped: planogram.GroupedResult{
		Dispatched: []planogram.SensorDispatch{
			{Sensor: "s1", Result: okResult(planogram.ResultSuccess)},
		},
		FailedSensor: "s2",
		FailedResult: failedResult(7, map[string]any{"result": float64(7)}),
	}}
	srv := testServer(t, dispatcher, nil)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodPost, "/planogram/coffee-franke-set", testAppID, map[string]any{
		"device_id": "cf-1",
		"prices":    map[string]any{"s1": 3.0, "s2": 3.5},
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	resp := decodeBody(t, w)
	if resp["failed_sensor"] != "s2" {
		t.Errorf("failed_sensor = %v", resp["failed_sensor"])
	}
	if code, _ := resp["result"].(float64); int(code) != 7 {
		t.Errorf("result = %v, want 7", resp["result"])
	}
	if n, _ := resp["dispatched"].(float64); int(n) != 1 {
		t.Errorf("dispatched = %v, want 1", resp["dispatched"])
	}
	if resp["message"] != "Operation failed with code 7" {
		t.Errorf("message = %v", resp["message"])
	}
}

// ─── Retail Import Tests ───────────────────────────────────────────

func retailTable() [][]any {
	return [][]any{
		{"selection", "sku", "name", "price", "stock", "active", "order", "type", "image", "description"},
		{"A1", "sku-1", "Cola", 2.5, 10.0, true, 1.0, "drink", "", ""},
	}
}

func TestRetailSet(t *testing.T) {
	dispatcher := &stubDispatcher{res: okResult(planogram.ResultSuccess)}
	srv := testServer(t, dispatcher, nil)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodPost, "/planogram/retailset", testAppID, map[string]any{
		"device_id": "rt-1",
		"table":     retailTable(),
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if len(dispatcher.batches) != 1 {
		t.Fatalf("dispatched %d batches, want 1", len(dispatcher.batches))
	}
	if dispatcher.batches[0].DeviceID != "rt-1" {
		t.Errorf("device = %q", dispatcher.batches[0].DeviceID)
	}
}

func TestRetailSetBadHeader(t *testing.T) {
	dispatcher := &stubDispatcher{res: okResult(planogram.ResultSuccess)}
	srv := testServer(t, dispatcher, nil)
	router := srv.buildRouter()

	table := retailTable()
	table[0][1] = "product_code"

	w := doJSON(t, router, http.MethodPost, "/planogram/retailset", testAppID, map[string]any{
		"device_id": "rt-1",
		"table":     table,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	resp := decodeBody(t, w)
	if code, _ := resp["code"].(float64); int(code) != failCodeValidation {
		t.Errorf("code = %v, want %d", resp["code"], failCodeValidation)
	}
	if len(dispatcher.batches) != 0 {
		t.Error("bad header must not dispatch")
	}
}

func TestRetailSetMissingDevice(t *testing.T) {
	srv := testServer(t, nil, nil)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodPost, "/planogram/retailset", testAppID, map[string]any{
		"table": retailTable(),
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// ─── Pass-through and Read Tests ───────────────────────────────────

func TestPlanogramSetPassThrough(t *testing.T) {
	platform := &stubPlatform{sendConfig: platformResponse{
		status: http.StatusOK,
		body:   map[string]any{"result": float64(0)},
	}}
	srv := testServer(t, nil, platform)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodPost, "/planogram/set", testAppID, map[string]any{
		"device_id": "dev-1",
		"sensor":    "user",
		"param":     "rule",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	sent, _ := platform.sentConfig.(map[string]any)
	if sent["sensor"] != "user" {
		t.Errorf("payload not forwarded: %v", platform.sentConfig)
	}
}

func TestCommandSetPassThrough(t *testing.T) {
	platform := &stubPlatform{sendCommand: platformResponse{
		status: http.StatusOK,
		body:   map[string]any{"result": float64(0), "command_id": "cmd-9"},
	}}
	srv := testServer(t, nil, platform)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodPost, "/command/set", testAppID, map[string]any{
		"device_id": "dev-1",
		"command":   "reboot",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	sent, _ := platform.sentCommand.(map[string]any)
	if sent["command"] != "reboot" {
		t.Errorf("payload not forwarded: %v", platform.sentCommand)
	}
	resp := decodeBody(t, w)
	if resp["command_id"] != "cmd-9" {
		t.Errorf("response not relayed: %v", resp)
	}
}

func TestPlanogramGet(t *testing.T) {
	platform := &stubPlatform{sensors: platformResponse{
		status: http.StatusOK,
		body:   map[string]any{"sensors": []any{}},
	}}
	srv := testServer(t, nil, platform)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodGet, "/planogram/get?device_id=dev-9", testAppID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if len(platform.deviceIDs) != 1 || platform.deviceIDs[0] != "dev-9" {
		t.Errorf("device ids = %v", platform.deviceIDs)
	}
}

func TestPlanogramGetShortIDParam(t *testing.T) {
	platform := &stubPlatform{sensors: platformResponse{status: http.StatusOK, body: map[string]any{}}}
	srv := testServer(t, nil, platform)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodGet, "/planogram/get?id=dev-9", testAppID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(platform.deviceIDs) != 1 || platform.deviceIDs[0] != "dev-9" {
		t.Errorf("device ids = %v", platform.deviceIDs)
	}
}

func TestPlanogramGetMissingDevice(t *testing.T) {
	srv := testServer(t, nil, nil)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodGet, "/planogram/get", testAppID, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestPlanogramGetIce(t *testing.T) {
	platform := &stubPlatform{flattened: platformResponse{
		status: http.StatusOK,
		body:   map[string]any{"tree": map[string]any{}},
	}}
	srv := testServer(t, nil, platform)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodGet, "/planogram/get-ice?device_id=ice-1", testAppID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestListDevices(t *testing.T) {
	platform := &stubPlatform{devices: platformResponse{
		status: http.StatusOK,
		body:   map[string]any{"devices": []any{}},
	}}
	srv := testServer(t, nil, platform)
	router := srv.buildRouter()

	w := doJSON(t, router, http.MethodGet, "/devices?tag=espresso&tag=lobby", testAppID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(platform.tags) != 2 || platform.tags[0] != "espresso" || platform.tags[1] != "lobby" {
		t.Errorf("tags = %v", platform.tags)
	}
}
