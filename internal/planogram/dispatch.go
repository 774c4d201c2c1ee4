package planogram

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vendhub/vendhub-core/internal/infrastructure/logging"
)

// Result codes reported by the device-command platform.
const (
	ResultSuccess = 0
	ResultOffline = 10
)

// Status classifies the outcome of one dispatch.
type Status string

const (
	// StatusSuccess means the device executed the command.
	StatusSuccess Status = "success"

	// StatusOffline means the command was accepted and queued server-side
	// but the device could not be reached. Not an error: callers surface
	// it as success with a caveat message.
	StatusOffline Status = "offline"

	// StatusFailed means the platform reported a real failure.
	StatusFailed Status = "failed"
)

// DispatchResult is the classified outcome of one batch dispatch.
type DispatchResult struct {
	Status    Status
	Code      int
	CommandID string

	// Body is the platform's raw response body. On failure callers relay
	// it verbatim so device-side diagnostics are not lost in translation.
	Body map[string]any
}

// OK reports whether the outcome counts as accepted (executed or queued).
func (r DispatchResult) OK() bool {
	return r.Status != StatusFailed
}

// Message renders the operator-facing outcome text.
func (r DispatchResult) Message() string {
	switch r.Status {
	case StatusSuccess:
		return "Command executed successfully"
	case StatusOffline:
		return "Command queued successfully but device is currently offline"
	default:
		return fmt.Sprintf("Operation failed with code %d", r.Code)
	}
}

// Sender delivers a config batch to the device-command platform and
// returns the HTTP status plus the decoded response body. Implementations
// must not retry: redelivery is an operator decision.
type Sender interface {
	SendConfigBatch(ctx context.Context, applicationID string, batch ConfigBatch) (status int, body map[string]any, err error)
}

// Observer is notified after each dispatch attempt has been classified.
// Used for the audit log and the MQTT event stream; observers must not
// influence the dispatch outcome.
type Observer interface {
	DispatchDone(ctx context.Context, applicationID string, batch ConfigBatch, res DispatchResult)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, applicationID string, batch ConfigBatch, res DispatchResult)

func (f ObserverFunc) DispatchDone(ctx context.Context, applicationID string, batch ConfigBatch, res DispatchResult) {
	f(ctx, applicationID, batch, res)
}

// Dispatcher sends config batches through a Sender and classifies the
// platform's result codes. It holds no per-request state; one Dispatcher
// serves all devices and applications concurrently.
type Dispatcher struct {
	sender    Sender
	logger    *logging.Logger
	observers []Observer
}

func NewDispatcher(sender Sender, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		sender: sender,
		logger: logger.With("component", "dispatcher"),
	}
}

// AddObserver registers an observer. Not safe to call after the dispatcher
// is in use; wire observers during startup.
func (d *Dispatcher) AddObserver(obs Observer) {
	d.observers = append(d.observers, obs)
}

// Dispatch sends one batch and classifies the outcome. A transport-level
// failure returns ErrDispatch with a zero result; the command may or may
// not have been delivered, and no cancellation protocol exists to retract
// it. Platform-level failures (non-zero, non-offline result codes) are not
// errors here: they come back as a StatusFailed result for the caller to
// surface.
func (d *Dispatcher) Dispatch(ctx context.Context, applicationID string, batch ConfigBatch) (DispatchResult, error) {
	if batch.DeviceID == "" {
		return DispatchResult{}, ErrMissingDeviceID
	}
	if len(batch.Payload) == 0 {
		return DispatchResult{}, ErrEmptyBatch
	}

	status, body, err := d.sender.SendConfigBatch(ctx, applicationID, batch)
	if err != nil {
		d.logger.Error("dispatch transport failure",
			"device_id", batch.DeviceID,
			"entries", len(batch.Payload),
			"error", err)
		return DispatchResult{}, fmt.Errorf("%w: %v", ErrDispatch, err)
	}

	res := classify(status, body)
	d.logger.Info("dispatch complete",
		"device_id", batch.DeviceID,
		"entries", len(batch.Payload),
		"status", string(res.Status),
		"result_code", res.Code,
		"command_id", res.CommandID)

	for _, obs := range d.observers {
		obs.DispatchDone(ctx, applicationID, batch, res)
	}
	return res, nil
}

// GroupedResult reports a per-sensor dispatch sequence. FailedSensor is
// empty when every partition was accepted; otherwise FailedResult carries
// the failing partition's classified outcome (zero on transport errors).
type GroupedResult struct {
	Dispatched   []SensorDispatch
	FailedSensor string
	FailedResult DispatchResult
}

// SensorDispatch pairs one sensor partition with its dispatch outcome.
type SensorDispatch struct {
	Sensor string
	Result DispatchResult
}

// OK reports whether all partitions were accepted.
func (g GroupedResult) OK() bool {
	return g.FailedSensor == ""
}

// DispatchGrouped partitions entries by sensor and dispatches each
// partition as an independent batch, sequentially, in first-seen sensor
// order. It stops at the first partition that fails and reports which
// sensor failed; partitions already accepted are not rolled back - the
// device has no transaction support, so the caller decides whether to
// resubmit the remainder.
func (d *Dispatcher) DispatchGrouped(ctx context.Context, applicationID, deviceID string, entries []ConfigEntry, waitResult bool) (GroupedResult, error) {
	if len(entries) == 0 {
		return GroupedResult{}, ErrEmptyBatch
	}

	var out GroupedResult
	for _, group := range PartitionBySensor(entries) {
		res, err := d.Dispatch(ctx, applicationID, ConfigBatch{
			DeviceID:   deviceID,
			Payload:    group.Entries,
			WaitResult: waitResult,
		})
		if err != nil {
			out.FailedSensor = group.Sensor
			return out, err
		}
		if !res.OK() {
			out.FailedSensor = group.Sensor
			out.FailedResult = res
			return out, nil
		}
		out.Dispatched = append(out.Dispatched, SensorDispatch{Sensor: group.Sensor, Result: res})
	}
	return out, nil
}

func classify(status int, body map[string]any) DispatchResult {
	res := DispatchResult{Code: resultCode(body), CommandID: commandID(body), Body: body}
	if status != http.StatusOK {
		res.Status = StatusFailed
		return res
	}
	switch res.Code {
	case ResultSuccess:
		res.Status = StatusSuccess
	case ResultOffline:
		res.Status = StatusOffline
	default:
		res.Status = StatusFailed
	}
	return res
}

// resultCode pulls the platform's result field out of the response body.
// Absent or unreadable codes map to -1, which classifies as failure.
func resultCode(body map[string]any) int {
	raw, ok := body["result"]
	if !ok {
		return -1
	}
	switch v := raw.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return -1
	}
}

func commandID(body map[string]any) string {
	id, _ := body["command_id"].(string)
	return id
}
