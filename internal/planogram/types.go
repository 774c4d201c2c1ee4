package planogram

// Kind names the value types a config field can require.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
)

// ConfigEntry is one canonical configuration update: set param on sensor to
// value. ConfigKind is an optional device-side storage hint carried only by
// a few fields (for example cup stock on water dispensers).
type ConfigEntry struct {
	Sensor     string `json:"sensor"`
	Param      string `json:"param"`
	Value      any    `json:"value"`
	ConfigKind string `json:"configtype,omitempty"`
}

// ConfigBatch is the unit of dispatch: an ordered list of entries applied
// to one device as a single atomic command.
type ConfigBatch struct {
	DeviceID   string        `json:"device_id"`
	Payload    []ConfigEntry `json:"payload"`
	WaitResult bool          `json:"wait_result"`
}

// Payload is a decoded request body keyed by field name.
type Payload map[string]any

// DeviceID extracts the mandatory device identifier from the payload.
func (p Payload) DeviceID() (string, error) {
	raw, ok := p["device_id"]
	if !ok {
		return "", ErrMissingDeviceID
	}
	id, ok := raw.(string)
	if !ok || id == "" {
		return "", ErrMissingDeviceID
	}
	return id, nil
}

// WaitResult reports whether the caller asked to wait for the device's
// execution result. Absent means wait: callers that fire and forget must
// say so explicitly.
func (p Payload) WaitResult() bool {
	raw, ok := p["wait_result"]
	if !ok {
		return true
	}
	b, ok := raw.(bool)
	if !ok {
		return true
	}
	return b
}
