package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteStockChange records one reconciled stock delta for a device slot.
//
// The write is non-blocking; data is batched and sent asynchronously. The
// timestamp is the reconciliation time reported by the caller, not the
// write time, so late-submitted snapshots land on the right point in the
// series.
//
// Example:
//
//	client.WriteStockChange("VM-0042", "A1", 5, 2, -3, ts)
func (c *Client) WriteStockChange(deviceID, slot string, start, end, difference int, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"stock_change",
		map[string]string{
			"device_id": deviceID,
			"slot":      slot,
		},
		map[string]interface{}{
			"start":      start,
			"end":        end,
			"difference": difference,
		},
		timestamp,
	)

	c.writeAPI.WritePoint(point)
}

// WriteDispatchOutcome records one classified dispatch result, for
// per-device delivery reliability trends.
//
// Status is the classification (success, offline, failed); code is the
// platform's raw result code.
func (c *Client) WriteDispatchOutcome(deviceID, status string, code, entries int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"dispatch_outcome",
		map[string]string{
			"device_id": deviceID,
			"status":    status,
		},
		map[string]interface{}{
			"result_code": code,
			"entries":     entries,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
// Use for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}
