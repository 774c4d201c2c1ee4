// Package influxdb provides InfluxDB connectivity for VendHub Core.
//
// It wraps the official influxdb-client-go v2 library for the optional
// stock-change time series: every reconciled planogram stock delta and
// every classified dispatch outcome can be recorded as a point, giving
// operators consumption and reliability trends per machine.
//
// Writes are non-blocking and batched according to config (batch_size,
// flush_interval); async write errors surface through a callback. The
// series is diagnostics-grade and entirely optional - when disabled in
// config, Connect returns ErrDisabled and callers skip the wiring.
//
// All methods are safe for concurrent use from multiple goroutines.
package influxdb
