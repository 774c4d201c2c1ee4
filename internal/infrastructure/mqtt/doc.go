// Package mqtt wraps paho.mqtt.golang for the VendHub event stream.
//
// VendHub publishes dispatch outcomes and its own availability to an MQTT
// broker so operator dashboards can follow fleet activity live. The stream
// is optional and strictly outbound: the service never subscribes, and a
// broker outage never affects dispatch - publishes fail independently of
// the request path.
//
// The wrapper provides connection management with automatic reconnection,
// Last Will and Testament for crash detection, and publish timeouts. All
// methods are safe for concurrent use.
package mqtt
