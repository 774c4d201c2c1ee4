package mqtt

import "fmt"

// Topic prefixes for the VendHub event stream.
//
// Scheme: vendhub/{category}/{identifier}. Dashboards subscribe with
// wildcards per category; retained system status lets late subscribers
// see whether the service is up.
const (
	// TopicPrefix is the base for all VendHub topics.
	TopicPrefix = "vendhub"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "vendhub/system"
)

// Topics provides builders for VendHub MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	topic := topics.DispatchEvent("VM-0042")
//	// Returns: "vendhub/dispatch/VM-0042"
type Topics struct{}

// DispatchEvent returns the topic for classified dispatch outcomes of one
// device.
//
// Example: vendhub/dispatch/VM-0042
func (Topics) DispatchEvent(deviceID string) string {
	return fmt.Sprintf("%s/dispatch/%s", TopicPrefix, deviceID)
}

// StockAlert returns the topic for low-stock alerts of one application's
// fleet.
//
// Example: vendhub/stock/alert/1000000021
func (Topics) StockAlert(applicationID string) string {
	return fmt.Sprintf("%s/stock/alert/%s", TopicPrefix, applicationID)
}

// SystemStatus returns the service status topic (online/offline, retained).
//
// Example: vendhub/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllDispatchEvents returns a pattern matching dispatch outcomes for all
// devices.
//
// Pattern: vendhub/dispatch/+
func (Topics) AllDispatchEvents() string {
	return fmt.Sprintf("%s/dispatch/+", TopicPrefix)
}

// AllStockAlerts returns a pattern matching low-stock alerts for all
// applications.
//
// Pattern: vendhub/stock/alert/+
func (Topics) AllStockAlerts() string {
	return fmt.Sprintf("%s/stock/alert/+", TopicPrefix)
}

// AllTopics returns a pattern matching all VendHub topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: vendhub/#
func (Topics) AllTopics() string {
	return "vendhub/#"
}
