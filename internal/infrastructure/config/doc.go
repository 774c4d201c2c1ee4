// Package config loads and validates VendHub Core configuration.
//
// Configuration is read from a YAML file, merged over hardcoded defaults,
// and finally overridden by VENDHUB_* environment variables. Secrets
// (platform token, MQTT password, InfluxDB token) should always come from
// the environment in production.
package config
