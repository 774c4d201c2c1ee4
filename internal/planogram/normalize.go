package planogram

import (
	"fmt"
	"sort"
)

// FieldError describes one entry that failed its declared type check.
type FieldError struct {
	Field  string `json:"field"`
	Sensor string `json:"sensor,omitempty"`
	Reason string `json:"reason"`
}

func (e FieldError) String() string {
	if e.Sensor == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s[%s]: %s", e.Field, e.Sensor, e.Reason)
}

// Normalize turns a decoded payload into the canonical entry list for the
// given device family. Validation is all-or-nothing: if any entry of any
// declared field fails its type check, no entries are returned and the
// full error list is. Declared fields absent from the payload are simply
// skipped; optional scalars likewise. Sensors within a field are emitted
// in sorted order so a given payload always normalizes to the same batch.
func Normalize(p Payload, fam Family) ([]ConfigEntry, []FieldError) {
	var (
		entries []ConfigEntry
		errs    []FieldError
	)
	seen := make(map[string]struct{})

	add := func(field string, e ConfigEntry) {
		key := e.Sensor + "\x00" + e.Param
		if _, dup := seen[key]; dup {
			errs = append(errs, FieldError{
				Field:  field,
				Sensor: e.Sensor,
				Reason: fmt.Sprintf("duplicate entry for param %q", e.Param),
			})
			return
		}
		seen[key] = struct{}{}
		entries = append(entries, e)
	}

	for _, spec := range fam.Fields {
		raw, ok := p[spec.Field]
		if !ok {
			continue
		}
		m, ok := raw.(map[string]any)
		if !ok {
			errs = append(errs, FieldError{Field: spec.Field, Reason: "expected an object of sensor values"})
			continue
		}
		sensors := make([]string, 0, len(m))
		for sensor := range m {
			sensors = append(sensors, sensor)
		}
		sort.Strings(sensors)
		for _, sensor := range sensors {
			if sensor == "" {
				errs = append(errs, FieldError{Field: spec.Field, Reason: "empty sensor name"})
				continue
			}
			value := m[sensor]
			if !Validate(value, spec.Kind) {
				errs = append(errs, FieldError{
					Field:  spec.Field,
					Sensor: sensor,
					Reason: fmt.Sprintf("expected %s", spec.Kind),
				})
				continue
			}
			add(spec.Field, ConfigEntry{
				Sensor:     sensor,
				Param:      spec.Param,
				Value:      value,
				ConfigKind: spec.ConfigKind,
			})
		}
	}

	for _, spec := range fam.Scalars {
		raw, ok := p[spec.Field]
		if !ok {
			if spec.Required {
				errs = append(errs, FieldError{Field: spec.Field, Reason: "missing required field"})
			}
			continue
		}
		if !Validate(raw, spec.Kind) {
			errs = append(errs, FieldError{
				Field:  spec.Field,
				Reason: fmt.Sprintf("expected %s", spec.Kind),
			})
			continue
		}
		add(spec.Field, ConfigEntry{
			Sensor:     spec.Sensor,
			Param:      spec.Param,
			Value:      raw,
			ConfigKind: spec.ConfigKind,
		})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return entries, nil
}

// SensorGroup is one per-sensor partition of a normalized entry list.
type SensorGroup struct {
	Sensor  string
	Entries []ConfigEntry
}

// PartitionBySensor splits entries into per-sensor groups, preserving the
// order sensors were first seen and the entry order within each group.
func PartitionBySensor(entries []ConfigEntry) []SensorGroup {
	var groups []SensorGroup
	index := make(map[string]int)
	for _, e := range entries {
		i, ok := index[e.Sensor]
		if !ok {
			i = len(groups)
			index[e.Sensor] = i
			groups = append(groups, SensorGroup{Sensor: e.Sensor})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}
