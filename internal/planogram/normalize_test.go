package planogram

import (
	"reflect"
	"testing"
)

func TestNormalizeSlotFields(t *testing.T) {
	p := Payload{
		"device_id": "d1",
		"ids":       map[string]any{"A1": "sku-1", "A2": "sku-2"},
		"prices":    map[string]any{"A1": 1500.0},
		"actives":   map[string]any{"A1": true},
	}

	entries, errs := Normalize(p, FamilyMcPro)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	want := []ConfigEntry{
		{Sensor: "A1", Param: "id", Value: "sku-1"},
		{Sensor: "A2", Param: "id", Value: "sku-2"},
		{Sensor: "A1", Param: "price", Value: 1500.0},
		{Sensor: "A1", Param: "active", Value: true},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("entries = %v, want %v", entries, want)
	}
}

func TestNormalizeOneEntryPerFieldSensor(t *testing.T) {
	sensors := map[string]any{"A1": 1.0, "A2": 2.0, "B1": 3.0}
	p := Payload{"prices": sensors, "stocks": sensors}

	entries, errs := Normalize(p, FamilyMcPro)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(entries) != 6 {
		t.Fatalf("got %d entries, want one per (field, sensor) pair = 6", len(entries))
	}
}

func TestNormalizeAllOrNothing(t *testing.T) {
	p := Payload{
		"prices":  map[string]any{"A1": 1500.0, "A2": "not a number"},
		"actives": map[string]any{"A1": true},
	}

	entries, errs := Normalize(p, FamilyMcPro)
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0 when any field fails", len(entries))
	}
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if errs[0].Field != "prices" || errs[0].Sensor != "A2" {
		t.Errorf("error = %+v, want prices[A2]", errs[0])
	}
}

func TestNormalizeStrictBoolean(t *testing.T) {
	p := Payload{"actives": map[string]any{"A1": "true"}}
	entries, errs := Normalize(p, FamilyMcPro)
	if len(entries) != 0 || len(errs) == 0 {
		t.Errorf("string \"true\" must not pass the boolean check: entries=%v errs=%v", entries, errs)
	}
}

func TestNormalizeFieldNotObject(t *testing.T) {
	p := Payload{"prices": []any{1500.0}}
	entries, errs := Normalize(p, FamilyMcPro)
	if len(entries) != 0 || len(errs) != 1 {
		t.Fatalf("entries=%v errs=%v, want single field-shape error", entries, errs)
	}
}

func TestNormalizeDuplicateSensorParam(t *testing.T) {
	fam := Family{
		Name: "dup-check",
		Fields: []FieldSpec{
			{Field: "prices", Param: "price", Kind: KindNumber},
			{Field: "tariffs", Param: "price", Kind: KindNumber},
		},
	}
	p := Payload{
		"prices":  map[string]any{"A1": 1000.0},
		"tariffs": map[string]any{"A1": 2000.0},
	}

	entries, errs := Normalize(p, fam)
	if len(entries) != 0 {
		t.Errorf("duplicate (sensor, param) must fail the batch, got %v", entries)
	}
	if len(errs) != 1 || errs[0].Sensor != "A1" {
		t.Errorf("errs = %v, want one duplicate error for A1", errs)
	}
}

func TestNormalizeDeterministicOrder(t *testing.T) {
	p := Payload{"prices": map[string]any{"C": 3.0, "A": 1.0, "B": 2.0}}
	for i := 0; i < 5; i++ {
		entries, errs := Normalize(p, FamilyMcPro)
		if len(errs) != 0 {
			t.Fatalf("unexpected errors: %v", errs)
		}
		if entries[0].Sensor != "A" || entries[1].Sensor != "B" || entries[2].Sensor != "C" {
			t.Fatalf("sensors not sorted: %v", entries)
		}
	}
}

func TestNormalizeWaterDispenser(t *testing.T) {
	p := Payload{
		"durationWater": 8.0,
		"priceWater":    2000.0,
		"durationCup":   3.0,
		"priceCup":      500.0,
		"stockCup":      120.0,
	}

	entries, errs := Normalize(p, FamilyWaterDispenser)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []ConfigEntry{
		{Sensor: "water", Param: "duration", Value: 8.0},
		{Sensor: "water", Param: "price", Value: 2000.0},
		{Sensor: "water_cup", Param: "duration", Value: 3.0},
		{Sensor: "water_cup", Param: "price", Value: 500.0},
		{Sensor: "water_cup", Param: "stock", Value: 120.0, ConfigKind: "cdata"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("entries = %v, want %v", entries, want)
	}
}

func TestNormalizeWaterDispenserMissingScalar(t *testing.T) {
	p := Payload{
		"durationWater": 8.0,
		"priceWater":    2000.0,
		"durationCup":   3.0,
		"priceCup":      500.0,
	}
	entries, errs := Normalize(p, FamilyWaterDispenser)
	if len(entries) != 0 {
		t.Errorf("missing required scalar must fail the batch, got %v", entries)
	}
	if len(errs) != 1 || errs[0].Field != "stockCup" {
		t.Errorf("errs = %v, want missing stockCup", errs)
	}
}

func TestNormalizeArcade(t *testing.T) {
	priceTable := map[string]any{"coin": 1000.0, "token": 2.0}
	p := Payload{"pulse": 4.0, "price": priceTable}

	entries, errs := Normalize(p, FamilyArcade)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []ConfigEntry{
		{Sensor: "arcade", Param: "pulse_factor", Value: 4.0},
		{Sensor: "arcade", Param: "price", Value: priceTable},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("entries = %v, want %v", entries, want)
	}
}

func TestNormalizeArcadeRejectsStringPulse(t *testing.T) {
	p := Payload{"pulse": "4", "price": map[string]any{}}
	entries, errs := Normalize(p, FamilyArcade)
	if len(entries) != 0 || len(errs) != 1 {
		t.Errorf("entries=%v errs=%v, want pulse type error", entries, errs)
	}
}

func TestNormalizePlayStationOptionalTimeout(t *testing.T) {
	p := Payload{"prices": map[string]any{"station1": 15000.0}}
	entries, errs := Normalize(p, FamilyPlayStation)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(entries) != 1 {
		t.Errorf("optional timeout absent should not error, entries = %v", entries)
	}

	p["timeout"] = 3600.0
	entries, errs = Normalize(p, FamilyPlayStation)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	last := entries[len(entries)-1]
	if last.Sensor != "playstation" || last.Param != "timeout" {
		t.Errorf("timeout entry = %+v", last)
	}
}

func TestPartitionBySensor(t *testing.T) {
	entries := []ConfigEntry{
		{Sensor: "milk", Param: "stock", Value: 10.0},
		{Sensor: "beans", Param: "stock", Value: 5.0},
		{Sensor: "milk", Param: "price", Value: 100.0},
	}

	groups := PartitionBySensor(entries)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Sensor != "milk" || groups[1].Sensor != "beans" {
		t.Errorf("first-seen order not preserved: %v", groups)
	}
	if len(groups[0].Entries) != 2 || len(groups[1].Entries) != 1 {
		t.Errorf("entry partitioning wrong: %v", groups)
	}
}
