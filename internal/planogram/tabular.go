package planogram

import (
	"fmt"
	"strconv"
	"strings"
)

// retailHeader is the exact first row a retail bulk import must carry.
// Column order is part of the contract with the export tooling that
// produces these tables.
var retailHeader = []string{
	"selection", "sku", "name", "price", "stock",
	"active", "order", "type", "image", "description",
}

const (
	colSelection = iota
	colSKU
	colName
	colPrice
	colStock
	colActive
	colOrder
	colType
	colImage
	colDescription
)

// ImportRetailTable converts a 2-D retail planogram table into config
// entries. The header row must match retailHeader exactly; any mismatch
// rejects the whole import. Data rows missing a selection key, SKU, or
// name are skipped silently rather than failing the import - bulk exports
// routinely carry blank spacer rows, and rejecting the file for them made
// operators hand-edit spreadsheets. This is deliberately looser than the
// all-or-nothing rule the JSON flows use.
func ImportRetailTable(rows [][]any) ([]ConfigEntry, error) {
	if len(rows) == 0 {
		return nil, ErrTableEmpty
	}
	if err := checkRetailHeader(rows[0]); err != nil {
		return nil, err
	}

	var entries []ConfigEntry
	for _, row := range rows[1:] {
		if len(row) < len(retailHeader) {
			continue
		}
		selection := cellString(row[colSelection])
		sku := cellString(row[colSKU])
		name := cellString(row[colName])
		if selection == "" || sku == "" || name == "" {
			continue
		}

		entries = append(entries,
			ConfigEntry{Sensor: selection, Param: "id", Value: sku},
			ConfigEntry{Sensor: selection, Param: "name", Value: name},
		)
		if v, ok := cellNumber(row[colPrice]); ok {
			entries = append(entries, ConfigEntry{Sensor: selection, Param: "price", Value: v})
		}
		if v, ok := cellNumber(row[colStock]); ok {
			entries = append(entries, ConfigEntry{Sensor: selection, Param: "stock", Value: v})
		}
		if v, ok := cellBool(row[colActive]); ok {
			entries = append(entries, ConfigEntry{Sensor: selection, Param: "active", Value: v})
		}
		if v, ok := cellNumber(row[colOrder]); ok {
			entries = append(entries, ConfigEntry{Sensor: selection, Param: "order", Value: v})
		}
		if v := cellString(row[colType]); v != "" {
			entries = append(entries, ConfigEntry{Sensor: selection, Param: "type", Value: v})
		}
		if v := cellString(row[colImage]); v != "" {
			entries = append(entries, ConfigEntry{Sensor: selection, Param: "image", Value: v})
		}
		if v := cellString(row[colDescription]); v != "" {
			entries = append(entries, ConfigEntry{Sensor: selection, Param: "description", Value: v})
		}
	}
	return entries, nil
}

func checkRetailHeader(header []any) error {
	if len(header) != len(retailHeader) {
		return fmt.Errorf("%w: got %d columns, want %d", ErrTableHeader, len(header), len(retailHeader))
	}
	for i, want := range retailHeader {
		got, ok := header[i].(string)
		if !ok || strings.TrimSpace(got) != want {
			return fmt.Errorf("%w: column %d is %v, want %q", ErrTableHeader, i, header[i], want)
		}
	}
	return nil
}

func cellString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// cellNumber coerces a spreadsheet cell to a number. Exports deliver
// numeric columns as either JSON numbers or digit strings depending on the
// tool that produced them.
func cellNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func cellBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}
