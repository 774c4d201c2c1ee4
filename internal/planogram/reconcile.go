package planogram

import "strings"

// Snapshot is a planogram snapshot: slot/selection key to product record.
// Product records carry at least a stock quantity plus descriptive fields.
type Snapshot map[string]map[string]any

// Keys beginning with this prefix name non-product slots (changer tubes,
// service counters) and are excluded from stock reconciliation.
const excludedSlotPrefix = "_"

const (
	stockHistoryParam = "stock_history"
	stockSource       = "planogram"
	stockChangeType   = "update_stock_planogram"
)

// StockChange is one slot whose stock differs between two snapshots.
type StockChange struct {
	Slot       string
	Start      int
	End        int
	Difference int
	Actor      string
	Timestamp  int64
}

// Entry renders the change in the wire shape the stock-history consumers
// expect.
func (c StockChange) Entry() ConfigEntry {
	return ConfigEntry{
		Sensor: c.Slot,
		Param:  stockHistoryParam,
		Value: map[string]any{
			"start":      c.Start,
			"end":        c.End,
			"difference": c.Difference,
			"source":     stockSource,
			"type":       stockChangeType,
			"extras": map[string]any{
				"timestamp": c.Timestamp,
				"actor":     c.Actor,
			},
		},
	}
}

// Reconcile diffs two planogram snapshots and returns one StockChange per
// slot whose stock moved. Slots are skipped silently when the key is
// excluded, the counterpart record is missing or malformed, or either
// stock value is not numeric - product lines come and go between
// snapshots and that is not an error. Fractional stock is truncated, not
// rounded. Output order follows map iteration and is unspecified;
// consumers aggregate, they never depend on record order.
func Reconcile(previous, next Snapshot, actor string, timestamp int64) []StockChange {
	var changes []StockChange
	for slot, prevRecord := range previous {
		if strings.HasPrefix(slot, excludedSlotPrefix) {
			continue
		}
		nextRecord, ok := next[slot]
		if !ok || nextRecord == nil {
			continue
		}
		start, ok := stockOf(prevRecord)
		if !ok {
			continue
		}
		end, ok := stockOf(nextRecord)
		if !ok {
			continue
		}
		if start == end {
			continue
		}
		changes = append(changes, StockChange{
			Slot:       slot,
			Start:      start,
			End:        end,
			Difference: end - start,
			Actor:      actor,
			Timestamp:  timestamp,
		})
	}
	return changes
}

// StockHistoryEntries renders a change list as batch entries, ready to
// travel through the same dispatch contract as configuration updates.
func StockHistoryEntries(changes []StockChange) []ConfigEntry {
	entries := make([]ConfigEntry, 0, len(changes))
	for _, c := range changes {
		entries = append(entries, c.Entry())
	}
	return entries
}

func stockOf(record map[string]any) (int, bool) {
	raw, ok := record["stock"]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}
