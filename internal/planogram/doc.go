// Package planogram implements the configuration normalization and batch
// dispatch pipeline at the heart of VendHub Core.
//
// Heterogeneous, device-family-specific payloads (coffee machines, arcade
// cabinets, water dispensers, retail slot machines, PlayStation kiosks) are
// decoded, validated, and normalized into a canonical ordered list of
// per-sensor parameter updates, then dispatched as one atomic batch command
// to the device-command platform. The package also diffs planogram
// snapshots into stock-change audit records that travel through the same
// dispatch contract.
//
// Validation is all-or-nothing: if any entry of any declared field fails
// its type check, nothing is dispatched. A half-applied configuration on a
// vending machine (price updated but stock not) is worse than a clean
// rejection. The single exception is the retail tabular import, which skips
// malformed rows; see ImportRetailTable.
//
// Dispatch never retries: redelivering a config command to physical
// hardware is not guaranteed idempotent for all params, so retries are an
// operator decision. Grouped per-sensor dispatch stops on the first failure
// and does not roll back partitions that already succeeded - the device
// firmware treats each sensor's configuration independently.
package planogram
