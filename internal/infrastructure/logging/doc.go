// Package logging provides structured logging for VendHub Core.
//
// It wraps log/slog with configuration-driven format and level selection,
// plus default service/version fields on every record.
package logging
