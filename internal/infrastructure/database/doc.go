// Package database provides SQLite connectivity for VendHub Core.
//
// It manages the local audit-log database: connection setup with WAL mode,
// embedded schema migrations, and lifecycle management. All queries use
// parameterised statements and the database file is created with 0600
// permissions.
package database
