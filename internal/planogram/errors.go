package planogram

import "errors"

var (
	// ErrDecode reports that a request body could not be decoded into a
	// payload map. It covers malformed JSON, a malformed or missing base64
	// envelope, non-UTF-8 envelope content, and inner JSON that is not an
	// object. Callers get a single error; no partial payload is exposed.
	ErrDecode = errors.New("planogram: cannot decode payload")

	// ErrMissingDeviceID reports a payload without a usable device_id.
	ErrMissingDeviceID = errors.New("planogram: missing device_id")

	// ErrValidation reports that one or more declared fields failed their
	// type check. The per-field details ride alongside as []FieldError.
	ErrValidation = errors.New("planogram: payload validation failed")

	// ErrEmptyBatch reports a dispatch attempt with no entries.
	ErrEmptyBatch = errors.New("planogram: empty config batch")

	// ErrDispatch reports a transport-level failure talking to the
	// device-command platform. No classification of the device result is
	// possible; the command may or may not have been delivered.
	ErrDispatch = errors.New("planogram: dispatch failed")

	// ErrTableHeader reports a retail import table whose first row does
	// not exactly match the expected column header.
	ErrTableHeader = errors.New("planogram: invalid table header")

	// ErrTableEmpty reports a retail import with no rows at all.
	ErrTableEmpty = errors.New("planogram: empty table")
)
