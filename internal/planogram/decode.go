package planogram

import (
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	json "github.com/goccy/go-json"
)

// Envelope names how a request body wraps its payload.
type Envelope int

const (
	// EnvelopeNone means the body is the payload object itself.
	EnvelopeNone Envelope = iota

	// EnvelopeBase64 means the body is {"data": "<base64 of a UTF-8 JSON
	// object>"}; older firmware bridges ship their payloads this way.
	EnvelopeBase64
)

// Decode parses a request body into a payload map. Every failure mode -
// malformed outer JSON, missing envelope field, invalid base64, non-UTF-8
// content, malformed inner JSON, a non-object payload - collapses into
// ErrDecode: the caller cannot act on a partially decoded payload, so
// there is nothing useful to distinguish.
func Decode(body []byte, envelope Envelope) (Payload, error) {
	switch envelope {
	case EnvelopeNone:
		return decodeObject(body)
	case EnvelopeBase64:
		return decodeBase64(body)
	default:
		return nil, fmt.Errorf("%w: unknown envelope %d", ErrDecode, envelope)
	}
}

func decodeObject(body []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: payload is not an object", ErrDecode)
	}
	return p, nil
}

func decodeBase64(body []byte) (Payload, error) {
	var outer struct {
		Data *string `json:"data"`
	}
	if err := json.Unmarshal(body, &outer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if outer.Data == nil {
		return nil, fmt.Errorf("%w: missing data field", ErrDecode)
	}
	raw, err := base64.StdEncoding.DecodeString(*outer.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrDecode, err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w: payload is not valid UTF-8", ErrDecode)
	}
	return decodeObject(raw)
}

// EncodeBase64 wraps a payload object into the base64 envelope. Used by
// tests and by callers that relay payloads to legacy bridges.
func EncodeBase64(p Payload) ([]byte, error) {
	inner, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]string{
		"data": base64.StdEncoding.EncodeToString(inner),
	})
}
