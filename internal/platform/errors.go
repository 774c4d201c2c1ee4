package platform

import "errors"

var (
	// ErrRequest reports a transport-level failure: the request never
	// completed and no response body exists.
	ErrRequest = errors.New("platform: request failed")

	// ErrBadResponse reports a response body that could not be decoded as
	// a JSON object.
	ErrBadResponse = errors.New("platform: malformed response body")
)
