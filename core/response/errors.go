package response

import "errors"

var (
	// ErrResponseClosed is returned by writes after Close.
	ErrResponseClosed = errors.New("response is closed")
	// ErrNotRecord is returned by Encode for values that are not structs.
	ErrNotRecord = errors.New("value is not a record")
)
