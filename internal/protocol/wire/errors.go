package wire

import "errors"

var (
	ErrNotConnected           = errors.New("wire: not connected")
	ErrTimeout                = errors.New("wire: receive timed out")
	ErrOverflow               = errors.New("wire: delimiter not found within limit")
	ErrStreamEnded            = errors.New("wire: stream ended early")
	ErrSyncFailure            = errors.New("wire: transfer out of sync")
	ErrInvalidSeparator       = errors.New("wire: invalid separator token")
	ErrSeparatorCollision     = errors.New("wire: body line collides with separator")
	ErrMalformedSeparator     = errors.New("wire: malformed separator line")
	ErrInvalidForm            = errors.New("wire: form not valid for transfer")
	ErrIncompleteTransmission = errors.New("wire: transmission incomplete")
)
