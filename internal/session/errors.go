package session

import "errors"

var (
	ErrContextMismatch = errors.New("session: peer command context does not match")
	ErrSessionClosed   = errors.New("session: closed")
	ErrBadHandshake    = errors.New("session: bad request handshake")
)
