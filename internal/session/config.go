package session

import (
	"time"

	"github.com/formwire/formwire/internal/protocol/wire"
)

// Config defines the timing and framing defaults shared by both ends of
// a commanding session.
type Config struct {
	Separator        string
	AckTimeout       time.Duration
	ReceiveTimeout   time.Duration
	HandshakeTimeout time.Duration
	LineLimit        int
}

func DefaultConfig() Config {
	return Config{
		AckTimeout:       10 * time.Second,
		ReceiveTimeout:   10 * time.Second,
		HandshakeTimeout: 5 * time.Second,
		LineLimit:        wire.DefaultLineLimit,
	}
}

func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.AckTimeout <= 0 {
		c.AckTimeout = def.AckTimeout
	}
	if c.ReceiveTimeout <= 0 {
		c.ReceiveTimeout = def.ReceiveTimeout
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	if c.LineLimit <= 0 {
		c.LineLimit = def.LineLimit
	}
	return c
}
