package wire

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/formwire/formwire/internal/protocol/form"
)

const (
	// DefaultSeparator marks the end of the body and carries the appendix
	// byte length as a decimal suffix.
	DefaultSeparator = "$separation$"

	ackToken = "ack"
	ackLen   = 3
)

// CollisionPolicy selects how a transmitter treats body lines whose prefix
// matches the separator token.
type CollisionPolicy int

const (
	// AdjustCollisions rewrites offending lines with one leading space,
	// which cannot collide since the receiver's check anchors at column 0.
	AdjustCollisions CollisionPolicy = iota
	// StrictCollisions fails construction instead of rewriting.
	StrictCollisions
)

// TransmitterConfig tunes one Form transfer on the send side.
type TransmitterConfig struct {
	Separator  string
	AckTimeout time.Duration
	Policy     CollisionPolicy
}

func (c TransmitterConfig) WithDefaults() TransmitterConfig {
	if c.Separator == "" {
		c.Separator = DefaultSeparator
	}
	if c.AckTimeout <= 0 {
		c.AckTimeout = 10 * time.Second
	}
	return c
}

// Transmitter drives sending one Form: title line, body lines each paced
// by a 3-byte ack, the separator line with the appendix length, then the
// raw appendix bytes and a final ack. Never reused across sends.
type Transmitter struct {
	transport Transport
	form      *form.Form
	cfg       TransmitterConfig
	body      []string
}

func NewTransmitter(t Transport, f *form.Form, cfg TransmitterConfig) (*Transmitter, error) {
	if t == nil {
		return nil, ErrNotConnected
	}
	cfg = cfg.WithDefaults()
	if err := checkSeparator(cfg.Separator); err != nil {
		return nil, err
	}
	if f == nil || !f.Valid() {
		return nil, ErrInvalidForm
	}
	body, err := prepareBody(f.BodyLines(), cfg.Separator, cfg.Policy)
	if err != nil {
		return nil, err
	}
	return &Transmitter{transport: t, form: f, cfg: cfg, body: body}, nil
}

// Transmit runs the send state machine to completion.
func (tx *Transmitter) Transmit() error {
	if err := tx.transport.Send([]byte(tx.form.Title() + "\n")); err != nil {
		return err
	}
	if err := tx.waitAck(); err != nil {
		return err
	}
	for _, line := range tx.body {
		if err := tx.transport.Send([]byte(line + "\n")); err != nil {
			return err
		}
		if err := tx.waitAck(); err != nil {
			return err
		}
	}
	separator := tx.cfg.Separator + strconv.Itoa(len(tx.form.AppendixEncoded()))
	if err := tx.transport.Send([]byte(separator + "\n")); err != nil {
		return err
	}
	if err := tx.waitAck(); err != nil {
		return err
	}
	if encoded := tx.form.AppendixEncoded(); len(encoded) > 0 {
		if err := tx.transport.Send(encoded); err != nil {
			return err
		}
	}
	return tx.waitAck()
}

// waitAck blocks for the receiver's 3-byte ack. A missing, late, or
// mismatched ack aborts the transfer as a synchronization failure.
func (tx *Transmitter) waitAck() error {
	resp, err := tx.transport.ReceiveExact(ackLen, tx.cfg.AckTimeout)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSyncFailure, err)
	}
	if string(resp) != ackToken {
		return fmt.Errorf("%w: unexpected ack %q", ErrSyncFailure, resp)
	}
	return nil
}

func checkSeparator(sep string) error {
	if strings.Contains(sep, "\n") {
		return fmt.Errorf("%w: contains newline", ErrInvalidSeparator)
	}
	if strings.ReplaceAll(sep, " ", "") == "" {
		return fmt.Errorf("%w: empty", ErrInvalidSeparator)
	}
	return nil
}

// prepareBody applies the collision policy to the body line snapshot.
func prepareBody(lines []string, sep string, policy CollisionPolicy) ([]string, error) {
	out := make([]string, len(lines))
	for i, line := range lines {
		if strings.HasPrefix(line, sep) {
			if policy == StrictCollisions {
				return nil, fmt.Errorf("%w: line %d", ErrSeparatorCollision, i)
			}
			line = " " + line
		}
		out[i] = line
	}
	return out, nil
}
