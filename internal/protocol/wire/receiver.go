package wire

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/formwire/formwire/internal/protocol/form"
)

// DefaultAppendixLimit bounds how many appendix bytes a separator line may
// announce. The length arrives from the peer before any appendix data, so
// it is capped before allocation.
const DefaultAppendixLimit = 16 * 1024 * 1024

// ReceiverConfig tunes one Form transfer on the receive side.
type ReceiverConfig struct {
	Separator     string
	Timeout       time.Duration
	LineLimit     int
	AppendixLimit int
}

func (c ReceiverConfig) WithDefaults() ReceiverConfig {
	if c.Separator == "" {
		c.Separator = DefaultSeparator
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.LineLimit <= 0 {
		c.LineLimit = DefaultLineLimit
	}
	if c.AppendixLimit <= 0 {
		c.AppendixLimit = DefaultAppendixLimit
	}
	return c
}

// Receiver drives receiving one Form, symmetric to the Transmitter: it
// acks the title, each body line, the separator step, and the appendix.
type Receiver struct {
	transport Transport
	codec     form.Codec
	cfg       ReceiverConfig
}

func NewReceiver(t Transport, codec form.Codec, cfg ReceiverConfig) (*Receiver, error) {
	if t == nil {
		return nil, ErrNotConnected
	}
	if codec == nil {
		return nil, form.ErrNilCodec
	}
	cfg = cfg.WithDefaults()
	if err := checkSeparator(cfg.Separator); err != nil {
		return nil, err
	}
	return &Receiver{transport: t, codec: codec, cfg: cfg}, nil
}

// Receive runs the receive state machine to completion and assembles the
// Form. A stream that ends mid-sequence surfaces as an
// incomplete-transmission error.
func (rx *Receiver) Receive() (*form.Form, error) {
	title, err := rx.receiveLine()
	if err != nil {
		return nil, incomplete("title", err)
	}
	if err := rx.sendAck(); err != nil {
		return nil, err
	}

	body, appendixLen, err := rx.receiveBody()
	if err != nil {
		return nil, err
	}
	if err := rx.sendAck(); err != nil {
		return nil, err
	}

	encoded, err := rx.transport.ReceiveExact(appendixLen, rx.cfg.Timeout)
	if err != nil {
		return nil, incomplete("appendix", err)
	}
	f, err := form.FromEncoded(title, body, encoded, rx.codec)
	if err != nil {
		return nil, err
	}
	if err := rx.sendAck(); err != nil {
		return nil, err
	}
	return f, nil
}

// receiveBody accumulates body lines, acking each, until the separator
// line appears. Returns the joined body and the parsed appendix length.
func (rx *Receiver) receiveBody() (string, int, error) {
	var lines []string
	for {
		line, err := rx.receiveLine()
		if err != nil {
			return "", 0, incomplete("body", err)
		}
		if rx.isSeparator(line) {
			length, err := rx.parseSeparator(line)
			if err != nil {
				return "", 0, err
			}
			return strings.Join(lines, "\n"), length, nil
		}
		lines = append(lines, line)
		if err := rx.sendAck(); err != nil {
			return "", 0, err
		}
	}
}

// isSeparator matches the separator prefix anchored at column 0; the line
// must be strictly longer than the token so a bare prefix stays body.
func (rx *Receiver) isSeparator(line string) bool {
	return strings.HasPrefix(line, rx.cfg.Separator) && len(line) > len(rx.cfg.Separator)
}

func (rx *Receiver) parseSeparator(line string) (int, error) {
	suffix := strings.TrimSpace(line[len(rx.cfg.Separator):])
	length, err := strconv.Atoi(suffix)
	if err != nil || length < 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedSeparator, line)
	}
	if length > rx.cfg.AppendixLimit {
		return 0, fmt.Errorf("%w: appendix of %d bytes exceeds limit %d", ErrOverflow, length, rx.cfg.AppendixLimit)
	}
	return length, nil
}

func (rx *Receiver) receiveLine() (string, error) {
	data, err := rx.transport.ReceiveUntil('\n', rx.cfg.LineLimit, rx.cfg.Timeout)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (rx *Receiver) sendAck() error {
	return rx.transport.Send([]byte(ackToken))
}

func incomplete(stage string, err error) error {
	if errors.Is(err, ErrStreamEnded) {
		return fmt.Errorf("%w: stream closed during %s: %w", ErrIncompleteTransmission, stage, err)
	}
	return fmt.Errorf("wire: receiving %s: %w", stage, err)
}
