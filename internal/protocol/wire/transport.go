package wire

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// DefaultLineLimit bounds how many bytes a single line read may consume
// before the transfer is considered broken.
const DefaultLineLimit = 64 * 1024

// Transport is an ordered, reliable byte channel. A timeout of zero or
// less means wait indefinitely. Implementations surface ErrTimeout,
// ErrStreamEnded, and ErrOverflow so callers can classify failures.
type Transport interface {
	Send(p []byte) error
	ReceiveExact(n int, timeout time.Duration) ([]byte, error)
	ReceiveUntil(delim byte, limit int, timeout time.Duration) ([]byte, error)
	Close() error
}

// Conn adapts a net.Conn to the Transport contract using read deadlines.
type Conn struct {
	conn net.Conn
	r    *bufio.Reader
}

func NewConn(conn net.Conn) *Conn {
	return &Conn{conn: conn, r: bufio.NewReader(conn)}
}

func (c *Conn) Send(p []byte) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	if _, err := c.conn.Write(p); err != nil {
		return fmt.Errorf("wire: send: %w", mapNetErr(err))
	}
	return nil
}

// SendString writes s as raw bytes.
func (c *Conn) SendString(s string) error {
	return c.Send([]byte(s))
}

func (c *Conn) ReceiveExact(n int, timeout time.Duration) ([]byte, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	if n == 0 {
		return []byte{}, nil
	}
	if err := c.applyDeadline(timeout); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.r, buf); err != nil {
		return nil, fmt.Errorf("wire: receive %d bytes: %w", n, mapNetErr(err))
	}
	return buf, nil
}

func (c *Conn) ReceiveUntil(delim byte, limit int, timeout time.Duration) ([]byte, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	if err := c.applyDeadline(timeout); err != nil {
		return nil, err
	}
	data := make([]byte, 0, 64)
	for {
		b, err := c.r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("wire: receive until %q: %w", delim, mapNetErr(err))
		}
		if b == delim {
			return data, nil
		}
		if len(data) >= limit {
			return nil, fmt.Errorf("%w: %d bytes without %q", ErrOverflow, len(data), delim)
		}
		data = append(data, b)
	}
}

// ReceiveLine reads bytes up to a newline and returns them as a string,
// delimiter excluded.
func (c *Conn) ReceiveLine(limit int, timeout time.Duration) (string, error) {
	data, err := c.ReceiveUntil('\n', limit, timeout)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *Conn) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// applyDeadline arms or clears the read deadline for the next receive.
func (c *Conn) applyDeadline(timeout time.Duration) error {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return fmt.Errorf("wire: set deadline: %w", mapNetErr(err))
	}
	return nil
}

func mapNetErr(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return fmt.Errorf("%w: %v", ErrStreamEnded, err)
	}
	return err
}
