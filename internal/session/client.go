package session

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/formwire/formwire/internal/commanding"
	"github.com/formwire/formwire/internal/protocol/form"
	"github.com/formwire/formwire/internal/protocol/wire"
)

// Client drives the calling end of a commanding session. It is not safe
// for concurrent use; one Call runs at a time.
type Client struct {
	conn   *wire.Conn
	shape  string
	codec  form.Codec
	cfg    Config
	closed bool
}

// Dial connects to a commanding server and wraps the connection. The
// shape is the local command context identifier checked by Validate.
func Dial(addr, shape string, codec form.Codec, cfg Config) (*Client, error) {
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewClient(nc, shape, codec, cfg)
}

func NewClient(nc net.Conn, shape string, codec form.Codec, cfg Config) (*Client, error) {
	if codec == nil {
		return nil, form.ErrNilCodec
	}
	shape = strings.TrimSpace(shape)
	if shape == "" || strings.Contains(shape, "\n") {
		return nil, fmt.Errorf("session: invalid context shape name %q", shape)
	}
	return &Client{
		conn:  wire.NewConn(nc),
		shape: shape,
		codec: codec,
		cfg:   cfg.WithDefaults(),
	}, nil
}

// Validate exchanges context shape names with the server. A mismatch is
// fatal for the session.
func (c *Client) Validate() error {
	if c.closed {
		return ErrSessionClosed
	}
	if err := c.conn.SendString(c.shape + "\n"); err != nil {
		return c.fatal(err)
	}
	peer, err := c.conn.ReceiveLine(c.cfg.LineLimit, c.cfg.HandshakeTimeout)
	if err != nil {
		return c.fatal(err)
	}
	if peer != c.shape {
		return c.fatal(fmt.Errorf("%w: got %q, want %q", ErrContextMismatch, peer, c.shape))
	}
	return nil
}

// Call invokes a remote command and blocks for the reply. A remote
// handler failure comes back as the reconstructed error; transport and
// protocol failures close the session.
func (c *Client) Call(command string, pos []any, kw map[string]any) (any, error) {
	if c.closed {
		return nil, ErrSessionClosed
	}
	cf, err := commanding.NewCommandForm(commanding.CommandSpec{Name: command, Pos: pos, Kw: kw}, c.codec)
	if err != nil {
		return nil, err
	}

	if err := c.conn.SendString(requestToken + "\n"); err != nil {
		return nil, c.fatal(err)
	}
	line, err := c.conn.ReceiveLine(c.cfg.LineLimit, c.cfg.AckTimeout)
	if err != nil {
		return nil, c.fatal(err)
	}
	if line != "ack" {
		return nil, c.fatal(fmt.Errorf("%w: got %q, want %q", ErrBadHandshake, line, "ack"))
	}

	tx, err := wire.NewTransmitter(c.conn, cf.Form(), wire.TransmitterConfig{
		Separator:  c.cfg.Separator,
		AckTimeout: c.cfg.AckTimeout,
	})
	if err != nil {
		return nil, err
	}
	if err := tx.Transmit(); err != nil {
		return nil, c.fatal(err)
	}

	reply, err := c.receiveReply()
	if err != nil {
		return nil, err
	}
	switch v := reply.(type) {
	case *commanding.ReturnForm:
		return v.Value, nil
	case *commanding.ErrorForm:
		return nil, v.Err()
	default:
		return nil, c.fatal(fmt.Errorf("%w: reply %q", commanding.ErrProtocolViolation, v.Form().Title()))
	}
}

func (c *Client) receiveReply() (commanding.Commanding, error) {
	rx, err := wire.NewReceiver(c.conn, c.codec, wire.ReceiverConfig{
		Separator: c.cfg.Separator,
		Timeout:   c.cfg.ReceiveTimeout,
		LineLimit: c.cfg.LineLimit,
	})
	if err != nil {
		return nil, err
	}
	f, err := rx.Receive()
	if err != nil {
		return nil, c.fatal(err)
	}
	reply, err := commanding.Resolve(f)
	if err != nil {
		return nil, c.fatal(err)
	}
	return reply, nil
}

func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// fatal closes the session and passes the error through. Every failure
// past the handshake leaves the stream in an unknown position, so no
// call survives it.
func (c *Client) fatal(err error) error {
	if !c.closed {
		c.closed = true
		c.conn.Close()
	}
	if errors.Is(err, ErrContextMismatch) || errors.Is(err, ErrBadHandshake) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrSessionClosed, err)
}
