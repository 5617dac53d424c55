package session

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/formwire/formwire/internal/commanding"
	"github.com/formwire/formwire/internal/observability"
	"github.com/formwire/formwire/internal/protocol/form"
	"github.com/formwire/formwire/internal/protocol/wire"
)

const (
	requestToken = "request"
	ackLine      = "ack\n"
)

// ServerConfig tunes one commanding server.
type ServerConfig struct {
	Session Config
	// RequestRate paces request handling in requests per second across
	// all connections. Zero disables pacing.
	RequestRate  float64
	RequestBurst int
}

// Server accepts connections and serves one commanding session per
// connection: validate context shape, then loop awaiting request lines,
// receiving CommandForms, dispatching, and always replying.
type Server struct {
	ctx      *commanding.Context
	codec    form.Codec
	cfg      ServerConfig
	limiter  *rate.Limiter
	listener net.Listener
	wg       sync.WaitGroup
	shutdown atomic.Bool
}

func NewServer(ctx *commanding.Context, codec form.Codec, cfg ServerConfig) (*Server, error) {
	if ctx == nil {
		return nil, fmt.Errorf("session: nil command context")
	}
	if codec == nil {
		return nil, form.ErrNilCodec
	}
	if strings.Contains(ctx.Name(), "\n") {
		return nil, fmt.Errorf("session: context shape name contains newline")
	}
	cfg.Session = cfg.Session.WithDefaults()
	s := &Server{ctx: ctx, codec: codec, cfg: cfg}
	if cfg.RequestRate > 0 {
		burst := cfg.RequestBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestRate), burst)
	}
	return s, nil
}

// ListenAndServe listens on addr and enters the accept loop.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve runs the accept loop, one goroutine per connection. It returns
// nil when the listener is closed by Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.listener = ln
	log.Info().Str("addr", ln.Addr().String()).Str("shape", s.ctx.Name()).Msg("commanding server listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.shutdown.Load() {
				return nil
			}
			return err
		}
		go s.handleConn(conn)
	}
}

// Shutdown stops accepting and waits for in-flight dispatches to finish.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.shutdown.Store(true)
	if s.listener != nil {
		s.listener.Close()
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("session: shutdown timed out after %s", timeout)
	}
}

func (s *Server) handleConn(nc net.Conn) {
	id := uuid.NewString()
	conn := wire.NewConn(nc)
	defer conn.Close()

	logger := log.With().Str("session", id).Str("remote", nc.RemoteAddr().String()).Logger()

	if err := s.validate(conn); err != nil {
		logger.Warn().Err(err).Msg("session validation failed")
		return
	}
	logger.Debug().Str("shape", s.ctx.Name()).Msg("session validated")

	for {
		// The request line may arrive whenever the client next calls;
		// waiting carries no timeout.
		line, err := conn.ReceiveLine(s.cfg.Session.LineLimit, 0)
		if err != nil {
			logger.Debug().Err(err).Msg("session ended")
			return
		}
		if line != requestToken {
			logger.Warn().Str("line", line).Msg("unexpected request identifier")
			return
		}
		if s.limiter != nil {
			if err := s.limiter.Wait(context.Background()); err != nil {
				return
			}
		}
		if err := conn.SendString(ackLine); err != nil {
			return
		}
		if err := s.serveRequest(conn, logger); err != nil {
			logger.Warn().Err(err).Msg("request failed")
			return
		}
	}
}

// validate exchanges context shape names with the peer. Both ends send
// first and read second, so neither blocks on the other's send.
func (s *Server) validate(conn *wire.Conn) error {
	if err := conn.SendString(s.ctx.Name() + "\n"); err != nil {
		return err
	}
	peer, err := conn.ReceiveLine(s.cfg.Session.LineLimit, s.cfg.Session.HandshakeTimeout)
	if err != nil {
		return err
	}
	if peer != s.ctx.Name() {
		return fmt.Errorf("%w: got %q, want %q", ErrContextMismatch, peer, s.ctx.Name())
	}
	return nil
}

// serveRequest receives one commanding form, dispatches it, and sends
// the reply. Only transport failures are returned; dispatch failures
// travel back as ErrorForms.
func (s *Server) serveRequest(conn *wire.Conn, logger zerolog.Logger) error {
	s.wg.Add(1)
	defer s.wg.Done()

	rx, err := wire.NewReceiver(conn, s.codec, wire.ReceiverConfig{
		Separator: s.cfg.Session.Separator,
		Timeout:   s.cfg.Session.ReceiveTimeout,
		LineLimit: s.cfg.Session.LineLimit,
	})
	if err != nil {
		return err
	}
	f, err := rx.Receive()
	if err != nil {
		return err
	}
	observability.RecordForm("received", f.Title())

	command := "unresolved"
	start := time.Now()
	value, dispatchErr := s.dispatch(f, &command)
	outcome := "ok"
	if dispatchErr != nil {
		outcome = "error"
	}
	elapsed := time.Since(start)
	observability.RecordCommand(command, outcome, elapsed)
	logger.Debug().Str("command", command).Str("outcome", outcome).Dur("elapsed", elapsed).Msg("dispatched")

	reply, err := s.buildReply(value, dispatchErr)
	if err != nil {
		return err
	}
	tx, err := wire.NewTransmitter(conn, reply.Form(), wire.TransmitterConfig{
		Separator:  s.cfg.Session.Separator,
		AckTimeout: s.cfg.Session.AckTimeout,
	})
	if err != nil {
		return err
	}
	if err := tx.Transmit(); err != nil {
		return err
	}
	observability.RecordForm("sent", reply.Form().Title())
	return nil
}

// dispatch resolves and executes a received form. Handler panics are
// contained and surface as dispatch errors.
func (s *Server) dispatch(f *form.Form, command *string) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, fmt.Errorf("session: handler panic: %v", r)
		}
	}()
	resolved, err := commanding.Resolve(f)
	if err != nil {
		return nil, err
	}
	if cf, ok := resolved.(*commanding.CommandForm); ok {
		*command = cf.Name
	}
	return s.ctx.Execute(resolved)
}

// buildReply projects the dispatch outcome into a ReturnForm or an
// ErrorForm. A return value the codec cannot represent becomes an
// ErrorForm rather than a dead connection.
func (s *Server) buildReply(value any, dispatchErr error) (commanding.Commanding, error) {
	if dispatchErr != nil {
		return commanding.NewErrorForm(dispatchErr, s.codec)
	}
	if !s.codec.Representable(map[string]any{"return": value}) {
		return commanding.NewErrorForm(
			fmt.Errorf("session: return value of type %T is not representable", value), s.codec)
	}
	return commanding.NewReturnForm(value, s.codec)
}
