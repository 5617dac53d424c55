package session

import (
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/formwire/formwire/internal/commanding"
	"github.com/formwire/formwire/internal/protocol/form"
	"github.com/formwire/formwire/internal/testutil/testlog"
)

func testContext(t *testing.T) *commanding.Context {
	t.Helper()
	ctx := commanding.NewContext("formwire.test")
	register := func(name string, h commanding.Handler) {
		if err := ctx.Register(name, h); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	register("echo", func(pos []any, kw map[string]any) (any, error) {
		if len(pos) == 0 {
			return nil, errors.New("echo: nothing to echo")
		}
		return pos[0], nil
	})
	register("sum", func(pos []any, kw map[string]any) (any, error) {
		total := 0.0
		for _, v := range pos {
			f, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("sum: %v is not a number", v)
			}
			total += f
		}
		if scale, ok := kw["scale"].(float64); ok {
			total *= scale
		}
		return total, nil
	})
	register("fail", func(pos []any, kw map[string]any) (any, error) {
		return nil, errors.New("kaput")
	})
	register("panic", func(pos []any, kw map[string]any) (any, error) {
		panic("handler exploded")
	})
	return ctx
}

func startServer(t *testing.T, ctx *commanding.Context, cfg ServerConfig) string {
	t.Helper()
	testlog.Start(t)
	srv, err := NewServer(ctx, form.JSONCodec{}, cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()
	t.Cleanup(func() {
		if err := srv.Shutdown(2 * time.Second); err != nil {
			t.Errorf("shutdown: %v", err)
		}
		if err := <-done; err != nil {
			t.Errorf("serve: %v", err)
		}
	})
	return ln.Addr().String()
}

func dialClient(t *testing.T, addr, shape string) *Client {
	t.Helper()
	client, err := Dial(addr, shape, form.JSONCodec{}, Config{})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestCallRoundTrip(t *testing.T) {
	addr := startServer(t, testContext(t), ServerConfig{})
	client := dialClient(t, addr, "formwire.test")
	if err := client.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	value, err := client.Call("echo", []any{"hi there"}, nil)
	if err != nil {
		t.Fatalf("call echo: %v", err)
	}
	if value != "hi there" {
		t.Fatalf("echo = %v", value)
	}

	value, err = client.Call("sum", []any{1.0, 2.0, 3.0}, map[string]any{"scale": 2.0})
	if err != nil {
		t.Fatalf("call sum: %v", err)
	}
	if value != 12.0 {
		t.Fatalf("sum = %v", value)
	}
}

func TestCallRemoteError(t *testing.T) {
	addr := startServer(t, testContext(t), ServerConfig{})
	client := dialClient(t, addr, "formwire.test")
	if err := client.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	_, err := client.Call("fail", nil, nil)
	if err == nil || err.Error() != "kaput" {
		t.Fatalf("remote error = %v", err)
	}

	// The session survives a remote handler failure.
	value, err := client.Call("echo", []any{"still alive"}, nil)
	if err != nil || value != "still alive" {
		t.Fatalf("call after error: %v %v", value, err)
	}
}

func TestCallUnknownCommand(t *testing.T) {
	addr := startServer(t, testContext(t), ServerConfig{})
	client := dialClient(t, addr, "formwire.test")
	if err := client.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	_, err := client.Call("ghost", nil, nil)
	if !errors.Is(err, commanding.ErrCommandNotFound) {
		t.Fatalf("expected ErrCommandNotFound, got %v", err)
	}
}

func TestCallHandlerPanicContained(t *testing.T) {
	addr := startServer(t, testContext(t), ServerConfig{})
	client := dialClient(t, addr, "formwire.test")
	if err := client.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	_, err := client.Call("panic", nil, nil)
	if err == nil {
		t.Fatalf("expected panic to surface as remote error")
	}
	value, err := client.Call("echo", []any{"recovered"}, nil)
	if err != nil || value != "recovered" {
		t.Fatalf("call after panic: %v %v", value, err)
	}
}

func TestValidateContextMismatch(t *testing.T) {
	addr := startServer(t, testContext(t), ServerConfig{})
	client := dialClient(t, addr, "formwire.other")
	err := client.Validate()
	if !errors.Is(err, ErrContextMismatch) {
		t.Fatalf("expected ErrContextMismatch, got %v", err)
	}
	if _, err := client.Call("echo", []any{"x"}, nil); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed after mismatch, got %v", err)
	}
}

func TestCallAfterClose(t *testing.T) {
	addr := startServer(t, testContext(t), ServerConfig{})
	client := dialClient(t, addr, "formwire.test")
	if err := client.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := client.Call("echo", []any{"x"}, nil); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}

func TestRequestPacing(t *testing.T) {
	addr := startServer(t, testContext(t), ServerConfig{RequestRate: 200, RequestBurst: 1})
	client := dialClient(t, addr, "formwire.test")
	if err := client.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	for i := 0; i < 5; i++ {
		value, err := client.Call("echo", []any{float64(i)}, nil)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if value != float64(i) {
			t.Fatalf("call %d = %v", i, value)
		}
	}
}
