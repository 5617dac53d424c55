package wire

import (
	"errors"
	"net"
	"testing"
	"time"
)

func TestConnReceiveExact(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	go func() {
		a.Write([]byte("hello world"))
	}()

	c := NewConn(b)
	data, err := c.ReceiveExact(5, time.Second)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("data = %q", data)
	}
	rest, err := c.ReceiveExact(6, time.Second)
	if err != nil {
		t.Fatalf("receive rest: %v", err)
	}
	if string(rest) != " world" {
		t.Fatalf("rest = %q", rest)
	}
}

func TestConnReceiveUntil(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	go func() {
		a.Write([]byte("first\nsecond\n"))
	}()

	c := NewConn(b)
	line, err := c.ReceiveLine(DefaultLineLimit, time.Second)
	if err != nil {
		t.Fatalf("receive line: %v", err)
	}
	if line != "first" {
		t.Fatalf("line = %q", line)
	}
	line, err = c.ReceiveLine(DefaultLineLimit, time.Second)
	if err != nil {
		t.Fatalf("receive second line: %v", err)
	}
	if line != "second" {
		t.Fatalf("line = %q", line)
	}
}

func TestConnReceiveUntilOverflow(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	go func() {
		a.Write([]byte("abcdefghij\n"))
	}()

	c := NewConn(b)
	_, err := c.ReceiveUntil('\n', 4, time.Second)
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestConnReceiveTimeout(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	c := NewConn(b)
	start := time.Now()
	_, err := c.ReceiveExact(1, 50*time.Millisecond)
	elapsed := time.Since(start)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed < 30*time.Millisecond || elapsed > time.Second {
		t.Fatalf("timeout fired after %v, want roughly 50ms", elapsed)
	}
}

func TestConnReceiveAfterClose(t *testing.T) {
	a, b := net.Pipe()
	a.Close()

	c := NewConn(b)
	_, err := c.ReceiveExact(1, time.Second)
	if !errors.Is(err, ErrStreamEnded) {
		t.Fatalf("expected ErrStreamEnded, got %v", err)
	}
}
