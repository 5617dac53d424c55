package commanding

import (
	"fmt"
	"strings"
	"sync"
)

// Handler is a local operation invocable by a CommandForm.
type Handler func(pos []any, kw map[string]any) (any, error)

// Context is the registry mapping command names to local operations. It
// is populated at startup and may be shared read-only across sessions.
type Context struct {
	name     string
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewContext creates an empty registry. The name is the registry's shape
// identifier exchanged during session validation.
func NewContext(name string) *Context {
	return &Context{
		name:     strings.TrimSpace(name),
		handlers: make(map[string]Handler),
	}
}

func (c *Context) Name() string { return c.name }

// Register binds a command name to a handler. Blank names, nil handlers,
// and duplicate registrations fail here, at registration time.
func (c *Context) Register(name string, h Handler) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBlankCommand
	}
	if h == nil {
		return ErrNilHandler
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.handlers[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateCommand, name)
	}
	c.handlers[name] = h
	return nil
}

func (c *Context) Lookup(name string) (Handler, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.handlers[name]
	if !ok {
		return nil, &CommandNotFoundError{Command: name}
	}
	return h, nil
}

// Commands lists the registered command names.
func (c *Context) Commands() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.handlers))
	for name := range c.handlers {
		names = append(names, name)
	}
	return names
}

// Execute runs a resolved commanding form: a CommandForm invokes its
// registered handler, a ReturnForm yields its carried value, an ErrorForm
// yields its carried failure.
func (c *Context) Execute(cf Commanding) (any, error) {
	switch v := cf.(type) {
	case *CommandForm:
		h, err := c.Lookup(v.Name)
		if err != nil {
			return nil, err
		}
		return h(v.Pos, v.Kw)
	case *ReturnForm:
		return v.Value, nil
	case *ErrorForm:
		return nil, v.Err()
	default:
		return nil, fmt.Errorf("commanding: cannot execute %T", cf)
	}
}
