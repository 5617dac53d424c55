package commanding

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrProtocolViolation = errors.New("commanding: not a commanding form title")
	ErrTypeMismatch      = errors.New("commanding: form title does not match variant")
	ErrMalformedBody     = errors.New("commanding: body line must contain exactly one ':'")
	ErrMissingSpecKey    = errors.New("commanding: missing spec key")
	ErrBadPosArgs        = errors.New("commanding: pos_args is not a non-negative integer")
	ErrBadAppendix       = errors.New("commanding: appendix shape mismatch")
	ErrCommandNotFound   = errors.New("commanding: command not found")
	ErrDuplicateCommand  = errors.New("commanding: command already registered")
	ErrBlankCommand      = errors.New("commanding: blank command name")
	ErrNilHandler        = errors.New("commanding: nil handler")
)

// Named lets an error choose the name it travels under in an ErrorForm.
// Errors without it travel under their %T type string.
type Named interface {
	ErrorName() string
}

// RemoteError carries a peer failure whose name no local constructor
// recognizes. The name and message are plain data, never evaluated.
type RemoteError struct {
	Name    string
	Message string
}

// ErrRemote is a sentinel for errors.Is to match any *RemoteError.
var ErrRemote = &RemoteError{}

func (e *RemoteError) Error() string {
	return e.Name + ": " + e.Message
}

func (e *RemoteError) ErrorName() string { return e.Name }

// Is supports errors.Is by matching any *RemoteError target.
func (e *RemoteError) Is(target error) bool {
	_, ok := target.(*RemoteError)
	return ok
}

// CommandNotFoundError identifies a dispatch miss by command name. It
// travels under the name "CommandNotFound" so the caller's errors.Is
// check survives the wire.
type CommandNotFoundError struct {
	Command string
}

func (e *CommandNotFoundError) Error() string {
	return "commanding: command not found: " + e.Command
}

func (e *CommandNotFoundError) ErrorName() string { return "CommandNotFound" }

func (e *CommandNotFoundError) Is(target error) bool {
	return target == ErrCommandNotFound
}

// errorCtors is the closed registry mapping known error names to local
// constructors. Reconstruction never executes name-derived code; an
// unrecognized name falls back to RemoteError.
var (
	ctorMu     sync.RWMutex
	errorCtors = map[string]func(message string) error{
		"CommandNotFound": func(message string) error {
			return fmt.Errorf("%w: %s", ErrCommandNotFound, message)
		},
		"*errors.errorString": func(message string) error {
			return errors.New(message)
		},
	}
)

// RegisterErrorName maps a wire error name to a local constructor.
func RegisterErrorName(name string, ctor func(message string) error) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("commanding: blank error name")
	}
	if ctor == nil {
		return ErrNilHandler
	}
	ctorMu.Lock()
	defer ctorMu.Unlock()
	errorCtors[name] = ctor
	return nil
}

func reconstructError(name, message string) error {
	ctorMu.RLock()
	ctor, ok := errorCtors[name]
	ctorMu.RUnlock()
	if ok {
		return ctor(message)
	}
	return &RemoteError{Name: name, Message: message}
}

func errorName(err error) string {
	if n, ok := err.(Named); ok {
		return n.ErrorName()
	}
	return fmt.Sprintf("%T", err)
}
