package commanding

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/formwire/formwire/internal/protocol/form"
)

// Case-sensitive titles identifying the commanding form variants.
const (
	TitleCommand = "COMMAND"
	TitleReturn  = "RETURN"
	TitleError   = "ERROR"
)

// ModeReply is the default return and error handling mode. The modes are
// opaque strings carried end to end; interpretation is a caller concern.
const ModeReply = "reply"

const (
	specKeyCommand = "command"
	specKeyPosArgs = "pos_args"
	specKeyReturn  = "return"
	specKeyError   = "error"

	appendixKeyPos = "pos_args"
	appendixKeyKw  = "kw_args"
)

// Commanding is any typed projection wrapping exactly one Form. The Form
// is the variant's sole source of truth.
type Commanding interface {
	Form() *form.Form
}

// Resolve classifies a received Form by title.
func Resolve(f *form.Form) (Commanding, error) {
	switch f.Title() {
	case TitleCommand:
		return CommandFormFromForm(f)
	case TitleReturn:
		return ReturnFormFromForm(f)
	case TitleError:
		return ErrorFormFromForm(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrProtocolViolation, f.Title())
	}
}

// CommandSpec holds the primitives for building a CommandForm. Zero-value
// modes default to ModeReply.
type CommandSpec struct {
	Name       string
	Pos        []any
	Kw         map[string]any
	ReturnMode string
	ErrorMode  string
}

// CommandForm asks the peer to invoke a named operation.
type CommandForm struct {
	form       *form.Form
	Name       string
	Pos        []any
	Kw         map[string]any
	ReturnMode string
	ErrorMode  string
}

// NewCommandForm projects command primitives into a fresh Form: one
// key:value body line per spec field, the arguments in the appendix.
func NewCommandForm(spec CommandSpec, codec form.Codec) (*CommandForm, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, ErrBlankCommand
	}
	if strings.ContainsAny(name, ":\n") {
		return nil, fmt.Errorf("%w: command name %q", ErrMalformedBody, name)
	}
	pos := spec.Pos
	if pos == nil {
		pos = []any{}
	}
	kw := spec.Kw
	if kw == nil {
		kw = map[string]any{}
	}
	returnMode := spec.ReturnMode
	if returnMode == "" {
		returnMode = ModeReply
	}
	errorMode := spec.ErrorMode
	if errorMode == "" {
		errorMode = ModeReply
	}
	if strings.ContainsAny(returnMode+errorMode, ":\n") {
		return nil, fmt.Errorf("%w: handling mode", ErrMalformedBody)
	}

	lines := []any{
		specLine(specKeyCommand, name),
		specLine(specKeyPosArgs, strconv.Itoa(len(pos))),
		specLine(specKeyReturn, returnMode),
		specLine(specKeyError, errorMode),
	}
	appendix := map[string]any{appendixKeyPos: pos, appendixKeyKw: kw}
	f, err := form.NewFromLines(TitleCommand, lines, appendix, codec)
	if err != nil {
		return nil, err
	}
	return &CommandForm{
		form:       f,
		Name:       name,
		Pos:        pos,
		Kw:         kw,
		ReturnMode: returnMode,
		ErrorMode:  errorMode,
	}, nil
}

// CommandFormFromForm reverse-projects a received Form. The pos_args spec
// entry must parse as a non-negative integer; it is informational and not
// cross-validated against the argument sequence length.
func CommandFormFromForm(f *form.Form) (*CommandForm, error) {
	if f.Title() != TitleCommand {
		return nil, fmt.Errorf("%w: %q is not %q", ErrTypeMismatch, f.Title(), TitleCommand)
	}
	spec, err := parseSpec(f.Body())
	if err != nil {
		return nil, err
	}
	name, err := requireSpec(spec, specKeyCommand)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	posCount, err := requireSpec(spec, specKeyPosArgs)
	if err != nil {
		return nil, err
	}
	if n, convErr := strconv.Atoi(strings.TrimSpace(posCount)); convErr != nil || n < 0 {
		return nil, fmt.Errorf("%w: %q", ErrBadPosArgs, posCount)
	}
	returnMode, err := requireSpec(spec, specKeyReturn)
	if err != nil {
		return nil, err
	}
	errorMode, err := requireSpec(spec, specKeyError)
	if err != nil {
		return nil, err
	}

	appendix, ok := f.Appendix().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: appendix is %T, want map", ErrBadAppendix, f.Appendix())
	}
	posRaw, ok := appendix[appendixKeyPos]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q entry", ErrBadAppendix, appendixKeyPos)
	}
	pos, ok := posRaw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T, want sequence", ErrBadAppendix, appendixKeyPos, posRaw)
	}
	kwRaw, ok := appendix[appendixKeyKw]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q entry", ErrBadAppendix, appendixKeyKw)
	}
	kw, ok := kwRaw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T, want mapping", ErrBadAppendix, appendixKeyKw, kwRaw)
	}

	return &CommandForm{
		form:       f,
		Name:       name,
		Pos:        pos,
		Kw:         kw,
		ReturnMode: returnMode,
		ErrorMode:  errorMode,
	}, nil
}

func (cf *CommandForm) Form() *form.Form { return cf.form }
