package commanding

import (
	"fmt"

	"github.com/formwire/formwire/internal/protocol/form"
)

const (
	specKeyType       = "type"
	appendixKeyReturn = "return"
)

// ReturnForm carries a command's return value back to the caller. The
// type name records the value's runtime type and is informational only.
type ReturnForm struct {
	form     *form.Form
	Value    any
	TypeName string
}

func NewReturnForm(value any, codec form.Codec) (*ReturnForm, error) {
	typeName := fmt.Sprintf("%T", value)
	f, err := form.NewFromLines(
		TitleReturn,
		[]any{specLine(specKeyType, typeName)},
		map[string]any{appendixKeyReturn: value},
		codec,
	)
	if err != nil {
		return nil, err
	}
	return &ReturnForm{form: f, Value: value, TypeName: typeName}, nil
}

func ReturnFormFromForm(f *form.Form) (*ReturnForm, error) {
	if f.Title() != TitleReturn {
		return nil, fmt.Errorf("%w: %q is not %q", ErrTypeMismatch, f.Title(), TitleReturn)
	}
	spec, err := parseSpec(f.Body())
	if err != nil {
		return nil, err
	}
	typeName, err := requireSpec(spec, specKeyType)
	if err != nil {
		return nil, err
	}
	appendix, ok := f.Appendix().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: appendix is %T, want map", ErrBadAppendix, f.Appendix())
	}
	value, ok := appendix[appendixKeyReturn]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q entry", ErrBadAppendix, appendixKeyReturn)
	}
	return &ReturnForm{form: f, Value: value, TypeName: typeName}, nil
}

func (rf *ReturnForm) Form() *form.Form { return rf.form }
