package commanding

import (
	"fmt"

	"github.com/formwire/formwire/internal/protocol/form"
)

const (
	specKeyName      = "name"
	specKeyMessage   = "message"
	appendixKeyError = "error"
)

// ErrorForm carries a failure across the RPC boundary as data. When the
// codec can represent the error value itself it rides in the appendix;
// otherwise only the name and message survive the wire.
type ErrorForm struct {
	form    *form.Form
	Name    string
	Message string
	carried error
}

func NewErrorForm(err error, codec form.Codec) (*ErrorForm, error) {
	if err == nil {
		return nil, fmt.Errorf("commanding: error form requires an error")
	}
	name := sanitizeSpecValue(errorName(err))
	message := sanitizeSpecValue(err.Error())
	appendix := map[string]any{}
	if codec.Representable(err) {
		appendix[appendixKeyError] = err
	}
	f, err2 := form.NewFromLines(
		TitleError,
		[]any{specLine(specKeyName, name), specLine(specKeyMessage, message)},
		appendix,
		codec,
	)
	if err2 != nil {
		return nil, err2
	}
	return &ErrorForm{form: f, Name: name, Message: message, carried: err}, nil
}

func ErrorFormFromForm(f *form.Form) (*ErrorForm, error) {
	if f.Title() != TitleError {
		return nil, fmt.Errorf("%w: %q is not %q", ErrTypeMismatch, f.Title(), TitleError)
	}
	spec, err := parseSpec(f.Body())
	if err != nil {
		return nil, err
	}
	name, err := requireSpec(spec, specKeyName)
	if err != nil {
		return nil, err
	}
	message, err := requireSpec(spec, specKeyMessage)
	if err != nil {
		return nil, err
	}
	ef := &ErrorForm{form: f, Name: name, Message: message}
	if appendix, ok := f.Appendix().(map[string]any); ok {
		if carried, ok := appendix[appendixKeyError].(error); ok {
			ef.carried = carried
		}
	}
	return ef, nil
}

// Err returns the failure as a local error value: the appendix-carried
// error when the codec preserved it, otherwise a reconstruction from the
// closed name registry with a RemoteError fallback.
func (ef *ErrorForm) Err() error {
	if ef.carried != nil {
		return ef.carried
	}
	return reconstructError(ef.Name, ef.Message)
}

func (ef *ErrorForm) Form() *form.Form { return ef.form }
