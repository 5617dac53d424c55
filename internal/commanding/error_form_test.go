package commanding

import (
	"errors"
	"testing"

	"github.com/formwire/formwire/internal/protocol/form"
)

func TestReturnFormRoundTrip(t *testing.T) {
	rf, err := NewReturnForm("hi", form.JSONCodec{})
	if err != nil {
		t.Fatalf("new return form: %v", err)
	}
	if rf.TypeName != "string" {
		t.Fatalf("type name = %q", rf.TypeName)
	}
	parsed, err := ReturnFormFromForm(overWire(t, rf.Form()))
	if err != nil {
		t.Fatalf("from form: %v", err)
	}
	if parsed.Value != "hi" || parsed.TypeName != "string" {
		t.Fatalf("value=%v type=%q", parsed.Value, parsed.TypeName)
	}
}

func TestReturnFormMissingValue(t *testing.T) {
	f, err := form.New(TitleReturn, "type:string", map[string]any{"other": 1.0}, form.JSONCodec{})
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	if _, err := ReturnFormFromForm(f); !errors.Is(err, ErrBadAppendix) {
		t.Fatalf("expected ErrBadAppendix, got %v", err)
	}
}

func TestErrorFormSanitizesMessage(t *testing.T) {
	ef, err := NewErrorForm(errors.New("stage one: line one\nline two"), form.JSONCodec{})
	if err != nil {
		t.Fatalf("new error form: %v", err)
	}
	if ef.Message != "stage one; line one line two" {
		t.Fatalf("message = %q", ef.Message)
	}
	// The form the sanitized message produced still parses.
	if _, err := ErrorFormFromForm(overWire(t, ef.Form())); err != nil {
		t.Fatalf("from form: %v", err)
	}
}

func TestErrorFormReconstructKnownName(t *testing.T) {
	ef, err := NewErrorForm(errors.New("boom"), form.JSONCodec{})
	if err != nil {
		t.Fatalf("new error form: %v", err)
	}
	parsed, err := ErrorFormFromForm(overWire(t, ef.Form()))
	if err != nil {
		t.Fatalf("from form: %v", err)
	}
	got := parsed.Err()
	if got.Error() != "boom" {
		t.Fatalf("reconstructed error = %q", got.Error())
	}
	if errors.Is(got, ErrRemote) {
		t.Fatalf("known name should not fall back to RemoteError")
	}
}

type namedFailure struct{ detail string }

func (e *namedFailure) Error() string     { return e.detail }
func (e *namedFailure) ErrorName() string { return "QuotaExceeded" }

func TestErrorFormRemoteFallback(t *testing.T) {
	ef, err := NewErrorForm(&namedFailure{detail: "limit hit"}, form.JSONCodec{})
	if err != nil {
		t.Fatalf("new error form: %v", err)
	}
	if ef.Name != "QuotaExceeded" {
		t.Fatalf("name = %q", ef.Name)
	}
	parsed, err := ErrorFormFromForm(overWire(t, ef.Form()))
	if err != nil {
		t.Fatalf("from form: %v", err)
	}
	got := parsed.Err()
	var remote *RemoteError
	if !errors.As(got, &remote) {
		t.Fatalf("expected RemoteError, got %T %v", got, got)
	}
	if remote.Name != "QuotaExceeded" || remote.Message != "limit hit" {
		t.Fatalf("remote = %+v", remote)
	}
}

func TestErrorFormCommandNotFoundSurvivesWire(t *testing.T) {
	ef, err := NewErrorForm(&CommandNotFoundError{Command: "nope"}, form.JSONCodec{})
	if err != nil {
		t.Fatalf("new error form: %v", err)
	}
	parsed, err := ErrorFormFromForm(overWire(t, ef.Form()))
	if err != nil {
		t.Fatalf("from form: %v", err)
	}
	if !errors.Is(parsed.Err(), ErrCommandNotFound) {
		t.Fatalf("expected ErrCommandNotFound across the wire, got %v", parsed.Err())
	}
}

type carriedFailure struct {
	Code   int
	Detail string
}

func (e *carriedFailure) Error() string { return e.Detail }

func TestErrorFormGobCarriesErrorValue(t *testing.T) {
	form.RegisterType(&carriedFailure{})
	ef, err := NewErrorForm(&carriedFailure{Code: 7, Detail: "disk gone"}, form.GobCodec{})
	if err != nil {
		t.Fatalf("new error form: %v", err)
	}
	parsed, err := ErrorFormFromForm(overWire(t, ef.Form()))
	if err != nil {
		t.Fatalf("from form: %v", err)
	}
	var carried *carriedFailure
	if !errors.As(parsed.Err(), &carried) {
		t.Fatalf("expected carried *carriedFailure, got %T %v", parsed.Err(), parsed.Err())
	}
	if carried.Code != 7 || carried.Detail != "disk gone" {
		t.Fatalf("carried = %+v", carried)
	}
}

func TestRegisterErrorName(t *testing.T) {
	sentinel := errors.New("custom sentinel")
	if err := RegisterErrorName("CustomThing", func(msg string) error {
		return sentinel
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := reconstructError("CustomThing", "whatever"); !errors.Is(got, sentinel) {
		t.Fatalf("reconstructed %v, want sentinel", got)
	}
	if err := RegisterErrorName("  ", nil); err == nil {
		t.Fatalf("blank registration accepted")
	}
}
