package analysis

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so messages match the wire field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError lists every out-of-domain or missing field.
type ValidationError struct {
	Fields map[Field]string
}

func (e *ValidationError) Error() string {
	msgs := e.Messages()
	if len(msgs) == 0 {
		return "invalid patient record"
	}
	return "invalid patient record: " + strings.Join(msgs, "; ")
}

// Messages returns the field messages in canonical field order, unknown fields last.
func (e *ValidationError) Messages() []string {
	out := make([]string, 0, len(e.Fields))
	for _, f := range fieldOrder {
		if msg, ok := e.Fields[f]; ok {
			out = append(out, msg)
		}
	}

	var unknown []string
	for f := range e.Fields {
		if !f.Valid() {
			unknown = append(unknown, string(f))
		}
	}
	sort.Strings(unknown)
	for _, f := range unknown {
		out = append(out, e.Fields[Field(f)])
	}
	return out
}

// FieldMessages returns the messages keyed by wire field name.
func (e *ValidationError) FieldMessages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for f, msg := range e.Fields {
		out[string(f)] = msg
	}
	return out
}

// Add records a problem with f, keeping the first message.
func (e *ValidationError) Add(f Field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[Field]string)
	}
	if _, exists := e.Fields[f]; !exists {
		e.Fields[f] = msg
	}
}

// Validate rejects records with any field outside its declared domain.
func (r PatientRecord) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		f := Field(fe.Field())
		spec, ok := Spec(f)
		if !ok {
			verr.Add(f, fe.Error())
			continue
		}
		verr.Add(f, spec.DomainMessage())
	}
	return verr
}
