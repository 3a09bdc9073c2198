package types

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/analysis"
)

// FormInput holds the submitted form strings so the page can be re-rendered as entered.
type FormInput map[analysis.Field]string

// DefaultFormInput is the form as first shown.
func DefaultFormInput() FormInput {
	return FormInputFromRecord(analysis.DefaultRecord())
}

// FormInputFromRecord renders r as form strings.
func FormInputFromRecord(r analysis.PatientRecord) FormInput {
	in := make(FormInput, 11)
	for _, f := range analysis.FormOrder() {
		spec, _ := analysis.Spec(f)
		in[f] = spec.FormatValue(r.Value(f))
	}
	return in
}

// FormInputFromValues keeps the known fields of a posted form, trimmed.
func FormInputFromValues(v url.Values) FormInput {
	in := make(FormInput, 11)
	for _, f := range analysis.FormOrder() {
		if vals, ok := v[string(f)]; ok && len(vals) > 0 {
			in[f] = strings.TrimSpace(vals[0])
		}
	}
	return in
}

// Get returns the submitted string of f.
func (in FormInput) Get(f analysis.Field) string {
	return in[f]
}

// Record parses and validates the form. Blank fields are missing, not zero.
func (in FormInput) Record() (analysis.PatientRecord, error) {
	parseErr := &analysis.ValidationError{}
	values := make(map[analysis.Field]float64, len(in))

	for _, f := range analysis.FormOrder() {
		raw := in[f]
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			parseErr.Add(f, fmt.Sprintf("%s must be a number", f))
			continue
		}
		values[f] = v
	}

	r, err := analysis.NewPatientRecord(values)
	if len(parseErr.Fields) == 0 {
		return r, err
	}

	// unparseable fields keep their own message over "is required"
	if verr, ok := err.(*analysis.ValidationError); ok {
		for f, msg := range verr.Fields {
			parseErr.Add(f, msg)
		}
	}
	return analysis.PatientRecord{}, parseErr
}
