package analysis

import (
	"fmt"
	"math"
)

// NewPatientRecord builds a validated record from raw field values.
// Every field is required and finite; integer and categorical fields must hold whole numbers.
func NewPatientRecord(values map[Field]float64) (PatientRecord, error) {
	verr := &ValidationError{}

	for f := range values {
		if !f.Valid() {
			verr.Add(f, fmt.Sprintf("%s is not a known field", f))
		}
	}

	var r PatientRecord
	for _, f := range fieldOrder {
		v, ok := values[f]
		if !ok {
			verr.Add(f, fmt.Sprintf("%s is required", f))
			continue
		}

		spec := fieldSpecs[f]
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			verr.Add(f, spec.DomainMessage())
			continue
		case spec.Kind == KindInteger && v != math.Trunc(v):
			verr.Add(f, fmt.Sprintf("%s must be a whole number", f))
			continue
		case spec.Kind == KindCategorical && v != math.Trunc(v):
			verr.Add(f, spec.DomainMessage())
			continue
		}
		r.set(f, v)
	}

	if len(verr.Fields) > 0 {
		// report domain problems of the fields that were present too
		if err := r.Validate(); err != nil {
			if domain, ok := err.(*ValidationError); ok {
				for f, msg := range domain.Fields {
					if _, present := values[f]; present {
						verr.Add(f, msg)
					}
				}
			}
		}
		return PatientRecord{}, verr
	}

	if err := r.Validate(); err != nil {
		return PatientRecord{}, err
	}
	return r, nil
}

func (r *PatientRecord) set(f Field, v float64) {
	switch f {
	case FieldAge:
		r.Age = int(v)
	case FieldGender:
		r.Gender = int(v)
	case FieldBMI:
		r.BMI = v
	case FieldSmoke:
		r.Smoke = int(v)
	case FieldFTSST:
		r.FTSST = int(v)
	case FieldADL:
		r.ADL = int(v)
	case FieldPA:
		r.PA = int(v)
	case FieldComplications:
		r.Complications = int(v)
	case FieldFall:
		r.Fall = int(v)
	case FieldCRP:
		r.CRP = v
	case FieldHGB:
		r.HGB = v
	}
}

// Values returns the record as a field map, the inverse of NewPatientRecord.
func (r PatientRecord) Values() map[Field]float64 {
	out := make(map[Field]float64, len(fieldOrder))
	for _, f := range fieldOrder {
		out[f] = r.Value(f)
	}
	return out
}
