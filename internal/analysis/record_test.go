package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPatientRecord_RoundTrip(t *testing.T) {
	for _, want := range []PatientRecord{minimumRecord(), maximumRecord()} {
		got, err := NewPatientRecord(want.Values())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestNewPatientRecord_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[Field]float64)
		want   map[Field]string
	}{
		{
			name:   "missing field",
			mutate: func(v map[Field]float64) { delete(v, FieldHGB) },
			want:   map[Field]string{FieldHGB: "bl_hgb is required"},
		},
		{
			name: "missing and out of domain together",
			mutate: func(v map[Field]float64) {
				delete(v, FieldAge)
				v[FieldPA] = 4
			},
			want: map[Field]string{
				FieldAge: "age is required",
				FieldPA:  "PA must be one of 0, 1, 2",
			},
		},
		{
			name:   "fractional categorical",
			mutate: func(v map[Field]float64) { v[FieldGender] = 0.5 },
			want:   map[Field]string{FieldGender: "gender must be one of 0, 1"},
		},
		{
			name:   "fractional age",
			mutate: func(v map[Field]float64) { v[FieldAge] = 55.5 },
			want:   map[Field]string{FieldAge: "age must be a whole number"},
		},
		{
			name:   "fractional age outside the range",
			mutate: func(v map[Field]float64) { v[FieldAge] = 39.5 },
			want:   map[Field]string{FieldAge: "age must be a whole number"},
		},
		{
			name:   "NaN float",
			mutate: func(v map[Field]float64) { v[FieldCRP] = math.NaN() },
			want:   map[Field]string{FieldCRP: "bl_crp must be between 0.0 and 30.0 mg/L"},
		},
		{
			name:   "infinite float",
			mutate: func(v map[Field]float64) { v[FieldBMI] = math.Inf(1) },
			want:   map[Field]string{FieldBMI: "bmi must be between 15.0 and 40.0 kg/m²"},
		},
		{
			name:   "unknown field",
			mutate: func(v map[Field]float64) { v["weight"] = 70 },
			want:   map[Field]string{"weight": "weight is not a known field"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := DefaultRecord().Values()
			tt.mutate(values)

			_, err := NewPatientRecord(values)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.want, verr.Fields)
		})
	}
}
