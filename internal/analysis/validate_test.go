package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AcceptsDomainEdges(t *testing.T) {
	assert.NoError(t, minimumRecord().Validate())
	assert.NoError(t, maximumRecord().Validate())
	assert.NoError(t, DefaultRecord().Validate())

	r := minimumRecord()
	r.BMI = 15
	r.CRP = 30
	r.HGB = 250
	assert.NoError(t, r.Validate())
}

func TestValidate_RejectsOutOfDomain(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PatientRecord)
		field   Field
		message string
	}{
		{"age below range", func(r *PatientRecord) { r.Age = 39 }, FieldAge, "age must be between 40 and 110"},
		{"age above range", func(r *PatientRecord) { r.Age = 111 }, FieldAge, "age must be between 40 and 110"},
		{"gender not binary", func(r *PatientRecord) { r.Gender = 2 }, FieldGender, "gender must be one of 0, 1"},
		{"bmi too low", func(r *PatientRecord) { r.BMI = 14.9 }, FieldBMI, "bmi must be between 15.0 and 40.0 kg/m²"},
		{"smoke negative", func(r *PatientRecord) { r.Smoke = -1 }, FieldSmoke, "smoke must be one of 0, 1"},
		{"FTSST out of set", func(r *PatientRecord) { r.FTSST = 3 }, FieldFTSST, "FTSST must be one of 0, 1"},
		{"ADL out of set", func(r *PatientRecord) { r.ADL = 2 }, FieldADL, "ADL must be one of 0, 1"},
		{"PA out of set", func(r *PatientRecord) { r.PA = 3 }, FieldPA, "PA must be one of 0, 1, 2"},
		{"complications out of set", func(r *PatientRecord) { r.Complications = 5 }, FieldComplications, "Complications must be one of 0, 1, 2"},
		{"fall out of set", func(r *PatientRecord) { r.Fall = 9 }, FieldFall, "fall must be one of 0, 1"},
		{"crp too high", func(r *PatientRecord) { r.CRP = 30.1 }, FieldCRP, "bl_crp must be between 0.0 and 30.0 mg/L"},
		{"hgb too low", func(r *PatientRecord) { r.HGB = 49 }, FieldHGB, "bl_hgb must be between 50.0 and 250.0 g/L"},
		{"hgb not a number", func(r *PatientRecord) { r.HGB = math.NaN() }, FieldHGB, "bl_hgb must be between 50.0 and 250.0 g/L"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := minimumRecord()
			tt.mutate(&r)

			err := r.Validate()
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.message, verr.Fields[tt.field])
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	r := minimumRecord()
	r.Age = 10
	r.PA = 7
	r.CRP = -1

	err := r.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	assert.Len(t, verr.Fields, 3)
	// canonical order: bl_crp, PA, age
	assert.Equal(t, []string{
		"bl_crp must be between 0.0 and 30.0 mg/L",
		"PA must be one of 0, 1, 2",
		"age must be between 40 and 110",
	}, verr.Messages())
}

func TestValidationError_AddKeepsFirst(t *testing.T) {
	verr := &ValidationError{}
	verr.Add(FieldAge, "age is required")
	verr.Add(FieldAge, "age must be between 40 and 110")

	assert.Equal(t, "age is required", verr.Fields[FieldAge])
	assert.Equal(t, "invalid patient record: age is required", verr.Error())
}
