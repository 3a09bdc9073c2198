package types

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadline(t *testing.T) {
	tests := []struct {
		p        float64
		expected string
	}{
		{0.46, "46.0%"},
		{0.350647, "35.1%"},
		{0.01, "1.0%"},
		{0.99, "99.0%"},
		{0.80419, "80.4%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Headline(tt.p))
	}
}

func TestAssessmentRequest_Record(t *testing.T) {
	body := `{"age":67,"gender":1,"bmi":27.3,"smoke":0,"FTSST":1,"ADL":0,"PA":1,
		"Complications":1,"fall":0,"bl_crp":4.2,"bl_hgb":131}`

	var req AssessmentRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	r, err := req.Record()
	require.NoError(t, err)
	assert.Equal(t, analysis.PatientRecord{
		Age: 67, Gender: 1, BMI: 27.3, Smoke: 0, FTSST: 1, ADL: 0, PA: 1,
		Complications: 1, Fall: 0, CRP: 4.2, HGB: 131,
	}, r)
}

func TestAssessmentRequest_MissingAndZero(t *testing.T) {
	// zero is a value; null and absent are missing
	body := `{"age":40,"gender":0,"bmi":18.5,"smoke":0,"FTSST":0,"ADL":0,"PA":0,
		"Complications":0,"fall":null,"bl_crp":0}`

	var req AssessmentRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	_, err := req.Record()
	var verr *analysis.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[analysis.Field]string{
		analysis.FieldFall: "fall is required",
		analysis.FieldHGB:  "bl_hgb is required",
	}, verr.Fields)
}

func TestNewAssessmentResponse(t *testing.T) {
	a := analysis.NewScorer(analysis.DefaultModelConfig()).Assess(analysis.DefaultRecord())
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))

	resp := NewAssessmentResponse("abc", a, now)

	assert.Equal(t, "abc", resp.ID)
	assert.Equal(t, "35.1%", resp.Headline)
	assert.Equal(t, analysis.TierMedium, resp.Tier)
	assert.Equal(t, analysis.GuidanceFor(analysis.TierMedium), resp.Guidance)
	assert.Equal(t, 0.35, resp.Base)
	assert.Len(t, resp.Contributions, 11)
	assert.Equal(t, time.UTC, resp.CreatedAt.Location())
}

func TestNewModelResponse(t *testing.T) {
	resp := NewModelResponse(analysis.DefaultModelConfig())

	assert.Equal(t, 0.35, resp.Base)
	assert.Equal(t, 0.7, resp.Thresholds.High)
	require.Len(t, resp.Fields, 11)
	for i, f := range analysis.FieldOrder() {
		assert.Equal(t, f, resp.Fields[i].Field)
	}
	assert.Equal(t, analysis.TermConstant, resp.Fields[5].Term.Kind)

	raw, err := json.Marshal(resp.Fields[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"field":"FTSST"`)
	assert.Contains(t, string(raw), `"term":{"kind":"linear","scale":0.06}`)
}

func TestNewFieldsResponse(t *testing.T) {
	resp := NewFieldsResponse()

	require.Len(t, resp.Fields, 11)
	assert.Equal(t, analysis.FieldAge, resp.Fields[0].Field)
	assert.Equal(t, analysis.FieldHGB, resp.Fields[10].Field)
	assert.Equal(t, 120.0, resp.Fields[10].Default)
}

func TestDefaultFormInput(t *testing.T) {
	in := DefaultFormInput()

	assert.Equal(t, "40", in.Get(analysis.FieldAge))
	assert.Equal(t, "18.5", in.Get(analysis.FieldBMI))
	assert.Equal(t, "0.0", in.Get(analysis.FieldCRP))
	assert.Equal(t, "120.0", in.Get(analysis.FieldHGB))

	r, err := in.Record()
	require.NoError(t, err)
	assert.Equal(t, analysis.DefaultRecord(), r)
}

func TestFormInput_Record(t *testing.T) {
	valid := func() url.Values {
		v := url.Values{}
		for f, s := range DefaultFormInput() {
			v.Set(string(f), s)
		}
		return v
	}

	tests := []struct {
		name   string
		mutate func(url.Values)
		want   map[analysis.Field]string
	}{
		{
			name:   "blank is missing",
			mutate: func(v url.Values) { v.Set("age", "  ") },
			want:   map[analysis.Field]string{analysis.FieldAge: "age is required"},
		},
		{
			name:   "absent is missing",
			mutate: func(v url.Values) { v.Del("bl_crp") },
			want:   map[analysis.Field]string{analysis.FieldCRP: "bl_crp is required"},
		},
		{
			name:   "not a number",
			mutate: func(v url.Values) { v.Set("bmi", "heavy") },
			want:   map[analysis.Field]string{analysis.FieldBMI: "bmi must be a number"},
		},
		{
			name: "mixed problems",
			mutate: func(v url.Values) {
				v.Set("bmi", "abc")
				v.Set("PA", "3")
				v.Del("smoke")
			},
			want: map[analysis.Field]string{
				analysis.FieldBMI:   "bmi must be a number",
				analysis.FieldPA:    "PA must be one of 0, 1, 2",
				analysis.FieldSmoke: "smoke is required",
			},
		},
		{
			name:   "out of range",
			mutate: func(v url.Values) { v.Set("age", "39") },
			want:   map[analysis.Field]string{analysis.FieldAge: "age must be between 40 and 110"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := valid()
			tt.mutate(v)

			in := FormInputFromValues(v)
			_, err := in.Record()

			var verr *analysis.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.want, verr.Fields)
		})
	}
}

func TestFormInputFromValues_IgnoresUnknown(t *testing.T) {
	in := FormInputFromValues(url.Values{"age": {" 55 "}, "weight": {"70"}})

	assert.Equal(t, FormInput{analysis.FieldAge: "55"}, in)
}
