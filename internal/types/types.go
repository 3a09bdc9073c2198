package types

import (
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/analysis"
)

// AssessmentRequest is the JSON body of POST /api/v1/assessments.
// Pointers distinguish a missing field from a zero value.
type AssessmentRequest struct {
	Age           *float64 `json:"age" example:"67"`
	Gender        *float64 `json:"gender" example:"1"`
	BMI           *float64 `json:"bmi" example:"27.3"`
	Smoke         *float64 `json:"smoke" example:"0"`
	FTSST         *float64 `json:"FTSST" example:"1"`
	ADL           *float64 `json:"ADL" example:"0"`
	PA            *float64 `json:"PA" example:"1"`
	Complications *float64 `json:"Complications" example:"1"`
	Fall          *float64 `json:"fall" example:"0"`
	CRP           *float64 `json:"bl_crp" example:"4.2"`
	HGB           *float64 `json:"bl_hgb" example:"131"`
}

// Values returns the fields that were present in the request.
func (r AssessmentRequest) Values() map[analysis.Field]float64 {
	out := make(map[analysis.Field]float64, 11)
	for f, v := range map[analysis.Field]*float64{
		analysis.FieldAge:           r.Age,
		analysis.FieldGender:        r.Gender,
		analysis.FieldBMI:           r.BMI,
		analysis.FieldSmoke:         r.Smoke,
		analysis.FieldFTSST:         r.FTSST,
		analysis.FieldADL:           r.ADL,
		analysis.FieldPA:            r.PA,
		analysis.FieldComplications: r.Complications,
		analysis.FieldFall:          r.Fall,
		analysis.FieldCRP:           r.CRP,
		analysis.FieldHGB:           r.HGB,
	} {
		if v != nil {
			out[f] = *v
		}
	}
	return out
}

// Record validates the request into a PatientRecord.
func (r AssessmentRequest) Record() (analysis.PatientRecord, error) {
	return analysis.NewPatientRecord(r.Values())
}

// AssessmentResponse is the JSON rendition of one assessment.
type AssessmentResponse struct {
	ID            string                      `json:"id"`
	Probability   float64                     `json:"probability" example:"0.8042"`
	Headline      string                      `json:"headline" example:"80.4%"`
	Tier          analysis.Tier               `json:"tier" example:"high"`
	Guidance      analysis.Guidance           `json:"guidance"`
	Base          float64                     `json:"base" example:"0.35"`
	Raw           float64                     `json:"raw"`
	Contributions analysis.ContributionVector `json:"contributions"`
	Record        analysis.PatientRecord      `json:"record"`
	CreatedAt     time.Time                   `json:"created_at"`
}

// NewAssessmentResponse renders assessment a for the API.
func NewAssessmentResponse(id string, a analysis.Assessment, now time.Time) AssessmentResponse {
	return AssessmentResponse{
		ID:            id,
		Probability:   a.Probability,
		Headline:      Headline(a.Probability),
		Tier:          a.Tier,
		Guidance:      analysis.GuidanceFor(a.Tier),
		Base:          a.Base,
		Raw:           a.Raw,
		Contributions: a.Contributions,
		Record:        a.Record,
		CreatedAt:     now.UTC(),
	}
}

// Headline formats a probability as a percentage with one decimal, e.g. "46.0%".
func Headline(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

// ModelField is one field of the model description.
type ModelField struct {
	analysis.FieldSpec
	Term analysis.Term `json:"term"`
}

// ModelResponse describes the coefficient table in canonical field order.
type ModelResponse struct {
	Base       float64             `json:"base" example:"0.35"`
	Floor      float64             `json:"floor" example:"0.01"`
	Ceiling    float64             `json:"ceiling" example:"0.99"`
	Thresholds analysis.Thresholds `json:"thresholds"`
	Fields     []ModelField        `json:"fields"`
}

// NewModelResponse describes m.
func NewModelResponse(m analysis.ModelConfig) ModelResponse {
	resp := ModelResponse{
		Base:       m.Base,
		Floor:      m.Floor,
		Ceiling:    m.Ceiling,
		Thresholds: m.Thresholds,
		Fields:     make([]ModelField, 0, len(m.Terms)),
	}
	for _, spec := range analysis.Specs() {
		resp.Fields = append(resp.Fields, ModelField{
			FieldSpec: spec,
			Term:      m.Terms[spec.Field],
		})
	}
	return resp
}

// FieldsResponse lists the input fields in form order.
type FieldsResponse struct {
	Fields []analysis.FieldSpec `json:"fields"`
}

// NewFieldsResponse lists every field definition in form order.
func NewFieldsResponse() FieldsResponse {
	order := analysis.FormOrder()
	resp := FieldsResponse{Fields: make([]analysis.FieldSpec, 0, len(order))}
	for _, f := range order {
		spec, _ := analysis.Spec(f)
		resp.Fields = append(resp.Fields, spec)
	}
	return resp
}

// ErrorResponse documents the JSON error body.
type ErrorResponse struct {
	Error      string            `json:"error" example:"invalid patient record"`
	Category   string            `json:"category" example:"validation"`
	Status     int               `json:"status" example:"400"`
	Timestamp  string            `json:"timestamp"`
	RequestID  string            `json:"request_id,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	RetryAfter int               `json:"retry_after,omitempty"`
}

// DependencyStatus is the health of one external dependency.
type DependencyStatus struct {
	Status    string  `json:"status" example:"healthy"`
	ErrorRate float64 `json:"error_rate"`
	Message   string  `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status       string                      `json:"status" example:"ok"`
	Version      string                      `json:"version" example:"1.0.0"`
	Timestamp    string                      `json:"timestamp"`
	Uptime       string                      `json:"uptime"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
	Metrics      map[string]interface{}      `json:"metrics"`
}
