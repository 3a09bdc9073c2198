package analysis

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// TermKind selects the shape of a coefficient term.
type TermKind string

const (
	// TermLinear contributes scale * x / denominator.
	TermLinear TermKind = "linear"
	// TermReversed contributes scale * (reference - x) / denominator.
	TermReversed TermKind = "reversed"
	// TermConstant contributes scale regardless of x.
	TermConstant TermKind = "constant"
)

// Term is the coefficient entry for one field.
type Term struct {
	Kind        TermKind `yaml:"kind" json:"kind"`
	Scale       float64  `yaml:"scale" json:"scale"`
	Reference   float64  `yaml:"reference,omitempty" json:"reference,omitempty"`
	Denominator float64  `yaml:"denominator,omitempty" json:"denominator,omitempty"`
}

// Contribution evaluates the term for raw value x.
func (t Term) Contribution(x float64) float64 {
	d := t.Denominator
	if d == 0 {
		d = 1
	}
	switch t.Kind {
	case TermReversed:
		return t.Scale * (t.Reference - x) / d
	case TermConstant:
		return t.Scale
	default:
		return t.Scale * x / d
	}
}

// Thresholds split probabilities into tiers. Both comparisons are strict.
type Thresholds struct {
	High   float64 `yaml:"high" json:"high"`
	Medium float64 `yaml:"medium" json:"medium"`
}

// ModelConfig is the coefficient table behind the scorer.
type ModelConfig struct {
	Base       float64        `yaml:"base" json:"base"`
	Floor      float64        `yaml:"floor" json:"floor"`
	Ceiling    float64        `yaml:"ceiling" json:"ceiling"`
	Thresholds Thresholds     `yaml:"thresholds" json:"thresholds"`
	Terms      map[Field]Term `yaml:"terms" json:"terms"`
}

// DefaultModelConfig returns the fixed frailty coefficients.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Base:    0.35,
		Floor:   0.01,
		Ceiling: 0.99,
		Thresholds: Thresholds{
			High:   0.7,
			Medium: 0.3,
		},
		Terms: map[Field]Term{
			FieldAge:           {Kind: TermLinear, Scale: 0.08, Denominator: 71},
			FieldFTSST:         {Kind: TermLinear, Scale: 0.06},
			FieldBMI:           {Kind: TermLinear, Scale: 0.05, Denominator: 26},
			FieldComplications: {Kind: TermLinear, Scale: 0.04},
			FieldFall:          {Kind: TermLinear, Scale: 0.03},
			FieldADL:           {Kind: TermLinear, Scale: 0.02},
			FieldCRP:           {Kind: TermLinear, Scale: 0.01, Denominator: 9},
			FieldGender:        {Kind: TermLinear, Scale: 0.04},
			FieldPA:            {Kind: TermReversed, Scale: -0.02, Reference: 2},
			FieldSmoke:         {Kind: TermReversed, Scale: -0.03, Reference: 1},
			// HGB is not normalised against a reference; it contributes a flat -0.01.
			FieldHGB: {Kind: TermConstant, Scale: -0.01},
		},
	}
}

// Validate checks that the table covers every field with a usable term.
func (m ModelConfig) Validate() error {
	if !(m.Floor < m.Ceiling) {
		return fmt.Errorf("model floor %v must be below ceiling %v", m.Floor, m.Ceiling)
	}
	if m.Floor < 0 || m.Ceiling > 1 {
		return fmt.Errorf("model clamp [%v, %v] must lie within [0, 1]", m.Floor, m.Ceiling)
	}
	if !(m.Thresholds.Medium < m.Thresholds.High) {
		return fmt.Errorf("medium threshold %v must be below high threshold %v", m.Thresholds.Medium, m.Thresholds.High)
	}
	for f := range m.Terms {
		if !f.Valid() {
			return fmt.Errorf("unknown field %q in model terms", f)
		}
	}
	for _, f := range fieldOrder {
		t, ok := m.Terms[f]
		if !ok {
			return fmt.Errorf("model has no term for field %q", f)
		}
		switch t.Kind {
		case TermLinear, TermReversed, TermConstant:
		default:
			return fmt.Errorf("field %q has unknown term kind %q", f, t.Kind)
		}
		if t.Denominator < 0 {
			return fmt.Errorf("field %q has negative denominator %v", f, t.Denominator)
		}
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate a scorer's table.
func (m ModelConfig) Clone() ModelConfig {
	out := m
	out.Terms = make(map[Field]Term, len(m.Terms))
	for f, t := range m.Terms {
		out.Terms[f] = t
	}
	return out
}

// LoadModelConfig reads a YAML coefficient file on top of the defaults.
// Entries under terms replace the default term for that field as a whole.
func LoadModelConfig(path string) (ModelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ModelConfig{}, fmt.Errorf("failed to read model config: %w", err)
	}
	return ParseModelConfig(data)
}

// ParseModelConfig decodes YAML model overrides and validates the result.
func ParseModelConfig(data []byte) (ModelConfig, error) {
	cfg := DefaultModelConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return ModelConfig{}, fmt.Errorf("failed to decode model config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return ModelConfig{}, err
	}
	return cfg, nil
}
