package analysis

// Scorer evaluates the frailty model over a validated PatientRecord.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	model ModelConfig
}

// NewScorer creates a scorer over a copy of model.
func NewScorer(model ModelConfig) *Scorer {
	return &Scorer{model: model.Clone()}
}

var defaultScorer = NewScorer(DefaultModelConfig())

// Model returns a copy of the coefficient table in use.
func (s *Scorer) Model() ModelConfig {
	return s.model.Clone()
}

// Score returns the base value, the per-field contributions in canonical order
// and the clamped probability. Inputs are expected to be within domain.
func (s *Scorer) Score(r PatientRecord) (float64, ContributionVector, float64) {
	base, contribs, raw := s.decompose(r)
	return base, contribs, clip(raw, s.model.Floor, s.model.Ceiling)
}

// Classify maps a probability to its tier.
func (s *Scorer) Classify(p float64) Tier {
	return s.model.Thresholds.Classify(p)
}

// Assess scores and classifies r in one pass.
func (s *Scorer) Assess(r PatientRecord) Assessment {
	base, contribs, raw := s.decompose(r)
	p := clip(raw, s.model.Floor, s.model.Ceiling)
	return Assessment{
		Record:        r,
		Base:          base,
		Contributions: contribs,
		Raw:           raw,
		Probability:   p,
		Tier:          s.Classify(p),
	}
}

func (s *Scorer) decompose(r PatientRecord) (float64, ContributionVector, float64) {
	contribs := make(ContributionVector, 0, len(fieldOrder))
	raw := s.model.Base
	for _, f := range fieldOrder {
		x := r.Value(f)
		v := s.model.Terms[f].Contribution(x)
		contribs = append(contribs, Contribution{
			Field:        f,
			Label:        f.Label(),
			Value:        x,
			Contribution: v,
		})
		raw += v
	}
	return s.model.Base, contribs, raw
}

// Score evaluates r with the default coefficients.
func Score(r PatientRecord) (float64, ContributionVector, float64) {
	return defaultScorer.Score(r)
}

// Classify maps p to a tier with the default thresholds.
func Classify(p float64) Tier {
	return defaultScorer.Classify(p)
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
