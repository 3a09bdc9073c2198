package analysis

// PatientRecord holds the eleven clinical inputs of one assessment.
// It is passed by value and never mutated after validation.
type PatientRecord struct {
	Age           int     `json:"age" validate:"min=40,max=110"`
	Gender        int     `json:"gender" validate:"oneof=0 1"`
	BMI           float64 `json:"bmi" validate:"min=15,max=40"`
	Smoke         int     `json:"smoke" validate:"oneof=0 1"`
	FTSST         int     `json:"FTSST" validate:"oneof=0 1"`
	ADL           int     `json:"ADL" validate:"oneof=0 1"`
	PA            int     `json:"PA" validate:"oneof=0 1 2"`
	Complications int     `json:"Complications" validate:"oneof=0 1 2"`
	Fall          int     `json:"fall" validate:"oneof=0 1"`
	CRP           float64 `json:"bl_crp" validate:"min=0,max=30"`
	HGB           float64 `json:"bl_hgb" validate:"min=50,max=250"`
}

// DefaultRecord returns the record the input form starts from.
func DefaultRecord() PatientRecord {
	return PatientRecord{
		Age: 40,
		BMI: 18.5,
		HGB: 120,
	}
}

// Value returns the raw value of f as a float64.
func (r PatientRecord) Value(f Field) float64 {
	switch f {
	case FieldAge:
		return float64(r.Age)
	case FieldGender:
		return float64(r.Gender)
	case FieldBMI:
		return r.BMI
	case FieldSmoke:
		return float64(r.Smoke)
	case FieldFTSST:
		return float64(r.FTSST)
	case FieldADL:
		return float64(r.ADL)
	case FieldPA:
		return float64(r.PA)
	case FieldComplications:
		return float64(r.Complications)
	case FieldFall:
		return float64(r.Fall)
	case FieldCRP:
		return r.CRP
	case FieldHGB:
		return r.HGB
	}
	return 0
}

// Contribution is the signed share one field adds to the base value.
type Contribution struct {
	Field        Field   `json:"field"`
	Label        string  `json:"label"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
}

// ContributionVector lists contributions in canonical field order.
type ContributionVector []Contribution

// Sum adds up the contributions in order.
func (v ContributionVector) Sum() float64 {
	s := 0.0
	for _, c := range v {
		s += c.Contribution
	}
	return s
}

// Get returns the contribution of f.
func (v ContributionVector) Get(f Field) (float64, bool) {
	for _, c := range v {
		if c.Field == f {
			return c.Contribution, true
		}
	}
	return 0, false
}

// Assessment is the full scoring outcome of one record.
type Assessment struct {
	Record        PatientRecord      `json:"record"`
	Base          float64            `json:"base"`
	Contributions ContributionVector `json:"contributions"`
	Raw           float64            `json:"raw"`
	Probability   float64            `json:"probability"`
	Tier          Tier               `json:"tier"`
}
