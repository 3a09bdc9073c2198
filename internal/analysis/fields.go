package analysis

import (
	"fmt"
	"strconv"
	"strings"
)

// Field identifies one clinical input of a PatientRecord.
type Field string

const (
	FieldFTSST         Field = "FTSST"
	FieldComplications Field = "Complications"
	FieldFall          Field = "fall"
	FieldCRP           Field = "bl_crp"
	FieldPA            Field = "PA"
	FieldHGB           Field = "bl_hgb"
	FieldSmoke         Field = "smoke"
	FieldGender        Field = "gender"
	FieldAge           Field = "age"
	FieldBMI           Field = "bmi"
	FieldADL           Field = "ADL"
)

// fieldOrder is the canonical order used for contributions and the attribution chart.
var fieldOrder = [...]Field{
	FieldFTSST,
	FieldComplications,
	FieldFall,
	FieldCRP,
	FieldPA,
	FieldHGB,
	FieldSmoke,
	FieldGender,
	FieldAge,
	FieldBMI,
	FieldADL,
}

// formOrder is the order fields are asked for on the assessment form.
var formOrder = [...]Field{
	FieldAge,
	FieldGender,
	FieldBMI,
	FieldSmoke,
	FieldFTSST,
	FieldADL,
	FieldPA,
	FieldComplications,
	FieldFall,
	FieldCRP,
	FieldHGB,
}

// FieldOrder returns the canonical field order shared by scoring and rendering.
func FieldOrder() []Field {
	out := make([]Field, len(fieldOrder))
	copy(out, fieldOrder[:])
	return out
}

// FormOrder returns the order in which the input form lists the fields.
func FormOrder() []Field {
	out := make([]Field, len(formOrder))
	copy(out, formOrder[:])
	return out
}

// FieldKind describes how a field's raw value is encoded.
type FieldKind string

const (
	KindInteger     FieldKind = "integer"
	KindFloat       FieldKind = "float"
	KindCategorical FieldKind = "categorical"
)

// Option is one allowed value of a categorical field.
type Option struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// FieldSpec is the static definition of a field: its domain, labels and form default.
type FieldSpec struct {
	Field   Field     `json:"field"`
	Label   string    `json:"label"`
	Prompt  string    `json:"prompt"`
	Kind    FieldKind `json:"kind"`
	Unit    string    `json:"unit,omitempty"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Step    float64   `json:"step"`
	Default float64   `json:"default"`
	Options []Option  `json:"options,omitempty"`
}

var fieldSpecs = map[Field]FieldSpec{
	FieldAge: {
		Field: FieldAge, Label: "Age", Prompt: "Age", Kind: KindInteger,
		Min: 40, Max: 110, Step: 1, Default: 40,
	},
	FieldGender: {
		Field: FieldGender, Label: "Gender", Prompt: "Gender", Kind: KindCategorical,
		Max: 1, Step: 1,
		Options: []Option{{0, "Male"}, {1, "Female"}},
	},
	FieldBMI: {
		Field: FieldBMI, Label: "BMI", Prompt: "BMI", Kind: KindFloat, Unit: "kg/m²",
		Min: 15, Max: 40, Step: 0.1, Default: 18.5,
	},
	FieldSmoke: {
		Field: FieldSmoke, Label: "Smoke", Prompt: "Smoke", Kind: KindCategorical,
		Max: 1, Step: 1,
		Options: []Option{{0, "No"}, {1, "Yes"}},
	},
	FieldFTSST: {
		Field: FieldFTSST, Label: "FTSST", Prompt: "FTSST (5 Times Sit-to-Stand Test)", Kind: KindCategorical,
		Max: 1, Step: 1,
		Options: []Option{{0, "≤12s"}, {1, ">12s"}},
	},
	FieldADL: {
		Field: FieldADL, Label: "ADL", Prompt: "ADL (Activities of Daily Living)", Kind: KindCategorical,
		Max: 1, Step: 1,
		Options: []Option{{0, "Unrestricted"}, {1, "Restricted"}},
	},
	FieldPA: {
		Field: FieldPA, Label: "PA", Prompt: "Physical Activity Level", Kind: KindCategorical,
		Max: 2, Step: 1,
		Options: []Option{{0, "High"}, {1, "Medium"}, {2, "Low"}},
	},
	FieldComplications: {
		Field: FieldComplications, Label: "Complications", Prompt: "Number of Complications", Kind: KindCategorical,
		Max: 2, Step: 1,
		Options: []Option{{0, "No"}, {1, "One"}, {2, "≥2"}},
	},
	FieldFall: {
		Field: FieldFall, Label: "History of falls", Prompt: "History of falls", Kind: KindCategorical,
		Max: 1, Step: 1,
		Options: []Option{{0, "No"}, {1, "Yes"}},
	},
	FieldCRP: {
		Field: FieldCRP, Label: "CRP", Prompt: "C-reactive protein, CRP (mg/L)", Kind: KindFloat, Unit: "mg/L",
		Min: 0, Max: 30, Step: 0.1, Default: 0,
	},
	FieldHGB: {
		Field: FieldHGB, Label: "HGB", Prompt: "Hemoglobin, HGB (g/L)", Kind: KindFloat, Unit: "g/L",
		Min: 50, Max: 250, Step: 1, Default: 120,
	},
}

// Spec returns the definition of f. Unknown fields yield a zero FieldSpec and false.
func Spec(f Field) (FieldSpec, bool) {
	s, ok := fieldSpecs[f]
	if !ok {
		return FieldSpec{}, false
	}
	s.Options = append([]Option(nil), s.Options...)
	return s, true
}

// Specs returns every field definition in canonical order.
func Specs() []FieldSpec {
	out := make([]FieldSpec, 0, len(fieldOrder))
	for _, f := range fieldOrder {
		s, _ := Spec(f)
		out = append(out, s)
	}
	return out
}

// Label returns the display name used on the chart.
func (f Field) Label() string {
	if s, ok := fieldSpecs[f]; ok {
		return s.Label
	}
	return string(f)
}

// Valid reports whether f is one of the eleven known fields.
func (f Field) Valid() bool {
	_, ok := fieldSpecs[f]
	return ok
}

// FormatValue renders a raw value the way it is shown next to the field label.
func (s FieldSpec) FormatValue(v float64) string {
	if s.Kind != KindFloat {
		return strconv.FormatInt(int64(v), 10)
	}
	out := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(out, ".eE") {
		out += ".0"
	}
	return out
}

// OptionLabel returns the human label of a categorical value, or the formatted value.
func (s FieldSpec) OptionLabel(v int) string {
	for _, o := range s.Options {
		if o.Value == v {
			return o.Label
		}
	}
	return strconv.Itoa(v)
}

// DomainMessage describes the accepted values of the field.
func (s FieldSpec) DomainMessage() string {
	if s.Kind == KindCategorical {
		values := make([]string, len(s.Options))
		for i, o := range s.Options {
			values[i] = strconv.Itoa(o.Value)
		}
		return fmt.Sprintf("%s must be one of %s", s.Field, strings.Join(values, ", "))
	}
	msg := fmt.Sprintf("%s must be between %s and %s", s.Field, s.FormatValue(s.Min), s.FormatValue(s.Max))
	if s.Unit != "" {
		msg += " " + s.Unit
	}
	return msg
}
