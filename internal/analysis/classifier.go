package analysis

// Tier is the qualitative frailty risk category.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Classify returns high when p > High, medium when p > Medium, low otherwise.
func (t Thresholds) Classify(p float64) Tier {
	switch {
	case p > t.High:
		return TierHigh
	case p > t.Medium:
		return TierMedium
	default:
		return TierLow
	}
}

// Guidance is the fixed recommendation block shown for a tier.
type Guidance struct {
	Tier            Tier     `json:"tier"`
	Urgent          bool     `json:"urgent"`
	Headline        string   `json:"headline"`
	Recommendations []string `json:"recommendations"`
}

var guidance = map[Tier]Guidance{
	TierHigh: {
		Tier:     TierHigh,
		Urgent:   true,
		Headline: "High risk: immediate clinical intervention recommended",
		Recommendations: []string{
			"Weekly follow-up monitoring",
			"Physical therapy intervention is necessary",
			"Comprehensive assessment of complications",
			"Multidisciplinary team management",
			"Emergency nutritional support",
		},
	},
	TierMedium: {
		Tier:     TierMedium,
		Urgent:   true,
		Headline: "Medium risk: It is recommended to regularly monitor",
		Recommendations: []string{
			"Assess every 3-6 months",
			"Suggest moderate exercise plan",
			"Basic Nutritional Assessment",
			"Fall prevention education",
			"Regular functional assessment",
		},
	},
	TierLow: {
		Tier:     TierLow,
		Headline: "Low risk: Recommended for routine health management",
		Recommendations: []string{
			"Annual physical examination",
			"Maintain a healthy lifestyle",
			"Preventive Health Guidance",
			"Moderate physical activity",
			"Balanced nutritional intake",
		},
	},
}

// GuidanceFor returns the recommendation block of t. Unknown tiers get the low block.
func GuidanceFor(t Tier) Guidance {
	g, ok := guidance[t]
	if !ok {
		g = guidance[TierLow]
	}
	g.Recommendations = append([]string(nil), g.Recommendations...)
	return g
}
