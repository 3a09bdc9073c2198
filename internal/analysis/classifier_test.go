package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		p        float64
		expected Tier
	}{
		{0.01, TierLow},
		{0.3, TierLow},
		{0.300001, TierMedium},
		{0.45, TierMedium},
		{0.5, TierMedium},
		{0.7, TierMedium},
		{0.700001, TierHigh},
		{0.99, TierHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Classify(tt.p), "p=%v", tt.p)
	}
}

func TestThresholds_CustomMedium(t *testing.T) {
	th := Thresholds{High: 0.7, Medium: 0.45}

	assert.Equal(t, TierLow, th.Classify(0.45))
	assert.Equal(t, TierMedium, th.Classify(0.450001))
	assert.Equal(t, TierMedium, th.Classify(0.7))
	assert.Equal(t, TierHigh, th.Classify(0.71))
}

func TestGuidanceFor(t *testing.T) {
	for _, tier := range []Tier{TierLow, TierMedium, TierHigh} {
		g := GuidanceFor(tier)
		assert.Equal(t, tier, g.Tier)
		assert.Len(t, g.Recommendations, 5)
		assert.NotEmpty(t, g.Headline)
	}

	// medium carries the same warning marker as high
	assert.True(t, GuidanceFor(TierHigh).Urgent)
	assert.True(t, GuidanceFor(TierMedium).Urgent)
	assert.False(t, GuidanceFor(TierLow).Urgent)
	assert.Equal(t, "Assess every 3-6 months", GuidanceFor(TierMedium).Recommendations[0])
	assert.Equal(t, "Weekly follow-up monitoring", GuidanceFor(TierHigh).Recommendations[0])
	assert.Equal(t, TierLow, GuidanceFor(Tier("unknown")).Tier)
}

func TestGuidanceFor_ReturnsCopy(t *testing.T) {
	g := GuidanceFor(TierMedium)
	g.Recommendations[0] = "changed"

	assert.Equal(t, "Assess every 3-6 months", GuidanceFor(TierMedium).Recommendations[0])
}
