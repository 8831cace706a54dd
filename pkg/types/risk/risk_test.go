package risk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/turtacn/sentinel-risk/pkg/types/risk"
)

func TestRiskLevel_Ordering(t *testing.T) {
	t.Parallel()
	levels := risk.Levels()
	for i := 1; i < len(levels); i++ {
		assert.True(t, levels[i].Above(levels[i-1]),
			"%s should rank above %s", levels[i], levels[i-1])
	}
}

func TestRiskLevel_IsHighPlus(t *testing.T) {
	t.Parallel()
	assert.False(t, risk.LevelLow.IsHighPlus())
	assert.False(t, risk.LevelModerate.IsHighPlus())
	assert.False(t, risk.LevelElevated.IsHighPlus())
	assert.True(t, risk.LevelHigh.IsHighPlus())
	assert.True(t, risk.LevelCritical.IsHighPlus())
}

func TestRiskLevel_UnknownRanksBelowLow(t *testing.T) {
	t.Parallel()
	unknown := risk.RiskLevel("SEVERE")
	assert.False(t, unknown.Valid())
	assert.Equal(t, 0, unknown.Rank())
	assert.True(t, risk.LevelLow.Above(unknown))
}

func TestRiskLevel_AtLeast(t *testing.T) {
	t.Parallel()
	assert.True(t, risk.LevelHigh.AtLeast(risk.LevelHigh))
	assert.True(t, risk.LevelCritical.AtLeast(risk.LevelHigh))
	assert.False(t, risk.LevelElevated.AtLeast(risk.LevelHigh))
}
