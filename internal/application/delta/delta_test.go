package delta

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/sentinel-risk/pkg/types/risk"
)

func TestCyclePrior_FirstObservationReportsZero(t *testing.T) {
	t.Parallel()

	p := NewCyclePrior()
	gtiDelta, highDelta := p.Observe(42, 3)
	assert.Zero(t, gtiDelta)
	assert.Zero(t, highDelta)
}

func TestCyclePrior_ComputesBeforeOverwriting(t *testing.T) {
	t.Parallel()

	p := NewCyclePrior()
	p.Observe(42, 3)

	gtiDelta, highDelta := p.Observe(47, 2)
	assert.Equal(t, 5, gtiDelta)
	assert.Equal(t, -1, highDelta)

	gtiDelta, highDelta = p.Observe(47, 2)
	assert.Zero(t, gtiDelta)
	assert.Zero(t, highDelta)
}

func TestRequestPrior_FirstObservationIsFlagged(t *testing.T) {
	t.Parallel()

	p := NewRequestPrior()
	obs := p.Observe(40, map[string]CountryState{"UA": {Score: 80, Level: risk.LevelHigh}})
	assert.True(t, obs.First)
	assert.Zero(t, obs.GTIDelta)
	assert.Nil(t, obs.Countries)
}

func TestRequestPrior_ReturnsPriorStateThenAdvances(t *testing.T) {
	t.Parallel()

	p := NewRequestPrior()
	p.Observe(40, map[string]CountryState{
		"UA": {Score: 80, Level: risk.LevelHigh},
		"IQ": {Score: 50, Level: risk.LevelElevated},
	})

	obs := p.Observe(45, map[string]CountryState{
		"UA": {Score: 92, Level: risk.LevelCritical},
		"IQ": {Score: 50, Level: risk.LevelElevated},
	})
	assert.False(t, obs.First)
	assert.Equal(t, 5, obs.GTIDelta)
	assert.Equal(t, CountryState{Score: 80, Level: risk.LevelHigh}, obs.Countries["UA"])

	// The prior now holds the second observation.
	obs = p.Observe(45, map[string]CountryState{
		"UA": {Score: 92, Level: risk.LevelCritical},
	})
	assert.Equal(t, CountryState{Score: 92, Level: risk.LevelCritical}, obs.Countries["UA"])
	assert.Zero(t, obs.GTIDelta)
}

func TestRequestPrior_CopiesCallerMap(t *testing.T) {
	t.Parallel()

	p := NewRequestPrior()
	current := map[string]CountryState{"UA": {Score: 80, Level: risk.LevelHigh}}
	p.Observe(40, current)

	// Mutating the caller's map must not leak into the stored prior.
	current["UA"] = CountryState{Score: 1, Level: risk.LevelLow}

	obs := p.Observe(40, map[string]CountryState{})
	assert.Equal(t, CountryState{Score: 80, Level: risk.LevelHigh}, obs.Countries["UA"])
}

func TestPriors_AreIndependent(t *testing.T) {
	t.Parallel()

	cycle := NewCyclePrior()
	request := NewRequestPrior()

	cycle.Observe(40, 2)
	cycle.Observe(50, 2)

	// The request prior has seen nothing; its first observation still
	// reports zero regardless of cycle history.
	obs := request.Observe(50, map[string]CountryState{})
	assert.True(t, obs.First)
	assert.Zero(t, obs.GTIDelta)
}
