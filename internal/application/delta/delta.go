// Package delta tracks the prior observations the dashboard diffs against.
//
// Two independent stores exist on purpose.  CyclePrior advances once per
// refresh cycle and feeds the summary deltas; RequestPrior advances on every
// rich-KPI request and feeds per-country change detection and escalation
// alerts.  They answer different questions ("since the last cycle" vs "since
// you last looked") and are never merged or cross-read.
//
// Both stores follow the same discipline: deltas are computed against the
// stored prior before the prior is overwritten, and the first observation
// reports zero deltas.
package delta

import (
	"sync"

	"github.com/turtacn/sentinel-risk/pkg/types/risk"
)

// CyclePrior remembers the previous refresh cycle's headline numbers.
type CyclePrior struct {
	mu       sync.Mutex
	hasPrior bool
	gti      int
	highPlus int
}

// NewCyclePrior returns an empty store.
func NewCyclePrior() *CyclePrior {
	return &CyclePrior{}
}

// Observe diffs the current cycle against the stored prior, then overwrites
// the prior.  The first observation reports zero deltas.
func (p *CyclePrior) Observe(gti, highPlus int) (gtiDelta, highPlusDelta int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.hasPrior {
		gtiDelta = gti - p.gti
		highPlusDelta = highPlus - p.highPlus
	}
	p.gti = gti
	p.highPlus = highPlus
	p.hasPrior = true
	return gtiDelta, highPlusDelta
}

// CountryState is the per-country slice of state RequestPrior remembers.
type CountryState struct {
	Score int
	Level risk.RiskLevel
}

// RequestObservation is what RequestPrior reports for one rich-KPI request.
type RequestObservation struct {
	// First is true when no prior existed; all deltas are zero and no
	// prior-dependent alerts should be derived.
	First bool

	// GTIDelta is current GTI minus prior GTI.
	GTIDelta int

	// Countries is the prior per-country state, for change detection.  A
	// country absent from the map had no prior observation.
	Countries map[string]CountryState
}

// RequestPrior remembers the per-country state as of the last rich-KPI
// request.
type RequestPrior struct {
	mu        sync.Mutex
	hasPrior  bool
	gti       int
	countries map[string]CountryState
}

// NewRequestPrior returns an empty store.
func NewRequestPrior() *RequestPrior {
	return &RequestPrior{}
}

// Observe diffs the current state against the stored prior, then overwrites
// the prior with a private copy of current.
func (p *RequestPrior) Observe(gti int, current map[string]CountryState) RequestObservation {
	p.mu.Lock()
	defer p.mu.Unlock()

	obs := RequestObservation{First: !p.hasPrior}
	if p.hasPrior {
		obs.GTIDelta = gti - p.gti
		obs.Countries = p.countries
	}

	next := make(map[string]CountryState, len(current))
	for code, st := range current {
		next[code] = st
	}
	p.gti = gti
	p.countries = next
	p.hasPrior = true
	return obs
}
