// Package envelope implements the slow colour-cycle state machines that
// retarget the modulator request vector.
//
// Each generator walks a fixed schedule of legs. A leg names one channel and
// a direction; while the generator's phase is inside that leg it moves the
// channel's request by delta once per envelope tick. Over a full cycle every
// touched channel is raised and lowered by the same total, so the cycle is
// closed and requests stay inside [0, resolution] by construction.
package envelope

import "fmt"

// Dir is a leg direction.
type Dir int8

const (
	Up   Dir = 1
	Down Dir = -1
)

// Leg is one segment of a generator's cycle: the request channel it moves
// and the direction it moves it in.
type Leg struct {
	Channel int
	Dir     Dir
}

// Generator is an explicit envelope state record. The zero value is not
// usable; construct with New.
type Generator struct {
	name        string
	legs        []Leg
	stepsPerLeg int
	delta       uint16
	phase       int
}

// New validates the parameter set and returns a generator positioned at
// startPhase.
//
// The closure condition delta*stepsPerLeg == resolution ties the envelope
// step size to the modulator resolution of the channels the legs touch; if
// it does not hold the requests would drift out of range over a cycle, so
// it is rejected here rather than checked at runtime.
func New(name string, legs []Leg, stepsPerLeg int, delta uint16, resolution uint16, startPhase int) (*Generator, error) {
	if len(legs) == 0 {
		return nil, fmt.Errorf("envelope %s: no legs", name)
	}
	if stepsPerLeg <= 0 {
		return nil, fmt.Errorf("envelope %s: stepsPerLeg must be positive, got %d", name, stepsPerLeg)
	}
	if uint32(delta)*uint32(stepsPerLeg) != uint32(resolution) {
		return nil, fmt.Errorf("envelope %s: delta %d x steps %d != resolution %d",
			name, delta, stepsPerLeg, resolution)
	}
	period := len(legs) * stepsPerLeg
	if startPhase < 0 || startPhase >= period {
		return nil, fmt.Errorf("envelope %s: start phase %d outside [0,%d)", name, startPhase, period)
	}
	return &Generator{
		name:        name,
		legs:        legs,
		stepsPerLeg: stepsPerLeg,
		delta:       delta,
		phase:       startPhase,
	}, nil
}

// Name returns the generator's label (used by the monitor).
func (g *Generator) Name() string { return g.name }

// Phase returns the current position within the cycle, in [0, Period).
func (g *Generator) Phase() int { return g.phase }

// Period returns the cycle length in envelope ticks.
func (g *Generator) Period() int { return len(g.legs) * g.stepsPerLeg }

// Step applies one envelope tick: the current leg's delta is added to or
// subtracted from its channel in req, then the phase advances by one,
// wrapping at the period.
func (g *Generator) Step(req []uint16) {
	leg := g.legs[g.phase/g.stepsPerLeg]
	if leg.Dir == Up {
		req[leg.Channel] += g.delta
	} else {
		req[leg.Channel] -= g.delta
	}
	g.phase++
	if g.phase >= g.Period() {
		g.phase = 0
	}
}
