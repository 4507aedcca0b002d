package engine

import (
	"github.com/coreman2200/dsglow/internal/envelope"
	"github.com/coreman2200/dsglow/internal/modulator"
)

// LoopSpeed sets the envelope rate: generators advance once every
// 2^LoopSpeed bit ticks.
const LoopSpeed = 6

// EnvelopeEvery is the bit-tick divider derived from LoopSpeed.
const EnvelopeEvery = 1 << LoopSpeed

// Per-group full-scale resolutions. Channels 0-2 and 3-5 drive the two RGB
// LEDs, 6-7 and 8-9 the two RG LEDs.
const (
	resRGB1 = 200
	resRGB2 = 200
	resRG1  = 100
	resRG2  = 150
)

// Channel indices, grouped per LED.
const (
	ChRGB1Red = iota
	ChRGB1Green
	ChRGB1Blue
	ChRGB2Red
	ChRGB2Green
	ChRGB2Blue
	ChRG1Red
	ChRG1Green
	ChRG2Red
	ChRG2Green
)

// resolutions is the per-channel full-scale table handed to the bank.
var resolutions = [modulator.NumChannels]uint16{
	resRGB1, resRGB1, resRGB1,
	resRGB2, resRGB2, resRGB2,
	resRG1, resRG1,
	resRG2, resRG2,
}

// initialRequests is the bringup request vector: RGB1 starts on red, RGB2 on
// cyan, RG1 dark, RG2 on both.
var initialRequests = modulator.Requests{
	ChRGB1Red: resRGB1,

	ChRGB2Green: resRGB2,
	ChRGB2Blue:  resRGB2,

	ChRG2Red:   resRG2,
	ChRG2Green: resRG2,
}

// rgbLegs builds the six-leg colour wheel for an RGB LED whose channels
// start at base: green up, red down, blue up, green down, red up, blue down.
func rgbLegs(base int) []envelope.Leg {
	return []envelope.Leg{
		{Channel: base + 1, Dir: envelope.Up},
		{Channel: base + 0, Dir: envelope.Down},
		{Channel: base + 2, Dir: envelope.Up},
		{Channel: base + 1, Dir: envelope.Down},
		{Channel: base + 0, Dir: envelope.Up},
		{Channel: base + 2, Dir: envelope.Down},
	}
}

// rgLegs builds the four-leg cycle for an RG LED whose channels start at
// base: green up, red up, green down, red down.
func rgLegs(base int) []envelope.Leg {
	return []envelope.Leg{
		{Channel: base + 1, Dir: envelope.Up},
		{Channel: base + 0, Dir: envelope.Up},
		{Channel: base + 1, Dir: envelope.Down},
		{Channel: base + 0, Dir: envelope.Down},
	}
}

// newGenerators instantiates the four colour-cycle generators. Each has its
// own step count, amplitude and start phase, so the LEDs drift at different
// speeds and never run in lockstep.
func newGenerators() ([]*envelope.Generator, error) {
	specs := []struct {
		name        string
		legs        []envelope.Leg
		stepsPerLeg int
		delta       uint16
		resolution  uint16
		startPhase  int
	}{
		{"rgb1", rgbLegs(ChRGB1Red), 100, 2, resRGB1, 0},
		{"rgb2", rgbLegs(ChRGB2Red), 100, 2, resRGB2, 3 * 100},
		{"rg1", rgLegs(ChRG1Red), 50, 2, resRG1, 0},
		{"rg2", rgLegs(ChRG2Red), 150, 1, resRG2, 2 * 150},
	}

	gens := make([]*envelope.Generator, 0, len(specs))
	for _, s := range specs {
		g, err := envelope.New(s.name, s.legs, s.stepsPerLeg, s.delta, s.resolution, s.startPhase)
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}
	return gens, nil
}
