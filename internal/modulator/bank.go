// Package modulator implements a bank of first-order delta-sigma modulators.
//
// Each channel turns a request level (0..resolution) into a single-bit
// stream: the integrator wraps past the resolution once every
// resolution/request ticks on average, and the emitted bit marks whether the
// wrap happened. Compared to PWM the switching frequency is higher and the
// output spectrum is more spread, which is what makes ten software channels
// on one timer viable.
package modulator

import "fmt"

// NumChannels is the width of the bank and of the packed output word.
const NumChannels = 10

// Requests is the bank's input vector: the target intensity per channel.
// Values are owned by the envelope generators and read by the bank.
type Requests [NumChannels]uint16

// Bank holds the per-channel full-scale resolutions and integrators.
// The integrators are owned exclusively by the bank; between steps
// 0 <= integrator[c] < resolution[c] always holds.
type Bank struct {
	res [NumChannels]uint16
	sum [NumChannels]uint16
}

// NewBank returns a bank with all integrators at zero. Every resolution
// must be non-zero; a zero resolution would make the channel's duty cycle
// undefined.
func NewBank(res [NumChannels]uint16) (*Bank, error) {
	for c, r := range res {
		if r == 0 {
			return nil, fmt.Errorf("modulator: channel %d has zero resolution", c)
		}
	}
	return &Bank{res: res}, nil
}

// Resolution returns channel c's full-scale denominator.
func (b *Bank) Resolution(c int) uint16 { return b.res[c] }

// Integrator returns channel c's accumulator value.
func (b *Bank) Integrator(c int) uint16 { return b.sum[c] }

// Reset zeroes every integrator, restoring bringup state.
func (b *Bank) Reset() {
	b.sum = [NumChannels]uint16{}
}

// Step advances every modulator by one bit clock and returns the packed
// output word; bit k of the word is channel k's output for this tick.
// Channel 9 is packed first so channel 0 lands in the LSB.
//
// Per channel the update is the "synthetic division" form of a first-order
// delta-sigma modulator:
//
//	sum += req
//	sum <  res: emit 1
//	sum >= res: emit 0, sum -= res
//
// Since req <= res, the post-add value is < 2*res and one subtraction is
// enough to restore sum < res. The comparison is strict, so a full-scale
// request started from sum=0 emits a single 1 followed by zeros.
func (b *Bank) Step(req *Requests) uint16 {
	var bits uint16
	for c := NumChannels - 1; c >= 0; c-- {
		bits <<= 1
		b.sum[c] += req[c]
		if b.sum[c] < b.res[c] {
			bits |= 1
		} else {
			b.sum[c] -= b.res[c]
		}
	}
	return bits
}
