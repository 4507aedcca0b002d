package modulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatBank(t *testing.T, res uint16) *Bank {
	t.Helper()
	var r [NumChannels]uint16
	for i := range r {
		r[i] = res
	}
	b, err := NewBank(r)
	require.NoError(t, err)
	return b
}

func TestNewBankRejectsZeroResolution(t *testing.T) {
	var r [NumChannels]uint16
	for i := range r {
		r[i] = 100
	}
	r[4] = 0
	_, err := NewBank(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel 4")
}

// Half-scale input on a 200-count channel alternates 1,0,1,0 from the very
// first tick: 200 ones and 200 zeros over 400 ticks.
func TestHalfScaleAlternates(t *testing.T) {
	b := flatBank(t, 200)
	req := Requests{0: 100}

	ones := 0
	for i := 0; i < 400; i++ {
		bit := b.Step(&req) & 1
		want := uint16(1 - i%2)
		require.Equalf(t, want, bit, "tick %d", i)
		ones += int(bit)
	}
	assert.Equal(t, 200, ones)
}

// A full-scale request wraps the integrator on every tick, so with the
// strict comparison the channel sits in the wrap branch permanently and the
// integrator returns to zero each time.
func TestFullScaleWrapsEveryTick(t *testing.T) {
	b := flatBank(t, 200)
	req := Requests{0: 200}

	for i := 0; i < 400; i++ {
		bit := b.Step(&req) & 1
		require.Equalf(t, uint16(0), bit, "tick %d", i)
		require.Equal(t, uint16(0), b.Integrator(0))
	}
}

// A zero request never moves the integrator, so the channel never wraps.
func TestZeroRequestNeverWraps(t *testing.T) {
	b := flatBank(t, 200)
	req := Requests{}

	for i := 0; i < 400; i++ {
		bit := b.Step(&req) & 1
		require.Equalf(t, uint16(1), bit, "tick %d", i)
		require.Equal(t, uint16(0), b.Integrator(0))
	}
}

// Integrators stay inside [0, resolution) between ticks for any in-range
// request, on every channel.
func TestIntegratorBounds(t *testing.T) {
	res := [NumChannels]uint16{200, 200, 200, 200, 200, 200, 100, 100, 150, 150}
	b, err := NewBank(res)
	require.NoError(t, err)

	req := Requests{0, 13, 37, 100, 199, 200, 1, 99, 75, 150}
	for i := 0; i < 10000; i++ {
		b.Step(&req)
		for c := 0; c < NumChannels; c++ {
			require.Lessf(t, b.Integrator(c), res[c], "tick %d channel %d", i, c)
		}
	}
}

// Over any window of W ticks the wrap count (zero bits) tracks W*req/res to
// within one, the first-order accuracy bound.
func TestWindowAccuracy(t *testing.T) {
	cases := []struct {
		res, req uint16
		window   int
	}{
		{200, 1, 1000},
		{200, 37, 997},
		{200, 100, 400},
		{200, 199, 1000},
		{150, 50, 450},
		{100, 33, 1000},
	}
	for _, tc := range cases {
		b := flatBank(t, tc.res)

		req := Requests{0: tc.req}
		zeros := 0
		for i := 0; i < tc.window; i++ {
			if b.Step(&req)&1 == 0 {
				zeros++
			}
		}
		exact := float64(tc.window) * float64(tc.req) / float64(tc.res)
		assert.InDeltaf(t, exact, float64(zeros), 1.0,
			"req %d/%d over %d ticks", tc.req, tc.res, tc.window)
	}
}

// Channel k lands in bit k of the packed word.
func TestBitPacking(t *testing.T) {
	b := flatBank(t, 200)

	// Full-scale channels wrap (bit 0), idle channels do not (bit 1).
	req := Requests{}
	full := []int{0, 3, 4, 9}
	for _, c := range full {
		req[c] = 200
	}
	word := b.Step(&req)

	want := uint16(0x3FF)
	for _, c := range full {
		want &^= 1 << uint(c)
	}
	assert.Equal(t, want, word)
}

func TestResetRestoresBringupState(t *testing.T) {
	b := flatBank(t, 200)
	req := Requests{0: 37, 5: 123}
	for i := 0; i < 77; i++ {
		b.Step(&req)
	}
	b.Reset()
	for c := 0; c < NumChannels; c++ {
		assert.Equal(t, uint16(0), b.Integrator(c))
	}
}
