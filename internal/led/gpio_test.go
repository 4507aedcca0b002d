package led

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func testPins() ([NumPins]gpio.PinOut, []*gpiotest.Pin) {
	var out [NumPins]gpio.PinOut
	raw := make([]*gpiotest.Pin, NumPins)
	for i := range raw {
		raw[i] = &gpiotest.Pin{N: fmt.Sprintf("ch%d", i), Num: i}
		out[i] = raw[i]
	}
	return out, raw
}

func levels(raw []*gpiotest.Pin) uint16 {
	var w uint16
	for i, p := range raw {
		if p.L == gpio.High {
			w |= 1 << uint(i)
		}
	}
	return w
}

// With no inversion the pin levels mirror the packed word.
func TestGPIOPublishStraight(t *testing.T) {
	pins, raw := testPins()
	g, err := NewGPIOFromPins(pins, 0)
	require.NoError(t, err)

	require.NoError(t, g.Publish(0b10_1100_0101))
	assert.Equal(t, uint16(0b10_1100_0101), levels(raw))

	require.NoError(t, g.Publish(0))
	assert.Equal(t, uint16(0), levels(raw))
}

// The invert mask flips the common-anode channels, so a set bit still means
// "lit" there: level low on inverted channels, high elsewhere.
func TestGPIOPolarityMask(t *testing.T) {
	pins, raw := testPins()
	g, err := NewGPIOFromPins(pins, DefaultInvertMask)
	require.NoError(t, err)

	// Construction parks everything "off": inverted channels idle high.
	assert.Equal(t, DefaultInvertMask, levels(raw))

	require.NoError(t, g.Publish(0x3FF))
	assert.Equal(t, uint16(0x3FF)^DefaultInvertMask, levels(raw))

	require.NoError(t, g.Publish(0b00_0000_1001))
	assert.Equal(t, uint16(0b00_0000_1001)^DefaultInvertMask, levels(raw))
}

// Close parks the LEDs off again regardless of the last word.
func TestGPIOClose(t *testing.T) {
	pins, raw := testPins()
	g, err := NewGPIOFromPins(pins, DefaultInvertMask)
	require.NoError(t, err)

	require.NoError(t, g.Publish(0x3FF))
	require.NoError(t, g.Close())
	assert.Equal(t, DefaultInvertMask, levels(raw))
}

func TestSimMeasuresDuty(t *testing.T) {
	s := NewSim()
	for i := 0; i < 100; i++ {
		var w uint16
		if i%2 == 0 {
			w |= 1 << 0 // channel 0 at 50%
		}
		if i%4 == 0 {
			w |= 1 << 7 // channel 7 at 25%
		}
		w |= 1 << 9 // channel 9 always on
		require.NoError(t, s.Publish(w))
	}

	assert.Equal(t, uint64(100), s.Ticks())
	assert.InDelta(t, 0.50, s.Duty(0), 1e-9)
	assert.InDelta(t, 0.25, s.Duty(7), 1e-9)
	assert.InDelta(t, 1.00, s.Duty(9), 1e-9)
	assert.InDelta(t, 0.00, s.Duty(3), 1e-9)

	s.Reset()
	assert.Equal(t, uint64(0), s.Ticks())
	assert.Equal(t, float64(0), s.Duty(9))
}
