package led

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// NumPins is the number of channels a GPIO sink drives.
const NumPins = 10

// DefaultInvertMask marks channels wired common-anode, which need their
// level flipped so a set bit still lights the LED. The reference board
// inverts the six RGB channels and leaves the common-cathode RG pairs alone.
const DefaultInvertMask uint16 = 0x003F

// DefaultPins mirrors the reference wiring: channels 0-7 on consecutive
// port-1 pins, channels 8-9 on the high pins of port 2.
var DefaultPins = [NumPins]string{
	"GPIO2", "GPIO3", "GPIO4",
	"GPIO5", "GPIO6", "GPIO7",
	"GPIO8", "GPIO9",
	"GPIO10", "GPIO11",
}

// GPIO drives ten discrete pins through periph.io. Writes happen on the
// tick goroutine only.
type GPIO struct {
	pins   [NumPins]gpio.PinOut
	invert uint16

	// last holds the previously written levels so unchanged pins are not
	// rewritten every tick; at a 2 kHz bit clock that halves the sysfs
	// traffic on a typical frame.
	last  uint16
	wrote bool
}

// NewGPIO resolves the named pins from the host registry and parks them all
// in the "off" state. host.Init must have succeeded before calling this.
func NewGPIO(names [NumPins]string, invert uint16) (*GPIO, error) {
	var pins [NumPins]gpio.PinOut
	for i, name := range names {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, errors.Errorf("led: no such pin %q for channel %d", name, i)
		}
		pins[i] = p
	}
	return NewGPIOFromPins(pins, invert)
}

// NewGPIOFromPins wires already-resolved pins. Split out so tests can inject
// gpiotest pins.
func NewGPIOFromPins(pins [NumPins]gpio.PinOut, invert uint16) (*GPIO, error) {
	g := &GPIO{pins: pins, invert: invert}
	if err := g.writeAll(0); err != nil {
		return nil, errors.Wrap(err, "led: initial pin state")
	}
	return g, nil
}

// Publish implements Driver.
func (g *GPIO) Publish(bits uint16) error {
	levels := bits ^ g.invert
	if g.wrote && levels == g.last {
		return nil
	}
	for i, p := range g.pins {
		bit := levels >> uint(i) & 1
		if g.wrote && g.last>>uint(i)&1 == bit {
			continue
		}
		if err := p.Out(gpio.Level(bit == 1)); err != nil {
			return errors.Wrapf(err, "led: channel %d (%s)", i, p.Name())
		}
	}
	g.last = levels
	g.wrote = true
	return nil
}

// Close parks every pin in the "off" state.
func (g *GPIO) Close() error {
	return g.writeAll(0)
}

func (g *GPIO) writeAll(bits uint16) error {
	levels := bits ^ g.invert
	for i, p := range g.pins {
		if err := p.Out(gpio.Level(levels>>uint(i)&1 == 1)); err != nil {
			return errors.Wrapf(err, "led: channel %d (%s)", i, p.Name())
		}
	}
	g.last = levels
	g.wrote = true
	return nil
}
