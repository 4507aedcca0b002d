// Package led holds the output sinks that turn packed modulator words into
// lit LEDs. The bank upstream is polarity-neutral: bit k set means channel
// k's LED should be lit this tick, and everything electrical (pin mapping,
// common-anode inversion) stays in here.
package led

// Driver abstracts an LED output sink.
type Driver interface {
	// Publish drives the pins from one packed word; bit k is channel k.
	Publish(bits uint16) error
	// Close releases resources.
	Close() error
}
