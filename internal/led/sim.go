package led

import "sync"

// Sim is a headless sink that measures the bit streams instead of driving
// hardware. It backs the simulator, the tests, and the fallback path when
// GPIO bringup fails.
type Sim struct {
	mu    sync.Mutex
	ticks uint64
	ones  [NumPins]uint64
	last  uint16
}

// NewSim returns an empty measuring sink.
func NewSim() *Sim { return &Sim{} }

// Publish implements Driver.
func (s *Sim) Publish(bits uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks++
	s.last = bits
	for c := 0; c < NumPins; c++ {
		if bits>>uint(c)&1 == 1 {
			s.ones[c]++
		}
	}
	return nil
}

// Close implements Driver.
func (s *Sim) Close() error { return nil }

// Ticks returns how many words have been published.
func (s *Sim) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Last returns the most recent word.
func (s *Sim) Last() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Ones returns the 1-bit count observed on channel c.
func (s *Sim) Ones(c int) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ones[c]
}

// Duty returns the measured 1-bit density on channel c over all published
// ticks, in [0,1].
func (s *Sim) Duty(c int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticks == 0 {
		return 0
	}
	return float64(s.ones[c]) / float64(s.ticks)
}

// Reset clears the counters; the next Publish starts a fresh window.
func (s *Sim) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks = 0
	s.ones = [NumPins]uint64{}
	s.last = 0
}
