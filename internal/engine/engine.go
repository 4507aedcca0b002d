// Package engine couples the modulator bank to the envelope generators and
// drives both from a single tick schedule.
package engine

import (
	"context"
	"sync"
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/dsglow/internal/envelope"
	"github.com/coreman2200/dsglow/internal/modulator"
)

// DefaultTickRate matches the reference bit clock of roughly 2 kHz.
const DefaultTickRate = 2 * physic.KiloHertz

// Sink accepts one packed output word per tick. Bit k of the word is
// channel k's output; pin mapping and polarity are the sink's concern.
type Sink interface {
	Publish(bits uint16) error
	Close() error
}

// Snapshot is a read-only copy of the engine state at some tick boundary,
// taken for the monitor and the simulator.
type Snapshot struct {
	Tick     uint64
	Bits     uint16
	Requests modulator.Requests
	Phases   []int
}

// Engine owns all mutable core state: the request vector, the bank's
// integrators, the generator phases and the tick counter. Tick is the only
// writer; Snapshot may be called from other goroutines.
type Engine struct {
	mu   sync.Mutex
	bank *modulator.Bank
	gens []*envelope.Generator
	req  modulator.Requests
	tick uint64
	last uint16
	sink Sink

	envelopesOn bool
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithoutEnvelopes freezes the request vector at its bringup values. Used by
// the simulator and by tests that need a constant-level bit stream.
func WithoutEnvelopes() Option {
	return func(e *Engine) { e.envelopesOn = false }
}

// New performs bringup: integrators at zero, requests and generator phases
// at their initial values, tick counter at zero. Parameter consistency is
// checked here; a running engine has no failure paths of its own.
func New(sink Sink, opts ...Option) (*Engine, error) {
	bank, err := modulator.NewBank(resolutions)
	if err != nil {
		return nil, err
	}
	gens, err := newGenerators()
	if err != nil {
		return nil, err
	}
	e := &Engine{
		bank:        bank,
		gens:        gens,
		req:         initialRequests,
		sink:        sink,
		envelopesOn: true,
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Tick runs one bit clock: on every EnvelopeEvery-th tick the generators
// retarget the request vector first, then the bank emits one bit per channel
// and the word goes to the sink. All request changes land between bank
// steps, so the modulators always see a consistent vector.
func (e *Engine) Tick() error {
	e.mu.Lock()
	if e.envelopesOn && e.tick%EnvelopeEvery == 0 {
		for _, g := range e.gens {
			g.Step(e.req[:])
		}
	}
	bits := e.bank.Step(&e.req)
	e.last = bits
	e.tick++
	e.mu.Unlock()

	// Publish outside the lock; the sink may block on I/O and snapshots
	// must stay cheap.
	return e.sink.Publish(bits)
}

// Run ticks the engine at the given rate until ctx is done. The ticker is
// the Go stand-in for the reference design's timer interrupt; between ticks
// the goroutine parks, which is the idle-until-next-tick of the original.
func (e *Engine) Run(ctx context.Context, rate physic.Frequency) error {
	if rate == 0 {
		rate = DefaultTickRate
	}
	ticker := time.NewTicker(rate.Period())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := e.Tick(); err != nil {
				return err
			}
		}
	}
}

// Snapshot copies the current state. Phases are listed in generator order.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	phases := make([]int, len(e.gens))
	for i, g := range e.gens {
		phases[i] = g.Phase()
	}
	return Snapshot{
		Tick:     e.tick,
		Bits:     e.last,
		Requests: e.req,
		Phases:   phases,
	}
}

// Resolution exposes channel c's full scale for duty-cycle math in the
// monitor and simulator.
func (e *Engine) Resolution(c int) uint16 { return e.bank.Resolution(c) }
