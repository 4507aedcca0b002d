// Command dsglowsim runs the modulation engine headless against the
// measuring sink and reports what the LEDs would have done. Useful for
// checking duty cycles and envelope traces without hardware.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/coreman2200/dsglow/internal/engine"
	"github.com/coreman2200/dsglow/internal/led"
	"github.com/coreman2200/dsglow/internal/modulator"
)

func main() {
	var (
		ticks     = flag.Uint64("ticks", 38400, "bit ticks to simulate (38400 = one rgb1 envelope cycle)")
		envelopes = flag.Bool("envelopes", true, "advance the colour envelopes")
		trace     = flag.Uint64("trace", 0, "print a request snapshot every N ticks (0 = off)")
	)
	flag.Parse()

	sim := led.NewSim()
	opts := []engine.Option{}
	if !*envelopes {
		opts = append(opts, engine.WithoutEnvelopes())
	}
	eng, err := engine.New(sim, opts...)
	if err != nil {
		log.Fatalf("bringup: %v", err)
	}

	for t := uint64(0); t < *ticks; t++ {
		if err := eng.Tick(); err != nil {
			log.Fatalf("tick %d: %v", t, err)
		}
		if *trace > 0 && (t+1)%*trace == 0 {
			snap := eng.Snapshot()
			fmt.Printf("[tick %8d] req=%v phases=%v\n", snap.Tick, snap.Requests, snap.Phases)
		}
	}

	snap := eng.Snapshot()
	fmt.Printf("simulated %d ticks (envelopes=%v)\n", snap.Tick, *envelopes)
	fmt.Println("ch  resolution  request  measured duty")
	for c := 0; c < modulator.NumChannels; c++ {
		fmt.Printf("%2d  %10d  %7d  %13.4f\n",
			c, eng.Resolution(c), snap.Requests[c], sim.Duty(c))
	}
}
