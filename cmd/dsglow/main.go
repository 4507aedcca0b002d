// Command dsglow fades four multicolour LEDs through their colour cycles
// using ten software delta-sigma channels on discrete GPIO pins.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/coreman2200/dsglow/internal/config"
	"github.com/coreman2200/dsglow/internal/engine"
	"github.com/coreman2200/dsglow/internal/led"
	"github.com/coreman2200/dsglow/internal/ws"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		driver     = flag.String("driver", "", "driver override: gpio | sim")
		addr       = flag.String("addr", "", "monitor HTTP listen address override")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	cfg := config.Default()
	if c, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with defaults")
	} else {
		cfg = c
	}
	if *driver != "" {
		cfg.Driver = *driver
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *simOnly {
		cfg.Driver = "sim"
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	sink := selectDriver(cfg)
	defer sink.Close()

	eng, err := engine.New(sink)
	if err != nil {
		log.Fatal().Err(err).Msg("engine bringup failed")
	}

	state := ws.NewState(eng, cfg.Driver)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", state.HandleFramesWS)
	mux.HandleFunc("/health", state.HandleHealth)
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rate := physic.Frequency(cfg.TickHz) * physic.Hertz
	log.Info().
		Str("driver", cfg.Driver).
		Str("addr", cfg.Addr).
		Int("tick_hz", cfg.TickHz).
		Msg("starting")

	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		return eng.Run(ctx, rate)
	})
	grp.Go(func() error {
		state.RunBroadcastLoop(ctx)
		return nil
	})
	grp.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	grp.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		return srv.Close()
	})

	if err := grp.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("exited with error")
	}
}

// selectDriver opens the configured sink, falling back to the measuring sim
// sink when hardware bringup fails so a bad wire never takes the daemon down.
func selectDriver(cfg *config.Config) led.Driver {
	if cfg.Driver == "sim" {
		return led.NewSim()
	}

	if _, err := host.Init(); err != nil {
		log.Warn().Err(err).Msg("periph host init failed; falling back to sim")
		return led.NewSim()
	}
	var pins [led.NumPins]string
	copy(pins[:], cfg.Pins)
	drv, err := led.NewGPIO(pins, cfg.InvertMask)
	if err != nil {
		log.Warn().Err(err).Msg("GPIO init failed; falling back to sim")
		return led.NewSim()
	}
	return drv
}
