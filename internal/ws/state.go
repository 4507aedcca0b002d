// Package ws exposes a read-only monitor over HTTP: a health endpoint and a
// websocket stream of engine snapshots. There is deliberately no control
// surface; the modulation parameters are fixed at build time.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/dsglow/internal/engine"
	"github.com/coreman2200/dsglow/internal/modulator"
)

// State bridges the engine to HTTP clients. Snapshots are pulled from the
// engine on a slow ticker so the bit clock never waits on the network.
type State struct {
	eng    *engine.Engine
	driver string

	mu        sync.RWMutex
	clients   map[*websocket.Conn]bool
	startTime time.Time
}

func NewState(eng *engine.Engine, driver string) *State {
	return &State{
		eng:       eng,
		driver:    driver,
		clients:   map[*websocket.Conn]bool{},
		startTime: time.Now(),
	}
}

type frame struct {
	T        int64                         `json:"t"`
	Tick     uint64                        `json:"tick"`
	Bits     uint16                        `json:"bits"`
	Requests [modulator.NumChannels]uint16 `json:"requests"`
	Phases   []int                         `json:"phases"`
}

// RunBroadcastLoop pushes a snapshot to all connected clients roughly twenty
// times a second until ctx is done.
func (s *State) RunBroadcastLoop(ctx context.Context) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		snap := s.eng.Snapshot()
		b, _ := json.Marshal(frame{
			T:        time.Now().UnixNano(),
			Tick:     snap.Tick,
			Bits:     snap.Bits,
			Requests: snap.Requests,
			Phases:   snap.Phases,
		})

		s.mu.RLock()
		for c := range s.clients {
			c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
			if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
				log.Debug().Err(err).Msg("write frame")
			}
		}
		s.mu.RUnlock()
	}
}

// HandleFramesWS upgrades the connection and registers it for snapshot
// broadcasts. Incoming messages are drained and ignored.
func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// HandleHealth reports liveness plus the per-channel request duty cycles.
func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.eng.Snapshot()
	duty := make([]float64, modulator.NumChannels)
	for c := range duty {
		duty[c] = float64(snap.Requests[c]) / float64(s.eng.Resolution(c))
	}
	resp := map[string]any{
		"tick":     snap.Tick,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"driver":   s.driver,
		"duty":     duty,
	}
	_ = json.NewEncoder(w).Encode(resp)
}
