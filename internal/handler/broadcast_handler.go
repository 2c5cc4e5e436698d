package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"botpanel/internal/broadcast"
)

// Ticker advances the broadcast engine by one tick
type Ticker interface {
	Tick(ctx context.Context) (*broadcast.TickResult, error)
}

// BroadcastHandler exposes the engine tick as an HTTP trigger
type BroadcastHandler struct {
	engine Ticker
	log    zerolog.Logger
}

// NewBroadcastHandler creates a new broadcast handler
func NewBroadcastHandler(engine Ticker, log zerolog.Logger) *BroadcastHandler {
	return &BroadcastHandler{engine: engine, log: log}
}

// Tick handles POST /api/broadcast/tick - runs one delivery tick.
// The caller is the periodic external trigger; authentication happens in
// middleware before this handler runs.
func (h *BroadcastHandler) Tick(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.Tick(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("broadcast tick failed")
		WriteError(w, http.StatusInternalServerError, "TICK_FAILED", err.Error())
		return
	}

	if result.Idle {
		WriteOK(w, map[string]string{"message": "no pending campaign"})
		return
	}

	WriteOK(w, result)
}
