package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botpanel/internal/broadcast"
	"botpanel/internal/middleware"
)

type fakeTicker struct {
	result *broadcast.TickResult
	err    error
	calls  int
}

func (f *fakeTicker) Tick(ctx context.Context) (*broadcast.TickResult, error) {
	f.calls++
	return f.result, f.err
}

func triggerRouter(ticker *fakeTicker, secret string) *mux.Router {
	h := NewBroadcastHandler(ticker, zerolog.Nop())
	router := mux.NewRouter()
	sub := router.PathPrefix("/api/broadcast").Subrouter()
	sub.Use(middleware.RequireTriggerSecret(secret))
	sub.HandleFunc("/tick", h.Tick).Methods(http.MethodPost)
	return router
}

func TestTickRejectsMissingSecret(t *testing.T) {
	ticker := &fakeTicker{result: &broadcast.TickResult{Idle: true}}
	router := triggerRouter(ticker, "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/api/broadcast/tick", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, ticker.calls)
}

func TestTickRejectsWrongSecret(t *testing.T) {
	ticker := &fakeTicker{result: &broadcast.TickResult{Idle: true}}
	router := triggerRouter(ticker, "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/api/broadcast/tick", nil)
	req.Header.Set(middleware.TriggerSecretHeader, "wrong")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, ticker.calls)
}

func TestTickIdle(t *testing.T) {
	ticker := &fakeTicker{result: &broadcast.TickResult{Idle: true}}
	router := triggerRouter(ticker, "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/api/broadcast/tick", nil)
	req.Header.Set(middleware.TriggerSecretHeader, "s3cret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no pending campaign", body["message"])
}

func TestTickReportsProgress(t *testing.T) {
	ticker := &fakeTicker{result: &broadcast.TickResult{
		CampaignID:  7,
		BatchSent:   48,
		BatchFailed: 2,
		NextOffset:  100,
		TotalUsers:  120,
	}}
	router := triggerRouter(ticker, "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/api/broadcast/tick", nil)
	req.Header.Set(middleware.TriggerSecretHeader, "s3cret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body broadcast.TickResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body.CampaignID)
	assert.Equal(t, 48, body.BatchSent)
	assert.Equal(t, 2, body.BatchFailed)
	assert.Equal(t, 100, body.NextOffset)
	assert.False(t, body.Completed)
}

func TestTickFailure(t *testing.T) {
	ticker := &fakeTicker{err: errors.New("failed to checkpoint campaign 7: campaign checkpoint is stale")}
	router := triggerRouter(ticker, "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/api/broadcast/tick", nil)
	req.Header.Set(middleware.TriggerSecretHeader, "s3cret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "TICK_FAILED", body.Error.Code)
}

func TestTickMethodNotAllowed(t *testing.T) {
	ticker := &fakeTicker{result: &broadcast.TickResult{Idle: true}}
	router := triggerRouter(ticker, "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/api/broadcast/tick", nil)
	req.Header.Set(middleware.TriggerSecretHeader, "s3cret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Zero(t, ticker.calls)
}
