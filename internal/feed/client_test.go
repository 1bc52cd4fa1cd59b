package feed

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalfeed/goalfeed/internal/domain"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(Config{BaseURL: srv.URL, APIKey: "k3y", Timeout: 2 * time.Second}, logger)
}

func TestLiveEventsFlattensCompetitions(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/events/live", r.URL.Path)
		assert.Equal(t, "k3y", r.Header.Get("X-Api-Key"))
		w.Write([]byte(`{"competitions":[
			{"name":"England: Premier League","events":[
				{"id":"ev1","home_team":"Alpha","away_team":"Beta","score":"1-0","stage":"1st Half","elapsed":30}
			]},
			{"name":"Spain: La Liga","events":[
				{"id":"ev2","home_team":"Gamma","away_team":"Delta","score":"0-0","stage":"Half Time","elapsed":45}
			]}
		]}`))
	}))

	events, err := c.LiveEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "England: Premier League", events[0].Competition)
	assert.Equal(t, domain.Score{Home: 1}, events[0].Score)
	assert.Equal(t, domain.StageHalfTime, events[1].Stage)
}

func TestEventStatisticsMissingPayload(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	stats, err := c.EventStatistics(context.Background(), "ev1")
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestDoGetRetriesServerErrors(t *testing.T) {
	var calls int
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"competitions":[]}`))
	}))

	events, err := c.LiveEvents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, 3, calls)
}

func TestDoGetGivesUpAfterRetryBudget(t *testing.T) {
	var calls int
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := c.LiveEvents(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 3, calls) // initial attempt + 2 retries
}

func TestDoGetDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.LiveEvents(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestFinalRecord(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/events/ev1/result", r.URL.Path)
		w.Write([]byte(`{"event_id":"ev1","score":"2-1","half_time_score":"1-0","status":"Finished"}`))
	}))

	rec, err := c.FinalRecord(context.Background(), "ev1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Finished)
	assert.Equal(t, domain.Score{Home: 2, Away: 1}, rec.FinalScore)
	assert.Equal(t, domain.Score{Home: 1}, rec.HalfTimeScore)
}
