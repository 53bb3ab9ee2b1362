package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestManager_RecordHTTPRequest(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := NewManager(WithRegistry(registry), WithNamespace("test"))

	m.RecordHTTPRequest("/matches/leaderboard", "POST", 200, 120*time.Millisecond)
	m.RecordHTTPRequest("/matches/leaderboard", "POST", 200, 80*time.Millisecond)
	m.RecordHTTPRequest("/matches/leaderboard", "POST", 400, 5*time.Millisecond)

	got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/matches/leaderboard", "POST", "200"))
	if got != 2 {
		t.Fatalf("unexpected 200 count: got=%v want=2", got)
	}
	got = testutil.ToFloat64(m.httpRequests.WithLabelValues("/matches/leaderboard", "POST", "400"))
	if got != 1 {
		t.Fatalf("unexpected 400 count: got=%v want=1", got)
	}
}

func TestManager_RecordHistoryFetch(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := NewManager(WithRegistry(registry))

	m.RecordHistoryFetch("riotsim", true)
	m.RecordHistoryFetch("riotsim", true)
	m.RecordHistoryFetch("riotsim", false)

	if got := testutil.ToFloat64(m.historyFetches.WithLabelValues("riotsim", "ok")); got != 2 {
		t.Fatalf("unexpected ok count: got=%v want=2", got)
	}
	if got := testutil.ToFloat64(m.historyFetches.WithLabelValues("riotsim", "error")); got != 1 {
		t.Fatalf("unexpected error count: got=%v want=1", got)
	}
}

func TestManager_NilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var m *Manager
	m.RecordHTTPRequest("/", "GET", 200, time.Millisecond)
	m.RecordHistoryFetch("henrikdev", false)
	m.RecordSourceCall("henrikdev", "player_history", time.Millisecond)
	m.RecordResolutionOutcome("DONE")
}
