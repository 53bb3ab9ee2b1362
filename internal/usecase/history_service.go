package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/tournify/match-resolution/internal/domain/history"
	"github.com/tournify/match-resolution/internal/domain/match"
	"github.com/tournify/match-resolution/internal/domain/participant"
	"github.com/tournify/match-resolution/internal/platform/logging"
	"github.com/tournify/match-resolution/internal/platform/metrics"
)

// HistoryService fans one history lookup per participant out over a
// shared worker pool and joins all of them before returning.
type HistoryService struct {
	source  match.Source
	pool    *ants.Pool
	metrics *metrics.Manager
	logger  *logging.Logger
}

func NewHistoryService(source match.Source, pool *ants.Pool, m *metrics.Manager, logger *logging.Logger) *HistoryService {
	if logger == nil {
		logger = logging.Default()
	}
	return &HistoryService{
		source:  source,
		pool:    pool,
		metrics: m,
		logger:  logger.Named("history"),
	}
}

// Collect fetches every participant's history concurrently and waits for
// all lookups to settle. The result keeps request order and always has
// one element per identity: a failed lookup becomes an empty history
// with SourceOK=false, never an error and never a cancelled sibling.
func (s *HistoryService) Collect(ctx context.Context, identities []participant.Identity) []history.Aggregated {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryService.Collect")
	defer span.End()

	out := make([]history.Aggregated, len(identities))
	if len(identities) == 0 {
		return out
	}

	var workers sync.WaitGroup
	var failures atomic.Int32
	for i, identity := range identities {
		i, identity := i, identity
		workers.Add(1)
		task := func() {
			defer workers.Done()
			out[i] = s.collectOne(ctx, identity, &failures)
		}
		// Each task writes only its own slot, so no lock is needed.
		if s.pool == nil || s.pool.Submit(task) != nil {
			task()
		}
	}
	workers.Wait()

	if failed := failures.Load(); failed > 0 {
		s.logger.WarnContext(ctx, "history collection finished with unavailable sources",
			"failed", failed,
			"total", len(identities),
		)
	}
	return out
}

func (s *HistoryService) collectOne(ctx context.Context, identity participant.Identity, failures *atomic.Int32) history.Aggregated {
	start := time.Now()
	entries, err := s.source.PlayerHistory(ctx, identity)
	s.metrics.RecordSourceCall(s.source.Driver(), "player_history", time.Since(start))

	if err != nil {
		failures.Add(1)
		s.metrics.RecordHistoryFetch(s.source.Driver(), false)
		s.logger.WarnContext(ctx, "history source unavailable, participant counted with empty history",
			"participant", identity.String(),
			"error", err,
		)
		return history.Aggregated{Identity: identity, SourceOK: false}
	}

	s.metrics.RecordHistoryFetch(s.source.Driver(), true)
	return history.Aggregated{Identity: identity, Entries: entries, SourceOK: true}
}
