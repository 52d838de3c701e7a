// Package aggregate runs the source fetch+extract cycle and records
// per-source outcomes.
package aggregate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/flowternity/facility-assistant/internal/extract"
	"github.com/flowternity/facility-assistant/internal/model"
	"github.com/flowternity/facility-assistant/internal/store"
)

// Orchestrator fans out one fetch+extract job per configured source,
// persists the emitted fragments, and upserts one status row per source.
type Orchestrator struct {
	store      store.Store
	extractors []extract.Extractor

	// cycleMu serializes full cycles: overlapping triggers are skipped
	// rather than queued to avoid duplicate fragment bursts.
	cycleMu sync.Mutex
}

// New creates an Orchestrator over the given extractors.
func New(st store.Store, extractors []extract.Extractor) *Orchestrator {
	return &Orchestrator{store: st, extractors: extractors}
}

// SeedStatuses writes a pending status row for every configured source
// so the status endpoint is meaningful before the first cycle completes.
func (o *Orchestrator) SeedStatuses(ctx context.Context) {
	now := time.Now().UTC()
	for _, ex := range o.extractors {
		st := model.SourceStatus{
			Source:        ex.Source(),
			LastAttemptAt: now,
			Outcome:       model.OutcomePending,
		}
		if err := o.store.UpsertStatus(ctx, st); err != nil {
			zap.L().Warn("seed status failed",
				zap.String("source", string(ex.Source())),
				zap.Error(err),
			)
		}
	}
}

// RunCycle runs fetch+extract for every source concurrently. The cycle
// never fails as a whole: every per-source failure is captured in that
// source's status row. A cycle already in flight makes this call a no-op.
func (o *Orchestrator) RunCycle(ctx context.Context) {
	if !o.cycleMu.TryLock() {
		zap.L().Info("aggregation cycle already running, skipping trigger")
		return
	}
	defer o.cycleMu.Unlock()

	log := zap.L().With(zap.String("component", "aggregate.orchestrator"))
	start := time.Now()
	log.Info("aggregation cycle starting", zap.Int("sources", len(o.extractors)))

	g, gctx := errgroup.WithContext(ctx)
	for _, ex := range o.extractors {
		g.Go(func() error {
			o.runSource(gctx, ex)
			return nil // per-source failures never abort siblings
		})
	}
	_ = g.Wait()

	log.Info("aggregation cycle complete", zap.Duration("elapsed", time.Since(start)))
}

// runSource executes one source's fetch+extract unit of work and records
// its outcome as a single atomic status upsert.
func (o *Orchestrator) runSource(ctx context.Context, ex extract.Extractor) {
	source := ex.Source()
	log := zap.L().With(zap.String("source", string(source)))

	frags, err := ex.Extract(ctx)
	if err != nil {
		// Fetch exhausted its retries: degrade to the source's curated
		// fallback set so the canonical record keeps this source's shape.
		log.Warn("extraction failed, using fallback fragments", zap.Error(err))
		frags = ex.Fallback()
	}

	now := time.Now().UTC()
	persisted := 0
	var lastErr error
	for _, f := range frags {
		f.CapturedAt = now
		f.Active = true
		if perr := o.store.AppendFragment(ctx, f); perr != nil {
			log.Error("persist fragment failed",
				zap.String("category", string(f.Category)),
				zap.Error(perr),
			)
			lastErr = perr
			continue
		}
		persisted++
	}

	status := model.SourceStatus{
		Source:        source,
		LastAttemptAt: now,
		FragmentCount: persisted,
	}
	if persisted > 0 {
		status.Outcome = model.OutcomeSuccess
	} else {
		status.Outcome = model.OutcomeError
		switch {
		case lastErr != nil:
			status.ErrorDetail = lastErr.Error()
		case err != nil:
			status.ErrorDetail = err.Error()
		default:
			status.ErrorDetail = "no fragments extracted"
		}
	}

	if serr := o.store.UpsertStatus(ctx, status); serr != nil {
		log.Error("status upsert failed", zap.Error(serr))
		return
	}

	log.Info("source processed",
		zap.String("outcome", string(status.Outcome)),
		zap.Int("fragments", persisted),
	)
}
