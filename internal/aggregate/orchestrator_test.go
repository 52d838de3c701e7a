package aggregate

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowternity/facility-assistant/internal/extract"
	"github.com/flowternity/facility-assistant/internal/model"
	"github.com/flowternity/facility-assistant/internal/store"
)

type fakeExtractor struct {
	source    model.Source
	frags     []model.Fragment
	err       error
	fallbacks []model.Fragment

	mu       sync.Mutex
	extracts int
}

func (f *fakeExtractor) Source() model.Source { return f.source }

func (f *fakeExtractor) Extract(context.Context) ([]model.Fragment, error) {
	f.mu.Lock()
	f.extracts++
	f.mu.Unlock()
	return f.frags, f.err
}

func (f *fakeExtractor) Fallback() []model.Fragment { return f.fallbacks }

func newTestOrchestrator(t *testing.T, extractors ...extract.Extractor) (*Orchestrator, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return New(st, extractors), st
}

func sportsFrag(source model.Source, sports ...string) model.Fragment {
	return model.Fragment{
		Source:   source,
		Category: model.CategorySports,
		Payload:  model.SportsInfo{Sports: sports},
	}
}

func TestRunCycle_PersistsFragmentsAndStatus(t *testing.T) {
	ex := &fakeExtractor{
		source: model.SourcePrimaryListing,
		frags: []model.Fragment{
			sportsFrag(model.SourcePrimaryListing, "Basketball"),
			{
				Source:   model.SourcePrimaryListing,
				Category: model.CategoryDescription,
				Payload:  model.DescriptionInfo{Description: "multi-sport facility"},
			},
		},
	}
	o, st := newTestOrchestrator(t, ex)

	o.RunCycle(context.Background())

	frags, err := st.ListActiveFragments(context.Background())
	require.NoError(t, err)
	assert.Len(t, frags, 2)
	for _, f := range frags {
		assert.True(t, f.Active)
		assert.False(t, f.CapturedAt.IsZero())
	}

	statuses, err := st.SnapshotStatuses(context.Background())
	require.NoError(t, err)
	status := statuses[model.SourcePrimaryListing]
	assert.Equal(t, model.OutcomeSuccess, status.Outcome)
	assert.Equal(t, 2, status.FragmentCount)
	assert.Empty(t, status.ErrorDetail)
}

func TestRunCycle_ExtractFailureUsesFallback(t *testing.T) {
	ex := &fakeExtractor{
		source:    model.SourcePrimaryListing,
		err:       eris.New("fetcher: 3 attempts exhausted"),
		fallbacks: []model.Fragment{sportsFrag(model.SourcePrimaryListing, "Basketball", "Pickleball")},
	}
	o, st := newTestOrchestrator(t, ex)

	o.RunCycle(context.Background())

	frags, err := st.ListActiveFragments(context.Background())
	require.NoError(t, err)
	require.Len(t, frags, 1)

	// Fallback fragments still count as a successful cycle for the source.
	statuses, err := st.SnapshotStatuses(context.Background())
	require.NoError(t, err)
	status := statuses[model.SourcePrimaryListing]
	assert.Equal(t, model.OutcomeSuccess, status.Outcome)
	assert.Equal(t, 1, status.FragmentCount)
}

func TestRunCycle_NoFragmentsIsError(t *testing.T) {
	ex := &fakeExtractor{
		source: model.SourceMapListing,
		err:    eris.New("fetcher: 3 attempts exhausted"),
		// No fallback set either.
	}
	o, st := newTestOrchestrator(t, ex)

	o.RunCycle(context.Background())

	statuses, err := st.SnapshotStatuses(context.Background())
	require.NoError(t, err)
	status := statuses[model.SourceMapListing]
	assert.Equal(t, model.OutcomeError, status.Outcome)
	assert.Zero(t, status.FragmentCount)
	assert.Contains(t, status.ErrorDetail, "attempts exhausted")
}

func TestRunCycle_SourceFailureIsolated(t *testing.T) {
	failing := &fakeExtractor{source: model.SourceSocialProfile, err: eris.New("boom")}
	healthy := &fakeExtractor{
		source: model.SourcePrimaryListing,
		frags:  []model.Fragment{sportsFrag(model.SourcePrimaryListing, "Basketball")},
	}
	o, st := newTestOrchestrator(t, failing, healthy)

	o.RunCycle(context.Background())

	statuses, err := st.SnapshotStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeError, statuses[model.SourceSocialProfile].Outcome)
	assert.Equal(t, model.OutcomeSuccess, statuses[model.SourcePrimaryListing].Outcome)
}

func TestSeedStatuses_Pending(t *testing.T) {
	o, st := newTestOrchestrator(t,
		&fakeExtractor{source: model.SourcePrimaryListing},
		&fakeExtractor{source: model.SourceSocialProfile},
		&fakeExtractor{source: model.SourceMapListing},
	)

	o.SeedStatuses(context.Background())

	statuses, err := st.SnapshotStatuses(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	for source, status := range statuses {
		assert.Equal(t, model.OutcomePending, status.Outcome, string(source))
		assert.False(t, status.LastAttemptAt.IsZero())
	}
}

func TestRunCycle_OverlappingTriggerSkipped(t *testing.T) {
	release := make(chan struct{})
	slow := &slowExtractor{
		fakeExtractor: fakeExtractor{
			source: model.SourcePrimaryListing,
			frags:  []model.Fragment{sportsFrag(model.SourcePrimaryListing, "Basketball")},
		},
		release: release,
	}
	o, _ := newTestOrchestrator(t, slow)

	done := make(chan struct{})
	go func() {
		o.RunCycle(context.Background())
		close(done)
	}()

	// Wait until the first cycle is inside Extract, then trigger again.
	require.Eventually(t, func() bool {
		slow.mu.Lock()
		defer slow.mu.Unlock()
		return slow.extracts == 1
	}, time.Second, time.Millisecond)

	o.RunCycle(context.Background()) // should return immediately as a no-op
	close(release)
	<-done

	slow.mu.Lock()
	defer slow.mu.Unlock()
	assert.Equal(t, 1, slow.extracts)
}

type slowExtractor struct {
	fakeExtractor
	release chan struct{}
}

func (s *slowExtractor) Extract(ctx context.Context) ([]model.Fragment, error) {
	frags, err := s.fakeExtractor.Extract(ctx)
	<-s.release
	return frags, err
}
