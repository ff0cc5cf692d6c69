package genealogy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"mlm/internal/domain/entity"
	"mlm/internal/domain/repository"
	"mlm/internal/infra/persistence/memory"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type chain struct {
	profiles  repository.ProfileRepository
	genealogy repository.GenealogyRepository
	ids       []uuid.UUID
}

// newChain links ids[i+1] under ids[i] without indexing anything.
func newChain(t *testing.T, length int) chain {
	t.Helper()

	store := memory.NewStore()
	c := chain{
		profiles:  memory.NewProfileRepository(store),
		genealogy: memory.NewGenealogyRepository(store),
	}
	ctx := context.Background()
	for i := range length {
		id := uuid.New()
		require.NoError(t, c.profiles.Create(ctx, &entity.Profile{
			ID:           id,
			ReferralCode: fmt.Sprintf("CHAIN%02d", i),
			Rank:         entity.RankBronze,
			IsActive:     true,
		}))
		if i > 0 {
			sponsor := c.ids[i-1]
			require.NoError(t, c.profiles.SetSponsor(ctx, id, &sponsor))
		}
		c.ids = append(c.ids, id)
	}

	return c
}

func TestSyncIndexer_Rebuild(t *testing.T) {
	c := newChain(t, 4)
	indexer := NewSyncIndexer(c.genealogy, c.profiles, 20)
	ctx := context.Background()

	require.NoError(t, indexer.Rebuild(ctx, c.ids[0]))

	ancestors, err := c.genealogy.Ancestors(ctx, c.ids[3], 0)
	require.NoError(t, err)
	require.Len(t, ancestors, 3)
	for i, entry := range ancestors {
		assert.Equal(t, i+1, entry.Level)
		assert.Equal(t, c.ids[2-i], entry.AncestorID)
	}
}

func TestSyncIndexer_RespectsMaxDepth(t *testing.T) {
	c := newChain(t, 5)
	indexer := NewSyncIndexer(c.genealogy, c.profiles, 2)
	ctx := context.Background()

	require.NoError(t, indexer.Rebuild(ctx, c.ids[0]))

	ancestors, err := c.genealogy.Ancestors(ctx, c.ids[4], 0)
	require.NoError(t, err)
	assert.Len(t, ancestors, 2)
}

func TestSyncIndexer_RemoveRefreshesDescendants(t *testing.T) {
	c := newChain(t, 4)
	indexer := NewSyncIndexer(c.genealogy, c.profiles, 20)
	ctx := context.Background()
	require.NoError(t, indexer.Rebuild(ctx, c.ids[0]))

	// detach ids[1] from ids[0]
	require.NoError(t, c.profiles.SetSponsor(ctx, c.ids[1], nil))
	require.NoError(t, indexer.Remove(ctx, c.ids[1]))

	ancestors, err := c.genealogy.Ancestors(ctx, c.ids[1], 0)
	require.NoError(t, err)
	assert.Empty(t, ancestors)

	ancestors, err = c.genealogy.Ancestors(ctx, c.ids[3], 0)
	require.NoError(t, err)
	require.Len(t, ancestors, 2)
	assert.Equal(t, c.ids[1], ancestors[1].AncestorID)

	descendants, err := c.genealogy.Descendants(ctx, c.ids[0], 0)
	require.NoError(t, err)
	assert.Empty(t, descendants)
}

type call struct {
	kind   string
	userID uuid.UUID
}

type recordingIndexer struct {
	mu      sync.Mutex
	calls   []call
	block   chan struct{}
	started chan struct{}
	err     error
}

func (r *recordingIndexer) record(kind string, userID uuid.UUID) error {
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.block != nil {
		<-r.block
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{kind: kind, userID: userID})

	return r.err
}

func (r *recordingIndexer) Rebuild(_ context.Context, userID uuid.UUID) error {
	return r.record("rebuild", userID)
}

func (r *recordingIndexer) Remove(_ context.Context, userID uuid.UUID) error {
	return r.record("remove", userID)
}

func (r *recordingIndexer) snapshot() []call {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]call(nil), r.calls...)
}

type countingMetrics struct {
	mu      sync.Mutex
	results map[string]int
}

func (m *countingMetrics) ObserveGenealogyJob(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.results == nil {
		m.results = map[string]int{}
	}
	m.results[result]++
}

func (m *countingMetrics) SetGenealogyQueueDepth(int) {}

func (m *countingMetrics) count(result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.results[result]
}

func TestAsyncIndexer_AppliesJobs(t *testing.T) {
	c := newChain(t, 3)
	async := NewAsyncIndexer(NewSyncIndexer(c.genealogy, c.profiles, 20), AsyncOptions{Workers: 2, QueueSize: 8, Logger: newDiscardLogger()})
	async.Start()
	t.Cleanup(func() { _ = async.Stop(context.Background()) })

	require.NoError(t, async.Rebuild(context.Background(), c.ids[0]))

	assert.Eventually(t, func() bool {
		ancestors, err := c.genealogy.Ancestors(context.Background(), c.ids[2], 0)

		return err == nil && len(ancestors) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestAsyncIndexer_CoalescesQueuedJobs(t *testing.T) {
	next := &recordingIndexer{block: make(chan struct{}), started: make(chan struct{}, 4)}
	metrics := &countingMetrics{}
	async := NewAsyncIndexer(next, AsyncOptions{Workers: 1, QueueSize: 8, Logger: newDiscardLogger(), Metrics: metrics})
	async.Start()
	ctx := context.Background()

	busy, target := uuid.New(), uuid.New()
	require.NoError(t, async.Rebuild(ctx, busy))
	<-next.started // the only worker is now held on busy

	require.NoError(t, async.Rebuild(ctx, target))
	require.NoError(t, async.Rebuild(ctx, target))
	require.NoError(t, async.Remove(ctx, target))
	assert.Equal(t, 1, async.QueueLen())

	close(next.block)
	require.NoError(t, async.Stop(ctx))

	assert.Equal(t, []call{
		{kind: "rebuild", userID: busy},
		{kind: "remove", userID: target},
	}, next.snapshot())
	assert.Equal(t, 2, metrics.count("coalesced"))
	assert.Equal(t, 2, metrics.count("ok"))
}

func TestAsyncIndexer_FullQueueRunsInline(t *testing.T) {
	next := &recordingIndexer{}
	async := NewAsyncIndexer(next, AsyncOptions{Workers: 1, QueueSize: 1, Logger: newDiscardLogger()})
	ctx := context.Background()

	// not started: the first job waits in the queue, the second overflows
	first, second := uuid.New(), uuid.New()
	require.NoError(t, async.Rebuild(ctx, first))
	require.NoError(t, async.Rebuild(ctx, second))
	assert.Equal(t, []call{{kind: "rebuild", userID: second}}, next.snapshot())

	require.NoError(t, async.Stop(ctx))
	assert.Equal(t, []call{
		{kind: "rebuild", userID: second},
		{kind: "rebuild", userID: first},
	}, next.snapshot())
}

func TestAsyncIndexer_AfterStopRunsInline(t *testing.T) {
	next := &recordingIndexer{err: errors.New("boom")}
	metrics := &countingMetrics{}
	async := NewAsyncIndexer(next, AsyncOptions{Logger: newDiscardLogger(), Metrics: metrics})
	async.Start()
	require.NoError(t, async.Stop(context.Background()))

	err := async.Remove(context.Background(), uuid.New())
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, 1, metrics.count("failed"))
}
