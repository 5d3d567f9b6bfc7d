package workers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bereal1995/jotrends-server/domain"
	"github.com/bereal1995/jotrends-server/internal/ranking"
)

// statsRecorder stubs the item repository around a single item and records
// every counter write.
type statsRecorder struct {
	domain.ItemRepository
	item domain.Item

	mu         sync.Mutex
	scoreCalls int
	lastScore  float64
	lastLikes  int64
	lastCount  int64
	likeRows   int64
}

func (r *statsRecorder) GetByID(_ context.Context, id int64) (domain.Item, error) {
	if id != r.item.ID {
		return domain.Item{}, domain.ErrNotFound
	}
	return r.item, nil
}

func (r *statsRecorder) CountLikes(context.Context, int64) (int64, error) {
	return r.likeRows, nil
}

func (r *statsRecorder) UpdateLikes(_ context.Context, _ int64, likes int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLikes = likes
	return nil
}

func (r *statsRecorder) UpdateScore(_ context.Context, _ int64, score float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scoreCalls++
	r.lastScore = score
	return nil
}

func (r *statsRecorder) UpdateCommentsCount(_ context.Context, _ int64, count int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastCount = count
	return nil
}

func (r *statsRecorder) commentsCount() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastCount
}

type commentCounter struct {
	domain.CommentRepository
	liveComments int64
}

func (c *commentCounter) CountByItem(context.Context, int64) (int64, error) {
	return c.liveComments, nil
}

func TestFlushRefreshesScoreFromSourceRows(t *testing.T) {
	itemRepo := &statsRecorder{
		item:     domain.Item{ID: 1, CreatedAt: time.Now().Add(-10 * time.Hour)},
		likeRows: 25,
	}
	w := NewRecalcWorker(itemRepo, &commentCounter{})

	w.flush(context.Background(), []domain.RecalcTask{{ItemID: 1, Kind: domain.RecalcScore}})

	assert.EqualValues(t, 25, itemRepo.lastLikes, "likes recounted from like rows")
	// the age moved a bit between flush and assertion, so compare with slack
	expected := ranking.Score(25, 10)
	assert.InDelta(t, expected, itemRepo.lastScore, expected*0.01)
}

func TestFlushRefreshesCommentsCount(t *testing.T) {
	itemRepo := &statsRecorder{item: domain.Item{ID: 1}}
	w := NewRecalcWorker(itemRepo, &commentCounter{liveComments: 7})

	w.flush(context.Background(), []domain.RecalcTask{{ItemID: 1, Kind: domain.RecalcComments}})

	assert.EqualValues(t, 7, itemRepo.lastCount)
}

func TestFlushDeduplicatesBatch(t *testing.T) {
	itemRepo := &statsRecorder{item: domain.Item{ID: 1}}
	w := NewRecalcWorker(itemRepo, &commentCounter{})

	batch := make([]domain.RecalcTask, 0, 10)
	for i := 0; i < 10; i++ {
		batch = append(batch, domain.RecalcTask{ItemID: 1, Kind: domain.RecalcScore})
	}
	w.flush(context.Background(), batch)

	assert.Equal(t, 1, itemRepo.scoreCalls, "duplicate tasks collapse into one recompute")
}

func TestFlushSurvivesMissingItem(t *testing.T) {
	itemRepo := &statsRecorder{item: domain.Item{ID: 1}}
	w := NewRecalcWorker(itemRepo, &commentCounter{})

	// item 404 fails, item 1 must still be processed
	w.flush(context.Background(), []domain.RecalcTask{
		{ItemID: 404, Kind: domain.RecalcScore},
		{ItemID: 1, Kind: domain.RecalcScore},
	})

	assert.Equal(t, 1, itemRepo.scoreCalls)
}

func TestStartDrainsQueueOnShutdown(t *testing.T) {
	itemRepo := &statsRecorder{item: domain.Item{ID: 1}}
	w := NewRecalcWorker(itemRepo, &commentCounter{liveComments: 3})

	w.Send(domain.RecalcTask{ItemID: 1, Kind: domain.RecalcComments})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	// the queued task flushes on the first tick
	require.Eventually(t, func() bool {
		return itemRepo.commentsCount() == 3
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}
