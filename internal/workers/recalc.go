package workers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bereal1995/jotrends-server/domain"
	"github.com/bereal1995/jotrends-server/internal/ranking"
)

// recalcWorker refreshes denormalized item counters off the request path.
// Tasks are batched and deduplicated before execution: two likes on the same
// item within one flush window cost one recompute. Every recompute re-reads
// the authoritative rows instead of applying a delta, so a lost or failed
// task only means staleness until the next mutation of the same kind.
type recalcWorker struct {
	itemRepo    domain.ItemRepository
	commentRepo domain.CommentRepository
	ch          chan domain.RecalcTask
}

var _ domain.RecalcWorker = (*recalcWorker)(nil)

func NewRecalcWorker(itemRepo domain.ItemRepository, commentRepo domain.CommentRepository) *recalcWorker {
	return &recalcWorker{
		itemRepo:    itemRepo,
		commentRepo: commentRepo,
		ch:          make(chan domain.RecalcTask, 1024),
	}
}

// Send enqueues a task without blocking the caller. A full queue drops the
// task; the counter self-corrects on the next mutation.
func (w *recalcWorker) Send(task domain.RecalcTask) {
	select {
	case w.ch <- task:
	default:
		logrus.Infof("recalc queue is full, %s task for item %d dropped", task.Kind, task.ItemID)
	}
}

func (w *recalcWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	const batchSize = 100
	batch := make([]domain.RecalcTask, 0, batchSize)
	for {
		select {
		case task := <-w.ch:
			batch = append(batch, task)
			if len(batch) == batchSize {
				w.flush(ctx, batch)
				batch = make([]domain.RecalcTask, 0, batchSize)
			}
		case <-ticker.C:
			w.flush(ctx, batch)
			batch = make([]domain.RecalcTask, 0, batchSize)
		case <-ctx.Done():
			logrus.Info("shutting down recalc worker, flushing remaining tasks...")
			w.flush(context.Background(), batch)
			return
		}
	}
}

func (w *recalcWorker) flush(ctx context.Context, batch []domain.RecalcTask) {
	seen := make(map[domain.RecalcTask]bool, len(batch))
	for _, task := range batch {
		if seen[task] {
			continue
		}
		seen[task] = true

		var err error
		switch task.Kind {
		case domain.RecalcScore:
			err = w.refreshScore(ctx, task.ItemID)
		case domain.RecalcComments:
			err = w.refreshCommentsCount(ctx, task.ItemID)
		default:
			logrus.Errorf("unsupported recalc kind: %v", task.Kind)
			continue
		}
		if err != nil {
			// logged only, never retried: counters are derivable fresh from
			// source rows, so staleness is bounded and self-healing
			logrus.Errorf("recalc %s for item %d failed: %v", task.Kind, task.ItemID, err)
		}
	}
}

// refreshScore recounts like rows and feeds the count and the item's age to
// the ranking formula.
func (w *recalcWorker) refreshScore(ctx context.Context, itemID int64) error {
	item, err := w.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	likes, err := w.itemRepo.CountLikes(ctx, itemID)
	if err != nil {
		return err
	}
	if err := w.itemRepo.UpdateLikes(ctx, itemID, likes); err != nil {
		return err
	}

	score := ranking.Score(likes, ranking.AgeHours(item.CreatedAt, time.Now()))
	return w.itemRepo.UpdateScore(ctx, itemID, score)
}

func (w *recalcWorker) refreshCommentsCount(ctx context.Context, itemID int64) error {
	count, err := w.commentRepo.CountByItem(ctx, itemID)
	if err != nil {
		return err
	}
	return w.itemRepo.UpdateCommentsCount(ctx, itemID, count)
}
