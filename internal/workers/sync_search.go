package workers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bereal1995/jotrends-server/domain"
)

const searchCallTimeout = 8 * time.Second

type searchOp int8

const (
	opUpsert searchOp = iota + 1
	opDelete
)

type searchTask struct {
	op     searchOp
	doc    domain.ItemDocument
	itemID int64
}

// searchSyncWorker pushes item changes to the search index. Strictly best
// effort: the index is a downstream consumer, failures are logged and the
// feed never depends on it.
type searchSyncWorker struct {
	index domain.SearchIndex
	ch    chan searchTask
}

var _ domain.SearchSyncWorker = (*searchSyncWorker)(nil)

func NewSearchSyncWorker(index domain.SearchIndex) *searchSyncWorker {
	return &searchSyncWorker{
		index: index,
		ch:    make(chan searchTask, 256),
	}
}

func (w *searchSyncWorker) SendUpsert(doc domain.ItemDocument) {
	w.send(searchTask{op: opUpsert, doc: doc, itemID: doc.ID})
}

func (w *searchSyncWorker) SendDelete(itemID int64) {
	w.send(searchTask{op: opDelete, itemID: itemID})
}

func (w *searchSyncWorker) send(task searchTask) {
	select {
	case w.ch <- task:
	default:
		logrus.Infof("search sync queue is full, task for item %d dropped", task.itemID)
	}
}

func (w *searchSyncWorker) Start(ctx context.Context) {
	for {
		select {
		case task := <-w.ch:
			w.run(task)
		case <-ctx.Done():
			logrus.Info("shutting down search sync worker")
			return
		}
	}
}

func (w *searchSyncWorker) run(task searchTask) {
	ctx, cancel := context.WithTimeout(context.Background(), searchCallTimeout)
	defer cancel()

	var err error
	switch task.op {
	case opUpsert:
		err = w.index.Sync(ctx, task.doc)
	case opDelete:
		err = w.index.Delete(ctx, task.itemID)
	}
	if err != nil {
		logrus.Errorf("search sync for item %d failed: %v", task.itemID, err)
	}
}
