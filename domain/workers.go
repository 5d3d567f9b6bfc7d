package domain

import "context"

// RecalcKind selects which denormalized counters a task refreshes.
type RecalcKind int8

const (
	// RecalcScore recounts like rows and refreshes the ranking score
	RecalcScore RecalcKind = iota + 1
	// RecalcComments recounts comment rows into ItemStats.CommentsCount
	RecalcComments
)

func (k RecalcKind) String() string {
	switch k {
	case RecalcScore:
		return "SCORE"
	case RecalcComments:
		return "COMMENTS"
	default:
		return "UNKNOWN"
	}
}

// RecalcTask asks for one item's counters to be recomputed from source rows.
type RecalcTask struct {
	ItemID int64
	Kind   RecalcKind
}

// RecalcWorker executes counter recomputes off the request path. Send never
// blocks and failures are only logged: a dropped or failed task leaves a
// stale counter that self-corrects on the next mutation of the same kind.
type RecalcWorker interface {
	Start(ctx context.Context)
	Send(task RecalcTask)
}

// SearchSyncWorker forwards item changes to the search index, best effort.
type SearchSyncWorker interface {
	Start(ctx context.Context)
	SendUpsert(doc ItemDocument)
	SendDelete(itemID int64)
}
