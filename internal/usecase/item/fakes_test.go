package item

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bereal1995/jotrends-server/domain"
)

// fakeItemRepo is an in-memory domain.ItemRepository with the same ordering
// semantics as the mysql implementation, so the pagination contract can be
// exercised without a database.
type fakeItemRepo struct {
	mu         sync.Mutex
	items      map[int64]*domain.Item
	likes      map[[2]int64]bool
	bookmarks  map[[2]int64]bool
	publishers map[string]domain.Publisher
	nextID     int64
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{
		items:      map[int64]*domain.Item{},
		likes:      map[[2]int64]bool{},
		bookmarks:  map[[2]int64]bool{},
		publishers: map[string]domain.Publisher{},
	}
}

func (f *fakeItemRepo) seed(it domain.Item) domain.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	it.ID = f.nextID
	it.Stats.ItemID = it.ID
	if it.CreatedAt.IsZero() {
		it.CreatedAt = time.Now()
	}
	f.items[it.ID] = &it
	return it
}

func (f *fakeItemRepo) Store(_ context.Context, it *domain.Item) error {
	stored := f.seed(*it)
	*it = stored
	return nil
}

func (f *fakeItemRepo) GetByID(_ context.Context, id int64) (domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return domain.Item{}, domain.ErrNotFound
	}
	return *it, nil
}

func (f *fakeItemRepo) GetByIDs(_ context.Context, ids []int64) ([]domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := f.items[id]; ok {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (f *fakeItemRepo) Update(_ context.Context, it *domain.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.items[it.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Title = it.Title
	stored.Body = it.Body
	return nil
}

func (f *fakeItemRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeItemRepo) GetOrCreatePublisher(_ context.Context, p *domain.Publisher) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.publishers[p.Domain]; ok {
		*p = existing
		return nil
	}
	p.ID = int64(len(f.publishers) + 1)
	f.publishers[p.Domain] = *p
	return nil
}

func (f *fakeItemRepo) CountAll(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.items)), nil
}

func (f *fakeItemRepo) CountTrending(_ context.Context, minScore float64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, it := range f.items {
		if it.Stats.Score >= minScore {
			n++
		}
	}
	return n, nil
}

func (f *fakeItemRepo) CountInRange(_ context.Context, start, end time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, it := range f.items {
		if !it.CreatedAt.Before(start) && !it.CreatedAt.After(end) {
			n++
		}
	}
	return n, nil
}

func (f *fakeItemRepo) recentSet(cursor domain.RecentCursor) []domain.Item {
	var out []domain.Item
	for _, it := range f.items {
		if cursor.ID != 0 && it.ID >= cursor.ID {
			continue
		}
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (f *fakeItemRepo) trendingSet(cursor domain.TrendingCursor, minScore float64) []domain.Item {
	var out []domain.Item
	for _, it := range f.items {
		if it.Stats.Score < minScore {
			continue
		}
		if cursor.ID != 0 {
			if cursor.Bounded {
				if !(it.Stats.Score < cursor.Score || (it.Stats.Score == cursor.Score && it.ID < cursor.ID)) {
					continue
				}
			} else if it.ID >= cursor.ID {
				continue
			}
		}
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stats.Score != out[j].Stats.Score {
			return out[i].Stats.Score > out[j].Stats.Score
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (f *fakeItemRepo) pastSet(cursor domain.PastCursor, start, end time.Time) []domain.Item {
	var out []domain.Item
	for _, it := range f.items {
		if it.CreatedAt.Before(start) || it.CreatedAt.After(end) {
			continue
		}
		if cursor.ID != 0 {
			if cursor.Bounded {
				if !(it.Stats.Likes < cursor.Likes || (it.Stats.Likes == cursor.Likes && it.ID < cursor.ID)) {
					continue
				}
			} else if it.ID >= cursor.ID {
				continue
			}
		}
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stats.Likes != out[j].Stats.Likes {
			return out[i].Stats.Likes > out[j].Stats.Likes
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func clip(items []domain.Item, limit int64) []domain.Item {
	if int64(len(items)) > limit {
		return items[:limit]
	}
	return items
}

func (f *fakeItemRepo) FetchRecent(_ context.Context, cursor domain.RecentCursor, limit int64) ([]domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return clip(f.recentSet(cursor), limit), nil
}

func (f *fakeItemRepo) FetchTrending(_ context.Context, cursor domain.TrendingCursor, minScore float64, limit int64) ([]domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return clip(f.trendingSet(cursor, minScore), limit), nil
}

func (f *fakeItemRepo) FetchPast(_ context.Context, cursor domain.PastCursor, start, end time.Time, limit int64) ([]domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return clip(f.pastSet(cursor, start, end), limit), nil
}

func (f *fakeItemRepo) HasRecentAfter(_ context.Context, cursor domain.RecentCursor) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.recentSet(cursor)) > 0, nil
}

func (f *fakeItemRepo) HasTrendingAfter(_ context.Context, cursor domain.TrendingCursor, minScore float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.trendingSet(cursor, minScore)) > 0, nil
}

func (f *fakeItemRepo) HasPastAfter(_ context.Context, cursor domain.PastCursor, start, end time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pastSet(cursor, start, end)) > 0, nil
}

func (f *fakeItemRepo) GetStats(_ context.Context, itemID int64) (domain.ItemStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok {
		return domain.ItemStats{}, domain.ErrNotFound
	}
	return it.Stats, nil
}

func (f *fakeItemRepo) UpdateLikes(_ context.Context, itemID int64, likes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok {
		return domain.ErrNotFound
	}
	it.Stats.Likes = likes
	return nil
}

func (f *fakeItemRepo) UpdateScore(_ context.Context, itemID int64, score float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok {
		return domain.ErrNotFound
	}
	it.Stats.Score = score
	return nil
}

func (f *fakeItemRepo) UpdateCommentsCount(_ context.Context, itemID int64, count int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok {
		return domain.ErrNotFound
	}
	it.Stats.CommentsCount = count
	return nil
}

func (f *fakeItemRepo) AddLikeRecord(_ context.Context, itemID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int64{itemID, userID}
	if f.likes[key] {
		return domain.ErrConflict
	}
	f.likes[key] = true
	return nil
}

func (f *fakeItemRepo) RemoveLikeRecord(_ context.Context, itemID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int64{itemID, userID}
	if !f.likes[key] {
		return domain.ErrNotFound
	}
	delete(f.likes, key)
	return nil
}

func (f *fakeItemRepo) CountLikes(_ context.Context, itemID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for key := range f.likes {
		if key[0] == itemID {
			n++
		}
	}
	return n, nil
}

func (f *fakeItemRepo) LikedMap(_ context.Context, userID int64, itemIDs []int64) (map[int64]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[int64]bool{}
	for _, id := range itemIDs {
		if f.likes[[2]int64{id, userID}] {
			out[id] = true
		}
	}
	return out, nil
}

func (f *fakeItemRepo) BookmarkedMap(_ context.Context, userID int64, itemIDs []int64) (map[int64]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[int64]bool{}
	for _, id := range itemIDs {
		if f.bookmarks[[2]int64{id, userID}] {
			out[id] = true
		}
	}
	return out, nil
}

// fakeUserRepo resolves users from a fixed table.
type fakeUserRepo struct {
	users map[int64]domain.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByIDs(_ context.Context, ids []int64) ([]domain.User, error) {
	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (f *fakeUserRepo) Insert(_ context.Context, u *domain.User) error {
	u.ID = int64(len(f.users) + 1)
	f.users[u.ID] = *u
	return nil
}

// fakeRecalcWorker records tasks instead of running them.
type fakeRecalcWorker struct {
	mu    sync.Mutex
	tasks []domain.RecalcTask
}

func (f *fakeRecalcWorker) Start(context.Context) {}

func (f *fakeRecalcWorker) Send(task domain.RecalcTask) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
}

func (f *fakeRecalcWorker) sent() []domain.RecalcTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.RecalcTask(nil), f.tasks...)
}

// fakeSearchWorker records what would be pushed to the index.
type fakeSearchWorker struct {
	mu      sync.Mutex
	upserts []domain.ItemDocument
	deletes []int64
}

func (f *fakeSearchWorker) Start(context.Context) {}

func (f *fakeSearchWorker) SendUpsert(doc domain.ItemDocument) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, doc)
}

func (f *fakeSearchWorker) SendDelete(itemID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, itemID)
}
