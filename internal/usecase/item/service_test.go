package item

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bereal1995/jotrends-server/domain"
)

func newTestService(itemRepo *fakeItemRepo) (*Service, *fakeUserRepo, *fakeRecalcWorker, *fakeSearchWorker) {
	userRepo := &fakeUserRepo{users: map[int64]domain.User{
		1: {ID: 1, Username: faker.Username()},
		2: {ID: 2, Username: faker.Username()},
	}}
	recalc := &fakeRecalcWorker{}
	search := &fakeSearchWorker{}
	return NewService(itemRepo, userRepo, recalc, search), userRepo, recalc, search
}

func seedItems(repo *fakeItemRepo, n int) []domain.Item {
	items := make([]domain.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, repo.seed(domain.Item{
			Title: faker.Sentence(),
			Body:  faker.Paragraph(),
			Link:  "https://example.com/" + faker.Word(),
			User:  domain.User{ID: 1},
		}))
	}
	return items
}

// walk consumes the feed page by page until hasNextPage goes false and
// returns every id seen, in order.
func walk(t *testing.T, svc *Service, opts domain.ItemListOptions) []int64 {
	t.Helper()

	var seen []int64
	for page := 0; ; page++ {
		require.Less(t, page, 100, "pagination did not terminate")

		res, err := svc.List(context.Background(), opts)
		require.NoError(t, err)
		for _, it := range res.List {
			seen = append(seen, it.ID)
		}
		if !res.HasNextPage {
			assert.Zero(t, res.EndCursor, "endCursor must be unset on the last page")
			return seen
		}
		require.NotZero(t, res.EndCursor)
		opts.Cursor = res.EndCursor
	}
}

func TestListRecentFullTraversal(t *testing.T) {
	repo := newFakeItemRepo()
	svc, _, _, _ := newTestService(repo)
	seedItems(repo, 45)

	seen := walk(t, svc, domain.ItemListOptions{Mode: domain.ModeRecent, Limit: 20})

	require.Len(t, seen, 45, "each item exactly once, no gaps")
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i-1], seen[i], "recent feed must be id descending")
	}
}

func TestListRecentDefaultLimit(t *testing.T) {
	repo := newFakeItemRepo()
	svc, _, _, _ := newTestService(repo)
	seedItems(repo, 30)

	res, err := svc.List(context.Background(), domain.ItemListOptions{Mode: domain.ModeRecent})
	require.NoError(t, err)
	assert.Len(t, res.List, DefaultPageLimit)
	assert.EqualValues(t, 30, res.TotalCount)
	assert.True(t, res.HasNextPage)

	res, err = svc.List(context.Background(), domain.ItemListOptions{Mode: domain.ModeRecent, Limit: MaxPageLimit + 1})
	require.NoError(t, err)
	assert.Len(t, res.List, DefaultPageLimit, "out-of-range limit falls back to the default")
}

func TestListUnknownMode(t *testing.T) {
	repo := newFakeItemRepo()
	svc, _, _, _ := newTestService(repo)

	_, err := svc.List(context.Background(), domain.ItemListOptions{Mode: "hot"})
	assert.ErrorIs(t, err, domain.ErrBadParamInput)
}

func TestListTrendingExcludesBelowFloor(t *testing.T) {
	repo := newFakeItemRepo()
	svc, _, _, _ := newTestService(repo)

	visible := repo.seed(domain.Item{User: domain.User{ID: 1}, Stats: domain.ItemStats{Score: 0.5}})
	repo.seed(domain.Item{User: domain.User{ID: 1}, Stats: domain.ItemStats{Score: 0.0001}})
	atFloor := repo.seed(domain.Item{User: domain.User{ID: 1}, Stats: domain.ItemStats{Score: domain.TrendingScoreFloor}})

	res, err := svc.List(context.Background(), domain.ItemListOptions{Mode: domain.ModeTrending, Limit: 10})
	require.NoError(t, err)

	assert.EqualValues(t, 2, res.TotalCount, "items below the floor don't count")
	require.Len(t, res.List, 2)
	assert.Equal(t, visible.ID, res.List[0].ID)
	assert.Equal(t, atFloor.ID, res.List[1].ID, "score equal to the floor is still eligible")
	assert.False(t, res.HasNextPage)
}

func TestListTrendingEqualScoresNoSkipOrDup(t *testing.T) {
	repo := newFakeItemRepo()
	svc, _, _, _ := newTestService(repo)

	// 9 items sharing one score plus a few around it, paged by 4 so the
	// boundary repeatedly lands inside the tie group
	for i := 0; i < 9; i++ {
		repo.seed(domain.Item{User: domain.User{ID: 1}, Stats: domain.ItemStats{Score: 0.25}})
	}
	repo.seed(domain.Item{User: domain.User{ID: 1}, Stats: domain.ItemStats{Score: 0.9}})
	repo.seed(domain.Item{User: domain.User{ID: 1}, Stats: domain.ItemStats{Score: 0.01}})

	seen := walk(t, svc, domain.ItemListOptions{Mode: domain.ModeTrending, Limit: 4})

	require.Len(t, seen, 11)
	unique := map[int64]bool{}
	for _, id := range seen {
		assert.False(t, unique[id], "item %d appeared twice", id)
		unique[id] = true
	}
}

func TestListTrendingCursorItemGone(t *testing.T) {
	repo := newFakeItemRepo()
	svc, _, _, _ := newTestService(repo)
	items := seedItems(repo, 10)
	for i := range items {
		require.NoError(t, repo.UpdateScore(context.Background(), items[i].ID, 0.5))
	}

	res, err := svc.List(context.Background(), domain.ItemListOptions{Mode: domain.ModeTrending, Limit: 5})
	require.NoError(t, err)
	cursor := res.EndCursor
	require.NotZero(t, cursor)

	// the cursor item disappears between page requests
	require.NoError(t, repo.Delete(context.Background(), cursor))

	res, err = svc.List(context.Background(), domain.ItemListOptions{Mode: domain.ModeTrending, Limit: 5, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, res.List, 5, "pagination degrades to the id bound instead of failing")
	for _, it := range res.List {
		assert.Less(t, it.ID, cursor)
	}
}

func TestListPastRangeValidation(t *testing.T) {
	repo := newFakeItemRepo()
	svc, _, _, _ := newTestService(repo)

	tests := []struct {
		name      string
		startDate string
		endDate   string
		wantErr   bool
	}{
		{name: "both missing", wantErr: true},
		{name: "end missing", startDate: "2024-01-01", wantErr: true},
		{name: "bad format", startDate: "01/01/2024", endDate: "2024-01-02", wantErr: true},
		{name: "not a real date", startDate: "2024-13-40", endDate: "2024-01-02", wantErr: true},
		{name: "end before start", startDate: "2024-01-05", endDate: "2024-01-01", wantErr: true},
		{name: "nine day window", startDate: "2024-01-01", endDate: "2024-01-10", wantErr: true},
		{name: "single day", startDate: "2024-01-01", endDate: "2024-01-01"},
		{name: "widest allowed window", startDate: "2024-01-01", endDate: "2024-01-07"},
		{name: "one past the widest", startDate: "2024-01-01", endDate: "2024-01-08", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.List(context.Background(), domain.ItemListOptions{
				Mode:      domain.ModePast,
				StartDate: tc.startDate,
				EndDate:   tc.endDate,
			})
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrBadParamInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestListPastOrdersByLikesWithinWindow(t *testing.T) {
	repo := newFakeItemRepo()
	svc, _, _, _ := newTestService(repo)

	day := time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)
	inWindow1 := repo.seed(domain.Item{User: domain.User{ID: 1}, CreatedAt: day, Stats: domain.ItemStats{Likes: 3}})
	inWindow2 := repo.seed(domain.Item{User: domain.User{ID: 1}, CreatedAt: day.Add(time.Hour), Stats: domain.ItemStats{Likes: 10}})
	repo.seed(domain.Item{User: domain.User{ID: 1}, CreatedAt: day.AddDate(0, 0, 10), Stats: domain.ItemStats{Likes: 99}})

	res, err := svc.List(context.Background(), domain.ItemListOptions{
		Mode:      domain.ModePast,
		StartDate: "2024-03-10",
		EndDate:   "2024-03-11",
		Limit:     10,
	})
	require.NoError(t, err)

	assert.EqualValues(t, 2, res.TotalCount)
	require.Len(t, res.List, 2)
	assert.Equal(t, inWindow2.ID, res.List[0].ID, "most liked first")
	assert.Equal(t, inWindow1.ID, res.List[1].ID)
}

func TestListFillsUserFlagsForCaller(t *testing.T) {
	repo := newFakeItemRepo()
	svc, _, _, _ := newTestService(repo)
	items := seedItems(repo, 3)

	repo.likes[[2]int64{items[0].ID, 2}] = true
	repo.bookmarks[[2]int64{items[1].ID, 2}] = true

	res, err := svc.List(context.Background(), domain.ItemListOptions{Mode: domain.ModeRecent, Limit: 10, UserID: 2})
	require.NoError(t, err)
	require.Len(t, res.List, 3)

	byID := map[int64]domain.Item{}
	for _, it := range res.List {
		byID[it.ID] = it
	}
	assert.True(t, byID[items[0].ID].IsLiked)
	assert.False(t, byID[items[0].ID].IsBookmarked)
	assert.True(t, byID[items[1].ID].IsBookmarked)
	assert.False(t, byID[items[2].ID].IsLiked)

	// anonymous callers keep zero flags
	res, err = svc.List(context.Background(), domain.ItemListOptions{Mode: domain.ModeRecent, Limit: 10})
	require.NoError(t, err)
	for _, it := range res.List {
		assert.False(t, it.IsLiked)
		assert.False(t, it.IsBookmarked)
	}
}

func TestCreateNormalizesLinkAndSyncsSearch(t *testing.T) {
	repo := newFakeItemRepo()
	svc, _, _, search := newTestService(repo)

	created, err := svc.Create(context.Background(), 1, domain.CreateItemInput{
		Title: "interesting read",
		Body:  "worth a look",
		Link:  "example.com/posts/42",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/posts/42", created.Link)
	assert.Equal(t, "example.com", created.Publisher.Domain)
	assert.NotZero(t, created.ID)
	assert.NotEmpty(t, created.User.Username)

	require.Len(t, search.upserts, 1)
	assert.Equal(t, created.ID, search.upserts[0].ID)

	_, err = svc.Create(context.Background(), 1, domain.CreateItemInput{Link: "ht tp://%%"})
	assert.ErrorIs(t, err, domain.ErrBadParamInput)
}

func TestLikeIsIdempotent(t *testing.T) {
	repo := newFakeItemRepo()
	svc, _, recalc, _ := newTestService(repo)
	it := seedItems(repo, 1)[0]

	stats, err := svc.Like(context.Background(), it.ID, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Likes)

	// second like from the same user changes nothing
	stats, err = svc.Like(context.Background(), it.ID, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Likes)

	stats, err = svc.Like(context.Background(), it.ID, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Likes)

	for _, task := range recalc.sent() {
		assert.Equal(t, domain.RecalcTask{ItemID: it.ID, Kind: domain.RecalcScore}, task)
	}
	assert.Len(t, recalc.sent(), 3, "every like mutation schedules a score refresh")
}

func TestUnlikeNeverLikedIsNoop(t *testing.T) {
	repo := newFakeItemRepo()
	svc, _, _, _ := newTestService(repo)
	it := seedItems(repo, 1)[0]

	stats, err := svc.Unlike(context.Background(), it.ID, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.Likes)
}

func TestLikeMissingItem(t *testing.T) {
	repo := newFakeItemRepo()
	svc, _, _, _ := newTestService(repo)

	_, err := svc.Like(context.Background(), 404, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateRequiresOwnership(t *testing.T) {
	repo := newFakeItemRepo()
	svc, _, _, _ := newTestService(repo)
	it := seedItems(repo, 1)[0]

	_, err := svc.Update(context.Background(), it.ID, 2, "new title", "new body")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := svc.Update(context.Background(), it.ID, 1, "new title", "new body")
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
}

func TestDeleteRequiresOwnershipAndSyncsSearch(t *testing.T) {
	repo := newFakeItemRepo()
	svc, _, _, search := newTestService(repo)
	it := seedItems(repo, 1)[0]

	err := svc.Delete(context.Background(), it.ID, 2)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, svc.Delete(context.Background(), it.ID, 1))
	assert.Equal(t, []int64{it.ID}, search.deletes)

	err = svc.Delete(context.Background(), it.ID, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetReturnsMissingAsNotFound(t *testing.T) {
	repo := newFakeItemRepo()
	svc, _, _, _ := newTestService(repo)

	_, err := svc.Get(context.Background(), 12345, 0)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
