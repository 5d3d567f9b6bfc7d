package item

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bereal1995/jotrends-server/domain"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 50

	// MaxPastRangeDays bounds the historical window, inclusive of both ends
	MaxPastRangeDays = 6
)

var dateFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type Service struct {
	itemRepo   domain.ItemRepository
	userRepo   domain.UserRepository
	recalc     domain.RecalcWorker
	searchSync domain.SearchSyncWorker
}

var _ domain.ItemUsecase = (*Service)(nil)

// NewService will create a new item service object
func NewService(ir domain.ItemRepository, ur domain.UserRepository, rw domain.RecalcWorker, sw domain.SearchSyncWorker) *Service {
	return &Service{
		itemRepo:   ir,
		userRepo:   ur,
		recalc:     rw,
		searchSync: sw,
	}
}

func (s *Service) Create(ctx context.Context, userID int64, in domain.CreateItemInput) (domain.Item, error) {
	link, host, err := normalizeLink(in.Link)
	if err != nil {
		return domain.Item{}, err
	}

	publisher := domain.Publisher{
		Name:   host,
		Domain: host,
	}
	if err := s.itemRepo.GetOrCreatePublisher(ctx, &publisher); err != nil {
		return domain.Item{}, err
	}

	item := domain.Item{
		Title:     in.Title,
		Body:      in.Body,
		Link:      link,
		User:      domain.User{ID: userID},
		Publisher: publisher,
	}
	if err := s.itemRepo.Store(ctx, &item); err != nil {
		return domain.Item{}, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return domain.Item{}, err
	}
	item.User = user

	s.searchSync.SendUpsert(searchDocument(&item))
	return item, nil
}

func (s *Service) Get(ctx context.Context, id, userID int64) (domain.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return domain.Item{}, err
	}
	items := []domain.Item{item}
	if err := s.fillUserFlags(ctx, userID, items); err != nil {
		return domain.Item{}, err
	}
	return items[0], nil
}

// List serves one feed page in the requested mode. All three modes share the
// same contract: totalCount over the eligible set, the page itself, and a
// probe-backed hasNextPage, with the endCursor only set while more pages
// exist.
func (s *Service) List(ctx context.Context, opts domain.ItemListOptions) (domain.ItemPage, error) {
	if opts.Limit <= 0 || opts.Limit > MaxPageLimit {
		opts.Limit = DefaultPageLimit
	}

	var (
		page domain.ItemPage
		err  error
	)
	switch opts.Mode {
	case domain.ModeTrending:
		page, err = s.listTrending(ctx, opts)
	case domain.ModePast:
		page, err = s.listPast(ctx, opts)
	case domain.ModeRecent, "":
		page, err = s.listRecent(ctx, opts)
	default:
		return domain.ItemPage{}, fmt.Errorf("%w: unknown list mode %q", domain.ErrBadParamInput, opts.Mode)
	}
	if err != nil {
		return domain.ItemPage{}, err
	}

	if err := s.fillUserDetails(ctx, page.List); err != nil {
		return domain.ItemPage{}, err
	}
	if err := s.fillUserFlags(ctx, opts.UserID, page.List); err != nil {
		return domain.ItemPage{}, err
	}
	if !page.HasNextPage {
		page.EndCursor = 0
	}
	return page, nil
}

func (s *Service) listRecent(ctx context.Context, opts domain.ItemListOptions) (page domain.ItemPage, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		page.TotalCount, err = s.itemRepo.CountAll(gctx)
		return
	})
	g.Go(func() (err error) {
		page.List, err = s.itemRepo.FetchRecent(gctx, domain.RecentCursor{ID: opts.Cursor}, opts.Limit)
		return
	})
	if err = g.Wait(); err != nil {
		return domain.ItemPage{}, err
	}

	if len(page.List) == 0 {
		return page, nil
	}
	page.EndCursor = page.List[len(page.List)-1].ID
	page.HasNextPage, err = s.itemRepo.HasRecentAfter(ctx, domain.RecentCursor{ID: page.EndCursor})
	if err != nil {
		return domain.ItemPage{}, err
	}
	return page, nil
}

func (s *Service) listTrending(ctx context.Context, opts domain.ItemListOptions) (page domain.ItemPage, err error) {
	cursor := s.trendingCursor(ctx, opts.Cursor)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		page.TotalCount, err = s.itemRepo.CountTrending(gctx, domain.TrendingScoreFloor)
		return
	})
	g.Go(func() (err error) {
		page.List, err = s.itemRepo.FetchTrending(gctx, cursor, domain.TrendingScoreFloor, opts.Limit)
		return
	})
	if err = g.Wait(); err != nil {
		return domain.ItemPage{}, err
	}

	if len(page.List) == 0 {
		return page, nil
	}
	last := page.List[len(page.List)-1]
	page.EndCursor = last.ID
	page.HasNextPage, err = s.itemRepo.HasTrendingAfter(ctx, domain.TrendingCursor{
		ID:      last.ID,
		Score:   last.Stats.Score,
		Bounded: true,
	}, domain.TrendingScoreFloor)
	if err != nil {
		return domain.ItemPage{}, err
	}
	return page, nil
}

// trendingCursor resolves the public cursor (a bare item id) into the
// compound keyset boundary. A cursor pointing at a now-deleted item must not
// break pagination, so on a missing stats row only the id bound survives.
func (s *Service) trendingCursor(ctx context.Context, cursor int64) domain.TrendingCursor {
	if cursor == 0 {
		return domain.TrendingCursor{}
	}
	stats, err := s.itemRepo.GetStats(ctx, cursor)
	if err != nil {
		return domain.TrendingCursor{ID: cursor}
	}
	return domain.TrendingCursor{ID: cursor, Score: stats.Score, Bounded: true}
}

func (s *Service) listPast(ctx context.Context, opts domain.ItemListOptions) (page domain.ItemPage, err error) {
	start, end, err := parsePastRange(opts.StartDate, opts.EndDate)
	if err != nil {
		return domain.ItemPage{}, err
	}

	cursor := s.pastCursor(ctx, opts.Cursor)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		page.TotalCount, err = s.itemRepo.CountInRange(gctx, start, end)
		return
	})
	g.Go(func() (err error) {
		page.List, err = s.itemRepo.FetchPast(gctx, cursor, start, end, opts.Limit)
		return
	})
	if err = g.Wait(); err != nil {
		return domain.ItemPage{}, err
	}

	if len(page.List) == 0 {
		return page, nil
	}
	last := page.List[len(page.List)-1]
	page.EndCursor = last.ID
	page.HasNextPage, err = s.itemRepo.HasPastAfter(ctx, domain.PastCursor{
		ID:      last.ID,
		Likes:   last.Stats.Likes,
		Bounded: true,
	}, start, end)
	if err != nil {
		return domain.ItemPage{}, err
	}
	return page, nil
}

func (s *Service) pastCursor(ctx context.Context, cursor int64) domain.PastCursor {
	if cursor == 0 {
		return domain.PastCursor{}
	}
	stats, err := s.itemRepo.GetStats(ctx, cursor)
	if err != nil {
		return domain.PastCursor{ID: cursor}
	}
	return domain.PastCursor{ID: cursor, Likes: stats.Likes, Bounded: true}
}

// parsePastRange validates the historical window: both bounds present, both
// formatted YYYY-MM-DD, spanning at most MaxPastRangeDays inclusive. The
// window covers [start 00:00:00, end 23:59:59].
func parsePastRange(startDate, endDate string) (start, end time.Time, err error) {
	if startDate == "" || endDate == "" {
		return start, end, fmt.Errorf("%w: startDate or endDate is missing", domain.ErrBadParamInput)
	}
	if !dateFormat.MatchString(startDate) || !dateFormat.MatchString(endDate) {
		return start, end, fmt.Errorf("%w: date format should be YYYY-MM-DD", domain.ErrBadParamInput)
	}

	start, err = time.ParseInLocation("2006-01-02", startDate, time.Local)
	if err != nil {
		return start, end, fmt.Errorf("%w: %s is not a valid date", domain.ErrBadParamInput, startDate)
	}
	end, err = time.ParseInLocation("2006-01-02", endDate, time.Local)
	if err != nil {
		return start, end, fmt.Errorf("%w: %s is not a valid date", domain.ErrBadParamInput, endDate)
	}

	if end.Before(start) || end.Sub(start) > MaxPastRangeDays*24*time.Hour {
		return start, end, fmt.Errorf("%w: date range should be less than %d days", domain.ErrBadParamInput, MaxPastRangeDays+1)
	}

	end = end.Add(24*time.Hour - time.Second)
	return start, end, nil
}

func (s *Service) Update(ctx context.Context, itemID, userID int64, title, body string) (domain.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return domain.Item{}, err
	}
	if item.User.ID != userID {
		return domain.Item{}, domain.ErrForbidden
	}

	item.Title = title
	item.Body = body
	if err := s.itemRepo.Update(ctx, &item); err != nil {
		return domain.Item{}, err
	}

	updated, err := s.Get(ctx, itemID, userID)
	if err != nil {
		return domain.Item{}, err
	}
	s.searchSync.SendUpsert(searchDocument(&updated))
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, itemID, userID int64) error {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.User.ID != userID {
		return domain.ErrForbidden
	}

	if err := s.itemRepo.Delete(ctx, itemID); err != nil {
		return err
	}
	s.searchSync.SendDelete(itemID)
	return nil
}

// Like records a like and recounts the item's likes from the like rows.
// A duplicate like is a no-op, not an error: the final count is always
// exactly the number of like rows that exist, regardless of interleaving.
// The ranking refresh rides on the recalc worker, off the request path.
func (s *Service) Like(ctx context.Context, itemID, userID int64) (domain.ItemStats, error) {
	if _, err := s.itemRepo.GetStats(ctx, itemID); err != nil {
		return domain.ItemStats{}, err
	}

	err := s.itemRepo.AddLikeRecord(ctx, itemID, userID)
	if err != nil && !errors.Is(err, domain.ErrConflict) {
		return domain.ItemStats{}, err
	}

	return s.syncLikes(ctx, itemID)
}

// Unlike removes a like; unliking an item that was never liked is a no-op.
func (s *Service) Unlike(ctx context.Context, itemID, userID int64) (domain.ItemStats, error) {
	if _, err := s.itemRepo.GetStats(ctx, itemID); err != nil {
		return domain.ItemStats{}, err
	}

	err := s.itemRepo.RemoveLikeRecord(ctx, itemID, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.ItemStats{}, err
	}

	return s.syncLikes(ctx, itemID)
}

func (s *Service) syncLikes(ctx context.Context, itemID int64) (domain.ItemStats, error) {
	likes, err := s.itemRepo.CountLikes(ctx, itemID)
	if err != nil {
		return domain.ItemStats{}, err
	}
	if err := s.itemRepo.UpdateLikes(ctx, itemID, likes); err != nil {
		return domain.ItemStats{}, err
	}

	s.recalc.Send(domain.RecalcTask{ItemID: itemID, Kind: domain.RecalcScore})

	stats, err := s.itemRepo.GetStats(ctx, itemID)
	if err != nil {
		return domain.ItemStats{}, err
	}
	return stats, nil
}

// fillUserDetails merges author info into the page in one batch query.
func (s *Service) fillUserDetails(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}

	seen := map[int64]bool{}
	ids := make([]int64, 0, len(items))
	for i := range items {
		if !seen[items[i].User.ID] {
			seen[items[i].User.ID] = true
			ids = append(ids, items[i].User.ID)
		}
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	userMap := make(map[int64]domain.User, len(users))
	for _, u := range users {
		userMap[u.ID] = u
	}
	for i := range items {
		if u, ok := userMap[items[i].User.ID]; ok {
			items[i].User = u
		}
	}
	return nil
}

// fillUserFlags stamps the requesting user's like/bookmark state onto the
// page via two batch lookups. Anonymous callers keep the zero flags.
func (s *Service) fillUserFlags(ctx context.Context, userID int64, items []domain.Item) error {
	if userID == 0 || len(items) == 0 {
		return nil
	}

	ids := make([]int64, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}

	var likedMap, bookmarkedMap map[int64]bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		likedMap, err = s.itemRepo.LikedMap(gctx, userID, ids)
		return
	})
	g.Go(func() (err error) {
		bookmarkedMap, err = s.itemRepo.BookmarkedMap(gctx, userID, ids)
		return
	})
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range items {
		items[i].IsLiked = likedMap[items[i].ID]
		items[i].IsBookmarked = bookmarkedMap[items[i].ID]
	}
	return nil
}

// normalizeLink checks the submitted URL and derives the publisher domain
// from its hostname. Links without a scheme get https.
func normalizeLink(link string) (normalized, host string, err error) {
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		link = "https://" + link
	}
	u, err := url.Parse(link)
	if err != nil || u.Hostname() == "" {
		return "", "", fmt.Errorf("%w: invalid link", domain.ErrBadParamInput)
	}
	return u.String(), u.Hostname(), nil
}

func searchDocument(it *domain.Item) domain.ItemDocument {
	return domain.ItemDocument{
		ID:        it.ID,
		Title:     it.Title,
		Body:      it.Body,
		Link:      it.Link,
		Author:    it.Author,
		Username:  it.User.Username,
		Publisher: it.Publisher.Name,
		CreatedAt: it.CreatedAt,
	}
}
