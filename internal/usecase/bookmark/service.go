package bookmark

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/bereal1995/jotrends-server/domain"
)

const DefaultPageLimit = 20

type service struct {
	bookmarkRepo domain.BookmarkRepository
	itemRepo     domain.ItemRepository
	userRepo     domain.UserRepository
}

var _ domain.BookmarkUsecase = (*service)(nil)

func NewService(bookmarkRepo domain.BookmarkRepository, itemRepo domain.ItemRepository, userRepo domain.UserRepository) *service {
	return &service{
		bookmarkRepo: bookmarkRepo,
		itemRepo:     itemRepo,
		userRepo:     userRepo,
	}
}

// Create bookmarks an item; bookmarking twice is absorbed as a no-op.
func (s *service) Create(ctx context.Context, userID, itemID int64) (domain.Bookmark, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return domain.Bookmark{}, err
	}

	bm := domain.Bookmark{UserID: userID, ItemID: itemID}
	if err := s.bookmarkRepo.Store(ctx, &bm); err != nil && !errors.Is(err, domain.ErrConflict) {
		return domain.Bookmark{}, err
	}
	bm.Item = item
	bm.Item.IsBookmarked = true
	return bm, nil
}

func (s *service) Delete(ctx context.Context, userID, itemID int64) error {
	err := s.bookmarkRepo.Delete(ctx, userID, itemID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (s *service) List(ctx context.Context, userID, cursor, limit int64) (domain.BookmarkPage, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	var page domain.BookmarkPage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		page.TotalCount, err = s.bookmarkRepo.CountByUser(gctx, userID)
		return
	})
	g.Go(func() (err error) {
		page.List, err = s.bookmarkRepo.Fetch(gctx, userID, cursor, limit)
		return
	})
	if err := g.Wait(); err != nil {
		return domain.BookmarkPage{}, err
	}

	if len(page.List) == 0 {
		return page, nil
	}

	if err := s.fillItems(ctx, userID, page.List); err != nil {
		return domain.BookmarkPage{}, err
	}

	page.EndCursor = page.List[len(page.List)-1].ID
	hasNext, err := s.bookmarkRepo.HasAfter(ctx, userID, page.EndCursor)
	if err != nil {
		return domain.BookmarkPage{}, err
	}
	page.HasNextPage = hasNext
	if !hasNext {
		page.EndCursor = 0
	}
	return page, nil
}

func (s *service) fillItems(ctx context.Context, userID int64, bookmarks []domain.Bookmark) error {
	ids := make([]int64, len(bookmarks))
	for i := range bookmarks {
		ids[i] = bookmarks[i].ItemID
	}

	items, err := s.itemRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}

	likedMap, err := s.itemRepo.LikedMap(ctx, userID, ids)
	if err != nil {
		return err
	}

	userIDs := make([]int64, 0, len(items))
	seen := map[int64]bool{}
	for i := range items {
		if !seen[items[i].User.ID] {
			seen[items[i].User.ID] = true
			userIDs = append(userIDs, items[i].User.ID)
		}
	}
	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return err
	}
	userMap := make(map[int64]domain.User, len(users))
	for _, u := range users {
		userMap[u.ID] = u
	}

	itemMap := make(map[int64]domain.Item, len(items))
	for i := range items {
		it := items[i]
		if u, ok := userMap[it.User.ID]; ok {
			it.User = u
		}
		it.IsLiked = likedMap[it.ID]
		it.IsBookmarked = true
		itemMap[it.ID] = it
	}
	for i := range bookmarks {
		bookmarks[i].Item = itemMap[bookmarks[i].ItemID]
	}
	return nil
}
