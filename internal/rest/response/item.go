package response

import "github.com/bereal1995/jotrends-server/domain"

const DateTimeFormat = "2006-01-02 15:04:05"

type Item struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Link         string    `json:"link"`
	Author       string    `json:"author,omitempty"`
	CreatedAt    string    `json:"created_at"`
	UpdatedAt    string    `json:"updated_at"`
	User         User      `json:"user"`
	Publisher    Publisher `json:"publisher"`
	Stats        ItemStats `json:"item_stats"`
	IsLiked      bool      `json:"is_liked"`
	IsBookmarked bool      `json:"is_bookmarked"`
}

type ItemStats struct {
	Likes         int64   `json:"likes"`
	CommentsCount int64   `json:"comments_count"`
	Score         float64 `json:"score"`
}

type Publisher struct {
	Name    string `json:"name"`
	Domain  string `json:"domain"`
	Favicon string `json:"favicon,omitempty"`
}

// FromDomain: Domain -> Response
func NewItemFromDomain(it *domain.Item) Item {
	return Item{
		ID:        it.ID,
		Title:     it.Title,
		Body:      it.Body,
		Link:      it.Link,
		Author:    it.Author,
		CreatedAt: it.CreatedAt.Format(DateTimeFormat),
		UpdatedAt: it.UpdatedAt.Format(DateTimeFormat),
		User: User{
			ID:       it.User.ID,
			Username: it.User.Username,
		},
		Publisher: Publisher{
			Name:    it.Publisher.Name,
			Domain:  it.Publisher.Domain,
			Favicon: it.Publisher.Favicon,
		},
		Stats: ItemStats{
			Likes:         it.Stats.Likes,
			CommentsCount: it.Stats.CommentsCount,
			Score:         it.Stats.Score,
		},
		IsLiked:      it.IsLiked,
		IsBookmarked: it.IsBookmarked,
	}
}

// PageInfo mirrors the pagination envelope every list endpoint returns.
type PageInfo struct {
	EndCursor   int64 `json:"end_cursor,omitempty"`
	HasNextPage bool  `json:"has_next_page"`
}

type ItemPage struct {
	List       []Item   `json:"list"`
	TotalCount int64    `json:"total_count"`
	PageInfo   PageInfo `json:"page_info"`
}

func NewItemPageFromDomain(page *domain.ItemPage) ItemPage {
	list := make([]Item, len(page.List))
	for i := range page.List {
		list[i] = NewItemFromDomain(&page.List[i])
	}
	return ItemPage{
		List:       list,
		TotalCount: page.TotalCount,
		PageInfo: PageInfo{
			EndCursor:   page.EndCursor,
			HasNextPage: page.HasNextPage,
		},
	}
}
