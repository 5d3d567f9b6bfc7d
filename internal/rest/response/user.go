package response

import "github.com/bereal1995/jotrends-server/domain"

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func NewUserFromDomain(u *domain.User) User {
	return User{
		ID:       u.ID,
		Username: u.Username,
	}
}

type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Bookmark struct {
	ID        int64  `json:"id"`
	CreatedAt string `json:"created_at"`
	Item      Item   `json:"item"`
}

type BookmarkPage struct {
	List       []Bookmark `json:"list"`
	TotalCount int64      `json:"total_count"`
	PageInfo   PageInfo   `json:"page_info"`
}

func NewBookmarkPageFromDomain(page *domain.BookmarkPage) BookmarkPage {
	list := make([]Bookmark, len(page.List))
	for i := range page.List {
		b := &page.List[i]
		list[i] = Bookmark{
			ID:        b.ID,
			CreatedAt: b.CreatedAt.Format(DateTimeFormat),
			Item:      NewItemFromDomain(&b.Item),
		}
	}
	return BookmarkPage{
		List:       list,
		TotalCount: page.TotalCount,
		PageInfo: PageInfo{
			EndCursor:   page.EndCursor,
			HasNextPage: page.HasNextPage,
		},
	}
}
