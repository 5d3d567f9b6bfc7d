package request

import "github.com/bereal1995/jotrends-server/domain"

type CreateItem struct {
	Title string `json:"title" binding:"required,max=255"`
	Body  string `json:"body" binding:"required"`
	Link  string `json:"link" binding:"required,max=2048"`
}

func (r *CreateItem) ToDomain() domain.CreateItemInput {
	return domain.CreateItemInput{
		Title: r.Title,
		Body:  r.Body,
		Link:  r.Link,
	}
}

type UpdateItem struct {
	Title string `json:"title" binding:"required,max=255"`
	Body  string `json:"body" binding:"required"`
}

// ListItems carries the feed query params. Date bounds are validated again
// by the service; the binding tags just reject junk before it gets there.
type ListItems struct {
	Mode      string `form:"mode" binding:"omitempty,oneof=recent trending past"`
	Cursor    int64  `form:"cursor" binding:"omitempty,min=1"`
	Limit     int64  `form:"limit" binding:"omitempty,min=1,max=50"`
	StartDate string `form:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"endDate" binding:"omitempty,datetime=2006-01-02"`
}

func (r *ListItems) ToDomain(userID int64) domain.ItemListOptions {
	return domain.ItemListOptions{
		Mode:      domain.ListMode(r.Mode),
		Cursor:    r.Cursor,
		Limit:     r.Limit,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		UserID:    userID,
	}
}
