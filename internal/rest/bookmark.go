package rest

import (
	"net/http"
	"strconv"

	"github.com/bereal1995/jotrends-server/domain"
	"github.com/bereal1995/jotrends-server/internal/rest/request"
	"github.com/bereal1995/jotrends-server/internal/rest/response"
	"github.com/gin-gonic/gin"
)

// BookmarkHandler represent the httphandler for bookmarks
type BookmarkHandler struct {
	Service domain.BookmarkUsecase
}

func NewBookmarkHandler(svc domain.BookmarkUsecase) *BookmarkHandler {
	return &BookmarkHandler{
		Service: svc,
	}
}

// List returns the caller's bookmarks, newest first, keyset paginated.
func (h *BookmarkHandler) List(c *gin.Context) {
	cursor, _ := strconv.ParseInt(c.Query("cursor"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)

	page, err := h.Service.List(c.Request.Context(), mustCallerID(c), cursor, limit)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, response.NewBookmarkPageFromDomain(&page))
}

// Store bookmarks an item for the caller. Idempotent.
func (h *BookmarkHandler) Store(c *gin.Context) {
	var req request.Bookmark
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		return
	}

	bm, err := h.Service.Create(c.Request.Context(), mustCallerID(c), req.ItemID)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": bm.ID, "item_id": bm.ItemID})
}

// Delete removes the bookmark on the item in the path.
func (h *BookmarkHandler) Delete(c *gin.Context) {
	itemID, err := paramID(c, "itemId")
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	if err := h.Service.Delete(c.Request.Context(), mustCallerID(c), itemID); err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
