package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bereal1995/jotrends-server/domain"
	"github.com/bereal1995/jotrends-server/internal/rest/request"
	"github.com/bereal1995/jotrends-server/internal/rest/response"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// ItemHandler represent the httphandler for items
type ItemHandler struct {
	Service domain.ItemUsecase
}

func NewItemHandler(svc domain.ItemUsecase) *ItemHandler {
	return &ItemHandler{
		Service: svc,
	}
}

// List serves the paginated feed. Mode defaults to recent; past mode
// requires startDate and endDate.
func (h *ItemHandler) List(c *gin.Context) {
	var req request.ListItems
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		return
	}
	if req.Mode == "" {
		req.Mode = string(domain.ModeRecent)
	}

	page, err := h.Service.List(c.Request.Context(), req.ToDomain(callerID(c)))
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, response.NewItemPageFromDomain(&page))
}

// GetByID will get the item by given id
func (h *ItemHandler) GetByID(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	it, err := h.Service.Get(c.Request.Context(), id, callerID(c))
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, response.NewItemFromDomain(&it))
}

// Store will store the item by given request body
func (h *ItemHandler) Store(c *gin.Context) {
	var req request.CreateItem
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		return
	}

	it, err := h.Service.Create(c.Request.Context(), mustCallerID(c), req.ToDomain())
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, response.NewItemFromDomain(&it))
}

// Update rewrites title and body. Only the author may do this.
func (h *ItemHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}
	var req request.UpdateItem
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		return
	}

	it, err := h.Service.Update(c.Request.Context(), id, mustCallerID(c), req.Title, req.Body)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, response.NewItemFromDomain(&it))
}

// Delete will delete the item by given param
func (h *ItemHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	if err := h.Service.Delete(c.Request.Context(), id, mustCallerID(c)); err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// Like adds a like record if not exists and returns the fresh count
func (h *ItemHandler) Like(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	stats, err := h.Service.Like(c.Request.Context(), id, mustCallerID(c))
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             stats.ItemID,
		"likes":          stats.Likes,
		"comments_count": stats.CommentsCount,
		"is_liked":       true,
	})
}

// Unlike removes a like record if exists
func (h *ItemHandler) Unlike(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	stats, err := h.Service.Unlike(c.Request.Context(), id, mustCallerID(c))
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             stats.ItemID,
		"likes":          stats.Likes,
		"comments_count": stats.CommentsCount,
		"is_liked":       false,
	})
}

func paramID(c *gin.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// callerID returns the authenticated user id, 0 for anonymous requests.
func callerID(c *gin.Context) int64 {
	if v, exists := c.Get("user_id"); exists {
		return v.(int64)
	}
	return 0
}

// mustCallerID is for routes behind AuthMiddleware where the id is
// guaranteed to be present.
func mustCallerID(c *gin.Context) int64 {
	return c.GetInt64("user_id")
}

// getStatusCode will get the code of the error from the usecases
func getStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	logrus.Error(err)
	switch {
	case errors.Is(err, domain.ErrBadParamInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
