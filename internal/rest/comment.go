package rest

import (
	"net/http"

	"github.com/bereal1995/jotrends-server/domain"
	"github.com/bereal1995/jotrends-server/internal/rest/request"
	"github.com/bereal1995/jotrends-server/internal/rest/response"
	"github.com/gin-gonic/gin"
)

// CommentHandler represent the httphandler for comments
type CommentHandler struct {
	Service domain.CommentUsecase
}

func NewCommentHandler(svc domain.CommentUsecase) *CommentHandler {
	return &CommentHandler{
		Service: svc,
	}
}

// List returns the assembled two-level thread of an item.
func (h *CommentHandler) List(c *gin.Context) {
	itemID, err := paramID(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	comments, err := h.Service.List(c.Request.Context(), itemID, callerID(c))
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, response.NewCommentsFromDomain(comments))
}

// GetByID returns a single live comment with its replies.
func (h *CommentHandler) GetByID(c *gin.Context) {
	commentID, err := paramID(c, "commentId")
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	comment, err := h.Service.Get(c.Request.Context(), commentID, callerID(c), true)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, response.NewCommentFromDomain(comment))
}

// Store creates a comment or a reply on the item in the path.
func (h *CommentHandler) Store(c *gin.Context) {
	itemID, err := paramID(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}
	var req request.CreateComment
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		return
	}

	comment, err := h.Service.Create(c.Request.Context(), req.ToDomain(itemID, mustCallerID(c)))
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, response.NewCommentFromDomain(comment))
}

// Update rewrites the comment text. Only the author may do this.
func (h *CommentHandler) Update(c *gin.Context) {
	commentID, err := paramID(c, "commentId")
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}
	var req request.UpdateComment
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		return
	}

	comment, err := h.Service.Update(c.Request.Context(), commentID, mustCallerID(c), req.Text)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, response.NewCommentFromDomain(comment))
}

// Delete soft-deletes the comment. Only the author may do this.
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, err := paramID(c, "commentId")
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	if err := h.Service.Delete(c.Request.Context(), commentID, mustCallerID(c)); err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// Like adds a like record if not exists
func (h *CommentHandler) Like(c *gin.Context) {
	commentID, err := paramID(c, "commentId")
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	likes, err := h.Service.Like(c.Request.Context(), commentID, mustCallerID(c))
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": commentID, "likes": likes, "is_liked": true})
}

// Unlike removes a like record if exists
func (h *CommentHandler) Unlike(c *gin.Context) {
	commentID, err := paramID(c, "commentId")
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	likes, err := h.Service.Unlike(c.Request.Context(), commentID, mustCallerID(c))
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": commentID, "likes": likes, "is_liked": false})
}
