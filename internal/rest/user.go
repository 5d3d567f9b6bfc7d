package rest

import (
	"net/http"

	"github.com/bereal1995/jotrends-server/domain"
	"github.com/bereal1995/jotrends-server/internal/rest/request"
	"github.com/bereal1995/jotrends-server/internal/rest/response"
	"github.com/gin-gonic/gin"
)

// UserHandler represent the httphandler for auth and account lookups
type UserHandler struct {
	Service domain.UserUsecase
}

func NewUserHandler(svc domain.UserUsecase) *UserHandler {
	return &UserHandler{
		Service: svc,
	}
}

// Register creates an account and logs it in
func (h *UserHandler) Register(c *gin.Context) {
	var req request.Auth
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		return
	}

	user, token, err := h.Service.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, response.AuthResult{
		User:  response.NewUserFromDomain(&user),
		Token: token,
	})
}

// Login verifies credentials and issues a token
func (h *UserHandler) Login(c *gin.Context) {
	var req request.Auth
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		return
	}

	user, token, err := h.Service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, response.AuthResult{
		User:  response.NewUserFromDomain(&user),
		Token: token,
	})
}

// Me returns the authenticated user's account
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.Service.GetByID(c.Request.Context(), mustCallerID(c))
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, response.NewUserFromDomain(&user))
}
