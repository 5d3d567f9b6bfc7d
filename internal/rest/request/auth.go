package request

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var usernameFormat = regexp.MustCompile(`^[a-z0-9]{5,20}$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernameFormat.MatchString(fl.Field().String())
		})
	}
}

type Auth struct {
	Username string `json:"username" binding:"required,username"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type Bookmark struct {
	ItemID int64 `json:"item_id" binding:"required,min=1"`
}
