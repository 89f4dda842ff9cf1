package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/user/myzend/internal/model"
)

// 注册领域校验标签，供 binding 标签直接使用
func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("emotion", func(fl validator.FieldLevel) bool {
		return model.ValidEmotion(fl.Field().String())
	})
	v.RegisterValidation("interaction", func(fl validator.FieldLevel) bool {
		return model.ValidInteractionType(fl.Field().String())
	})
}
