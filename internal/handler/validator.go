package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"custody-core/pkg/chains"
)

// RegisterValidations 挂载自定义校验规则。
// "supported_chain" 以链注册表为准，加链时不用再改请求结构体的 tag。
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("supported_chain", func(fl validator.FieldLevel) bool {
			return chains.IsSupported(chains.Chain(fl.Field().String()))
		})
	}
}
