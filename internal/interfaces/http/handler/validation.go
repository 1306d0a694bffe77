package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/todokit/backend/internal/domain/todo"
	"github.com/todokit/backend/internal/interfaces/http/response"
)

func init() {
	if err := registerValidators(); err != nil {
		panic(err)
	}
}

// registerValidators 向 gin 的校验引擎注册自定义规则
func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return todo.Priority(fl.Field().String()).Valid()
	})
}

// invalidParam 参数绑定或校验失败，返回 422
func invalidParam(c *gin.Context, err error) {
	response.ErrorWithDetail(c, http.StatusUnprocessableEntity, response.CodeInvalidParam,
		"Validation failed", describeBindingError(err))
}

// describeBindingError 把校验错误整理为 "field: rule" 列表
func describeBindingError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := toSnake(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+": field required")
		case "min", "max":
			parts = append(parts, fmt.Sprintf("%s: must satisfy %s=%s", field, fe.Tag(), fe.Param()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s: must be one of [%s]", field, fe.Param()))
		case "priority":
			parts = append(parts, field+": must be one of [low medium high]")
		default:
			parts = append(parts, fmt.Sprintf("%s: failed on %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// toSnake SortOrder -> sort_order
func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
