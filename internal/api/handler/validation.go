package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"research-agenda/backend/internal/model"
	"research-agenda/backend/pkg/response"
)

var registerOnce sync.Once

// RegisterValidators 向 gin 的校验引擎注册自定义规则
// 字段名取 json/form 标签，使错误详情与请求字段一致
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" {
				name = strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			}
			if name == "-" {
				return ""
			}
			return name
		})
		// hhmm: 24 小时制 HH:MM
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			_, _, err := model.ParseReminderTime(fl.Field().String())
			return err == nil
		})
	})
}

// bindJSON 解析请求体；失败时写入 400/413 并返回 false
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

// bindQuery 解析查询参数
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	var (
		maxErr  *http.MaxBytesError
		verrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &maxErr):
		response.PayloadTooLarge(c)
	case errors.As(err, &verrs):
		response.ValidationError(c, fieldErrors(verrs))
	case errors.As(err, &typeErr):
		response.ValidationError(c, []response.FieldError{{
			Field:   typeErr.Field,
			Rule:    "type",
			Message: fmt.Sprintf("%s 类型应为 %s", typeErr.Field, typeErr.Type.String()),
		}})
	default:
		response.ValidationError(c, []response.FieldError{{
			Field:   "body",
			Rule:    "format",
			Message: "请求格式无效",
		}})
	}
}

func fieldErrors(verrs validator.ValidationErrors) []response.FieldError {
	out := make([]response.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, response.FieldError{
			Field:   fieldPath(fe),
			Rule:    fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

// fieldPath 去掉顶层结构体名，如 SaveTagRequest.name → name
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return field + " 不能为空"
	case "min":
		return fmt.Sprintf("%s 不能小于 %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s 不能大于 %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s 必须为 [%s] 之一", field, fe.Param())
	case "hexcolor":
		return field + " 必须为十六进制颜色"
	case "url":
		return field + " 必须为合法 URL"
	case "hhmm":
		return field + " 格式应为 HH:MM"
	default:
		return fmt.Sprintf("%s 校验失败 (%s)", field, fe.Tag())
	}
}
