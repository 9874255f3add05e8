package response

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/joyhomes/service-booking/internal/common/domain"
)

type envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
	Meta       interface{} `json:"meta,omitempty"`
	Error      *errorBody  `json:"error,omitempty"`
}

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type errorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details []domain.FieldIssue `json:"details,omitempty"`
}

// Success writes a 200 response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes a 201 response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with a page of items.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	PaginatedWithMeta(c, items, total, page, limit, nil)
}

// PaginatedWithMeta writes a page of items with extra top-level metadata.
func PaginatedWithMeta(c *gin.Context, items interface{}, total int64, page, limit int, meta interface{}) {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, envelope{
		Success: true,
		Data:    items,
		Pagination: &pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
		Meta: meta,
	})
}

// BadRequest writes a 400 VALIDATION_ERROR with a plain message.
func BadRequest(c *gin.Context, message string) {
	writeError(c, http.StatusBadRequest, string(domain.CodeValidation), message, nil)
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, message string) {
	writeError(c, http.StatusUnauthorized, string(domain.CodeUnauthorized), message, nil)
}

// Forbidden writes a 403 response.
func Forbidden(c *gin.Context, message string) {
	writeError(c, http.StatusForbidden, string(domain.CodeForbidden), message, nil)
}

// BindError writes a 400 for a failed request binding, listing field issues
// when the failure came from struct validation.
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		issues := make([]domain.FieldIssue, 0, len(verrs))
		for _, fe := range verrs {
			issues = append(issues, domain.FieldIssue{
				Field:   lowerFirst(fe.Field()),
				Message: fieldMessage(fe),
			})
		}
		writeError(c, http.StatusBadRequest, string(domain.CodeValidation), "Dữ liệu không hợp lệ", issues)
		return
	}
	writeError(c, http.StatusBadRequest, string(domain.CodeValidation), "Dữ liệu không hợp lệ: "+err.Error(), nil)
}

// Error maps err to an HTTP response. DomainErrors map to their status code;
// everything else becomes a generic 500 and is attached to the gin context so
// the logging middleware records the cause.
func Error(c *gin.Context, err error) {
	de, ok := domain.AsDomainError(err)
	if !ok {
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Đã có lỗi xảy ra, vui lòng thử lại sau", nil)
		return
	}
	writeError(c, StatusFor(de.Code), string(de.Code), de.Message, de.Details)
}

// StatusFor returns the HTTP status for a domain error code.
func StatusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation, domain.CodeInvalidState, domain.CodeBusinessRule:
		return http.StatusBadRequest
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, status int, code, message string, details []domain.FieldIssue) {
	c.JSON(status, envelope{
		Success: false,
		Error: &errorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "bắt buộc"
	case "gt", "gte", "min":
		return "phải lớn hơn " + fe.Param()
	case "lte", "max":
		return "phải nhỏ hơn hoặc bằng " + fe.Param()
	case "oneof":
		return "phải là một trong: " + fe.Param()
	case "email":
		return "email không hợp lệ"
	case "uuid":
		return "mã định danh không hợp lệ"
	default:
		return "không hợp lệ (" + fe.Tag() + ")"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// RegisterJSONTagNames makes gin's validator report fields by their json
// names so issue lists match the request body.
func RegisterJSONTagNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}
