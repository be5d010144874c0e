package response

import "github.com/gin-gonic/gin"

const (
	CodeOK              = 0
	CodeWarning         = 20001
	CodeBadRequest      = 40000
	CodeInvalidLanguage = 40001
	CodeNotFound        = 40400
	CodeInternalServer  = 50000
)

type APIResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func OK(c *gin.Context, data any) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

// Warn reports an action that completed with a user-facing warning.
func Warn(c *gin.Context, message string, data any) {
	c.JSON(200, APIResponse{
		Code:    CodeWarning,
		Message: message,
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}
