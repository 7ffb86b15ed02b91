package v1

import "github.com/gin-gonic/gin"

// ErrorResponse represents the API error response structure
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func NewErrorResponse(c *gin.Context, code int, message string, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:  message,
		Detail: detail,
	})
}
