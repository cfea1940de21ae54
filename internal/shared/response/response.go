package response

import (
	"github.com/gin-gonic/gin"
)

type ApiEnvelope struct {
	Ok    bool      `json:"ok"`
	Data  any       `json:"data,omitempty"`
	Meta  *ListMeta `json:"meta,omitempty"`
	Error *ApiError `json:"error,omitempty"`
}

type ApiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ListMeta accompanies list responses.
type ListMeta struct {
	Total int `json:"total"`
}

func NewListMeta(total int) *ListMeta {
	return &ListMeta{Total: total}
}

func Success(c *gin.Context, status int, data any, meta *ListMeta) {
	c.JSON(status, ApiEnvelope{
		Ok:   true,
		Data: data,
		Meta: meta,
	})
}

func Error(c *gin.Context, status int, errorCode string, message string, details any) {
	c.JSON(status, ApiEnvelope{
		Ok: false,
		Error: &ApiError{
			Code:    errorCode,
			Message: message,
			Details: details,
		},
	})
}

// AbortError writes the error envelope and stops the handler chain.
func AbortError(c *gin.Context, status int, errorCode string, message string) {
	Error(c, status, errorCode, message, nil)
	c.Abort()
}
