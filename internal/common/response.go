package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// V2Response 표준 응답 형식
type V2Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *V2Meta     `json:"meta,omitempty"`
	Error   *V2Error    `json:"error,omitempty"`
}

// V2Meta list metadata
type V2Meta struct {
	Total     int64 `json:"total"`
	Simulated *bool `json:"simulated,omitempty"`
}

// V2Error 에러 응답
type V2Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// V2Success returns a v2 success response
func V2Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, V2Response{
		Success: true,
		Data:    data,
	})
}

// V2SuccessWithMeta returns a v2 success response with list metadata
func V2SuccessWithMeta(c *gin.Context, data interface{}, meta *V2Meta) {
	c.JSON(http.StatusOK, V2Response{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// V2Created returns a v2 201 Created response
func V2Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, V2Response{
		Success: true,
		Data:    data,
	})
}

// V2ErrorResponse returns a v2 error response
func V2ErrorResponse(c *gin.Context, status int, message string, err error) {
	v2Err := &V2Error{
		Code:    getErrorCode(status),
		Message: message,
	}
	if err != nil {
		v2Err.Details = err.Error()
	}
	c.JSON(status, V2Response{
		Success: false,
		Error:   v2Err,
	})
}

// getErrorCode generates error code from HTTP status
func getErrorCode(status int) string {
	switch status {
	case 400:
		return "BAD_REQUEST"
	case 401:
		return "UNAUTHORIZED"
	case 403:
		return "FORBIDDEN"
	case 404:
		return "NOT_FOUND"
	case 409:
		return "CONFLICT"
	case 429:
		return "RATE_LIMITED"
	case 500:
		return "INTERNAL_SERVER_ERROR"
	case 502:
		return "BAD_GATEWAY"
	case 503:
		return "SERVICE_UNAVAILABLE"
	default:
		return "ERROR"
	}
}
