package ginutil

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// QueryInt extracts an integer from query parameters with default value
func QueryInt(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// QueryFloatPtr parses an optional float query parameter.
// Missing or blank values yield nil; malformed values return an error.
func QueryFloatPtr(c *gin.Context, key string) (*float64, error) {
	valueStr := strings.TrimSpace(c.Query(key))
	if valueStr == "" {
		return nil, nil
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header, or "".
func BearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
