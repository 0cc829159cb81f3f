package respond

import (
	"github.com/gin-gonic/gin"

	"resumelens-backend/internal/shared/telemetry"
)

// ErrorBody is the standardized error payload. Error carries the single
// human-readable message shown to the user; Code is machine-readable;
// RetryAfter is a backoff hint in seconds for throttled requests.
type ErrorBody struct {
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string) {
	ErrorWithRetry(c, status, code, message, 0)
}

// ErrorWithRetry sends a standardized error response with a retry hint.
func ErrorWithRetry(c *gin.Context, status int, code, message string, retryAfter int) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorBody{
		Error:      message,
		Code:       code,
		RetryAfter: retryAfter,
	})
}
