package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"
	qskema "github.com/reoring/qskema"
	"github.com/reoring/qskema/middleware"
)

// ValidateQuery decodes the request query string using schema s with opt
// (or DefaultDecodeOpt when zero value), stores Decoded[map[string]any] in
// the request context, and on a fatal schema error returns 400 with Issues.
func ValidateQuery(s qskema.Schema, opt qskema.DecodeOpt) gin.HandlerFunc {
	// merge defaults if caller passed zero
	if !opt.Presence.Collect && opt.IssueSink == nil {
		opt = middleware.DefaultDecodeOpt()
	}
	return func(c *gin.Context) {
		dm, err := qskema.DecodeWithMeta(c.Request.Context(), s, qskema.Query(c.Request.URL.RawQuery), opt)
		if err != nil {
			if iss, ok := qskema.AsIssues(err); ok {
				c.JSON(http.StatusBadRequest, middleware.ErrorPayload(iss))
				c.Abort()
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		// store decoded in request context
		c.Request = c.Request.WithContext(middleware.ContextWithDecoded(c.Request.Context(), dm))
		c.Next()
	}
}

// GetDecoded fetches Decoded[map[string]any] from gin.Context.
func GetDecoded(c *gin.Context) (qskema.Decoded[map[string]any], bool) {
	return middleware.DecodedFromContext[map[string]any](c.Request.Context())
}
