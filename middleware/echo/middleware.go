package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"
	qskema "github.com/reoring/qskema"
	"github.com/reoring/qskema/middleware"
)

// ValidateQuery decodes the request query string via schema s, stores
// Decoded[map[string]any] in the context on success, or returns 400 with
// Issues when the schema itself is invalid.
func ValidateQuery(s qskema.Schema, opt qskema.DecodeOpt) echo.MiddlewareFunc {
	if !opt.Presence.Collect && opt.IssueSink == nil {
		opt = middleware.DefaultDecodeOpt()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			dm, err := qskema.DecodeWithMeta(c.Request().Context(), s, qskema.Query(c.Request().URL.RawQuery), opt)
			if err != nil {
				if iss, ok := qskema.AsIssues(err); ok {
					return c.JSON(http.StatusBadRequest, middleware.ErrorPayload(iss))
				}
				return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
			}
			ctx := middleware.ContextWithDecoded(c.Request().Context(), dm)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetDecoded fetches Decoded[map[string]any] from echo.Context.
func GetDecoded(c echo.Context) (qskema.Decoded[map[string]any], bool) {
	return middleware.DecodedFromContext[map[string]any](c.Request().Context())
}
