package middleware

import echo "github.com/labstack/echo/v4"

// NoStore marks every response as uncacheable so browsers and intermediaries
// always come back for current upstream state.
func NoStore() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(echo.HeaderCacheControl, "no-store, max-age=0")
			h.Set("Pragma", "no-cache")
			return next(c)
		}
	}
}
