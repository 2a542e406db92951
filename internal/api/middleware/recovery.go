package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"

	"github.com/sellerdesk/ebay-bridge/internal/metrics"
)

// Recovery returns Echo middleware that recovers from panics, logs the stack
// trace with the request id assigned by RequestLog, and returns a 500 to the
// client. Recovered panics increment the panic counter so a crash loop shows
// up on the dashboard even when nobody is tailing logs.
func Recovery(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					buf := make([]byte, 4096)
					n := runtime.Stack(buf, false)

					metrics.HTTPPanicsRecovered.Inc()

					requestID, _ := c.Get("request_id").(string)
					log.Error("panic recovered",
						"error", fmt.Sprint(r),
						"request_id", requestID,
						"method", c.Request().Method,
						"path", c.Request().URL.Path,
						"stack", string(buf[:n]),
					)

					err = c.JSON(http.StatusInternalServerError, map[string]string{
						"error": "internal server error",
					})
				}
			}()
			return next(c)
		}
	}
}
