package logging

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// InstrumentClient attaches request logging hooks to a resty client.
// Every exchange is logged at debug level; transport failures at warn.
func InstrumentClient(c *resty.Client) *resty.Client {
	c.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		DebugContext(r.Context(), "http_request_start",
			"method", r.Method,
			"url", r.URL,
			"attempt", r.Attempt,
		)
		return nil
	})

	c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		HTTPExchange(resp.Request, resp.StatusCode(), resp.Time(), len(resp.Body()))
		return nil
	})

	c.OnError(func(r *resty.Request, err error) {
		args := []any{
			"method", r.Method,
			"url", r.URL,
			"attempt", r.Attempt,
			"error", err.Error(),
		}
		if v, ok := err.(*resty.ResponseError); ok && v.Response != nil {
			args = append(args, "status_code", v.Response.StatusCode())
		}
		WarnContext(r.Context(), "http_request_failed", args...)
	})

	return c
}

// HTTPExchange logs one completed HTTP exchange.
func HTTPExchange(r *resty.Request, statusCode int, duration time.Duration, bytes int) {
	DebugContext(r.Context(), "http_request",
		"method", r.Method,
		"url", r.URL,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
		"bytes", bytes,
	)
}
