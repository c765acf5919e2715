package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/branch-pos-api/pkg/logger"
	"github.com/jhoicas/branch-pos-api/pkg/metrics"
)

// RequestLogger registra cada petición con su status y latencia y alimenta las métricas HTTP.
// La ruta de las métricas es el patrón registrado (/api/products/:id), no la URL concreta.
func RequestLogger(log *logger.Logger, m *metrics.Metrics) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// El ErrorHandler escribe el status definitivo.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path

		m.ObserveHTTP(c.Method(), route, status, elapsed)

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", elapsed).
			Str("user_id", userIDOf(c)).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Msg("request")
		return nil
	}
}
