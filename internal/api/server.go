package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/hungryfaceai/webrtc-signaling-server/internal/config"
	"github.com/hungryfaceai/webrtc-signaling-server/internal/metrics"
	"github.com/hungryfaceai/webrtc-signaling-server/internal/registry"
	"github.com/hungryfaceai/webrtc-signaling-server/internal/ws"
)

// NewServer assembles the HTTP surface around the relay: the websocket
// endpoint, a health check, Prometheus metrics, and optional static client
// assets. The recover middleware is the fault barrier keeping a handler panic
// from taking the process down.
func NewServer(cfg *config.Config, wsh *ws.Handler, reg *registry.Registry) *fiber.App {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		rooms, conns := reg.Stats()
		return c.JSON(fiber.Map{"status": "ok", "rooms": rooms, "connections": conns})
	})

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	app.Get(cfg.WS.Path, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get(cfg.WS.Path, websocket.New(wsh.Handle()))

	if cfg.HTTP.StaticDir != "" {
		app.Static("/", cfg.HTTP.StaticDir)
	}

	return app
}
