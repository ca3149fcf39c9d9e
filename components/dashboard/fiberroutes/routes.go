package fiberroutes

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/sirupsen/logrus"

	dashboard "github.com/goliatone/go-rinsight/components/dashboard"
	"github.com/goliatone/go-rinsight/components/dashboard/httpapi"
)

const sessionLocal = "rinsight.session"

// Config wires a fiber app with the rInsight page, API and event streams.
type Config struct {
	App       *fiber.App
	Service   *dashboard.Service
	API       *httpapi.Handlers
	Renderer  dashboard.Renderer
	Broadcast *dashboard.BroadcastHook
	BasePath  string
	Logger    logrus.FieldLogger
}

// Register mounts the page (GET base), the JSON API (base/api/*) and the
// WebSocket event stream (base/ws).
func Register(cfg Config) error {
	if cfg.App == nil {
		return errors.New("fiberroutes: app is required")
	}
	if cfg.Service == nil {
		return errors.New("fiberroutes: service is required")
	}
	if cfg.API == nil {
		cfg.API = httpapi.NewHandlers(cfg.Service, nil, cfg.Logger)
	}
	base := strings.TrimRight(cfg.BasePath, "/")

	mux := http.NewServeMux()
	cfg.API.Mount(mux, base)
	cfg.App.All(base+"/api/*", adaptor.HTTPHandler(mux))

	if cfg.Renderer != nil {
		page := pageHandler(cfg.Service, cfg.Renderer, base)
		cfg.App.Get(base+"/", page)
		if base != "" {
			cfg.App.Get(base, page)
		}
	}

	if cfg.Broadcast != nil {
		registerWebSocket(cfg.App, cfg.Broadcast, base+"/ws")
	}
	return nil
}

func pageHandler(service *dashboard.Service, renderer dashboard.Renderer, base string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Get(httpapi.SessionHeader)
		if sessionID == "" {
			sessionID = c.Cookies(httpapi.SessionCookie)
		}
		ctrl, err := service.Open(c.UserContext(), sessionID)
		if err != nil {
			return respondError(c, fiber.StatusInternalServerError, err)
		}
		c.Cookie(&fiber.Cookie{
			Name:     httpapi.SessionCookie,
			Value:    ctrl.SessionID(),
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		var buf bytes.Buffer
		if err := dashboard.RenderPage(renderer, ctrl.Snapshot(c.UserContext()), base, &buf); err != nil {
			return respondError(c, fiber.StatusInternalServerError, err)
		}
		c.Type("html", "utf-8")
		return c.Send(buf.Bytes())
	}
}

func registerWebSocket(app *fiber.App, hook *dashboard.BroadcastHook, path string) {
	app.Use(path, func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		session := strings.TrimSpace(c.Query("session"))
		if session == "" {
			session = c.Cookies(httpapi.SessionCookie)
		}
		if session == "" {
			return respondError(c, fiber.StatusBadRequest, errors.New("session is required"))
		}
		c.Locals(sessionLocal, session)
		return c.Next()
	})
	app.Get(path, websocket.New(func(conn *websocket.Conn) {
		session, _ := conn.Locals(sessionLocal).(string)
		events, cancel := hook.Subscribe(session)
		defer cancel()
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					cancel()
					return
				}
			}
		}()
		for event := range events {
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}))
}

func respondError(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
