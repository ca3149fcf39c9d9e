package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	gocommand "github.com/goliatone/go-command"
	router "github.com/goliatone/go-router"

	dashboard "github.com/goliatone/go-rinsight/components/dashboard"
	"github.com/goliatone/go-rinsight/components/dashboard/commands"
	"github.com/goliatone/go-rinsight/components/dashboard/httpapi"
	"github.com/goliatone/go-rinsight/components/dashboard/queries"
)

// Config wires go-router with the rInsight page, JSON API and event stream.
type Config[T any] struct {
	Router    router.Router[T]
	API       *httpapi.Handlers
	Renderer  dashboard.Renderer
	Broadcast *dashboard.BroadcastHook
	BasePath  string
	Routes    RouteConfig
}

// RouteConfig customizes the paths mounted under BasePath.
type RouteConfig struct {
	HTML      string
	View      string
	Report    string
	Tabs      string
	Dates     string
	Retry     string
	Reload    string
	Search    string
	Filter    string
	Sort      string
	Theme     string
	WebSocket string
}

// Register mounts the dashboard page, the JSON API and the WebSocket event
// stream on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.API == nil || cfg.API.Sessions == nil {
		return errors.New("gorouter: api handlers are required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := strings.TrimRight(cfg.BasePath, "/")
	if base == "" {
		base = "/rinsight"
	}

	group := cfg.Router.Group(base)

	if cfg.Renderer != nil {
		group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
			sessionID, err := openSession(ctx, cfg.API)
			if err != nil {
				return respondFailure(ctx, cfg.API, err)
			}
			snapshot, err := cfg.API.View.Query(ctx.Context(), queries.ViewInput{SessionID: sessionID})
			if err != nil {
				return respondFailure(ctx, cfg.API, err)
			}
			var buf bytes.Buffer
			if err := dashboard.RenderPage(cfg.Renderer, snapshot, base, &buf); err != nil {
				return respondError(ctx, http.StatusInternalServerError, err)
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Send(buf.Bytes())
		}))
	}

	registerAPI(group, cfg.API, routes)

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

func registerAPI[T any](r router.Router[T], api *httpapi.Handlers, routes RouteConfig) {
	r.Get(routes.View, router.WrapHandler(func(ctx router.Context) error {
		sessionID, err := openSession(ctx, api)
		if err != nil {
			return respondFailure(ctx, api, err)
		}
		return respondView(ctx, api, sessionID)
	}))

	r.Get(routes.Report, router.WrapHandler(func(ctx router.Context) error {
		sessionID, err := openSession(ctx, api)
		if err != nil {
			return respondFailure(ctx, api, err)
		}
		report, err := api.ReportLookup.Query(ctx.Context(), queries.ReportInput{
			SessionID: sessionID,
			Category:  ctx.Query("category"),
		})
		if err != nil {
			return respondFailure(ctx, api, err)
		}
		ctx.SetHeader("Content-Type", "text/plain; charset=utf-8")
		ctx.SetHeader("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
		return ctx.Send([]byte(report.Content))
	}))

	r.Post(routes.Tabs, command(api, api.SelectTab, func(in *commands.SelectTabInput, id string) { in.SessionID = id }))
	r.Post(routes.Dates, command(api, api.ChangeDates, func(in *commands.ChangeDateRangeInput, id string) { in.SessionID = id }))
	r.Post(routes.Retry, command(api, api.Retry, func(in *commands.RetryInput, id string) { in.SessionID = id }))
	r.Post(routes.Reload, command(api, api.Reload, func(in *commands.ReloadSourceInput, id string) { in.SessionID = id }))
	r.Post(routes.Search, command(api, api.Search, func(in *commands.SearchKeywordsInput, id string) { in.SessionID = id }))
	r.Post(routes.Filter, command(api, api.Filter, func(in *commands.FilterKeywordsInput, id string) { in.SessionID = id }))
	r.Post(routes.Sort, command(api, api.Sort, func(in *commands.SortKeywordsInput, id string) { in.SessionID = id }))
	r.Post(routes.Theme, command(api, api.ToggleTheme, func(in *commands.ToggleThemeInput, id string) { in.SessionID = id }))
}

// command decodes an optional JSON body, pins it to the request session, runs
// cmd and answers with the updated view.
func command[T any](api *httpapi.Handlers, cmd gocommand.Commander[T], pin func(*T, string)) router.HandlerFunc {
	return router.WrapHandler(func(ctx router.Context) error {
		var payload T
		if body := bytes.TrimSpace(ctx.Body()); len(body) > 0 {
			if err := json.Unmarshal(body, &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
		}
		sessionID, err := openSession(ctx, api)
		if err != nil {
			return respondFailure(ctx, api, err)
		}
		pin(&payload, sessionID)
		if err := cmd.Execute(ctx.Context(), payload); err != nil {
			return respondFailure(ctx, api, err)
		}
		return respondView(ctx, api, sessionID)
	})
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		session := streamSession(ws)
		if session == "" {
			_ = ws.WriteJSON(map[string]string{"error": "session is required"})
			return ws.Close()
		}
		events, cancel := hook.Subscribe(session)
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

// openSession opens the request session and refreshes the session cookie.
func openSession(ctx router.Context, api *httpapi.Handlers) (string, error) {
	ctrl, err := api.Sessions.Open(ctx.Context(), resolveSession(ctx))
	if err != nil {
		return "", err
	}
	sessionID := ctrl.SessionID()
	cookie := &http.Cookie{
		Name:     httpapi.SessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	ctx.SetHeader("Set-Cookie", cookie.String())
	return sessionID, nil
}

// resolveSession reads the session header, falling back to the cookie.
func resolveSession(ctx router.Context) string {
	if id := strings.TrimSpace(ctx.Header(httpapi.SessionHeader)); id != "" {
		return id
	}
	return cookieValue(ctx.Header("Cookie"))
}

// streamSession reads the session query parameter, falling back to the
// cookie.
func streamSession(ctx router.Context) string {
	if id := strings.TrimSpace(ctx.Query("session")); id != "" {
		return id
	}
	return cookieValue(ctx.Header("Cookie"))
}

func cookieValue(header string) string {
	if header == "" {
		return ""
	}
	req := http.Request{Header: http.Header{"Cookie": {header}}}
	cookie, err := req.Cookie(httpapi.SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func respondView(ctx router.Context, api *httpapi.Handlers, sessionID string) error {
	snapshot, err := api.View.Query(ctx.Context(), queries.ViewInput{SessionID: sessionID})
	if err != nil {
		return respondFailure(ctx, api, err)
	}
	return ctx.JSON(http.StatusOK, snapshot)
}

// respondFailure maps validation failures to 400 and logs the rest as 500.
func respondFailure(ctx router.Context, api *httpapi.Handlers, err error) error {
	if dashboard.IsValidationError(err) {
		return respondError(ctx, http.StatusBadRequest, err)
	}
	if api.Logger != nil {
		api.Logger.WithError(err).Error("rinsight: request failed")
	}
	return respondError(ctx, http.StatusInternalServerError, err)
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/"
	}
	if routes.View == "" {
		routes.View = "/api/view"
	}
	if routes.Report == "" {
		routes.Report = "/api/report"
	}
	if routes.Tabs == "" {
		routes.Tabs = "/api/tabs"
	}
	if routes.Dates == "" {
		routes.Dates = "/api/dates"
	}
	if routes.Retry == "" {
		routes.Retry = "/api/retry"
	}
	if routes.Reload == "" {
		routes.Reload = "/api/reload"
	}
	if routes.Search == "" {
		routes.Search = "/api/keywords/search"
	}
	if routes.Filter == "" {
		routes.Filter = "/api/keywords/filter"
	}
	if routes.Sort == "" {
		routes.Sort = "/api/keywords/sort"
	}
	if routes.Theme == "" {
		routes.Theme = "/api/theme/toggle"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
