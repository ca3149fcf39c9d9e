package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/sirupsen/logrus"

	dashboard "github.com/goliatone/go-rinsight/components/dashboard"
	"github.com/goliatone/go-rinsight/components/dashboard/commands"
	"github.com/goliatone/go-rinsight/components/dashboard/queries"
)

const (
	// SessionCookie carries the view session id between page loads.
	SessionCookie = dashboard.SessionCookie
	// SessionHeader overrides the cookie for scripted clients.
	SessionHeader = "X-Rinsight-Session"
)

// Sessions opens the view session a request belongs to.
type Sessions interface {
	Open(ctx context.Context, sessionID string) (*dashboard.Controller, error)
}

// Handlers exposes HTTP endpoints backed by shared commands and queries.
// Every mutating endpoint answers with the updated view snapshot.
type Handlers struct {
	Sessions Sessions
	Logger   logrus.FieldLogger

	SelectTab    gocommand.Commander[commands.SelectTabInput]
	ChangeDates  gocommand.Commander[commands.ChangeDateRangeInput]
	Retry        gocommand.Commander[commands.RetryInput]
	Reload       gocommand.Commander[commands.ReloadSourceInput]
	Search       gocommand.Commander[commands.SearchKeywordsInput]
	Filter       gocommand.Commander[commands.FilterKeywordsInput]
	Sort         gocommand.Commander[commands.SortKeywordsInput]
	ToggleTheme  gocommand.Commander[commands.ToggleThemeInput]
	View         gocommand.Querier[queries.ViewInput, dashboard.ViewSnapshot]
	ReportLookup gocommand.Querier[queries.ReportInput, dashboard.Report]
}

// NewHandlers wires the default commands and queries over a session source.
func NewHandlers(sessions Sessions, telemetry commands.Telemetry, logger logrus.FieldLogger) *Handlers {
	return &Handlers{
		Sessions:     sessions,
		Logger:       logger,
		SelectTab:    commands.NewSelectTabCommand(sessions, telemetry),
		ChangeDates:  commands.NewChangeDateRangeCommand(sessions, telemetry),
		Retry:        commands.NewRetryCommand(sessions, telemetry),
		Reload:       commands.NewReloadSourceCommand(sessions, telemetry),
		Search:       commands.NewSearchKeywordsCommand(sessions, telemetry),
		Filter:       commands.NewFilterKeywordsCommand(sessions, telemetry),
		Sort:         commands.NewSortKeywordsCommand(sessions, telemetry),
		ToggleTheme:  commands.NewToggleThemeCommand(sessions, telemetry),
		View:         queries.NewViewQuery(sessions),
		ReportLookup: queries.NewReportQuery(sessions),
	}
}

// Mount registers the API under base+"/api".
func (h *Handlers) Mount(mux *http.ServeMux, base string) {
	prefix := strings.TrimRight(base, "/") + "/api"
	mux.HandleFunc("GET "+prefix+"/view", h.HandleView)
	mux.HandleFunc("GET "+prefix+"/report", h.HandleReport)
	mux.HandleFunc("POST "+prefix+"/tabs", h.HandleSelectTab)
	mux.HandleFunc("POST "+prefix+"/dates", h.HandleChangeDates)
	mux.HandleFunc("POST "+prefix+"/retry", h.HandleRetry)
	mux.HandleFunc("POST "+prefix+"/reload", h.HandleReload)
	mux.HandleFunc("POST "+prefix+"/keywords/search", h.HandleSearch)
	mux.HandleFunc("POST "+prefix+"/keywords/filter", h.HandleFilter)
	mux.HandleFunc("POST "+prefix+"/keywords/sort", h.HandleSort)
	mux.HandleFunc("POST "+prefix+"/theme/toggle", h.HandleToggleTheme)
}

func (h *Handlers) HandleView(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respondView(w, r, sessionID)
}

func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	report, err := h.ReportLookup.Query(r.Context(), queries.ReportInput{
		SessionID: sessionID,
		Category:  r.URL.Query().Get("category"),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	_, _ = io.WriteString(w, report.Content)
}

func (h *Handlers) HandleSelectTab(w http.ResponseWriter, r *http.Request) {
	var payload commands.SelectTabInput
	execute(h, w, r, &payload, &payload.SessionID, h.SelectTab)
}

func (h *Handlers) HandleChangeDates(w http.ResponseWriter, r *http.Request) {
	var payload commands.ChangeDateRangeInput
	execute(h, w, r, &payload, &payload.SessionID, h.ChangeDates)
}

func (h *Handlers) HandleRetry(w http.ResponseWriter, r *http.Request) {
	var payload commands.RetryInput
	execute(h, w, r, &payload, &payload.SessionID, h.Retry)
}

func (h *Handlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	var payload commands.ReloadSourceInput
	execute(h, w, r, &payload, &payload.SessionID, h.Reload)
}

func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var payload commands.SearchKeywordsInput
	execute(h, w, r, &payload, &payload.SessionID, h.Search)
}

func (h *Handlers) HandleFilter(w http.ResponseWriter, r *http.Request) {
	var payload commands.FilterKeywordsInput
	execute(h, w, r, &payload, &payload.SessionID, h.Filter)
}

func (h *Handlers) HandleSort(w http.ResponseWriter, r *http.Request) {
	var payload commands.SortKeywordsInput
	execute(h, w, r, &payload, &payload.SessionID, h.Sort)
}

func (h *Handlers) HandleToggleTheme(w http.ResponseWriter, r *http.Request) {
	var payload commands.ToggleThemeInput
	execute(h, w, r, &payload, &payload.SessionID, h.ToggleTheme)
}

// execute decodes an optional JSON body, pins it to the resolved session,
// runs the command and answers with the view.
func execute[T any](h *Handlers, w http.ResponseWriter, r *http.Request, payload *T, sessionField *string, cmd gocommand.Commander[T]) {
	if err := decodeBody(r, payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	*sessionField = sessionID
	if err := cmd.Execute(r.Context(), *payload); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondView(w, r, sessionID)
}

// session resolves the request session, creating one when needed, and
// stores its id in the session cookie.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.Sessions == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "sessions not configured"})
		return "", false
	}
	ctrl, err := h.Sessions.Open(r.Context(), ResolveSession(r))
	if err != nil {
		h.respondError(w, err)
		return "", false
	}
	sessionID := ctrl.SessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessionID, true
}

func (h *Handlers) respondView(w http.ResponseWriter, r *http.Request, sessionID string) {
	snapshot, err := h.View.Query(r.Context(), queries.ViewInput{SessionID: sessionID})
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handlers) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if dashboard.IsValidationError(err) {
		status = http.StatusBadRequest
	} else if h.Logger != nil {
		h.Logger.WithError(err).Error("rinsight: request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// ResolveSession reads the session id from the header, falling back to the
// session cookie.
func ResolveSession(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func decodeBody(r *http.Request, payload any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(payload)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
