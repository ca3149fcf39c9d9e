package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultDateRange is applied to every date picker of a new view.
var DefaultDateRange = DateRange{Start: "2025-04-13", End: "2025-04-20"}

// ControllerOptions configures a Controller. Only Gateway is required.
type ControllerOptions struct {
	SessionID       string
	Layout          *Layout
	Gateway         *Gateway
	Renderers       *Renderers
	Validator       InputValidator
	ThemeStore      ThemeStore
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	Logger          logrus.FieldLogger
	DefaultCategory Category
	DefaultDates    DateRange
	Now             func() time.Time
}

// Controller drives one view session: tab selection, date ranges, retries,
// source reloads, keyword filtering, theme and reports. It is safe for
// concurrent use; the view lock is never held across a backend call.
type Controller struct {
	mu        sync.Mutex
	id        string
	view      *View
	surface   *Surface
	charts    ChartSlots
	active    Category
	keywords  *KeywordView
	dates     DateRange
	gateway   *Gateway
	renderers Renderers
	validator InputValidator
	themes    ThemeStore
	telemetry Telemetry
	logger    logrus.FieldLogger
	tokens    *requestTokens
	now       func() time.Time
}

// NewController builds a controller over a fresh view.
func NewController(opts ControllerOptions) (*Controller, error) {
	if opts.Gateway == nil {
		return nil, fmt.Errorf("dashboard: controller requires gateway")
	}
	layout := DefaultLayout()
	if opts.Layout != nil {
		layout = *opts.Layout
	}
	logger := normalizeLogger(opts.Logger).WithField("session", opts.SessionID)
	renderers := NewRenderers(nil, logger)
	if opts.Renderers != nil {
		renderers = *opts.Renderers
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.ThemeStore == nil {
		opts.ThemeStore = NewInMemoryThemeStore(ThemeLight)
	}
	if opts.DefaultCategory == "" {
		opts.DefaultCategory = CategoryAcademic
	}
	if opts.DefaultDates == (DateRange{}) {
		opts.DefaultDates = DefaultDateRange
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	view := NewView(layout)
	c := &Controller{
		id:        opts.SessionID,
		view:      view,
		surface:   NewSurface(view, opts.SessionID, opts.RefreshHook, logger),
		charts:    ChartSlots{},
		keywords:  NewKeywordView(nil),
		dates:     opts.DefaultDates,
		gateway:   opts.Gateway,
		renderers: renderers,
		validator: opts.Validator,
		themes:    opts.ThemeStore,
		telemetry: normalizeTelemetry(opts.Telemetry),
		logger:    logger,
		tokens:    newRequestTokens(),
		now:       opts.Now,
	}
	for _, cat := range append(StressCategories(), CategoryAll) {
		c.writeDates(cat, opts.DefaultDates)
	}
	c.activate(opts.DefaultCategory)
	return c, nil
}

// SessionID identifies the view session.
func (c *Controller) SessionID() string { return c.id }

// Active returns the active category.
func (c *Controller) Active() Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Load fetches and renders the active category.
func (c *Controller) Load(ctx context.Context) error {
	return c.Refresh(ctx, c.Active())
}

// SelectTab activates a category and renders its data.
func (c *Controller) SelectTab(ctx context.Context, category string) error {
	cat, ok := ParseCategory(category)
	if !ok {
		err := &ValidationError{
			Field:   "category",
			Message: fmt.Sprintf("Content for %s not found", category),
			Err:     c.validator.Validate(schemaTabSelection, map[string]any{"category": category}),
		}
		c.showError(ctx, err.Message)
		return err
	}
	c.mu.Lock()
	c.activate(cat)
	c.mu.Unlock()
	c.record(ctx, "dashboard.tab.selected", map[string]any{"category": string(cat)})
	return c.Refresh(ctx, cat)
}

// ChangeDateRange validates and stores a category date range, then refetches
// that category. An invalid range shows the banner and issues no fetch.
func (c *Controller) ChangeDateRange(ctx context.Context, category, start, end string) error {
	cat, ok := ParseCategory(category)
	if !ok || !(cat.IsStress() || cat == CategoryAll) {
		err := &ValidationError{Field: "category", Message: fmt.Sprintf("Date range is not supported for %s", category)}
		c.showError(ctx, err.Message)
		return err
	}
	dates := DateRange{Start: strings.TrimSpace(start), End: strings.TrimSpace(end)}
	if err := ValidateDateRange(c.validator, dates); err != nil {
		c.showError(ctx, invalidDateRangeMessage)
		c.logger.WithError(err).WithField("category", cat).Debug("dashboard: rejected date range")
		return err
	}
	c.mu.Lock()
	c.writeDates(cat, dates)
	c.mu.Unlock()
	return c.Refresh(ctx, cat)
}

// Retry re-runs the fetch and render path of the active category.
func (c *Controller) Retry(ctx context.Context) error {
	return c.Refresh(ctx, c.Active())
}

// Refresh fetches and renders one category. Responses overtaken by a newer
// request for the same category are dropped.
func (c *Controller) Refresh(ctx context.Context, category Category) error {
	return c.refresh(ctx, category, FetchOptions{})
}

// ReloadSource asks the backend to reload its source, shows the outcome on
// the banner and re-renders the active category.
func (c *Controller) ReloadSource(ctx context.Context) (ReloadResult, error) {
	result, ok := c.gateway.Reload(ctx, c.notifier())
	if ok {
		if result.Succeeded() {
			c.mu.Lock()
			c.surface.Info(ctx, result.Message)
			c.mu.Unlock()
		} else {
			c.showError(ctx, result.Message)
		}
	}
	c.record(ctx, "dashboard.source.reloaded", map[string]any{
		"status":  result.Status,
		"reached": ok,
	})
	return result, c.refresh(ctx, c.Active(), FetchOptions{KeepBanner: true})
}

// Report builds the plain-text report of a category from rendered text.
func (c *Controller) Report(category string) (Report, error) {
	cat, ok := ParseCategory(category)
	if !ok {
		return Report{}, &ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", category)}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return BuildReport(c.view, cat, c.now()), nil
}

// SearchKeywords sets the keyword text filter and re-renders the table.
func (c *Controller) SearchKeywords(ctx context.Context, text string) []Keyword {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows := c.keywords.Search(text)
	c.renderKeywordTable(ctx)
	return rows
}

// FilterKeywords sets the keyword category filter and re-renders the table.
func (c *Controller) FilterKeywords(ctx context.Context, category string) ([]Keyword, error) {
	normalized := strings.ToLower(strings.TrimSpace(category))
	if normalized == "" {
		normalized = defaultKeywordFilter
	}
	if err := c.validator.Validate(schemaKeywordFilter, map[string]any{"category": normalized}); err != nil {
		return nil, &ValidationError{Field: "category", Message: fmt.Sprintf("unknown keyword category %q", category), Err: err}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	rows := c.keywords.Filter(normalized)
	c.renderKeywordTable(ctx)
	return rows, nil
}

// SortKeywordsByFrequency sorts the current keyword rows and re-renders them.
func (c *Controller) SortKeywordsByFrequency(ctx context.Context) []Keyword {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows := c.keywords.SortByFrequency()
	c.renderKeywordTable(ctx)
	return rows
}

// Theme returns the persisted theme of the session.
func (c *Controller) Theme(ctx context.Context) (Theme, error) {
	return c.themes.Theme(ctx, c.id)
}

// ToggleTheme flips and persists the session theme.
func (c *Controller) ToggleTheme(ctx context.Context) (Theme, error) {
	current, err := c.themes.Theme(ctx, c.id)
	if err != nil {
		return "", err
	}
	next := current.Toggle()
	if err := c.themes.SaveTheme(ctx, c.id, next); err != nil {
		return "", err
	}
	c.mu.Lock()
	c.applyTheme(next)
	c.surface.Rendered(ctx, "", "theme")
	c.mu.Unlock()
	c.record(ctx, "dashboard.theme.toggled", map[string]any{"theme": string(next)})
	return next, nil
}

// Snapshot returns a deep copy of the view.
func (c *Controller) Snapshot(ctx context.Context) ViewSnapshot {
	theme, err := c.themes.Theme(ctx, c.id)
	if err != nil {
		c.logger.WithError(err).Warn("dashboard: theme lookup failed")
		theme = ThemeLight
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyTheme(theme)
	return ViewSnapshot{
		SessionID: c.id,
		Active:    c.active,
		Theme:     theme,
		Slots:     c.view.snapshot(),
	}
}

// Banner returns the banner currently shown, if any.
func (c *Controller) Banner() (Banner, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface.Banner()
}

// LiveCharts counts chart handles currently bound to canvases.
func (c *Controller) LiveCharts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.charts.Live()
}

func (c *Controller) refresh(ctx context.Context, category Category, opts FetchOptions) error {
	token := c.tokens.issue(category)
	theme, err := c.themes.Theme(ctx, c.id)
	if err != nil {
		theme = ThemeLight
	}
	renderers := c.renderers.WithTheme(theme)
	n := c.notifier()

	switch category {
	case CategoryKeywords:
		keywords, _ := c.gateway.Keywords(ctx, n, opts)
		return c.apply(ctx, category, token, func() error {
			c.keywords.Reset(keywords)
			var err error
			c.charts, err = renderers.Keywords(c.view, c.charts, c.keywords)
			return err
		})
	case CategoryResources:
		recs, _ := c.gateway.Recommendations(ctx, n, opts)
		return c.apply(ctx, category, token, func() error {
			renderers.Recommendations(c.view, recs)
			return nil
		})
	default:
		c.mu.Lock()
		dates := c.readDates(category)
		c.mu.Unlock()
		scores, _ := c.gateway.Scores(ctx, n, dates, opts)
		return c.apply(ctx, category, token, func() error {
			var err error
			c.charts, err = renderers.Scores(c.view, c.charts, category, scores)
			return err
		})
	}
}

// apply runs render under the view lock when token is still the latest
// request for category. Render failures are logged, not returned.
func (c *Controller) apply(ctx context.Context, category Category, token uint64, render func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.tokens.current(category, token) {
		c.logger.WithFields(logrus.Fields{
			"category": category,
			"token":    token,
		}).Debug("dashboard: dropping stale response")
		c.record(ctx, "dashboard.render.stale", map[string]any{"category": string(category)})
		return nil
	}
	if err := render(); err != nil {
		c.logger.WithError(err).WithField("category", category).Error("dashboard: render failed")
	}
	c.surface.Rendered(ctx, category, "render")
	c.record(ctx, "dashboard.render", map[string]any{"category": string(category)})
	return nil
}

func (c *Controller) activate(cat Category) {
	c.active = cat
	for _, tab := range tabCategories {
		selected := tab == cat
		if el, ok := c.view.Slot(TabSlot(tab)); ok {
			el.Active = selected
		}
		if el, ok := c.view.Slot(PanelSlot(tab)); ok {
			el.Active = selected
			el.Hidden = !selected
		}
	}
}

func (c *Controller) writeDates(cat Category, dates DateRange) {
	if el, ok := c.view.Slot(DateStartSlot(cat)); ok {
		el.Value = dates.Start
	}
	if el, ok := c.view.Slot(DateEndSlot(cat)); ok {
		el.Value = dates.End
	}
}

func (c *Controller) readDates(cat Category) DateRange {
	dates := c.dates
	if el, ok := c.view.Slot(DateStartSlot(cat)); ok && el.Value != "" {
		dates.Start = el.Value
	}
	if el, ok := c.view.Slot(DateEndSlot(cat)); ok && el.Value != "" {
		dates.End = el.Value
	}
	return dates
}

func (c *Controller) renderKeywordTable(ctx context.Context) {
	c.renderers.KeywordTable(c.view, c.keywords)
	if el, ok := c.view.Slot(SlotKeywordSearch); ok {
		el.Value = c.keywords.SearchText()
	}
	if el, ok := c.view.Slot(SlotKeywordFilter); ok {
		el.Value = c.keywords.CategoryFilter()
	}
	c.surface.Rendered(ctx, CategoryKeywords, "keywords")
}

func (c *Controller) applyTheme(theme Theme) {
	if el, ok := c.view.Slot(SlotBody); ok {
		el.Class = theme.BodyClass()
	}
}

func (c *Controller) showError(ctx context.Context, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surface.Error(ctx, message)
}

func (c *Controller) record(ctx context.Context, event string, payload map[string]any) {
	payload["session"] = c.id
	c.telemetry.Record(ctx, event, payload)
}

func (c *Controller) notifier() Notifier {
	return lockedNotifier{c: c}
}

// lockedNotifier takes the view lock for each surface update so gateway
// calls can report progress without holding it across the request.
type lockedNotifier struct {
	c *Controller
}

func (n lockedNotifier) Loading(ctx context.Context, on bool) {
	n.c.mu.Lock()
	defer n.c.mu.Unlock()
	n.c.surface.Loading(ctx, on)
}

func (n lockedNotifier) Error(ctx context.Context, message string) {
	n.c.showError(ctx, message)
}

func (n lockedNotifier) Info(ctx context.Context, message string) {
	n.c.mu.Lock()
	defer n.c.mu.Unlock()
	n.c.surface.Info(ctx, message)
}

func (n lockedNotifier) Clear(ctx context.Context) {
	n.c.mu.Lock()
	defer n.c.mu.Unlock()
	n.c.surface.Clear(ctx)
}
