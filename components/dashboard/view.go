package dashboard

import (
	"sort"
)

// ElementKind tells transports how to draw a slot.
type ElementKind string

const (
	KindText     ElementKind = "text"
	KindBadge    ElementKind = "badge"
	KindProgress ElementKind = "progress"
	KindCanvas   ElementKind = "canvas"
	KindTable    ElementKind = "table"
	KindList     ElementKind = "list"
	KindInput    ElementKind = "input"
	KindTab      ElementKind = "tab"
	KindPanel    ElementKind = "panel"
	KindBanner   ElementKind = "banner"
)

// Element is one addressable slot of a view.
type Element struct {
	ID     string            `json:"id"`
	Kind   ElementKind       `json:"kind"`
	Panel  string            `json:"panel,omitempty"`
	Text   string            `json:"text,omitempty"`
	Value  string            `json:"value,omitempty"`
	Class  string            `json:"class,omitempty"`
	Style  map[string]string `json:"style,omitempty"`
	Hidden bool              `json:"hidden,omitempty"`
	Active bool              `json:"active,omitempty"`
	Rows   [][]string        `json:"rows,omitempty"`
	Items  []string          `json:"items,omitempty"`
	Chart  string            `json:"chart,omitempty"`

	bound int
}

// LiveCharts returns how many chart handles are currently bound to a canvas.
func (e *Element) LiveCharts() int {
	if e == nil {
		return 0
	}
	return e.bound
}

// SetStyle sets a single inline style property.
func (e *Element) SetStyle(property, value string) {
	if e.Style == nil {
		e.Style = map[string]string{}
	}
	e.Style[property] = value
}

func (e *Element) clone() Element {
	out := *e
	if e.Style != nil {
		out.Style = make(map[string]string, len(e.Style))
		for k, v := range e.Style {
			out.Style[k] = v
		}
	}
	if e.Rows != nil {
		out.Rows = make([][]string, len(e.Rows))
		for i, row := range e.Rows {
			out.Rows[i] = append([]string(nil), row...)
		}
	}
	if e.Items != nil {
		out.Items = append([]string(nil), e.Items...)
	}
	return out
}

// SlotSpec declares one slot of a layout.
type SlotSpec struct {
	ID    string
	Kind  ElementKind
	Panel string
}

// Layout lists the slots a view exposes, in display order.
type Layout struct {
	Slots []SlotSpec
}

// Without returns a copy of the layout minus the given slot ids.
func (l Layout) Without(ids ...string) Layout {
	skip := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		skip[id] = struct{}{}
	}
	out := Layout{Slots: make([]SlotSpec, 0, len(l.Slots))}
	for _, spec := range l.Slots {
		if _, ok := skip[spec.ID]; ok {
			continue
		}
		out.Slots = append(out.Slots, spec)
	}
	return out
}

// Slot ids shared by renderers, the controller and templates.
const (
	SlotLoading          = "loading"
	SlotErrorAlert       = "error-alert"
	SlotErrorMessage     = "error-message"
	SlotBody             = "body"
	SlotHighestStress    = "highest-stress"
	SlotTopKeyword       = "top-keyword"
	SlotCriticalAlerts   = "critical-alerts"
	SlotAllSummary       = "all-summary"
	SlotAllRecommend     = "all-recommendation"
	SlotRadarChart       = "radar-chart"
	SlotLiveAlerts       = "live-alerts"
	SlotAlertMessage     = "alert-message"
	SlotKeywordTable     = "keyword-table"
	SlotKeywordChart     = "keyword-chart"
	SlotKeywordSearch    = "keyword-search"
	SlotKeywordFilter    = "keyword-filter"
	SlotRecommendList    = "recommendation-list"
	SlotResourcesAlert   = "resources-alert"
	chartSlotRadar       = "radar"
	chartSlotKeyword     = "keyword"
	defaultKeywordFilter = "all"
)

func slotID(c Category, suffix string) string { return string(c) + "-" + suffix }

// ScoreSlot and friends name the per-category slots.
func ScoreSlot(c Category) string          { return slotID(c, "score") }
func ExplanationSlot(c Category) string    { return slotID(c, "explanation") }
func RecommendationSlot(c Category) string { return slotID(c, "recommendation") }
func BadgeSlot(c Category) string          { return slotID(c, "badge") }
func TrendTextSlot(c Category) string      { return slotID(c, "trend-text") }
func ProgressSlot(c Category) string       { return slotID(c, "progress") }
func TrendSlot(c Category) string          { return slotID(c, "trend") }
func DateStartSlot(c Category) string      { return slotID(c, "date-start") }
func DateEndSlot(c Category) string        { return slotID(c, "date-end") }
func TabSlot(c Category) string            { return "tab-" + string(c) }
func PanelSlot(c Category) string          { return "panel-" + string(c) }

// DefaultLayout exposes every slot the dashboard knows how to render.
func DefaultLayout() Layout {
	var specs []SlotSpec
	add := func(id string, kind ElementKind, panel Category) {
		specs = append(specs, SlotSpec{ID: id, Kind: kind, Panel: string(panel)})
	}
	add(SlotBody, KindPanel, "")
	add(SlotLoading, KindText, "")
	add(SlotErrorAlert, KindBanner, "")
	add(SlotErrorMessage, KindText, "")
	for _, c := range tabCategories {
		add(TabSlot(c), KindTab, "")
		add(PanelSlot(c), KindPanel, c)
	}
	for _, c := range stressCategories {
		add(ScoreSlot(c), KindText, c)
		add(BadgeSlot(c), KindBadge, c)
		add(TrendTextSlot(c), KindText, c)
		add(ExplanationSlot(c), KindText, c)
		add(RecommendationSlot(c), KindText, c)
		add(ProgressSlot(c), KindProgress, c)
		add(TrendSlot(c), KindCanvas, c)
		add(DateStartSlot(c), KindInput, c)
		add(DateEndSlot(c), KindInput, c)
	}
	add(DateStartSlot(CategoryAll), KindInput, CategoryAll)
	add(DateEndSlot(CategoryAll), KindInput, CategoryAll)
	add(SlotHighestStress, KindText, CategoryAll)
	add(SlotTopKeyword, KindText, CategoryAll)
	add(SlotCriticalAlerts, KindText, CategoryAll)
	add(SlotAllSummary, KindText, CategoryAll)
	add(SlotAllRecommend, KindText, CategoryAll)
	add(SlotRadarChart, KindCanvas, CategoryAll)
	add(SlotLiveAlerts, KindBanner, CategoryAll)
	add(SlotAlertMessage, KindText, CategoryAll)
	add(SlotKeywordSearch, KindInput, CategoryKeywords)
	add(SlotKeywordFilter, KindInput, CategoryKeywords)
	add(SlotKeywordTable, KindTable, CategoryKeywords)
	add(SlotKeywordChart, KindCanvas, CategoryKeywords)
	add(SlotResourcesAlert, KindText, CategoryResources)
	add(SlotRecommendList, KindList, CategoryResources)
	return Layout{Slots: specs}
}

// View is the server-side document of one dashboard session. It is not safe
// for concurrent use; the owning Controller serializes access.
type View struct {
	slots map[string]*Element
	order []string
}

// NewView materializes a layout into empty slots.
func NewView(layout Layout) *View {
	v := &View{slots: make(map[string]*Element, len(layout.Slots))}
	for _, spec := range layout.Slots {
		if _, dup := v.slots[spec.ID]; dup {
			continue
		}
		v.slots[spec.ID] = &Element{ID: spec.ID, Kind: spec.Kind, Panel: spec.Panel}
		v.order = append(v.order, spec.ID)
	}
	if el, ok := v.slots[SlotLoading]; ok {
		el.Hidden = true
	}
	if el, ok := v.slots[SlotErrorAlert]; ok {
		el.Hidden = true
	}
	if el, ok := v.slots[SlotLiveAlerts]; ok {
		el.Hidden = true
	}
	if el, ok := v.slots[SlotKeywordFilter]; ok {
		el.Value = defaultKeywordFilter
	}
	return v
}

// Slot returns the element for id when the view exposes it. Absence is a
// normal outcome for trimmed layouts.
func (v *View) Slot(id string) (*Element, bool) {
	if v == nil {
		return nil, false
	}
	el, ok := v.slots[id]
	return el, ok
}

// Exposes reports whether the view has a slot with the given id.
func (v *View) Exposes(id string) bool {
	_, ok := v.Slot(id)
	return ok
}

// Text returns the slot text or fallback when the slot is absent or empty.
func (v *View) Text(id, fallback string) string {
	if el, ok := v.Slot(id); ok && el.Text != "" {
		return el.Text
	}
	return fallback
}

// ViewSnapshot is an immutable copy of a view handed to transports.
type ViewSnapshot struct {
	SessionID string    `json:"session_id"`
	Active    Category  `json:"active"`
	Theme     Theme     `json:"theme"`
	Slots     []Element `json:"slots"`
}

// Element looks up a slot in the snapshot.
func (s ViewSnapshot) Element(id string) (Element, bool) {
	for _, el := range s.Slots {
		if el.ID == id {
			return el, true
		}
	}
	return Element{}, false
}

// PanelSlots returns the snapshot slots that belong to a panel.
func (s ViewSnapshot) PanelSlots(panel string) []Element {
	var out []Element
	for _, el := range s.Slots {
		if el.Panel == panel && el.Kind != KindPanel {
			out = append(out, el)
		}
	}
	return out
}

func (v *View) snapshot() []Element {
	out := make([]Element, 0, len(v.order))
	for _, id := range v.order {
		out = append(out, v.slots[id].clone())
	}
	return out
}

// SlotIDs lists the exposed slots, sorted.
func (v *View) SlotIDs() []string {
	ids := append([]string(nil), v.order...)
	sort.Strings(ids)
	return ids
}
