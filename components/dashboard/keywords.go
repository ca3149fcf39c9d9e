package dashboard

import (
	"sort"
	"strings"
)

// KeywordView is the derived keyword list shown in the table. The source
// slice is never mutated; search and category filters compose and a
// frequency sort is applied only when asked for.
type KeywordView struct {
	source   []Keyword
	search   string
	category string
	current  []Keyword
}

// NewKeywordView wraps a keyword list with no filters applied.
func NewKeywordView(source []Keyword) *KeywordView {
	kv := &KeywordView{
		source:   append([]Keyword(nil), source...),
		category: defaultKeywordFilter,
	}
	kv.recompute()
	return kv
}

// Reset swaps the source list and re-applies the current filters.
func (kv *KeywordView) Reset(source []Keyword) {
	kv.source = append([]Keyword(nil), source...)
	kv.recompute()
}

// Search sets the free-text filter and recomputes from the source. The text
// is matched as typed, surrounding whitespace included.
func (kv *KeywordView) Search(text string) []Keyword {
	kv.search = text
	kv.recompute()
	return kv.Rows()
}

// Filter sets the category filter ("all" or empty clears it) and recomputes
// from the source.
func (kv *KeywordView) Filter(category string) []Keyword {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		category = defaultKeywordFilter
	}
	kv.category = category
	kv.recompute()
	return kv.Rows()
}

// SortByFrequency orders the current rows by frequency, highest first.
// Equal frequencies keep their relative order.
func (kv *KeywordView) SortByFrequency() []Keyword {
	sort.SliceStable(kv.current, func(i, j int) bool {
		return kv.current[i].Frequency > kv.current[j].Frequency
	})
	return kv.Rows()
}

// Rows returns a copy of the current derived rows.
func (kv *KeywordView) Rows() []Keyword {
	return append([]Keyword(nil), kv.current...)
}

// Source returns a copy of the unfiltered list.
func (kv *KeywordView) Source() []Keyword {
	return append([]Keyword(nil), kv.source...)
}

// SearchText returns the active free-text filter.
func (kv *KeywordView) SearchText() string { return kv.search }

// CategoryFilter returns the active category filter.
func (kv *KeywordView) CategoryFilter() string { return kv.category }

func (kv *KeywordView) recompute() {
	kv.current = FilterKeywords(kv.source, kv.search, kv.category)
}

// FilterKeywords keeps keywords whose text contains search (case-insensitive)
// and whose category equals category. Empty search and "all" match everything.
func FilterKeywords(source []Keyword, search, category string) []Keyword {
	needle := strings.ToLower(search)
	out := make([]Keyword, 0, len(source))
	for _, kw := range source {
		if needle != "" && !strings.Contains(strings.ToLower(kw.Keyword), needle) {
			continue
		}
		if category != "" && category != defaultKeywordFilter && string(kw.Category) != category {
			continue
		}
		out = append(out, kw)
	}
	return out
}
