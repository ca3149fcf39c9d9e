package dashboard

import (
	"strings"

	"github.com/go-echarts/go-echarts/v2/types"
)

// Theme is the viewer's color scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme normalizes a stored preference; anything but "dark" is light.
func ParseTheme(value string) Theme {
	if strings.EqualFold(strings.TrimSpace(value), string(ThemeDark)) {
		return ThemeDark
	}
	return ThemeLight
}

// Toggle flips between dark and light.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// BodyClass is the class applied to the page body.
func (t Theme) BodyClass() string {
	if t == ThemeDark {
		return "dark"
	}
	return ""
}

// ChartTheme maps the page theme onto an echarts theme name.
func (t Theme) ChartTheme() string {
	if t == ThemeDark {
		return types.ThemeChalk
	}
	return types.ThemeWesteros
}
