package dashboard

import (
	"os"
	"strings"
)

const (
	// DefaultEChartsAssetsHostURL is the public go-echarts asset mirror.
	DefaultEChartsAssetsHostURL = "https://go-echarts.github.io/go-echarts-assets/assets/"
	// envEChartsCDN overrides the default assets host (e.g., to point at a self-hosted bucket).
	envEChartsCDN = "RINSIGHT_ECHARTS_CDN"
)

// DefaultEChartsAssetsHost returns the assets host, respecting RINSIGHT_ECHARTS_CDN if set.
func DefaultEChartsAssetsHost() string {
	if host := strings.TrimSpace(os.Getenv(envEChartsCDN)); host != "" {
		return ensureTrailingSlash(host)
	}
	return DefaultEChartsAssetsHostURL
}

func ensureTrailingSlash(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
