package dashboard

const (
	noDataColor       = "#6B7280"
	badgeBaseClass    = "px-3 py-1 rounded-full text-sm"
	bannerBaseClass   = "p-4 rounded-lg mb-6"
	resourcesAlertCSS = "mb-4 font-semibold"
)

// StatusStyle is the closed set of badge styles.
type StatusStyle int

const (
	StyleNoData StatusStyle = iota
	StyleLow
	StyleModerate
	StyleCritical
)

var statusStyleClasses = map[StatusStyle]string{
	StyleLow:      "bg-green-100 dark:bg-green-900 text-green-800 dark:text-green-200",
	StyleModerate: "bg-yellow-100 dark:bg-yellow-900 text-yellow-800 dark:text-yellow-200",
	StyleCritical: "bg-red-100 dark:bg-red-900 text-red-800 dark:text-red-200",
	StyleNoData:   "bg-gray-200 dark:bg-gray-700 text-gray-800 dark:text-gray-200",
}

// StyleForStatus maps a backend status to its badge style. Unknown labels
// fall back to NoData.
func StyleForStatus(status Status) StatusStyle {
	switch status {
	case StatusLow:
		return StyleLow
	case StatusModerate:
		return StyleModerate
	case StatusCritical:
		return StyleCritical
	case StatusNoData:
		return StyleNoData
	default:
		return StyleNoData
	}
}

// BadgeClass returns the full class attribute for a status badge.
func BadgeClass(status Status) string {
	return badgeBaseClass + " " + statusStyleClasses[StyleForStatus(status)]
}

// BannerClass returns the class attribute for the shared banner.
func BannerClass(kind BannerKind) string {
	switch kind {
	case BannerInfo:
		return bannerBaseClass + " bg-blue-100 dark:bg-blue-900 text-blue-800 dark:text-blue-200"
	case BannerError:
		return bannerBaseClass + " " + statusStyleClasses[StyleCritical]
	default:
		return bannerBaseClass + " " + statusStyleClasses[StyleCritical]
	}
}

// resourcesAlertClass tints the recommendation summary: warning when there is
// something to act on, error when the list is empty.
func resourcesAlertClass(count int) string {
	if count > 0 {
		return "text-yellow-600 dark:text-yellow-400 " + resourcesAlertCSS
	}
	return "text-red-600 dark:text-red-400 " + resourcesAlertCSS
}
