package dashboard

import (
	"fmt"
	"time"
)

const reportDateLayout = "1/2/2006"

// Report is a plain-text download built from rendered slot text.
type Report struct {
	Category Category `json:"category"`
	Filename string   `json:"filename"`
	Content  string   `json:"content"`
}

// BuildReport reads the score, explanation and recommendation slots of a
// category. It never touches the backend.
func BuildReport(v *View, c Category, now time.Time) Report {
	content := fmt.Sprintf(
		"rInsight Stress Report: %s\nDate: %s\nScore: %s\nExplanation: %s\nRecommendation: %s\n",
		categoryTitle(c),
		now.Format(reportDateLayout),
		v.Text(ScoreSlot(c), "0"),
		v.Text(ExplanationSlot(c), "No data"),
		v.Text(RecommendationSlot(c), "No recommendation"),
	)
	return Report{
		Category: c,
		Filename: ReportFilename(c),
		Content:  content,
	}
}

// ReportFilename is the download name for a category report.
func ReportFilename(c Category) string {
	return string(c) + "_stress_report.txt"
}
