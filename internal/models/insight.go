package models

// InsightReport is the fixed shape returned by the insight collaborator.
type InsightReport struct {
	Summary         string   `json:"summary"`
	Alerts          []string `json:"alerts"`
	Recommendations []string `json:"recommendations"`
}

// FallbackInsightReport is substituted whenever the insight collaborator
// fails or returns a malformed payload.
func FallbackInsightReport() *InsightReport {
	return &InsightReport{
		Summary:         "Inventory data analysis unavailable.",
		Alerts:          []string{"Connection to AI services lost."},
		Recommendations: []string{"Check manual stock logs."},
	}
}
