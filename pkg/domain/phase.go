package domain

import "time"

// Phase is one timed unit of the generation progress sequence.
type Phase struct {
	Label    string        `json:"label" yaml:"label"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Progress reports how far generation has come.
type Progress struct {
	Label     string  `json:"label"`
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

// ProgressPercent returns completed/total*100. It is 100 exactly when completed == total.
func ProgressPercent(completed, total int) float64 {
	if total <= 0 {
		return 100
	}
	if completed >= total {
		return 100
	}
	return float64(completed) / float64(total) * 100
}
