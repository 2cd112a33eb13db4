package model

import "time"

// LoadRecord is the diagnostic trace of one settled detail load.
type LoadRecord struct {
	MajorID      string      `json:"major_id"`
	ViewerID     string      `json:"viewer_id"`
	Outcome      LoadOutcome `json:"outcome"`
	RelatedCount int         `json:"related_count"`
	DurationMS   int64       `json:"duration_ms"`
	Error        string      `json:"error,omitempty"`
	RecordedAt   time.Time   `json:"recorded_at"`
}
