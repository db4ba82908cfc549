package recorder

import "time"

// RefreshEvent is one committed render-cycle outcome. No series data is kept.
type RefreshEvent struct {
	ID            string        `json:"id"`
	At            time.Time     `json:"at"`
	Source        string        `json:"source"` // "http", "cli", "schedule", "telegram"
	Numerator     string        `json:"numerator"`
	Denominator   string        `json:"denominator"`
	From          time.Time     `json:"from"`
	To            time.Time     `json:"to"`
	Granularity   string        `json:"granularity,omitempty"`
	Outcome       string        `json:"outcome"` // "ok" or an error kind
	Error         string        `json:"error,omitempty"`
	PointsAligned int           `json:"pointsAligned"`
	Days          int           `json:"days"`
	LastRatio     float64       `json:"lastRatio"`
	Duration      time.Duration `json:"duration"`
}

// Recorder journals refresh outcomes for later inspection.
type Recorder interface {
	RecordRefresh(evt *RefreshEvent) error
	Recent(limit int) ([]RefreshEvent, error)
	Close() error
}
