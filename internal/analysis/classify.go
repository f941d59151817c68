package analysis

import "strings"

// Severity buckets a 0..10 score for display.
type Severity string

const (
	SeverityGood Severity = "good"
	SeverityOK   Severity = "ok"
	SeverityWarn Severity = "warn"
	SeverityBad  Severity = "bad"
)

// ClassifyScore maps a score to its severity: >=8 good, >=6 ok, >=4 warn, else bad.
func ClassifyScore(score float64) Severity {
	switch {
	case score >= 8:
		return SeverityGood
	case score >= 6:
		return SeverityOK
	case score >= 4:
		return SeverityWarn
	default:
		return SeverityBad
	}
}

// CSSClass returns the stylesheet class for the severity.
func (s Severity) CSSClass() string {
	switch s {
	case SeverityGood:
		return "score-green"
	case SeverityOK:
		return "score-yellow"
	case SeverityWarn:
		return "score-orange"
	default:
		return "score-red"
	}
}

// PriorityClass is the display classification of a recommendation priority.
type PriorityClass string

const (
	PriorityHigh    PriorityClass = "high"
	PriorityMedium  PriorityClass = "medium"
	PriorityLow     PriorityClass = "low"
	PriorityDefault PriorityClass = "default"
)

// ClassifyPriority matches high/medium/low case-insensitively. Anything else,
// including the empty string, falls back to PriorityDefault.
func ClassifyPriority(priority string) PriorityClass {
	switch strings.ToLower(priority) {
	case "high":
		return PriorityHigh
	case "medium":
		return PriorityMedium
	case "low":
		return PriorityLow
	default:
		return PriorityDefault
	}
}

// CSSClass returns the badge class for the priority.
func (p PriorityClass) CSSClass() string {
	return "priority-" + string(p)
}

// Glyph returns the marker shown next to a recommendation.
func (p PriorityClass) Glyph() string {
	switch p {
	case PriorityHigh:
		return "🔴"
	case PriorityMedium:
		return "🟡"
	case PriorityLow:
		return "🟢"
	default:
		return "⚪"
	}
}
