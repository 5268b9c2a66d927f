package domain

import (
	"time"
)

// Severity of an assessed condition.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// SeverityCategory is the visual class a severity is displayed with.
type SeverityCategory string

const (
	CategoryOK      SeverityCategory = "ok"
	CategoryWarning SeverityCategory = "warning"
	CategoryDanger  SeverityCategory = "danger"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

// Category maps a severity to its display class. Anything that is not
// moderate or severe is shown as ok.
func (s Severity) Category() SeverityCategory {
	switch s {
	case SeveritySevere:
		return CategoryDanger
	case SeverityModerate:
		return CategoryWarning
	default:
		return CategoryOK
	}
}

// Assessment is a read-only clinical assessment result.
type Assessment struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"ownerId"`
	Timestamp        time.Time `json:"timestamp"`
	PrimaryCondition string    `json:"primaryCondition"`
	Severity         Severity  `json:"severity"`
}
