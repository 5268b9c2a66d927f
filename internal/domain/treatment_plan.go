// internal/domain/treatment_plan.go
package domain

import (
	"time"
)

// TreatmentPlan is a prescribed course of treatment. Its schedule entries are
// correlated by owner and chronology, there is no foreign key.
type TreatmentPlan struct {
	ID          string         `json:"id"`
	OwnerID     string         `json:"ownerId"`
	CreatedAt   time.Time      `json:"createdAt"`
	StartDate   time.Time      `json:"startDate"` // Falls back to CreatedAt
	Duration    string         `json:"duration"`  // Free text, e.g. "6 weeks"
	Medications []ScheduleItem `json:"medications"`
	Exercises   []ScheduleItem `json:"exercises"`
	Activities  []ScheduleItem `json:"activities"`
}
