package domain

import (
	"time"
)

// DateSource records where a ScheduleEntry's Date was taken from.
type DateSource string

const (
	DateScheduled   DateSource = "scheduled" // dayDate was present on the record
	DateFromCreated DateSource = "created"   // fell back to createdAt
	DateMissing     DateSource = "none"      // neither field present, Date is zero
)

// ScheduleItem is one medication, exercise, activity or therapy planned for a day.
type ScheduleItem struct {
	Name     string `bson:"name" json:"name"`
	Duration string `bson:"duration,omitempty" json:"duration,omitempty"` // e.g. "10m"
	Dosage   string `bson:"dosage,omitempty" json:"dosage,omitempty"`     // e.g. "200mg twice daily"
}

// ScheduleEntry is a single day of a patient's treatment schedule.
// The four item collections are never nil once an entry has been normalized.
type ScheduleEntry struct {
	ID          string         `json:"id"`
	OwnerID     string         `json:"ownerId"`
	DayNumber   int            `json:"dayNumber"`
	Date        time.Time      `json:"date"`
	DateSource  DateSource     `json:"dateSource"`
	CreatedAt   time.Time      `json:"createdAt"`
	Activities  []ScheduleItem `json:"activities"`
	Exercises   []ScheduleItem `json:"exercises"`
	Medications []ScheduleItem `json:"medications"`
	Therapies   []ScheduleItem `json:"therapies"`
	Completed   bool           `json:"completed"`
}

// Clone returns a deep copy so callers can't mutate a tracker's collection.
func (e ScheduleEntry) Clone() ScheduleEntry {
	e.Activities = cloneItems(e.Activities)
	e.Exercises = cloneItems(e.Exercises)
	e.Medications = cloneItems(e.Medications)
	e.Therapies = cloneItems(e.Therapies)
	return e
}

// Raw converts the entry back into the loosely typed document shape it is
// stored in. Normalizing the result yields the same entry.
func (e ScheduleEntry) Raw() map[string]interface{} {
	doc := map[string]interface{}{
		FieldID:          e.ID,
		FieldDayNumber:   e.DayNumber,
		FieldActivities:  rawItems(e.Activities),
		FieldExercises:   rawItems(e.Exercises),
		FieldMedications: rawItems(e.Medications),
		FieldTherapies:   rawItems(e.Therapies),
		FieldCompleted:   e.Completed,
	}
	if e.OwnerID != "" {
		doc[FieldOwnerID] = e.OwnerID
	}
	if !e.CreatedAt.IsZero() {
		doc[FieldCreatedAt] = e.CreatedAt
	}
	if e.DateSource == DateScheduled {
		doc[FieldDayDate] = e.Date
	}
	return doc
}

func cloneItems(items []ScheduleItem) []ScheduleItem {
	if items == nil {
		return nil
	}
	out := make([]ScheduleItem, len(items))
	copy(out, items)
	return out
}

func rawItems(items []ScheduleItem) []interface{} {
	out := make([]interface{}, 0, len(items))
	for _, it := range items {
		m := map[string]interface{}{"name": it.Name}
		if it.Duration != "" {
			m["duration"] = it.Duration
		}
		if it.Dosage != "" {
			m["dosage"] = it.Dosage
		}
		out = append(out, m)
	}
	return out
}

// AdherenceSummary is the progress header shown above a schedule.
type AdherenceSummary struct {
	TotalDays     int     `json:"totalDays"`
	CompletedDays int     `json:"completedDays"`
	Ratio         float64 `json:"ratio"` // CompletedDays / TotalDays, 0 for an empty schedule
}

// Summarize counts completed days.
func Summarize(entries []ScheduleEntry) AdherenceSummary {
	s := AdherenceSummary{TotalDays: len(entries)}
	for _, e := range entries {
		if e.Completed {
			s.CompletedDays++
		}
	}
	if s.TotalDays > 0 {
		s.Ratio = float64(s.CompletedDays) / float64(s.TotalDays)
	}
	return s
}
