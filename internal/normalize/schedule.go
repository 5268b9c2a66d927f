// Package normalize turns loosely shaped store documents into canonical
// domain records. Every function here is pure.
package normalize

import (
	"fmt"

	"healthtrack/treatment-tracker/internal/domain"
)

// Schedule normalizes a batch of raw schedule documents, preserving input
// order. Records that cannot be used are dropped and reported, the rest of
// the batch is unaffected.
func Schedule(raw []domain.RawRecord) ([]domain.ScheduleEntry, []*MalformedRecordError) {
	entries := make([]domain.ScheduleEntry, 0, len(raw))
	var dropped []*MalformedRecordError

	seenIDs := make(map[string]int, len(raw))
	seenDays := make(map[int]string, len(raw))

	for i, rec := range raw {
		entry, reason := scheduleEntry(rec)
		if reason != "" {
			dropped = append(dropped, &MalformedRecordError{Index: i, ID: entry.ID, Reason: reason})
			continue
		}
		if first, dup := seenIDs[entry.ID]; dup {
			dropped = append(dropped, &MalformedRecordError{
				Index: i, ID: entry.ID,
				Reason: fmt.Sprintf("duplicate id, first seen at %d", first),
			})
			continue
		}
		if entry.DayNumber > 0 {
			if other, dup := seenDays[entry.DayNumber]; dup {
				dropped = append(dropped, &MalformedRecordError{
					Index: i, ID: entry.ID,
					Reason: fmt.Sprintf("day %d already scheduled by %s", entry.DayNumber, other),
				})
				continue
			}
			seenDays[entry.DayNumber] = entry.ID
		}
		seenIDs[entry.ID] = i
		entries = append(entries, entry)
	}
	return entries, dropped
}

// ScheduleEntry normalizes a single raw schedule document.
func ScheduleEntry(rec domain.RawRecord) (domain.ScheduleEntry, error) {
	entry, reason := scheduleEntry(rec)
	if reason != "" {
		return domain.ScheduleEntry{}, &MalformedRecordError{ID: entry.ID, Reason: reason}
	}
	return entry, nil
}

func scheduleEntry(rec domain.RawRecord) (domain.ScheduleEntry, string) {
	doc, ok := document(rec)
	if !ok {
		return domain.ScheduleEntry{}, fmt.Sprintf("expected a document, got %T", rec)
	}
	id := recordID(doc)
	if id == "" {
		return domain.ScheduleEntry{}, "missing id"
	}

	entry := domain.ScheduleEntry{
		ID:          id,
		OwnerID:     ownerID(doc),
		Activities:  items(doc[domain.FieldActivities]),
		Exercises:   items(doc[domain.FieldExercises]),
		Medications: items(doc[domain.FieldMedications]),
		Therapies:   items(doc[domain.FieldTherapies]),
		Completed:   flag(doc, domain.FieldCompleted),
	}
	if v, ok := lookup(doc, domain.FieldDayNumber, "day_number"); ok {
		entry.DayNumber, _ = integer(v)
	}
	entry.CreatedAt, _ = date(doc, domain.FieldCreatedAt, "created_at")

	switch day, ok := date(doc, domain.FieldDayDate, "day_date", "date"); {
	case ok:
		entry.Date, entry.DateSource = day, domain.DateScheduled
	case !entry.CreatedAt.IsZero():
		entry.Date, entry.DateSource = entry.CreatedAt, domain.DateFromCreated
	default:
		entry.DateSource = domain.DateMissing
	}
	return entry, ""
}
