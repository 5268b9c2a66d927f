package normalize

import (
	"fmt"

	"healthtrack/treatment-tracker/internal/domain"
)

// Plans normalizes treatment plan documents. Input order is kept.
func Plans(raw []domain.RawRecord) ([]domain.TreatmentPlan, []*MalformedRecordError) {
	plans := make([]domain.TreatmentPlan, 0, len(raw))
	var dropped []*MalformedRecordError
	for i, rec := range raw {
		doc, ok := document(rec)
		if !ok {
			dropped = append(dropped, &MalformedRecordError{Index: i, Reason: fmt.Sprintf("expected a document, got %T", rec)})
			continue
		}
		plan := domain.TreatmentPlan{
			ID:          recordID(doc),
			OwnerID:     ownerID(doc),
			Duration:    field(doc, domain.FieldDuration),
			Medications: items(doc[domain.FieldMedications]),
			Exercises:   items(doc[domain.FieldExercises]),
			Activities:  items(doc[domain.FieldActivities]),
		}
		plan.CreatedAt, _ = date(doc, domain.FieldCreatedAt, "created_at")
		if start, ok := date(doc, domain.FieldStartDate, "start_date"); ok {
			plan.StartDate = start
		} else {
			plan.StartDate = plan.CreatedAt
		}
		plans = append(plans, plan)
	}
	return plans, dropped
}
