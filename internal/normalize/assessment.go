package normalize

import (
	"fmt"
	"strings"

	"healthtrack/treatment-tracker/internal/domain"
)

// Assessments normalizes assessment documents. Severity is lower-cased but
// otherwise kept as stored; use Severity.Valid to check it.
func Assessments(raw []domain.RawRecord) ([]domain.Assessment, []*MalformedRecordError) {
	out := make([]domain.Assessment, 0, len(raw))
	var dropped []*MalformedRecordError
	for i, rec := range raw {
		doc, ok := document(rec)
		if !ok {
			dropped = append(dropped, &MalformedRecordError{Index: i, Reason: fmt.Sprintf("expected a document, got %T", rec)})
			continue
		}
		a := domain.Assessment{
			ID:               recordID(doc),
			OwnerID:          ownerID(doc),
			PrimaryCondition: field(doc, domain.FieldPrimaryCondition, "primary_condition"),
			Severity:         domain.Severity(strings.ToLower(strings.TrimSpace(field(doc, domain.FieldSeverity)))),
		}
		if ts, ok := date(doc, domain.FieldTimestamp); ok {
			a.Timestamp = ts
		} else {
			a.Timestamp, _ = date(doc, domain.FieldCreatedAt, "created_at")
		}
		out = append(out, a)
	}
	return out, dropped
}
