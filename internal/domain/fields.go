package domain

// Document keys shared by the normalizers and the Mongo queries.
const (
	FieldID          = "_id"
	FieldOwnerID     = "ownerId"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
	FieldDayNumber   = "dayNumber"
	FieldDayDate     = "dayDate"
	FieldCompleted   = "completed"
	FieldActivities  = "activities"
	FieldExercises   = "exercises"
	FieldMedications = "medications"
	FieldTherapies   = "therapies"

	FieldStartDate = "startDate"
	FieldDuration  = "duration"

	FieldTimestamp        = "timestamp"
	FieldPrimaryCondition = "primaryCondition"
	FieldSeverity         = "severity"
)
