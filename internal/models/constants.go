package models

// ComplaintStatus константы статусов жалоб.
// "patrolling" означает, что бригада ищет место повреждения; это статус по умолчанию.
const (
	ComplaintStatusPatrolling     = "patrolling"
	ComplaintStatusCrewAssigned   = "crew assigned"
	ComplaintStatusWorkInProgress = "work in progress"
	ComplaintStatusFaultRectified = "fault rectified"
	ComplaintStatusCancelled      = "cancelled"
)

// ValidComplaintStatuses список валидных статусов жалоб
var ValidComplaintStatuses = map[string]struct{}{
	ComplaintStatusPatrolling:     {},
	ComplaintStatusCrewAssigned:   {},
	ComplaintStatusWorkInProgress: {},
	ComplaintStatusFaultRectified: {},
	ComplaintStatusCancelled:      {},
}
