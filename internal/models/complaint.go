package models

import (
	"time"

	"github.com/google/uuid"
)

// Complaint описывает жалобу абонента на отключение или неисправность сети.
// У записи два ключа: порядковый номер (его оператор называет абоненту как
// "номер жалобы") и uuid-идентификатор для точного поиска.
type Complaint struct {
	ComplaintNo        int64      `db:"complaint_no" json:"complaint_no"`
	ID                 uuid.UUID  `db:"id" json:"id"`
	ServiceNo          *string    `db:"service_no" json:"service_no,omitempty"`
	Name               string     `db:"name" json:"name"`
	AreaDescription    *string    `db:"area_description" json:"area_description,omitempty"`
	Landmark           *string    `db:"landmark" json:"landmark,omitempty"`
	ProblemDetails     string     `db:"problem_details" json:"problem_details"`
	Status             string     `db:"status" json:"status"`
	EstimationTime     *string    `db:"estimation_time" json:"estimation_time,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt         *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	ResolutionDuration *string    `db:"resolution_duration" json:"resolution_duration,omitempty"`
}

// Resolved возвращает true, если жалоба закрыта.
func (c *Complaint) Resolved() bool {
	return c.ResolvedAt != nil
}
