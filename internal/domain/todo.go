package domain

import (
	"time"

	"github.com/google/uuid"
)

// Todo is a single task owned by exactly one user. The owner column feeds
// the row-level security policies, so it is write-once: set at insert,
// never updatable afterwards.
type Todo struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index;<-:create"`
	Title       string    `gorm:"not null"`
	Description *string
	Completed   bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"<-:create"`
	UpdatedAt   time.Time
}

func (Todo) TableName() string {
	return "todos"
}

// TodoPatch carries a partial update. Pointer fields distinguish "omitted"
// from "set to the zero value" (e.g. Completed=false).
type TodoPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}
