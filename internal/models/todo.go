package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Todo is a task owned by exactly one user. Ownership is set at creation and
// never reassigned.
type Todo struct {
	bun.BaseModel `bun:"table:todos,alias:td"`

	ID        string    `bun:"id,pk" json:"id"`
	Title     string    `bun:"title,notnull" json:"title"`
	Summary   *string   `bun:"summary" json:"summary"`
	Completed bool      `bun:"completed,notnull,default:false" json:"completed"`
	UserID    string    `bun:"user_id,notnull" json:"userId"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}
