package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User represents an application user synchronized from Keycloak claims.
// The password field stays empty for provider-authenticated users; it is only
// populated for locally administered accounts.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID        string    `bun:"id,pk" json:"id"`
	Username  string    `bun:"username,notnull" json:"username"`
	Email     string    `bun:"email,notnull,unique" json:"email"`
	Password  string    `bun:"password,notnull" json:"-"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}
