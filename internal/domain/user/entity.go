package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity read model the chat core consumes. Accounts,
// credentials and profile editing live in the external auth stack;
// the core only ever looks users up by id.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	Picture   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}
