package entities

import (
	"github.com/google/uuid"
)

// HealthFlag is one dietary restriction or preference of a user, e.g. "peanut allergy".
type HealthFlag struct {
	ID     uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string    `gorm:"size:64;not null" json:"name"`

	Timestamp
}
