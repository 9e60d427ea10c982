// Package model holds the GORM-backed entities of the scheduling domain:
// care givers, care receivers, their visit templates, availability history,
// appointments, and the system settings singleton.
package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel contains the fields common to every entity in this package.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}
