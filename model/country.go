package model

import (
	"time"
)

// Country is the root of the location hierarchy
type Country struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex" json:"name"`
	Code      string    `gorm:"type:varchar(10);not null;uniqueIndex" json:"code"` // e.g., "IN", "US"
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	States []State `gorm:"foreignKey:CountryID" json:"states,omitempty"`
}

// UniqueBy returns the columns that participate in the duplicate check.
// A country collides when either its name or its code is already taken.
func (c *Country) UniqueBy() map[string]string {
	return map[string]string{"name": c.Name, "code": c.Code}
}
