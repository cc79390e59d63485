package model

import (
	"time"
)

// College belongs to a University
type College struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null;uniqueIndex" json:"name"`
	UniversityID *uint     `gorm:"index" json:"university_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relationships
	University *University `gorm:"foreignKey:UniversityID" json:"university,omitempty"`
	Buildings  []Building  `gorm:"foreignKey:CollegeID" json:"buildings,omitempty"`
}

func (c *College) UniqueBy() map[string]string {
	return map[string]string{"name": c.Name}
}

func (c *College) ParentID() *uint { return c.UniversityID }
