package model

import (
	"time"
)

// University belongs to a State
type University struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex" json:"name"`
	StateID   *uint     `gorm:"index" json:"state_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	State    *State    `gorm:"foreignKey:StateID" json:"state,omitempty"`
	Colleges []College `gorm:"foreignKey:UniversityID" json:"colleges,omitempty"`
}

func (u *University) UniqueBy() map[string]string {
	return map[string]string{"name": u.Name}
}

func (u *University) ParentID() *uint { return u.StateID }
