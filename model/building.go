package model

import (
	"time"
)

// Building belongs to a College. Building names are not checked for
// duplicates: campuses routinely reuse names like "Block A".
type Building struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;index" json:"name"`
	CollegeID *uint     `gorm:"index" json:"college_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	College *College `gorm:"foreignKey:CollegeID" json:"college,omitempty"`
	Rooms   []Room   `gorm:"foreignKey:BuildingID" json:"rooms,omitempty"`
}

func (b *Building) ParentID() *uint { return b.CollegeID }
