package model

import (
	"time"
)

// Room belongs to a Building. Image holds the public URL of the room
// photo in object storage; the object is removed when the room is
// deleted or the image replaced.
type Room struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;index" json:"name"`
	Image       string    `gorm:"type:varchar(512)" json:"image,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	BuildingID  *uint     `gorm:"index" json:"building_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Building *Building `gorm:"foreignKey:BuildingID" json:"building,omitempty"`
}

func (r *Room) ParentID() *uint { return r.BuildingID }
