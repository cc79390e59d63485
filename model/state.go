package model

import (
	"time"
)

// State belongs to a Country
type State struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex" json:"name"`
	StateCode string    `gorm:"column:state_code;type:varchar(10);not null;uniqueIndex" json:"state_code"`
	CountryID *uint     `gorm:"index" json:"country_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Country      *Country     `gorm:"foreignKey:CountryID" json:"country,omitempty"`
	Universities []University `gorm:"foreignKey:StateID" json:"universities,omitempty"`
}

func (s *State) UniqueBy() map[string]string {
	return map[string]string{"name": s.Name, "state_code": s.StateCode}
}

func (s *State) ParentID() *uint { return s.CountryID }
