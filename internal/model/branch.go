package model

import "time"

// Branch represents a physical rental location.
type Branch struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Location  string    `gorm:"size:256;not null" json:"location"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`

	// Associations
	Games []Game `gorm:"foreignKey:BranchID" json:"-"`
}
