package models

import "time"

type Project struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(120);not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	OwnerID     uint64    `gorm:"not null" json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Owner User   `gorm:"foreignKey:OwnerID" json:"-"`
	Tasks []Task `gorm:"foreignKey:ProjectID" json:"-"`
}
