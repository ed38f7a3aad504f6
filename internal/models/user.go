package models

import "time"

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"type:varchar(80);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	Projects      []Project `gorm:"foreignKey:OwnerID" json:"-"`
	AssignedTasks []Task    `gorm:"foreignKey:AssignedTo" json:"-"`
}
