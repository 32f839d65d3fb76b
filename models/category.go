package models

import "time"

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index;not null" json:"userId"`
	Name      string    `gorm:"column:category;not null" json:"category" validate:"required"`
	Image     string    `gorm:"not null" json:"image"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
