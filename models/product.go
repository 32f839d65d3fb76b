package models

import "time"

type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"index;not null" json:"userId"`
	CategoryID  *uint     `json:"categoryId"` // nullable; cleared when the category is deleted
	Title       string    `gorm:"not null" json:"title" validate:"required"`
	Description string    `json:"description"`
	Price       string    `gorm:"not null" json:"price"` // normalized to two decimals by the service
	Quantity    int       `gorm:"not null;default:0" json:"quantity"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	Category    *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Images      []Image   `gorm:"many2many:product_images" json:"-"`
}
