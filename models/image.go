package models

import "time"

type Image struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Image     string    `gorm:"not null" json:"image"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// ProductImage is the join table between products and images. It is
// registered with SetupJoinTable so association queries and the explicit
// row operations in the product service share the same schema.
type ProductImage struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	ProductID uint `gorm:"index;not null" json:"productId"`
	ImageID   uint `gorm:"index;not null" json:"imageId"`
}
