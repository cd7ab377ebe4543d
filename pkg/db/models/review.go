package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expresskart/expresskart-backend/pkg/enums"
)

// Review is one user's rating of one product.
type Review struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID          `gorm:"column:user_id;type:uuid;not null;uniqueIndex:reviews_user_product_key"`
	ProductID uuid.UUID          `gorm:"column:product_id;type:uuid;not null;uniqueIndex:reviews_user_product_key"`
	VendorID  uuid.UUID          `gorm:"column:vendor_id;type:uuid;not null;index"`
	User      *User              `gorm:"foreignKey:UserID"`
	Rating    int                `gorm:"column:rating;not null"`
	Title     *string            `gorm:"column:title"`
	Comment   string             `gorm:"column:comment;not null"`
	Status    enums.ReviewStatus `gorm:"column:status;type:text;not null;default:'approved'"`
	IsActive  bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

// Counts reports whether the review participates in rating aggregates.
func (r Review) Counts() bool {
	return r.IsActive && r.Status == enums.ReviewStatusApproved
}
