package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expresskart/expresskart-backend/pkg/enums"
	"github.com/expresskart/expresskart-backend/pkg/types"
)

// Vendor is the business profile owned by exactly one vendor user. Its product
// list is derived from products.vendor_id and never stored here.
type Vendor struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID            uuid.UUID           `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	BusinessName      string              `gorm:"column:business_name;not null"`
	Description       *string             `gorm:"column:description"`
	Email             string              `gorm:"column:email;not null"`
	Phone             string              `gorm:"column:phone;not null"`
	Address           types.Address       `gorm:"column:address;type:jsonb;serializer:json;not null"`
	BusinessHours     types.BusinessHours `gorm:"column:business_hours;type:jsonb;serializer:json"`
	Categories        []string            `gorm:"column:categories;type:jsonb;serializer:json"`
	Status            enums.VendorStatus  `gorm:"column:status;type:text;not null;default:'pending'"`
	IsVerified        bool                `gorm:"column:is_verified;not null;default:false"`
	VerifiedBy        *uuid.UUID          `gorm:"column:verified_by;type:uuid"`
	VerifiedAt        *time.Time          `gorm:"column:verified_at"`
	VerificationNotes *string             `gorm:"column:verification_notes"`
	RatingAverage     float64             `gorm:"column:rating_average;not null;default:0"`
	RatingCount       int                 `gorm:"column:rating_count;not null;default:0"`
	Version           int                 `gorm:"column:version;not null;default:1"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *Vendor) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	if v.Version == 0 {
		v.Version = 1
	}
	return nil
}
