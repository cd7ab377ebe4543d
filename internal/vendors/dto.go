package vendors

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/expresskart/expresskart-backend/pkg/db/models"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	"github.com/expresskart/expresskart-backend/pkg/types"
)

// VendorDTO is the public vendor profile.
type VendorDTO struct {
	ID            uuid.UUID           `json:"id"`
	UserID        uuid.UUID           `json:"userId"`
	BusinessName  string              `json:"businessName"`
	Description   *string             `json:"description,omitempty"`
	Email         string              `json:"email"`
	Phone         string              `json:"phone"`
	Address       types.Address       `json:"address"`
	BusinessHours types.BusinessHours `json:"businessHours,omitempty"`
	Categories    []string            `json:"categories"`
	Status        enums.VendorStatus  `json:"status"`
	Verification  VerificationDTO     `json:"verification"`
	Rating        RatingDTO           `json:"rating"`
	ProductCount  *int64              `json:"productCount,omitempty"`
	Version       int                 `json:"version"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

type VerificationDTO struct {
	IsVerified bool       `json:"isVerified"`
	VerifiedBy *uuid.UUID `json:"verifiedBy,omitempty"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

type RatingDTO struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// CreateVendorRequest is the body of POST /api/vendors.
type CreateVendorRequest struct {
	BusinessName  string              `json:"businessName" validate:"required,min=2,max=120"`
	Description   *string             `json:"description,omitempty" validate:"omitempty,max=2000"`
	Email         string              `json:"email" validate:"required,email"`
	Phone         string              `json:"phone" validate:"required,min=7,max=20"`
	Address       types.Address       `json:"address" validate:"required"`
	BusinessHours types.BusinessHours `json:"businessHours,omitempty"`
	Categories    []string            `json:"categories,omitempty" validate:"omitempty,max=20,dive,min=1,max=60"`
}

// UpdateVendorRequest carries the business fields a vendor may change on its
// own profile. Version, when present, must match the stored version.
type UpdateVendorRequest struct {
	BusinessName  *string              `json:"businessName,omitempty" validate:"omitempty,min=2,max=120"`
	Description   *string              `json:"description,omitempty" validate:"omitempty,max=2000"`
	Email         *string              `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string              `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
	Address       *types.Address       `json:"address,omitempty"`
	BusinessHours *types.BusinessHours `json:"businessHours,omitempty"`
	Categories    *[]string            `json:"categories,omitempty" validate:"omitempty,max=20,dive,min=1,max=60"`
	Version       *int                 `json:"version,omitempty" validate:"omitempty,min=1"`
}

// VerifyRequest is the admin verification decision.
type VerifyRequest struct {
	IsVerified bool    `json:"isVerified"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// StatusRequest is the admin status override.
type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending active blocked suspended"`
}

// ListQuery filters the public vendor directory and the admin listing.
type ListQuery struct {
	City   string
	Search string
	Status enums.VendorStatus
}

// FromModel maps the persistence model onto the API shape.
func FromModel(v *models.Vendor) *VendorDTO {
	if v == nil {
		return nil
	}
	categories := v.Categories
	if categories == nil {
		categories = []string{}
	}
	return &VendorDTO{
		ID:            v.ID,
		UserID:        v.UserID,
		BusinessName:  v.BusinessName,
		Description:   v.Description,
		Email:         v.Email,
		Phone:         v.Phone,
		Address:       v.Address,
		BusinessHours: v.BusinessHours,
		Categories:    categories,
		Status:        v.Status,
		Verification: VerificationDTO{
			IsVerified: v.IsVerified,
			VerifiedBy: v.VerifiedBy,
			VerifiedAt: v.VerifiedAt,
			Notes:      v.VerificationNotes,
		},
		Rating:    RatingDTO{Average: v.RatingAverage, Count: v.RatingCount},
		Version:   v.Version,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func normalizeCategories(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, c := range in {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
