package users

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expresskart/expresskart-backend/pkg/db/models"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	"github.com/expresskart/expresskart-backend/pkg/types"
)

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       *string    `json:"phone,omitempty"`
	Role        enums.Role `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Name         string
	Email        string
	PasswordHash string
	Phone        *string
	Role         enums.Role
}

// UpdateProfileRequest is the body of PUT /api/users/me.
type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone *string `json:"phone" validate:"omitempty,max=20"`
}

// AddressRequest is the body of POST /api/users/me/addresses.
type AddressRequest struct {
	Label     string        `json:"label" validate:"omitempty,max=40"`
	Address   types.Address `json:"address" validate:"required"`
	IsDefault bool          `json:"isDefault"`
}

// AddressDTO is one address book entry.
type AddressDTO struct {
	ID        uuid.UUID     `json:"id"`
	Label     string        `json:"label"`
	Address   types.Address `json:"address"`
	IsDefault bool          `json:"isDefault"`
	CreatedAt time.Time     `json:"createdAt"`
}

// WishlistItemDTO is a saved product with its current price.
type WishlistItemDTO struct {
	ProductID    uuid.UUID       `json:"productId"`
	Name         string          `json:"name"`
	Image        *string         `json:"image,omitempty"`
	MRP          decimal.Decimal `json:"mrp"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	IsActive     bool            `json:"isActive"`
	AddedAt      time.Time       `json:"addedAt"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.RoleUser
	}
	return &models.User{
		Name:         strings.TrimSpace(c.Name),
		Email:        NormalizeEmail(c.Email),
		PasswordHash: c.PasswordHash,
		Phone:        c.Phone,
		Role:         role,
		IsActive:     true,
	}
}

func addressFromModel(a models.UserAddress) AddressDTO {
	return AddressDTO{
		ID:        a.ID,
		Label:     a.Label,
		Address:   a.Address,
		IsDefault: a.IsDefault,
		CreatedAt: a.CreatedAt,
	}
}

func wishlistFromModel(w models.WishlistItem) WishlistItemDTO {
	dto := WishlistItemDTO{ProductID: w.ProductID, AddedAt: w.CreatedAt}
	if w.Product != nil {
		dto.Name = w.Product.Name
		dto.Image = w.Product.PrimaryImage()
		dto.MRP = w.Product.MRP
		dto.SellingPrice = w.Product.SellingPrice
		dto.IsActive = w.Product.IsActive
	}
	return dto
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
