package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expresskart/expresskart-backend/internal/repo"
	"github.com/expresskart/expresskart-backend/pkg/db/models"
	pkgerrors "github.com/expresskart/expresskart-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service covers the signed-in user's own profile, address book and wishlist.
type Service interface {
	Me(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserDTO, error)
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error)
	AddAddress(ctx context.Context, userID uuid.UUID, req AddressRequest) (*AddressDTO, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error
	Wishlist(ctx context.Context, userID uuid.UUID) ([]WishlistItemDTO, error)
	AddToWishlist(ctx context.Context, userID, productID uuid.UUID) error
	RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error
}

type service struct {
	repo *Repository
	tx   txRunner
}

func NewService(repository *Repository, tx txRunner) (Service, error) {
	if repository == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repository, tx: tx}, nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, repo.LookupError(err, "user not found", "load user")
	}
	return FromModel(user), nil
}

func (s *service) UpdateMe(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserDTO, error) {
	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if err := s.repo.UpdateProfile(ctx, userID, updates); err != nil {
		return nil, repo.WriteError(err, "update profile")
	}
	return s.Me(ctx, userID)
}

func (s *service) ListAddresses(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error) {
	rows, err := s.repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, repo.WriteError(err, "list addresses")
	}
	out := make([]AddressDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, addressFromModel(row))
	}
	return out, nil
}

// AddAddress stores a new entry. The first address, or one flagged isDefault,
// becomes the only default.
func (s *service) AddAddress(ctx context.Context, userID uuid.UUID, req AddressRequest) (*AddressDTO, error) {
	addr := req.Address.Normalize()
	if !addr.IsComplete() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address requires line1, city, state and postalCode")
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		label = "home"
	}

	var created models.UserAddress
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		count, err := r.CountAddresses(ctx, userID)
		if err != nil {
			return err
		}
		makeDefault := req.IsDefault || count == 0
		if makeDefault && count > 0 {
			if err := r.ClearDefaultAddress(ctx, userID); err != nil {
				return err
			}
		}
		created = models.UserAddress{UserID: userID, Label: label, Address: addr, IsDefault: makeDefault}
		return r.CreateAddress(ctx, &created)
	})
	if err != nil {
		return nil, repo.WriteError(err, "create address")
	}
	dto := addressFromModel(created)
	return &dto, nil
}

func (s *service) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	deleted, err := s.repo.DeleteAddress(ctx, userID, addressID)
	if err != nil {
		return repo.WriteError(err, "delete address")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return nil
}

func (s *service) Wishlist(ctx context.Context, userID uuid.UUID) ([]WishlistItemDTO, error) {
	rows, err := s.repo.ListWishlist(ctx, userID)
	if err != nil {
		return nil, repo.WriteError(err, "list wishlist")
	}
	out := make([]WishlistItemDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, wishlistFromModel(row))
	}
	return out, nil
}

func (s *service) AddToWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	exists, err := s.repo.ProductExists(ctx, productID)
	if err != nil {
		return repo.WriteError(err, "check product")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return repo.WriteError(s.repo.AddWishlist(ctx, userID, productID), "add wishlist item")
}

func (s *service) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	return repo.WriteError(s.repo.RemoveWishlist(ctx, userID, productID), "remove wishlist item")
}
