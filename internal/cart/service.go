package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expresskart/expresskart-backend/internal/products"
	"github.com/expresskart/expresskart-backend/internal/repo"
	"github.com/expresskart/expresskart-backend/pkg/db/models"
	pkgerrors "github.com/expresskart/expresskart-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the single server-side cart of each user.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartDTO, error)
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, req UpdateQuantityRequest) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID, expectedVersion *int) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID, expectedVersion *int) (*CartDTO, error)
}

// ServiceParams bundles the cart service dependencies.
type ServiceParams struct {
	Carts    *CartRecordRepository
	Items    *CartItemRepository
	Products *products.Repository
	Tx       txRunner
}

type service struct {
	carts    *CartRecordRepository
	items    *CartItemRepository
	products *products.Repository
	tx       txRunner
}

func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil || params.Items == nil {
		return nil, fmt.Errorf("cart repositories required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{carts: params.Carts, items: params.Items, products: params.Products, tx: params.Tx}, nil
}

// Get never reports a missing cart; one is created on first access.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	var out *CartDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cart, err := s.carts.WithTx(tx).GetOrCreate(ctx, userID, false)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		out, err = s.view(ctx, tx, cart)
		return err
	})
	return out, err
}

// AddItem merges into the existing line for the product when present.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartDTO, error) {
	if req.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "productId is required")
	}
	if req.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	return s.mutate(ctx, userID, req.ExpectedVersion, func(tx *gorm.DB, cart *models.Cart) error {
		product, err := s.products.WithTx(tx).FindByID(ctx, req.ProductID)
		if err != nil {
			return repo.LookupError(err, "product not found", "load product")
		}
		if !product.IsActive {
			return pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
		}

		items := s.items.WithTx(tx)
		existing, err := items.FindByProduct(ctx, cart.ID, product.ID)
		switch {
		case err == nil:
			return items.UpdateQuantity(ctx, existing.ID, existing.Quantity+req.Quantity)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return items.Create(ctx, snapshotItem(cart.ID, product, req))
	})
}

func (s *service) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, req UpdateQuantityRequest) (*CartDTO, error) {
	if req.Quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID, req.ExpectedVersion)
	}
	return s.mutate(ctx, userID, req.ExpectedVersion, func(tx *gorm.DB, cart *models.Cart) error {
		items := s.items.WithTx(tx)
		existing, err := items.FindByProduct(ctx, cart.ID, productID)
		if err != nil {
			return repo.LookupError(err, "item not in cart", "load cart item")
		}
		return items.UpdateQuantity(ctx, existing.ID, req.Quantity)
	})
}

// RemoveItem is a no-op for products that are not in the cart.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID, expectedVersion *int) (*CartDTO, error) {
	return s.mutate(ctx, userID, expectedVersion, func(tx *gorm.DB, cart *models.Cart) error {
		_, err := s.items.WithTx(tx).DeleteByProduct(ctx, cart.ID, productID)
		return err
	})
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID, expectedVersion *int) (*CartDTO, error) {
	return s.mutate(ctx, userID, expectedVersion, func(tx *gorm.DB, cart *models.Cart) error {
		return s.items.WithTx(tx).DeleteAll(ctx, cart.ID)
	})
}

// mutate runs fn against the locked cart and bumps its version. A supplied
// expectedVersion must equal the stored one.
func (s *service) mutate(ctx context.Context, userID uuid.UUID, expectedVersion *int, fn func(tx *gorm.DB, cart *models.Cart) error) (*CartDTO, error) {
	var out *CartDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		cart, err := carts.GetOrCreate(ctx, userID, true)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if expectedVersion != nil && *expectedVersion != cart.Version {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart was modified by another request").
				WithDetails(map[string]any{"currentVersion": cart.Version})
		}
		if err := fn(tx, cart); err != nil {
			return repo.WriteError(err, "update cart")
		}
		if err := carts.BumpVersion(ctx, cart); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bump cart version")
		}
		out, err = s.view(ctx, tx, cart)
		return err
	})
	return out, err
}

func (s *service) view(ctx context.Context, tx *gorm.DB, cart *models.Cart) (*CartDTO, error) {
	items, err := s.items.WithTx(tx).ListByCart(ctx, cart.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
	}
	return NewCartDTO(cart, items), nil
}

func snapshotItem(cartID uuid.UUID, product *models.Product, req AddItemRequest) *models.CartItem {
	item := &models.CartItem{
		CartID:       cartID,
		ProductID:    product.ID,
		Name:         product.Name,
		MRP:          product.MRP,
		SellingPrice: product.SellingPrice,
		Quantity:     req.Quantity,
		Image:        product.PrimaryImage(),
		VendorID:     &product.VendorID,
	}
	if product.Vendor != nil {
		item.VendorName = product.Vendor.BusinessName
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Image != nil && strings.TrimSpace(*req.Image) != "" {
		img := strings.TrimSpace(*req.Image)
		item.Image = &img
	}
	if req.MRP != nil && req.MRP.IsPositive() {
		item.MRP = req.MRP.Round(2)
	}
	if req.SellingPrice != nil && req.SellingPrice.IsPositive() {
		item.SellingPrice = req.SellingPrice.Round(2)
	}
	item.DiscountPercentage = models.DiscountPercent(item.MRP, item.SellingPrice)
	return item
}
