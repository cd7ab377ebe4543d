package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expresskart/expresskart-backend/pkg/db/models"
)

// CartItemRepository manages persistent cart line items.
type CartItemRepository struct {
	db *gorm.DB
}

// NewCartItemRepository binds the repository to the provided DB handle.
func NewCartItemRepository(db *gorm.DB) *CartItemRepository {
	return &CartItemRepository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *CartItemRepository) WithTx(tx *gorm.DB) *CartItemRepository {
	if tx == nil {
		return r
	}
	return &CartItemRepository{db: tx}
}

// ListByCart returns the items in insertion order.
func (r *CartItemRepository) ListByCart(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *CartItemRepository) FindByProduct(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CartItemRepository) Create(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *CartItemRepository) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", itemID).Update("quantity", quantity).Error
}

// DeleteByProduct removes the product's line and reports whether one existed.
func (r *CartItemRepository) DeleteByProduct(ctx context.Context, cartID, productID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&models.CartItem{})
	return res.RowsAffected > 0, res.Error
}

// DeleteAll empties the cart.
func (r *CartItemRepository) DeleteAll(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
