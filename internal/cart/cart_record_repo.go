package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/expresskart/expresskart-backend/internal/repo"
	"github.com/expresskart/expresskart-backend/pkg/db/models"
)

// CartRecordRepository encapsulates cart row persistence.
type CartRecordRepository struct {
	db *gorm.DB
}

// NewCartRecordRepository binds the repository to the provided GORM handle.
func NewCartRecordRepository(db *gorm.DB) *CartRecordRepository {
	return &CartRecordRepository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *CartRecordRepository) WithTx(tx *gorm.DB) *CartRecordRepository {
	if tx == nil {
		return r
	}
	return &CartRecordRepository{db: tx}
}

// FindByUser returns the user's cart row. With lock set the row is held
// FOR UPDATE until the surrounding transaction ends.
func (r *CartRecordRepository) FindByUser(ctx context.Context, userID uuid.UUID, lock bool) (*models.Cart, error) {
	q := r.db.WithContext(ctx)
	if lock && repo.IsPostgres(q) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var cart models.Cart
	if err := q.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOrCreate returns the user's cart, inserting an empty one first when absent.
// Concurrent creators race on the unique user_id and both read the winner.
func (r *CartRecordRepository) GetOrCreate(ctx context.Context, userID uuid.UUID, lock bool) (*models.Cart, error) {
	cart, err := r.FindByUser(ctx, userID, lock)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	fresh := &models.Cart{UserID: userID, Version: 1}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(fresh).Error
	if err != nil {
		return nil, err
	}
	return r.FindByUser(ctx, userID, lock)
}

// BumpVersion increments the stored version and mirrors it onto cart.
func (r *CartRecordRepository) BumpVersion(ctx context.Context, cart *models.Cart) error {
	next := cart.Version + 1
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Model(&models.Cart{}).
		Where("id = ?", cart.ID).
		Updates(map[string]any{"version": next, "updated_at": now}).Error
	if err != nil {
		return err
	}
	cart.Version = next
	cart.UpdatedAt = now
	return nil
}
