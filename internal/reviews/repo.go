package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expresskart/expresskart-backend/internal/repo"
	"github.com/expresskart/expresskart-backend/pkg/db/models"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	"github.com/expresskart/expresskart-backend/pkg/pagination"
)

// Tally is the raw input of a rating aggregate.
type Tally struct {
	Total int64
	Count int64
}

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{Base: repo.NewBase(tx)}
}

func (r *Repository) Create(ctx context.Context, review *models.Review) error {
	return r.DB(ctx).Omit("User").Create(review).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.DB(ctx).Preload("User").First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *Repository) ExistsForUser(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var n int64
	err := r.DB(ctx).Model(&models.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&n).Error
	return n > 0, err
}

// SaveContent writes the author-editable fields.
func (r *Repository) SaveContent(ctx context.Context, review *models.Review) error {
	return r.DB(ctx).Model(review).Select("rating", "title", "comment", "updated_at").Updates(review).Error
}

func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status enums.ReviewStatus) error {
	return r.DB(ctx).Model(&models.Review{}).Where("id = ?", id).Update("status", status).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Delete(&models.Review{}, "id = ?", id).Error
}

// ListVisible returns approved, active reviews of a product, newest first.
func (r *Repository) ListVisible(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.Review, int64, error) {
	query := r.DB(ctx).Model(&models.Review{}).
		Where("product_id = ? AND status = ? AND is_active = ?", productID, enums.ReviewStatusApproved, true)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	p := params.Normalize()
	var rows []models.Review
	err := query.Preload("User").
		Order("created_at DESC").Order("id DESC").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&rows).Error
	return rows, total, err
}

// ProductTally sums the approved, active ratings of one product.
func (r *Repository) ProductTally(ctx context.Context, productID uuid.UUID) (Tally, error) {
	return r.tally(ctx, "product_id", productID)
}

// VendorTally sums the approved, active ratings across a vendor's products.
func (r *Repository) VendorTally(ctx context.Context, vendorID uuid.UUID) (Tally, error) {
	return r.tally(ctx, "vendor_id", vendorID)
}

func (r *Repository) tally(ctx context.Context, column string, id uuid.UUID) (Tally, error) {
	var t Tally
	err := r.DB(ctx).Model(&models.Review{}).
		Select("COALESCE(SUM(rating), 0) AS total, COUNT(*) AS count").
		Where(column+" = ? AND status = ? AND is_active = ?", id, enums.ReviewStatusApproved, true).
		Scan(&t).Error
	return t, err
}

// TalliesBy groups approved, active ratings by product_id or vendor_id.
func (r *Repository) TalliesBy(ctx context.Context, column string) (map[uuid.UUID]Tally, error) {
	var rows []struct {
		ID    uuid.UUID
		Total int64
		Count int64
	}
	err := r.DB(ctx).Model(&models.Review{}).
		Select(column+" AS id, COALESCE(SUM(rating), 0) AS total, COUNT(*) AS count").
		Where("status = ? AND is_active = ?", enums.ReviewStatusApproved, true).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]Tally, len(rows))
	for _, row := range rows {
		out[row.ID] = Tally{Total: row.Total, Count: row.Count}
	}
	return out, nil
}

// CachedRating is the denormalized aggregate stored on a product or vendor.
type CachedRating struct {
	ID            uuid.UUID
	RatingAverage float64
	RatingCount   int
}

// CachedRatings lists rows of model whose cached count is non-zero.
func (r *Repository) CachedRatings(ctx context.Context, model any) ([]CachedRating, error) {
	var rows []CachedRating
	err := r.DB(ctx).Model(model).
		Select("id, rating_average, rating_count").
		Where("rating_count > 0").
		Scan(&rows).Error
	return rows, err
}
