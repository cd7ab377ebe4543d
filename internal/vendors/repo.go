package vendors

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/expresskart/expresskart-backend/internal/repo"
	"github.com/expresskart/expresskart-backend/pkg/db/models"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	"github.com/expresskart/expresskart-backend/pkg/pagination"
)

// Repository persists vendor profiles.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a copy bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

func (r *Repository) Create(ctx context.Context, vendor *models.Vendor) error {
	return r.DB(ctx).Create(vendor).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var v models.Vendor
	if err := r.DB(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// FindByUserID resolves the vendor profile owned by userID.
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Vendor, error) {
	var v models.Vendor
	if err := r.DB(ctx).First(&v, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repository) ExistsForUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	var n int64
	err := r.DB(ctx).Model(&models.Vendor{}).Where("user_id = ?", userID).Count(&n).Error
	return n > 0, err
}

// UpdateProfile writes the business fields when the stored version still equals
// expectedVersion and bumps the version. It reports false on a version mismatch.
func (r *Repository) UpdateProfile(ctx context.Context, vendor *models.Vendor, expectedVersion int) (bool, error) {
	vendor.Version = expectedVersion + 1
	vendor.UpdatedAt = time.Now().UTC()
	res := r.DB(ctx).
		Model(vendor).
		Where("version = ?", expectedVersion).
		Select("business_name", "description", "email", "phone", "address", "business_hours", "categories", "version", "updated_at").
		Updates(vendor)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateColumns applies administrative column changes and bumps the version.
func (r *Repository) UpdateColumns(ctx context.Context, id uuid.UUID, columns map[string]any) error {
	columns["version"] = gorm.Expr("version + 1")
	columns["updated_at"] = time.Now().UTC()
	return r.DB(ctx).Model(&models.Vendor{}).Where("id = ?", id).UpdateColumns(columns).Error
}

// UpdateRating overwrites the cached rating aggregate without touching the
// profile version.
func (r *Repository) UpdateRating(ctx context.Context, id uuid.UUID, average float64, count int) error {
	return r.DB(ctx).Model(&models.Vendor{}).Where("id = ?", id).
		UpdateColumns(map[string]any{"rating_average": average, "rating_count": count}).Error
}

// List returns vendors filtered by q, newest first, with the total count.
func (r *Repository) List(ctx context.Context, params pagination.Params, q ListQuery) ([]models.Vendor, int64, error) {
	query := r.DB(ctx).Model(&models.Vendor{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if city := strings.TrimSpace(q.City); city != "" {
		query = query.Where("LOWER("+repo.JSONText(query, "address", "city")+") = ?", strings.ToLower(city))
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		query = query.Where("LOWER(business_name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	p := params.Normalize()
	var rows []models.Vendor
	err := query.Order("created_at DESC").Order("id DESC").Offset(p.Offset()).Limit(p.Limit).Find(&rows).Error
	return rows, total, err
}

// CountActiveProducts derives the vendor's catalogue size from products.vendor_id.
func (r *Repository) CountActiveProducts(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&models.Product{}).
		Where("vendor_id = ? AND is_active = ?", vendorID, true).
		Count(&n).Error
	return n, err
}

// CountByStatus groups vendors by status.
func (r *Repository) CountByStatus(ctx context.Context) (map[enums.VendorStatus]int64, error) {
	var rows []struct {
		Status enums.VendorStatus
		Count  int64
	}
	err := r.DB(ctx).Model(&models.Vendor{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[enums.VendorStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
