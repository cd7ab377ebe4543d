package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/expresskart/expresskart-backend/internal/repo"
	"github.com/expresskart/expresskart-backend/pkg/db/models"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	"github.com/expresskart/expresskart-backend/pkg/pagination"
)

const suggestionLimit = 10

// Repository persists products.
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

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	// is_active defaults to true, so gorm drops a false value from the insert
	// and reads true back. Keep the requested value for a second write.
	active := product.IsActive
	if err := r.DB(ctx).Omit(clause.Associations).Create(product).Error; err != nil {
		return err
	}
	if !active {
		if err := r.SetActive(ctx, product.ID, false); err != nil {
			return err
		}
		product.IsActive = false
	}
	return nil
}

// Save writes every column of product.
func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Omit(clause.Associations).Save(product).Error
}

func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.DB(ctx).Model(&models.Product{}).Where("id = ?", id).Update("is_active", active).Error
}

// FindByID loads a product with its vendor, active or not.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB(ctx).Preload("Vendor").First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByIDs loads the products in ids keyed by id. Missing ids are absent from the map.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	out := make(map[uuid.UUID]*models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.DB(ctx).Preload("Vendor").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

// List returns the public catalog page: active products of active vendors.
func (r *Repository) List(ctx context.Context, q ListQuery, params pagination.Params) ([]models.Product, int64, error) {
	var total int64
	if err := r.catalog(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	p := params.Normalize()
	var rows []models.Product
	err := applySort(r.catalog(ctx, q).Select("products.*"), q.Sort).
		Preload("Vendor").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&rows).Error
	return rows, total, err
}

func (r *Repository) catalog(ctx context.Context, q ListQuery) *gorm.DB {
	qb := r.DB(ctx).Model(&models.Product{}).
		Joins("JOIN vendors ON vendors.id = products.vendor_id").
		Where("products.is_active = ?", true).
		Where("vendors.status = ?", enums.VendorStatusActive)

	if category := strings.TrimSpace(q.Category); category != "" {
		qb = qb.Where("products.category = ?", strings.ToLower(category))
	}
	if q.VendorID != nil {
		qb = qb.Where("products.vendor_id = ?", *q.VendorID)
	}
	if q.MinPrice != nil {
		qb = qb.Where("products.selling_price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		qb = qb.Where("products.selling_price <= ?", *q.MaxPrice)
	}
	if q.Featured != nil {
		qb = qb.Where("products.is_featured = ?", *q.Featured)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where(
			"(LOWER(products.name) LIKE ? OR LOWER(COALESCE(products.description, '')) LIKE ? OR LOWER(CAST(products.tags AS TEXT)) LIKE ?)",
			pattern, pattern, pattern,
		)
	}
	return qb
}

func applySort(qb *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case SortPriceAsc:
		qb = qb.Order("products.selling_price ASC")
	case SortPriceDesc:
		qb = qb.Order("products.selling_price DESC")
	case SortRating:
		qb = qb.Order("products.rating_average DESC").Order("products.rating_count DESC")
	case SortName:
		qb = qb.Order("products.name ASC")
	default:
		qb = qb.Order("products.created_at DESC")
	}
	return qb.Order("products.id DESC")
}

// ListByVendor pages through one vendor's products, newest first.
func (r *Repository) ListByVendor(ctx context.Context, vendorID uuid.UUID, includeInactive bool, params pagination.Params) ([]models.Product, int64, error) {
	qb := r.DB(ctx).Model(&models.Product{}).Where("vendor_id = ?", vendorID)
	if !includeInactive {
		qb = qb.Where("is_active = ?", true)
	}
	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	p := params.Normalize()
	var rows []models.Product
	err := qb.Order("created_at DESC").Order("id DESC").Offset(p.Offset()).Limit(p.Limit).Find(&rows).Error
	return rows, total, err
}

// Suggest returns active products whose name starts with or contains term,
// prefix matches first.
func (r *Repository) Suggest(ctx context.Context, term string) ([]SuggestionDTO, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return []SuggestionDTO{}, nil
	}
	var rows []SuggestionDTO
	err := r.DB(ctx).Model(&models.Product{}).
		Select("id, name, category").
		Where("is_active = ? AND LOWER(name) LIKE ?", true, "%"+term+"%").
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:  "CASE WHEN LOWER(name) LIKE ? THEN 0 ELSE 1 END, name ASC",
			Vars: []any{term + "%"},
		}}).
		Limit(suggestionLimit).
		Scan(&rows).Error
	return rows, err
}

// UpdateRating overwrites the cached rating aggregate.
func (r *Repository) UpdateRating(ctx context.Context, id uuid.UUID, average float64, count int) error {
	return r.DB(ctx).Model(&models.Product{}).Where("id = ?", id).
		UpdateColumns(map[string]any{"rating_average": average, "rating_count": count}).Error
}

func (r *Repository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&models.Product{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}
