package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/expresskart/expresskart-backend/internal/repo"
	"github.com/expresskart/expresskart-backend/pkg/db/models"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	"github.com/expresskart/expresskart-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository binds the orders repository to the supplied connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Insert(ctx context.Context, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("order required")
	}
	return r.db.WithContext(ctx).Transaction(func(sp *gorm.DB) error {
		return sp.Omit(clause.Associations).Create(order).Error
	})
}

func (r *repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID, lock bool) (*models.Order, error) {
	query := r.db.WithContext(ctx)
	if lock && repo.IsPostgres(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var order models.Order
	if err := query.Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	var items []models.OrderItem
	if err := r.db.WithContext(ctx).Where("order_id = ?", id).Order("position ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, int64, error) {
	return r.page(r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID), params, false)
}

func (r *repository) ListByVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params) ([]models.Order, int64, error) {
	return r.page(r.db.WithContext(ctx).Model(&models.Order{}).Where("vendor_id = ?", vendorID), params, true)
}

func (r *repository) ListAll(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	return r.page(query, params, true)
}

// page returns one newest-first page of orders with items attached.
func (r *repository) page(query *gorm.DB, params pagination.Params, withOwner bool) ([]models.Order, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	p := params.Normalize()
	query = query.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
	if withOwner {
		query = query.Preload("User")
	}
	var rows []models.Order
	err := query.Order("created_at DESC").Order("id DESC").Offset(p.Offset()).Limit(p.Limit).Find(&rows).Error
	return rows, total, err
}

var statusColumns = []string{
	"status", "payment_status", "tracking", "delivered_at",
	"cancelled_at", "cancel_reason", "updated_at",
}

func (r *repository) SaveStatus(ctx context.Context, order *models.Order) error {
	res := r.db.WithContext(ctx).Model(order).Select(statusColumns).Updates(order)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error) {
	var rows []struct {
		Status enums.OrderStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[enums.OrderStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// DeliveredRevenue sums totals of delivered and completed orders.
func (r *repository) DeliveredRevenue(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	row := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("SUM(total)").
		Where("status IN ?", []enums.OrderStatus{enums.OrderStatusDelivered, enums.OrderStatusCompleted}).
		Row()
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal.Round(2), nil
}
