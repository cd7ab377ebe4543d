package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/expresskart/expresskart-backend/pkg/db/models"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	"github.com/expresskart/expresskart-backend/pkg/outbox"
	"github.com/expresskart/expresskart-backend/pkg/pagination"
)

// Repository persists orders and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// Insert writes the order row inside a savepoint so a unique violation on
	// order_number leaves the surrounding transaction usable.
	Insert(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error

	FindByID(ctx context.Context, id uuid.UUID, lock bool) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, int64, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params) ([]models.Order, int64, error)
	ListAll(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Order, int64, error)

	// SaveStatus writes the mutable fulfilment columns of order.
	SaveStatus(ctx context.Context, order *models.Order) error

	CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error)
	DeliveredRevenue(ctx context.Context) (decimal.Decimal, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type orderMetrics interface {
	IncCreated(paymentMethod string)
	IncTransition(status string)
	IncNumberRetry()
}
