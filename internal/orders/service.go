package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/expresskart/expresskart-backend/internal/cart"
	"github.com/expresskart/expresskart-backend/internal/products"
	"github.com/expresskart/expresskart-backend/internal/repo"
	"github.com/expresskart/expresskart-backend/internal/users"
	"github.com/expresskart/expresskart-backend/internal/vendors"
	"github.com/expresskart/expresskart-backend/pkg/db"
	"github.com/expresskart/expresskart-backend/pkg/db/models"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	pkgerrors "github.com/expresskart/expresskart-backend/pkg/errors"
	"github.com/expresskart/expresskart-backend/pkg/logger"
	"github.com/expresskart/expresskart-backend/pkg/outbox"
	"github.com/expresskart/expresskart-backend/pkg/outbox/payloads"
	"github.com/expresskart/expresskart-backend/pkg/pagination"
	"github.com/expresskart/expresskart-backend/pkg/types"
)

const defaultNumberAttempts = 5

// Service exposes order placement, role-scoped queries and the status workflow.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderDTO, error)
	Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*CheckoutResult, error)
	Get(ctx context.Context, userID uuid.UUID, role enums.Role, orderID uuid.UUID) (*OrderDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]OrderDTO, types.PaginationMeta, error)
	ListVendor(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]OrderDTO, types.PaginationMeta, error)
	ListAll(ctx context.Context, filter ListFilter, params pagination.Params) ([]OrderDTO, types.PaginationMeta, error)
	UpdateStatus(ctx context.Context, userID uuid.UUID, role enums.Role, orderID uuid.UUID, req UpdateStatusRequest) (*OrderDTO, error)
	Cancel(ctx context.Context, userID uuid.UUID, role enums.Role, orderID uuid.UUID, req CancelRequest) (*OrderDTO, error)
}

// ServiceParams bundles the orders service dependencies.
type ServiceParams struct {
	Orders         Repository
	Products       *products.Repository
	Vendors        *vendors.Repository
	Users          *users.Repository
	Carts          *cart.CartRecordRepository
	CartItems      *cart.CartItemRepository
	Outbox         outboxPublisher
	Numbers        *NumberGenerator
	Pricing        Pricing
	NumberAttempts int
	Metrics        orderMetrics
	Logger         *logger.Logger
	Tx             txRunner
	Now            func() time.Time
}

type service struct {
	orders         Repository
	products       *products.Repository
	vendors        *vendors.Repository
	users          *users.Repository
	carts          *cart.CartRecordRepository
	cartItems      *cart.CartItemRepository
	outbox         outboxPublisher
	numbers        *NumberGenerator
	pricing        Pricing
	numberAttempts int
	metrics        orderMetrics
	logg           *logger.Logger
	tx             txRunner
	now            func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Products == nil || params.Vendors == nil || params.Users == nil {
		return nil, fmt.Errorf("products, vendors and users repositories required")
	}
	if params.Carts == nil || params.CartItems == nil {
		return nil, fmt.Errorf("cart repositories required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Numbers == nil {
		return nil, fmt.Errorf("order number generator required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	attempts := params.NumberAttempts
	if attempts <= 0 {
		attempts = defaultNumberAttempts
	}
	m := params.Metrics
	if m == nil {
		m = nopMetrics{}
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		orders:         params.Orders,
		products:       params.Products,
		vendors:        params.Vendors,
		users:          params.Users,
		carts:          params.Carts,
		cartItems:      params.CartItems,
		outbox:         params.Outbox,
		numbers:        params.Numbers,
		pricing:        params.Pricing,
		numberAttempts: attempts,
		metrics:        m,
		logg:           logg,
		tx:             params.Tx,
		now:            now,
	}, nil
}

// placement carries the checked request fields shared by Create and Checkout.
type placement struct {
	address  types.Address
	payment  enums.PaymentMethod
	delivery enums.DeliveryOption
	notes    *string
}

type line struct {
	product  *models.Product
	quantity int
	price    decimal.Decimal
}

// Create places a single order. The whole order is attributed to the vendor of
// the first item.
func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderDTO, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	for i, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d].productId is required", i)
		}
		if item.Quantity < 1 {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d].quantity must be at least 1", i)
		}
		if item.Price != nil && !item.Price.IsPositive() {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d].price must be positive", i)
		}
	}
	place, err := parsePlacement(req.ShippingAddress, req.PaymentMethod, req.DeliveryOption, req.Notes)
	if err != nil {
		return nil, err
	}

	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		customer, err := s.customerSnapshot(ctx, tx, userID, req.Customer)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(req.Items))
		for _, item := range req.Items {
			ids = append(ids, item.ProductID)
		}
		found, err := s.products.WithTx(tx).FindByIDs(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
		}
		lines := make([]line, 0, len(req.Items))
		for _, item := range req.Items {
			product, err := resolveProduct(found, item.ProductID)
			if err != nil {
				return err
			}
			price := product.SellingPrice
			if item.Price != nil {
				price = item.Price.Round(2)
			}
			lines = append(lines, line{product: product, quantity: item.Quantity, price: price})
		}

		vendorID := uuid.Nil
		for _, l := range lines {
			if l.product.VendorID != uuid.Nil {
				vendorID = l.product.VendorID
				break
			}
		}
		created, err = s.place(ctx, tx, userID, vendorID, lines, place, customer)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncCreated(string(created.PaymentMethod))
	dto := FromModel(created)
	return &dto, nil
}

// Checkout turns the caller's cart into one order per vendor, priced from the
// live catalog, and empties the cart in the same transaction.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*CheckoutResult, error) {
	place, err := parsePlacement(req.ShippingAddress, req.PaymentMethod, req.DeliveryOption, req.Notes)
	if err != nil {
		return nil, err
	}

	var created []*models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		c, err := carts.GetOrCreate(ctx, userID, true)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if req.CartVersion != nil && *req.CartVersion != c.Version {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart was modified by another request").
				WithDetails(map[string]any{"currentVersion": c.Version})
		}
		items := s.cartItems.WithTx(tx)
		cartLines, err := items.ListByCart(ctx, c.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
		}
		if len(cartLines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart empty")
		}
		customer, err := s.customerSnapshot(ctx, tx, userID, req.Customer)
		if err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0, len(cartLines))
		for _, item := range cartLines {
			ids = append(ids, item.ProductID)
		}
		found, err := s.products.WithTx(tx).FindByIDs(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
		}

		var vendorOrder []uuid.UUID
		groups := map[uuid.UUID][]line{}
		for _, item := range cartLines {
			product, err := resolveProduct(found, item.ProductID)
			if err != nil {
				return err
			}
			if _, seen := groups[product.VendorID]; !seen {
				vendorOrder = append(vendorOrder, product.VendorID)
			}
			groups[product.VendorID] = append(groups[product.VendorID], line{
				product:  product,
				quantity: item.Quantity,
				price:    product.SellingPrice,
			})
		}

		for _, vendorID := range vendorOrder {
			order, err := s.place(ctx, tx, userID, vendorID, groups[vendorID], place, customer)
			if err != nil {
				return err
			}
			created = append(created, order)
		}

		if err := items.DeleteAll(ctx, c.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		if err := carts.BumpVersion(ctx, c); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bump cart version")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{Orders: make([]OrderDTO, 0, len(created))}
	for _, order := range created {
		s.metrics.IncCreated(string(order.PaymentMethod))
		result.Orders = append(result.Orders, FromModel(order))
	}
	return result, nil
}

// place prices lines, inserts the order with a fresh number, writes its items
// and records order_created.
func (s *service) place(ctx context.Context, tx *gorm.DB, userID, vendorID uuid.UUID, lines []line, p placement, customer types.CustomerSnapshot) (*models.Order, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order items do not reference a vendor")
	}
	if _, err := s.vendors.WithTx(tx).FindByID(ctx, vendorID); err != nil {
		return nil, repo.LookupError(err, "vendor not found", "load vendor")
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.price.Mul(decimal.NewFromInt(int64(l.quantity))))
	}
	totals := s.pricing.Compute(subtotal, p.delivery)

	order := &models.Order{
		UserID:          userID,
		VendorID:        vendorID,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		ShippingFee:     totals.Shipping,
		Discount:        totals.Discount,
		Total:           totals.Total,
		PaymentMethod:   p.payment,
		PaymentStatus:   enums.PaymentStatusPending,
		Status:          enums.OrderStatusPending,
		DeliveryOption:  p.delivery,
		Customer:        customer,
		ShippingAddress: p.address,
		Notes:           p.notes,
	}
	if err := s.insertWithNumber(ctx, tx, order); err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(lines))
	for i, l := range lines {
		items = append(items, models.OrderItem{
			OrderID:   order.ID,
			ProductID: l.product.ID,
			Name:      l.product.Name,
			Image:     l.product.PrimaryImage(),
			Quantity:  l.quantity,
			UnitPrice: l.price,
			LineTotal: l.price.Mul(decimal.NewFromInt(int64(l.quantity))),
			Position:  i,
		})
	}
	if err := s.orders.WithTx(tx).CreateItems(ctx, items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
	}
	order.Items = items

	err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         &outbox.ActorRef{UserID: userID},
		Data: payloads.OrderCreatedEvent{
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			UserID:        userID,
			VendorID:      vendorID,
			Total:         order.Total,
			PaymentMethod: order.PaymentMethod,
			ItemCount:     len(items),
		},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order created")
	}
	return order, nil
}

// insertWithNumber retries with the next sequence value while the insert
// collides on order_number.
func (s *service) insertWithNumber(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	orders := s.orders.WithTx(tx)
	for attempt := 1; attempt <= s.numberAttempts; attempt++ {
		number, err := s.numbers.Next(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
		}
		order.OrderNumber = number
		err = orders.Insert(ctx, order)
		if err == nil {
			return nil
		}
		if !isNumberCollision(err) {
			return repo.WriteError(err, "create order")
		}
		s.metrics.IncNumberRetry()
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a unique order number, please retry")
}

func isNumberCollision(err error) bool {
	return db.IsUniqueViolation(err, "orders_order_number_key") ||
		db.IsUniqueViolation(err, "orders.order_number")
}

func (s *service) Get(ctx context.Context, userID uuid.UUID, role enums.Role, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.orders.FindByID(ctx, orderID, false)
	if err != nil {
		return nil, repo.LookupError(err, "order not found", "load order")
	}
	if order.UserID != userID && role != enums.RoleAdmin {
		vendor, err := s.vendors.FindByUserID(ctx, userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor profile")
		}
		if vendor == nil || vendor.ID != order.VendorID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to view this order")
		}
	}
	dto := FromModel(order)
	return &dto, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]OrderDTO, types.PaginationMeta, error) {
	rows, total, err := s.orders.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, types.PaginationMeta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return fromModels(rows), pagination.Meta(params, total), nil
}

// ListVendor rejects callers without a vendor profile instead of returning an
// empty page.
func (s *service) ListVendor(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]OrderDTO, types.PaginationMeta, error) {
	vendor, err := s.vendors.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.PaginationMeta{}, pkgerrors.New(pkgerrors.CodeForbidden, "vendor profile required")
		}
		return nil, types.PaginationMeta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor profile")
	}
	ctx = s.logg.WithVendorID(ctx, vendor.ID.String())
	rows, total, err := s.orders.ListByVendor(ctx, vendor.ID, params)
	if err != nil {
		return nil, types.PaginationMeta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor orders")
	}
	s.logg.Debug(ctx, "vendor orders listed")
	return fromModels(rows), pagination.Meta(params, total), nil
}

func (s *service) ListAll(ctx context.Context, filter ListFilter, params pagination.Params) ([]OrderDTO, types.PaginationMeta, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, types.PaginationMeta{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	rows, total, err := s.orders.ListAll(ctx, filter, params)
	if err != nil {
		return nil, types.PaginationMeta{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return fromModels(rows), pagination.Meta(params, total), nil
}

// UpdateStatus accepts any known status from the owning vendor or an admin.
// Only cancellation of a finished order is refused.
func (s *service) UpdateStatus(ctx context.Context, userID uuid.UUID, role enums.Role, orderID uuid.UUID, req UpdateStatusRequest) (*OrderDTO, error) {
	next, err := enums.ParseOrderStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" && next == enums.OrderStatusCancelled {
		reason = strings.TrimSpace(req.Note)
	}

	var updated *models.Order
	var vendorID uuid.UUID
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.orders.WithTx(tx).FindByID(ctx, orderID, true)
		if err != nil {
			return repo.LookupError(err, "order not found", "load order")
		}
		vendorID, err = s.authorizeFulfilment(ctx, tx, userID, role, order)
		if err != nil {
			return err
		}
		if next == enums.OrderStatusCancelled && order.Status.IsTerminal() {
			return pkgerrors.Newf(pkgerrors.CodeConflict, "order is already %s", order.Status)
		}
		updated = order
		return s.transition(ctx, tx, order, next, transitionInput{
			actor:    outbox.ActorRef{UserID: userID, Role: string(role)},
			note:     strings.TrimSpace(req.Note),
			reason:   reason,
			tracking: req.Tracking,
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition(string(next))

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":     updated.ID.String(),
		"order_status": string(next),
	})
	if vendorID != uuid.Nil {
		logCtx = s.logg.WithVendorID(logCtx, vendorID.String())
	}
	s.logg.Info(logCtx, "order status updated")

	dto := FromModel(updated)
	return &dto, nil
}

// Cancel is the owner-facing cancellation; admins may use it too.
func (s *service) Cancel(ctx context.Context, userID uuid.UUID, role enums.Role, orderID uuid.UUID, req CancelRequest) (*OrderDTO, error) {
	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.orders.WithTx(tx).FindByID(ctx, orderID, true)
		if err != nil {
			return repo.LookupError(err, "order not found", "load order")
		}
		if order.UserID != userID && role != enums.RoleAdmin {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the order owner can cancel this order")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.Newf(pkgerrors.CodeConflict, "order cannot be cancelled once %s", order.Status)
		}
		updated = order
		return s.transition(ctx, tx, order, enums.OrderStatusCancelled, transitionInput{
			actor:  outbox.ActorRef{UserID: userID, Role: string(role)},
			reason: strings.TrimSpace(req.Reason),
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition(string(enums.OrderStatusCancelled))
	dto := FromModel(updated)
	return &dto, nil
}

type transitionInput struct {
	actor    outbox.ActorRef
	note     string
	reason   string
	tracking *TrackingInput
}

// transition applies next with its payment side effects, appends to the
// tracking history and records the outbox events.
func (s *service) transition(ctx context.Context, tx *gorm.DB, order *models.Order, next enums.OrderStatus, in transitionInput) error {
	now := s.now().UTC()
	prev := order.Status

	order.Status = next
	order.UpdatedAt = now
	switch next {
	case enums.OrderStatusDelivered:
		order.PaymentStatus = enums.PaymentStatusPaid
		order.DeliveredAt = &now
	case enums.OrderStatusCancelled:
		order.PaymentStatus = enums.PaymentStatusRefunded
		order.CancelledAt = &now
		if in.reason != "" {
			reason := in.reason
			order.CancelReason = &reason
		}
	}

	tracking := types.Tracking{}
	if order.Tracking != nil {
		tracking = *order.Tracking
	}
	if in.tracking != nil {
		if carrier := strings.TrimSpace(in.tracking.Carrier); carrier != "" {
			tracking.Carrier = carrier
		}
		if number := strings.TrimSpace(in.tracking.TrackingNumber); number != "" {
			tracking.TrackingNumber = number
		}
	}
	note := in.note
	if note == "" && next == enums.OrderStatusCancelled {
		note = in.reason
	}
	tracking.History = append(tracking.History, types.TrackingEvent{
		Status:    string(next),
		Note:      note,
		ActorID:   in.actor.UserID.String(),
		ActorRole: in.actor.Role,
		At:        now,
	})
	order.Tracking = &tracking

	if err := s.orders.WithTx(tx).SaveStatus(ctx, order); err != nil {
		return repo.WriteError(err, "update order status")
	}

	actor := in.actor
	err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         &actor,
		OccurredAt:    now,
		Data: payloads.OrderStatusChangedEvent{
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			VendorID:      order.VendorID,
			From:          prev,
			To:            next,
			PaymentStatus: order.PaymentStatus,
			Note:          note,
		},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order status changed")
	}
	if next != enums.OrderStatusCancelled {
		return nil
	}
	err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderCancelled,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         &actor,
		OccurredAt:    now,
		Data: payloads.OrderCancelledEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			UserID:      order.UserID,
			VendorID:    order.VendorID,
			Reason:      in.reason,
			CancelledAt: now,
		},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order cancelled")
	}
	return nil
}

// authorizeFulfilment returns the acting vendor's id, or uuid.Nil for admins.
func (s *service) authorizeFulfilment(ctx context.Context, tx *gorm.DB, userID uuid.UUID, role enums.Role, order *models.Order) (uuid.UUID, error) {
	if role == enums.RoleAdmin {
		return uuid.Nil, nil
	}
	if role != enums.RoleVendor {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owning vendor or an admin can update order status")
	}
	vendor, err := s.vendors.WithTx(tx).FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor profile required")
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor profile")
	}
	if vendor.ID != order.VendorID {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another vendor")
	}
	return vendor.ID, nil
}

func (s *service) customerSnapshot(ctx context.Context, tx *gorm.DB, userID uuid.UUID, override *CustomerInput) (types.CustomerSnapshot, error) {
	user, err := s.users.WithTx(tx).FindByID(ctx, userID)
	if err != nil {
		return types.CustomerSnapshot{}, repo.LookupError(err, "user not found", "load user")
	}
	snap := types.CustomerSnapshot{Name: user.Name, Email: user.Email}
	if user.Phone != nil {
		snap.Phone = *user.Phone
	}
	if override != nil {
		if v := strings.TrimSpace(override.Name); v != "" {
			snap.Name = v
		}
		if v := strings.TrimSpace(override.Email); v != "" {
			snap.Email = strings.ToLower(v)
		}
		if v := strings.TrimSpace(override.Phone); v != "" {
			snap.Phone = v
		}
	}
	return snap, nil
}

func resolveProduct(found map[uuid.UUID]*models.Product, id uuid.UUID) (*models.Product, error) {
	product, ok := found[id]
	if !ok {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %s not found", id)
	}
	if !product.IsActive {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "product %q is not available", product.Name)
	}
	return product, nil
}

func parsePlacement(address types.Address, payment, delivery string, notes *string) (placement, error) {
	if !address.IsComplete() {
		return placement{}, pkgerrors.New(pkgerrors.CodeValidation, "shipping address requires line1, city, state and postalCode")
	}
	method, err := enums.ParsePaymentMethod(strings.ToLower(strings.TrimSpace(payment)))
	if err != nil {
		return placement{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	option, err := enums.ParseDeliveryOption(strings.ToLower(strings.TrimSpace(delivery)))
	if err != nil {
		return placement{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery option")
	}
	p := placement{address: address.Normalize(), payment: method, delivery: option}
	if notes != nil {
		if trimmed := strings.TrimSpace(*notes); trimmed != "" {
			p.notes = &trimmed
		}
	}
	return p, nil
}

type nopMetrics struct{}

func (nopMetrics) IncCreated(string)    {}
func (nopMetrics) IncTransition(string) {}
func (nopMetrics) IncNumberRetry()      {}
