package orders

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/expresskart/expresskart-backend/internal/cart"
	"github.com/expresskart/expresskart-backend/internal/products"
	"github.com/expresskart/expresskart-backend/internal/users"
	"github.com/expresskart/expresskart-backend/internal/vendors"
	"github.com/expresskart/expresskart-backend/pkg/config"
	"github.com/expresskart/expresskart-backend/pkg/db"
	"github.com/expresskart/expresskart-backend/pkg/db/dbtest"
	"github.com/expresskart/expresskart-backend/pkg/db/models"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	pkgerrors "github.com/expresskart/expresskart-backend/pkg/errors"
	"github.com/expresskart/expresskart-backend/pkg/logger"
	"github.com/expresskart/expresskart-backend/pkg/outbox"
	"github.com/expresskart/expresskart-backend/pkg/pagination"
	"github.com/expresskart/expresskart-backend/pkg/types"
)

var testDay = time.Date(2025, 4, 15, 6, 0, 0, 0, time.UTC)

type countingMetrics struct {
	created     atomic.Int64
	transitions atomic.Int64
	retries     atomic.Int64
}

func (m *countingMetrics) IncCreated(string)    { m.created.Add(1) }
func (m *countingMetrics) IncTransition(string) { m.transitions.Add(1) }
func (m *countingMetrics) IncNumberRetry()      { m.retries.Add(1) }

type atomicSequencer struct{ n atomic.Int64 }

func (s *atomicSequencer) NextOrderSequence(context.Context, string) (int64, error) {
	return s.n.Add(1), nil
}

type fixture struct {
	svc     Service
	conn    *gorm.DB
	metrics *countingMetrics
	cart    cart.Service
	logs    *syncBuffer
}

// syncBuffer collects log lines written from concurrent requests.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newFixture(t *testing.T, seq Sequencer, attempts int) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	pricing, err := NewPricing(config.OrdersConfig{ExpressShippingFee: "100", StandardShippingFee: "50", TaxRatePercent: "0"})
	require.NoError(t, err)
	gen := NewNumberGenerator(seq, time.UTC)
	gen.now = func() time.Time { return testDay }

	m := &countingMetrics{}
	logs := &syncBuffer{}
	productRepo := products.NewRepository(conn)
	carts := cart.NewCartRecordRepository(conn)
	cartItems := cart.NewCartItemRepository(conn)
	svc, err := NewService(ServiceParams{
		Orders:         NewRepository(conn),
		Products:       productRepo,
		Vendors:        vendors.NewRepository(conn),
		Users:          users.NewRepository(conn),
		Carts:          carts,
		CartItems:      cartItems,
		Outbox:         outbox.NewService(outbox.NewRepository(conn), logger.Nop(), true),
		Numbers:        gen,
		Pricing:        pricing,
		NumberAttempts: attempts,
		Metrics:        m,
		Logger:         logger.New(logger.Options{ServiceName: "orders-test", Output: logs}),
		Tx:             db.FromGorm(conn),
	})
	require.NoError(t, err)

	cartSvc, err := cart.NewService(cart.ServiceParams{Carts: carts, Items: cartItems, Products: productRepo, Tx: db.FromGorm(conn)})
	require.NoError(t, err)
	return &fixture{svc: svc, conn: conn, metrics: m, cart: cartSvc, logs: logs}
}

func testAddress() types.Address {
	return types.Address{Line1: "12 MG Road", City: "Pune", State: "MH", PostalCode: "411001"}
}

func (f *fixture) countRows(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := f.conn.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func price(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestCreateOrderComputesExpressTotals(t *testing.T) {
	f := newFixture(t, &stubSequencer{}, 0)
	ctx := context.Background()
	buyer := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	vendor := dbtest.SeedVendor(t, f.conn, nil, enums.VendorStatusActive)
	p1 := dbtest.SeedProduct(t, f.conn, vendor.ID, "120")
	p2 := dbtest.SeedProduct(t, f.conn, vendor.ID, "60")

	order, err := f.svc.Create(ctx, buyer.ID, CreateOrderRequest{
		Items: []ItemInput{
			{ProductID: p1.ID, Quantity: 2, Price: price("100")},
			{ProductID: p2.ID, Quantity: 1, Price: price("50")},
		},
		ShippingAddress: testAddress(),
		PaymentMethod:   "cod",
		DeliveryOption:  "express",
	})
	require.NoError(t, err)

	require.True(t, order.Subtotal.Equal(decimal.NewFromInt(250)))
	require.True(t, order.ShippingFee.Equal(decimal.NewFromInt(100)))
	require.True(t, order.Total.Equal(decimal.NewFromInt(350)))
	require.Equal(t, enums.OrderStatusPending, order.Status)
	require.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)
	require.Equal(t, "EK2504150001", order.OrderNumber)
	require.Equal(t, buyer.Email, order.Customer.Email)
	require.Equal(t, "India", order.ShippingAddress.Country)

	sum := decimal.Zero
	for _, item := range order.Items {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	require.True(t, order.Subtotal.Equal(sum))

	require.EqualValues(t, 1, f.metrics.created.Load())
	require.EqualValues(t, 1, f.countRows(t, &models.OutboxEvent{}, "event_type = ?", enums.EventOrderCreated))
}

func TestCreateOrderDefaultsPriceAndStandardShipping(t *testing.T) {
	f := newFixture(t, &stubSequencer{}, 0)
	ctx := context.Background()
	buyer := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	vendor := dbtest.SeedVendor(t, f.conn, nil, enums.VendorStatusActive)
	p := dbtest.SeedProduct(t, f.conn, vendor.ID, "75.50")

	order, err := f.svc.Create(ctx, buyer.ID, CreateOrderRequest{
		Items:           []ItemInput{{ProductID: p.ID, Quantity: 2}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "UPI",
		Customer:        &CustomerInput{Phone: "9876543210"},
		Notes:           strPtr("  leave at door "),
	})
	require.NoError(t, err)
	require.True(t, order.Items[0].Price.Equal(decimal.RequireFromString("75.50")))
	require.True(t, order.Subtotal.Equal(decimal.NewFromInt(151)))
	require.True(t, order.ShippingFee.Equal(decimal.NewFromInt(50)))
	require.Equal(t, enums.DeliveryOptionStandard, order.DeliveryOption)
	require.Equal(t, enums.PaymentMethodUPI, order.PaymentMethod)
	require.Equal(t, "9876543210", order.Customer.Phone)
	require.Equal(t, buyer.Name, order.Customer.Name)
	require.Equal(t, "leave at door", *order.Notes)
}

func TestOrderItemsSurviveProductPriceChange(t *testing.T) {
	f := newFixture(t, &stubSequencer{}, 0)
	ctx := context.Background()
	buyer := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	vendor := dbtest.SeedVendor(t, f.conn, nil, enums.VendorStatusActive)
	p := dbtest.SeedProduct(t, f.conn, vendor.ID, "40")

	created, err := f.svc.Create(ctx, buyer.ID, CreateOrderRequest{
		Items:           []ItemInput{{ProductID: p.ID, Quantity: 3}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "card",
	})
	require.NoError(t, err)

	require.NoError(t, f.conn.Model(&models.Product{}).Where("id = ?", p.ID).
		Updates(map[string]any{"selling_price": decimal.NewFromInt(99), "name": "Renamed"}).Error)

	got, err := f.svc.Get(ctx, buyer.ID, enums.RoleUser, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.True(t, got.Items[0].Price.Equal(decimal.NewFromInt(40)))
	require.True(t, got.Items[0].LineTotal.Equal(decimal.NewFromInt(120)))
	require.Equal(t, created.Items[0].Name, got.Items[0].Name)
}

func TestCreateOrderAttributesFirstItemVendor(t *testing.T) {
	f := newFixture(t, &stubSequencer{}, 0)
	ctx := context.Background()
	buyer := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	first := dbtest.SeedVendor(t, f.conn, nil, enums.VendorStatusActive)
	second := dbtest.SeedVendor(t, f.conn, nil, enums.VendorStatusActive)
	p1 := dbtest.SeedProduct(t, f.conn, first.ID, "10")
	p2 := dbtest.SeedProduct(t, f.conn, second.ID, "20")

	order, err := f.svc.Create(ctx, buyer.ID, CreateOrderRequest{
		Items:           []ItemInput{{ProductID: p1.ID, Quantity: 1}, {ProductID: p2.ID, Quantity: 1}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "cod",
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, order.VendorID)
}

func TestCreateOrderMissingProductCreatesNothing(t *testing.T) {
	f := newFixture(t, &stubSequencer{}, 0)
	ctx := context.Background()
	buyer := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	vendor := dbtest.SeedVendor(t, f.conn, nil, enums.VendorStatusActive)
	p := dbtest.SeedProduct(t, f.conn, vendor.ID, "10")

	_, err := f.svc.Create(ctx, buyer.ID, CreateOrderRequest{
		Items:           []ItemInput{{ProductID: p.ID, Quantity: 1}, {ProductID: uuid.New(), Quantity: 1}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "cod",
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	require.Zero(t, f.countRows(t, &models.Order{}, ""))
	require.Zero(t, f.countRows(t, &models.OrderItem{}, ""))
	require.Zero(t, f.countRows(t, &models.OutboxEvent{}, ""))
}

func TestCreateOrderRejectsInactiveProduct(t *testing.T) {
	f := newFixture(t, &stubSequencer{}, 0)
	ctx := context.Background()
	buyer := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	vendor := dbtest.SeedVendor(t, f.conn, nil, enums.VendorStatusActive)
	p := dbtest.SeedProduct(t, f.conn, vendor.ID, "10")
	require.NoError(t, f.conn.Model(&models.Product{}).Where("id = ?", p.ID).Update("is_active", false).Error)

	_, err := f.svc.Create(ctx, buyer.ID, CreateOrderRequest{
		Items:           []ItemInput{{ProductID: p.ID, Quantity: 1}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "cod",
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateOrderValidatesInput(t *testing.T) {
	f := newFixture(t, &stubSequencer{}, 0)
	productID := uuid.New()
	valid := func() CreateOrderRequest {
		return CreateOrderRequest{
			Items:           []ItemInput{{ProductID: productID, Quantity: 1}},
			ShippingAddress: testAddress(),
			PaymentMethod:   "cod",
		}
	}
	cases := map[string]func(r *CreateOrderRequest){
		"no items":           func(r *CreateOrderRequest) { r.Items = nil },
		"zero quantity":      func(r *CreateOrderRequest) { r.Items[0].Quantity = 0 },
		"negative price":     func(r *CreateOrderRequest) { r.Items[0].Price = price("-1") },
		"unknown payment":    func(r *CreateOrderRequest) { r.PaymentMethod = "cheque" },
		"unknown delivery":   func(r *CreateOrderRequest) { r.DeliveryOption = "drone" },
		"incomplete address": func(r *CreateOrderRequest) { r.ShippingAddress.City = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := valid()
			mutate(&req)
			_, err := f.svc.Create(context.Background(), uuid.New(), req)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestCreateOrderRetriesOnNumberCollision(t *testing.T) {
	seq := &stubSequencer{values: []int64{1, 1, 2}}
	f := newFixture(t, seq, 0)
	ctx := context.Background()
	buyer := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	vendor := dbtest.SeedVendor(t, f.conn, nil, enums.VendorStatusActive)
	p := dbtest.SeedProduct(t, f.conn, vendor.ID, "10")
	req := CreateOrderRequest{
		Items:           []ItemInput{{ProductID: p.ID, Quantity: 1}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "cod",
	}

	first, err := f.svc.Create(ctx, buyer.ID, req)
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, buyer.ID, req)
	require.NoError(t, err)

	require.Equal(t, "EK2504150001", first.OrderNumber)
	require.Equal(t, "EK2504150002", second.OrderNumber)
	require.EqualValues(t, 1, f.metrics.retries.Load())
	require.EqualValues(t, 2, f.countRows(t, &models.Order{}, ""))
}

func TestCreateOrderGivesUpAfterMaxAttempts(t *testing.T) {
	seq := &stubSequencer{values: []int64{1, 1, 1, 1}}
	f := newFixture(t, seq, 3)
	ctx := context.Background()
	buyer := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	vendor := dbtest.SeedVendor(t, f.conn, nil, enums.VendorStatusActive)
	p := dbtest.SeedProduct(t, f.conn, vendor.ID, "10")
	req := CreateOrderRequest{
		Items:           []ItemInput{{ProductID: p.ID, Quantity: 1}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "cod",
	}

	_, err := f.svc.Create(ctx, buyer.ID, req)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, buyer.ID, req)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
	require.EqualValues(t, 3, f.metrics.retries.Load())
	require.EqualValues(t, 1, f.countRows(t, &models.Order{}, ""))
	require.EqualValues(t, 1, f.countRows(t, &models.OrderItem{}, ""))
}

func TestConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	f := newFixture(t, &atomicSequencer{}, 0)
	ctx := context.Background()
	buyer := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	vendor := dbtest.SeedVendor(t, f.conn, nil, enums.VendorStatusActive)
	p := dbtest.SeedProduct(t, f.conn, vendor.ID, "10")

	const callers = 10
	var wg sync.WaitGroup
	numbers := make(chan string, callers)
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := f.svc.Create(ctx, buyer.ID, CreateOrderRequest{
				Items:           []ItemInput{{ProductID: p.ID, Quantity: 1}},
				ShippingAddress: testAddress(),
				PaymentMethod:   "cod",
			})
			if err != nil {
				errs <- err
				return
			}
			numbers <- order.OrderNumber
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	seen := map[string]struct{}{}
	for n := range numbers {
		seen[n] = struct{}{}
	}
	require.Len(t, seen, callers)
}

func TestCheckoutEmptyCartIsRejected(t *testing.T) {
	f := newFixture(t, &stubSequencer{}, 0)
	buyer := dbtest.SeedUser(t, f.conn, enums.RoleUser)

	_, err := f.svc.Checkout(context.Background(), buyer.ID, CheckoutRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   "cod",
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.ErrorContains(t, err, "cart empty")
	require.Zero(t, f.countRows(t, &models.Order{}, ""))
}

func TestCheckoutSplitsCartByVendorAndClearsIt(t *testing.T) {
	f := newFixture(t, &stubSequencer{}, 0)
	ctx := context.Background()
	buyer := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	first := dbtest.SeedVendor(t, f.conn, nil, enums.VendorStatusActive)
	second := dbtest.SeedVendor(t, f.conn, nil, enums.VendorStatusActive)
	a1 := dbtest.SeedProduct(t, f.conn, first.ID, "10")
	b1 := dbtest.SeedProduct(t, f.conn, second.ID, "30")
	a2 := dbtest.SeedProduct(t, f.conn, first.ID, "5")

	for _, add := range []cart.AddItemRequest{
		{ProductID: a1.ID, Quantity: 2},
		{ProductID: b1.ID, Quantity: 1, SellingPrice: price("1")},
		{ProductID: a2.ID, Quantity: 4},
	} {
		_, err := f.cart.AddItem(ctx, buyer.ID, add)
		require.NoError(t, err)
	}

	result, err := f.svc.Checkout(ctx, buyer.ID, CheckoutRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   "netbanking",
		DeliveryOption:  "express",
	})
	require.NoError(t, err)
	require.Len(t, result.Orders, 2)

	require.Equal(t, first.ID, result.Orders[0].VendorID)
	require.Len(t, result.Orders[0].Items, 2)
	require.True(t, result.Orders[0].Subtotal.Equal(decimal.NewFromInt(40)))

	require.Equal(t, second.ID, result.Orders[1].VendorID)
	require.True(t, result.Orders[1].Items[0].Price.Equal(decimal.NewFromInt(30)), "live price wins over cart snapshot")
	require.True(t, result.Orders[1].Total.Equal(decimal.NewFromInt(130)))
	require.NotEqual(t, result.Orders[0].OrderNumber, result.Orders[1].OrderNumber)

	view, err := f.cart.Get(ctx, buyer.ID)
	require.NoError(t, err)
	require.Empty(t, view.Items)
	require.EqualValues(t, 2, f.countRows(t, &models.OutboxEvent{}, "event_type = ?", enums.EventOrderCreated))
	require.EqualValues(t, 2, f.metrics.created.Load())
}

func TestCheckoutStaleCartVersionConflicts(t *testing.T) {
	f := newFixture(t, &stubSequencer{}, 0)
	ctx := context.Background()
	buyer := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	vendor := dbtest.SeedVendor(t, f.conn, nil, enums.VendorStatusActive)
	p := dbtest.SeedProduct(t, f.conn, vendor.ID, "10")
	_, err := f.cart.AddItem(ctx, buyer.ID, cart.AddItemRequest{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)

	stale := 1
	_, err = f.svc.Checkout(ctx, buyer.ID, CheckoutRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   "cod",
		CartVersion:     &stale,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	require.Zero(t, f.countRows(t, &models.Order{}, ""))
}

// placeOrder creates a pending order from a fresh vendor and returns the
// order with the vendor's owner.
func placeOrder(t *testing.T, f *fixture, buyer *models.User) (*OrderDTO, *models.Vendor) {
	t.Helper()
	vendor := dbtest.SeedVendor(t, f.conn, nil, enums.VendorStatusActive)
	p := dbtest.SeedProduct(t, f.conn, vendor.ID, "25")
	order, err := f.svc.Create(context.Background(), buyer.ID, CreateOrderRequest{
		Items:           []ItemInput{{ProductID: p.ID, Quantity: 1}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "cod",
	})
	require.NoError(t, err)
	return order, vendor
}

func TestUpdateStatusByOtherVendorIsForbidden(t *testing.T) {
	f := newFixture(t, &stubSequencer{}, 0)
	ctx := context.Background()
	buyer := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	order, _ := placeOrder(t, f, buyer)
	other := dbtest.SeedVendor(t, f.conn, nil, enums.VendorStatusActive)

	_, err := f.svc.UpdateStatus(ctx, other.UserID, enums.RoleVendor, order.ID, UpdateStatusRequest{Status: "shipped"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	got, err := f.svc.Get(ctx, buyer.ID, enums.RoleUser, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPending, got.Status)
	require.Nil(t, got.Tracking)
}

func TestUpdateStatusSideEffects(t *testing.T) {
	f := newFixture(t, &stubSequencer{}, 0)
	ctx := context.Background()
	buyer := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	order, vendor := placeOrder(t, f, buyer)

	shipped, err := f.svc.UpdateStatus(ctx, vendor.UserID, enums.RoleVendor, order.ID, UpdateStatusRequest{
		Status:   "shipped",
		Note:     "handed to courier",
		Tracking: &TrackingInput{Carrier: "BlueDart", TrackingNumber: "BD123"},
	})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusShipped, shipped.Status)
	require.Equal(t, "BD123", shipped.Tracking.TrackingNumber)

	delivered, err := f.svc.UpdateStatus(ctx, vendor.UserID, enums.RoleVendor, order.ID, UpdateStatusRequest{Status: "delivered"})
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusPaid, delivered.PaymentStatus)
	require.NotNil(t, delivered.DeliveredAt)

	got, err := f.svc.Get(ctx, vendor.UserID, enums.RoleVendor, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusDelivered, got.Status)
	require.Equal(t, "BlueDart", got.Tracking.Carrier)
	require.Len(t, got.Tracking.History, 2)
	require.Equal(t, "handed to courier", got.Tracking.History[0].Note)

	require.EqualValues(t, 2, f.countRows(t, &models.OutboxEvent{}, "event_type = ?", enums.EventOrderStatusChanged))
	require.EqualValues(t, 2, f.metrics.transitions.Load())
	require.Contains(t, f.logs.String(), `"vendor_id":"`+vendor.ID.String()+`"`)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t, &stubSequencer{}, 0)
	buyer := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	order, _ := placeOrder(t, f, buyer)
	admin := dbtest.SeedUser(t, f.conn, enums.RoleAdmin)

	_, err := f.svc.UpdateStatus(context.Background(), admin.ID, enums.RoleAdmin, order.ID, UpdateStatusRequest{Status: "lost"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestAdminCanCancelThroughStatusUpdate(t *testing.T) {
	f := newFixture(t, &stubSequencer{}, 0)
	ctx := context.Background()
	buyer := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	order, _ := placeOrder(t, f, buyer)
	admin := dbtest.SeedUser(t, f.conn, enums.RoleAdmin)

	got, err := f.svc.UpdateStatus(ctx, admin.ID, enums.RoleAdmin, order.ID, UpdateStatusRequest{Status: "cancelled", Reason: "fraud check"})
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusRefunded, got.PaymentStatus)
	require.Equal(t, "fraud check", *got.CancelReason)
	require.EqualValues(t, 1, f.countRows(t, &models.OutboxEvent{}, "event_type = ?", enums.EventOrderCancelled))
}

func TestCancelByOwner(t *testing.T) {
	f := newFixture(t, &stubSequencer{}, 0)
	ctx := context.Background()
	buyer := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	order, _ := placeOrder(t, f, buyer)

	stranger := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	_, err := f.svc.Cancel(ctx, stranger.ID, enums.RoleUser, order.ID, CancelRequest{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	got, err := f.svc.Cancel(ctx, buyer.ID, enums.RoleUser, order.ID, CancelRequest{Reason: "changed my mind"})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCancelled, got.Status)
	require.Equal(t, enums.PaymentStatusRefunded, got.PaymentStatus)
	require.NotNil(t, got.CancelledAt)
	require.Equal(t, "changed my mind", *got.CancelReason)

	_, err = f.svc.Cancel(ctx, buyer.ID, enums.RoleUser, order.ID, CancelRequest{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestCancelTerminalOrderLeavesStatusUnchanged(t *testing.T) {
	for _, terminal := range []string{"delivered", "completed"} {
		t.Run(terminal, func(t *testing.T) {
			f := newFixture(t, &stubSequencer{}, 0)
			ctx := context.Background()
			buyer := dbtest.SeedUser(t, f.conn, enums.RoleUser)
			order, vendor := placeOrder(t, f, buyer)
			_, err := f.svc.UpdateStatus(ctx, vendor.UserID, enums.RoleVendor, order.ID, UpdateStatusRequest{Status: terminal})
			require.NoError(t, err)

			_, err = f.svc.Cancel(ctx, buyer.ID, enums.RoleUser, order.ID, CancelRequest{})
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
			_, err = f.svc.UpdateStatus(ctx, vendor.UserID, enums.RoleVendor, order.ID, UpdateStatusRequest{Status: "cancelled"})
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

			got, err := f.svc.Get(ctx, buyer.ID, enums.RoleUser, order.ID)
			require.NoError(t, err)
			require.Equal(t, enums.OrderStatus(terminal), got.Status)
			require.Nil(t, got.CancelledAt)
		})
	}
}

func TestGetAuthorization(t *testing.T) {
	f := newFixture(t, &stubSequencer{}, 0)
	ctx := context.Background()
	buyer := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	order, vendor := placeOrder(t, f, buyer)
	admin := dbtest.SeedUser(t, f.conn, enums.RoleAdmin)
	stranger := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	otherVendor := dbtest.SeedVendor(t, f.conn, nil, enums.VendorStatusActive)

	_, err := f.svc.Get(ctx, buyer.ID, enums.RoleUser, order.ID)
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, admin.ID, enums.RoleAdmin, order.ID)
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, vendor.UserID, enums.RoleVendor, order.ID)
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, stranger.ID, enums.RoleUser, order.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	_, err = f.svc.Get(ctx, otherVendor.UserID, enums.RoleVendor, order.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	_, err = f.svc.Get(ctx, buyer.ID, enums.RoleUser, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRoleScopedLists(t *testing.T) {
	f := newFixture(t, &stubSequencer{}, 0)
	ctx := context.Background()
	buyer := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	other := dbtest.SeedUser(t, f.conn, enums.RoleUser)
	first, vendor := placeOrder(t, f, buyer)
	_, _ = placeOrder(t, f, other)

	mine, meta, err := f.svc.ListMine(ctx, buyer.ID, paginationParams(1, 10))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, first.ID, mine[0].ID)
	require.EqualValues(t, 1, meta.TotalItems)

	vendorRows, _, err := f.svc.ListVendor(ctx, vendor.UserID, paginationParams(1, 10))
	require.NoError(t, err)
	require.Len(t, vendorRows, 1)
	require.NotNil(t, vendorRows[0].User)
	require.Equal(t, buyer.Email, vendorRows[0].User.Email)

	_, _, err = f.svc.ListVendor(ctx, buyer.ID, paginationParams(1, 10))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	all, meta, err := f.svc.ListAll(ctx, ListFilter{}, paginationParams(1, 1))
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.EqualValues(t, 2, meta.TotalItems)
	require.True(t, meta.HasNextPage)

	_, err = f.svc.Cancel(ctx, buyer.ID, enums.RoleUser, first.ID, CancelRequest{})
	require.NoError(t, err)
	cancelled, _, err := f.svc.ListAll(ctx, ListFilter{Status: enums.OrderStatusCancelled}, paginationParams(1, 10))
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	require.Equal(t, first.ID, cancelled[0].ID)

	_, _, err = f.svc.ListAll(ctx, ListFilter{Status: "bogus"}, paginationParams(1, 10))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func paginationParams(page, limit int) pagination.Params {
	return pagination.Params{Page: page, Limit: limit}
}

func strPtr(s string) *string { return &s }
