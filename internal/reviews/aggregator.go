package reviews

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/expresskart/expresskart-backend/internal/products"
	"github.com/expresskart/expresskart-backend/internal/vendors"
	"github.com/expresskart/expresskart-backend/pkg/db/models"
)

// Average returns total/count rounded to one decimal, or 0 without ratings.
func (t Tally) Average() float64 {
	if t.Count == 0 {
		return 0
	}
	return decimal.NewFromInt(t.Total).Div(decimal.NewFromInt(t.Count)).Round(1).InexactFloat64()
}

// Aggregator keeps the cached rating on products and vendors equal to a full
// recount of their approved, active reviews.
type Aggregator struct {
	reviews  *Repository
	products *products.Repository
	vendors  *vendors.Repository
}

func NewAggregator(reviews *Repository, productsRepo *products.Repository, vendorsRepo *vendors.Repository) *Aggregator {
	return &Aggregator{reviews: reviews, products: productsRepo, vendors: vendorsRepo}
}

// Recompute refreshes the product and vendor aggregates inside tx.
func (a *Aggregator) Recompute(ctx context.Context, tx *gorm.DB, productID, vendorID uuid.UUID) error {
	reviews := a.reviews.WithTx(tx)
	pt, err := reviews.ProductTally(ctx, productID)
	if err != nil {
		return fmt.Errorf("tally product ratings: %w", err)
	}
	if err := a.products.WithTx(tx).UpdateRating(ctx, productID, pt.Average(), int(pt.Count)); err != nil {
		return fmt.Errorf("update product rating: %w", err)
	}
	if vendorID == uuid.Nil {
		return nil
	}
	vt, err := reviews.VendorTally(ctx, vendorID)
	if err != nil {
		return fmt.Errorf("tally vendor ratings: %w", err)
	}
	if err := a.vendors.WithTx(tx).UpdateRating(ctx, vendorID, vt.Average(), int(vt.Count)); err != nil {
		return fmt.Errorf("update vendor rating: %w", err)
	}
	return nil
}

// ReconcileResult counts the cached aggregates that had drifted.
type ReconcileResult struct {
	Products int
	Vendors  int
}

// Reconcile compares every cached aggregate with a recount and fixes the
// ones that differ.
func (a *Aggregator) Reconcile(ctx context.Context) (ReconcileResult, error) {
	var res ReconcileResult
	fixed, err := a.reconcile(ctx, "product_id", &models.Product{}, a.products.UpdateRating)
	if err != nil {
		return res, fmt.Errorf("reconcile products: %w", err)
	}
	res.Products = fixed
	fixed, err = a.reconcile(ctx, "vendor_id", &models.Vendor{}, a.vendors.UpdateRating)
	if err != nil {
		return res, fmt.Errorf("reconcile vendors: %w", err)
	}
	res.Vendors = fixed
	return res, nil
}

type ratingWriter func(ctx context.Context, id uuid.UUID, average float64, count int) error

func (a *Aggregator) reconcile(ctx context.Context, column string, model any, write ratingWriter) (int, error) {
	tallies, err := a.reviews.TalliesBy(ctx, column)
	if err != nil {
		return 0, err
	}
	cached, err := a.reviews.CachedRatings(ctx, model)
	if err != nil {
		return 0, err
	}

	fixed := 0
	seen := make(map[uuid.UUID]struct{}, len(cached))
	for _, row := range cached {
		seen[row.ID] = struct{}{}
		t := tallies[row.ID]
		if row.RatingCount == int(t.Count) && row.RatingAverage == t.Average() {
			continue
		}
		if err := write(ctx, row.ID, t.Average(), int(t.Count)); err != nil {
			return fixed, err
		}
		fixed++
	}
	for id, t := range tallies {
		if _, ok := seen[id]; ok {
			continue
		}
		if err := write(ctx, id, t.Average(), int(t.Count)); err != nil {
			return fixed, err
		}
		fixed++
	}
	return fixed, nil
}
