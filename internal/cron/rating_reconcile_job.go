package cron

import (
	"context"
	"fmt"

	"github.com/expresskart/expresskart-backend/internal/reviews"
	"github.com/expresskart/expresskart-backend/pkg/logger"
)

type ratingReconciler interface {
	Reconcile(ctx context.Context) (reviews.ReconcileResult, error)
}

type RatingReconcileJobParams struct {
	Logger     *logger.Logger
	Aggregator ratingReconciler
}

// NewRatingReconcileJob recounts product and vendor ratings from approved
// reviews and rewrites any cached aggregate that drifted.
func NewRatingReconcileJob(params RatingReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Aggregator == nil {
		return nil, fmt.Errorf("rating aggregator required")
	}
	return &ratingReconcileJob{logg: params.Logger, aggregator: params.Aggregator}, nil
}

type ratingReconcileJob struct {
	logg       *logger.Logger
	aggregator ratingReconciler
}

func (j *ratingReconcileJob) Name() string { return "rating-reconcile" }

func (j *ratingReconcileJob) Run(ctx context.Context) error {
	res, err := j.aggregator.Reconcile(ctx)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"products_fixed": res.Products,
		"vendors_fixed":  res.Vendors,
	})
	if err != nil {
		return err
	}
	if res.Products+res.Vendors > 0 {
		j.logg.Warn(logCtx, "rating aggregates drifted and were rewritten")
		return nil
	}
	j.logg.Info(logCtx, "rating aggregates consistent")
	return nil
}
