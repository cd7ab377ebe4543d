package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/expresskart/expresskart-backend/pkg/logger"
)

const defaultOutboxRetention = 30 * 24 * time.Hour

type publishedEventPruner interface {
	DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountPending(ctx context.Context) (int64, error)
}

type OutboxRetentionJobParams struct {
	Logger    *logger.Logger
	Outbox    publishedEventPruner
	Retention time.Duration
}

// NewOutboxRetentionJob prunes outbox rows that were published longer ago than
// the retention window. Unpublished rows are never touched.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultOutboxRetention
	}
	return &outboxRetentionJob{
		logg:      params.Logger,
		outbox:    params.Outbox,
		retention: retention,
		now:       time.Now,
	}, nil
}

type outboxRetentionJob struct {
	logg      *logger.Logger
	outbox    publishedEventPruner
	retention time.Duration
	now       func() time.Time
}

func (j *outboxRetentionJob) Name() string { return "outbox-retention" }

func (j *outboxRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.outbox.DeletePublishedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete published outbox rows: %w", err)
	}
	pending, err := j.outbox.CountPending(ctx)
	if err != nil {
		return fmt.Errorf("count pending outbox rows: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
		"pending":      pending,
	}), "outbox retention done")
	return nil
}
