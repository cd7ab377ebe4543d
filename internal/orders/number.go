package orders

import (
	"context"
	"fmt"
	"time"
)

const (
	orderNumberPrefix = "EK"
	orderDayLayout    = "060102"
)

// Sequencer hands out an atomic per-day counter.
type Sequencer interface {
	NextOrderSequence(ctx context.Context, day string) (int64, error)
}

// NumberGenerator builds human-readable order numbers: EK + YYMMDD + a
// zero-padded daily sequence. The day boundary is midnight in loc.
type NumberGenerator struct {
	seq Sequencer
	loc *time.Location
	now func() time.Time
}

func NewNumberGenerator(seq Sequencer, loc *time.Location) *NumberGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &NumberGenerator{seq: seq, loc: loc, now: time.Now}
}

// Next reserves the next number for the current business day.
func (g *NumberGenerator) Next(ctx context.Context) (string, error) {
	day := g.now().In(g.loc).Format(orderDayLayout)
	n, err := g.seq.NextOrderSequence(ctx, day)
	if err != nil {
		return "", fmt.Errorf("next order sequence: %w", err)
	}
	return FormatNumber(day, n), nil
}

// FormatNumber renders EK<day><seq>, padding seq to four digits. Days with
// more than 9999 orders keep counting with wider suffixes.
func FormatNumber(day string, seq int64) string {
	return fmt.Sprintf("%s%s%04d", orderNumberPrefix, day, seq)
}
