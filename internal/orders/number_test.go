package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubSequencer struct {
	values []int64
	last   int64
	days   []string
	err    error
}

func (s *stubSequencer) NextOrderSequence(_ context.Context, day string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.days = append(s.days, day)
	if len(s.values) > 0 {
		s.last = s.values[0]
		s.values = s.values[1:]
		return s.last, nil
	}
	s.last++
	return s.last, nil
}

func TestFormatNumber(t *testing.T) {
	require.Equal(t, "EK2504150007", FormatNumber("250415", 7))
	require.Equal(t, "EK25041512345", FormatNumber("250415", 12345))
}

func TestNumberGeneratorUsesBusinessDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	seq := &stubSequencer{}
	gen := NewNumberGenerator(seq, loc)
	// 20:00 UTC on the 14th is already the 15th in IST.
	gen.now = func() time.Time { return time.Date(2025, 4, 14, 20, 0, 0, 0, time.UTC) }

	number, err := gen.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, "EK2504150001", number)
	require.Equal(t, []string{"250415"}, seq.days)
}

func TestNumberGeneratorPropagatesSequencerError(t *testing.T) {
	gen := NewNumberGenerator(&stubSequencer{err: errors.New("redis down")}, nil)
	_, err := gen.Next(context.Background())
	require.ErrorContains(t, err, "redis down")
}
