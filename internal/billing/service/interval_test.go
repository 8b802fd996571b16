package service

import (
	"math/rand"
	"testing"
	"time"

	"github.com/smallbiznis/parqo/internal/billing/domain"
	ownershipdomain "github.com/smallbiznis/parqo/internal/ownership/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPeriod(t *testing.T, value string) domain.Period {
	t.Helper()
	p, err := domain.ParsePeriod(value)
	require.NoError(t, err)
	return p
}

func interval(start time.Time, end *time.Time) ownershipdomain.OwnershipInterval {
	return ownershipdomain.OwnershipInterval{StartAt: start, EndAt: end}
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, int64(2), floorDiv(5, 2))
	assert.Equal(t, int64(-3), floorDiv(-5, 2))
	assert.Equal(t, int64(-1), floorDiv(-86400, 86400))
	assert.Equal(t, int64(0), floorDiv(0, 86400))
}

func TestDayIndex_PreEpochTimestamps(t *testing.T) {
	// Day indices must stay calendar-aligned before 1970 too.
	assert.Equal(t, int64(-1), dayIndex(time.Date(1969, 12, 31, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, int64(0), dayIndex(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, int64(0), dayIndex(time.Date(1970, 1, 1, 23, 59, 59, 0, time.UTC)))
}

func TestClipToPeriod(t *testing.T) {
	june := mustPeriod(t, "2025-06")

	t.Run("open interval runs through the period end", func(t *testing.T) {
		span, ok := clipToPeriod(interval(time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC), nil), june)
		require.True(t, ok)
		assert.Equal(t, dayIndex(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)), span.start)
		assert.Equal(t, dayIndex(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)), span.end)
	})

	t.Run("interval fully before the period is dropped", func(t *testing.T) {
		end := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
		_, ok := clipToPeriod(interval(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), &end), june)
		assert.False(t, ok)
	})

	t.Run("interval spanning the whole period is clamped", func(t *testing.T) {
		end := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
		span, ok := clipToPeriod(interval(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), &end), june)
		require.True(t, ok)
		assert.Equal(t, int64(29), span.end-span.start)
	})

	t.Run("interval ending on the first period day keeps that day", func(t *testing.T) {
		end := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
		span, ok := clipToPeriod(interval(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), &end), june)
		require.True(t, ok)
		assert.Equal(t, span.start, span.end)
	})
}

func TestMergeSpans(t *testing.T) {
	t.Run("adjacent spans merge", func(t *testing.T) {
		merged := mergeSpans([]daySpan{{start: 1, end: 5}, {start: 6, end: 9}})
		require.Len(t, merged, 1)
		assert.Equal(t, daySpan{start: 1, end: 9}, merged[0])
	})

	t.Run("overlapping spans merge", func(t *testing.T) {
		merged := mergeSpans([]daySpan{{start: 3, end: 10}, {start: 1, end: 5}})
		require.Len(t, merged, 1)
		assert.Equal(t, daySpan{start: 1, end: 10}, merged[0])
	})

	t.Run("disjoint spans stay apart", func(t *testing.T) {
		merged := mergeSpans([]daySpan{{start: 1, end: 2}, {start: 5, end: 6}})
		require.Len(t, merged, 2)
	})

	t.Run("contained span is absorbed", func(t *testing.T) {
		merged := mergeSpans([]daySpan{{start: 1, end: 10}, {start: 3, end: 4}})
		require.Len(t, merged, 1)
		assert.Equal(t, daySpan{start: 1, end: 10}, merged[0])
	})
}

// Merged spans must cover exactly the same day set as the inputs,
// regardless of how the inputs overlap.
func TestMergeSpans_MatchesDaySet(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(8)
		spans := make([]daySpan, 0, n)
		want := map[int64]bool{}
		for i := 0; i < n; i++ {
			start := int64(rng.Intn(40))
			end := start + int64(rng.Intn(10))
			spans = append(spans, daySpan{start: start, end: end})
			for d := start; d <= end; d++ {
				want[d] = true
			}
		}

		merged := mergeSpans(spans)

		var got int64
		for i, span := range merged {
			require.LessOrEqual(t, span.start, span.end)
			if i > 0 {
				// Strictly disjoint and non-adjacent after merging.
				require.Greater(t, span.start, merged[i-1].end+1)
			}
			got += span.end - span.start + 1
		}
		require.Equal(t, int64(len(want)), got, "trial %d: spans %v", trial, spans)
	}
}

func TestActiveDays_MidMonthHandoff(t *testing.T) {
	june := mustPeriod(t, "2025-06")
	handoff := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)

	// Seller held the vehicle June 1-15, buyer June 15-30. The handoff
	// day counts in full for both parties.
	sellerDays := activeDays([]ownershipdomain.OwnershipInterval{
		interval(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), &handoff),
	}, june)
	buyerDays := activeDays([]ownershipdomain.OwnershipInterval{
		interval(handoff, nil),
	}, june)

	assert.Equal(t, 15, sellerDays)
	assert.Equal(t, 16, buyerDays)
}

func TestActiveDays_OverlappingVehiclesCountOnce(t *testing.T) {
	june := mustPeriod(t, "2025-06")

	days := activeDays([]ownershipdomain.OwnershipInterval{
		interval(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), nil),
		interval(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), nil),
	}, june)

	assert.Equal(t, 30, days)
}

func TestProrate(t *testing.T) {
	// Full month is never scaled.
	assert.Equal(t, int64(30000), prorate(30000, 30, 30))

	// 15/30 and 16/30 of R$300.00.
	assert.Equal(t, int64(15000), prorate(30000, 15, 30))
	assert.Equal(t, int64(16000), prorate(30000, 16, 30))

	// 10/31 of R$70.00 = 2258.06... rounds down to 2258.
	assert.Equal(t, int64(2258), prorate(7000, 10, 31))

	// Exact half rounds away from zero: 100*1/8 = 12.5 -> 13.
	assert.Equal(t, int64(13), prorate(100, 1, 8))

	// Degenerate inputs produce zero, never a panic.
	assert.Equal(t, int64(0), prorate(30000, 0, 30))
	assert.Equal(t, int64(0), prorate(30000, 10, 0))
}
