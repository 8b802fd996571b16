package service

import (
	"sort"
	"time"

	"github.com/smallbiznis/parqo/internal/billing/domain"
	ownershipdomain "github.com/smallbiznis/parqo/internal/ownership/domain"
)

// daySpan is an inclusive range of calendar days, expressed as day
// indices (days since the Unix epoch, UTC).
type daySpan struct {
	start int64
	end   int64
}

// dayIndex maps an instant to its UTC calendar day.
func dayIndex(t time.Time) int64 {
	return floorDiv(t.UTC().Unix(), 86400)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// clipToPeriod converts an ownership interval to a day span clipped to
// the period. Returns false when the interval does not touch the period.
// An open interval extends through the period's last day. Boundary days
// count in full for both sides of a handoff: the closing interval keeps
// its end day and the opening interval starts the same day.
func clipToPeriod(interval ownershipdomain.OwnershipInterval, period domain.Period) (daySpan, bool) {
	return clipToDays(interval, dayIndex(period.Start()), dayIndex(period.End()))
}

func clipToDays(interval ownershipdomain.OwnershipInterval, lo, hi int64) (daySpan, bool) {
	start := dayIndex(interval.StartAt)
	end := hi
	if interval.EndAt != nil {
		end = dayIndex(*interval.EndAt)
	}

	if start < lo {
		start = lo
	}
	if end > hi {
		end = hi
	}
	if start > end {
		return daySpan{}, false
	}
	return daySpan{start: start, end: end}, true
}

// mergeSpans collapses overlapping and adjacent day spans so that no
// calendar day is counted twice, no matter how many vehicles the
// customer held on it.
func mergeSpans(spans []daySpan) []daySpan {
	if len(spans) == 0 {
		return nil
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end < spans[j].end
	})

	merged := []daySpan{spans[0]}
	for _, next := range spans[1:] {
		cur := &merged[len(merged)-1]
		if next.start <= cur.end+1 {
			if next.end > cur.end {
				cur.end = next.end
			}
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

// activeDays counts the distinct period days covered by the customer's
// ownership intervals.
func activeDays(intervals []ownershipdomain.OwnershipInterval, period domain.Period) int {
	return activeDaysBetween(intervals, dayIndex(period.Start()), dayIndex(period.End()))
}

func activeDaysBetween(intervals []ownershipdomain.OwnershipInterval, lo, hi int64) int {
	spans := make([]daySpan, 0, len(intervals))
	for _, interval := range intervals {
		if span, ok := clipToDays(interval, lo, hi); ok {
			spans = append(spans, span)
		}
	}

	var days int64
	for _, span := range mergeSpans(spans) {
		days += span.end - span.start + 1
	}
	return int(days)
}

// prorate computes feeCents * activeDays / totalDays in integer cents,
// rounding half away from zero.
func prorate(feeCents int64, activeDays, totalDays int) int64 {
	if totalDays <= 0 || activeDays <= 0 {
		return 0
	}
	num := feeCents * int64(activeDays)
	den := int64(totalDays)
	if num >= 0 {
		return (2*num + den) / (2 * den)
	}
	return (2*num - den) / (2 * den)
}
