package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2025-06")
	require.NoError(t, err)
	assert.Equal(t, 2025, p.Year)
	assert.Equal(t, time.June, p.Month)
	assert.Equal(t, "2025-06", p.String())

	for _, bad := range []string{"", "2025", "2025-13", "06-2025", "2025-6"} {
		_, err := ParsePeriod(bad)
		assert.ErrorIs(t, err, ErrInvalidPeriod, "input %q", bad)
	}
}

func TestPeriodDays(t *testing.T) {
	cases := map[string]int{
		"2025-01": 31,
		"2025-02": 28,
		"2024-02": 29,
		"2025-06": 30,
	}
	for value, want := range cases {
		p, err := ParsePeriod(value)
		require.NoError(t, err)
		assert.Equal(t, want, p.Days(), value)
	}
}

func TestPeriodBounds(t *testing.T) {
	p, err := ParsePeriod("2025-06")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), p.Start())
	assert.Equal(t, time.June, p.End().Month())
	assert.Equal(t, 30, p.End().Day())
}

func TestPeriodPrev(t *testing.T) {
	p, err := ParsePeriod("2025-01")
	require.NoError(t, err)

	prev := p.Prev()
	assert.Equal(t, "2024-12", prev.String())
}
