package expiry

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freshkeep-backend/domain"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestDaysUntilIgnoresTimeOfDay(t *testing.T) {
	lima, err := time.LoadLocation("America/Lima")
	require.NoError(t, err)

	target := mustDate(t, "2026-03-10")
	morning := time.Date(2026, 3, 9, 0, 0, 1, 0, lima)
	night := time.Date(2026, 3, 9, 23, 59, 59, 0, lima)

	assert.Equal(t, 1, DaysUntil(target, morning))
	assert.Equal(t, DaysUntil(target, morning), DaysUntil(target, night))
}

func TestDaysUntilSignedOffsets(t *testing.T) {
	today := time.Date(2026, 1, 31, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		target string
		want   int
	}{
		{"2026-01-31", 0},
		{"2026-02-01", 1},
		{"2026-02-03", 3},
		{"2026-01-30", -1},
		{"2025-12-31", -31},
		{"2027-01-31", 365},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntil(mustDate(t, tt.target), today))
		})
	}
}

func TestDaysUntilAcrossDSTChange(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2026-03-08 is a 23 hour day in New York.
	today := time.Date(2026, 3, 7, 22, 0, 0, 0, ny)
	assert.Equal(t, 2, DaysUntil(mustDate(t, "2026-03-09"), today))
}

func TestClassifyBoundaries(t *testing.T) {
	for d := -400; d < 0; d++ {
		assert.Equal(t, domain.StatusExpired, Classify(d, DefaultExpiringThreshold), "d=%d", d)
	}
	for d := 0; d <= 3; d++ {
		assert.Equal(t, domain.StatusExpiring, Classify(d, DefaultExpiringThreshold), "d=%d", d)
	}
	for d := 4; d < 400; d++ {
		assert.Equal(t, domain.StatusFresh, Classify(d, DefaultExpiringThreshold), "d=%d", d)
	}
}

func TestClassifyCustomThreshold(t *testing.T) {
	assert.Equal(t, domain.StatusExpiring, Classify(0, 0))
	assert.Equal(t, domain.StatusFresh, Classify(1, 0))
	assert.Equal(t, domain.StatusExpiring, Classify(7, 7))
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("2026-02-30")
	assert.ErrorIs(t, err, domain.ErrInvalidExpiryDate)

	_, err = ParseDate("2026-2-3")
	assert.ErrorIs(t, err, domain.ErrInvalidExpiryDate)

	_, err = ParseDate("2026-02-03T00:00:00Z")
	assert.ErrorIs(t, err, domain.ErrInvalidExpiryDate)

	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", FormatDate(d))
}

func TestStatusOf(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	status, days := StatusOf(mustDate(t, "2026-05-04"), now)
	assert.Equal(t, domain.StatusExpiring, status)
	assert.Equal(t, 3, days)

	status, days = StatusOf(mustDate(t, "2026-05-05"), now)
	assert.Equal(t, domain.StatusFresh, status)
	assert.Equal(t, 4, days)
}
