package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestIsOverdue(t *testing.T) {
	require.False(t, IsOverdue(baseTime.Add(time.Hour), baseTime))
	require.False(t, IsOverdue(baseTime, baseTime), "exactly at the due date is on time")
	require.True(t, IsOverdue(baseTime.Add(-time.Second), baseTime))
}

func TestIsDueSoon(t *testing.T) {
	require.True(t, IsDueSoon(baseTime.Add(time.Hour), baseTime, 72*time.Hour))
	require.True(t, IsDueSoon(baseTime.Add(72*time.Hour), baseTime, 72*time.Hour))
	require.False(t, IsDueSoon(baseTime.Add(73*time.Hour), baseTime, 72*time.Hour))
	require.False(t, IsDueSoon(baseTime, baseTime, 72*time.Hour), "a deadline reached is no longer upcoming")
	require.False(t, IsDueSoon(baseTime.Add(-time.Hour), baseTime, 72*time.Hour))
}

func TestIsDueSoonDefaultHorizon(t *testing.T) {
	require.True(t, IsDueSoon(baseTime.Add(71*time.Hour), baseTime, 0))
	require.False(t, IsDueSoon(baseTime.Add(80*time.Hour), baseTime, 0))
}

func TestDaysUntil(t *testing.T) {
	require.Equal(t, 1, DaysUntil(baseTime.Add(time.Hour), baseTime), "partial days round up")
	require.Equal(t, 3, DaysUntil(baseTime.Add(49*time.Hour), baseTime))
	require.Equal(t, 0, DaysUntil(baseTime, baseTime))
	require.Equal(t, -2, DaysUntil(baseTime.Add(-48*time.Hour), baseTime))
}
