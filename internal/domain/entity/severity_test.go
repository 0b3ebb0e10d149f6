package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeverityCounts(t *testing.T) {
	var c SeverityCounts
	c.Add(SeverityCritical)
	c.Add(SeverityLow)
	c.Add(SeverityLow)

	require.Equal(t, 3, c.Total())
	require.Equal(t, 2, c.Get(SeverityLow))

	c.Merge(SeverityCounts{High: 2, Medium: 1})
	require.Equal(t, SeverityCounts{Critical: 1, High: 2, Medium: 1, Low: 2}, c)
}

func TestSeverityStyle(t *testing.T) {
	require.Equal(t, "КРИТИЧЕСКИЙ", SeverityCritical.Style().Label)
	require.Equal(t, uint8(165), SeverityMedium.Style().Color.G)
	require.Equal(t, SeverityLow.Style(), Severity("bogus").Style())
	require.Greater(t, SeverityCritical.Rank(), SeverityHigh.Rank())
}

func TestPriorityFor(t *testing.T) {
	require.Equal(t, PriorityCritical, PriorityFor(SeverityCounts{Critical: 1}, 10))
	require.Equal(t, PriorityCritical, PriorityFor(SeverityCounts{}, 70.5))
	require.Equal(t, PriorityHigh, PriorityFor(SeverityCounts{High: 1}, 0))
	require.Equal(t, PriorityMedium, PriorityFor(SeverityCounts{Low: 3}, 31))
	require.Equal(t, PriorityLow, PriorityFor(SeverityCounts{Low: 3}, 30))
}

func TestVideoResultDuration(t *testing.T) {
	r := &VideoResult{TotalFrames: 90, FPS: 30}
	require.InDelta(t, 3.0, r.DurationSeconds(), 1e-9)
	require.Zero(t, (&VideoResult{TotalFrames: 90}).DurationSeconds())
}
