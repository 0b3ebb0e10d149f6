package risk

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"pothole-vision/internal/domain/entity"
)

func TestScore_CenteredOnePercentBox(t *testing.T) {
	// 100×100 в кадре 1000×1000 занимает ровно 1% площади, центр по вертикали.
	d := entity.NewDetection(entity.Box{X1: 450, Y1: 450, X2: 550, Y2: 550}, 0.9, 1000, 1000)

	r := Score(d, 1000, 1000)

	require.InDelta(t, 5*0.4+90*0.3+100*0.3, r, 1e-9)
	require.InDelta(t, 59.0, r, 1e-9)
	require.Equal(t, entity.SeverityHigh, Classify(r))
}

func TestScore_EdgeOfFrame(t *testing.T) {
	d := entity.NewDetection(entity.Box{X1: 0, Y1: 0, X2: 10, Y2: 0}, 0, 100, 100)
	require.Zero(t, Score(d, 100, 100))
}

func TestScore_HugeBoxIsCapped(t *testing.T) {
	d := entity.NewDetection(entity.Box{X1: 0, Y1: 0, X2: 100, Y2: 100}, 1, 100, 100)
	require.InDelta(t, 100, Score(d, 100, 100), 1e-9)
}

func TestScore_DegenerateImage(t *testing.T) {
	d := entity.NewDetection(entity.Box{X1: 0, Y1: 0, X2: 10, Y2: 10}, 0.5, 0, 0)
	require.InDelta(t, 15, Score(d, 0, 0), 1e-9)
}

func TestScore_AlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		w, h := 1+rng.Intn(4000), 1+rng.Intn(4000)
		x1, y1 := rng.Float64()*float64(w)*1.2-10, rng.Float64()*float64(h)*1.2-10
		box := entity.Box{X1: x1, Y1: y1, X2: x1 + rng.Float64()*float64(w), Y2: y1 + rng.Float64()*float64(h)}
		d := entity.NewDetection(box, rng.Float64(), w, h)

		r := Score(d, w, h)
		require.GreaterOrEqual(t, r, 0.0)
		require.LessOrEqual(t, r, 100.0)
	}
}

func TestClassify_Thresholds(t *testing.T) {
	cases := []struct {
		risk float64
		want entity.Severity
	}{
		{100, entity.SeverityCritical},
		{70.01, entity.SeverityCritical},
		{70.0, entity.SeverityHigh},
		{50.01, entity.SeverityHigh},
		{50.0, entity.SeverityMedium},
		{30.01, entity.SeverityMedium},
		{30.0, entity.SeverityLow},
		{0, entity.SeverityLow},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Classify(tc.risk), "risk=%v", tc.risk)
	}
}

func TestClassify_Monotonic(t *testing.T) {
	prev := Classify(0).Rank()
	for r := 0.0; r <= 100; r += 0.05 {
		rank := Classify(r).Rank()
		require.GreaterOrEqual(t, rank, prev)
		prev = rank
	}
}

func TestAssess_KeepsOrder(t *testing.T) {
	dets := []entity.Detection{
		entity.NewDetection(entity.Box{X1: 450, Y1: 450, X2: 550, Y2: 550}, 0.9, 1000, 1000),
		entity.NewDetection(entity.Box{X1: 0, Y1: 0, X2: 10, Y2: 10}, 0.2, 1000, 1000),
	}

	findings := Assess(dets, 1000, 1000)

	require.Len(t, findings, 2)
	require.Equal(t, entity.SeverityHigh, findings[0].Severity)
	require.Equal(t, entity.SeverityLow, findings[1].Severity)
	require.Equal(t, dets[1], findings[1].Detection)
}
