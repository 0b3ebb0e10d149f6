package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoxIoU(t *testing.T) {
	a := Box{X1: 0, Y1: 0, X2: 10, Y2: 10}
	b := Box{X1: 5, Y1: 0, X2: 15, Y2: 10}

	require.InDelta(t, 50.0/150.0, a.IoU(b), 1e-9)
	require.InDelta(t, 1.0, a.IoU(a), 1e-9)
	require.Zero(t, a.IoU(Box{X1: 20, Y1: 20, X2: 30, Y2: 30}))
}

func TestBoxIoU_EmptyUnion(t *testing.T) {
	p := Box{X1: 3, Y1: 3, X2: 3, Y2: 3}
	require.Zero(t, p.IoU(p))
}

func TestBoxArea_Inverted(t *testing.T) {
	require.Zero(t, Box{X1: 10, Y1: 10, X2: 5, Y2: 20}.Area())
}
