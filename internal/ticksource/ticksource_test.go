package ticksource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManualSourceAdvance(t *testing.T) {
	s := NewManualSource(5)

	tick, err := s.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(5), tick)

	require.Equal(t, uint64(12), s.Advance(7))
	tick, err = s.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(12), tick)
}

func TestManualSourceSetNeverRollsBack(t *testing.T) {
	s := NewManualSource(0)

	s.Set(100)
	s.Set(40)

	tick, err := s.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(100), tick)
}
