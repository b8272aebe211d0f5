package pid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratorNeverYieldsZero(t *testing.T) {
	g := NewGenerator(163)
	for i := 0; i < 65535; i++ {
		require.NotZero(t, g.Next())
	}
}

func TestGeneratorPeriodIs65535(t *testing.T) {
	g := NewGenerator(163)
	first := g.Next()
	seen := map[uint16]bool{first: true}
	for i := 0; i < 65534; i++ {
		v := g.Next()
		require.False(t, seen[v], "value %d repeated before completing the period", v)
		seen[v] = true
	}
	require.Equal(t, first, g.Next(), "sequence should cycle back to its first value after exactly 65535 steps")
}

func TestNewGeneratorCoercesZeroSeed(t *testing.T) {
	g := NewGenerator(0)
	require.NotZero(t, g.Next())
}
