package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManual_NeverMovesBackwards(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	c := NewManual(start)

	c.Advance(10 * time.Second)
	require.Equal(t, int64(1_700_000_010), c.Now().Unix())

	c.Advance(-time.Hour)
	c.Set(start)
	require.Equal(t, int64(1_700_000_010), c.Now().Unix())

	c.Set(start.Add(time.Minute))
	require.Equal(t, int64(1_700_000_060), c.Now().Unix())
}
