package core_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/blockfall/internal/games/blockfall/core"
)

func TestBagDrawsPermutations(t *testing.T) {
	for _, seed := range []int64{1, 42, 1337} {
		bag := core.NewBag(rand.New(rand.NewSource(seed)))
		for group := 0; group < 20; group++ {
			seen := make(map[core.Shape]int)
			for i := 0; i < core.ShapeCount; i++ {
				seen[bag.Next()]++
			}
			require.Len(t, seen, core.ShapeCount, "seed %d group %d", seed, group)
			for s, n := range seen {
				assert.Equal(t, 1, n, "seed %d group %d shape %s", seed, group, s)
			}
		}
	}
}

func TestBagKeepsLookahead(t *testing.T) {
	bag := core.NewBag(rand.New(rand.NewSource(7)))
	for i := 0; i < 50; i++ {
		assert.Greater(t, bag.Len(), core.ShapeCount)
		bag.Next()
	}
}

func TestSnapshotCarriesFullLookahead(t *testing.T) {
	s := core.NewSim(core.Options{Mode: core.ModeSingle, Seed: 11})
	s.Tick(0)
	for i := 0; i < 20; i++ {
		require.Len(t, s.Snapshot().Next, core.MaxPreview)
		s.Apply(core.CmdHardDrop)
		s.Tick(1)
	}
}

func TestBagPeekDoesNotConsume(t *testing.T) {
	bag := core.NewBag(rand.New(rand.NewSource(3)))
	preview := bag.Peek(5)
	require.Len(t, preview, 5)
	for _, want := range preview {
		assert.Equal(t, want, bag.Next())
	}
}

func TestBagDeterministicPerSeed(t *testing.T) {
	a := core.NewBag(rand.New(rand.NewSource(99)))
	b := core.NewBag(rand.New(rand.NewSource(99)))
	for i := 0; i < 30; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestSequenceSource(t *testing.T) {
	src := core.NewSequenceSource(core.ShapeO, core.ShapeI)
	assert.Equal(t, []core.Shape{core.ShapeO, core.ShapeI}, src.Peek(5))
	assert.Equal(t, core.ShapeO, src.Next())
	assert.Equal(t, core.ShapeI, src.Next())
	assert.Equal(t, core.ShapeI, src.Next(), "last shape repeats")
}
