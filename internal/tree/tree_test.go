package tree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func win(h Handle) Window {
	return Window{Handle: h}
}

func TestInsertLeaf_RootBecomesSplit(t *testing.T) {
	a := NewArena()
	first := a.NewLeaf(win(1))

	split, second, err := a.InsertLeaf(first, win(2), Right)
	require.NoError(t, err)

	s, err := a.Split(split)
	require.NoError(t, err)
	assert.Equal(t, Vertical, s.Direction)
	assert.Equal(t, 0.5, s.Ratio)
	assert.Equal(t, first, s.Left)
	assert.Equal(t, second, s.Right)

	root, err := a.Root(first)
	require.NoError(t, err)
	assert.Equal(t, split, root)
	require.NoError(t, a.Validate(split))
}

func TestInsertLeaf_SideSelectsDirectionAndOrder(t *testing.T) {
	tests := []struct {
		side      Side
		direction Direction
		newLeft   bool
	}{
		{Left, Vertical, true},
		{Right, Vertical, false},
		{Up, Horizontal, true},
		{Down, Horizontal, false},
	}
	for _, tt := range tests {
		t.Run(tt.side.String(), func(t *testing.T) {
			a := NewArena()
			old := a.NewLeaf(win(1))
			split, inserted, err := a.InsertLeaf(old, win(2), tt.side)
			require.NoError(t, err)

			s, err := a.Split(split)
			require.NoError(t, err)
			assert.Equal(t, tt.direction, s.Direction)
			if tt.newLeft {
				assert.Equal(t, inserted, s.Left)
				assert.Equal(t, old, s.Right)
			} else {
				assert.Equal(t, old, s.Left)
				assert.Equal(t, inserted, s.Right)
			}
		})
	}
}

func TestInsertLeaf_NestedKeepsParentSlot(t *testing.T) {
	a := NewArena()
	l1 := a.NewLeaf(win(1))
	root, l2, err := a.InsertLeaf(l1, win(2), Right)
	require.NoError(t, err)

	inner, l3, err := a.InsertLeaf(l2, win(3), Down)
	require.NoError(t, err)

	s, err := a.Split(root)
	require.NoError(t, err)
	assert.Equal(t, inner, s.Right)

	parent, err := a.Parent(l3)
	require.NoError(t, err)
	assert.Equal(t, inner, parent)
	require.NoError(t, a.Validate(root))

	leaves, err := a.Leaves(root)
	require.NoError(t, err)
	assert.Equal(t, []ID{l1, l2, l3}, leaves)
}

func TestInsertLeaf_RejectsSplit(t *testing.T) {
	a := NewArena()
	l1 := a.NewLeaf(win(1))
	split, _, err := a.InsertLeaf(l1, win(2), Left)
	require.NoError(t, err)

	_, _, err = a.InsertLeaf(split, win(3), Left)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotLeaf)
	assert.True(t, IsInvariant(err))
}

func TestRemoveLeaf_PromotesSiblingToRoot(t *testing.T) {
	a := NewArena()
	l1 := a.NewLeaf(win(1))
	split, l2, err := a.InsertLeaf(l1, win(2), Right)
	require.NoError(t, err)

	r, err := a.RemoveLeaf(l1)
	require.NoError(t, err)
	assert.Equal(t, Removal{Promoted: l2, NewRoot: true}, r)
	assert.False(t, a.Contains(split))

	parent, err := a.Parent(l2)
	require.NoError(t, err)
	assert.Equal(t, None, parent)

	require.NoError(t, a.Release(l1))
	assert.Equal(t, 1, a.Len())
}

func TestRemoveLeaf_PromotesIntoGrandparentSlot(t *testing.T) {
	a := NewArena()
	l1 := a.NewLeaf(win(1))
	root, l2, err := a.InsertLeaf(l1, win(2), Right)
	require.NoError(t, err)
	_, l3, err := a.InsertLeaf(l2, win(3), Down)
	require.NoError(t, err)

	r, err := a.RemoveLeaf(l3)
	require.NoError(t, err)
	assert.Equal(t, l2, r.Promoted)
	assert.False(t, r.NewRoot)

	s, err := a.Split(root)
	require.NoError(t, err)
	assert.Equal(t, l2, s.Right)
	require.NoError(t, a.Validate(root))
}

func TestRemoveLeaf_OnlyLeafEmptiesTree(t *testing.T) {
	a := NewArena()
	l1 := a.NewLeaf(win(1))

	r, err := a.RemoveLeaf(l1)
	require.NoError(t, err)
	assert.True(t, r.Empty)
}

func TestInsertRemoveRoundTrip(t *testing.T) {
	a := NewArena()
	l1 := a.NewLeaf(win(1))
	root, _, err := a.InsertLeaf(l1, win(2), Right)
	require.NoError(t, err)
	_, l3, err := a.InsertLeaf(l1, win(3), Up)
	require.NoError(t, err)

	before := shape(t, a, root)

	_, l4, err := a.InsertLeaf(l3, win(4), Left)
	require.NoError(t, err)
	r, err := a.RemoveLeaf(l4)
	require.NoError(t, err)
	assert.Equal(t, l3, r.Promoted)

	assert.Equal(t, before, shape(t, a, root))
}

func TestSwapToggleAdjust(t *testing.T) {
	a := NewArena()
	l1 := a.NewLeaf(win(1))
	split, l2, err := a.InsertLeaf(l1, win(2), Right)
	require.NoError(t, err)

	require.NoError(t, a.SwapChildren(split))
	s, _ := a.Split(split)
	assert.Equal(t, l2, s.Left)
	assert.Equal(t, l1, s.Right)

	require.NoError(t, a.ToggleDirection(split))
	s, _ = a.Split(split)
	assert.Equal(t, Horizontal, s.Direction)

	ratio, err := a.AdjustRatio(split, 0.7)
	require.NoError(t, err)
	assert.Equal(t, MaxRatio, ratio)
	ratio, err = a.AdjustRatio(split, -2)
	require.NoError(t, err)
	assert.Equal(t, MinRatio, ratio)

	assert.ErrorIs(t, a.SwapChildren(l1), ErrNotSplit)
}

func TestFindLeaf(t *testing.T) {
	a := NewArena()
	l1 := a.NewLeaf(win(10))
	root, l2, err := a.InsertLeaf(l1, win(20), Right)
	require.NoError(t, err)

	got, ok, err := a.FindLeaf(root, 20)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, l2, got)

	_, ok, err = a.FindLeaf(root, 99)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = a.FindLeaf(None, 10)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindLeaf_BrokenTreeIsInvariantError(t *testing.T) {
	a := NewArena()
	l1 := a.NewLeaf(win(10))
	root, _, err := a.InsertLeaf(l1, win(20), Right)
	require.NoError(t, err)

	// The split still names l1 as its left child.
	delete(a.nodes, l1)

	_, ok, err := a.FindLeaf(root, 20)
	assert.False(t, ok)
	assert.True(t, IsInvariant(err), "got %v", err)
}

func TestPath(t *testing.T) {
	a := NewArena()
	l1 := a.NewLeaf(win(1))
	root, l2, err := a.InsertLeaf(l1, win(2), Right)
	require.NoError(t, err)
	inner, l3, err := a.InsertLeaf(l2, win(3), Down)
	require.NoError(t, err)

	path, err := a.Path(l3)
	require.NoError(t, err)
	assert.Equal(t, []Step{{Split: root, Left: false}, {Split: inner, Left: false}}, path)

	path, err = a.Path(l1)
	require.NoError(t, err)
	assert.Equal(t, []Step{{Split: root, Left: true}}, path)
}

func TestStaleIDIsInvariantError(t *testing.T) {
	a := NewArena()
	l1 := a.NewLeaf(win(1))
	require.NoError(t, a.Release(l1))

	_, err := a.Window(l1)
	require.Error(t, err)
	assert.True(t, IsInvariant(err))

	// IDs are not recycled.
	l2 := a.NewLeaf(win(2))
	assert.NotEqual(t, l1, l2)
}

func TestRandomInsertRemoveStaysWellFormed(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a := NewArena()
	root := None
	var leaves []ID
	next := Handle(1)

	for i := 0; i < 2000; i++ {
		if len(leaves) == 0 || rng.Intn(3) > 0 {
			w := win(next)
			next++
			if root == None {
				root = a.NewLeaf(w)
				leaves = append(leaves, root)
				continue
			}
			target := leaves[rng.Intn(len(leaves))]
			split, inserted, err := a.InsertLeaf(target, w, Side(rng.Intn(4)))
			require.NoError(t, err)
			if target == root {
				root = split
			}
			leaves = append(leaves, inserted)
		} else {
			idx := rng.Intn(len(leaves))
			victim := leaves[idx]
			leaves = append(leaves[:idx], leaves[idx+1:]...)
			r, err := a.RemoveLeaf(victim)
			require.NoError(t, err)
			switch {
			case r.Empty:
				root = None
			case r.NewRoot:
				root = r.Promoted
			}
			require.NoError(t, a.Release(victim))
		}

		require.NoError(t, a.Validate(root))
		got, err := a.Leaves(root)
		require.NoError(t, err)
		require.ElementsMatch(t, leaves, got)
		// Only reachable containers are alive.
		splits := 0
		if len(got) > 0 {
			splits = len(got) - 1
		}
		require.Equal(t, len(got)+splits, a.Len())
	}
}

// shape renders the structure under root as a comparable value.
func shape(t *testing.T, a *Arena, root ID) []string {
	t.Helper()
	var out []string
	require.NoError(t, a.Walk(root, func(id ID, depth int) bool {
		if a.IsLeaf(id) {
			w, err := a.Window(id)
			require.NoError(t, err)
			out = append(out, string(rune('0'+depth))+":leaf:"+string(rune('a'+int(w.Handle))))
			return true
		}
		s, err := a.Split(id)
		require.NoError(t, err)
		out = append(out, string(rune('0'+depth))+":"+s.Direction.String())
		return true
	}))
	return out
}

func TestAttach_ReinsertsDetachedLeaf(t *testing.T) {
	a := NewArena()
	l1 := a.NewLeaf(win(1))
	_, l2, err := a.InsertLeaf(l1, win(2), Right)
	require.NoError(t, err)

	r, err := a.RemoveLeaf(l2)
	require.NoError(t, err)
	require.True(t, r.NewRoot)

	split, err := a.Attach(l1, l2, Down)
	require.NoError(t, err)
	s, err := a.Split(split)
	require.NoError(t, err)
	assert.Equal(t, Horizontal, s.Direction)
	assert.Equal(t, l1, s.Left)
	assert.Equal(t, l2, s.Right)
	require.NoError(t, a.Validate(split))

	_, err = a.Attach(l1, l2, Down)
	assert.True(t, IsInvariant(err))
}
