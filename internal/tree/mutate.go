package tree

import "fmt"

// replaceChild points parent's slot that held old at repl. When parent is
// None there is no slot to update; the caller owns the root.
func (a *Arena) replaceChild(op string, parent, old, repl ID) error {
	if parent == None {
		return nil
	}
	p, err := a.get(op, parent)
	if err != nil {
		return err
	}
	s, ok := p.body.(*Split)
	if !ok {
		return invariant(op, parent, "parent is not a split")
	}
	switch old {
	case s.Left:
		s.Left = repl
	case s.Right:
		s.Right = repl
	default:
		return invariant(op, parent, fmt.Sprintf("parent does not reference child %d", old))
	}
	return nil
}

// InsertLeaf splits leaf in two. A new split takes leaf's place in its parent
// (or becomes the root when leaf was the root), with leaf and a new leaf for w
// as its children. Right and Down put the new window in the Right child.
// The existing leaf keeps its ID.
func (a *Arena) InsertLeaf(leaf ID, w Window, side Side) (split, inserted ID, err error) {
	if _, err := a.get("insert", leaf); err != nil {
		return None, None, err
	}
	inserted = a.NewLeaf(w)
	split, err = a.Attach(leaf, inserted, side)
	if err != nil {
		delete(a.nodes, inserted)
		return None, None, err
	}
	return split, inserted, nil
}

// Attach places the detached leaf beside target, exactly as InsertLeaf
// does for a new window.
func (a *Arena) Attach(target, leaf ID, side Side) (ID, error) {
	c, err := a.get("attach", target)
	if err != nil {
		return None, err
	}
	if _, ok := c.body.(*Leaf); !ok {
		return None, invariantErr("attach", target, ErrNotLeaf)
	}
	lc, err := a.get("attach", leaf)
	if err != nil {
		return None, err
	}
	if _, ok := lc.body.(*Leaf); !ok {
		return None, invariantErr("attach", leaf, ErrNotLeaf)
	}
	if lc.parent != None || leaf == target {
		return None, invariant("attach", leaf, "leaf is already attached")
	}

	parent := c.parent
	s := &Split{Direction: side.Direction(), Ratio: 0.5}
	split := a.alloc(parent, s)
	if err := a.replaceChild("attach", parent, target, split); err != nil {
		delete(a.nodes, split)
		return None, err
	}

	c.parent = split
	lc.parent = split
	if side.Trailing() {
		s.Left, s.Right = target, leaf
	} else {
		s.Left, s.Right = leaf, target
	}
	return split, nil
}

// Removal describes the tree after RemoveLeaf.
type Removal struct {
	// Promoted is the sibling that took the removed parent's place, or None
	// when the removed leaf was the root.
	Promoted ID
	// Empty is true when the tree no longer has any containers.
	Empty bool
	// NewRoot is true when Promoted is now the root of the tree.
	NewRoot bool
}

// RemoveLeaf detaches leaf from its tree. Its parent split is discarded and
// the sibling is promoted into the grandparent's slot. The leaf itself stays
// allocated with no parent so it can be floated or released.
func (a *Arena) RemoveLeaf(leaf ID) (Removal, error) {
	c, err := a.get("remove", leaf)
	if err != nil {
		return Removal{}, err
	}
	if _, ok := c.body.(*Leaf); !ok {
		return Removal{}, invariantErr("remove", leaf, ErrNotLeaf)
	}
	if c.parent == None {
		return Removal{Empty: true}, nil
	}

	parentID := c.parent
	p, err := a.get("remove", parentID)
	if err != nil {
		return Removal{}, err
	}
	ps, ok := p.body.(*Split)
	if !ok {
		return Removal{}, invariant("remove", parentID, "parent is not a split")
	}

	var sibling ID
	switch leaf {
	case ps.Left:
		sibling = ps.Right
	case ps.Right:
		sibling = ps.Left
	default:
		return Removal{}, invariant("remove", parentID, "parent does not reference leaf")
	}
	sc, err := a.get("remove", sibling)
	if err != nil {
		return Removal{}, err
	}

	grand := p.parent
	if err := a.replaceChild("remove", grand, parentID, sibling); err != nil {
		return Removal{}, err
	}
	sc.parent = grand
	c.parent = None
	delete(a.nodes, parentID)

	return Removal{Promoted: sibling, NewRoot: grand == None}, nil
}

func (a *Arena) split(op string, id ID) (*Split, error) {
	c, err := a.get(op, id)
	if err != nil {
		return nil, err
	}
	s, ok := c.body.(*Split)
	if !ok {
		return nil, invariantErr(op, id, ErrNotSplit)
	}
	return s, nil
}

// SwapChildren exchanges the Left and Right children of split.
func (a *Arena) SwapChildren(split ID) error {
	s, err := a.split("swap", split)
	if err != nil {
		return err
	}
	s.Left, s.Right = s.Right, s.Left
	return nil
}

// ToggleDirection flips split between Vertical and Horizontal.
func (a *Arena) ToggleDirection(split ID) error {
	s, err := a.split("toggle direction", split)
	if err != nil {
		return err
	}
	if s.Direction == Vertical {
		s.Direction = Horizontal
	} else {
		s.Direction = Vertical
	}
	return nil
}

// AdjustRatio adds delta to split's ratio, clamped to [MinRatio, MaxRatio].
// It returns the new ratio.
func (a *Arena) AdjustRatio(split ID, delta float64) (float64, error) {
	s, err := a.split("adjust ratio", split)
	if err != nil {
		return 0, err
	}
	s.Ratio = ClampRatio(s.Ratio + delta)
	return s.Ratio, nil
}

// ClampRatio limits r to [MinRatio, MaxRatio].
func ClampRatio(r float64) float64 {
	if r < MinRatio {
		return MinRatio
	}
	if r > MaxRatio {
		return MaxRatio
	}
	return r
}

// Walk visits every container under root in pre-order. Returning false from
// fn stops the walk.
func (a *Arena) Walk(root ID, fn func(id ID, depth int) bool) error {
	if root == None {
		return nil
	}
	type frame struct {
		id    ID
		depth int
	}
	stack := []frame{{root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		c, err := a.get("walk", f.id)
		if err != nil {
			return err
		}
		if !fn(f.id, f.depth) {
			return nil
		}
		if s, ok := c.body.(*Split); ok {
			stack = append(stack, frame{s.Right, f.depth + 1}, frame{s.Left, f.depth + 1})
		}
	}
	return nil
}

// Leaves returns the leaves under root, left to right.
func (a *Arena) Leaves(root ID) ([]ID, error) {
	var out []ID
	err := a.Walk(root, func(id ID, _ int) bool {
		if a.IsLeaf(id) {
			out = append(out, id)
		}
		return true
	})
	return out, err
}

// FindLeaf searches the tree under start for the leaf holding h. A miss is
// not an error; a broken tree is.
func (a *Arena) FindLeaf(start ID, h Handle) (ID, bool, error) {
	found := None
	err := a.Walk(start, func(id ID, _ int) bool {
		c := a.nodes[id]
		if l, ok := c.body.(*Leaf); ok && l.Window.Handle == h {
			found = id
			return false
		}
		return true
	})
	if err != nil {
		return None, false, err
	}
	return found, found != None, nil
}

// Validate checks that the tree under root is well formed: every split has
// two live children whose parent link points back at it, ratios are in
// bounds, and no container is reachable twice.
func (a *Arena) Validate(root ID) error {
	if root == None {
		return nil
	}
	rc, err := a.get("validate", root)
	if err != nil {
		return err
	}
	if rc.parent != None {
		return invariant("validate", root, "root has a parent")
	}

	seen := make(map[ID]bool)
	stack := []ID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			return invariant("validate", id, "container reachable twice")
		}
		seen[id] = true

		c, err := a.get("validate", id)
		if err != nil {
			return err
		}
		s, ok := c.body.(*Split)
		if !ok {
			continue
		}
		if s.Ratio < MinRatio || s.Ratio > MaxRatio {
			return invariant("validate", id, fmt.Sprintf("ratio %.3f out of range", s.Ratio))
		}
		for _, child := range []ID{s.Left, s.Right} {
			cc, err := a.get("validate", child)
			if err != nil {
				return err
			}
			if cc.parent != id {
				return invariant("validate", child, fmt.Sprintf("parent is %d, want %d", cc.parent, id))
			}
			stack = append(stack, child)
		}
	}
	return nil
}
