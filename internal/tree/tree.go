// Package tree holds the binary container hierarchy used to tile windows.
//
// Containers live in an Arena and are addressed by ID. A container is either
// a Split with exactly two children or a Leaf holding one window; parent links
// are IDs looked up through the arena, never owning references.
package tree

// ID addresses a container in an Arena. IDs are never reused.
type ID uint32

// None is the zero ID and never refers to a container.
const None ID = 0

// Handle is the display server's identifier for a window.
type Handle uint32

// Direction is the orientation of the line that divides a split.
type Direction int

const (
	// Vertical splits place children side by side (left | right).
	Vertical Direction = iota
	// Horizontal splits stack children (top / bottom).
	Horizontal
)

func (d Direction) String() string {
	if d == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Side selects where a new window goes relative to an existing one.
type Side int

const (
	Left Side = iota
	Right
	Up
	Down
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// Direction returns the split direction produced by inserting on this side.
func (s Side) Direction() Direction {
	if s == Up || s == Down {
		return Horizontal
	}
	return Vertical
}

// Trailing reports whether the side places the new child second.
func (s Side) Trailing() bool {
	return s == Right || s == Down
}

// Fraction is a point or extent expressed as 0..1 of a monitor.
type Fraction struct {
	X float64
	Y float64
}

// Window is the per-window state carried by a leaf.
type Window struct {
	Handle   Handle
	Floating bool
	Position Fraction
	Size     Fraction
}

// Kind distinguishes the two container variants.
type Kind int

const (
	KindSplit Kind = iota + 1
	KindLeaf
)

func (k Kind) String() string {
	switch k {
	case KindSplit:
		return "split"
	case KindLeaf:
		return "leaf"
	default:
		return "invalid"
	}
}

// Split divides its rectangle between two children. Ratio is the share
// given to Left.
type Split struct {
	Direction Direction
	Ratio     float64
	Left      ID
	Right     ID
}

// Leaf holds exactly one window.
type Leaf struct {
	Window Window
}

type body interface {
	kind() Kind
}

func (*Split) kind() Kind { return KindSplit }
func (*Leaf) kind() Kind  { return KindLeaf }

type container struct {
	parent ID
	body   body
}

// Ratio bounds applied by AdjustRatio.
const (
	MinRatio = 0.05
	MaxRatio = 0.95
)

// Arena stores containers for every workspace of a session.
type Arena struct {
	nodes map[ID]*container
	next  ID
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{nodes: make(map[ID]*container)}
}

func (a *Arena) alloc(parent ID, b body) ID {
	a.next++
	a.nodes[a.next] = &container{parent: parent, body: b}
	return a.next
}

func (a *Arena) get(op string, id ID) (*container, error) {
	c, ok := a.nodes[id]
	if !ok {
		return nil, invariant(op, id, "unknown container")
	}
	return c, nil
}

// NewLeaf allocates a detached leaf for w.
func (a *Arena) NewLeaf(w Window) ID {
	return a.alloc(None, &Leaf{Window: w})
}

// Release frees a detached container. Releasing an attached container or a
// split that still has children is an invariant violation.
func (a *Arena) Release(id ID) error {
	c, err := a.get("release", id)
	if err != nil {
		return err
	}
	if c.parent != None {
		return invariant("release", id, "container is still attached")
	}
	if _, ok := c.body.(*Split); ok {
		return invariant("release", id, "cannot release a split")
	}
	delete(a.nodes, id)
	return nil
}

// Len returns the number of live containers.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Contains reports whether id refers to a live container.
func (a *Arena) Contains(id ID) bool {
	_, ok := a.nodes[id]
	return ok
}

// Kind returns the variant of id.
func (a *Arena) Kind(id ID) (Kind, error) {
	c, err := a.get("kind", id)
	if err != nil {
		return 0, err
	}
	return c.body.kind(), nil
}

// IsLeaf reports whether id is a live leaf.
func (a *Arena) IsLeaf(id ID) bool {
	c, ok := a.nodes[id]
	if !ok {
		return false
	}
	_, leaf := c.body.(*Leaf)
	return leaf
}

// Parent returns the parent of id, or None for a root or detached container.
func (a *Arena) Parent(id ID) (ID, error) {
	c, err := a.get("parent", id)
	if err != nil {
		return None, err
	}
	return c.parent, nil
}

// Window returns the window stored in leaf. The pointer stays valid until the
// leaf is released.
func (a *Arena) Window(leaf ID) (*Window, error) {
	c, err := a.get("window", leaf)
	if err != nil {
		return nil, err
	}
	l, ok := c.body.(*Leaf)
	if !ok {
		return nil, invariantErr("window", leaf, ErrNotLeaf)
	}
	return &l.Window, nil
}

// Split returns a copy of the split stored at id.
func (a *Arena) Split(id ID) (Split, error) {
	c, err := a.get("split", id)
	if err != nil {
		return Split{}, err
	}
	s, ok := c.body.(*Split)
	if !ok {
		return Split{}, invariantErr("split", id, ErrNotSplit)
	}
	return *s, nil
}

// Root walks parent links from id to the top of its tree.
func (a *Arena) Root(id ID) (ID, error) {
	for {
		c, err := a.get("root", id)
		if err != nil {
			return None, err
		}
		if c.parent == None {
			return id, nil
		}
		id = c.parent
	}
}

// Step is one ancestor on the path from a leaf to its root.
type Step struct {
	Split ID
	// Left is true when the path enters the split through its Left child.
	Left bool
}

// Path returns the ancestors of id ordered from the root down.
func (a *Arena) Path(id ID) ([]Step, error) {
	var steps []Step
	child := id
	for {
		c, err := a.get("path", child)
		if err != nil {
			return nil, err
		}
		if c.parent == None {
			break
		}
		p, err := a.get("path", c.parent)
		if err != nil {
			return nil, err
		}
		s, ok := p.body.(*Split)
		if !ok {
			return nil, invariant("path", c.parent, "parent is not a split")
		}
		switch child {
		case s.Left:
			steps = append(steps, Step{Split: c.parent, Left: true})
		case s.Right:
			steps = append(steps, Step{Split: c.parent, Left: false})
		default:
			return nil, invariant("path", child, "parent does not reference child")
		}
		child = c.parent
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps, nil
}
