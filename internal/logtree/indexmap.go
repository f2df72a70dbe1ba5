// Package logtree implements the Instance/Accessor duality over frames and
// messages: an Instance owns its parsed contents outright, while an
// Accessor is a cursor over the on-disk index files that resolves content
// on demand and caches representation values in a bounded LRU.
package logtree

import (
	"sort"

	"github.com/badger-rl/logreader/internal/logerr"
)

// IndexMap restricts which absolute indices an Accessor represents and
// gives positional access into that restricted set.
type IndexMap interface {
	Len() int
	At(pos int) uint64
	PositionOf(abs uint64) (int, bool)
}

// RangeIndexMap is a contiguous [Low, High) run of absolute indices —
// the common case of an Accessor over an entire log.
type RangeIndexMap struct {
	Low, High uint64
}

func (r RangeIndexMap) Len() int { return int(r.High - r.Low) }

func (r RangeIndexMap) At(pos int) uint64 { return r.Low + uint64(pos) }

func (r RangeIndexMap) PositionOf(abs uint64) (int, bool) {
	if abs < r.Low || abs >= r.High {
		return 0, false
	}
	return int(abs - r.Low), true
}

// SortedIndexMap is an arbitrary ascending set of absolute indices, e.g. a
// single thread's frame list.
type SortedIndexMap struct {
	Indices []uint64
}

func (s SortedIndexMap) Len() int { return len(s.Indices) }

func (s SortedIndexMap) At(pos int) uint64 { return s.Indices[pos] }

func (s SortedIndexMap) PositionOf(abs uint64) (int, bool) {
	i := sort.Search(len(s.Indices), func(i int) bool { return s.Indices[i] >= abs })
	if i < len(s.Indices) && s.Indices[i] == abs {
		return i, true
	}
	return 0, false
}

// Cursor tracks an Accessor's current position within its IndexMap.
type Cursor struct {
	m   IndexMap
	pos int
}

// NewCursor returns a Cursor over m, positioned at 0.
func NewCursor(m IndexMap) *Cursor { return &Cursor{m: m} }

// Index is the cursor's position within its IndexMap.
func (c *Cursor) Index() int { return c.pos }

// AbsIndex is the absolute index the cursor currently refers to.
func (c *Cursor) AbsIndex() uint64 { return c.m.At(c.pos) }

// SetIndex moves the cursor to a position within the IndexMap directly.
func (c *Cursor) SetIndex(pos int) { c.pos = pos }

// SetAbsIndex moves the cursor by binary-searching the IndexMap for abs.
func (c *Cursor) SetAbsIndex(abs uint64) error {
	pos, ok := c.m.PositionOf(abs)
	if !ok {
		return logerr.ErrNotInIndexMap
	}
	c.pos = pos
	return nil
}

// Len is the number of entries in the cursor's IndexMap.
func (c *Cursor) Len() int { return c.m.Len() }
