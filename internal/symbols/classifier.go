// Package symbols maps raw input symbols to small dense group ids.
//
// Transition and translation tables are indexed by (state, group), so the
// group id space has to stay small and contiguous. Groups are declared in
// priority order: a symbol belongs to the first group that lists it, and
// everything unlisted falls into the reserved catch-all group.
package symbols

import (
	"errors"
	"fmt"
)

// MaxGroups bounds the number of declared groups, catch-all excluded.
// Tables are dense in the group dimension, so this stays small.
const MaxGroups = 15

// ErrTooManyGroups is returned when a grammar declares more groups than
// the dense tables can index.
var ErrTooManyGroups = errors.New("too many symbol groups")

// Group is a named membership set of raw symbols.
type Group struct {
	Name    string
	Members []byte
}

// Classifier resolves group membership through a flat 256-entry lookup.
// First-match-wins ordering is baked in at construction.
type Classifier struct {
	table   [256]uint8
	groups  int
	otherID uint8
}

const unclaimed = 0xFF

// NewClassifier builds a classifier from groups in declared order. The
// catch-all group receives id len(groups).
func NewClassifier(groups []Group) (*Classifier, error) {
	if len(groups) > MaxGroups {
		return nil, fmt.Errorf("%w: %d declared, limit %d", ErrTooManyGroups, len(groups), MaxGroups)
	}

	c := &Classifier{
		groups:  len(groups) + 1,
		otherID: uint8(len(groups)),
	}
	for i := range c.table {
		c.table[i] = unclaimed
	}
	for id, g := range groups {
		for _, sym := range g.Members {
			if c.table[sym] == unclaimed {
				c.table[sym] = uint8(id)
			}
		}
	}
	for i, id := range c.table {
		if id == unclaimed {
			c.table[i] = c.otherID
		}
	}
	return c, nil
}

// Classify returns the group id of a symbol.
func (c *Classifier) Classify(sym byte) uint8 {
	return c.table[sym]
}

// ClassifyAll writes group ids for every input symbol into dst.
// dst must be at least len(input) long.
func (c *Classifier) ClassifyAll(input []byte, dst []uint8) {
	if len(input) == 0 {
		return
	}
	_ = dst[len(input)-1]
	for i, sym := range input {
		dst[i] = c.table[sym]
	}
}

// Groups returns the total group count, catch-all included.
func (c *Classifier) Groups() int {
	return c.groups
}

// OtherID returns the id of the catch-all group.
func (c *Classifier) OtherID() uint8 {
	return c.otherID
}

// Contains reports whether a symbol belongs to a declared group, i.e.
// does not fall through to the catch-all.
func (c *Classifier) Contains(sym byte) bool {
	return c.table[sym] != c.otherID
}
