// Package ordering keeps per-scope integer positions dense.
//
// A scope is any ordered collection (lists on a board, cards in a list).
// Callers load the whole scope, hand it to Move, Remove or Insert, and
// persist the returned patches. Elements whose position does not change
// get no patch.
package ordering

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvariantViolation means a computed sequence is not exactly 0..n-1.
	ErrInvariantViolation = errors.New("ordering invariant violated")

	// ErrNotInSequence means the element to move is not part of the scope.
	ErrNotInSequence = errors.New("element not in sequence")
)

// Item is one element of a scope and its currently stored index.
type Item struct {
	ID    string
	Index int
}

// Patch is a write needed to restore dense ordering.
type Patch struct {
	ID    string
	Index int
}

// Move removes id from the scope and reinserts it at newIndex, clamped to
// the valid range of the resulting sequence.
func Move(items []Item, id string, newIndex int) ([]Patch, error) {
	seq := sorted(items)
	pos := indexOf(seq, id)
	if pos < 0 {
		return nil, fmt.Errorf("move %s: %w", id, ErrNotInSequence)
	}
	moved := seq[pos]
	rest := append(seq[:pos:pos], seq[pos+1:]...)

	at := clamp(newIndex, len(rest))
	out := make([]Item, 0, len(seq))
	out = append(out, rest[:at]...)
	out = append(out, moved)
	out = append(out, rest[at:]...)

	return diff(out)
}

// Remove drops id from the scope and densifies what is left. An id that
// is not present only densifies.
func Remove(items []Item, id string) []Patch {
	seq := sorted(items)
	if pos := indexOf(seq, id); pos >= 0 {
		seq = append(seq[:pos], seq[pos+1:]...)
	}
	patches, _ := diff(seq)
	return patches
}

// Insert splices a new element into the scope at newIndex, clamped to
// [0, len(items)]. It returns the element's final position and the patches
// for existing elements that shifted. The new element itself is never
// included in the patches; the caller writes it.
func Insert(items []Item, id string, newIndex int) (int, []Patch) {
	seq := sorted(items)
	if pos := indexOf(seq, id); pos >= 0 {
		seq = append(seq[:pos], seq[pos+1:]...)
	}
	at := clamp(newIndex, len(seq))

	patches := make([]Patch, 0)
	for i, it := range seq {
		want := i
		if i >= at {
			want = i + 1
		}
		if it.Index != want {
			patches = append(patches, Patch{ID: it.ID, Index: want})
		}
	}
	return at, patches
}

// Validate reports ErrInvariantViolation unless the indices form exactly
// {0, ..., n-1}.
func Validate(items []Item) error {
	seen := make([]bool, len(items))
	for _, it := range items {
		if it.Index < 0 || it.Index >= len(items) || seen[it.Index] {
			return fmt.Errorf("index %d of %s: %w", it.Index, it.ID, ErrInvariantViolation)
		}
		seen[it.Index] = true
	}
	return nil
}

// Apply returns a copy of items with patches applied.
func Apply(items []Item, patches []Patch) []Item {
	byID := make(map[string]int, len(patches))
	for _, p := range patches {
		byID[p.ID] = p.Index
	}
	out := make([]Item, len(items))
	for i, it := range items {
		if idx, ok := byID[it.ID]; ok {
			it.Index = idx
		}
		out[i] = it
	}
	return out
}

func diff(seq []Item) ([]Patch, error) {
	patches := make([]Patch, 0)
	final := make([]Item, len(seq))
	for i, it := range seq {
		if it.Index != i {
			patches = append(patches, Patch{ID: it.ID, Index: i})
		}
		final[i] = Item{ID: it.ID, Index: i}
	}
	if err := Validate(final); err != nil {
		return nil, err
	}
	return patches, nil
}

// sorted copies items ordered by index. Duplicate indices left behind by
// concurrent writers in older data fall back to id order.
func sorted(items []Item) []Item {
	seq := make([]Item, len(items))
	copy(seq, items)
	sort.SliceStable(seq, func(i, j int) bool {
		if seq[i].Index != seq[j].Index {
			return seq[i].Index < seq[j].Index
		}
		return seq[i].ID < seq[j].ID
	})
	return seq
}

func indexOf(seq []Item, id string) int {
	for i, it := range seq {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
