// Copyright (c) 2024-2026, the Formwalk Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// ParallelAnswer is the hierarchical answer state of one parallel group.
// Answers is keyed by child question id; index i of each slice belongs to
// repetition i of the group. When the child is itself a parallel group the
// slot holds a nested ParallelAnswer, recursively.
//
// The tree is the authoritative representation of group answers. The flat
// ${questionId}_${iteration} keys in an AnswerSet are a projection derived
// on every write, see WriteGroupAnswer.
type ParallelAnswer struct {
	Count   int               `json:"count"`
	Answers map[string][]Slot `json:"answers"`
}

// NewParallelAnswer creates an empty group state with the given repetition
// count.
func NewParallelAnswer(count int) *ParallelAnswer {
	return &ParallelAnswer{Count: count, Answers: map[string][]Slot{}}
}

// clone copies the spine of the tree: the struct, the map and its slices.
// Slot contents are shared, writers replace slots wholesale.
func (p *ParallelAnswer) clone() *ParallelAnswer {
	if p == nil {
		return NewParallelAnswer(0)
	}

	cp := &ParallelAnswer{Count: p.Count, Answers: make(map[string][]Slot, len(p.Answers))}
	for k, v := range p.Answers {
		cp.Answers[k] = slices.Clone(v)
	}

	return cp
}

// Slot is one repetition's answer for one child question: either a leaf
// value, a nested group, or unset. Unset slots exist as padding when a
// later repetition is answered before an earlier one.
type Slot struct {
	kind  slotKind
	leaf  any
	group *ParallelAnswer
}

type slotKind int

const (
	unsetSlot slotKind = iota
	leafSlot
	groupSlot
)

// LeafSlot wraps a plain answer value.
func LeafSlot(v any) Slot {
	return Slot{kind: leafSlot, leaf: v}
}

// GroupSlot wraps a nested group state.
func GroupSlot(g *ParallelAnswer) Slot {
	return Slot{kind: groupSlot, group: g}
}

// IsSet reports whether the slot holds anything.
func (s Slot) IsSet() bool { return s.kind != unsetSlot }

// IsGroup reports whether the slot holds a nested group.
func (s Slot) IsGroup() bool { return s.kind == groupSlot }

// Leaf returns the leaf value, nil for unset and group slots.
func (s Slot) Leaf() any {
	if s.kind != leafSlot {
		return nil
	}

	return s.leaf
}

// Group returns the nested group state, nil for unset and leaf slots.
func (s Slot) Group() *ParallelAnswer {
	if s.kind != groupSlot {
		return nil
	}

	return s.group
}

// groupOrNew returns the nested group state, creating an empty one for
// unset slots. Writers use this when descending into a repetition that has
// not been touched yet.
func (s Slot) groupOrNew() *ParallelAnswer {
	if s.kind == groupSlot {
		return s.group
	}

	return NewParallelAnswer(0)
}

// MarshalJSON emits null for unset slots, the group state for group slots
// and the raw value otherwise, matching the persisted document shape.
func (s Slot) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case groupSlot:
		return json.Marshal(s.group)
	case leafSlot:
		return json.Marshal(s.leaf)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes null as unset and objects carrying count and
// answers keys as nested groups, everything else is a leaf value.
func (s *Slot) UnmarshalJSON(data []byte) error {
	var v any
	err := json.Unmarshal(data, &v)
	if err != nil {
		return err
	}

	if v == nil {
		*s = Slot{}
		return nil
	}

	if m, ok := v.(map[string]any); ok && isGroupShape(m) {
		var g ParallelAnswer
		err = json.Unmarshal(data, &g)
		if err != nil {
			return fmt.Errorf("invalid nested group answer: %w", err)
		}
		if g.Answers == nil {
			g.Answers = map[string][]Slot{}
		}
		*s = GroupSlot(&g)
		return nil
	}

	*s = LeafSlot(v)

	return nil
}

func isGroupShape(m map[string]any) bool {
	if len(m) != 2 {
		return false
	}
	_, hasCount := m["count"]
	_, hasAnswers := m["answers"]

	return hasCount && hasAnswers
}

// padSlots grows a slot slice to at least n entries, keeping existing ones.
func padSlots(s []Slot, n int) []Slot {
	s = slices.Clone(s)
	for len(s) < n {
		s = append(s, Slot{})
	}

	return s
}

// Equal compares two group states structurally, used by tests and change
// detection.
func (p *ParallelAnswer) Equal(o *ParallelAnswer) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.Count != o.Count {
		return false
	}

	return maps.EqualFunc(p.Answers, o.Answers, func(a, b []Slot) bool {
		return slices.EqualFunc(a, b, slotsEqual)
	})
}

func slotsEqual(a, b Slot) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case groupSlot:
		return a.group.Equal(b.group)
	case leafSlot:
		return valuesEqual(a.leaf, b.leaf)
	default:
		return true
	}
}
