// Copyright (c) 2024-2026, the Formwalk Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"slices"

	"github.com/formwalk/formwalk"
)

// GroupStep addresses one repetition of one parallel group. A GroupPath
// walks from a top-level group down through nested groups, outermost first,
// so [{P 1} {C 0}] means repetition 0 of nested group C inside repetition 1
// of P.
type GroupStep struct {
	Group *formwalk.Question
	Index int
}

// GroupPath addresses a repetition at arbitrary nesting depth.
type GroupPath []GroupStep

// flatPathKey derives the flat projection key for a child answer at the
// given path: the innermost iteration index is appended first, then each
// ancestor's index outward. For a single-level path this is the plain
// ${childId}_${iteration} flat key.
func flatPathKey(path GroupPath, childID string) string {
	key := childID
	for k := len(path) - 1; k >= 0; k-- {
		key = FlatKey(key, path[k].Index)
	}

	return key
}

// GroupState returns the hierarchical answer state stored for a top-level
// parallel group, nil when nothing was recorded yet.
func (e *Engine) GroupState(group *formwalk.Question, answers AnswerSet) *ParallelAnswer {
	if pa, ok := answers[group.ID].(*ParallelAnswer); ok {
		return pa
	}

	return nil
}

// GroupCount returns the current repetition count of a parallel group. The
// ${groupId}_count answer wins, falling back to the hierarchical state. The
// result is clamped into [0, maxItems] so consumers never iterate beyond
// the allowed range.
func (e *Engine) GroupCount(group *formwalk.Question, answers AnswerSet) int {
	count := 0

	if v, ok := answers[CountKey(group.ID)]; ok {
		if n, ok := coerceNumber(v); ok {
			count = int(n)
		}
	} else if pa := e.GroupState(group, answers); pa != nil {
		count = pa.Count
	}

	if count < 0 {
		return 0
	}
	if max := group.ParallelSettings().MaxItems; count > max {
		return max
	}

	return count
}

// WriteGroupCount records a new repetition count for a top-level parallel
// group and returns the updated answers. Answers already entered for
// repetitions beyond the new count are kept: shrinking then growing the
// count brings them back, iterations are never renumbered.
func (e *Engine) WriteGroupCount(group *formwalk.Question, count int, answers AnswerSet) AnswerSet {
	pa := e.GroupState(group, answers).clone()
	pa.Count = count

	out := answers.Clone()
	out[CountKey(group.ID)] = count
	out[group.ID] = pa

	return out
}

// WriteGroupAnswer records the answer of child question child at repetition
// outerIndex of group and returns the updated answers. The hierarchical
// state at answers[group.ID] is replaced wholesale, never mutated in place,
// and for leaf children the flat ${childId}_${index} projection key is
// derived in the same write so both views cannot drift.
func (e *Engine) WriteGroupAnswer(group, child *formwalk.Question, outerIndex int, value any, answers AnswerSet) AnswerSet {
	return e.WriteGroupAnswerAt(GroupPath{{Group: group, Index: outerIndex}}, child, value, answers)
}

// WriteGroupAnswerAt is WriteGroupAnswer for arbitrary nesting depth. The
// path names the repetition the answer belongs to, outermost group first.
func (e *Engine) WriteGroupAnswerAt(path GroupPath, child *formwalk.Question, value any, answers AnswerSet) AnswerSet {
	if len(path) == 0 {
		return answers
	}

	top := path[0].Group

	pa := e.GroupState(top, answers)
	if pa == nil {
		pa = NewParallelAnswer(e.GroupCount(top, answers))
	}

	out := answers.Clone()
	out[top.ID] = writeAt(pa, path, child, value)

	if child.Type != formwalk.ParallelGroup {
		out[flatPathKey(path, child.ID)] = value
	}

	return out
}

// writeAt returns a copy of pa with the child answer placed at the path.
// Only the spine toward the written slot is copied, untouched branches are
// shared with the input tree.
func writeAt(pa *ParallelAnswer, path GroupPath, child *formwalk.Question, value any) *ParallelAnswer {
	cp := pa.clone()
	step := path[0]

	if len(path) == 1 {
		arr := padSlots(cp.Answers[child.ID], step.Index+1)
		if g, ok := value.(*ParallelAnswer); ok {
			arr[step.Index] = GroupSlot(g)
		} else {
			arr[step.Index] = LeafSlot(value)
		}
		cp.Answers[child.ID] = arr

		return cp
	}

	next := path[1].Group
	arr := padSlots(cp.Answers[next.ID], step.Index+1)
	arr[step.Index] = GroupSlot(writeAt(arr[step.Index].groupOrNew(), path[1:], child, value))
	cp.Answers[next.ID] = arr

	return cp
}

// WriteNestedGroupCount records a new repetition count for a parallel group
// nested inside other groups. The chain names the ancestor groups outermost
// first. A nested group's count is global across every repetition of its
// ancestors, not per repetition: the same count is propagated to the
// group's state at every ancestor iteration.
func (e *Engine) WriteNestedGroupCount(chain []*formwalk.Question, group *formwalk.Question, count int, answers AnswerSet) AnswerSet {
	if len(chain) == 0 {
		return e.WriteGroupCount(group, count, answers)
	}

	top := chain[0]

	pa := e.GroupState(top, answers)
	if pa == nil {
		pa = NewParallelAnswer(e.GroupCount(top, answers))
	}

	propagated := propagateCount(pa, chain[1:], group, count)

	out := answers.Clone()
	out[top.ID] = propagated
	out[CountKey(group.ID)] = count
	flatNestedCounts(out, propagated, chain, group, count, nil)

	return out
}

// flatNestedCounts projects a nested group's count into flat keys, one per
// combination of ancestor iterations, suffixed the same way as the flat keys
// of the group's child answers. chain[0] owns pa.
func flatNestedCounts(out AnswerSet, pa *ParallelAnswer, chain []*formwalk.Question, group *formwalk.Question, count int, path GroupPath) {
	owner := chain[0]

	if len(chain) == 1 {
		for i := 0; i < pa.Count; i++ {
			p := append(slices.Clone(path), GroupStep{Group: owner, Index: i})
			out[flatPathKey(p, CountKey(group.ID))] = count
		}
		return
	}

	next := chain[1]
	arr := pa.Answers[next.ID]
	for i := 0; i < pa.Count && i < len(arr); i++ {
		sub := arr[i].Group()
		if sub == nil {
			continue
		}

		p := append(slices.Clone(path), GroupStep{Group: owner, Index: i})
		flatNestedCounts(out, sub, chain[1:], group, count, p)
	}
}

// propagateCount descends through every repetition of every chain group and
// sets the target group's count at each of them.
func propagateCount(pa *ParallelAnswer, rest []*formwalk.Question, group *formwalk.Question, count int) *ParallelAnswer {
	cp := pa.clone()

	if len(rest) == 0 {
		arr := padSlots(cp.Answers[group.ID], cp.Count)
		for i := 0; i < cp.Count; i++ {
			sub := arr[i].groupOrNew().clone()
			sub.Count = count
			arr[i] = GroupSlot(sub)
		}
		cp.Answers[group.ID] = arr

		return cp
	}

	next := rest[0]
	arr := padSlots(cp.Answers[next.ID], cp.Count)
	for i := 0; i < cp.Count; i++ {
		arr[i] = GroupSlot(propagateCount(arr[i].groupOrNew(), rest[1:], group, count))
	}
	cp.Answers[next.ID] = arr

	return cp
}

// ReadGroupAnswer returns the answer of child question child at repetition
// outerIndex of group. The second return is false when the repetition is
// outside the group's current count or nothing was recorded. Leaf children
// are read from the flat projection first, group children from the
// hierarchical state.
func (e *Engine) ReadGroupAnswer(group, child *formwalk.Question, outerIndex int, answers AnswerSet) (any, bool) {
	return e.ReadGroupAnswerAt(GroupPath{{Group: group, Index: outerIndex}}, child, answers)
}

// ReadGroupAnswerAt is ReadGroupAnswer for arbitrary nesting depth.
func (e *Engine) ReadGroupAnswerAt(path GroupPath, child *formwalk.Question, answers AnswerSet) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}

	// repetitions beyond the current count are never read, they may hold
	// stale answers kept for a later count increase
	for _, step := range path {
		if step.Index < 0 || step.Index >= e.GroupCount(step.Group, answers) {
			return nil, false
		}
	}

	if child.Type != formwalk.ParallelGroup {
		if v, ok := answers[flatPathKey(path, child.ID)]; ok {
			return v, true
		}
	}

	cur := e.GroupState(path[0].Group, answers)
	for k, step := range path {
		if cur == nil {
			return nil, false
		}

		if k == len(path)-1 {
			arr := cur.Answers[child.ID]
			if step.Index >= len(arr) {
				return nil, false
			}

			slot := arr[step.Index]
			switch {
			case slot.IsGroup():
				return slot.Group(), true
			case slot.IsSet():
				return slot.Leaf(), true
			default:
				return nil, false
			}
		}

		arr := cur.Answers[path[k+1].Group.ID]
		if step.Index >= len(arr) {
			return nil, false
		}
		cur = arr[step.Index].Group()
	}

	return nil, false
}
