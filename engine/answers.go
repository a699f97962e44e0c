// Copyright (c) 2024-2026, the Formwalk Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"
	"maps"
)

// AnswerSet is the flat answer map of a survey session. Keys are bare
// question ids for top-level answers, ${questionId}_${iteration} flat keys
// for answers inside a parallel group repetition, and ${groupId}_count for
// repetition counts. Top-level parallel group ids additionally map to their
// hierarchical *ParallelAnswer state.
//
// AnswerSet values are treated as immutable, all updates go through Set or
// the group write operations which return a new map.
type AnswerSet map[string]any

// Set returns a copy of the answer set with key set to value. The receiver
// is not modified.
func (a AnswerSet) Set(key string, value any) AnswerSet {
	out := a.Clone()
	out[key] = value

	return out
}

// Clone returns a shallow copy of the answer set.
func (a AnswerSet) Clone() AnswerSet {
	if a == nil {
		return AnswerSet{}
	}

	return maps.Clone(a)
}

// FlatKey addresses repetition index of a question inside a parallel group.
func FlatKey(questionID string, index int) string {
	return fmt.Sprintf("%s_%d", questionID, index)
}

// CountKey addresses the repetition count answer of a parallel group.
func CountKey(groupID string) string {
	return groupID + "_count"
}
