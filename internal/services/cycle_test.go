package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTree struct {
	children map[uint64][]uint64
	calls    int
	failOn   uint64
}

func (f *fakeTree) ChildIDs(_ context.Context, id uint64) ([]uint64, error) {
	f.calls++
	if f.failOn != 0 && id == f.failOn {
		return nil, errors.New("connection reset")
	}
	return f.children[id], nil
}

func TestCheckForCycle(t *testing.T) {
	// 1 -> 2 -> 3 -> 4, 2 -> 5
	tree := func() *fakeTree {
		return &fakeTree{children: map[uint64][]uint64{
			1: {2},
			2: {3, 5},
			3: {4},
		}}
	}

	tests := []struct {
		name     string
		node     uint64
		parent   uint64
		expected bool
	}{
		{name: "self", node: 3, parent: 3, expected: true},
		{name: "direct child", node: 2, parent: 3, expected: true},
		{name: "deep descendant", node: 1, parent: 4, expected: true},
		{name: "sibling branch", node: 3, parent: 5, expected: false},
		{name: "ancestor", node: 4, parent: 1, expected: false},
		{name: "leaf", node: 5, parent: 4, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cycle, err := CheckForCycle(context.Background(), tree(), tt.node, tt.parent)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cycle)
		})
	}
}

func TestCheckForCycle_TerminatesOnCorruptedTree(t *testing.T) {
	// 2 and 3 already point at each other
	tree := &fakeTree{children: map[uint64][]uint64{
		1: {2},
		2: {3},
		3: {2},
	}}

	cycle, err := CheckForCycle(context.Background(), tree, 1, 9)
	require.NoError(t, err)
	assert.False(t, cycle)
	assert.Equal(t, 3, tree.calls)
}

func TestCheckForCycle_PropagatesStoreErrors(t *testing.T) {
	tree := &fakeTree{children: map[uint64][]uint64{1: {2}}, failOn: 2}

	_, err := CheckForCycle(context.Background(), tree, 1, 9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
