package services

import (
	"context"
	"fmt"
)

// ChildLister lists the direct children of a node in a tree keyed by uint64 ids.
type ChildLister interface {
	ChildIDs(ctx context.Context, id uint64) ([]uint64, error)
}

// CheckForCycle reports whether making proposedParentID the parent of nodeID
// would create a cycle: either both are the same node, or the proposed parent
// is a descendant of the node.
//
// The traversal reads the current persisted tree and is not transactional, so
// a concurrent edit of the same tree can race with the check.
func CheckForCycle(ctx context.Context, tree ChildLister, nodeID, proposedParentID uint64) (bool, error) {
	if nodeID == proposedParentID {
		return true, nil
	}

	visited := map[uint64]struct{}{nodeID: {}}
	stack := []uint64{nodeID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := tree.ChildIDs(ctx, current)
		if err != nil {
			return false, fmt.Errorf("failed to list children of %d: %w", current, err)
		}
		for _, child := range children {
			if child == proposedParentID {
				return true, nil
			}
			if _, seen := visited[child]; seen {
				continue
			}
			visited[child] = struct{}{}
			stack = append(stack, child)
		}
	}

	return false, nil
}
