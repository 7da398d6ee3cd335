package model

import "fmt"

// Validate checks the tree invariants of a map:
//   - exactly one level 0 node, the center, with no parent
//   - every other node has a parent in the map that lists it as a child,
//     one level above it
//   - every child id listed by a node points back at that node
//   - edges are exactly the parent -> child links, one per non-center node
//   - every node is reachable from the center
//
// Violations are reported wrapped in ErrBuildFailed.
func (m *Map) Validate() error {
	if m.CenterNode == nil {
		return fmt.Errorf("%w: map has no center node", ErrBuildFailed)
	}
	if got, ok := m.Nodes[m.CenterNode.ID]; !ok || got != m.CenterNode {
		return fmt.Errorf("%w: center node %q is not in the node set", ErrBuildFailed, m.CenterNode.ID)
	}

	centers := 0
	for id, n := range m.Nodes {
		if id != n.ID {
			return fmt.Errorf("%w: node key %q does not match id %q", ErrBuildFailed, id, n.ID)
		}
		if n.Level == 0 {
			centers++
			if n.ParentID != "" {
				return fmt.Errorf("%w: center node %q has parent %q", ErrBuildFailed, n.ID, n.ParentID)
			}
			continue
		}
		parent, ok := m.Nodes[n.ParentID]
		if !ok {
			return fmt.Errorf("%w: node %q has unknown parent %q", ErrBuildFailed, n.ID, n.ParentID)
		}
		if parent.Level != n.Level-1 {
			return fmt.Errorf("%w: node %q at level %d under parent at level %d", ErrBuildFailed, n.ID, n.Level, parent.Level)
		}
		if !contains(parent.ChildrenIDs, n.ID) {
			return fmt.Errorf("%w: parent %q does not list child %q", ErrBuildFailed, parent.ID, n.ID)
		}
	}
	if centers != 1 {
		return fmt.Errorf("%w: expected 1 center node, found %d", ErrBuildFailed, centers)
	}

	for _, n := range m.Nodes {
		seen := make(map[string]bool, len(n.ChildrenIDs))
		for _, childID := range n.ChildrenIDs {
			if seen[childID] {
				return fmt.Errorf("%w: node %q lists child %q twice", ErrBuildFailed, n.ID, childID)
			}
			seen[childID] = true
			child, ok := m.Nodes[childID]
			if !ok || child.ParentID != n.ID {
				return fmt.Errorf("%w: node %q lists %q which is not its child", ErrBuildFailed, n.ID, childID)
			}
		}
	}

	if len(m.Edges) != len(m.Nodes)-1 {
		return fmt.Errorf("%w: %d edges for %d nodes", ErrBuildFailed, len(m.Edges), len(m.Nodes))
	}
	linked := make(map[string]bool, len(m.Edges))
	for _, e := range m.Edges {
		target, ok := m.Nodes[e.TargetID]
		if !ok || target.ParentID != e.SourceID {
			return fmt.Errorf("%w: edge %s->%s is not a tree link", ErrBuildFailed, e.SourceID, e.TargetID)
		}
		if linked[e.TargetID] {
			return fmt.Errorf("%w: node %q has more than one incoming edge", ErrBuildFailed, e.TargetID)
		}
		linked[e.TargetID] = true
	}

	// Walk down from the center; anything not reached sits on a cycle.
	reached := map[string]bool{m.CenterNode.ID: true}
	queue := []string{m.CenterNode.ID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, childID := range m.Nodes[id].ChildrenIDs {
			if reached[childID] {
				return fmt.Errorf("%w: node %q reached twice", ErrBuildFailed, childID)
			}
			reached[childID] = true
			queue = append(queue, childID)
		}
	}
	if len(reached) != len(m.Nodes) {
		return fmt.Errorf("%w: %d of %d nodes unreachable from center", ErrBuildFailed, len(m.Nodes)-len(reached), len(m.Nodes))
	}

	return nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
