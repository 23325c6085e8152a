// Package hierarchy assembles flat, parent-referencing records into the
// fixed three-level trees used by the section outline and the plan.
package hierarchy

import (
	"fmt"
	"sort"
)

// MaxLevel is the deepest level a node may have.
const MaxLevel = 3

// Record is a flat node as stored: it knows its own id, its parent's id
// ("" for top-level nodes), its level and its position among siblings.
type Record interface {
	NodeID() string
	NodeParentID() string
	NodeLevel() int
	NodeSortOrder() int
}

// Node is one assembled tree node.
type Node[T Record] struct {
	Item     T
	Children []*Node[T]
}

// Level returns the level of the wrapped record.
func (n *Node[T]) Level() int {
	return n.Item.NodeLevel()
}

// Build partitions flat by level and attaches level-3 nodes to their level-2
// parents and level-2 nodes to their level-1 parents. It returns the level-1
// nodes ordered by sort order. Nodes whose parent is not present at the
// level above, and nodes outside levels 1..3, are omitted.
func Build[T Record](flat []T) []*Node[T] {
	var byLevel [MaxLevel + 1][]*Node[T]
	for _, r := range flat {
		lvl := r.NodeLevel()
		if lvl < 1 || lvl > MaxLevel {
			continue
		}
		byLevel[lvl] = append(byLevel[lvl], &Node[T]{Item: r})
	}

	for lvl := MaxLevel; lvl > 1; lvl-- {
		children := make(map[string][]*Node[T])
		for _, n := range byLevel[lvl] {
			pid := n.Item.NodeParentID()
			children[pid] = append(children[pid], n)
		}
		for _, p := range byLevel[lvl-1] {
			kids := children[p.Item.NodeID()]
			sortNodes(kids)
			p.Children = kids
		}
	}

	roots := byLevel[1]
	sortNodes(roots)
	return roots
}

func sortNodes[T Record](nodes []*Node[T]) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Item.NodeSortOrder() < nodes[j].Item.NodeSortOrder()
	})
}

// Walk visits every node in depth-first pre-order using an explicit stack.
// depth is 0 for roots. Returning false from fn skips that node's subtree.
func Walk[T Record](roots []*Node[T], fn func(n *Node[T], depth int) bool) {
	type frame struct {
		node  *Node[T]
		depth int
	}
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{roots[i], 0})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.node, f.depth) {
			continue
		}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], f.depth + 1})
		}
	}
}

// Find returns the node with the given id, or nil.
func Find[T Record](roots []*Node[T], id string) *Node[T] {
	var found *Node[T]
	Walk(roots, func(n *Node[T], _ int) bool {
		if found != nil {
			return false
		}
		if n.Item.NodeID() == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes reachable from roots.
func Count[T Record](roots []*Node[T]) int {
	total := 0
	Walk(roots, func(*Node[T], int) bool {
		total++
		return true
	})
	return total
}

// Descendants returns the ids of every node below id, or nil if id is not in
// the tree.
func Descendants[T Record](roots []*Node[T], id string) []string {
	n := Find(roots, id)
	if n == nil {
		return nil
	}
	var ids []string
	Walk(n.Children, func(c *Node[T], _ int) bool {
		ids = append(ids, c.Item.NodeID())
		return true
	})
	return ids
}

// Validate checks the level invariant: roots are level 1, every child is
// exactly one level below its parent, and nothing exceeds MaxLevel.
func Validate[T Record](roots []*Node[T]) error {
	for _, r := range roots {
		if r.Level() != 1 {
			return fmt.Errorf("hierarchy: root %s has level %d", r.Item.NodeID(), r.Level())
		}
	}
	var err error
	Walk(roots, func(n *Node[T], _ int) bool {
		if err != nil {
			return false
		}
		if n.Level() > MaxLevel {
			err = fmt.Errorf("hierarchy: node %s exceeds max level %d", n.Item.NodeID(), MaxLevel)
			return false
		}
		for _, c := range n.Children {
			if c.Level() != n.Level()+1 {
				err = fmt.Errorf("hierarchy: child %s has level %d under %s at level %d",
					c.Item.NodeID(), c.Level(), n.Item.NodeID(), n.Level())
				return false
			}
		}
		return true
	})
	return err
}
