package markup

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrNodeNotFound = errors.New("node not found")
	ErrDuplicateID  = errors.New("duplicate node id")
	ErrCycle        = errors.New("node cannot be moved into its own subtree")
)

// The functions below treat a tree as immutable: every edit returns a new root list in which
// only the nodes on the path to the change are copied. Untouched subtrees are shared with the
// input.

// Location is the position of a node in a tree.
type Location struct {
	Node   *Node
	Parent *Node // nil for roots
	Index  int   // index in Parent.Children, or in the root list
}

// FindWithParent looks up the node with the given id.
func FindWithParent(roots []*Node, id string) (Location, bool) {
	return find(roots, nil, id)
}

func find(nodes []*Node, parent *Node, id string) (Location, bool) {
	for i, n := range nodes {
		if n == nil {
			continue
		}
		if n.ID == id {
			return Location{Node: n, Parent: parent, Index: i}, true
		}
		if loc, ok := find(n.Children, n, id); ok {
			return loc, true
		}
	}
	return Location{}, false
}

// Path returns the ids of the ancestors of the node, root first. The node itself is not
// included.
func Path(roots []*Node, id string) ([]string, bool) {
	var path []string
	var walk func(nodes []*Node) bool
	walk = func(nodes []*Node) bool {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			if n.ID == id {
				return true
			}
			path = append(path, n.ID)
			if walk(n.Children) {
				return true
			}
			path = path[:len(path)-1]
		}
		return false
	}
	if !walk(roots) {
		return nil, false
	}
	if path == nil {
		path = []string{}
	}
	return path, true
}

// IsDescendant reports whether descendantID is in the subtree below ancestorID. A node is not
// its own descendant.
func IsDescendant(roots []*Node, ancestorID, descendantID string) bool {
	loc, ok := FindWithParent(roots, ancestorID)
	if !ok {
		return false
	}
	_, ok = find(loc.Node.Children, loc.Node, descendantID)
	return ok
}

// Remove detaches the node with the given id. If there is no such node, roots is returned
// unchanged with a nil node.
func Remove(roots []*Node, id string) ([]*Node, *Node) {
	loc, ok := FindWithParent(roots, id)
	if !ok {
		return roots, nil
	}
	parentID := ""
	if loc.Parent != nil {
		parentID = loc.Parent.ID
	}
	out, _ := editChildren(roots, parentID, func(children []*Node) []*Node {
		return slices.Delete(slices.Clone(children), loc.Index, loc.Index+1)
	})
	return out, loc.Node
}

// Insert adds node as a child of parentID at index. An empty parentID inserts at the root level.
// An index out of range appends. The ids in the subtree of node must not exist in roots.
func Insert(roots []*Node, node *Node, parentID string, index int) ([]*Node, error) {
	if node == nil {
		return roots, fmt.Errorf("insert: nil node")
	}
	ids := make(map[string]struct{})
	Walk(roots, func(n *Node) bool {
		ids[n.ID] = struct{}{}
		return true
	})
	var dup string
	Walk([]*Node{node}, func(n *Node) bool {
		if _, ok := ids[n.ID]; ok && dup == "" {
			dup = n.ID
		}
		return dup == ""
	})
	if dup != "" {
		return roots, fmt.Errorf("insert %q: %w", dup, ErrDuplicateID)
	}
	return insert(roots, node, parentID, index)
}

func insert(roots []*Node, node *Node, parentID string, index int) ([]*Node, error) {
	out, ok := editChildren(roots, parentID, func(children []*Node) []*Node {
		if index < 0 || index > len(children) {
			index = len(children)
		}
		return slices.Insert(slices.Clone(children), index, node)
	})
	if !ok {
		return roots, fmt.Errorf("insert into %q: %w", parentID, ErrNodeNotFound)
	}
	return out, nil
}

// Move reparents the node with the given id under newParentID at index. The index refers to the
// children of the new parent after the node has been detached.
func Move(roots []*Node, id, newParentID string, index int) ([]*Node, error) {
	if _, ok := FindWithParent(roots, id); !ok {
		return roots, fmt.Errorf("move %q: %w", id, ErrNodeNotFound)
	}
	if newParentID != "" {
		if _, ok := FindWithParent(roots, newParentID); !ok {
			return roots, fmt.Errorf("move into %q: %w", newParentID, ErrNodeNotFound)
		}
		if newParentID == id || IsDescendant(roots, id, newParentID) {
			return roots, fmt.Errorf("move %q into %q: %w", id, newParentID, ErrCycle)
		}
	}
	out, n := Remove(roots, id)
	return insert(out, n, newParentID, index)
}

// SetAttr sets the attribute key of the node with the given id.
func SetAttr(roots []*Node, id, key string, v Value) ([]*Node, error) {
	out, ok := editNode(roots, id, func(n *Node) *Node {
		c := *n
		c.Attr = n.Attr.clone()
		c.Attr.Set(key, v)
		return &c
	})
	if !ok {
		return roots, fmt.Errorf("set attribute %q on %q: %w", key, id, ErrNodeNotFound)
	}
	return out, nil
}

// DeleteAttr removes the attribute key of the node with the given id. Deleting a missing
// attribute is not an error.
func DeleteAttr(roots []*Node, id, key string) ([]*Node, error) {
	out, ok := editNode(roots, id, func(n *Node) *Node {
		c := *n
		c.Attr = n.Attr.clone()
		c.Attr.Delete(key)
		return &c
	})
	if !ok {
		return roots, fmt.Errorf("delete attribute %q on %q: %w", key, id, ErrNodeNotFound)
	}
	return out, nil
}

// Walk visits the nodes in pre-order. If fn returns false, the children of that node are
// skipped.
func Walk(nodes []*Node, fn func(n *Node) bool) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if fn(n) {
			Walk(n.Children, fn)
		}
	}
}

// Count returns the number of nodes in the tree.
func Count(nodes []*Node) int {
	c := 0
	Walk(nodes, func(*Node) bool {
		c++
		return true
	})
	return c
}

// Clone returns a deep copy of the tree. Values are immutable and shared.
func Clone(nodes []*Node) []*Node {
	if nodes == nil {
		return nil
	}
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		if n == nil {
			continue
		}
		c := *n
		c.Attr = n.Attr.clone()
		c.Children = Clone(n.Children)
		out[i] = &c
	}
	return out
}

// editNode returns a copy of nodes in which the node with the given id is replaced by fn(node).
// Ancestors of the node are copied, everything else is shared.
func editNode(nodes []*Node, id string, fn func(*Node) *Node) ([]*Node, bool) {
	for i, n := range nodes {
		if n == nil {
			continue
		}
		var repl *Node
		if n.ID == id {
			repl = fn(n)
		} else if children, ok := editNode(n.Children, id, fn); ok {
			c := *n
			c.Children = children
			repl = &c
		} else {
			continue
		}
		out := slices.Clone(nodes)
		out[i] = repl
		return out, true
	}
	return nodes, false
}

// editChildren replaces the child list of parentID (or the root list if parentID is empty) with
// fn(children). fn must not modify its argument.
func editChildren(roots []*Node, parentID string, fn func([]*Node) []*Node) ([]*Node, bool) {
	if parentID == "" {
		return fn(roots), true
	}
	return editNode(roots, parentID, func(n *Node) *Node {
		c := *n
		c.Children = fn(n.Children)
		return &c
	})
}
