// Package hierarchy converts between the flat page records stored in
// MongoDB and the nested tree the admin UI edits.
//
// Build materializes the pages of one menu type into a forest; Flatten
// turns a client-edited forest back into flat parent/order assignments.
// Both are pure functions so the store can stay a thin persistence layer.
package hierarchy

import (
	"fmt"
	"sort"

	"github.com/dalemusser/stratacms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resolution records how a node's parent reference was resolved during Build.
type Resolution string

const (
	// Resolved means the node sits where its parent reference points:
	// under its parent, or at the root because it has no parent.
	Resolved Resolution = "resolved"
	// OrphanedToRoot means the node referenced a parent that does not
	// exist in this menu type (deleted, or belonging to another menu) and
	// was promoted to the root so the tree stays renderable. It marks a
	// data-integrity anomaly, not an intended root page.
	OrphanedToRoot Resolution = "orphaned_to_root"
)

// TreeNode is one page in the nested representation.
type TreeNode struct {
	ID         primitive.ObjectID `json:"id"`
	Title      string             `json:"title"`
	Slug       string             `json:"slug,omitempty"`
	Enabled    bool               `json:"enabled"`
	Resolution Resolution         `json:"resolution,omitempty"`
	Children   []*TreeNode        `json:"children"`
}

// Assignment is one flat parent/order update produced by Flatten.
type Assignment struct {
	PageID   primitive.ObjectID
	ParentID *primitive.ObjectID // nil = root
	Order    int                 // 1-based position among siblings
}

// Build materializes the pages of one menu type into a forest.
//
// Pages may arrive in any order. A page whose ParentID is nil becomes a
// root; a page whose parent exists in the same menu type becomes its
// child; a page whose parent is missing, belongs to another menu type,
// or sits on a parent cycle is promoted to a root and flagged
// OrphanedToRoot. Nothing is dropped: the output always contains exactly
// one node per input page.
//
// Siblings are ordered by ascending Order, ties broken by creation time
// so newly created pages (which share the tail of the global counter)
// keep a stable position.
func Build(pages []models.Page, menuTypeID primitive.ObjectID) []*TreeNode {
	scoped := make([]models.Page, 0, len(pages))
	for _, p := range pages {
		if p.MenuTypeID == menuTypeID {
			scoped = append(scoped, p)
		}
	}

	sort.SliceStable(scoped, func(i, j int) bool {
		if scoped[i].Order != scoped[j].Order {
			return scoped[i].Order < scoped[j].Order
		}
		return scoped[i].CreatedAt.Before(scoped[j].CreatedAt)
	})

	// First pass: one node per page, keyed by ID.
	nodes := make(map[primitive.ObjectID]*TreeNode, len(scoped))
	for _, p := range scoped {
		nodes[p.ID] = &TreeNode{
			ID:         p.ID,
			Title:      p.Title,
			Slug:       p.Slug,
			Enabled:    p.Enabled,
			Resolution: Resolved,
			Children:   []*TreeNode{},
		}
	}

	// Second pass: attach each node to its parent, or to the root.
	var roots []*TreeNode
	for _, p := range scoped {
		node := nodes[p.ID]
		if p.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*p.ParentID]
		if !ok {
			// Dangling reference: the parent was deleted or lives in a
			// different menu type. Keep the page visible at the root.
			node.Resolution = OrphanedToRoot
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	// Third pass: a parent cycle in stored data (A under B under A) leaves
	// every member unreachable from any root. Promote one member per cycle
	// so the forest still contains one node per page; the rest of the cycle
	// hangs under it as ordinary children.
	reached := make(map[primitive.ObjectID]bool, len(nodes))
	var mark func(n *TreeNode)
	mark = func(n *TreeNode) {
		if reached[n.ID] {
			return
		}
		reached[n.ID] = true
		for _, c := range n.Children {
			mark(c)
		}
	}
	for _, r := range roots {
		mark(r)
	}
	for _, p := range scoped {
		if reached[p.ID] {
			continue
		}
		node := nodes[p.ID]
		if p.ParentID != nil {
			if parent, ok := nodes[*p.ParentID]; ok {
				parent.Children = detach(parent.Children, node)
			}
		}
		node.Resolution = OrphanedToRoot
		roots = append(roots, node)
		mark(node)
	}

	if roots == nil {
		roots = []*TreeNode{}
	}
	return roots
}

func detach(children []*TreeNode, node *TreeNode) []*TreeNode {
	for i, c := range children {
		if c == node {
			return append(children[:i], children[i+1:]...)
		}
	}
	return children
}

// UnknownPageError reports a tree node whose ID is not in the page set
// the reorder targets. The write is rejected before anything is applied.
type UnknownPageError struct {
	PageID primitive.ObjectID
}

func (e *UnknownPageError) Error() string {
	return fmt.Sprintf("tree references unknown page %s", e.PageID.Hex())
}

// Flatten walks a client-edited forest depth-first and produces the flat
// parent/order assignments that persist it.
//
// At each level siblings are numbered 1..k in array order, and
// each node's parent is its traversal parent (nil at the top level). The
// nested representation cannot express a cycle, so no cycle check is
// needed; what Flatten does verify is that every node ID belongs to
// known (the pages of the menu type being reordered), so a stale or
// hostile payload cannot create dangling writes.
func Flatten(tree []*TreeNode, known map[primitive.ObjectID]struct{}) ([]Assignment, error) {
	assignments := make([]Assignment, 0, len(known))
	if err := flattenLevel(tree, nil, known, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

func flattenLevel(nodes []*TreeNode, parentID *primitive.ObjectID, known map[primitive.ObjectID]struct{}, out *[]Assignment) error {
	order := 0
	for _, n := range nodes {
		// JSON payloads can carry null entries in a children array; skip
		// them without leaving gaps in the sibling numbering.
		if n == nil {
			continue
		}
		if _, ok := known[n.ID]; !ok {
			return &UnknownPageError{PageID: n.ID}
		}
		order++
		*out = append(*out, Assignment{
			PageID:   n.ID,
			ParentID: parentID,
			Order:    order,
		})
		id := n.ID
		if err := flattenLevel(n.Children, &id, known, out); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the total number of nodes in a forest.
func Count(tree []*TreeNode) int {
	total := 0
	for _, n := range tree {
		if n == nil {
			continue
		}
		total += 1 + Count(n.Children)
	}
	return total
}
