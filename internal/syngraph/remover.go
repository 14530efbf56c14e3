package syngraph

import "github.com/dekarrin/ddreduce/internal/rderrors"

// ErrRemoveRoot is returned by Remove when asked to remove the graph's root
// vertex, which would leave no component reachable from Root (spec §3
// invariant 2 forbids this).
var ErrRemoveRoot = rderrors.New(rderrors.KindRemoveRoot, "cannot remove the root vertex")

// Remove deletes the subtree rooted at id from g in place: the BFS removal
// of spec §4.3. It detaches id from its parent's child list, then walks the
// subtree via BFS, deleting every vertex it reaches. The returned set holds
// the IDs of every vertex removed, including id itself, for the searcher's
// skip-set bookkeeping.
func Remove(g *Graph, id VertexID) (map[VertexID]bool, error) {
	v, ok := g.Vertex(id)
	if !ok {
		return nil, rderrors.Newf(rderrors.KindRemoveRoot, "no such vertex: %d", id)
	}
	if v.Parent == NoParent {
		return nil, ErrRemoveRoot
	}

	subtree := g.BFSFrom(id)
	removed := make(map[VertexID]bool, len(subtree))
	for _, sid := range subtree {
		removed[sid] = true
	}

	g.removeEdge(v.Parent, id)
	for _, sid := range subtree {
		g.deleteVertex(sid)
	}

	return removed, nil
}
