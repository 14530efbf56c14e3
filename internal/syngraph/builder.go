package syngraph

import "github.com/dekarrin/ddreduce/internal/srclang"

// Build walks f in a single depth-first pass and returns the syntax graph
// rooted at f, mirroring the teacher's visit-and-insert walk over a
// translation tree (DESIGN.md). Only the node kinds named in spec §3 become
// vertices; everything else (Idents, IntLits, attributes, raw statement
// text) is untracked syntax that rides along inside the payload of its
// nearest tracked ancestor and is therefore immune to the searcher's
// candidate removals.
func Build(f *srclang.File) (*Graph, error) {
	g := New()
	rootID := g.AddVertex(KindSourceRoot, f, NoParent)

	for _, item := range f.Items {
		buildItem(g, item, rootID)
	}

	return g, nil
}

func buildItem(g *Graph, item *srclang.Item, parent VertexID) {
	id := g.AddVertex(KindItem, item, parent)
	if item.Fn != nil {
		buildFnItem(g, item.Fn, id)
	}
}

func buildFnItem(g *Graph, fn *srclang.FnItem, parent VertexID) {
	id := g.AddVertex(KindFunctionItem, fn, parent)
	if fn.Body != nil {
		buildBlock(g, fn.Body, id)
	}
}

func buildBlock(g *Graph, b *srclang.Block, parent VertexID) {
	id := g.AddVertex(KindBlock, b, parent)
	for _, stmt := range b.Stmts {
		buildStmt(g, stmt, id)
	}
}

// buildStmt tracks a statement as a vertex only when it is one of the
// kinds named in spec §3. A bare expression statement wrapping an untracked
// expression (an Ident or IntLit used directly as a statement) produces no
// vertex at all: it is syntactically legal per the grammar but has no
// tracked shape, so it rides along inside the enclosing Block's payload and
// is silently absent from the graph's view of the block's statement list.
func buildStmt(g *Graph, stmt srclang.Stmt, parent VertexID) {
	switch s := stmt.(type) {
	case srclang.LocalStmt:
		g.AddVertex(KindLocalStatement, s, parent)
	case srclang.ExprStmt:
		buildExprStmt(g, s, parent)
	}
}

func buildExprStmt(g *Graph, s srclang.ExprStmt, parent VertexID) {
	switch e := s.Expr.(type) {
	case srclang.ArrayExpr:
		g.AddVertex(KindArrayExpression, e, parent)
	case srclang.AssignExpr:
		g.AddVertex(KindAssignExpression, e, parent)
	case srclang.LetExpr:
		g.AddVertex(KindLetExpression, e, parent)
	}
}
