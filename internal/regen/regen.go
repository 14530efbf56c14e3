// Package regen reconstructs source text from a (possibly pruned) syntax
// graph: the reverse-BFS post-order regeneration of spec §4.4. Reduction
// candidates are built by removing vertices from a cloned graph and then
// calling Generate to turn what remains back into compilable-looking source
// text for the oracle to try.
package regen

import (
	"github.com/dekarrin/ddreduce/internal/rderrors"
	"github.com/dekarrin/ddreduce/internal/srclang"
	"github.com/dekarrin/ddreduce/internal/syngraph"
)

// Generate walks g from the leaves to the root (processing every vertex's
// children before the vertex itself, by visiting a reverse breadth-first
// traversal from the root) and reassembles source text. Each tracked kind
// materializes into the srclang node shape its payload holds; children
// lists are read from surviving graph edges in their original order, never
// from the original parse tree, so removed subtrees leave no trace in the
// output.
func Generate(g *syngraph.Graph) (string, error) {
	order := g.BFSFromRoot()
	if len(order) == 0 {
		return "", nil
	}

	built := make(map[syngraph.VertexID]interface{}, len(order))

	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		v, _ := g.Vertex(id)

		val, err := materialize(g, v, built)
		if err != nil {
			return "", err
		}
		built[id] = val
	}

	file, ok := built[g.Root()].(*srclang.File)
	if !ok {
		return "", rderrors.MismatchedShape("SourceRoot")
	}
	return file.Emit(), nil
}

func materialize(g *syngraph.Graph, v *syngraph.Vertex, built map[syngraph.VertexID]interface{}) (interface{}, error) {
	switch v.Kind {
	case syngraph.KindLocalStatement, syngraph.KindArrayExpression,
		syngraph.KindAssignExpression, syngraph.KindLetExpression:
		// These kinds never gain tracked children (spec §4.2): the builder
		// only tracks statement-position nodes, not the expressions nested
		// within them. Their payload is reused verbatim.
		return v.Payload, nil

	case syngraph.KindBlock:
		orig, ok := v.Payload.(*srclang.Block)
		if !ok {
			return nil, rderrors.MismatchedShape("Block")
		}
		blk := &srclang.Block{}
		for _, cid := range v.Children {
			cv, _ := g.Vertex(cid)
			stmt, err := coerceStmt(cv.Kind, built[cid])
			if err != nil {
				return nil, err
			}
			blk.Stmts = append(blk.Stmts, stmt)
		}
		_ = orig
		return blk, nil

	case syngraph.KindFunctionItem:
		orig, ok := v.Payload.(*srclang.FnItem)
		if !ok {
			return nil, rderrors.MismatchedShape("FunctionItem")
		}
		fn := &srclang.FnItem{Name: orig.Name}
		if bid, found := firstChildOfKind(g, v, syngraph.KindBlock); found {
			blk, ok := built[bid].(*srclang.Block)
			if !ok {
				return nil, rderrors.MismatchedShape("FunctionItem")
			}
			fn.Body = blk
		} else {
			// No surviving Block child: the function loses its body and
			// regenerates as an empty one rather than failing (spec §4.4
			// empty-block substitution rule).
			fn.Body = &srclang.Block{}
		}
		return fn, nil

	case syngraph.KindItem:
		orig, ok := v.Payload.(*srclang.Item)
		if !ok {
			return nil, rderrors.MismatchedShape("Item")
		}
		fid, found := firstChildOfKind(g, v, syngraph.KindFunctionItem)
		if !found {
			return nil, rderrors.MismatchedShape("Item")
		}
		fn, ok := built[fid].(*srclang.FnItem)
		if !ok {
			return nil, rderrors.MismatchedShape("Item")
		}
		return &srclang.Item{Attrs: orig.Attrs, Fn: fn}, nil

	case syngraph.KindSourceRoot:
		orig, ok := v.Payload.(*srclang.File)
		if !ok {
			return nil, rderrors.MismatchedShape("SourceRoot")
		}
		// The shebang, if any, is intentionally never re-emitted: spec §4.4
		// treats it as original-file trivia outside the tracked grammar.
		file := &srclang.File{Attrs: orig.Attrs}
		for _, cid := range v.Children {
			cv, _ := g.Vertex(cid)
			if cv.Kind != syngraph.KindItem {
				return nil, rderrors.MismatchedShape("SourceRoot")
			}
			it, ok := built[cid].(*srclang.Item)
			if !ok {
				return nil, rderrors.MismatchedShape("SourceRoot")
			}
			file.Items = append(file.Items, it)
		}
		// No surviving Items: spec §4.4 tolerates regenerating to an empty
		// file rather than failing.
		return file, nil

	default:
		return nil, rderrors.MismatchedShape(v.Kind.String())
	}
}

// coerceStmt implements the statement-position coercion rules of spec
// §4.4: a Block's children are materialized values, but only LocalStatement
// already has Stmt shape. The three expression kinds that can occupy
// statement position are wrapped in an ExprStmt; anything else is a
// MismatchedShape failure.
func coerceStmt(kind syngraph.Kind, val interface{}) (srclang.Stmt, error) {
	switch kind {
	case syngraph.KindLocalStatement:
		stmt, ok := val.(srclang.LocalStmt)
		if !ok {
			return nil, rderrors.MismatchedShape("LocalStatement")
		}
		return stmt, nil
	case syngraph.KindArrayExpression:
		expr, ok := val.(srclang.ArrayExpr)
		if !ok {
			return nil, rderrors.MismatchedShape("ArrayExpression")
		}
		return srclang.ExprStmt{Expr: expr}, nil
	case syngraph.KindAssignExpression:
		expr, ok := val.(srclang.AssignExpr)
		if !ok {
			return nil, rderrors.MismatchedShape("AssignExpression")
		}
		return srclang.ExprStmt{Expr: expr}, nil
	case syngraph.KindLetExpression:
		expr, ok := val.(srclang.LetExpr)
		if !ok {
			return nil, rderrors.MismatchedShape("LetExpression")
		}
		return srclang.ExprStmt{Expr: expr}, nil
	default:
		return nil, rderrors.MismatchedShape(kind.String())
	}
}

func firstChildOfKind(g *syngraph.Graph, v *syngraph.Vertex, kind syngraph.Kind) (syngraph.VertexID, bool) {
	for _, cid := range v.Children {
		if cv, ok := g.Vertex(cid); ok && cv.Kind == kind {
			return cid, true
		}
	}
	return 0, false
}
