package srclang

import (
	"fmt"

	"github.com/dekarrin/ddreduce/internal/rderrors"
)

// Parser is a recursive-descent parser over a Lexer's token stream.
type Parser struct {
	lex  *Lexer
	cur  Token
	prev Token
}

// Parse parses the given source text into a File. It fails with a
// rderrors.KindSyntaxParse error when the input is not syntactically valid.
// spec §4.1 notes the reducer assumes a syntactically valid starting file
// even though it fails to *compile*.
func Parse(text string) (*File, error) {
	p := &Parser{lex: NewLexer(text)}
	p.advance()

	f := &File{}
	if p.cur.Kind == TokShebang {
		f.Shebang = p.cur.Text
		p.advance()
	}

	for p.cur.Kind == TokAttr {
		f.Attrs = append(f.Attrs, p.cur.Text)
		p.advance()
	}

	for p.cur.Kind != TokEOF {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		f.Items = append(f.Items, item)
	}

	return f, nil
}

func (p *Parser) advance() {
	p.prev = p.cur
	p.cur = p.lex.Next()
}

func (p *Parser) errorf(format string, a ...interface{}) error {
	msg := fmt.Sprintf(format, a...)
	return rderrors.Newf(rderrors.KindSyntaxParse, "%d:%d: %s", p.cur.Line, p.cur.Col, msg)
}

func (p *Parser) expect(k TokKind, what string) (Token, error) {
	if p.cur.Kind != k {
		return Token{}, p.errorf("expected %s, found %q", what, p.cur.Text)
	}
	tok := p.cur
	p.advance()
	return tok, nil
}

func (p *Parser) parseItem() (*Item, error) {
	it := &Item{}
	for p.cur.Kind == TokAttr {
		it.Attrs = append(it.Attrs, p.cur.Text)
		p.advance()
	}

	switch p.cur.Kind {
	case TokKwFn:
		fn, err := p.parseFnItem()
		if err != nil {
			return nil, err
		}
		it.Fn = fn
	default:
		return nil, p.errorf("expected an item (fn), found %q", p.cur.Text)
	}

	return it, nil
}

func (p *Parser) parseFnItem() (*FnItem, error) {
	if _, err := p.expect(TokKwFn, "'fn'"); err != nil {
		return nil, err
	}
	name, err := p.expect(TokIdent, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLParen, "'('"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FnItem{Name: name.Text, Body: body}, nil
}

func (p *Parser) parseBlock() (*Block, error) {
	if _, err := p.expect(TokLBrace, "'{'"); err != nil {
		return nil, err
	}

	b := &Block{}
	for p.cur.Kind != TokRBrace {
		if p.cur.Kind == TokEOF {
			return nil, p.errorf("unexpected end of input inside block")
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, stmt)
	}

	if _, err := p.expect(TokRBrace, "'}'"); err != nil {
		return nil, err
	}
	return b, nil
}

func (p *Parser) parseStmt() (Stmt, error) {
	if p.cur.Kind == TokKwLet {
		return p.parseLocalStmt()
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokSemi, "';'"); err != nil {
		return nil, err
	}
	return ExprStmt{Expr: expr}, nil
}

// parseLocalStmt parses `let name;` or `let name = expr;`. This differs from
// parseLetExpr (which parses `let name = expr` with no trailing semicolon,
// used when `let` appears in expression position).
func (p *Parser) parseLocalStmt() (Stmt, error) {
	if _, err := p.expect(TokKwLet, "'let'"); err != nil {
		return nil, err
	}
	name, err := p.expect(TokIdent, "binding name")
	if err != nil {
		return nil, err
	}

	stmt := LocalStmt{Name: name.Text}
	if p.cur.Kind == TokEq {
		p.advance()
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Value = val
	}

	if _, err := p.expect(TokSemi, "';'"); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseExpr() (Expr, error) {
	switch p.cur.Kind {
	case TokLBracket:
		return p.parseArrayExpr()
	case TokKwLet:
		return p.parseLetExpr()
	case TokIdent:
		name := p.cur.Text
		p.advance()
		if p.cur.Kind == TokEq {
			p.advance()
			val, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return AssignExpr{Name: name, Value: val}, nil
		}
		return Ident{Name: name}, nil
	case TokInt:
		text := p.cur.Text
		p.advance()
		return IntLit{Text: text}, nil
	default:
		return nil, p.errorf("expected an expression, found %q", p.cur.Text)
	}
}

func (p *Parser) parseArrayExpr() (Expr, error) {
	if _, err := p.expect(TokLBracket, "'['"); err != nil {
		return nil, err
	}
	arr := ArrayExpr{}
	for p.cur.Kind != TokRBracket {
		el, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		arr.Elems = append(arr.Elems, el)
		if p.cur.Kind == TokComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokRBracket, "']'"); err != nil {
		return nil, err
	}
	return arr, nil
}

func (p *Parser) parseLetExpr() (Expr, error) {
	if _, err := p.expect(TokKwLet, "'let'"); err != nil {
		return nil, err
	}
	name, err := p.expect(TokIdent, "binding name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokEq, "'='"); err != nil {
		return nil, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return LetExpr{Name: name.Text, Value: val}, nil
}
