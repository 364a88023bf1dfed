package joinspec

import (
	"strings"
	"unicode"

	uuid "github.com/satori/go.uuid"

	"github.com/kvrowdb/joinengine/kv"
)

// ColumnDecl declares one identifier the join spec may reference: its name,
// the row type it must resolve to, and the caller-supplied table handle
// bound to it by position in this slice. TypeMismatch is raised if
// Table.RowType() doesn't match Declared.
type ColumnDecl struct {
	Name     string
	Declared kv.RowType
	Table    kv.Table
}

// Spec is a parsed (but not yet planned) join specification.
type Spec struct {
	Root  Node
	Decls []ColumnDecl
}

// Parse parses text against the grammar in §4.A:
//
//	JoinOp ::= Source { Type Source }
//	Source ::= Column | "(" JoinOp ")"
//	Column ::= identifier
//	Type   ::= ":" | "::" | ">:" | ":<" | ">:<" | ">" | "<" | "><"
func Parse(text string, decls []ColumnDecl) (*Spec, error) {
	byName := make(map[string]ColumnDecl, len(decls))
	for _, d := range decls {
		byName[d.Name] = d
	}
	p := &specParser{toks: tokenizeSpec(text), byName: byName}
	root, err := p.parseJoinOp()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, kv.ErrSpecSyntax.New("unexpected trailing input at " + p.toks[p.pos])
	}

	root, err = wrapFullJoins(root)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	for _, c := range Columns(root) {
		if seen[c.Name] {
			return nil, kv.ErrDuplicateColumn.New(c.Name)
		}
		seen[c.Name] = true
	}

	return &Spec{Root: root, Decls: decls}, nil
}

// wrapFullJoins walks the parsed tree bottom-up and wraps every JoinOp whose
// type is FullOuter/FullAnti in a FullJoin with a fresh unique ordinal name,
// so the driver can later address the entire split-union subtree by one
// Source name (§4.A).
func wrapFullJoins(n Node) (Node, error) {
	return Transform(n, func(n Node) (Node, error) {
		j, ok := n.(*JoinOp)
		if !ok || !j.Type.IsFull() {
			return n, nil
		}
		return &FullJoin{Op: j, Ordinal: "full_join_" + uuid.NewV4().String()}, nil
	})
}

type specTok struct {
	text   string
	isType bool
}

var typeTokens = map[string]Type{
	">:<": FullOuter,
	"><":  FullAnti,
	">:":  LeftOuter,
	":<":  RightOuter,
	"::":  Straight,
	":":   Inner,
	">":   LeftAnti,
	"<":   RightAnti,
}

func tokenizeSpec(text string) []specTok {
	var toks []specTok
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		c := runes[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '(' || c == ')':
			toks = append(toks, specTok{text: string(c)})
			i++
		case strings.ContainsRune(":<>", c):
			j := i + 1
			for j < len(runes) && strings.ContainsRune(":<>", runes[j]) {
				j++
			}
			toks = append(toks, specTok{text: string(runes[i:j]), isType: true})
			i = j
		default:
			j := i
			for j < len(runes) && !unicode.IsSpace(runes[j]) && runes[j] != '(' && runes[j] != ')' && !strings.ContainsRune(":<>", runes[j]) {
				j++
			}
			if j == i {
				j++
			}
			toks = append(toks, specTok{text: string(runes[i:j])})
			i = j
		}
	}
	return toks
}

type specParser struct {
	toks   []specTok
	pos    int
	byName map[string]ColumnDecl
}

func (p *specParser) peek() (specTok, bool) {
	if p.pos < len(p.toks) {
		return p.toks[p.pos], true
	}
	return specTok{}, false
}

func (p *specParser) next() (specTok, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

// parseJoinOp parses a flat Source { Type Source } chain at one nesting
// level, then folds maximal runs of consecutive Inner-typed links into
// InnerJoins groups before combining the remaining segments left-to-right
// (§4.A: "collapses consecutive inner joins ... left-associative would work
// too").
func (p *specParser) parseJoinOp() (Node, error) {
	first, err := p.parseSource()
	if err != nil {
		return nil, err
	}
	sources := []Node{first}
	var types []Type

	for {
		tok, ok := p.peek()
		if !ok || !tok.isType {
			break
		}
		t, known := typeTokens[tok.text]
		if !known {
			return nil, kv.ErrSpecSyntax.New("unknown operator " + tok.text)
		}
		p.next()
		src, err := p.parseSource()
		if err != nil {
			return nil, err
		}
		types = append(types, t)
		sources = append(sources, src)
	}

	return foldChain(sources, types), nil
}

func foldChain(sources []Node, types []Type) Node {
	var segments []Node
	var ops []Type

	run := []Node{sources[0]}
	for i, t := range types {
		if t == Inner {
			run = append(run, sources[i+1])
			continue
		}
		segments = append(segments, foldRun(run))
		ops = append(ops, t)
		run = []Node{sources[i+1]}
	}
	segments = append(segments, foldRun(run))

	result := segments[0]
	for i, t := range ops {
		result = &JoinOp{Left: result, Right: segments[i+1], Type: t}
	}
	return result
}

func foldRun(run []Node) Node {
	if len(run) == 1 {
		return run[0]
	}
	return &InnerJoins{Children: run}
}

func (p *specParser) parseSource() (Node, error) {
	tok, ok := p.next()
	if !ok {
		return nil, kv.ErrSpecSyntax.New("unexpected end of input")
	}
	if tok.text == "(" {
		inner, err := p.parseJoinOp()
		if err != nil {
			return nil, err
		}
		close, ok := p.next()
		if !ok || close.text != ")" {
			return nil, kv.ErrSpecSyntax.New("unmatched parenthesis")
		}
		return inner, nil
	}
	if tok.isType || tok.text == ")" {
		return nil, kv.ErrSpecSyntax.New("expected column, got " + tok.text)
	}
	decl, ok := p.byName[tok.text]
	if !ok {
		return nil, kv.ErrUnknownColumn.New(tok.text)
	}
	if decl.Table.RowType().Name() != decl.Declared.Name() {
		return nil, kv.ErrTypeMismatch.New(tok.text, decl.Table.RowType().Name(), decl.Declared.Name())
	}
	return &Column{Name: tok.text, Table: decl.Table}, nil
}
