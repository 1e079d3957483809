/*
 * Copyright 2026 The PRQL-Go Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// parser.go is a recursive-descent parser from PRQL tokens to the ast.go
// node types.
//
// Precedence, low to high (spec.md §4.1):
//
//	pipeline (|)
//	or
//	and
//	equality (== != < <= > >=)
//	coalesce (??)
//	range (..)
//	additive (+ -)
//	multiplicative (* / %)
//	unary (+ - !)
//	application (juxtaposition: f a b)
//	member access (.)
//
// Pipeline stages whose head names a known stdlib transform (from, select,
// filter, ...) are parsed with bespoke argument grammars, matching that
// transform's fixed arity, hand-rolling one parse function per clause
// instead of a single generic rule. Any
// other head falls back to generic greedy application, since a user-defined
// function's arity isn't known until resolution.
package ast

import (
	"fmt"
	"strings"
)

// Parser builds an AST from PRQL source.
type Parser struct {
	lex    Lexer
	source string

	cur  Token
	peek Token

	errors []*Error
}

// NewParser creates a Parser over the given PRQL source.
func NewParser(source string) *Parser {
	p := &Parser{lex: NewLexer(source), source: source}
	p.advance()
	p.advance()
	return p
}

// Errors returns every parse error accumulated so far.
func (p *Parser) Errors() []*Error { return p.errors }

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

func (p *Parser) errorf(span Span, format string, args ...interface{}) {
	p.errors = append(p.errors, NewError(ParseError, fmt.Sprintf(format, args...), p.source, span))
}

func (p *Parser) fatalf(span Span, format string, args ...interface{}) *Error {
	e := NewError(ParseError, fmt.Sprintf(format, args...), p.source, span)
	p.errors = append(p.errors, e)
	return e
}

func (p *Parser) skipNewlines() {
	for p.cur.Type == NEWLINE {
		p.advance()
	}
}

func (p *Parser) expect(t TokenType) (Token, bool) {
	if p.cur.Type != t {
		p.errorf(p.cur.Span(), "expected %s, got %s %q", t, p.cur.Type, p.cur.Literal)
		return p.cur, false
	}
	tok := p.cur
	p.advance()
	return tok, true
}

// ParseProgram parses an entire source file into its statements. It never
// panics: every failure is recorded in Errors() and parsing resynchronizes
// at the next statement boundary.
func (p *Parser) ParseProgram() []Stmt {
	var stmts []Stmt
	p.skipNewlines()
	for p.cur.Type != EOF {
		start := len(p.errors)
		stmt := p.parseStmt()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if len(p.errors) > start {
			p.resync()
		}
		p.skipNewlines()
	}
	return stmts
}

// resync advances to the next NEWLINE/EOF after a parse error so one bad
// statement doesn't cascade into spurious errors for the rest of the file.
func (p *Parser) resync() {
	for p.cur.Type != NEWLINE && p.cur.Type != EOF {
		p.advance()
	}
}

func (p *Parser) parseStmt() Stmt {
	switch p.cur.Type {
	case PRQL:
		return p.parsePrologue()
	case FUNC:
		return p.parseFuncDef()
	case TABLE:
		return p.parseTableDef()
	default:
		start := p.cur.Span()
		x := p.parseExpr()
		return &ExprStmt{base: base{S: joinSpan(start, p.lastSpan())}, X: x}
	}
}

func (p *Parser) lastSpan() Span { return Span{Start: p.cur.Start, End: p.cur.Start} }

func joinSpan(a, b Span) Span {
	s := a
	if b.End > s.End {
		s.End = b.End
	}
	return s
}

// parsePrologue parses `prql dialect:name version:"1.2"`.
func (p *Parser) parsePrologue() Stmt {
	start := p.cur.Span()
	p.advance() // consume "prql"
	pr := &Prologue{base: base{S: start}}
	for p.cur.Type == IDENT {
		name := p.cur.Literal
		p.advance()
		if _, ok := p.expect(COLON); !ok {
			break
		}
		val := p.parseNamedValueLiteral()
		switch name {
		case "dialect":
			pr.Dialect = val
		case "version":
			pr.Version = val
		default:
			p.errorf(start, "unknown prql option %q", name)
		}
	}
	pr.S = joinSpan(start, p.lastSpan())
	return pr
}

func (p *Parser) parseNamedValueLiteral() string {
	switch p.cur.Type {
	case STRING:
		v := p.cur.Literal
		p.advance()
		return v
	case IDENT, NUMBER:
		v := p.cur.Literal
		p.advance()
		return v
	default:
		p.errorf(p.cur.Span(), "expected a value, got %s", p.cur.Type)
		return ""
	}
}

// parseFuncDef parses `func name p1 p2 p3:default -> body`.
func (p *Parser) parseFuncDef() Stmt {
	start := p.cur.Span()
	p.advance() // consume "func"
	nameTok, _ := p.expect(IDENT)
	fd := &FuncDef{base: base{S: start}, Name: nameTok.Literal}

	for p.cur.Type == IDENT {
		pname := p.cur.Literal
		p.advance()
		var def Expr
		if p.cur.Type == COLON {
			p.advance()
			def = p.parseApplicationTerm()
		}
		fd.Params = append(fd.Params, Param{Name: pname, Default: def})
	}

	if _, ok := p.expect(ARROW); !ok {
		return fd
	}
	fd.Body = p.parseExpr()
	fd.S = joinSpan(start, fd.Body.Span())
	return fd
}

// parseTableDef parses `table name = ( pipeline )`.
func (p *Parser) parseTableDef() Stmt {
	start := p.cur.Span()
	p.advance() // consume "table"
	nameTok, _ := p.expect(IDENT)
	td := &TableDef{base: base{S: start}, Name: nameTok.Literal}
	if _, ok := p.expect(ASSIGN); !ok {
		return td
	}
	td.Body = p.parseExpr()
	td.S = joinSpan(start, td.Body.Span())
	return td
}

// ---- expressions, precedence climbing ----

// parseExpr is the single entry point used anywhere an expression is
// expected: pipeline stage arguments, table/func bodies, list items, and
// parenthesized sub-expressions all funnel through here.
func (p *Parser) parseExpr() Expr {
	return p.parsePipeline()
}

func (p *Parser) parsePipeline() Expr {
	first := p.parseOr()
	if p.cur.Type != PIPE {
		return first
	}
	stages := []Expr{first}
	for p.cur.Type == PIPE {
		p.advance()
		p.skipNewlines()
		stages = append(stages, p.parseOr())
	}
	return &Pipeline{base: base{S: joinSpan(first.Span(), stages[len(stages)-1].Span())}, Stages: stages}
}

func (p *Parser) parseOr() Expr {
	left := p.parseAnd()
	for p.cur.Type == OR {
		p.advance()
		p.skipNewlines()
		right := p.parseAnd()
		left = &Binary{base: base{S: joinSpan(left.Span(), right.Span())}, Op: OR, L: left, R: right}
	}
	return left
}

func (p *Parser) parseAnd() Expr {
	left := p.parseEquality()
	for p.cur.Type == AND {
		p.advance()
		p.skipNewlines()
		right := p.parseEquality()
		left = &Binary{base: base{S: joinSpan(left.Span(), right.Span())}, Op: AND, L: left, R: right}
	}
	return left
}

func isEqualityOp(t TokenType) bool {
	switch t {
	case EQ, NOT_EQ, LT, LE, GT, GE:
		return true
	default:
		return false
	}
}

func (p *Parser) parseEquality() Expr {
	left := p.parseCoalesce()
	for isEqualityOp(p.cur.Type) {
		op := p.cur.Type
		p.advance()
		p.skipNewlines()
		right := p.parseCoalesce()
		left = &Binary{base: base{S: joinSpan(left.Span(), right.Span())}, Op: op, L: left, R: right}
	}
	return left
}

func (p *Parser) parseCoalesce() Expr {
	left := p.parseRange()
	for p.cur.Type == COALESCE {
		p.advance()
		p.skipNewlines()
		right := p.parseRange()
		left = &Binary{base: base{S: joinSpan(left.Span(), right.Span())}, Op: COALESCE, L: left, R: right}
	}
	return left
}

func canStartAdditive(t TokenType) bool {
	switch t {
	case IDENT, QUOTED_IDENT, PARAM_IDENT, NUMBER, STRING, FSTRING, SSTRING,
		DATE, TIME, TIMESTAMP, INTERVAL, NULL, TRUE, FALSE,
		LPAREN, LBRACKET, PLUS, MINUS, BANG:
		return true
	default:
		return false
	}
}

// parseRange handles a..b, a.., and ..b.
func (p *Parser) parseRange() Expr {
	start := p.cur.Span()
	if p.cur.Type == RANGE {
		p.advance()
		end := p.parseAdditive()
		return &Range{base: base{S: joinSpan(start, end.Span())}, Start: nil, End: end}
	}
	left := p.parseAdditive()
	if p.cur.Type != RANGE {
		return left
	}
	p.advance()
	if !canStartAdditive(p.cur.Type) {
		return &Range{base: base{S: joinSpan(left.Span(), p.lastSpan())}, Start: left, End: nil}
	}
	right := p.parseAdditive()
	return &Range{base: base{S: joinSpan(left.Span(), right.Span())}, Start: left, End: right}
}

func (p *Parser) parseAdditive() Expr {
	left := p.parseMultiplicative()
	for p.cur.Type == PLUS || p.cur.Type == MINUS {
		op := p.cur.Type
		p.advance()
		p.skipNewlines()
		right := p.parseMultiplicative()
		left = &Binary{base: base{S: joinSpan(left.Span(), right.Span())}, Op: op, L: left, R: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() Expr {
	left := p.parseUnary()
	for p.cur.Type == ASTERISK || p.cur.Type == SLASH || p.cur.Type == PERCENT {
		op := p.cur.Type
		p.advance()
		p.skipNewlines()
		right := p.parseUnary()
		left = &Binary{base: base{S: joinSpan(left.Span(), right.Span())}, Op: op, L: left, R: right}
	}
	return left
}

func (p *Parser) parseUnary() Expr {
	if p.cur.Type == PLUS || p.cur.Type == MINUS || p.cur.Type == BANG {
		op := p.cur.Type
		start := p.cur.Span()
		p.advance()
		x := p.parseUnary()
		return &Unary{base: base{S: joinSpan(start, x.Span())}, Op: op, X: x}
	}
	return p.parseApplication()
}

// canStartTerm reports whether a token can begin a standalone application
// argument (spec.md §4.1: "gathered greedily until a token that cannot
// begin an expression").
func canStartTerm(t TokenType) bool {
	switch t {
	case IDENT, QUOTED_IDENT, PARAM_IDENT, NUMBER, STRING, FSTRING, SSTRING,
		DATE, TIME, TIMESTAMP, INTERVAL, NULL, TRUE, FALSE,
		LPAREN, LBRACKET, MINUS, TILDE:
		return true
	default:
		return false
	}
}

// transformNames are the stdlib relational transforms, each with a fixed
// arity known to the parser so their argument slots can demand full
// expression precedence (filter's condition, derive's column list) without
// letting an adjacent sibling term get mistaken for one of their own
// arguments. Every other head — aggregate/window/scalar functions and
// user-defined functions alike — is arity-unknown until resolution, so it
// falls back to flat, restricted-term gathering (parseGenericApplication).
var transformNames = map[string]bool{
	"from": true, "select": true, "derive": true, "filter": true,
	"aggregate": true, "group": true, "window": true, "sort": true,
	"take": true, "join": true, "unique": true,
}

// parseApplication parses `head arg1 arg2 name:arg3 ...`, flattened into a
// single FuncCall when head is a bare identifier followed by further terms.
func (p *Parser) parseApplication() Expr {
	head := p.parsePostfix()
	ident, isIdent := head.(*Ident)
	if !isIdent || ident.Opaque {
		return head
	}
	if transformNames[strings.ToLower(ident.Name())] && canStartTerm(p.cur.Type) {
		return p.parseTransformCall(ident)
	}
	return p.parseGenericApplication(ident)
}

// parseGenericApplication gathers positional/named arguments for a
// non-transform head (aggregate/window/scalar stdlib functions, or a
// user-defined function). Each gathered term is parsed at the restricted,
// non-gathering level (parseApplicationTerm): this keeps a call like
// `min salary` from reaching past its own single argument and swallowing a
// sibling term that belongs to an enclosing transform, e.g. the `[~id]` in
// `join y [~id]`.
func (p *Parser) parseGenericApplication(head *Ident) Expr {
	var args []Expr
	var named []NamedArg
	for canStartTerm(p.cur.Type) {
		if p.cur.Type == IDENT && p.peek.Type == COLON {
			name := p.cur.Literal
			p.advance()
			p.advance()
			named = append(named, NamedArg{Name: name, Value: p.parseApplicationTerm()})
			continue
		}
		args = append(args, p.parseApplicationTerm())
	}
	if len(args) == 0 && len(named) == 0 {
		return head
	}
	end := head.Span()
	if n := len(args); n > 0 {
		end = joinSpan(end, args[n-1].Span())
	}
	if n := len(named); n > 0 {
		end = joinSpan(end, named[n-1].Value.Span())
	}
	return &FuncCall{base: base{S: end}, Func: head, Args: args, Named: named}
}

// parseApplicationTerm parses one atomic argument: an optional leading unary
// operator over a postfix expression, with no further juxtaposition. Used
// wherever a single, non-greedy term is wanted — generic application's
// arguments, and a transform's "plain relation/column" slots (from's table,
// join's relation).
func (p *Parser) parseApplicationTerm() Expr {
	if p.cur.Type == PLUS || p.cur.Type == MINUS || p.cur.Type == BANG {
		op := p.cur.Type
		start := p.cur.Span()
		p.advance()
		x := p.parseApplicationTerm()
		return &Unary{base: base{S: joinSpan(start, x.Span())}, Op: op, X: x}
	}
	return p.parsePostfix()
}

// parseRelationRef parses a `from`/`join` relation argument: either a bare
// (possibly dotted) reference or an `alias = reference` assignment.
func (p *Parser) parseRelationRef() Expr {
	if p.cur.Type == IDENT && p.peek.Type == ASSIGN {
		start := p.cur.Span()
		name := p.cur.Literal
		p.advance()
		p.advance()
		val := p.parseApplicationTerm()
		return &Assign{base: base{S: joinSpan(start, val.Span())}, Name: name, Value: val}
	}
	return p.parseApplicationTerm()
}

// parseTransformCall parses one of the fixed-arity relational transforms.
// Each transform's slots are hand-matched to its real grammar, the way the
// teacher's parser hand-rolls one parse function per SQL clause rather than
// reusing one generic rule for everything.
func (p *Parser) parseTransformCall(head *Ident) Expr {
	name := strings.ToLower(head.Name())
	var args []Expr
	var named []NamedArg

	switch name {
	case "from":
		args = append(args, p.parseRelationRef())

	case "select", "derive", "aggregate", "filter", "sort":
		if name != "filter" && name != "sort" && p.cur.Type == IDENT && p.peek.Type == ASSIGN {
			start := p.cur.Span()
			alias := p.cur.Literal
			p.advance()
			p.advance()
			val := p.parseOr()
			args = append(args, &Assign{base: base{S: joinSpan(start, val.Span())}, Name: alias, Value: val})
			break
		}
		args = append(args, p.parseOr())

	case "take":
		args = append(args, p.parseRange())

	case "unique":
		if canStartTerm(p.cur.Type) {
			args = append(args, p.parseOr())
		}

	case "join":
		for p.cur.Type == IDENT && p.peek.Type == COLON && p.cur.Literal == "side" {
			p.advance()
			p.advance()
			named = append(named, NamedArg{Name: "side", Value: p.parseApplicationTerm()})
		}
		if canStartTerm(p.cur.Type) {
			args = append(args, p.parseRelationRef())
		}
		if canStartTerm(p.cur.Type) {
			args = append(args, p.parseOr())
		}

	case "group":
		if canStartTerm(p.cur.Type) {
			args = append(args, p.parseApplicationTerm())
		}
		if canStartTerm(p.cur.Type) {
			args = append(args, p.parseOr())
		}

	case "window":
		for p.cur.Type == IDENT && p.peek.Type == COLON && isWindowOption(p.cur.Literal) {
			optName := p.cur.Literal
			p.advance()
			p.advance()
			named = append(named, NamedArg{Name: optName, Value: p.parseOr()})
		}
		if canStartTerm(p.cur.Type) {
			args = append(args, p.parseOr())
		}

	default:
		return p.parseGenericApplication(head)
	}

	end := head.Span()
	if n := len(args); n > 0 {
		end = joinSpan(end, args[n-1].Span())
	}
	if n := len(named); n > 0 {
		end = joinSpan(end, named[n-1].Value.Span())
	}
	return &FuncCall{base: base{S: end}, Func: head, Args: args, Named: named}
}

func isWindowOption(name string) bool {
	switch name {
	case "rows", "range", "expanding", "rolling":
		return true
	default:
		return false
	}
}

// parsePostfix parses a primary and any trailing `.field` member access.
func (p *Parser) parsePostfix() Expr {
	x := p.parsePrimary()
	for p.cur.Type == DOT {
		ident, ok := x.(*Ident)
		if !ok {
			break
		}
		p.advance()
		seg, ok2 := p.expect(IDENT)
		if !ok2 {
			break
		}
		x = &Ident{
			base:   base{S: joinSpan(ident.Span(), seg.Span())},
			Parts:  append(append([]string{}, ident.Parts...), seg.Literal),
			Quoted: append(append([]bool{}, ident.Quoted...), false),
		}
	}
	return x
}

func (p *Parser) parsePrimary() Expr {
	tok := p.cur
	switch tok.Type {
	case IDENT:
		p.advance()
		return &Ident{base: base{S: tok.Span()}, Parts: []string{tok.Literal}, Quoted: []bool{false}}
	case QUOTED_IDENT:
		p.advance()
		return &Ident{base: base{S: tok.Span()}, Parts: []string{tok.Literal}, Quoted: []bool{true}}
	case PARAM_IDENT:
		p.advance()
		return &Ident{base: base{S: tok.Span()}, Parts: []string{tok.Literal}, Opaque: true, Raw: tok.Literal}
	case NULL:
		p.advance()
		return &Literal{base: base{S: tok.Span()}, Kind: LitNull}
	case TRUE:
		p.advance()
		return &Literal{base: base{S: tok.Span()}, Kind: LitBool, Bool: true}
	case FALSE:
		p.advance()
		return &Literal{base: base{S: tok.Span()}, Kind: LitBool, Bool: false}
	case NUMBER:
		p.advance()
		return parseNumberLiteral(tok)
	case STRING:
		p.advance()
		return &Literal{base: base{S: tok.Span()}, Kind: LitString, Text: tok.Literal}
	case DATE:
		p.advance()
		return &Literal{base: base{S: tok.Span()}, Kind: LitDate, Text: tok.Literal}
	case TIME:
		p.advance()
		return &Literal{base: base{S: tok.Span()}, Kind: LitTime, Text: tok.Literal}
	case TIMESTAMP:
		p.advance()
		return &Literal{base: base{S: tok.Span()}, Kind: LitTimestamp, Text: tok.Literal}
	case INTERVAL:
		p.advance()
		n, unit := splitInterval(tok.Literal)
		return &Literal{base: base{S: tok.Span()}, Kind: LitInterval, Int: parseInt(n), Text: n, Unit: unit}
	case FSTRING:
		p.advance()
		return &FString{base: base{S: tok.Span()}, Parts: splitInterpolated(tok.Literal)}
	case SSTRING:
		p.advance()
		return &SString{base: base{S: tok.Span()}, Parts: splitInterpolated(tok.Literal)}
	case LPAREN:
		p.advance()
		p.skipNewlines()
		inner := p.parseExpr()
		p.skipNewlines()
		end, _ := p.expect(RPAREN)
		return rewrapSpan(inner, joinSpan(tok.Span(), end.Span()))
	case LBRACKET:
		return p.parseList()
	case TILDE:
		// `~col` column-reference shorthand inside join predicates.
		p.advance()
		x := p.parsePostfix()
		return &Unary{base: base{S: joinSpan(tok.Span(), x.Span())}, Op: TILDE, X: x}
	default:
		p.advance()
		err := p.fatalf(tok.Span(), "unexpected token %s %q", tok.Type, tok.Literal)
		return &Literal{base: base{S: tok.Span()}, Kind: LitString, Text: err.Message}
	}
}

// rewrapSpan widens inner's span to cover its enclosing parens without
// introducing a ParenExpr node; parens only affect parse precedence.
func rewrapSpan(e Expr, s Span) Expr {
	switch n := e.(type) {
	case *Ident:
		n.S = s
	case *Literal:
		n.S = s
	case *Range:
		n.S = s
	case *List:
		n.S = s
	case *Assign:
		n.S = s
	case *Pipeline:
		n.S = s
	case *FuncCall:
		n.S = s
	case *FString:
		n.S = s
	case *SString:
		n.S = s
	case *Unary:
		n.S = s
	case *Binary:
		n.S = s
	}
	return e
}

// parseList parses `[ item, item, ... ]`, where each item may be a bare
// expr or `alias = expr`.
func (p *Parser) parseList() Expr {
	start := p.cur.Span()
	p.advance() // consume "["
	p.skipNewlines()
	list := &List{base: base{S: start}}
	for p.cur.Type != RBRACKET && p.cur.Type != EOF {
		list.Items = append(list.Items, p.parseListItem())
		p.skipNewlines()
		if p.cur.Type == COMMA {
			p.advance()
			p.skipNewlines()
			continue
		}
		break
	}
	end, _ := p.expect(RBRACKET)
	list.S = joinSpan(start, end.Span())
	return list
}

func (p *Parser) parseListItem() Expr {
	if p.cur.Type == IDENT && p.peek.Type == ASSIGN {
		name := p.cur.Literal
		start := p.cur.Span()
		p.advance()
		p.advance()
		val := p.parseExpr()
		return &Assign{base: base{S: joinSpan(start, val.Span())}, Name: name, Value: val}
	}
	return p.parseExpr()
}

func parseNumberLiteral(tok Token) *Literal {
	lit := &Literal{base: base{S: tok.Span()}, Text: tok.Literal}
	hasFrac := false
	var f float64
	var i int64
	for idx := 0; idx < len(tok.Literal); idx++ {
		if tok.Literal[idx] == '.' {
			hasFrac = true
		}
	}
	if hasFrac {
		f = parseFloat(tok.Literal)
		lit.Kind = LitFloat
		lit.Float64 = f
		lit.HasFrac = true
	} else {
		i = parseInt(tok.Literal)
		lit.Kind = LitInt
		lit.Int = i
	}
	return lit
}

func parseInt(s string) int64 {
	var n int64
	for _, ch := range s {
		n = n*10 + int64(ch-'0')
	}
	return n
}

func parseFloat(s string) float64 {
	var whole int64
	var frac float64
	var div float64 = 1
	seenDot := false
	for _, ch := range s {
		if ch == '.' {
			seenDot = true
			continue
		}
		d := float64(ch - '0')
		if !seenDot {
			whole = whole*10 + int64(ch-'0')
		} else {
			div *= 10
			frac += d / div
		}
	}
	return float64(whole) + frac
}

func splitInterval(lit string) (number, unit string) {
	for i := 0; i < len(lit); i++ {
		if lit[i] == ' ' {
			return lit[:i], lit[i+1:]
		}
	}
	return lit, ""
}

// splitInterpolated splits an f-string/s-string body into literal runs and
// {expr} holes. A body with no holes collapses to a single literal part so
// the generator can render it as a plain string rather than CONCAT(...).
func splitInterpolated(body string) []StringPart {
	var parts []StringPart
	var lit []byte
	i := 0
	for i < len(body) {
		if body[i] == '{' {
			if len(lit) > 0 {
				parts = append(parts, StringPart{Literal: string(lit)})
				lit = nil
			}
			depth := 1
			j := i + 1
			for j < len(body) && depth > 0 {
				switch body[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				if depth == 0 {
					break
				}
				j++
			}
			exprSrc := body[i+1 : j]
			sub := NewParser(exprSrc)
			expr := sub.parseExpr()
			parts = append(parts, StringPart{IsHole: true, Expr: expr})
			i = j + 1
			continue
		}
		lit = append(lit, body[i])
		i++
	}
	if len(lit) > 0 {
		parts = append(parts, StringPart{Literal: string(lit)})
	}
	return parts
}
