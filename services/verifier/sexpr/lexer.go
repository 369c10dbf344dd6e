// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sexpr

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrSyntax wraps every malformed-input error from this package.
var ErrSyntax = errors.New("syntax error")

type tokenKind int

const (
	tokLParen tokenKind = iota
	tokRParen
	tokAtom
	tokString
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	line int
}

// lexer scans the exporter's S-expression text. Atoms are any run of
// characters outside whitespace, parens, and quotes, which covers
// symbols, numbers, operators, and the `->` arrow alike.
type lexer struct {
	src  string
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == ';':
			// Comment to end of line.
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '(':
			l.pos++
			return token{kind: tokLParen, line: l.line}, nil
		case c == ')':
			l.pos++
			return token{kind: tokRParen, line: l.line}, nil
		case c == '"':
			return l.scanString()
		default:
			return l.scanAtom()
		}
	}
	return token{kind: tokEOF, line: l.line}, nil
}

func (l *lexer) scanString() (token, error) {
	start := l.line
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '"':
			l.pos++
			return token{kind: tokString, text: b.String(), line: start}, nil
		case '\\':
			l.pos++
			if l.pos >= len(l.src) {
				return token{}, fmt.Errorf("%w: unterminated escape at line %d", ErrSyntax, l.line)
			}
			switch l.src[l.pos] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				return token{}, fmt.Errorf("%w: unknown escape \\%c at line %d",
					ErrSyntax, l.src[l.pos], l.line)
			}
			l.pos++
		case '\n':
			l.line++
			b.WriteByte(c)
			l.pos++
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return token{}, fmt.Errorf("%w: unterminated string starting at line %d", ErrSyntax, start)
}

func (l *lexer) scanAtom() (token, error) {
	start := l.pos
	for l.pos < len(l.src) {
		c := rune(l.src[l.pos])
		if c == '(' || c == ')' || c == '"' || c == ';' || unicode.IsSpace(c) {
			break
		}
		l.pos++
	}
	return token{kind: tokAtom, text: l.src[start:l.pos], line: l.line}, nil
}

// node is one parsed S-expression: either an atom/string leaf or a
// parenthesized list.
type node struct {
	list  bool
	atom  string
	isStr bool
	kids  []*node
	line  int
}

func (n *node) head() string {
	if n.list && len(n.kids) > 0 && !n.kids[0].list {
		return n.kids[0].atom
	}
	return ""
}

type parser struct {
	lex    *lexer
	peeked *token
}

func (p *parser) peek() (token, error) {
	if p.peeked == nil {
		t, err := p.lex.next()
		if err != nil {
			return token{}, err
		}
		p.peeked = &t
	}
	return *p.peeked, nil
}

func (p *parser) advance() (token, error) {
	t, err := p.peek()
	p.peeked = nil
	return t, err
}

func (p *parser) parseNode() (*node, error) {
	t, err := p.advance()
	if err != nil {
		return nil, err
	}
	switch t.kind {
	case tokLParen:
		n := &node{list: true, line: t.line}
		for {
			nt, err := p.peek()
			if err != nil {
				return nil, err
			}
			if nt.kind == tokRParen {
				_, _ = p.advance()
				return n, nil
			}
			if nt.kind == tokEOF {
				return nil, fmt.Errorf("%w: unclosed list starting at line %d", ErrSyntax, t.line)
			}
			kid, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			n.kids = append(n.kids, kid)
		}
	case tokAtom:
		return &node{atom: t.text, line: t.line}, nil
	case tokString:
		return &node{atom: t.text, isStr: true, line: t.line}, nil
	case tokRParen:
		return nil, fmt.Errorf("%w: unexpected ')' at line %d", ErrSyntax, t.line)
	default:
		return nil, fmt.Errorf("%w: unexpected end of input at line %d", ErrSyntax, t.line)
	}
}
