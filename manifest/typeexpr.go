// Copyright (c) 2026 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package manifest

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"go.uber.org/inject/types"
)

// env resolves type names: local type parameters first, then those of
// enclosing declarations, then the classifiers of the universe.
type env struct {
	u      *types.Universe
	names  map[string]*types.Classifier
	parent *env
}

func newEnv(u *types.Universe, parent *env) *env {
	return &env{u: u, names: make(map[string]*types.Classifier), parent: parent}
}

func (e *env) lookup(name string) (*types.Classifier, bool) {
	for c := e; c != nil; c = c.parent {
		if cl, ok := c.names[name]; ok {
			return cl, true
		}
	}
	return e.u.Lookup(name)
}

// ParseType parses a type expression against the classifiers of u.
func ParseType(u *types.Universe, src string) (types.Type, error) {
	return newEnv(u, nil).parse(src)
}

func (e *env) parse(src string) (types.Type, error) {
	p := &parser{src: src, env: e}
	t, err := p.typ()
	if err == nil {
		p.skipSpace()
		if !p.eof() {
			err = p.errorf("unexpected %q", p.src[p.pos:])
		}
	}
	if err != nil {
		return types.Type{}, errors.Wrapf(err, "invalid type %q", src)
	}
	return t, nil
}

type parser struct {
	src string
	pos int
	env *env
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return errors.Errorf("offset %d: "+format, append([]interface{}{p.pos}, args...)...)
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) consume(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *parser) expect(tok string) error {
	if !p.consume(tok) {
		return p.errorf("expected %q", tok)
	}
	return nil
}

func isIdent(r rune) bool {
	return r == '_' || r == '.' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (p *parser) ident() string {
	p.skipSpace()
	start := p.pos
	for !p.eof() && isIdent(rune(p.src[p.pos])) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// typ parses tags, then a named, function or parenthesized type, then an
// optional '?'.
func (p *parser) typ() (types.Type, error) {
	if p.consume("@") {
		tag, err := p.named()
		if err != nil {
			return types.Type{}, err
		}
		inner, err := p.typ()
		if err != nil {
			return types.Type{}, err
		}
		return inner.Tagged(tag)
	}

	var (
		t   types.Type
		err error
	)
	if p.consume("(") {
		t, err = p.parenthesized()
	} else {
		t, err = p.named()
	}
	if err != nil {
		return types.Type{}, err
	}
	if p.consume("?") {
		t = t.WithNullability(true)
	}
	return t, nil
}

// parenthesized parses what follows '(': a function type or a grouped
// type.
func (p *parser) parenthesized() (types.Type, error) {
	var list []types.Type
	if !p.consume(")") {
		for {
			t, err := p.typ()
			if err != nil {
				return types.Type{}, err
			}
			list = append(list, t)
			if !p.consume(",") {
				break
			}
		}
		if err := p.expect(")"); err != nil {
			return types.Type{}, err
		}
	}

	if p.consume("->") {
		result, err := p.typ()
		if err != nil {
			return types.Type{}, err
		}
		return p.env.u.FunctionType(result, list...)
	}
	if len(list) != 1 {
		return types.Type{}, p.errorf("expected \"->\"")
	}
	return list[0], nil
}

func (p *parser) named() (types.Type, error) {
	name := p.ident()
	if name == "" {
		return types.Type{}, p.errorf("expected a type name")
	}
	c, ok := p.env.lookup(name)
	if !ok {
		return types.Type{}, errors.Errorf("unknown type %q", name)
	}

	var args []types.Type
	if p.consume("<") {
		for {
			a, err := p.arg()
			if err != nil {
				return types.Type{}, err
			}
			args = append(args, a)
			if !p.consume(",") {
				break
			}
		}
		if err := p.expect(">"); err != nil {
			return types.Type{}, err
		}
	}
	return types.New(c, args...)
}

// arg parses a type argument: '*' or a type with optional use-site
// variance.
func (p *parser) arg() (types.Type, error) {
	if p.consume("*") {
		return types.Star(), nil
	}

	v := types.Invariant
	save := p.pos
	switch p.ident() {
	case "in":
		v = types.In
	case "out":
		v = types.Out
	}
	if v != types.Invariant && (p.eof() || p.src[p.pos] != ' ') {
		v = types.Invariant
	}
	if v == types.Invariant {
		p.pos = save
	}

	t, err := p.typ()
	if err != nil {
		return types.Type{}, err
	}
	return t.WithVariance(v), nil
}

func parseVariance(s string) (types.Variance, error) {
	switch s {
	case "":
		return types.Invariant, nil
	case "in":
		return types.In, nil
	case "out":
		return types.Out, nil
	default:
		return 0, errors.Errorf("unknown variance %q", s)
	}
}
