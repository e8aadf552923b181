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

package inject

import (
	"fmt"
	"strings"

	"go.uber.org/inject/types"
)

// ScopeKind is the kind of lexical region a Scope stands for.
type ScopeKind int

// Scope kinds, from the outermost to the innermost.
const (
	ExternalScope ScopeKind = iota + 1
	UnitScope
	PackageScope
	FileScope
	CompanionScope
	ClassScope
	FunctionScope
	BlockScope
)

func (k ScopeKind) String() string {
	switch k {
	case ExternalScope:
		return "external"
	case UnitScope:
		return "unit"
	case PackageScope:
		return "package"
	case FileScope:
		return "file"
	case CompanionScope:
		return "companion"
	case ClassScope:
		return "class"
	case FunctionScope:
		return "function"
	case BlockScope:
		return "block"
	default:
		return fmt.Sprintf("ScopeKind(%d)", int(k))
	}
}

// Scope is a node of the lexical scope tree. Providers are declared in a
// scope and are visible to requests made from that scope or any scope
// nested in it.
type Scope struct {
	name           string
	kind           ScopeKind
	parent         *Scope
	unit           string
	depth          int
	typeParameters []*types.Classifier
}

// NewScope creates the root of a scope tree. Declarations coming from
// other compilation units live here.
func NewScope(name string) *Scope {
	return &Scope{name: name, kind: ExternalScope}
}

// Child creates a scope nested in s. Type parameters introduced by the
// scope, such as those of a generic function, are rigid for every request
// made inside it.
func (s *Scope) Child(name string, kind ScopeKind, typeParameters ...*types.Classifier) *Scope {
	c := &Scope{
		name:           name,
		kind:           kind,
		parent:         s,
		unit:           s.unit,
		depth:          s.depth + 1,
		typeParameters: typeParameters,
	}
	if kind == UnitScope {
		c.unit = name
	}
	return c
}

// Name returns the scope's name.
func (s *Scope) Name() string { return s.name }

// Kind returns the kind of the scope.
func (s *Scope) Kind() ScopeKind { return s.kind }

// Parent returns the enclosing scope, nil for the root.
func (s *Scope) Parent() *Scope { return s.parent }

// Unit returns the compilation unit the scope belongs to.
func (s *Scope) Unit() string { return s.unit }

// Depth is the number of scopes enclosing s.
func (s *Scope) Depth() int { return s.depth }

// Chain lists s and its ancestors, innermost first.
func (s *Scope) Chain() []*Scope {
	out := make([]*Scope, 0, s.depth+1)
	for c := s; c != nil; c = c.parent {
		out = append(out, c)
	}
	return out
}

// Encloses reports whether inner is s or nested inside s.
func (s *Scope) Encloses(inner *Scope) bool {
	if inner == nil || inner.depth < s.depth {
		return false
	}
	for c := inner; c != nil; c = c.parent {
		if c == s {
			return true
		}
		if c.depth < s.depth {
			return false
		}
	}
	return false
}

// distance is how many scopes lie between inner and s, or -1 if s does not
// enclose inner.
func (s *Scope) distance(inner *Scope) int {
	if !s.Encloses(inner) {
		return -1
	}
	return inner.depth - s.depth
}

// StaticTypeParameters returns the type parameters introduced by s and
// every enclosing scope.
func (s *Scope) StaticTypeParameters() []*types.Classifier {
	var out []*types.Classifier
	for c := s; c != nil; c = c.parent {
		out = append(out, c.typeParameters...)
	}
	return out
}

// String renders the path from the root, e.g. "app/main.kt/main".
func (s *Scope) String() string {
	chain := s.Chain()
	names := make([]string, len(chain))
	for i, c := range chain {
		names[len(chain)-1-i] = c.name
	}
	return strings.Join(names, "/")
}

func innermost(a, b *Scope) (*Scope, bool) {
	switch {
	case a.Encloses(b):
		return b, true
	case b.Encloses(a):
		return a, true
	default:
		return nil, false
	}
}
