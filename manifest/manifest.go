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
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Manifest is the YAML form of a program.
type Manifest struct {
	// Root names the root scope. Defaults to "external".
	Root string `yaml:"root"`

	Classifiers []Classifier `yaml:"classifiers"`
	Scopes      []Scope      `yaml:"scopes"`
	Providers   []Provider   `yaml:"providers"`
	Requests    []Request    `yaml:"requests"`
	Calls       []Call       `yaml:"calls"`
}

// Classifier declares a class, interface, object, tag or type alias.
type Classifier struct {
	Name string `yaml:"name"`

	// Kind is one of class (the default), interface, object, tag or
	// alias.
	Kind string `yaml:"kind"`

	Params     []TypeParam `yaml:"params"`
	Supertypes []string    `yaml:"supertypes"`

	// Expands is the type an alias stands for.
	Expands string `yaml:"expands"`
}

// TypeParam declares a type parameter of a classifier, a scope or a
// provider.
type TypeParam struct {
	Name string `yaml:"name"`

	// Variance is empty, "in" or "out".
	Variance string   `yaml:"variance"`
	Bounds   []string `yaml:"bounds"`
	Spread   bool     `yaml:"spread"`
}

// Scope declares a lexical scope.
type Scope struct {
	Name string `yaml:"name"`

	// Kind is one of unit, package, file, companion, class, function or
	// block.
	Kind string `yaml:"kind"`

	// Parent is the path of the enclosing scope, empty for the root.
	Parent string `yaml:"parent"`

	TypeParams []TypeParam `yaml:"typeParams"`
}

// Provider declares an injectable.
type Provider struct {
	Name string `yaml:"name"`

	// Kind is one of function (the default), property, constructor,
	// object or value.
	Kind string `yaml:"kind"`

	Scope string `yaml:"scope"`

	// Visibility is one of public (the default), internal, protected or
	// private.
	Visibility string `yaml:"visibility"`

	// Receiver is the type a member provider is called on.
	Receiver string `yaml:"receiver"`

	// Context is the call context the provider must be used from: default
	// (the default), suspend or composable.
	Context string `yaml:"context"`

	Order int    `yaml:"order"`
	Unit  string `yaml:"unit"`

	TypeParams []TypeParam `yaml:"typeParams"`
	Params     []Param     `yaml:"params"`
	Type       string      `yaml:"type"`
}

// Param declares an injectable parameter.
type Param struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Default bool   `yaml:"default"`
}

// Request asks for a type at a point of a scope.
type Request struct {
	Type     string `yaml:"type"`
	Scope    string `yaml:"scope"`
	Position int    `yaml:"position"`
	Context  string `yaml:"context"`
}

// Call is an invocation whose arguments are injected, except those passed
// explicitly.
type Call struct {
	Name     string   `yaml:"name"`
	Scope    string   `yaml:"scope"`
	Position int      `yaml:"position"`
	Params   []Param  `yaml:"params"`
	Explicit []string `yaml:"explicit"`

	// Context is the call context of the call site and CalleeContext the
	// one the callee requires.
	Context       string `yaml:"context"`
	CalleeContext string `yaml:"calleeContext"`

	// Type is the callee's result type. Defaults to Any?.
	Type string `yaml:"type"`
}

// Parse decodes a manifest. Unknown fields are rejected.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "cannot parse manifest")
	}
	return &m, nil
}

// Load reads and decodes the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read manifest %q", path)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "in %q", path)
	}
	return m, nil
}
