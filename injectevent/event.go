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

package injectevent

import "time"

// Logger receives events emitted by a Pool.
type Logger interface {
	LogEvent(Event)
}

// NopLogger discards all events.
var NopLogger Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) LogEvent(Event) {}

// Event is an event emitted by a Pool.
type Event interface {
	event() // Only this package can implement Event.
}

func (*Provided) event()  {}
func (*Malformed) event() {}
func (*Expanded) event()  {}
func (*Resolving) event() {}
func (*Resolved) event()  {}

// Provided is emitted when a declared provider is added to a pool.
type Provided struct {
	// ProviderName is the name of the provider.
	ProviderName string
	// TypeName is the type it provides.
	TypeName string
	// ScopeName is the scope it is declared in.
	ScopeName string
	// Spread is set for providers with a spread type parameter.
	Spread bool
}

// Malformed is emitted when a provider is rejected.
type Malformed struct {
	ProviderName string
	Err          error
}

// Expanded is emitted when a spreading provider is instantiated for a
// matching provider.
type Expanded struct {
	SpreadName  string
	MatchedName string
	// TypeName is the type of the synthesized provider.
	TypeName  string
	ScopeName string
}

// Resolving is emitted before a request is resolved.
type Resolving struct {
	TypeName  string
	ScopeName string
}

// Resolved is emitted after a request was resolved, successfully or not.
type Resolved struct {
	TypeName      string
	ScopeName     string
	CandidateName string
	Runtime       time.Duration
	Err           error
}
