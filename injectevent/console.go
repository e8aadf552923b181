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

import (
	"fmt"
	"io"
)

// ConsoleLogger writes human-readable messages to W.
type ConsoleLogger struct {
	W io.Writer
}

var _ Logger = (*ConsoleLogger)(nil)

func (l *ConsoleLogger) logf(msg string, args ...interface{}) {
	fmt.Fprintf(l.W, "[Inject] "+msg+"\n", args...)
}

// LogEvent logs the given event to W.
func (l *ConsoleLogger) LogEvent(event Event) {
	switch e := event.(type) {
	case *Provided:
		if e.Spread {
			l.logf("SPREAD\t%v <= %v in %v", e.TypeName, e.ProviderName, e.ScopeName)
		} else {
			l.logf("PROVIDE\t%v <= %v in %v", e.TypeName, e.ProviderName, e.ScopeName)
		}
	case *Malformed:
		l.logf("ERROR\t\tRejected %v: %v", e.ProviderName, e.Err)
	case *Expanded:
		l.logf("EXPAND\t%v <= %v for %v in %v", e.TypeName, e.SpreadName, e.MatchedName, e.ScopeName)
	case *Resolving:
		l.logf("RESOLVE\t%v in %v", e.TypeName, e.ScopeName)
	case *Resolved:
		if e.Err != nil {
			l.logf("ERROR\t\tFailed to resolve %v in %v: %v", e.TypeName, e.ScopeName, e.Err)
		} else {
			l.logf("RESOLVED\t%v <= %v in %v", e.TypeName, e.CandidateName, e.Runtime)
		}
	}
}
