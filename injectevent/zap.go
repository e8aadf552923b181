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
	"go.uber.org/zap"
)

// ZapLogger logs events to Zap.
type ZapLogger struct {
	Logger *zap.Logger
}

var _ Logger = (*ZapLogger)(nil)

// LogEvent logs the given event to the provided Zap logger.
func (l *ZapLogger) LogEvent(event Event) {
	switch e := event.(type) {
	case *Provided:
		l.Logger.Debug("provided",
			zap.String("provider", e.ProviderName),
			zap.String("type", e.TypeName),
			zap.String("scope", e.ScopeName),
			zap.Bool("spread", e.Spread),
		)
	case *Malformed:
		l.Logger.Error("malformed declaration",
			zap.String("provider", e.ProviderName),
			zap.Error(e.Err),
		)
	case *Expanded:
		l.Logger.Debug("expanded",
			zap.String("spread", e.SpreadName),
			zap.String("matched", e.MatchedName),
			zap.String("type", e.TypeName),
			zap.String("scope", e.ScopeName),
		)
	case *Resolving:
		l.Logger.Debug("resolving",
			zap.String("type", e.TypeName),
			zap.String("scope", e.ScopeName),
		)
	case *Resolved:
		if e.Err != nil {
			l.Logger.Error("resolution failed",
				zap.String("type", e.TypeName),
				zap.String("scope", e.ScopeName),
				zap.Error(e.Err),
			)
		} else {
			l.Logger.Info("resolved",
				zap.String("type", e.TypeName),
				zap.String("scope", e.ScopeName),
				zap.String("candidate", e.CandidateName),
				zap.String("runtime", e.Runtime.String()),
			)
		}
	}
}
