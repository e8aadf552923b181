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

// Command inject resolves the requests and calls of a program manifest and
// prints the resolution trees.
//
//	inject -m program.yaml [-c override.yaml] [--unused]
//
// Settings come from base.yaml and <environment>.yaml in the working
// directory and ./config, then from the files given with -c, then from
// INJECT_* environment variables. The command exits non-zero when a
// declaration is rejected or a request cannot be resolved.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/inject"
	"go.uber.org/inject/config"
	"go.uber.org/inject/injectevent"
	"go.uber.org/inject/manifest"
	"go.uber.org/inject/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var errFailed = errors.New("resolution failed")

type options struct {
	Config   []string `short:"c" long:"config" description:"Config file applied after the searched ones. May be repeated."`
	Manifest string   `short:"m" long:"manifest" description:"Program manifest to resolve." required:"true"`
	Unused   bool     `long:"unused" description:"List the providers no request selected."`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		if fe, ok := err.(*flags.Error); ok && fe.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, fe.Message)
			return nil
		}
		return err
	}

	c := dig.New()
	for _, ctor := range []interface{}{
		func() *config.Loader { return config.NewLoader(config.Files(opts.Config...)) },
		func(l *config.Loader) (config.Config, error) { return l.Load() },
		func(cfg config.Config) (*zap.Logger, error) { return newLogger(cfg.Logging, stderr) },
		func(cfg config.Config, log *zap.Logger) injectevent.Logger {
			if cfg.Logging.Format == config.EventsFormat {
				return &injectevent.ConsoleLogger{W: stderr}
			}
			return &injectevent.ZapLogger{Logger: log}
		},
		func(cfg config.Config) (*manifest.Program, error) {
			m, err := manifest.Load(opts.Manifest)
			if err != nil {
				return nil, err
			}
			return m.Build(types.MaxFunctionArity(cfg.Resolution.MaxFunctionArity))
		},
		func(prog *manifest.Program, cfg config.Config, el injectevent.Logger) *inject.Pool {
			return prog.Pool(inject.WithConfig(cfg.Resolution), inject.WithLogger(el))
		},
	} {
		if err := c.Provide(ctor); err != nil {
			return err
		}
	}

	err := c.Invoke(func(prog *manifest.Program, pool *inject.Pool, log *zap.Logger) error {
		defer log.Sync() //nolint:errcheck
		r := reporter{w: stdout, log: log, pool: pool}
		return r.report(prog, opts.Unused)
	})
	if errors.Is(err, errFailed) {
		return errFailed
	}
	return dig.RootCause(err)
}

func newLogger(cfg config.Logging, w io.Writer) (*zap.Logger, error) {
	lvl, err := cfg.ZapLevel()
	if err != nil {
		return nil, err
	}
	var enc zapcore.Encoder
	if cfg.Format == config.JSONFormat {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), lvl)), nil
}
