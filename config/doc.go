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

// Package config loads the settings of the inject tool from YAML files and
// environment variables.
//
// Files are looked up as base.yaml and <environment>.yaml in each
// configured directory, later files overriding earlier ones. ${VAR}
// references in files are expanded from the environment. Finally,
// variables named with the loader's prefix override single settings:
//
//	INJECT_ENVIRONMENT                 selects <environment>.yaml
//	INJECT_CONFIG_DIR                  adds a directory to search
//	INJECT_MAX_DEPTH                   resolution.maxDepth
//	INJECT_MAX_FUNCTION_ARITY          resolution.maxFunctionArity
//	INJECT_STRICT_SPREAD_NULLABILITY   resolution.strictSpreadNullability
//	INJECT_LOG_LEVEL                   logging.level
//	INJECT_LOG_FORMAT                  logging.format
package config
