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

package prql

import "github.com/prql-go/prqlgo/logger"

// Option configures a Compiler. None of these affect the PRQL language
// itself — the only in-language configuration is the `prql` prologue
// statement (dialect:/version:), per spec.md §6.
type Option func(*Compiler)

// WithDefaultDialect sets the dialect used when a source has no `prql
// dialect:...` prologue. The default is "generic".
func WithDefaultDialect(name string) Option {
	return func(c *Compiler) {
		c.defaultDialect = name
	}
}

// WithCompilerVersion overrides the compiler's own semantic version, which
// a source's `prql version:"..."` prologue is checked against for
// compatibility (VersionMismatch on a major-version mismatch).
func WithCompilerVersion(semver string) Option {
	return func(c *Compiler) {
		c.version = semver
	}
}

// WithLogLevel sets the level of the package-level default logger.
func WithLogLevel(level logger.Level) Option {
	return func(c *Compiler) {
		logger.GetDefault().SetLevel(level)
	}
}

// WithDiscardLog silences all compiler logging. This is the default.
func WithDiscardLog() Option {
	return func(c *Compiler) {
		logger.SetDefault(logger.NewDiscard())
	}
}
