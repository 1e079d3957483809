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

// Package stdlib holds PRQL's built-in transforms and functions: their
// names, parameter lists, and aggregate/window classification. The
// resolver consults this registry to bind call-site arguments (positional
// and named) against declared parameters, and to decide whether a bare
// function call needs an OVER clause.
//
// The source of truth is builtins.prql, an ordinary PRQL file parsed with
// the ast package like any user module. signatures.yaml carries the
// metadata PRQL's grammar has no room for (kind, aliases); it is merged
// over the parsed declarations at Load time.
package stdlib

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/prql-go/prqlgo/ast"
)

//go:embed builtins.prql
var builtinsSource string

//go:embed signatures.yaml
var signaturesYAML string

// Kind classifies a stdlib declaration for the resolver and generator.
type Kind string

const (
	KindAggregate Kind = "aggregate"
	KindWindow    Kind = "window"
	KindScalar    Kind = "scalar"
	KindTransform Kind = "transform"
)

// Signature is one resolved stdlib declaration.
type Signature struct {
	Name    string
	Aliases []string
	Params  []ast.Param
	Kind    Kind
}

// IsAggregate reports whether a bare call to this function requires
// aggregate-context handling (spec.md §4.3).
func (s *Signature) IsAggregate() bool { return s.Kind == KindAggregate }

// IsWindow reports whether a bare call to this function must be rendered
// with an OVER clause outside of an explicit aggregate (spec.md §4.3).
func (s *Signature) IsWindow() bool { return s.Kind == KindWindow }

// IsTransform reports whether this name is a relational transform rather
// than a scalar/aggregate/window function.
func (s *Signature) IsTransform() bool { return s.Kind == KindTransform }

// Registry is the set of loaded stdlib declarations, keyed by name and by
// every alias, all lower-cased.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Signature
}

type overlayEntry struct {
	Kind    string   `yaml:"kind"`
	Aliases []string `yaml:"aliases"`
}

type overlay struct {
	Functions map[string]overlayEntry `yaml:"functions"`
}

var (
	global     *Registry
	globalOnce sync.Once
	globalErr  error
)

// Load returns the process-wide stdlib registry, parsing and merging it
// exactly once. Concurrent first callers all block on the same
// construction and observe the same result (spec.md §5: stdlib loading is
// idempotent under concurrent first callers).
func Load() (*Registry, error) {
	globalOnce.Do(func() {
		global, globalErr = build(builtinsSource, signaturesYAML)
	})
	return global, globalErr
}

// build parses the PRQL declarations and merges the YAML classification
// overlay, independent of the package-level singleton — used directly by
// tests that want a fresh registry.
func build(prqlSource, yamlSource string) (*Registry, error) {
	p := ast.NewParser(prqlSource)
	stmts := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("stdlib: %s", errs[0].Error())
	}

	var ov overlay
	if err := yaml.Unmarshal([]byte(yamlSource), &ov); err != nil {
		return nil, fmt.Errorf("stdlib: parsing signature overlay: %w", err)
	}

	r := &Registry{entries: make(map[string]*Signature)}
	for _, stmt := range stmts {
		fd, ok := stmt.(*ast.FuncDef)
		if !ok {
			continue
		}
		name := strings.ToLower(fd.Name)
		meta := ov.Functions[name]
		sig := &Signature{
			Name:    fd.Name,
			Params:  fd.Params,
			Kind:    Kind(meta.Kind),
			Aliases: meta.Aliases,
		}
		if sig.Kind == "" {
			sig.Kind = KindScalar
		}
		if err := r.register(sig); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) register(sig *Signature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[strings.ToLower(sig.Name)]; exists {
		return fmt.Errorf("stdlib: %q already registered", sig.Name)
	}
	r.entries[strings.ToLower(sig.Name)] = sig
	for _, alias := range sig.Aliases {
		key := strings.ToLower(alias)
		if _, exists := r.entries[key]; exists {
			return fmt.Errorf("stdlib: alias %q already registered", alias)
		}
		r.entries[key] = sig
	}
	return nil
}

// Lookup finds a declaration by name or alias, case-insensitively.
func (r *Registry) Lookup(name string) (*Signature, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sig, ok := r.entries[strings.ToLower(name)]
	return sig, ok
}

// Transforms lists every relational transform name known to the registry.
func (r *Registry) Transforms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	seen := make(map[string]bool)
	for _, sig := range r.entries {
		if sig.Kind == KindTransform && !seen[sig.Name] {
			seen[sig.Name] = true
			names = append(names, sig.Name)
		}
	}
	return names
}
