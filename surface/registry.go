// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Factory creates a Target with the given options.
type Factory func(opts Options) (Target, error)

// Kind is a named kind of target that charts can be opened on.
type Kind struct {
	Name string

	// Priority orders kinds for NewTarget, highest first. Windowing
	// integrations use 100, the built-in offscreen kind 10.
	Priority int

	New Factory

	// Available reports whether the kind works on this system. Nil means
	// always.
	Available func() bool
}

func (k Kind) available() bool {
	return k.Available == nil || k.Available()
}

// Registry errors.
var (
	ErrNoTargetKind    = errors.New("surface: no target kind available")
	ErrUnknownKind     = errors.New("not registered")
	ErrKindUnavailable = errors.New("not available on this system")
)

// KindError reports a failure to create a target of a named kind.
type KindError struct {
	Name string
	Err  error
}

func (e *KindError) Error() string {
	return fmt.Sprintf("surface: target kind %q: %v", e.Name, e.Err)
}

func (e *KindError) Unwrap() error { return e.Err }

// Registry maps kind names to factories. The zero value is ready to use.
//
// Integrations register with the process-wide registry from init, so
// applications pick a kind by name without importing the integration:
//
//	func init() {
//	    surface.Register(surface.Kind{Name: "glfw", Priority: 100, New: newGLFWTarget})
//	}
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Kind
}

var defaultRegistry Registry

// Register adds k to the process-wide registry.
func Register(k Kind) error { return defaultRegistry.Register(k) }

// Unregister removes a kind from the process-wide registry.
func Unregister(name string) { defaultRegistry.Unregister(name) }

// Kinds lists the process-wide kinds by priority.
func Kinds(onlyAvailable bool) []string { return defaultRegistry.Kinds(onlyAvailable) }

// Lookup returns a kind of the process-wide registry.
func Lookup(name string) (Kind, bool) { return defaultRegistry.Lookup(name) }

// NewTarget opens a target of the best process-wide kind.
func NewTarget(opts Options) (Target, error) { return defaultRegistry.NewTarget(opts) }

// NewTargetByName opens a target of the named process-wide kind.
func NewTargetByName(name string, opts Options) (Target, error) {
	return defaultRegistry.NewTargetByName(name, opts)
}

// Register adds k, replacing a kind of the same name.
func (r *Registry) Register(k Kind) error {
	if k.Name == "" {
		return errors.New("surface: register: empty kind name")
	}
	if k.New == nil {
		return fmt.Errorf("surface: register %q: nil factory", k.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.kinds == nil {
		r.kinds = make(map[string]Kind)
	}
	r.kinds[k.Name] = k
	return nil
}

// Unregister removes a kind. Unknown names are ignored.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.kinds, name)
}

// Lookup returns the kind registered under name.
func (r *Registry) Lookup(name string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[name]
	return k, ok
}

// Kinds returns kind names ordered by priority, highest first, then by
// name.
func (r *Registry) Kinds(onlyAvailable bool) []string {
	r.mu.RLock()
	kinds := make([]Kind, 0, len(r.kinds))
	for _, k := range r.kinds {
		kinds = append(kinds, k)
	}
	r.mu.RUnlock()

	slices.SortFunc(kinds, func(a, b Kind) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		if !onlyAvailable || k.available() {
			names = append(names, k.Name)
		}
	}
	return names
}

// NewTarget tries the available kinds by priority and returns the first
// target that opens. If none does, the error joins every failure.
func (r *Registry) NewTarget(opts Options) (Target, error) {
	names := r.Kinds(true)
	if len(names) == 0 {
		return nil, ErrNoTargetKind
	}
	var errs []error
	for _, name := range names {
		t, err := r.NewTargetByName(name, opts)
		if err == nil {
			return t, nil
		}
		slogger().Debug("surface: target kind failed", "kind", name, "err", err)
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

// NewTargetByName opens a target of the named kind.
func (r *Registry) NewTargetByName(name string, opts Options) (Target, error) {
	k, ok := r.Lookup(name)
	switch {
	case !ok:
		return nil, &KindError{Name: name, Err: ErrUnknownKind}
	case !k.available():
		return nil, &KindError{Name: name, Err: ErrKindUnavailable}
	}
	t, err := k.New(opts)
	if err != nil {
		return nil, &KindError{Name: name, Err: err}
	}
	return t, nil
}

func init() {
	_ = Register(Kind{
		Name:     "offscreen",
		Priority: 10,
		New:      func(opts Options) (Target, error) { return NewOffscreen(opts) },
	})
}
