// Package quantifier implements the named value transforms used by
// stat description templates.
//
// A quantifier adjusts a raw stat value for display (for example
// "milliseconds_to_seconds" divides by 1000) and, where the transform
// is mathematically well-defined, can reverse a displayed value back
// to the raw one. Templates reference quantifiers by name and may
// chain several of them per placeholder; chains apply left-to-right
// when rendering and right-to-left when reversing.
package quantifier

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnknown is returned when a chain references a name that is not
// registered. Description files referencing unknown quantifiers are
// rejected at parse time, so translate calls never hit this.
var ErrUnknown = errors.New("unknown quantifier")

// ErrNoInverse is returned by Invert when a chain contains a
// quantifier without a well-defined inverse.
var ErrNoInverse = errors.New("quantifier has no inverse")

// ErrDuplicate is returned by Register for an already-taken name.
var ErrDuplicate = errors.New("quantifier already registered")

// Quantifier is a single named transform.
//
// Forward adjusts the raw value for display, Inverse undoes it.
// A nil Forward or Inverse means identity; HasInverse reports whether
// Inverse is meaningful at all (rounding transforms keep a best-effort
// Inverse but stay invertible, whereas table lookups without a reverse
// table set HasInverse to false).
type Quantifier struct {
	Name    string
	Forward func(v float64) float64
	Inverse func(v float64) float64
	// HasInverse marks the transform as reversible. Quantifiers
	// registered without it fail Invert for the whole chain.
	HasInverse bool
	// Format renders the transformed value. Nil falls back to the
	// default shortest-form formatting.
	Format func(v float64) string
	// Parse converts captured display text back into the displayed
	// numeric form. Nil falls back to strconv.ParseFloat.
	Parse func(s string) (float64, error)
	// PluralizeUnit makes the renderer pluralize the unit word
	// following the placeholder when the displayed value is not 1.
	PluralizeUnit bool
	// Precision is the smallest displayed step (e.g. 0.1 for one
	// decimal place). Zero means full precision. The reverse engine
	// uses it to size the rounding tolerance.
	Precision float64
}

func (q Quantifier) forward(v float64) float64 {
	if q.Forward == nil {
		return v
	}
	return q.Forward(v)
}

func (q Quantifier) inverse(v float64) float64 {
	if q.Inverse == nil {
		return v
	}
	return q.Inverse(v)
}

// FormatValue renders v in the default shortest form: whole numbers
// without a decimal point, everything else with trailing zeros
// trimmed.
func FormatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Registry holds the installed quantifiers. The zero value is not
// usable; construct with New or NewEmpty.
type Registry struct {
	byName map[string]Quantifier
}

// NewEmpty returns a registry with no quantifiers installed.
func NewEmpty() *Registry {
	return &Registry{byName: make(map[string]Quantifier)}
}

// New returns a registry preloaded with the built-in quantifier set.
func New() *Registry {
	r := NewEmpty()
	for _, q := range builtins() {
		// Built-in names are unique by construction.
		r.byName[q.Name] = q
	}
	return r
}

// Register installs q. Names must be unique.
func (r *Registry) Register(q Quantifier) error {
	if q.Name == "" {
		return errors.New("quantifier name must not be empty")
	}
	if _, ok := r.byName[q.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, q.Name)
	}
	r.byName[q.Name] = q
	return nil
}

// Lookup returns the quantifier registered under name.
func (r *Registry) Lookup(name string) (Quantifier, bool) {
	q, ok := r.byName[name]
	return q, ok
}

// Validate checks that every name in chain is registered.
func (r *Registry) Validate(chain []string) error {
	for _, name := range chain {
		if _, ok := r.byName[name]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknown, name)
		}
	}
	return nil
}

// Apply composes the forward transforms of chain left-to-right.
func (r *Registry) Apply(chain []string, v float64) (float64, error) {
	for _, name := range chain {
		q, ok := r.byName[name]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknown, name)
		}
		v = q.forward(v)
	}
	return v, nil
}

// Invert composes the inverse transforms of chain right-to-left. It
// fails with ErrNoInverse if any chain member is not reversible.
func (r *Registry) Invert(chain []string, v float64) (float64, error) {
	for i := len(chain) - 1; i >= 0; i-- {
		q, ok := r.byName[chain[i]]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknown, chain[i])
		}
		if !q.HasInverse {
			return 0, fmt.Errorf("%w: %s", ErrNoInverse, chain[i])
		}
		v = q.inverse(v)
	}
	return v, nil
}

// Format renders a value already transformed by chain. The last chain
// member with a formatter wins; without one the default shortest-form
// formatting applies.
func (r *Registry) Format(chain []string, v float64) string {
	for i := len(chain) - 1; i >= 0; i-- {
		if q, ok := r.byName[chain[i]]; ok && q.Format != nil {
			return q.Format(v)
		}
	}
	return FormatValue(v)
}

// Parse converts captured display text into the displayed numeric
// form, using the last chain member with a custom parser if any.
func (r *Registry) Parse(chain []string, s string) (float64, error) {
	for i := len(chain) - 1; i >= 0; i-- {
		if q, ok := r.byName[chain[i]]; ok && q.Parse != nil {
			return q.Parse(s)
		}
	}
	return strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(s), "+"), 64)
}

// Pluralizes reports whether any chain member requests unit-word
// pluralization.
func (r *Registry) Pluralizes(chain []string) bool {
	for _, name := range chain {
		if q, ok := r.byName[name]; ok && q.PluralizeUnit {
			return true
		}
	}
	return false
}

// Precision returns the smallest displayed step of the chain: the
// coarsest Precision of any member, or 0 when every member renders at
// full precision.
func (r *Registry) Precision(chain []string) float64 {
	var p float64
	for _, name := range chain {
		if q, ok := r.byName[name]; ok && q.Precision > p {
			p = q.Precision
		}
	}
	return p
}
