// Package descfile implements reading and querying of stat description
// files: the template grammar that maps ordered tuples of stat
// identifiers and their integer values to localized descriptive text.
//
// A parsed File is an immutable store. Translate renders text from
// values (the forward direction) and ReverseTranslate recovers values
// from text (the reverse direction); both are pure computations over
// the store and safe for concurrent use.
package descfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/exiletools/statdesc/quantifier"
)

// DefaultLanguage is the language of a block's un-prefixed when-lines
// and the fallback for any language a block does not declare.
const DefaultLanguage = "English"

// Bound is the inclusive acceptance interval of one parameter
// position. Open sides accept everything; a negated bound accepts
// values outside the interval instead.
type Bound struct {
	Min, Max         int
	OpenMin, OpenMax bool
	Negated          bool
}

// Contains reports whether v satisfies the bound.
func (b Bound) Contains(v int) bool {
	inside := (b.OpenMin || v >= b.Min) && (b.OpenMax || v <= b.Max)
	return inside != b.Negated
}

// anchor returns a representative value for a parameter that has no
// placeholder in the template. The second result reports whether the
// bound pins the value exactly.
func (b Bound) anchor() (int, bool) {
	if b.Negated {
		switch {
		case !b.OpenMax:
			return b.Max + 1, false
		case !b.OpenMin:
			return b.Min - 1, false
		default:
			return 1, false
		}
	}
	switch {
	case !b.OpenMin && !b.OpenMax && b.Min == b.Max:
		return b.Min, true
	case !b.OpenMax:
		return b.Max, false
	case !b.OpenMin:
		return b.Min, false
	default:
		return 0, false
	}
}

// String renders the bound in grammar syntax.
func (b Bound) String() string {
	var sb strings.Builder
	if b.Negated {
		sb.WriteByte('!')
	}
	switch {
	case b.OpenMin && b.OpenMax:
		sb.WriteByte('#')
	case !b.OpenMin && !b.OpenMax && b.Min == b.Max:
		sb.WriteString(strconv.Itoa(b.Min))
	default:
		if b.OpenMin {
			sb.WriteByte('#')
		} else {
			sb.WriteString(strconv.Itoa(b.Min))
		}
		sb.WriteString("..")
		if b.OpenMax {
			sb.WriteByte('#')
		} else {
			sb.WriteString(strconv.Itoa(b.Max))
		}
	}
	return sb.String()
}

// Range is one when-line: the per-parameter bounds that select it plus
// the template rendered when they all match.
type Range struct {
	Bounds   []Bound
	Template string

	// Compiled template form: segments has one more element than
	// slots; slots[i] is the parameter index substituted between
	// segments[i] and segments[i+1].
	segments []string
	slots    []int
	// Per-parameter quantifier chains and pluralize-unit flags.
	chains [][]string
	plural []bool
}

// Placeholders reports how many placeholder occurrences the template
// has. Zero means a flag-only template.
func (r *Range) Placeholders() int { return len(r.slots) }

// Chain returns the quantifier chain bound to parameter position i.
func (r *Range) Chain(i int) []string {
	if i < 0 || i >= len(r.chains) {
		return nil
	}
	return r.chains[i]
}

// LanguageBlock is the ordered range list of one language.
type LanguageBlock struct {
	Language string
	Ranges   []Range
}

// Translation is one parsed grammar block: an ordered identifier
// tuple, its parameter-count rule, and per-language range sets.
// Translations are immutable once parsed.
type Translation struct {
	IDs                  []string
	MinParams, MaxParams int
	NoDescription        bool
	// Languages always starts with the default language block.
	Languages []LanguageBlock
	// Index is the declaration position within the file.
	Index int
}

// Key returns the exact-match lookup key for the identifier tuple.
// Order is significant and never normalized.
func (t *Translation) Key() string { return strings.Join(t.IDs, " ") }

// Language returns the block for the requested language, falling back
// to the default language block when it is not declared.
func (t *Translation) Language(name string) *LanguageBlock {
	var def *LanguageBlock
	for i := range t.Languages {
		lb := &t.Languages[i]
		if lb.Language == name {
			return lb
		}
		if lb.Language == DefaultLanguage {
			def = lb
		}
	}
	return def
}

// DiagnosticKind classifies non-fatal findings.
type DiagnosticKind int

const (
	// DiagGeneric covers recoverable oddities (padded values,
	// malformed-but-tolerated usage).
	DiagGeneric DiagnosticKind = iota
	// DiagMissingIdentifier: key not found, or no range matched the
	// supplied values.
	DiagMissingIdentifier
	// DiagUnknownIdentifier: a directive references an identifier the
	// file never declares. Informational only.
	DiagUnknownIdentifier
	// DiagDuplicateIdentifier: the same key is declared twice; the
	// first declaration wins.
	DiagDuplicateIdentifier
)

func (k DiagnosticKind) String() string {
	switch k {
	case DiagMissingIdentifier:
		return "missing identifier"
	case DiagUnknownIdentifier:
		return "unknown identifier"
	case DiagDuplicateIdentifier:
		return "duplicate identifier"
	default:
		return "warning"
	}
}

// Diagnostic is a non-fatal finding. Diagnostics are returned on
// results or recorded on the File, never raised, so batch callers can
// continue past individual misses.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
}

func (d Diagnostic) String() string {
	return d.Kind.String() + ": " + d.Message
}

// File is a parsed description file: the ordered translation list and
// the exact-match index over identifier tuples. A File is immutable
// once built.
type File struct {
	Translations []*Translation
	// Diagnostics recorded while parsing and building the index.
	Diagnostics []Diagnostic

	byKey map[string][]*Translation
	reg   *quantifier.Registry
}

// NewFile builds a File from already-parsed translations, recording a
// duplicate-identifier diagnostic for every repeated key. The first
// declaration of a key stays authoritative. reg is the quantifier
// registry the translations were validated against; nil selects the
// built-in set.
func NewFile(translations []*Translation, diags []Diagnostic, reg *quantifier.Registry) *File {
	if reg == nil {
		reg = quantifier.New()
	}
	f := &File{
		Translations: translations,
		Diagnostics:  diags,
		byKey:        make(map[string][]*Translation, len(translations)),
		reg:          reg,
	}
	for _, tr := range translations {
		key := tr.Key()
		if prev, ok := f.byKey[key]; ok {
			f.Diagnostics = append(f.Diagnostics, Diagnostic{
				Kind:    DiagDuplicateIdentifier,
				Message: fmt.Sprintf("key %q declared again at block %d; block %d wins", key, tr.Index, prev[0].Index),
			})
		}
		f.byKey[key] = append(f.byKey[key], tr)
	}
	return f
}

// Lookup returns the authoritative translation for the exact ordered
// identifier tuple, or nil.
func (f *File) Lookup(ids []string) *Translation {
	trs := f.byKey[strings.Join(ids, " ")]
	if len(trs) == 0 {
		return nil
	}
	return trs[0]
}

// Registry returns the quantifier registry the file was parsed with.
func (f *File) Registry() *quantifier.Registry { return f.reg }

// Languages returns the distinct language names declared anywhere in
// the file, default language first.
func (f *File) Languages() []string {
	seen := map[string]bool{DefaultLanguage: true}
	out := []string{DefaultLanguage}
	for _, tr := range f.Translations {
		for _, lb := range tr.Languages {
			if !seen[lb.Language] {
				seen[lb.Language] = true
				out = append(out, lb.Language)
			}
		}
	}
	return out
}
