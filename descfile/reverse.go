package descfile

import (
	"fmt"
	"math"
	"strings"
)

// Match is one reverse-translation candidate.
type Match struct {
	// IDs is the candidate's ordered identifier tuple.
	IDs []string
	// Values are the recovered raw values.
	Values []int
	// Language is the language the matching range belongs to.
	Language string
	// Rank orders ambiguous matches, 0 being the most specific.
	Rank int
}

// ReverseOption adjusts a ReverseTranslate call.
type ReverseOption func(*reverseOptions)

type reverseOptions struct {
	language  string
	keys      [][]string
	tolerance float64
}

// WithReverseLanguage matches against the given language's templates
// instead of the default language.
func WithReverseLanguage(name string) ReverseOption {
	return func(o *reverseOptions) { o.language = name }
}

// WithKeys restricts the candidate set to the given identifier tuples.
// The default is every key in the store.
func WithKeys(keys [][]string) ReverseOption {
	return func(o *reverseOptions) { o.keys = keys }
}

// WithTolerance sets how far, in units of displayed precision, a
// recovered value may sit from an exact reproduction of the captured
// text before the match is rejected. Rounding quantifiers lose
// information, so the default of 1 accepts values one displayed step
// away; 0 demands exact reproduction.
func WithTolerance(units float64) ReverseOption {
	return func(o *reverseOptions) { o.tolerance = units }
}

// ReverseTranslate recovers the identifier tuples and raw values that
// could have produced text. Literal template segments must appear in
// the input, in order, as exact substrings; the numeric captures
// between them are run through the inverse quantifier chains. Ranges
// whose chains are not invertible never match, and flag-only templates
// match on whole-string equality only.
//
// All successful matches are returned, most specific first: a match
// whose bounds form a strict subset of another's outranks it, and
// remaining ties keep declaration order.
func (f *File) ReverseTranslate(text string, opts ...ReverseOption) []Match {
	o := reverseOptions{language: DefaultLanguage, tolerance: 1}
	for _, opt := range opts {
		opt(&o)
	}

	candidates := f.Translations
	if o.keys != nil {
		candidates = candidates[:0:0]
		for _, key := range o.keys {
			if tr := f.Lookup(key); tr != nil {
				candidates = append(candidates, tr)
			}
		}
	}

	type scored struct {
		m      Match
		bounds []Bound
	}
	var found []scored
	seen := make(map[string]bool)
	for _, tr := range candidates {
		lb := tr.Language(o.language)
		if lb == nil {
			continue
		}
		for ri := range lb.Ranges {
			rg := &lb.Ranges[ri]
			vals, ok := f.matchRange(text, rg, o.tolerance)
			if !ok {
				continue
			}
			// The same translation can match the same values through
			// several ranges; keep the earliest.
			key := tr.Key() + "|" + fmt.Sprint(vals)
			if seen[key] {
				continue
			}
			seen[key] = true
			found = append(found, scored{
				m:      Match{IDs: tr.IDs, Values: vals, Language: lb.Language},
				bounds: rg.Bounds,
			})
		}
	}

	// Rank by emission: a candidate is emitted once no unemitted
	// candidate's bounds form a strict subset of its own, scanning in
	// declaration order. Strict subsets therefore always outrank their
	// supersets, and everything the relation cannot order keeps
	// declaration order. The relation is irreflexive and transitive, so
	// every pass emits at least one candidate.
	out := make([]Match, 0, len(found))
	emitted := make([]bool, len(found))
	for len(out) < len(found) {
		for i := range found {
			if emitted[i] {
				continue
			}
			ready := true
			for j := range found {
				if j != i && !emitted[j] && strictSubset(found[j].bounds, found[i].bounds) {
					ready = false
					break
				}
			}
			if !ready {
				continue
			}
			found[i].m.Rank = len(out)
			out = append(out, found[i].m)
			emitted[i] = true
			break
		}
	}
	return out
}

// matchRange attempts to match text against one range's template and
// recover the raw values.
func (f *File) matchRange(text string, rg *Range, tol float64) ([]int, bool) {
	if len(rg.slots) == 0 {
		// Flag-only template: exact literal equality, nothing to
		// disambiguate with.
		if text != rg.Template {
			return nil, false
		}
		vals := make([]int, len(rg.Bounds))
		for i, b := range rg.Bounds {
			vals[i], _ = b.anchor()
		}
		return vals, true
	}

	caps, ok := matchSegments(text, f.segmentForms(rg))
	if !ok {
		return nil, false
	}

	// A parameter may appear in several placeholders; the captures
	// must agree.
	capByParam := make(map[int]string, len(rg.slots))
	for i, slot := range rg.slots {
		if prev, dup := capByParam[slot]; dup && prev != caps[i] {
			return nil, false
		}
		capByParam[slot] = caps[i]
	}

	vals := make([]int, len(rg.Bounds))
	lossy := false
	for p := range vals {
		s, captured := capByParam[p]
		if !captured {
			// No placeholder for this position: fall back to the value
			// the bound pins down, or its edge.
			vals[p], _ = rg.Bounds[p].anchor()
			continue
		}
		chain := rg.chains[p]
		displayed, err := f.reg.Parse(chain, s)
		if err != nil {
			return nil, false
		}
		raw, err := f.reg.Invert(chain, displayed)
		if err != nil {
			return nil, false
		}
		v, exact, ok := f.recoverInt(chain, raw, displayed, s, tol)
		if !ok {
			return nil, false
		}
		if !exact {
			lossy = true
		}
		if !rg.Bounds[p].Contains(v) {
			return nil, false
		}
		vals[p] = v
	}

	if !lossy {
		// Every capture reproduced exactly, so the full re-rendering
		// must equal the input; this also rejects mismatched plural
		// unit forms.
		if rendered, _ := f.renderRange(rg, vals, false); rendered != text {
			return nil, false
		}
	}
	return vals, true
}

// recoverInt turns the inverted (possibly fractional) raw value back
// into an integer. Exact recovery means re-applying the forward chain
// reproduces the captured text; otherwise rounding quantifiers may
// accept the nearest integer within tol units of displayed precision.
func (f *File) recoverInt(chain []string, raw, displayed float64, captured string, tol float64) (v int, exact, ok bool) {
	tried := make(map[int]bool, 3)
	for _, c := range []int{int(math.Round(raw)), int(math.Floor(raw)), int(math.Ceil(raw))} {
		if tried[c] {
			continue
		}
		tried[c] = true
		tv, err := f.reg.Apply(chain, float64(c))
		if err == nil && f.reg.Format(chain, tv) == captured {
			return c, true, true
		}
	}
	if tol <= 0 {
		return 0, false, false
	}
	prec := f.reg.Precision(chain)
	if prec == 0 {
		// Full-precision chains must reproduce exactly.
		return 0, false, false
	}
	c := int(math.Round(raw))
	tv, err := f.reg.Apply(chain, float64(c))
	if err != nil {
		return 0, false, false
	}
	if math.Abs(tv-displayed) <= tol*prec+1e-9 {
		return c, false, true
	}
	return 0, false, false
}

// segmentForms returns the acceptable literal forms per segment: the
// template text itself, plus the pluralized variant when the
// preceding placeholder's chain pluralizes the unit word.
func (f *File) segmentForms(rg *Range) [][]string {
	forms := make([][]string, len(rg.segments))
	for i, seg := range rg.segments {
		forms[i] = []string{seg}
		if i > 0 && rg.plural[rg.slots[i-1]] {
			if alt := pluralizeSegment(seg, true); alt != seg {
				forms[i] = append(forms[i], alt)
			}
		}
	}
	return forms
}

// matchSegments locates the literal segments in text, in order, and
// returns the captured gaps between them. It backtracks over
// occurrences and plural variants; inputs are short, so the search is
// cheap.
func matchSegments(text string, forms [][]string) ([]string, bool) {
	caps := make([]string, len(forms)-1)
	var rec func(pos, i int) bool
	rec = func(pos, i int) bool {
		if i == len(forms) {
			return pos == len(text)
		}
		last := i == len(forms)-1
		for _, form := range forms[i] {
			switch {
			case i == 0:
				if strings.HasPrefix(text, form) && rec(len(form), 1) {
					return true
				}
			case form == "" && last:
				// Template ends with a placeholder: capture to the end.
				caps[i-1] = text[pos:]
				if rec(len(text), i+1) {
					return true
				}
			case form == "":
				// Adjacent placeholders leave no boundary to split on;
				// the empty capture fails numeric parsing downstream.
				caps[i-1] = ""
				if rec(pos, i+1) {
					return true
				}
			default:
				for from := pos; ; {
					idx := strings.Index(text[from:], form)
					if idx < 0 {
						break
					}
					start := from + idx
					caps[i-1] = text[pos:start]
					if rec(start+len(form), i+1) {
						return true
					}
					from = start + 1
				}
			}
		}
		return false
	}
	if !rec(0, 0) {
		return nil, false
	}
	return caps, true
}

// strictSubset reports whether every bound in a sits within the
// corresponding bound in b, with at least one strictly narrower.
func strictSubset(a, b []Bound) bool {
	if len(a) != len(b) {
		return false
	}
	narrower := false
	for i := range a {
		within, strict := boundWithin(a[i], b[i])
		if !within {
			return false
		}
		if strict {
			narrower = true
		}
	}
	return narrower
}

func boundWithin(a, b Bound) (within, strict bool) {
	if a.Negated || b.Negated {
		// Negated bounds only compare equal-to-equal.
		return a == b, false
	}
	minOK := b.OpenMin || (!a.OpenMin && a.Min >= b.Min)
	maxOK := b.OpenMax || (!a.OpenMax && a.Max <= b.Max)
	if !minOK || !maxOK {
		return false, false
	}
	strict = (b.OpenMin && !a.OpenMin) || (b.OpenMax && !a.OpenMax) ||
		(!b.OpenMin && !a.OpenMin && a.Min > b.Min) ||
		(!b.OpenMax && !a.OpenMax && a.Max < b.Max)
	return true, strict
}
