package descfile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/exiletools/statdesc/quantifier"
)

// ErrParameterCount is returned by Translate when the number of
// supplied values falls outside the translation's declared parameter
// count. Unlike a missing key this is caller misuse, so it surfaces
// as an error rather than a diagnostic.
var ErrParameterCount = errors.New("parameter count mismatch")

// Result is the outcome of one Translate call.
type Result struct {
	// Text is the rendered sentence; empty when nothing matched.
	Text string
	// Language is the language actually used, after fallback.
	Language string
	// Values are the raw values consumed, including zero padding for
	// omitted optional parameters.
	Values []int
	// Diagnostics accumulated during this call. Never fatal.
	Diagnostics []Diagnostic
}

// TranslateOption adjusts a Translate call.
type TranslateOption func(*translateOptions)

type translateOptions struct {
	language     string
	placeholders bool
}

// WithLanguage selects the output language. Languages the block does
// not declare fall back to the default language silently.
func WithLanguage(name string) TranslateOption {
	return func(o *translateOptions) { o.language = name }
}

// WithPlaceholders substitutes placeholder letters (x, y, z, ...)
// instead of formatted numbers. Values are still required to select
// the correct range wording.
func WithPlaceholders() TranslateOption {
	return func(o *translateOptions) { o.placeholders = true }
}

// Translate renders the description for the exact ordered identifier
// tuple and its raw values.
//
// A key the store does not contain, or values no declared range
// accepts, yields an empty Text plus a missing-identifier diagnostic —
// never an error — so batch callers can continue. The only error case
// is a value count outside the declared parameter count.
func (f *File) Translate(ids []string, values []int, opts ...TranslateOption) (Result, error) {
	o := translateOptions{language: DefaultLanguage}
	for _, opt := range opts {
		opt(&o)
	}
	res := Result{Language: o.language}

	tr := f.Lookup(ids)
	if tr == nil {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Kind:    DiagMissingIdentifier,
			Message: fmt.Sprintf("no translation for key %q", strings.Join(ids, " ")),
		})
		return res, nil
	}

	if len(values) < tr.MinParams || len(values) > tr.MaxParams {
		return Result{}, fmt.Errorf("%w: key %q got %d values, want %d..%d",
			ErrParameterCount, tr.Key(), len(values), tr.MinParams, tr.MaxParams)
	}
	vals := make([]int, tr.MaxParams)
	copy(vals, values)
	if len(values) < tr.MaxParams {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Kind:    DiagGeneric,
			Message: fmt.Sprintf("key %q: %d trailing values padded with 0", tr.Key(), tr.MaxParams-len(values)),
		})
	}
	res.Values = vals

	lb := tr.Language(o.language)
	res.Language = lb.Language

	rg := selectRange(lb, vals)
	if rg == nil {
		if !tr.NoDescription {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Kind:    DiagMissingIdentifier,
				Message: fmt.Sprintf("key %q: no range matches values %v", tr.Key(), vals),
			})
		}
		return res, nil
	}

	text, diags := f.renderRange(rg, vals, o.placeholders)
	res.Text = text
	res.Diagnostics = append(res.Diagnostics, diags...)
	return res, nil
}

// selectRange returns the first range, in declaration order, whose
// bounds accept every value. First match is authoritative even when a
// later range would match more tightly.
func selectRange(lb *LanguageBlock, vals []int) *Range {
	for i := range lb.Ranges {
		rg := &lb.Ranges[i]
		ok := true
		for j, b := range rg.Bounds {
			if !b.Contains(vals[j]) {
				ok = false
				break
			}
		}
		if ok {
			return rg
		}
	}
	return nil
}

// renderRange substitutes the transformed values into the template.
func (f *File) renderRange(rg *Range, vals []int, placeholders bool) (string, []Diagnostic) {
	var diags []Diagnostic
	var sb strings.Builder
	pluralizeNext := false
	for i, seg := range rg.segments {
		sb.WriteString(pluralizeSegment(seg, pluralizeNext))
		pluralizeNext = false
		if i >= len(rg.slots) {
			break
		}
		slot := rg.slots[i]
		chain := rg.chains[slot]
		tv, err := f.reg.Apply(chain, float64(vals[slot]))
		if err != nil {
			// Chains are validated at parse time; an unknown name here
			// means the registry changed under us. Fall back to raw.
			diags = append(diags, Diagnostic{Kind: DiagGeneric, Message: err.Error()})
			tv = float64(vals[slot])
		}
		if placeholders {
			sb.WriteString(placeholderLetter(i))
		} else {
			sb.WriteString(f.reg.Format(chain, tv))
		}
		pluralizeNext = rg.plural[slot] && tv != 1
	}
	// The final segment was written by the loop's break iteration.
	return sb.String(), diags
}

// placeholderLetter returns the conventional placeholder for the i-th
// placeholder occurrence: x, y, z, then A, B, C, ...
func placeholderLetter(i int) string {
	if i < 3 {
		return string(rune('x' + i))
	}
	return string(rune('A' + i - 3))
}

// pluralizeSegment pluralizes the unit word starting the segment when
// the preceding placeholder's quantifier chain requests it.
func pluralizeSegment(seg string, plural bool) string {
	if !plural {
		return seg
	}
	i := 0
	for i < len(seg) && seg[i] == ' ' {
		i++
	}
	j := i
	for j < len(seg) && isWordByte(seg[j]) {
		j++
	}
	if i == j {
		return seg
	}
	return seg[:i] + quantifier.PluralizeWord(seg[i:j]) + seg[j:]
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
