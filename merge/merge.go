// Package merge combines two parsed description files,
// the way the game overlays custom description sets on stock ones.
package merge

import (
	"github.com/exiletools/statdesc/descfile"
)

// Merge produces a new store containing base's translations with
// overlay's applied on top. An overlay entry whose IdentifierKey
// matches an existing entry replaces it in place (overlays are
// corrections); new overlay entries are appended after the base
// entries. Diagnostics from both inputs carry over.
//
// Both inputs stay untouched; translations are shared, not copied,
// which is safe because they are immutable.
func Merge(base, overlay *descfile.File) *descfile.File {
	byKey := make(map[string]int, len(base.Translations))
	out := make([]*descfile.Translation, 0, len(base.Translations)+len(overlay.Translations))

	for _, tr := range base.Translations {
		key := tr.Key()
		if _, dup := byKey[key]; !dup {
			byKey[key] = len(out)
		}
		out = append(out, tr)
	}

	for _, tr := range overlay.Translations {
		if i, ok := byKey[tr.Key()]; ok {
			out[i] = tr
			continue
		}
		byKey[tr.Key()] = len(out)
		out = append(out, tr)
	}

	// Renumber so declaration order of the merged store is coherent.
	renumbered := make([]*descfile.Translation, len(out))
	for i, tr := range out {
		cp := *tr
		cp.Index = i
		renumbered[i] = &cp
	}

	// Duplicate-key diagnostics are re-derived while indexing the
	// merged translations, so only the other kinds carry over.
	var diags []descfile.Diagnostic
	for _, src := range [][]descfile.Diagnostic{base.Diagnostics, overlay.Diagnostics} {
		for _, d := range src {
			if d.Kind != descfile.DiagDuplicateIdentifier {
				diags = append(diags, d)
			}
		}
	}

	return descfile.NewFile(renumbered, diags, base.Registry())
}
