// Package langmeta maps the language names used by description files
// ("French", "SimplifiedChinese", ...) to BCP-47 tags and native
// display names for CLI output.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes one description-file language.
type Meta struct {
	// Name is the name as it appears in lang blocks.
	Name string
	// Tag is the matching BCP-47 language tag.
	Tag language.Tag
	// Native is the language's name in itself.
	Native string
}

// Registry lists the languages the game data ships, keyed by the
// exact name used in lang blocks. The default ("English") block of
// every description carries no lang header.
var Registry = map[string]Meta{
	"English":            meta("English", "en"),
	"French":             meta("French", "fr"),
	"German":             meta("German", "de"),
	"Japanese":           meta("Japanese", "ja"),
	"Korean":             meta("Korean", "ko"),
	"Portuguese":         meta("Portuguese", "pt-BR"),
	"Russian":            meta("Russian", "ru"),
	"SimplifiedChinese":  meta("SimplifiedChinese", "zh-Hans"),
	"Spanish":            meta("Spanish", "es"),
	"Thai":               meta("Thai", "th"),
	"TraditionalChinese": meta("TraditionalChinese", "zh-Hant"),
}

func meta(name, tag string) Meta {
	t := language.MustParse(tag)
	return Meta{Name: name, Tag: t, Native: display.Self.Name(t)}
}

// Resolve returns metadata for a description-file language name.
// Unknown names are parsed as a BCP-47 tag as a best effort; names
// that are neither resolve to an undetermined tag.
func Resolve(name string) Meta {
	if m, ok := Registry[name]; ok {
		return m
	}
	if m, ok := Registry[canonicalize(name)]; ok {
		return m
	}
	if t, err := language.Parse(name); err == nil {
		return Meta{Name: name, Tag: t, Native: display.Self.Name(t)}
	}
	return Meta{Name: name, Tag: language.Und, Native: name}
}

// Known reports whether name is a language the game data ships.
func Known(name string) bool {
	if _, ok := Registry[name]; ok {
		return true
	}
	_, ok := Registry[canonicalize(name)]
	return ok
}

// canonicalize tolerates spacing and case variants such as
// "simplified chinese" or "FRENCH".
func canonicalize(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, "")
}
