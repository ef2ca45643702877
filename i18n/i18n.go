// Package i18n localizes statdesc's own CLI messages.
//
// It wraps the gotext library behind T() and N(). Translations are
// embedded in the binary via //go:embed and loaded by Init(). Note
// this is unrelated to the description-file languages the engine
// renders: those come from the description files themselves.
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// locales embeds the compiled translation files, laid out as
// locales/{lang}/LC_MESSAGES/statdesc.po.
//
//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name.
const domain = "statdesc"

var po *gotext.Locale

// Init initializes the i18n system. If lang is empty, it auto-detects
// from LANGUAGE, LC_ALL, LC_MESSAGES and LANG, in that order, matching
// GNU gettext behavior. Call once at program startup.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T translates a message and formats it with vars. Without a
// translation (or before Init) the original string passes through.
// Forwarding msgid and vars directly keeps T a recognized printf
// wrapper, so callers get format checking on constant msgids.
func T(msgid string, vars ...any) string {
	if po == nil {
		if len(vars) == 0 {
			return msgid
		}
		return fmt.Sprintf(msgid, vars...)
	}
	return po.Get(msgid, vars...)
}

// N translates a message with plural forms, selecting by n.
func N(singular, plural string, n int, vars ...any) string {
	if po == nil {
		form := plural
		if n == 1 {
			form = singular
		}
		if len(vars) == 0 {
			return form
		}
		return fmt.Sprintf(form, vars...)
	}
	return po.GetN(singular, plural, n, vars...)
}

// detectLanguage reads the gettext environment variables.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		// LANGUAGE can be a colon-separated list; take the first.
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// Strip encoding suffix (e.g. "ru_RU.UTF-8" -> "ru_RU").
		if idx := strings.IndexByte(val, '.'); idx >= 0 {
			val = val[:idx]
		}
		// "C" and "POSIX" mean no translation.
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return "en"
}
