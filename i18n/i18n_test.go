package i18n

import "testing"

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func TestDetectLanguagePriorityAndNormalization(t *testing.T) {
	t.Run("LANGUAGE has highest priority", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "ru_RU.UTF-8:en_US")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		if got := detectLanguage(); got != "ru_RU" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "ru_RU")
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "fr_FR.UTF-8")

		if got := detectLanguage(); got != "fr_FR" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "fr_FR")
		}
	})

	t.Run("falls back to en", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := detectLanguage(); got != "en" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "en")
		}
	})
}

func TestTAndNFallbackWhenUninitialized(t *testing.T) {
	old := po
	po = nil
	t.Cleanup(func() { po = old })

	if got := T("no matches"); got != "no matches" {
		t.Fatalf("T fallback = %q, want %q", got, "no matches")
	}

	if got := N("%d diagnostic", "%d diagnostics", 1); got != "%d diagnostic" {
		t.Fatalf("N singular fallback = %q", got)
	}

	if got := N("%d diagnostic", "%d diagnostics", 2); got != "%d diagnostics" {
		t.Fatalf("N plural fallback = %q", got)
	}
}

func TestTAndNFormatArguments(t *testing.T) {
	old := po
	po = nil
	t.Cleanup(func() { po = old })

	got := T("Parsed %s: %d translations, %d languages", "f.txt", 3, 2)
	if got != "Parsed f.txt: 3 translations, 2 languages" {
		t.Fatalf("T with vars = %q", got)
	}

	if got := N("%d diagnostic", "%d diagnostics", 2, 2); got != "2 diagnostics" {
		t.Fatalf("N with vars = %q", got)
	}
	if got := N("%d diagnostic", "%d diagnostics", 1, 1); got != "1 diagnostic" {
		t.Fatalf("N singular with vars = %q", got)
	}
}

func TestInitLoadsEmbeddedRussian(t *testing.T) {
	old := po
	t.Cleanup(func() { po = old })

	Init("ru")
	if got := T("no matches"); got != "совпадений нет" {
		t.Fatalf("T(ru) = %q", got)
	}
}
