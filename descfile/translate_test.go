package descfile

import (
	"errors"
	"testing"
)

func TestTranslateSimple(t *testing.T) {
	f := mustParse(t, sampleFile)

	res, err := f.Translate([]string{"damage_pct"}, []int{15})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "+15% increased Damage" {
		t.Fatalf("text = %q", res.Text)
	}
	if res.Language != DefaultLanguage {
		t.Fatalf("language = %q, want %q", res.Language, DefaultLanguage)
	}
	if len(res.Diagnostics) != 0 {
		t.Fatalf("diagnostics = %v, want none", res.Diagnostics)
	}
}

func TestTranslateCompound(t *testing.T) {
	f := mustParse(t, sampleFile)

	res, err := f.Translate([]string{"min_dmg", "max_dmg"}, []int{3, 7})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "Deals 3 to 7 Damage" {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestTranslateQuantified(t *testing.T) {
	f := mustParse(t, sampleFile)

	// Negative resistance renders through the negate chain.
	res, err := f.Translate([]string{"cold_res"}, []int{-30})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "30% increased Cold Resistance" {
		t.Fatalf("text = %q", res.Text)
	}

	// Positive values hit the first range, which has no chain.
	res, err = f.Translate([]string{"cold_res"}, []int{30})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "30% reduced Cold Resistance" {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestTranslateLanguageFallback(t *testing.T) {
	f := mustParse(t, sampleFile)

	res, err := f.Translate([]string{"damage_pct"}, []int{15}, WithLanguage("Russian"))
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "Урон увеличен на 15%" {
		t.Fatalf("russian text = %q", res.Text)
	}
	if res.Language != "Russian" {
		t.Fatalf("language = %q, want Russian", res.Language)
	}

	// cold_res declares no Russian block: silent fallback to default.
	res, err = f.Translate([]string{"cold_res"}, []int{30}, WithLanguage("Russian"))
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "30% reduced Cold Resistance" {
		t.Fatalf("fallback text = %q", res.Text)
	}
	if res.Language != DefaultLanguage {
		t.Fatalf("fallback language = %q, want %q", res.Language, DefaultLanguage)
	}
}

func TestTranslateMissingKeyIsDiagnostic(t *testing.T) {
	f := mustParse(t, sampleFile)

	res, err := f.Translate([]string{"does_not_exist"}, []int{1})
	if err != nil {
		t.Fatalf("missing key must not error: %v", err)
	}
	if res.Text != "" {
		t.Fatalf("text = %q, want empty", res.Text)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != DiagMissingIdentifier {
		t.Fatalf("diagnostics = %v, want one missing-identifier", res.Diagnostics)
	}
}

func TestTranslateParameterCount(t *testing.T) {
	f := mustParse(t, sampleFile)

	_, err := f.Translate([]string{"min_dmg", "max_dmg"}, []int{3})
	if !errors.Is(err, ErrParameterCount) {
		t.Fatalf("error = %v, want ErrParameterCount", err)
	}
	_, err = f.Translate([]string{"damage_pct"}, []int{1, 2})
	if !errors.Is(err, ErrParameterCount) {
		t.Fatalf("error = %v, want ErrParameterCount", err)
	}
}

func TestTranslateOptionalParamsPadded(t *testing.T) {
	f := mustParse(t, `stun {
 params 1..2
 # # "%0%% chance to Stun for %1%ms"
}`)

	res, err := f.Translate([]string{"stun"}, []int{25})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "25% chance to Stun for 0ms" {
		t.Fatalf("text = %q", res.Text)
	}
	if len(res.Values) != 2 || res.Values[1] != 0 {
		t.Fatalf("values = %v, want padded [25 0]", res.Values)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Kind != DiagGeneric {
		t.Fatalf("diagnostics = %v, want one padding warning", res.Diagnostics)
	}
}

func TestTranslateRangeFirstMatchWins(t *testing.T) {
	f := mustParse(t, `frenzy {
 0..10 "low tier"
 5..15 "high tier"
}`)

	res, err := f.Translate([]string{"frenzy"}, []int{7})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	// 7 satisfies both ranges; the first declared wins.
	if res.Text != "low tier" {
		t.Fatalf("text = %q, want low tier", res.Text)
	}

	res, err = f.Translate([]string{"frenzy"}, []int{12})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "high tier" {
		t.Fatalf("text = %q, want high tier", res.Text)
	}

	// Out of every range: empty text plus a diagnostic.
	res, err = f.Translate([]string{"frenzy"}, []int{99})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "" || len(res.Diagnostics) != 1 {
		t.Fatalf("text = %q diags = %v, want miss diagnostic", res.Text, res.Diagnostics)
	}
}

func TestTranslateNoDescription(t *testing.T) {
	f := mustParse(t, sampleFile)

	// Suppressed stat resolves without output and without complaint.
	res, err := f.Translate([]string{"hidden_internal_stat"}, []int{5})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "" || len(res.Diagnostics) != 0 {
		t.Fatalf("suppressed stat: text=%q diags=%v", res.Text, res.Diagnostics)
	}
}

func TestTranslatePluralizedUnit(t *testing.T) {
	f := mustParse(t, sampleFile)

	res, err := f.Translate([]string{"buff_duration"}, []int{1000})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "Buff lasts 1 second" {
		t.Fatalf("text = %q", res.Text)
	}

	res, err = f.Translate([]string{"buff_duration"}, []int{2500})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "Buff lasts 2.5 seconds" {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestTranslatePlaceholders(t *testing.T) {
	f := mustParse(t, sampleFile)

	res, err := f.Translate([]string{"min_dmg", "max_dmg"}, []int{3, 7}, WithPlaceholders())
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.Text != "Deals x to y Damage" {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestPlaceholderLetterSequence(t *testing.T) {
	want := []string{"x", "y", "z", "A", "B"}
	for i, w := range want {
		if got := placeholderLetter(i); got != w {
			t.Fatalf("placeholderLetter(%d) = %q, want %q", i, got, w)
		}
	}
}
