package quantifier

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// scaled builds the common linear quantifier v*mul/div + add with an
// exact inverse and shortest-form display.
func scaled(name string, mul, div, add float64) Quantifier {
	return Quantifier{
		Name:       name,
		Forward:    func(v float64) float64 { return v*mul/div + add },
		Inverse:    func(v float64) float64 { return (v - add) * div / mul },
		HasInverse: true,
	}
}

var trailingZeros = regexp.MustCompile(`\.?0+$`)

// scaledDP is scaled with display rounded to dp decimal places. With
// fixed set, trailing zeros are kept ("1.50"); otherwise they are
// trimmed ("1.5"). The rounding makes the inverse lossy, which the
// reverse engine compensates for via the Precision field.
func scaledDP(name string, mul, div, add float64, dp int, fixed bool) Quantifier {
	q := scaled(name, mul, div, add)
	q.Precision = math.Pow(10, -float64(dp))
	q.Format = func(v float64) string {
		s := strconv.FormatFloat(v, 'f', dp, 64)
		if !fixed && dp > 0 {
			s = trailingZeros.ReplaceAllString(s, "")
		}
		return s
	}
	return q
}

// builtins returns the quantifier set matching the game data. Names
// and arithmetic follow the stat description files shipped with the
// game; dp-suffixed variants only differ in display rounding.
func builtins() []Quantifier {
	qs := []Quantifier{
		scaled("negate", -1, 1, 0),
		scaled("double", 2, 1, 0),
		scaled("negate_and_double", -2, 1, 0),
		scaled("times_twenty", 20, 1, 0),
		scaled("times_one_point_five", 1.5, 1, 0),
		scaled("multiply_by_four", 4, 1, 0),
		scaled("multiply_by_ten", 10, 1, 0),
		scaled("divide_by_three", 1, 3, 0),
		scaled("divide_by_four", 1, 4, 0),
		scaled("divide_by_five", 1, 5, 0),
		scaled("divide_by_six", 1, 6, 0),
		scaled("divide_by_twelve", 1, 12, 0),
		scaled("divide_by_twenty", 1, 20, 0),
		scaled("divide_by_fifty", 1, 50, 0),
		scaled("divide_by_one_hundred", 1, 100, 0),
		scaled("divide_by_one_hundred_and_negate", 1, -100, 0),
		scaled("divide_by_one_thousand", 1, 1000, 0),
		scaled("deciseconds_to_seconds", 1, 10, 0),
		scaled("milliseconds_to_seconds", 1, 1000, 0),
		scaled("milliseconds_to_seconds_halved", 1, 500, 0),
		scaled("old_leech_percent", 1, 5, 0),
		scaled("old_leech_permyriad", 1, 500, 0),
		scaled("multiplicative_damage_modifier", 1, 1, 100),
		scaled("multiplicative_permyriad_damage_modifier", 1, 100, 100),
		scaled("plus_two_hundred", 1, 1, 200),
		scaled("invert_chance", -1, 1, 100),
		scaled("locations_to_metres", 1, 10, 0),
		scaled("30%_of_value", 30, 100, 0),
		scaled("60%_of_value", 60, 100, 0),

		scaledDP("divide_by_two_0dp", 1, 2, 0, 0, false),
		scaledDP("divide_by_ten_0dp", 1, 10, 0, 0, false),
		scaledDP("divide_by_ten_1dp", 1, 10, 0, 1, true),
		scaledDP("divide_by_ten_1dp_if_required", 1, 10, 0, 1, false),
		scaledDP("divide_by_fifteen_0dp", 1, 15, 0, 0, false),
		scaledDP("divide_by_twenty_then_double_0dp", 2, 20, 0, 0, false),
		scaledDP("divide_by_one_hundred_0dp", 1, 100, 0, 0, false),
		scaledDP("divide_by_one_hundred_1dp", 1, 100, 0, 1, true),
		scaledDP("divide_by_one_hundred_2dp", 1, 100, 0, 2, true),
		scaledDP("divide_by_one_hundred_2dp_if_required", 1, 100, 0, 2, false),
		scaledDP("milliseconds_to_seconds_0dp", 1, 1000, 0, 0, false),
		scaledDP("milliseconds_to_seconds_1dp", 1, 1000, 0, 1, true),
		scaledDP("milliseconds_to_seconds_2dp", 1, 1000, 0, 2, true),
		scaledDP("milliseconds_to_seconds_2dp_if_required", 1, 1000, 0, 2, false),
		scaledDP("per_minute_to_per_second", 1, 60, 0, 1, false),
		scaledDP("per_minute_to_per_second_0dp", 1, 60, 0, 0, false),
		scaledDP("per_minute_to_per_second_1dp", 1, 60, 0, 1, true),
		scaledDP("per_minute_to_per_second_2dp", 1, 60, 0, 2, true),
		scaledDP("per_minute_to_per_second_2dp_if_required", 1, 60, 0, 2, false),
	}

	qs = append(qs,
		// display_signed prefixes positive values with "+"
		// ("+15" instead of "15"); the value itself is untouched.
		Quantifier{
			Name:       "display_signed",
			HasInverse: true,
			Format: func(v float64) string {
				if v > 0 {
					return "+" + FormatValue(v)
				}
				return FormatValue(v)
			},
		},
		// pluralize adjusts the unit word following the placeholder
		// ("1 second" vs "2 seconds"); the value itself is untouched.
		Quantifier{
			Name:          "pluralize",
			HasInverse:    true,
			PluralizeUnit: true,
		},
	)

	return qs
}

// Lookup resolves between raw stat values and display text for
// quantifiers whose output depends on external game data (for example
// indexed gem or item-class names).
type Lookup struct {
	// Forward maps a raw value to its display text.
	Forward func(v int) (string, bool)
	// Reverse maps display text back to the raw value. Nil makes the
	// installed quantifier non-invertible.
	Reverse func(s string) (int, bool)
}

// InstallDataQuantifiers registers game-version-dependent lookup
// quantifiers. Hosts call this before parsing any description file
// that references the installed names; an unreferenced name is
// harmless.
func InstallDataQuantifiers(r *Registry, lookups map[string]Lookup) error {
	for name, lu := range lookups {
		q := Quantifier{
			Name:       name,
			HasInverse: lu.Reverse != nil,
		}
		fwd := lu.Forward
		q.Format = func(v float64) string {
			if s, ok := fwd(int(math.Round(v))); ok {
				return s
			}
			return FormatValue(v)
		}
		if rev := lu.Reverse; rev != nil {
			q.Parse = func(s string) (float64, error) {
				v, ok := rev(s)
				if !ok {
					return 0, fmt.Errorf("no reverse mapping for %q", s)
				}
				return float64(v), nil
			}
		}
		if err := r.Register(q); err != nil {
			return err
		}
	}
	return nil
}

// PluralizeWord returns the canonical English plural of a unit word.
func PluralizeWord(word string) string {
	switch {
	case word == "":
		return word
	case strings.HasSuffix(word, "y") && len(word) > 1 && !strings.ContainsRune("aeiou", rune(word[len(word)-2])):
		return word[:len(word)-1] + "ies"
	case strings.HasSuffix(word, "s"), strings.HasSuffix(word, "x"),
		strings.HasSuffix(word, "ch"), strings.HasSuffix(word, "sh"):
		return word + "es"
	default:
		return word + "s"
	}
}
