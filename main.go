// statdesc — stat description toolkit: renders stat values into text and back.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/exiletools/statdesc/cache"
	"github.com/exiletools/statdesc/config"
	"github.com/exiletools/statdesc/descfile"
	"github.com/exiletools/statdesc/i18n"
	"github.com/exiletools/statdesc/langmeta"
	"github.com/spf13/cobra"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "statdesc",
		Short: "Stat description toolkit: render stat values into text and back",
		Long: `statdesc — stat description toolkit.

Works with game stat description files: templates keyed by stat
identifiers, with per-language blocks and value-range selection.

Commands:
  lint        Parse description files and report diagnostics
  stats       Show file statistics (translations, languages, ranges)
  translate   Render stat values into localized description text
  reverse     Recover stat identifiers and values from description text`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flag — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Directory with .statdesc.yaml")

	root.AddCommand(
		newLintCmd(),
		newStatsCmd(),
		newTranslateCmd(),
		newReverseCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("statdesc version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// Shared loading
// ---------------------------------------------------------------------------

// newCache builds a file cache honoring the .statdesc.yaml in rootDir.
// Names handed to Get are paths relative to the current directory.
func newCache(cfg *config.Config) (*cache.Cache, error) {
	opts := []cache.Option{}

	if cfg.CustomFile != "" {
		text, err := os.ReadFile(filepath.Join(rootDir, cfg.CustomFile))
		if err != nil {
			return nil, fmt.Errorf("reading custom file: %w", err)
		}
		opts = append(opts, cache.WithCustomOverlay(string(text)))
	}

	c := cache.New(func(name string) (string, error) {
		data, err := os.ReadFile(name)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}, opts...)

	if cfg.HardcodedFile != "" {
		text, err := os.ReadFile(filepath.Join(rootDir, cfg.HardcodedFile))
		if err != nil {
			return nil, fmt.Errorf("reading hardcoded file: %w", err)
		}
		if err := c.SetHardcoded(cfg.HardcodedFile, string(text)); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func loadFile(path string) (*descfile.File, *config.Config, error) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, nil, err
	}
	c, err := newCache(cfg)
	if err != nil {
		return nil, nil, err
	}
	f, err := c.Get(path)
	if err != nil {
		return nil, nil, err
	}
	return f, cfg, nil
}

// ---------------------------------------------------------------------------
// lint (parse files, report diagnostics)
// ---------------------------------------------------------------------------

func newLintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <file>...",
		Short: "Parse description files and report diagnostics",
		Long: `Parse each description file and report diagnostics.

Syntax errors are fatal per file (unknown quantifiers, malformed
bounds, bad params counts). Non-fatal issues (duplicate identifier
sets) are listed as warnings. Exit status is non-zero if any file
failed to parse.`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runLint(args)
		},
	}

	return cmd
}

func runLint(paths []string) {
	failed := 0

	for _, path := range paths {
		f, _, err := loadFile(path)
		if err != nil {
			logError("%s: %v", path, err)
			failed++
			continue
		}

		for _, d := range f.Diagnostics {
			logWarning("%s: %s", path, d.Message)
		}

		if len(f.Diagnostics) == 0 {
			logSuccess("%s: %d translations, %s", path, len(f.Translations), i18n.T("no diagnostics"))
		} else {
			logInfo("%s: %d translations, %s", path, len(f.Translations),
				i18n.N("%d diagnostic", "%d diagnostics", len(f.Diagnostics), len(f.Diagnostics)))
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// stats (read-only: file statistics)
// ---------------------------------------------------------------------------

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <file>",
		Short: "Show description file statistics",
		Long: `Show statistics for a description file.

Lists translation and language counts plus per-language coverage
relative to the default language.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runStats(args[0])
		},
	}

	return cmd
}

func runStats(path string) {
	f, _, err := loadFile(path)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}

	langs := f.Languages()

	fmt.Fprintf(os.Stderr, "\n%sFile%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "  Path:         %s\n", path)
	fmt.Fprintf(os.Stderr, "  Translations: %d\n", len(f.Translations))
	fmt.Fprintf(os.Stderr, "  Languages:    %d\n", len(langs))
	fmt.Fprintln(os.Stderr)

	fmt.Fprintf(os.Stderr, "%sLanguage Coverage%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "\n%-20s %-24s %-10s %-8s\n", "Lang", "Native", "Covered", "Percent")
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 64))

	total := len(f.Translations)
	for _, lang := range langs {
		covered := languageCoverage(f, lang)
		percent := 0
		if total > 0 {
			percent = covered * 100 / total
		}

		meta := langmeta.Resolve(lang)
		fmt.Fprintf(os.Stderr, "%-20s %-24s %-10d %d%%\n", lang, meta.Native, covered, percent)
	}

	fmt.Fprintln(os.Stderr, strings.Repeat("─", 64))
	fmt.Fprintln(os.Stderr, i18n.T("Parsed %s: %d translations, %d languages", path, total, len(langs)))
	fmt.Fprintln(os.Stderr)
}

// languageCoverage counts the translations declaring a block for lang.
func languageCoverage(f *descfile.File, lang string) int {
	covered := 0
	for _, tr := range f.Translations {
		for _, lb := range tr.Languages {
			if lb.Language == lang {
				covered++
				break
			}
		}
	}
	return covered
}

// ---------------------------------------------------------------------------
// translate (values -> text)
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		ids          string
		valuesArg    string
		lang         string
		placeholders bool
	)

	cmd := &cobra.Command{
		Use:   "translate <file>",
		Short: "Render stat values into localized description text",
		Long: `Render stat values into localized description text.

The identifier set must match a translation in the file exactly, in
order. Values are matched against the translation's ranges; the first
declared range containing all values wins.

Examples:
  # Single stat
  statdesc translate stat_descriptions.txt --id damage_pct --values 15

  # Compound stat with a language
  statdesc translate stat_descriptions.txt --id min_dmg,max_dmg --values 3,7 --lang Russian

  # Show the template shape instead of concrete values
  statdesc translate stat_descriptions.txt --id damage_pct --values 15 --placeholders`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runTranslateCmd(args[0], ids, valuesArg, lang, placeholders)
		},
	}

	cmd.Flags().StringVar(&ids, "id", "", "Stat identifiers (comma-separated, required)")
	cmd.Flags().StringVar(&valuesArg, "values", "", "Stat values (comma-separated integers, required)")
	cmd.Flags().StringVar(&lang, "lang", "", "Target language (default from config)")
	cmd.Flags().BoolVar(&placeholders, "placeholders", false, "Render placeholder letters instead of values")

	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("values")

	_ = cmd.RegisterFlagCompletionFunc("lang", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var names []string
		for name := range langmeta.Registry {
			names = append(names, name)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runTranslateCmd(path, ids, valuesArg, lang string, placeholders bool) {
	f, cfg, err := loadFile(path)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}

	values, err := parseValues(valuesArg)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}

	if lang == "" {
		lang = cfg.DefaultLanguage
	}

	opts := []descfile.TranslateOption{descfile.WithLanguage(lang)}
	if placeholders {
		opts = append(opts, descfile.WithPlaceholders())
	}

	res, err := f.Translate(strings.Split(ids, ","), values, opts...)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}

	for _, d := range res.Diagnostics {
		logWarning("%s", d.Message)
	}

	if res.Text == "" {
		logInfo("No description produced")
		return
	}
	fmt.Println(res.Text)
}

func parseValues(arg string) ([]int, error) {
	parts := strings.Split(arg, ",")
	values := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", p, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// ---------------------------------------------------------------------------
// reverse (text -> values)
// ---------------------------------------------------------------------------

func newReverseCmd() *cobra.Command {
	var (
		lang      string
		tolerance float64
	)

	cmd := &cobra.Command{
		Use:   "reverse <file> <text>",
		Short: "Recover stat identifiers and values from description text",
		Long: `Recover stat identifiers and values from rendered description text.

Every translation in the file is tried; matches are ranked by
specificity (strictly narrower value ranges first, then declaration
order). Quantified values are inverted where the quantifier chain
has an inverse; display rounding is tolerated up to --tolerance
units of the displayed precision.

Examples:
  statdesc reverse stat_descriptions.txt "+15% increased Damage"
  statdesc reverse stat_descriptions.txt "Урон увеличен на 15%" --lang Russian
  statdesc reverse stat_descriptions.txt "12.5% of Damage taken per second" --tolerance 0.5`,
		Args: cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runReverse(args[0], args[1], lang, cmd.Flags().Changed("tolerance"), tolerance)
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Language to match against (default from config)")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 1, "Rounding tolerance in units of displayed precision (0 = exact)")

	return cmd
}

func runReverse(path, text, lang string, tolSet bool, tolerance float64) {
	f, cfg, err := loadFile(path)
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}

	if lang == "" {
		lang = cfg.DefaultLanguage
	}
	if !tolSet {
		tolerance = cfg.Tolerance()
	}

	matches := f.ReverseTranslate(text,
		descfile.WithReverseLanguage(lang),
		descfile.WithTolerance(tolerance),
	)

	if len(matches) == 0 {
		logInfo("%s", i18n.T("no matches"))
		return
	}

	for _, m := range matches {
		vals := make([]string, len(m.Values))
		for i, v := range m.Values {
			vals[i] = strconv.Itoa(v)
		}
		fmt.Printf("%d  %s  [%s]\n", m.Rank, strings.Join(m.IDs, " "), strings.Join(vals, ", "))
	}
}
