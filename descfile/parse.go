package descfile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/exiletools/statdesc/quantifier"
)

var (
	placeholderRe = regexp.MustCompile(`%([0-9]+)%`)
	langHeaderRe  = regexp.MustCompile(`^lang\s+"([^"]+)"\s*\{$`)
)

// Parse reads a complete description file from text and returns the
// built store. Any grammar error is fatal: the error carries the
// 1-based line number and no partial store is returned. reg is the
// quantifier registry template annotations are validated against; nil
// selects the built-in set.
func Parse(text string, reg *quantifier.Registry) (*File, error) {
	if reg == nil {
		reg = quantifier.New()
	}
	p := &parser{reg: reg, lines: strings.Split(text, "\n")}

	var (
		translations []*Translation
		diags        []Diagnostic
		suppressed   []suppressedID
	)
	for {
		line, ln, ok := p.next()
		if !ok {
			break
		}
		if fields := strings.Fields(line); fields[0] == "no_description" && !strings.HasSuffix(line, "{") {
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: no_description directive takes exactly one identifier", ln)
			}
			suppressed = append(suppressed, suppressedID{id: fields[1], line: ln})
			continue
		}
		if !strings.HasSuffix(line, "{") {
			return nil, fmt.Errorf("line %d: expected description block, got %q", ln, line)
		}
		ids := strings.Fields(strings.TrimSuffix(line, "{"))
		if len(ids) == 0 {
			return nil, fmt.Errorf("line %d: description block without identifiers", ln)
		}
		tr, err := p.parseBlock(ids, ln, len(translations))
		if err != nil {
			return nil, err
		}
		translations = append(translations, tr)
	}

	// Top-level no_description directives suppress single-identifier
	// stats: the stat resolves but renders nothing. A directive naming
	// an identifier no block declares is recorded for tooling.
	declared := make(map[string]bool)
	for _, tr := range translations {
		for _, id := range tr.IDs {
			declared[id] = true
		}
	}
	for _, s := range suppressed {
		if !declared[s.id] {
			diags = append(diags, Diagnostic{
				Kind:    DiagUnknownIdentifier,
				Message: fmt.Sprintf("no_description at line %d references undeclared identifier %q", s.line, s.id),
			})
		}
		translations = append(translations, &Translation{
			IDs:           []string{s.id},
			MinParams:     0,
			MaxParams:     1,
			NoDescription: true,
			Languages:     []LanguageBlock{{Language: DefaultLanguage}},
			Index:         len(translations),
		})
	}

	return NewFile(translations, diags, reg), nil
}

type suppressedID struct {
	id   string
	line int
}

type parser struct {
	reg   *quantifier.Registry
	lines []string
	pos   int
}

// next returns the next meaningful line, trimmed, with comments
// stripped, plus its 1-based line number.
func (p *parser) next() (string, int, bool) {
	for p.pos < len(p.lines) {
		line := stripComment(p.lines[p.pos])
		p.pos++
		line = strings.TrimSpace(line)
		if line != "" {
			return line, p.pos, true
		}
	}
	return "", 0, false
}

// stripComment removes a trailing // comment, ignoring slashes inside
// the quoted template string.
func stripComment(line string) string {
	inQuote := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			if inQuote {
				i++
			}
		case '"':
			inQuote = !inQuote
		case '/':
			if !inQuote && i+1 < len(line) && line[i+1] == '/' {
				return line[:i]
			}
		}
	}
	return line
}

// rawRange is a when-line before the block's parameter count is known.
type rawRange struct {
	r    Range
	line int
	// chains and plural are keyed by parameter index until the block
	// is finalized and they can be sized to the parameter count.
	chains map[int][]string
}

func (p *parser) parseBlock(ids []string, headerLine, index int) (*Translation, error) {
	tr := &Translation{IDs: ids, MinParams: -1, MaxParams: -1, Index: index}
	var defRanges []rawRange
	var langs []LanguageBlock
	langRaw := make(map[string][]rawRange)

	for {
		line, ln, ok := p.next()
		if !ok {
			return nil, fmt.Errorf("line %d: unterminated description block for %q", headerLine, strings.Join(ids, " "))
		}
		switch {
		case line == "}":
			return p.finishBlock(tr, defRanges, langs, langRaw, headerLine)
		case line == "no_description":
			tr.NoDescription = true
		case strings.HasPrefix(line, "params"):
			min, max, err := parseParams(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", ln, err)
			}
			if tr.MinParams != -1 {
				return nil, fmt.Errorf("line %d: duplicate params specifier", ln)
			}
			tr.MinParams, tr.MaxParams = min, max
		case strings.HasPrefix(line, "lang"):
			m := langHeaderRe.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("line %d: malformed lang block header %q", ln, line)
			}
			name := m[1]
			if name == DefaultLanguage {
				return nil, fmt.Errorf("line %d: lang %q duplicates the default block", ln, name)
			}
			if _, dup := langRaw[name]; dup {
				return nil, fmt.Errorf("line %d: duplicate lang block %q", ln, name)
			}
			ranges, err := p.parseLangRanges(name, ln)
			if err != nil {
				return nil, err
			}
			langRaw[name] = ranges
			langs = append(langs, LanguageBlock{Language: name})
		default:
			rr, err := p.parseWhenLine(line, ln)
			if err != nil {
				return nil, err
			}
			defRanges = append(defRanges, rr)
		}
	}
}

func (p *parser) parseLangRanges(name string, headerLine int) ([]rawRange, error) {
	var out []rawRange
	for {
		line, ln, ok := p.next()
		if !ok {
			return nil, fmt.Errorf("line %d: unterminated lang block %q", headerLine, name)
		}
		if line == "}" {
			if len(out) == 0 {
				return nil, fmt.Errorf("line %d: lang block %q has no translation strings", headerLine, name)
			}
			return out, nil
		}
		rr, err := p.parseWhenLine(line, ln)
		if err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
}

func parseParams(line string) (min, max int, err error) {
	spec := strings.TrimSpace(strings.TrimPrefix(line, "params"))
	if spec == "" {
		return 0, 0, fmt.Errorf("params specifier missing count")
	}
	if lo, hi, ok := strings.Cut(spec, ".."); ok {
		min, err = strconv.Atoi(lo)
		if err != nil {
			return 0, 0, fmt.Errorf("malformed params range %q", spec)
		}
		max, err = strconv.Atoi(hi)
		if err != nil {
			return 0, 0, fmt.Errorf("malformed params range %q", spec)
		}
		if min < 0 || max < min {
			return 0, 0, fmt.Errorf("params range %q must satisfy 0 <= min <= max", spec)
		}
		return min, max, nil
	}
	n, err := strconv.Atoi(spec)
	if err != nil || n < 0 {
		return 0, 0, fmt.Errorf("malformed params count %q", spec)
	}
	return n, n, nil
}

// parseWhenLine parses `<bound>... "<template>" [%i:chain]...`.
func (p *parser) parseWhenLine(line string, ln int) (rawRange, error) {
	qi := strings.IndexByte(line, '"')
	if qi < 0 {
		return rawRange{}, fmt.Errorf("line %d: missing template string", ln)
	}

	var bounds []Bound
	for _, tok := range strings.Fields(line[:qi]) {
		b, err := parseBound(tok)
		if err != nil {
			return rawRange{}, fmt.Errorf("line %d: %w", ln, err)
		}
		bounds = append(bounds, b)
	}
	if len(bounds) == 0 {
		return rawRange{}, fmt.Errorf("line %d: translation string without bounds", ln)
	}

	raw, rest, err := scanQuoted(line[qi:])
	if err != nil {
		return rawRange{}, fmt.Errorf("line %d: %w", ln, err)
	}
	template := unescape(raw)

	chains := make(map[int][]string)
	for _, tok := range strings.Fields(rest) {
		idx, chain, err := parseAnnotation(tok)
		if err != nil {
			return rawRange{}, fmt.Errorf("line %d: %w", ln, err)
		}
		if _, dup := chains[idx]; dup {
			return rawRange{}, fmt.Errorf("line %d: duplicate quantifier annotation for placeholder %d", ln, idx)
		}
		if err := p.reg.Validate(chain); err != nil {
			return rawRange{}, fmt.Errorf("line %d: %w", ln, err)
		}
		chains[idx] = chain
	}

	r := Range{Bounds: bounds, Template: template}
	compileTemplate(&r)
	return rawRange{r: r, line: ln, chains: chains}, nil
}

// parseBound accepts `#`, `N`, `A..B` (either side `#`), each with an
// optional `!` negation prefix.
func parseBound(tok string) (Bound, error) {
	var b Bound
	spec := tok
	if strings.HasPrefix(spec, "!") {
		b.Negated = true
		spec = spec[1:]
	}
	if spec == "#" {
		b.OpenMin, b.OpenMax = true, true
		return b, nil
	}
	if lo, hi, ok := strings.Cut(spec, ".."); ok {
		var err error
		if lo == "#" {
			b.OpenMin = true
		} else if b.Min, err = strconv.Atoi(lo); err != nil {
			return b, fmt.Errorf("malformed bound %q", tok)
		}
		if hi == "#" {
			b.OpenMax = true
		} else if b.Max, err = strconv.Atoi(hi); err != nil {
			return b, fmt.Errorf("malformed bound %q", tok)
		}
		if !b.OpenMin && !b.OpenMax && b.Min > b.Max {
			return b, fmt.Errorf("bound %q has min > max", tok)
		}
		return b, nil
	}
	v, err := strconv.Atoi(spec)
	if err != nil {
		return b, fmt.Errorf("malformed bound %q", tok)
	}
	b.Min, b.Max = v, v
	return b, nil
}

// scanQuoted consumes a double-quoted string (with backslash escapes)
// at the start of s and returns its raw contents and the remainder.
func scanQuoted(s string) (raw, rest string, err error) {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return s[1:i], s[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("unterminated template string")
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				sb.WriteByte('\n')
				i++
				continue
			case '"', '\\':
				sb.WriteByte(s[i+1])
				i++
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// parseAnnotation parses `%<idx>:<name>[,<name>...]`.
func parseAnnotation(tok string) (int, []string, error) {
	if !strings.HasPrefix(tok, "%") {
		return 0, nil, fmt.Errorf("malformed quantifier annotation %q", tok)
	}
	idxStr, names, ok := strings.Cut(tok[1:], ":")
	if !ok || names == "" {
		return 0, nil, fmt.Errorf("malformed quantifier annotation %q", tok)
	}
	idx, err := strconv.Atoi(idxStr)
	if err != nil || idx < 0 {
		return 0, nil, fmt.Errorf("malformed quantifier annotation %q", tok)
	}
	chain := strings.Split(names, ",")
	for _, name := range chain {
		if name == "" {
			return 0, nil, fmt.Errorf("malformed quantifier annotation %q", tok)
		}
	}
	return idx, chain, nil
}

// compileTemplate splits the template into literal segments and
// placeholder slots.
func compileTemplate(r *Range) {
	idxs := placeholderRe.FindAllStringSubmatchIndex(r.Template, -1)
	start := 0
	for _, m := range idxs {
		r.segments = append(r.segments, r.Template[start:m[0]])
		n, _ := strconv.Atoi(r.Template[m[2]:m[3]])
		r.slots = append(r.slots, n)
		start = m[1]
	}
	r.segments = append(r.segments, r.Template[start:])
}

// finishBlock resolves the parameter count, validates every range
// against it and materializes the per-parameter chain tables.
func (p *parser) finishBlock(tr *Translation, defRanges []rawRange, langs []LanguageBlock, langRaw map[string][]rawRange, headerLine int) (*Translation, error) {
	if len(defRanges) == 0 {
		if tr.NoDescription {
			// A bare no_description block suppresses output entirely.
			if tr.MinParams == -1 {
				tr.MinParams, tr.MaxParams = 0, 1
			}
			tr.Languages = []LanguageBlock{{Language: DefaultLanguage}}
			return tr, nil
		}
		return nil, fmt.Errorf("line %d: block %q has no translation strings", headerLine, tr.Key())
	}

	if tr.MinParams == -1 {
		n := len(defRanges[0].r.Bounds)
		tr.MinParams, tr.MaxParams = n, n
	}

	finalize := func(raws []rawRange) ([]Range, error) {
		out := make([]Range, 0, len(raws))
		for _, rr := range raws {
			if len(rr.r.Bounds) != tr.MaxParams {
				return nil, fmt.Errorf("line %d: %d bounds, want %d for block %q",
					rr.line, len(rr.r.Bounds), tr.MaxParams, tr.Key())
			}
			for _, slot := range rr.r.slots {
				if slot >= tr.MaxParams {
					return nil, fmt.Errorf("line %d: placeholder %%%d%% out of range for block %q",
						rr.line, slot, tr.Key())
				}
			}
			rr.r.chains = make([][]string, tr.MaxParams)
			rr.r.plural = make([]bool, tr.MaxParams)
			for idx, chain := range rr.chains {
				if idx >= tr.MaxParams {
					return nil, fmt.Errorf("line %d: quantifier annotation %%%d out of range for block %q",
						rr.line, idx, tr.Key())
				}
				rr.r.chains[idx] = chain
				rr.r.plural[idx] = p.reg.Pluralizes(chain)
			}
			out = append(out, rr.r)
		}
		return out, nil
	}

	def, err := finalize(defRanges)
	if err != nil {
		return nil, err
	}
	tr.Languages = append(tr.Languages, LanguageBlock{Language: DefaultLanguage, Ranges: def})
	for i := range langs {
		ranges, err := finalize(langRaw[langs[i].Language])
		if err != nil {
			return nil, err
		}
		langs[i].Ranges = ranges
		tr.Languages = append(tr.Languages, langs[i])
	}
	return tr, nil
}
