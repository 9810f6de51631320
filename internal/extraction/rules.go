package extraction

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"zoo-assistant/internal/domain/model"

	"github.com/kljensen/snowball/russian"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// Rules is the declarative rule table. Adding vocabulary or a pattern is a
// YAML change; the extractor code stays the same.
type Rules struct {
	Dictionaries map[string][]string `yaml:"dictionaries"`
	Measures     map[string][]Unit   `yaml:"measures"`
	Patterns     map[string]string   `yaml:"patterns"`
	Cues         Cues                `yaml:"cues"`
}

type Unit struct {
	Exact  string  `yaml:"exact"`
	Prefix string  `yaml:"prefix"`
	Factor float64 `yaml:"factor"`
}

func (u Unit) matches(lower string) bool {
	if u.Exact != "" {
		return lower == u.Exact
	}
	return strings.HasPrefix(lower, u.Prefix)
}

type Cues struct {
	Height   []string `yaml:"height"`
	Humidity []string `yaml:"humidity"`
	Name     []string `yaml:"name"`
	Window   int      `yaml:"window"`
}

// measureOrder fixes which measure claims a number+unit pair first.
var measureOrder = []string{
	model.EntityWeight, model.EntityLength, model.EntityTemperature,
	model.EntityPercentage, model.EntityAge,
}

// DefaultRules returns the embedded rule table.
func DefaultRules() (*Rules, error) {
	return ParseRules(defaultRules)
}

// LoadRules reads a rule table from path, or the embedded defaults when path is empty.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return ParseRules(b)
}

func ParseRules(b []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Rules) validate() error {
	for typ, words := range r.Dictionaries {
		if !model.IsKnownEntityType(typ) {
			return fmt.Errorf("rules: unknown dictionary type %q", typ)
		}
		if len(words) == 0 {
			return fmt.Errorf("rules: dictionary %q is empty", typ)
		}
		for _, w := range words {
			if strings.TrimSpace(w) == "" || strings.ContainsAny(strings.TrimSpace(w), " \t") {
				return fmt.Errorf("rules: dictionary %q: entry %q must be a single word", typ, w)
			}
		}
	}
	for typ, units := range r.Measures {
		if !model.IsKnownEntityType(typ) {
			return fmt.Errorf("rules: unknown measure type %q", typ)
		}
		for i := range units {
			u := &units[i]
			if (u.Exact == "") == (u.Prefix == "") {
				return fmt.Errorf("rules: measure %q unit #%d needs exactly one of exact/prefix", typ, i)
			}
			if u.Factor < 0 {
				return fmt.Errorf("rules: measure %q unit #%d has negative factor", typ, i)
			}
			if u.Factor == 0 {
				u.Factor = 1
			}
			u.Exact = normalizeWord(u.Exact)
			u.Prefix = normalizeWord(u.Prefix)
		}
	}
	for typ, expr := range r.Patterns {
		if !model.IsKnownEntityType(typ) {
			return fmt.Errorf("rules: unknown pattern type %q", typ)
		}
		if _, err := regexp.Compile("(?i)" + expr); err != nil {
			return fmt.Errorf("rules: pattern %q: %w", typ, err)
		}
	}
	if r.Cues.Window <= 0 {
		r.Cues.Window = 25
	}
	return nil
}

// compiled is the matcher-ready form of Rules.
type compiled struct {
	// stem -> (type, canonical entry)
	stems    map[string][]dictEntry
	measures map[string][]Unit
	patterns []namedPattern
	cues     Cues
	names    [][]string
}

type dictEntry struct {
	typ   string
	lemma string
}

type namedPattern struct {
	typ string
	re  *regexp.Regexp
}

func (r *Rules) compile() *compiled {
	c := &compiled{
		stems:    make(map[string][]dictEntry),
		measures: r.Measures,
		cues:     r.Cues,
	}
	types := make([]string, 0, len(r.Dictionaries))
	for typ := range r.Dictionaries {
		types = append(types, typ)
	}
	sort.Strings(types)
	for _, typ := range types {
		for _, w := range r.Dictionaries[typ] {
			lemma := normalizeWord(w)
			st := stem(lemma)
			c.stems[st] = append(c.stems[st], dictEntry{typ: typ, lemma: lemma})
		}
	}
	ptypes := make([]string, 0, len(r.Patterns))
	for typ := range r.Patterns {
		ptypes = append(ptypes, typ)
	}
	sort.Strings(ptypes)
	for _, typ := range ptypes {
		c.patterns = append(c.patterns, namedPattern{typ: typ, re: regexp.MustCompile("(?i)" + r.Patterns[typ])})
	}
	for _, cue := range r.Cues.Name {
		c.names = append(c.names, strings.Fields(normalizeWord(cue)))
	}
	return c
}

func normalizeWord(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "ё", "е")
}

func stem(lower string) string {
	return russian.Stem(lower, false)
}
