package extraction

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"zoo-assistant/internal/domain/model"
	"zoo-assistant/internal/domain/ports/adapter"
)

var _ adapter.EntityExtractor = (*RuleExtractor)(nil)

// RuleExtractor finds entities with dictionary lookups, number+unit rules,
// regex patterns and a few context cues. It is immutable after construction
// and safe for concurrent use.
type RuleExtractor struct {
	c *compiled
}

func NewRuleExtractor(r *Rules) *RuleExtractor {
	return &RuleExtractor{c: r.compile()}
}

// Extract returns spans of the active types, sorted by start offset.
func (e *RuleExtractor) Extract(ctx context.Context, text string, activeTypes []string) ([]model.EntitySpan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	active := make(map[string]bool, len(activeTypes))
	for _, t := range activeTypes {
		active[t] = true
	}
	if len(active) == 0 || strings.TrimSpace(text) == "" {
		return []model.EntitySpan{}, nil
	}

	text = strings.ToValidUTF8(text, "")
	runes := []rune(text)
	toks := tokenize(runes)

	var spans []model.EntitySpan
	spans = append(spans, e.dictionarySpans(toks, active)...)
	spans = append(spans, e.measureSpans(runes, toks, active)...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	spans = append(spans, e.patternSpans(text, active)...)
	if active[model.EntityPerson] {
		spans = append(spans, e.nameSpans(runes, toks)...)
	}

	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		if spans[i].End != spans[j].End {
			return spans[i].End < spans[j].End
		}
		return spans[i].Type < spans[j].Type
	})
	return spans, nil
}

func (e *RuleExtractor) dictionarySpans(toks []token, active map[string]bool) []model.EntitySpan {
	var out []model.EntitySpan
	for _, t := range toks {
		if t.kind != tokWord {
			continue
		}
		for _, d := range e.c.stems[stem(t.lower)] {
			if !active[d.typ] {
				continue
			}
			out = append(out, model.EntitySpan{
				Type:       d.typ,
				Text:       t.text,
				Start:      t.start,
				End:        t.end,
				Normalized: d.lemma,
			})
		}
	}
	return out
}

const maxAgeYears = 200

type measureHit struct {
	typ    string
	factor float64
}

func (e *RuleExtractor) matchUnit(t token) (measureHit, bool) {
	if t.kind == tokNumber {
		return measureHit{}, false
	}
	for _, typ := range measureOrder {
		for _, u := range e.c.measures[typ] {
			if u.matches(t.lower) {
				return measureHit{typ: typ, factor: u.Factor}, true
			}
		}
	}
	return measureHit{}, false
}

func (e *RuleExtractor) measureSpans(runes []rune, toks []token, active map[string]bool) []model.EntitySpan {
	var out []model.EntitySpan
	for i := 0; i+1 < len(toks); i++ {
		if toks[i].kind != tokNumber {
			continue
		}
		hit, ok := e.matchUnit(toks[i+1])
		if !ok {
			continue
		}
		start, end := toks[i].start, toks[i+1].end
		value := toks[i].value * hit.factor
		next := i + 2

		// compound quantities: "4 метра 30 сантиметров", "1 килограмм 200 грамм"
		for next+1 < len(toks) && toks[next].kind == tokNumber {
			h2, ok := e.matchUnit(toks[next+1])
			if !ok || h2.typ != hit.typ || h2.factor >= hit.factor {
				break
			}
			part := toks[next].value * h2.factor
			if value < 0 {
				part = -part
			}
			value += part
			end = toks[next+1].end
			hit.factor = h2.factor
			next += 2
		}

		typ := hit.typ
		if typ == model.EntityAge && value > maxAgeYears {
			// "2023 года" is a year, not an age
			i = next - 1
			continue
		}
		if typ == model.EntityLength && active[model.EntityHeight] && e.cueBefore(runes, start, e.c.cues.Height) {
			typ = model.EntityHeight
		}
		if active[typ] {
			out = append(out, numericSpan(runes, typ, start, end, value))
		}
		if typ == model.EntityPercentage && active[model.EntityHumidity] && e.cueBefore(runes, start, e.c.cues.Humidity) {
			out = append(out, numericSpan(runes, model.EntityHumidity, start, end, value))
		}
		i = next - 1
	}
	return out
}

func numericSpan(runes []rune, typ string, start, end int, value float64) model.EntitySpan {
	v := roundTo(value, 4)
	return model.EntitySpan{
		Type:  typ,
		Text:  string(runes[start:end]),
		Start: start,
		End:   end,
		Value: &v,
	}
}

// cueBefore reports whether any cue prefix starts a word in the window before pos.
func (e *RuleExtractor) cueBefore(runes []rune, pos int, cues []string) bool {
	from := pos - e.c.cues.Window
	if from < 0 {
		from = 0
	}
	for _, t := range tokenize(runes[from:pos]) {
		for _, c := range cues {
			if t.kind == tokWord && strings.HasPrefix(t.lower, c) {
				return true
			}
		}
	}
	return false
}

func (e *RuleExtractor) patternSpans(text string, active map[string]bool) []model.EntitySpan {
	var out []model.EntitySpan
	for _, p := range e.c.patterns {
		if !active[p.typ] {
			continue
		}
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			start := utf8.RuneCountInString(text[:loc[0]])
			m := text[loc[0]:loc[1]]
			out = append(out, model.EntitySpan{
				Type:       p.typ,
				Text:       m,
				Start:      start,
				End:        start + utf8.RuneCountInString(m),
				Normalized: normalizeWord(m),
			})
		}
	}
	return out
}

// nameSpans finds animal names: words after a name cue ("по кличке Багира"),
// and runs of capitalized words that are neither sentence-initial nor dictionary terms.
func (e *RuleExtractor) nameSpans(runes []rune, toks []token) []model.EntitySpan {
	var out []model.EntitySpan
	taken := make(map[int]bool)

	for i := range toks {
		for _, cue := range e.c.names {
			if !e.cueAt(toks, i, cue) {
				continue
			}
			j := i + len(cue)
			if j >= len(toks) || toks[j].kind != tokWord || e.isDictionaryWord(toks[j].lower) {
				continue
			}
			k := j + 1
			for k < len(toks) && toks[k].kind == tokWord && isCapitalized(toks[k].text) && !toks[k].sentenceStart && !e.isDictionaryWord(toks[k].lower) {
				k++
			}
			out = append(out, nameSpan(runes, toks[j].start, toks[k-1].end))
			for x := j; x < k; x++ {
				taken[x] = true
			}
		}
	}

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if taken[i] || t.kind != tokWord || t.sentenceStart || !isCapitalized(t.text) || e.isDictionaryWord(t.lower) {
			continue
		}
		k := i + 1
		for k < len(toks) && !taken[k] && toks[k].kind == tokWord && isCapitalized(toks[k].text) && !toks[k].sentenceStart && !e.isDictionaryWord(toks[k].lower) && toks[k].start-toks[k-1].end <= 1 {
			k++
		}
		out = append(out, nameSpan(runes, t.start, toks[k-1].end))
		i = k - 1
	}
	return out
}

func nameSpan(runes []rune, start, end int) model.EntitySpan {
	text := string(runes[start:end])
	return model.EntitySpan{Type: model.EntityPerson, Text: text, Start: start, End: end, Normalized: text}
}

func (e *RuleExtractor) cueAt(toks []token, i int, cue []string) bool {
	if i+len(cue) > len(toks) {
		return false
	}
	for k, w := range cue {
		if toks[i+k].kind != tokWord || toks[i+k].lower != w {
			return false
		}
	}
	return true
}

func (e *RuleExtractor) isDictionaryWord(lower string) bool {
	if len(e.c.stems[stem(lower)]) > 0 {
		return true
	}
	for _, units := range e.c.measures {
		for _, u := range units {
			if u.matches(lower) {
				return true
			}
		}
	}
	return false
}

func roundTo(v float64, places int) float64 {
	p := 1.0
	for i := 0; i < places; i++ {
		p *= 10
	}
	if v < 0 {
		return -float64(int64(-v*p+0.5)) / p
	}
	return float64(int64(v*p+0.5)) / p
}
