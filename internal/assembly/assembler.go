// Package assembly turns extracted entity spans into a StructuredRecord.
//
// Conflicts between spans of the same type are resolved last-detected-wins:
// spans are visited in document order and a later value overwrites an earlier one.
package assembly

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"zoo-assistant/internal/domain/model"
)

const (
	// runes between a food span and a weight span for the weight to count as the portion
	feedingQuantityWindow = 20
	// runes around a temperature searched for the body marker
	bodyMarkerWindow = 10
	bodyMarker       = "тела"
	speciesFallback  = "наблюдение за"
	// a species is one or two words ("снежным барсом")
	speciesFallbackWords = 2
)

type Assembler struct{}

func New() *Assembler { return &Assembler{} }

// Assemble never fails: absent categories stay nil.
func (a *Assembler) Assemble(spans []model.EntitySpan, text string) *model.StructuredRecord {
	rec := &model.StructuredRecord{}
	runes := []rune(text)

	ordered := make([]model.EntitySpan, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start < ordered[j].Start
		}
		return ordered[i].End < ordered[j].End
	})

	portion := feedingPortion(ordered)

	for i, s := range ordered {
		switch s.Type {
		case model.EntityPerson:
			if t := strings.TrimSpace(s.Text); t != "" {
				rec.Name = model.StrPtr(t)
			}
		case model.EntityAnimalSpecies:
			rec.Species = model.StrPtr(capitalize(lemma(s)))
		case model.EntityBehavior:
			rec.Behavior = model.StrPtr(lemma(s))
		case model.EntityHealthStatus:
			rec.HealthStatus = model.StrPtr(lemma(s))
		case model.EntityFood:
			rec.Feeding.FoodType = model.StrPtr(lemma(s))
		case model.EntityWeight:
			if i == portion {
				setNonNegative(&rec.Feeding.Quantity, s.Value)
			} else {
				setNonNegative(&rec.Measurements.Weight, s.Value)
			}
		case model.EntityLength:
			setNonNegative(&rec.Measurements.Length, s.Value)
		case model.EntityHeight:
			setNonNegative(&rec.Measurements.Height, s.Value)
		case model.EntityTemperature:
			if nearBodyMarker(runes, s) {
				setNonNegative(&rec.Measurements.Temperature, s.Value)
			} else {
				setNonNegative(&rec.Environment.Temperature, s.Value)
			}
		case model.EntityHumidity:
			if s.Value != nil && *s.Value <= 100 {
				setNonNegative(&rec.Environment.Humidity, s.Value)
			}
		case model.EntityAge:
			setNonNegative(&rec.Measurements.Age, s.Value)
		case model.EntityEnclosure:
			rec.Enclosure = model.StrPtr(capitalize(strings.TrimSpace(s.Text)))
		case model.EntityDate:
			rec.ObservationDate = model.StrPtr(s.Text)
		case model.EntityTime:
			rec.ObservationTime = model.StrPtr(s.Text)
		}
	}

	if rec.Species == nil {
		if sp := speciesAfterPhrase(text, ordered); sp != "" {
			rec.Species = model.StrPtr(capitalize(sp))
		}
	}
	return rec
}

// feedingPortion returns the index of the weight closest to the last food span
// within feedingQuantityWindow, preferring the later one on ties, or -1.
func feedingPortion(ordered []model.EntitySpan) int {
	food := -1
	for i, s := range ordered {
		if s.Type == model.EntityFood {
			food = i
		}
	}
	if food < 0 {
		return -1
	}
	best, bestDist := -1, feedingQuantityWindow
	for i, s := range ordered {
		if s.Type != model.EntityWeight {
			continue
		}
		d := s.Start - ordered[food].Start
		if d < 0 {
			d = -d
		}
		if d < feedingQuantityWindow && d <= bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func nearBodyMarker(runes []rune, s model.EntitySpan) bool {
	from := s.Start - bodyMarkerWindow
	if from < 0 {
		from = 0
	}
	to := s.End + bodyMarkerWindow
	if to > len(runes) {
		to = len(runes)
	}
	if from >= to {
		return false
	}
	return strings.Contains(strings.ToLower(string(runes[from:to])), bodyMarker)
}

// speciesAfterPhrase returns up to speciesFallbackWords words following
// "наблюдение за", stopping at punctuation, the next extracted span or a filler
// word. Recognizer output is unpunctuated, so the tail must be bounded.
func speciesAfterPhrase(text string, ordered []model.EntitySpan) string {
	runes := []rune(text)
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}
	phrase := []rune(speciesFallback)
	at := indexRunes(lower, phrase)
	if at < 0 {
		return ""
	}
	from := at + len(phrase)
	limit := len(runes)
	for _, s := range ordered {
		if s.Start >= from && s.Start < limit {
			limit = s.Start
		}
	}

	var words []string
	i := from
	for i < limit && len(words) < speciesFallbackWords {
		for i < limit && unicode.IsSpace(runes[i]) {
			i++
		}
		if i >= limit || !unicode.IsLetter(runes[i]) {
			break
		}
		j := i
		for j < limit && (unicode.IsLetter(runes[j]) || runes[j] == '-') {
			j++
		}
		w := string(lower[i:j])
		if speciesStopWords[w] {
			break
		}
		words = append(words, w)
		i = j
	}
	out := strings.Join(words, " ")
	if r := []rune(out); len(r) > model.MaxIdentityLen {
		out = string(r[:model.MaxIdentityLen])
	}
	return out
}

// words that end a species phrase in running speech
var speciesStopWords = map[string]bool{
	"сегодня": true, "вчера": true, "сейчас": true, "утром": true, "днем": true, "днём": true,
	"вечером": true, "ночью": true, "он": true, "она": true, "оно": true, "они": true,
	"и": true, "в": true, "на": true, "с": true, "у": true, "по": true, "который": true,
	"которая": true, "было": true, "был": true, "была": true, "весь": true, "вся": true,
}

func indexRunes(s, sub []rune) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		match := true
		for k := range sub {
			if s[i+k] != sub[k] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func setNonNegative(dst **float64, v *float64) {
	if v == nil || *v < 0 {
		return
	}
	val := *v
	*dst = &val
}

func lemma(s model.EntitySpan) string {
	if s.Normalized != "" {
		return s.Normalized
	}
	return strings.ToLower(strings.TrimSpace(s.Text))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
