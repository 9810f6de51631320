package extraction

import (
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokNumber
	tokSymbol
)

// token offsets are rune indexes into the source text.
type token struct {
	kind  tokenKind
	text  string
	lower string
	start int
	end   int
	value float64
	// sentenceStart is set for the first word after start-of-text or . ! ?
	sentenceStart bool
}

func tokenize(runes []rune) []token {
	var out []token
	sentenceStart := true
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsLetter(r):
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || runes[j] == '-' && j+1 < len(runes) && unicode.IsLetter(runes[j+1])) {
				j++
			}
			text := string(runes[i:j])
			out = append(out, token{kind: tokWord, text: text, lower: normalizeWord(text), start: i, end: j, sentenceStart: sentenceStart})
			sentenceStart = false
			i = j
		case unicode.IsDigit(r):
			j := i
			for j < len(runes) && unicode.IsDigit(runes[j]) {
				j++
			}
			// one decimal separator, either comma or dot
			if j+1 < len(runes) && (runes[j] == ',' || runes[j] == '.') && unicode.IsDigit(runes[j+1]) {
				j++
				for j < len(runes) && unicode.IsDigit(runes[j]) {
					j++
				}
			}
			start := i
			if hasMinusSign(runes, i) {
				start = i - 1
			}
			text := string(runes[start:j])
			v, err := strconv.ParseFloat(strings.ReplaceAll(string(runes[i:j]), ",", "."), 64)
			if err == nil {
				if start < i {
					v = -v
				}
				out = append(out, token{kind: tokNumber, text: text, lower: text, start: start, end: j, value: v})
			}
			sentenceStart = false
			i = j
		case r == '°':
			j := i + 1
			if j < len(runes) && (runes[j] == 'C' || runes[j] == 'c' || runes[j] == 'С' || runes[j] == 'с') {
				j++
			}
			text := string(runes[i:j])
			out = append(out, token{kind: tokSymbol, text: text, lower: normalizeWord(text), start: i, end: j})
			i = j
		case r == '%' || r == '№':
			out = append(out, token{kind: tokSymbol, text: string(r), lower: string(r), start: i, end: i + 1})
			i++
		case r == '.' || r == '!' || r == '?':
			sentenceStart = true
			i++
		default:
			i++
		}
	}
	return applySpokenMinus(mergeNumerals(out))
}

// hasMinusSign reports a '-' or '−' directly before runes[i] that is not a
// hyphen or range dash ("5-7", "вольер-3").
func hasMinusSign(runes []rune, i int) bool {
	if i == 0 || (runes[i-1] != '-' && runes[i-1] != '−') {
		return false
	}
	if i >= 2 {
		prev := runes[i-2]
		if unicode.IsLetter(prev) || unicode.IsDigit(prev) {
			return false
		}
	}
	return true
}

const spokenMinus = "минус"

// applySpokenMinus folds "минус" into the number that follows it.
func applySpokenMinus(toks []token) []token {
	out := make([]token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.kind == tokWord && t.lower == spokenMinus && i+1 < len(toks) && toks[i+1].kind == tokNumber && toks[i+1].value >= 0 {
			n := toks[i+1]
			text := t.text + " " + n.text
			out = append(out, token{
				kind:          tokNumber,
				text:          text,
				lower:         text,
				start:         t.start,
				end:           n.end,
				value:         -n.value,
				sentenceStart: t.sentenceStart,
			})
			i++
			continue
		}
		out = append(out, t)
	}
	return out
}

var numeralUnits = map[string]float64{
	"ноль": 0, "один": 1, "одна": 1, "одно": 1, "два": 2, "две": 2, "три": 3, "четыре": 4,
	"пять": 5, "шесть": 6, "семь": 7, "восемь": 8, "девять": 9, "десять": 10,
	"одиннадцать": 11, "двенадцать": 12, "тринадцать": 13, "четырнадцать": 14,
	"пятнадцать": 15, "шестнадцать": 16, "семнадцать": 17, "восемнадцать": 18,
	"девятнадцать": 19,
}

var numeralTens = map[string]float64{
	"двадцать": 20, "тридцать": 30, "сорок": 40, "пятьдесят": 50,
	"шестьдесят": 60, "семьдесят": 70, "восемьдесят": 80, "девяносто": 90,
}

var numeralHundreds = map[string]float64{
	"сто": 100, "двести": 200, "триста": 300, "четыреста": 400, "пятьсот": 500,
	"шестьсот": 600, "семьсот": 700, "восемьсот": 800, "девятьсот": 900,
}

// mergeNumerals folds spoken numbers ("сто пятьдесят") into number tokens.
// Speech recognizers usually emit numbers as words.
func mergeNumerals(toks []token) []token {
	out := make([]token, 0, len(toks))
	for i := 0; i < len(toks); {
		if toks[i].kind != tokWord {
			out = append(out, toks[i])
			i++
			continue
		}
		total, j := 0.0, i
		// grammar: [hundreds] [tens] [units]; each slot at most once, in order
		slot := 0
		for j < len(toks) && toks[j].kind == tokWord {
			w := toks[j].lower
			if v, ok := numeralHundreds[w]; ok && slot < 1 {
				total += v
				slot = 1
			} else if v, ok := numeralTens[w]; ok && slot < 2 {
				total += v
				slot = 2
			} else if v, ok := numeralUnits[w]; ok && slot < 3 && !(slot == 2 && v >= 10) {
				total += v
				slot = 3
			} else {
				break
			}
			j++
		}
		if j == i {
			out = append(out, toks[i])
			i++
			continue
		}
		first, last := toks[i], toks[j-1]
		out = append(out, token{
			kind:          tokNumber,
			text:          joinText(toks[i:j]),
			lower:         joinText(toks[i:j]),
			start:         first.start,
			end:           last.end,
			value:         total,
			sentenceStart: first.sentenceStart,
		})
		i = j
	}
	return out
}

func joinText(toks []token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.text
	}
	return strings.Join(parts, " ")
}

func isCapitalized(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
