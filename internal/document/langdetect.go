package document

import (
	"unicode"

	"golang.org/x/text/language"
)

// Script is the coarse writing-system classification the protector's
// language-pair pass operates on.
type Script int

const (
	ScriptUnknown Script = iota
	ScriptLatin
	ScriptCJK
	ScriptCyrillic
	ScriptArabic
	ScriptHangul
)

// DetectScript guesses a text unit's dominant script by counting letters per
// writing system. It is a heuristic, not configuration: the protector
// compares it against the target language to decide whether to mask foreign
// script runs.
func DetectScript(text string) Script {
	counts := map[Script]int{}
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r), unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r):
			counts[ScriptCJK]++
		case unicode.Is(unicode.Hangul, r):
			counts[ScriptHangul]++
		case unicode.Is(unicode.Cyrillic, r):
			counts[ScriptCyrillic]++
		case unicode.Is(unicode.Arabic, r):
			counts[ScriptArabic]++
		case unicode.Is(unicode.Latin, r):
			counts[ScriptLatin]++
		}
	}

	best, bestCount := ScriptUnknown, 0
	for s, c := range counts {
		if c > bestCount {
			best, bestCount = s, c
		}
	}
	return best
}

// ScriptForLanguage resolves a BCP 47 language tag to its likely script,
// using the tag's script inference. Unparseable tags default to Latin.
func ScriptForLanguage(lang string) Script {
	tag, err := language.Parse(lang)
	if err != nil {
		return ScriptLatin
	}
	script, _ := tag.Script()
	switch script.String() {
	case "Hans", "Hant", "Jpan", "Hani":
		return ScriptCJK
	case "Kore", "Hang":
		return ScriptHangul
	case "Cyrl":
		return ScriptCyrillic
	case "Arab":
		return ScriptArabic
	default:
		return ScriptLatin
	}
}
