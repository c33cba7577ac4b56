package document

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
)

// BlacklistEntry is a caller-supplied sensitive term that must never reach
// the translation backend.
type BlacklistEntry struct {
	Term          string
	CaseSensitive bool
}

// ProtectionMap records one text unit's placeholder round trip: an ordered
// mapping from token to original substring. It never crosses unit boundaries
// and is discarded after the unit's translation is restored.
type ProtectionMap struct {
	tokens    []string
	originals []string
}

// Len returns the number of masked spans.
func (pm *ProtectionMap) Len() int {
	return len(pm.tokens)
}

func (pm *ProtectionMap) add(original string) string {
	token := fmt.Sprintf("__P%d__", len(pm.tokens))
	pm.tokens = append(pm.tokens, token)
	pm.originals = append(pm.originals, original)
	return token
}

// Restore replaces each token with its original substring. Tokens are
// restored newest-first so that a span masked inside another masked span
// (a URL inside a code span) unwraps correctly. Tokens the backend dropped
// from its output are left as literal dead tokens rather than silently
// vanishing, so reconstruction failures stay visible.
func (pm *ProtectionMap) Restore(text string) string {
	for i := len(pm.tokens) - 1; i >= 0; i-- {
		text = strings.ReplaceAll(text, pm.tokens[i], pm.originals[i])
	}
	return text
}

// Masking patterns. The number and script passes need lookaround so they
// cannot re-match digits or letters inside already-inserted __P<n>__ tokens;
// those use regexp2. The rest are plain regexp.
var (
	urlRe   = regexp.MustCompile("(?i)\\b(?:https?|ftp)://[^\\s<>\"'`)\\]]+")
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	codeRe  = regexp.MustCompile("`[^`\n]+`")

	numberUnitRe = regexp2.MustCompile(
		`(?<![\w$€£¥])(?:[$€£¥]\s?\d+(?:[.,]\d+)*|\d+(?:[.,]\d+)*\s?(?i:%|°[CF]|km|cm|mm|kg|mg|ml|kb|mb|gb|tb|ghz|mhz|hz|px|pt|ms|fps|dpi|usd|eur|cny|jpy)(?![\w%]))`, 0)
	bareNumberRe = regexp2.MustCompile(`(?<!\w)\d+(?:[.,]\d+)*(?!\w)`, 0)

	latinRunRe = regexp2.MustCompile(
		`(?<![\w@.])[A-Za-z][A-Za-z0-9'’\-]*(?:[ ][A-Za-z][A-Za-z0-9'’\-]*)*(?![\w@])`, 0)
	cjkRunRe = regexp.MustCompile(`[\p{Han}\p{Hiragana}\p{Katakana}ー]+`)
)

// Protector masks non-translatable substrings with positional tokens before a
// unit is sent to translation. Masking both cuts token usage and keeps URLs,
// emails, code and numeric literals from being mangled.
type Protector struct {
	blacklist []*regexp.Regexp
}

// NewProtector compiles the caller's blacklist. Entries are matched
// literally, optionally case-insensitively.
func NewProtector(blacklist []BlacklistEntry) *Protector {
	p := &Protector{}
	for _, e := range blacklist {
		if e.Term == "" {
			continue
		}
		pattern := regexp.QuoteMeta(e.Term)
		if !e.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		p.blacklist = append(p.blacklist, re)
	}
	return p
}

// Mask replaces protected substrings with __P<n>__ tokens. Passes run in a
// fixed order — blacklist terms, URLs, emails, inline code, numbers with
// units, bare numbers — each scanning only what the previous pass left
// unmasked, followed by an optional script pass selected from the language
// pair. sourceLang may be empty, in which case the source script is detected
// from the text itself. The returned map is scoped to this unit only.
func (p *Protector) Mask(text, sourceLang, targetLang string) (string, *ProtectionMap) {
	pm := &ProtectionMap{}

	for _, re := range p.blacklist {
		text = re.ReplaceAllStringFunc(text, pm.add)
	}
	text = urlRe.ReplaceAllStringFunc(text, pm.add)
	text = emailRe.ReplaceAllStringFunc(text, pm.add)
	text = codeRe.ReplaceAllStringFunc(text, pm.add)
	text = replace2(numberUnitRe, text, pm)
	text = replace2(bareNumberRe, text, pm)
	text = p.maskScriptRuns(text, sourceLang, targetLang, pm)

	return text, pm
}

// maskScriptRuns masks script runs that should survive translation verbatim:
// Latin brand words when translating between two non-Latin languages, and
// CJK runs when translating from a Latin source to a non-CJK target.
func (p *Protector) maskScriptRuns(text, sourceLang, targetLang string, pm *ProtectionMap) string {
	if targetLang == "" {
		return text
	}

	source := ScriptForLanguage(sourceLang)
	if sourceLang == "" {
		source = DetectScript(text)
	}
	target := ScriptForLanguage(targetLang)

	switch {
	case source != ScriptLatin && source != ScriptUnknown && target != ScriptLatin:
		return replace2(latinRunRe, text, pm)
	case source == ScriptLatin && target != ScriptCJK:
		return cjkRunRe.ReplaceAllStringFunc(text, pm.add)
	}
	return text
}

func replace2(re *regexp2.Regexp, text string, pm *ProtectionMap) string {
	out, err := re.ReplaceFunc(text, func(m regexp2.Match) string {
		return pm.add(m.String())
	}, -1, -1)
	if err != nil {
		return text
	}
	return out
}
