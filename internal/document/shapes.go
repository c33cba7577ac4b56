package document

import (
	"regexp"
	"strings"
)

// The spreadsheet cell model used elsewhere in the pipeline does not expose
// drawing text, so shape text is swapped at the ZIP level: text-run tags in
// the drawing parts are rewritten textually, everything else passes through
// untouched.

var shapeTextRunRe = regexp.MustCompile(`(<a:t[^>]*>)([^<]*)(</a:t>)`)

// ShapeText is one extracted drawing text entry. The drawing format exposes
// no stable per-shape identifier that survives a round trip through the
// workbook-editing library, so entries are keyed by part path plus a
// sequential index within that part.
type ShapeText struct {
	PartPath string
	Index    int
	Text     string
}

// HasShapeText is the fast pre-check: it reports whether any drawing part
// contains a recognizable text-run tag, so the whole shape pipeline can be
// skipped when there is nothing to do.
func HasShapeText(c *Container) bool {
	for _, name := range c.DrawingParts() {
		content, ok := c.ReadPart(name)
		if !ok {
			continue
		}
		if strings.Contains(content, "<a:t>") || strings.Contains(content, "<a:t ") {
			return true
		}
	}
	return false
}

// ExtractShapeTexts collects every text-run node's content across all
// drawing parts as a flat list, in document order per part.
func ExtractShapeTexts(c *Container) []ShapeText {
	var out []ShapeText
	for _, name := range c.DrawingParts() {
		content, ok := c.ReadPart(name)
		if !ok {
			continue
		}
		index := 0
		for _, m := range shapeTextRunRe.FindAllStringSubmatch(content, -1) {
			text := strings.TrimSpace(unescapeXML(m[2]))
			if text == "" {
				continue
			}
			out = append(out, ShapeText{PartPath: name, Index: index, Text: text})
			index++
		}
	}
	return out
}

// ReplaceShapeTexts substitutes translated strings into the drawing parts.
// Replacement is keyed by the value of the original (trimmed) text, not by
// position: two shapes with literally identical original text receive the
// same translation. That is correct behavior, but it means duplicate
// originals cannot resolve to context-specific translations — a known
// limitation of the format, not a defect.
func ReplaceShapeTexts(c *Container, translations map[string]string) {
	if len(translations) == 0 {
		return
	}
	for _, name := range c.DrawingParts() {
		content, ok := c.ReadPart(name)
		if !ok {
			continue
		}
		replaced := shapeTextRunRe.ReplaceAllStringFunc(content, func(match string) string {
			m := shapeTextRunRe.FindStringSubmatch(match)
			key := strings.TrimSpace(unescapeXML(m[2]))
			translated, ok := translations[key]
			if !ok || translated == key {
				return match
			}
			return m[1] + escapeXML(translated) + m[3]
		})
		if replaced != content {
			c.WritePart(name, replaced)
		}
	}
}
