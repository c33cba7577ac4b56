package document

import (
	"strings"
)

// ApplyTranslation writes a translated string back into the paragraph's run
// nodes and updates FullText.
//
// A single-run paragraph gets the text wholesale. A multi-run paragraph is
// split proportionally by each run's original character-length share, with
// rounding remainders appended to the last run. This is a best-effort
// heuristic: word boundaries are not re-derived, but the full translated
// length is always distributed and no run is left undefined.
//
// When the paragraph carries line breaks and the translation contains the
// matching number of newline-separated segments, each segment is distributed
// within its run group so that text lands on the correct side of every break
// node. Otherwise newlines are flattened to spaces and the whole string is
// distributed across all runs.
func (p *ParsedParagraph) ApplyTranslation(translated string) {
	runs := p.Runs()
	if len(runs) == 0 {
		return
	}

	groups := p.runGroups()
	segments := strings.Split(translated, "\n")

	if len(segments) == len(groups) {
		for i, group := range groups {
			distribute(group, segments[i])
		}
	} else {
		flat := strings.ReplaceAll(translated, "\n", " ")
		distribute(runs, flat)
	}

	p.rebuildFullText()
}

// runGroups partitions the paragraph's runs at break boundaries. Fields do
// not split groups; they are simply not written to.
func (p *ParsedParagraph) runGroups() [][]*TextRun {
	groups := [][]*TextRun{nil}
	for i := range p.Items {
		switch p.Items[i].Kind {
		case ItemRun:
			groups[len(groups)-1] = append(groups[len(groups)-1], p.Items[i].Run)
		case ItemBreak:
			groups = append(groups, nil)
		}
	}
	return groups
}

// distribute splits text across runs proportionally to their original
// lengths. The cut points are cumulative, so every rune of text is assigned
// exactly once and the remainder lands in the last run.
func distribute(runs []*TextRun, text string) {
	if len(runs) == 0 {
		return
	}
	if len(runs) == 1 {
		runs[0].setText(text)
		return
	}

	total := 0
	for _, r := range runs {
		total += len([]rune(r.Text))
	}
	chars := []rune(text)

	if total == 0 {
		// All runs were empty; park everything in the last one.
		for _, r := range runs[:len(runs)-1] {
			r.setText("")
		}
		runs[len(runs)-1].setText(text)
		return
	}

	cum := 0
	prev := 0
	for i, r := range runs {
		var cut int
		if i == len(runs)-1 {
			cut = len(chars)
		} else {
			cum += len([]rune(r.Text))
			cut = len(chars) * cum / total
		}
		r.setText(string(chars[prev:cut]))
		prev = cut
	}
}

// setText mutates the run's text node in place and keeps the model in sync.
func (r *TextRun) setText(text string) {
	r.Text = text
	r.TextNode.SetText(text)
}

// rebuildFullText re-derives FullText from the mutated items, preserving the
// runs-plus-breaks invariant.
func (p *ParsedParagraph) rebuildFullText() {
	var full strings.Builder
	for i := range p.Items {
		switch p.Items[i].Kind {
		case ItemRun:
			full.WriteString(p.Items[i].Run.Text)
		case ItemBreak:
			full.WriteString("\n")
		case ItemField:
			full.WriteString(p.Items[i].FieldText)
		}
	}
	p.FullText = full.String()
}

// ApplyRowTranslation writes a translated row string back into its cells.
// The row was joined as "cell1 | cell2 | cell3"; the translation is split on
// the same delimiter in column order. A cell with no corresponding segment
// is left untouched.
func ApplyRowTranslation(row []*TableCell, translated string) {
	segments := strings.Split(translated, "|")
	for i, cell := range row {
		if i >= len(segments) {
			break
		}
		cell.applyText(strings.TrimSpace(segments[i]))
	}
}

// applyText distributes a cell's translated text over its paragraphs. When
// the newline-separated segment count matches the paragraph count each
// paragraph gets its own segment; otherwise the first paragraph receives the
// whole text and the rest keep their original content.
func (c *TableCell) applyText(text string) {
	if len(c.Paragraphs) == 0 {
		return
	}
	segments := strings.Split(text, "\n")
	if len(segments) == len(c.Paragraphs) {
		for i, para := range c.Paragraphs {
			para.ApplyTranslation(segments[i])
		}
		return
	}
	c.Paragraphs[0].ApplyTranslation(strings.ReplaceAll(text, "\n", " "))
}
