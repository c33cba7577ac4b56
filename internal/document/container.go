package document

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
)

// Part name patterns the pipelines operate on. Everything else in the package
// is passed through byte-for-byte.
var (
	slidePartRe   = regexp.MustCompile(`^ppt/slides/slide\d+\.xml$`)
	layoutPartRe  = regexp.MustCompile(`^ppt/slideLayouts/slideLayout\d+\.xml$`)
	masterPartRe  = regexp.MustCompile(`^ppt/slideMasters/slideMaster\d+\.xml$`)
	notesPartRe   = regexp.MustCompile(`^ppt/notesSlides/notesSlide\d+\.xml$`)
	drawingPartRe = regexp.MustCompile(`^xl/drawings/drawing\d+\.xml$`)

	partNumberRe = regexp.MustCompile(`(\d+)\.xml$`)
)

type containerEntry struct {
	name string
	data []byte
}

// Container is an in-memory OOXML package. Parts are read and replaced by
// name; repacking writes replaced parts and copies every other entry
// unchanged, in original order.
type Container struct {
	entries  []containerEntry
	index    map[string]int
	replaced map[string][]byte
}

// OpenContainer reads a ZIP package into memory. A corrupt package is a fatal
// error for the whole file; a corrupt single entry is a local miss and the
// entry is simply absent from the scanned set.
func OpenContainer(data []byte) (*Container, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("corrupt package: %w", err)
	}

	c := &Container{
		index:    make(map[string]int),
		replaced: make(map[string][]byte),
	}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			continue
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		c.index[f.Name] = len(c.entries)
		c.entries = append(c.entries, containerEntry{name: f.Name, data: content})
	}
	return c, nil
}

// PartNames returns entry names matching the pattern, ordered by their part
// number so slide2 sorts before slide10.
func (c *Container) PartNames(pattern *regexp.Regexp) []string {
	var names []string
	for _, e := range c.entries {
		if pattern.MatchString(e.name) {
			names = append(names, e.name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		ni, nj := partNumber(names[i]), partNumber(names[j])
		if ni != nj {
			return ni < nj
		}
		return names[i] < names[j]
	})
	return names
}

func partNumber(name string) int {
	m := partNumberRe.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// SlideParts returns the presentation parts that carry translatable text, in
// processing order: slides, layouts, masters, notes.
func (c *Container) SlideParts() []string {
	var names []string
	for _, re := range []*regexp.Regexp{slidePartRe, layoutPartRe, masterPartRe, notesPartRe} {
		names = append(names, c.PartNames(re)...)
	}
	return names
}

// DrawingParts returns the spreadsheet drawing parts.
func (c *Container) DrawingParts() []string {
	return c.PartNames(drawingPartRe)
}

// ReadPart returns an entry's content as text. Missing entries report false.
func (c *Container) ReadPart(name string) (string, bool) {
	if data, ok := c.replaced[name]; ok {
		return string(data), true
	}
	i, ok := c.index[name]
	if !ok {
		return "", false
	}
	return string(c.entries[i].data), true
}

// WritePart stages replacement content for an entry.
func (c *Container) WritePart(name, content string) {
	c.replaced[name] = []byte(content)
}

// Bytes repacks the container. Entry order is preserved; entries without a
// staged replacement are written from their original bytes.
func (c *Container) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range c.entries {
		w, err := zw.Create(e.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create entry %s: %w", e.name, err)
		}
		data := e.data
		if replaced, ok := c.replaced[e.name]; ok {
			data = replaced
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("failed to write entry %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize package: %w", err)
	}
	return buf.Bytes(), nil
}
