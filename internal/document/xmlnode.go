// Package document implements the structure-aware OOXML translation core:
// the ZIP container accessor, the raw XML tree, the structure parser, the
// placeholder protector, the paragraph reconstructor and the shape auto-sizer.
package document

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NodeKind discriminates XMLNode variants.
type NodeKind int

const (
	// ElementNode is a tag with its raw open/close text preserved verbatim.
	ElementNode NodeKind = iota
	// TextNode is character data between tags, entity-decoded.
	TextNode
	// RawNode is anything carried through untouched: XML declarations,
	// processing instructions, comments, DOCTYPE, CDATA.
	RawNode
)

// XMLNode is one node of a part's XML tree. The tree never rebuilds markup
// from a semantic model: element tags are stored as the exact byte ranges
// they were read from, so serializing an unmodified tree reproduces the part
// byte-for-byte. Only text content and individually rewritten attributes can
// change.
type XMLNode struct {
	Kind NodeKind

	// Element fields. OpenTag and CloseTag include the angle brackets.
	OpenTag     string
	CloseTag    string
	Local       string // tag name with any namespace prefix stripped
	SelfClosing bool
	Children    []*XMLNode
	Parent      *XMLNode

	// TextNode payload, entity-decoded. Raw keeps the original bytes for
	// TextNode and RawNode; an empty Raw on a TextNode marks mutated text
	// that must be re-escaped on serialization.
	Text string
	Raw  string
}

// ParseXML parses part XML into a tree rooted at a synthetic document node.
// Tag matching elsewhere is namespace-agnostic: only the local name is kept,
// since different parts may alias namespaces differently.
func ParseXML(src string) (*XMLNode, error) {
	root := &XMLNode{Kind: ElementNode, Local: ""}
	current := root

	i := 0
	for i < len(src) {
		if src[i] != '<' {
			end := strings.IndexByte(src[i:], '<')
			if end < 0 {
				end = len(src) - i
			}
			current.Children = append(current.Children, &XMLNode{
				Kind:   TextNode,
				Text:   unescapeXML(src[i : i+end]),
				Raw:    src[i : i+end],
				Parent: current,
			})
			i += end
			continue
		}

		switch {
		case strings.HasPrefix(src[i:], "<!--"):
			end := strings.Index(src[i:], "-->")
			if end < 0 {
				return nil, fmt.Errorf("unterminated comment at offset %d", i)
			}
			current.Children = append(current.Children, &XMLNode{Kind: RawNode, Raw: src[i : i+end+3], Parent: current})
			i += end + 3

		case strings.HasPrefix(src[i:], "<![CDATA["):
			end := strings.Index(src[i:], "]]>")
			if end < 0 {
				return nil, fmt.Errorf("unterminated CDATA at offset %d", i)
			}
			current.Children = append(current.Children, &XMLNode{Kind: RawNode, Raw: src[i : i+end+3], Parent: current})
			i += end + 3

		case strings.HasPrefix(src[i:], "<?"):
			end := strings.Index(src[i:], "?>")
			if end < 0 {
				return nil, fmt.Errorf("unterminated processing instruction at offset %d", i)
			}
			current.Children = append(current.Children, &XMLNode{Kind: RawNode, Raw: src[i : i+end+2], Parent: current})
			i += end + 2

		case strings.HasPrefix(src[i:], "<!"):
			end := strings.IndexByte(src[i:], '>')
			if end < 0 {
				return nil, fmt.Errorf("unterminated declaration at offset %d", i)
			}
			current.Children = append(current.Children, &XMLNode{Kind: RawNode, Raw: src[i : i+end+1], Parent: current})
			i += end + 1

		case strings.HasPrefix(src[i:], "</"):
			end := strings.IndexByte(src[i:], '>')
			if end < 0 {
				return nil, fmt.Errorf("unterminated close tag at offset %d", i)
			}
			local := localName(strings.TrimSpace(src[i+2 : i+end]))
			if current == root || current.Local != local {
				return nil, fmt.Errorf("unexpected </%s> at offset %d", local, i)
			}
			current.CloseTag = src[i : i+end+1]
			current = current.Parent
			i += end + 1

		default:
			end := tagEnd(src, i)
			if end < 0 {
				return nil, fmt.Errorf("unterminated tag at offset %d", i)
			}
			tag := src[i : end+1]
			node := &XMLNode{
				Kind:        ElementNode,
				OpenTag:     tag,
				Local:       localName(tagName(tag)),
				SelfClosing: strings.HasSuffix(tag, "/>"),
				Parent:      current,
			}
			current.Children = append(current.Children, node)
			if !node.SelfClosing {
				current = node
			}
			i = end + 1
		}
	}

	if current != root {
		return nil, fmt.Errorf("unclosed element <%s>", current.Local)
	}
	return root, nil
}

// tagEnd returns the index of the '>' closing the tag opening at src[start],
// skipping '>' characters inside quoted attribute values.
func tagEnd(src string, start int) int {
	var quote byte
	for i := start + 1; i < len(src); i++ {
		c := src[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i
		}
	}
	return -1
}

func tagName(tag string) string {
	name := tag[1:]
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case ' ', '\t', '\r', '\n', '/', '>':
			return name[:i]
		}
	}
	return name
}

func localName(name string) string {
	if idx := strings.IndexByte(name, ':'); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// Serialize writes the tree back out. Untouched nodes reproduce their
// original bytes.
func (n *XMLNode) Serialize() string {
	var b strings.Builder
	n.serialize(&b)
	return b.String()
}

func (n *XMLNode) serialize(b *strings.Builder) {
	switch n.Kind {
	case TextNode:
		if n.Raw != "" {
			b.WriteString(n.Raw)
		} else {
			b.WriteString(escapeXML(n.Text))
		}
	case RawNode:
		b.WriteString(n.Raw)
	case ElementNode:
		if n.Local == "" { // synthetic root
			for _, c := range n.Children {
				c.serialize(b)
			}
			return
		}
		if n.SelfClosing && len(n.Children) == 0 {
			b.WriteString(n.OpenTag)
			return
		}
		if n.SelfClosing {
			// A self-closing tag that acquired children (SetText on <a:t/>)
			// is expanded into an open/close pair.
			open := strings.TrimSuffix(strings.TrimSuffix(n.OpenTag, "/>"), " /") + ">"
			b.WriteString(open)
			for _, c := range n.Children {
				c.serialize(b)
			}
			b.WriteString("</" + tagName(n.OpenTag) + ">")
			return
		}
		b.WriteString(n.OpenTag)
		for _, c := range n.Children {
			c.serialize(b)
		}
		b.WriteString(n.CloseTag)
	}
}

// InnerText concatenates all descendant text nodes in document order.
func (n *XMLNode) InnerText() string {
	var b strings.Builder
	n.innerText(&b)
	return b.String()
}

func (n *XMLNode) innerText(b *strings.Builder) {
	if n.Kind == TextNode {
		b.WriteString(n.Text)
		return
	}
	for _, c := range n.Children {
		c.innerText(b)
	}
}

// SetText replaces the element's content with a single text node. Every
// non-text child is discarded, so it must only be called on leaf text
// carriers like <a:t>.
func (n *XMLNode) SetText(text string) {
	n.Children = []*XMLNode{{Kind: TextNode, Text: text, Parent: n}}
}

// ChildrenByLocal returns direct element children with the given local name.
func (n *XMLNode) ChildrenByLocal(local string) []*XMLNode {
	var out []*XMLNode
	for _, c := range n.Children {
		if c.Kind == ElementNode && c.Local == local {
			out = append(out, c)
		}
	}
	return out
}

// FirstChild returns the first direct element child with the given local
// name, or nil.
func (n *XMLNode) FirstChild(local string) *XMLNode {
	for _, c := range n.Children {
		if c.Kind == ElementNode && c.Local == local {
			return c
		}
	}
	return nil
}

// Find returns the first descendant element with the given local name in
// document order, or nil.
func (n *XMLNode) Find(local string) *XMLNode {
	for _, c := range n.Children {
		if c.Kind != ElementNode {
			continue
		}
		if c.Local == local {
			return c
		}
		if found := c.Find(local); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns all descendant elements with the given local name in
// document order.
func (n *XMLNode) FindAll(local string) []*XMLNode {
	var out []*XMLNode
	n.findAll(local, &out)
	return out
}

func (n *XMLNode) findAll(local string, out *[]*XMLNode) {
	for _, c := range n.Children {
		if c.Kind != ElementNode {
			continue
		}
		if c.Local == local {
			*out = append(*out, c)
		}
		c.findAll(local, out)
	}
}

// Attr looks up an attribute by local name, ignoring any namespace prefix.
func (n *XMLNode) Attr(local string) (string, bool) {
	attrs := n.OpenTag
	for {
		name, value, rest, ok := nextAttr(attrs)
		if !ok {
			return "", false
		}
		if localName(name) == local {
			return unescapeXML(value), true
		}
		attrs = rest
	}
}

// IntAttr parses an integer attribute; returns 0, false when absent or
// malformed.
func (n *XMLNode) IntAttr(local string) (int64, bool) {
	s, ok := n.Attr(local)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// SetAttr rewrites an attribute value inside the raw open tag, leaving the
// rest of the tag bytes untouched. Missing attributes are appended before the
// closing bracket.
func (n *XMLNode) SetAttr(local, value string) {
	re := regexp.MustCompile(`(\s(?:[A-Za-z_][\w.-]*:)?` + regexp.QuoteMeta(local) + `\s*=\s*)(?:"[^"]*"|'[^']*')`)
	if loc := re.FindStringSubmatchIndex(n.OpenTag); loc != nil {
		n.OpenTag = n.OpenTag[:loc[3]] + `"` + escapeAttr(value) + `"` + n.OpenTag[loc[1]:]
		return
	}
	tag := n.OpenTag
	insert := len(tag) - 1
	if strings.HasSuffix(tag, "/>") {
		insert = len(tag) - 2
	}
	n.OpenTag = strings.TrimRight(tag[:insert], " ") + ` ` + local + `="` + escapeAttr(value) + `"` + tag[insert:]
}

// nextAttr scans the next name="value" pair out of a raw tag fragment.
func nextAttr(s string) (name, value, rest string, ok bool) {
	eq := strings.IndexByte(s, '=')
	if eq < 0 {
		return "", "", "", false
	}
	nameEnd := eq
	nameStart := nameEnd
	for nameStart > 0 && !isSpaceByte(s[nameStart-1]) {
		nameStart--
	}
	j := eq + 1
	for j < len(s) && isSpaceByte(s[j]) {
		j++
	}
	if j >= len(s) || (s[j] != '"' && s[j] != '\'') {
		return "", "", "", false
	}
	quote := s[j]
	end := strings.IndexByte(s[j+1:], quote)
	if end < 0 {
		return "", "", "", false
	}
	return s[nameStart:nameEnd], s[j+1 : j+1+end], s[j+2+end:], true
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// unescapeXML resolves the predefined entities plus numeric character
// references.
func unescapeXML(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '&' {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := strings.IndexByte(s[i:], ';')
		if end < 0 {
			b.WriteString(s[i:])
			break
		}
		entity := s[i+1 : i+end]
		switch {
		case entity == "amp":
			b.WriteByte('&')
		case entity == "lt":
			b.WriteByte('<')
		case entity == "gt":
			b.WriteByte('>')
		case entity == "quot":
			b.WriteByte('"')
		case entity == "apos":
			b.WriteByte('\'')
		case strings.HasPrefix(entity, "#x") || strings.HasPrefix(entity, "#X"):
			if v, err := strconv.ParseInt(entity[2:], 16, 32); err == nil {
				b.WriteRune(rune(v))
			} else {
				b.WriteString(s[i : i+end+1])
			}
		case strings.HasPrefix(entity, "#"):
			if v, err := strconv.ParseInt(entity[1:], 10, 32); err == nil {
				b.WriteRune(rune(v))
			} else {
				b.WriteString(s[i : i+end+1])
			}
		default:
			b.WriteString(s[i : i+end+1])
		}
		i += end + 1
	}
	return b.String()
}
