package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const slideWithShape = `<p:sld xmlns:p="urn:p" xmlns:a="urn:a" xmlns:r="urn:r">
<p:cSld><p:spTree>
<p:sp>
  <p:spPr><a:xfrm><a:off x="100" y="200"/><a:ext cx="914400" cy="457200"/></a:xfrm></p:spPr>
  <p:txBody>
    <a:p><a:r><a:rPr lang="en-US"/><a:t>Hello </a:t></a:r><a:r><a:t>world</a:t></a:r></a:p>
    <a:p><a:pPr/></a:p>
  </p:txBody>
</p:sp>
</p:spTree></p:cSld>
</p:sld>`

func TestParsePartShape(t *testing.T) {
	m, err := ParsePart(slideWithShape)
	require.NoError(t, err)
	require.Len(t, m.Shapes, 1)

	shape := m.Shapes[0]
	require.Len(t, shape.Paragraphs, 1, "paragraph without runs or breaks is dropped")

	para := shape.Paragraphs[0]
	assert.Equal(t, "Hello world", para.FullText)
	require.Len(t, para.Runs(), 2)
	assert.Equal(t, "Hello ", para.Runs()[0].Text)
	assert.Equal(t, "world", para.Runs()[1].Text)

	require.NotNil(t, shape.Bounds)
	assert.Equal(t, int64(100), shape.Bounds.X)
	assert.Equal(t, int64(200), shape.Bounds.Y)
	assert.Equal(t, int64(914400), shape.Bounds.Width)
	assert.Equal(t, int64(457200), shape.Bounds.Height)
	assert.Equal(t, len([]rune("Hello world")), shape.OriginalLength)
}

func TestParsePartLineBreak(t *testing.T) {
	src := `<p:sp xmlns:p="urn:p" xmlns:a="urn:a"><p:txBody>
<a:p><a:r><a:t>Bonjour</a:t></a:r><a:br/><a:r><a:t>Monde</a:t></a:r></a:p>
</p:txBody></p:sp>`

	m, err := ParsePart(src)
	require.NoError(t, err)
	require.Len(t, m.Shapes, 1)

	para := m.Shapes[0].Paragraphs[0]
	assert.Equal(t, "Bonjour\nMonde", para.FullText)

	require.Len(t, para.Items, 3)
	assert.Equal(t, ItemRun, para.Items[0].Kind)
	assert.Equal(t, ItemBreak, para.Items[1].Kind)
	assert.Equal(t, ItemRun, para.Items[2].Kind)
	assert.Equal(t, 7, para.Items[1].Break.Offset, "break offset is the newline position in FullText")
}

func TestParsePartField(t *testing.T) {
	src := `<p:sp xmlns:p="urn:p" xmlns:a="urn:a"><p:txBody>
<a:p><a:r><a:t>Slide </a:t></a:r><a:fld id="{1}" type="slidenum"><a:t>3</a:t></a:fld></a:p>
</p:txBody></p:sp>`

	m, err := ParsePart(src)
	require.NoError(t, err)
	para := m.Shapes[0].Paragraphs[0]

	assert.Equal(t, "Slide 3", para.FullText, "field literal contributes to FullText")
	assert.Len(t, para.Runs(), 1, "field node is not a translatable run")

	// Reconstruction only writes to runs; the field keeps its literal.
	para.ApplyTranslation("Folie ")
	assert.Equal(t, "Folie ", para.Runs()[0].Text)
	assert.Equal(t, "Folie 3", para.FullText)
}

func TestParsePartBreakOnlyParagraphKept(t *testing.T) {
	src := `<p:sp xmlns:p="urn:p" xmlns:a="urn:a"><p:txBody>
<a:p><a:br/></a:p>
</p:txBody></p:sp>`

	m, err := ParsePart(src)
	require.NoError(t, err)
	require.Len(t, m.Shapes, 1)
	assert.Equal(t, "\n", m.Shapes[0].Paragraphs[0].FullText)
}

func TestParsePartHyperlink(t *testing.T) {
	src := `<p:sp xmlns:p="urn:p" xmlns:a="urn:a" xmlns:r="urn:r"><p:txBody>
<a:p>
  <a:r><a:rPr><a:hlinkClick r:id="rId2"/></a:rPr><a:t>our site</a:t></a:r>
  <a:r><a:t> and more</a:t></a:r>
</a:p>
</p:txBody></p:sp>`

	m, err := ParsePart(src)
	require.NoError(t, err)
	runs := m.Shapes[0].Paragraphs[0].Runs()
	require.Len(t, runs, 2)
	assert.True(t, runs[0].Hyperlink)
	assert.False(t, runs[1].Hyperlink)
}

func TestParsePartShapeWithoutText(t *testing.T) {
	src := `<p:sp xmlns:p="urn:p"><p:spPr/></p:sp>`
	m, err := ParsePart(src)
	require.NoError(t, err)
	assert.Empty(t, m.Shapes)
}

func TestParsePartMissingBounds(t *testing.T) {
	src := `<p:sp xmlns:p="urn:p" xmlns:a="urn:a"><p:spPr/><p:txBody>
<a:p><a:r><a:t>unbounded</a:t></a:r></a:p>
</p:txBody></p:sp>`

	m, err := ParsePart(src)
	require.NoError(t, err)
	require.Len(t, m.Shapes, 1)
	assert.Nil(t, m.Shapes[0].Bounds)
}

func TestParsePartTable(t *testing.T) {
	src := `<p:sld xmlns:p="urn:p" xmlns:a="urn:a">
<a:tbl>
  <a:tr>
    <a:tc><a:txBody><a:p><a:r><a:t>Name</a:t></a:r></a:p></a:txBody></a:tc>
    <a:tc><a:txBody><a:p><a:r><a:t>Price</a:t></a:r></a:p></a:txBody></a:tc>
  </a:tr>
  <a:tr>
    <a:tc><a:txBody><a:p><a:r><a:t>Widget</a:t></a:r></a:p></a:txBody></a:tc>
    <a:tc><a:txBody><a:p/></a:txBody></a:tc>
  </a:tr>
</a:tbl>
</p:sld>`

	m, err := ParsePart(src)
	require.NoError(t, err)
	require.Len(t, m.Tables, 1)
	require.Len(t, m.Tables[0].Rows, 2)

	tasks := m.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, TaskTableRow, tasks[0].Kind)
	assert.Equal(t, "Name | Price", tasks[0].Text)
	assert.Equal(t, "Widget | ", tasks[1].Text, "empty cells keep their column slot")
}

func TestTasksOrderAndFiltering(t *testing.T) {
	src := `<p:sld xmlns:p="urn:p" xmlns:a="urn:a">
<p:sp><p:txBody>
  <a:p><a:r><a:t>First shape</a:t></a:r></a:p>
  <a:p><a:r><a:t>   </a:t></a:r></a:p>
</p:txBody></p:sp>
<a:tbl><a:tr><a:tc><a:txBody><a:p><a:r><a:t>Cell</a:t></a:r></a:p></a:txBody></a:tc></a:tr></a:tbl>
</p:sld>`

	m, err := ParsePart(src)
	require.NoError(t, err)

	tasks := m.Tasks()
	require.Len(t, tasks, 2, "whitespace-only paragraph produces no task")
	assert.Equal(t, TaskParagraph, tasks[0].Kind)
	assert.Equal(t, "First shape", tasks[0].Text)
	assert.NotNil(t, tasks[0].Shape)
	assert.Equal(t, TaskTableRow, tasks[1].Kind)
}
