package document

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func shapeFromXML(t *testing.T, cx, cy int64, text string) (*PartModel, *ParsedShape) {
	t.Helper()
	src := fmt.Sprintf(`<p:sp xmlns:p="urn:p" xmlns:a="urn:a">
<p:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm></p:spPr>
<p:txBody><a:p><a:r><a:t>%s</a:t></a:r></a:p></p:txBody>
</p:sp>`, cx, cy, text)
	m, err := ParsePart(src)
	require.NoError(t, err)
	require.Len(t, m.Shapes, 1)
	return m, m.Shapes[0]
}

func TestResizeGrowsOnOverflow(t *testing.T) {
	m, shape := shapeFromXML(t, 914400, 914400, "Hello")
	shape.Paragraphs[0].ApplyTranslation(strings.Repeat("Hello ", 4))

	NewAutoSizer(zap.NewNop()).Resize(shape)

	assert.Greater(t, shape.Bounds.Height, int64(914400))
	assert.GreaterOrEqual(t, shape.Bounds.Height, int64(914400)+274320, "height increase has an absolute floor")

	// The new extents are written into the raw tag.
	out := m.Root.Serialize()
	assert.Contains(t, out, fmt.Sprintf(`cy="%d"`, shape.Bounds.Height))
}

func TestResizeSmallOverflowIgnored(t *testing.T) {
	_, shape := shapeFromXML(t, 914400, 457200, strings.Repeat("x", 100))
	// 3% longer: inside the tolerance band.
	shape.Paragraphs[0].ApplyTranslation(strings.Repeat("x", 103))

	NewAutoSizer(zap.NewNop()).Resize(shape)

	assert.Equal(t, int64(457200), shape.Bounds.Height)
	assert.Equal(t, int64(914400), shape.Bounds.Width)
}

func TestResizeNeverShrinks(t *testing.T) {
	_, shape := shapeFromXML(t, 914400, 457200, "a considerably longer original string")
	shape.Paragraphs[0].ApplyTranslation("short")

	NewAutoSizer(zap.NewNop()).Resize(shape)

	assert.Equal(t, int64(457200), shape.Bounds.Height)
	assert.Equal(t, int64(914400), shape.Bounds.Width)
}

func TestResizeWidthGrowth(t *testing.T) {
	t.Run("narrow shape grows width on large overflow", func(t *testing.T) {
		_, shape := shapeFromXML(t, 914400, 914400, "Hi")
		shape.Paragraphs[0].ApplyTranslation("a much longer translation result")

		NewAutoSizer(zap.NewNop()).Resize(shape)

		assert.Greater(t, shape.Bounds.Width, int64(914400))
		assert.LessOrEqual(t, shape.Bounds.Width, int64(914400)+EMUPerInch, "width increase is capped at one inch")
	})

	t.Run("wide shape keeps width", func(t *testing.T) {
		_, shape := shapeFromXML(t, 4572000, 914400, "Hi")
		shape.Paragraphs[0].ApplyTranslation("a much longer translation result")

		NewAutoSizer(zap.NewNop()).Resize(shape)

		assert.Equal(t, int64(4572000), shape.Bounds.Width)
		assert.Greater(t, shape.Bounds.Height, int64(914400))
	})
}

func TestResizeNoBoundsNoOp(t *testing.T) {
	src := `<p:sp xmlns:p="urn:p" xmlns:a="urn:a"><p:txBody>
<a:p><a:r><a:t>Hi</a:t></a:r></a:p>
</p:txBody></p:sp>`
	m, err := ParsePart(src)
	require.NoError(t, err)
	shape := m.Shapes[0]
	shape.Paragraphs[0].ApplyTranslation("a much longer translation result")

	NewAutoSizer(zap.NewNop()).Resize(shape)
	assert.Nil(t, shape.Bounds)
}

func TestCJKOverflowUsesDisplayWidth(t *testing.T) {
	// Same rune count, but the CJK replacement renders twice as wide.
	_, shape := shapeFromXML(t, 914400, 914400, "hello")
	shape.Paragraphs[0].ApplyTranslation("こんにちは")

	NewAutoSizer(zap.NewNop()).Resize(shape)
	assert.Greater(t, shape.Bounds.Height, int64(914400))
}

func TestEMUConversions(t *testing.T) {
	assert.Equal(t, int64(914400), InchesToEMU(1))
	assert.Equal(t, 1.0, EMUToInches(914400))
	assert.Equal(t, int64(360000), CentimetersToEMU(1))
	assert.Equal(t, 2.54, EMUToCentimeters(InchesToEMU(1)))
	assert.Equal(t, int64(12700), EMUPerPoint)
}
