package translator

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/officetrans/go-office-translator/internal/document"
	"github.com/officetrans/go-office-translator/pkg/translation"
)

const testSlide = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:p="urn:p" xmlns:a="urn:a"><p:cSld><p:spTree>
<p:sp>
<p:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="914400" cy="914400"/></a:xfrm></p:spPr>
<p:txBody>
<a:p><a:r><a:t>Hello world</a:t></a:r></a:p>
<a:p><a:r><a:t>Visit https://example.com today</a:t></a:r></a:p>
</p:txBody>
</p:sp>
</p:spTree></p:cSld></p:sld>`

func buildPPTX(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range map[string]string{
		"[Content_Types].xml":  "<Types/>",
		"ppt/presentation.xml": "<presentation/>",
		"docProps/app.xml":     "<Properties/>",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}
	for name, data := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func readEntry(t *testing.T, pkg []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(content)
	}
	t.Fatalf("entry %s not found", name)
	return ""
}

func newTestPPTXPipeline(svc *fakeService) *PPTXPipeline {
	batch := NewBatchTranslator(svc, testPolicy(), zap.NewNop())
	return NewPPTXPipeline(batch, document.NewProtector(nil), zap.NewNop())
}

func TestPPTXTranslateEndToEnd(t *testing.T) {
	pkg := buildPPTX(t, map[string]string{"ppt/slides/slide1.xml": testSlide})
	pipeline := newTestPPTXPipeline(&fakeService{})

	out, units, err := pipeline.Translate(context.Background(), pkg, BatchOptions{SourceLang: "en", TargetLang: "fr"})
	require.NoError(t, err)
	assert.Equal(t, 2, units)

	slide := readEntry(t, out, "ppt/slides/slide1.xml")
	assert.Contains(t, slide, "<a:t>HELLO WORLD</a:t>")
	assert.Contains(t, slide, "https://example.com", "masked URL is restored verbatim")
	assert.NotContains(t, slide, "__P0__", "no tokens leak into the output")
	assert.Contains(t, slide, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)

	// Non-slide entries pass through byte-for-byte.
	assert.Equal(t, "<presentation/>", readEntry(t, out, "ppt/presentation.xml"))
}

func TestPPTXTranslateNoText(t *testing.T) {
	pkg := buildPPTX(t, map[string]string{
		"ppt/slides/slide1.xml": `<p:sld xmlns:p="urn:p"><p:cSld/></p:sld>`,
	})
	svc := &fakeService{}
	pipeline := newTestPPTXPipeline(svc)

	out, units, err := pipeline.Translate(context.Background(), pkg, BatchOptions{TargetLang: "fr"})
	require.NoError(t, err)
	assert.Equal(t, 0, units)
	assert.Equal(t, pkg, out, "a package with nothing to translate is returned unchanged")
	assert.Equal(t, 0, svc.batchCalls)
}

func TestPPTXTranslateUnparseablePartSkipped(t *testing.T) {
	pkg := buildPPTX(t, map[string]string{
		"ppt/slides/slide1.xml": "<p:sld><broken",
		"ppt/slides/slide2.xml": testSlide,
	})
	pipeline := newTestPPTXPipeline(&fakeService{})

	out, units, err := pipeline.Translate(context.Background(), pkg, BatchOptions{TargetLang: "fr"})
	require.NoError(t, err, "a corrupt part is a local miss, not a file failure")
	assert.Equal(t, 2, units)
	assert.Equal(t, "<p:sld><broken", readEntry(t, out, "ppt/slides/slide1.xml"))
	assert.Contains(t, readEntry(t, out, "ppt/slides/slide2.xml"), "HELLO WORLD")
}

func TestPPTXTranslateCorruptPackage(t *testing.T) {
	pipeline := newTestPPTXPipeline(&fakeService{})
	_, _, err := pipeline.Translate(context.Background(), []byte("not a zip"), BatchOptions{TargetLang: "fr"})
	assert.Error(t, err)
}

func TestPPTXTranslateResizesOverflowingShape(t *testing.T) {
	pkg := buildPPTX(t, map[string]string{"ppt/slides/slide1.xml": testSlide})
	svc := &fakeService{
		batchFn: func(call int, req *translation.BatchRequest) ([]string, error) {
			out := make([]string, len(req.Texts))
			for i, text := range req.Texts {
				out[i] = strings.Repeat(text+" ", 3)
			}
			return out, nil
		},
	}
	pipeline := newTestPPTXPipeline(svc)

	out, _, err := pipeline.Translate(context.Background(), pkg, BatchOptions{SourceLang: "en", TargetLang: "fr"})
	require.NoError(t, err)

	slide := readEntry(t, out, "ppt/slides/slide1.xml")
	assert.NotContains(t, slide, `cy="914400"`, "shape height grew to fit the longer text")
}

func TestPPTXTranslateCriticalPropagates(t *testing.T) {
	pkg := buildPPTX(t, map[string]string{"ppt/slides/slide1.xml": testSlide})
	svc := &fakeService{
		batchFn: func(call int, req *translation.BatchRequest) ([]string, error) {
			return nil, translation.NewStatusError(429, "quota exhausted", nil)
		},
	}
	pipeline := newTestPPTXPipeline(svc)

	_, _, err := pipeline.Translate(context.Background(), pkg, BatchOptions{TargetLang: "fr"})
	require.Error(t, err)
	assert.True(t, translation.IsCritical(err))
}
