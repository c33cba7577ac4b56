package translator

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/officetrans/go-office-translator/internal/document"
)

func buildXLSX(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellStr("Sheet1", "A1", "Hello world"))
	require.NoError(t, f.SetCellStr("Sheet1", "B1", "Totals"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", 42))
	require.NoError(t, f.SetCellFormula("Sheet1", "B2", "SUM(A2:A2)"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func newTestXLSXPipeline(svc *fakeService) *XLSXPipeline {
	batch := NewBatchTranslator(svc, testPolicy(), zap.NewNop())
	return NewXLSXPipeline(batch, document.NewProtector(nil), zap.NewNop())
}

func TestXLSXTranslateEndToEnd(t *testing.T) {
	pkg := buildXLSX(t)
	pipeline := newTestXLSXPipeline(&fakeService{})

	out, units, err := pipeline.Translate(context.Background(), pkg, BatchOptions{SourceLang: "en", TargetLang: "fr"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, units, 2, "both string cells count as units")

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	// The uppercase fake stands in for translation; sheet names run through
	// the same backend.
	sheet := f.GetSheetList()[0]
	assert.Equal(t, "SHEET1", sheet)

	a1, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "HELLO WORLD", a1)

	b1, err := f.GetCellValue(sheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "TOTALS", b1)

	a2, err := f.GetCellValue(sheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "42", a2, "numeric cells are untouched")

	formula, err := f.GetCellFormula(sheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "SUM(A2:A2)", formula, "formula cells are untouched")
}

func TestXLSXTranslateCorruptWorkbook(t *testing.T) {
	pipeline := newTestXLSXPipeline(&fakeService{})
	_, _, err := pipeline.Translate(context.Background(), []byte("not a workbook"), BatchOptions{TargetLang: "fr"})
	assert.Error(t, err)
}

func TestSanitizeSheetName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Plain", "Plain"},
		{"Q1/Q2 [draft]: final?", "Q1Q2 draft final"},
		{"  padded  ", "padded"},
		{"ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", "ABCDEFGHIJKLMNOPQRSTUVWXYZ01234"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sanitizeSheetName(tc.in), "input: %q", tc.in)
	}
}
