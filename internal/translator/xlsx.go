package translator

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/officetrans/go-office-translator/internal/document"
)

// XLSXPipeline translates a workbook in two passes: cell text and sheet
// names through the workbook-editing library, then drawing shape text
// directly on the ZIP-embedded drawing parts, because the cell-oriented
// model does not expose shape text at all.
type XLSXPipeline struct {
	batch     *BatchTranslator
	protector *document.Protector
	logger    *zap.Logger
}

func NewXLSXPipeline(batch *BatchTranslator, protector *document.Protector, logger *zap.Logger) *XLSXPipeline {
	return &XLSXPipeline{batch: batch, protector: protector, logger: logger}
}

type cellTask struct {
	sheet string
	ref   string
	text  string
}

// Translate returns the translated workbook bytes and the number of
// translated units (cells, sheet names and shape texts combined).
func (p *XLSXPipeline) Translate(ctx context.Context, data []byte, opts BatchOptions) ([]byte, int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("corrupt workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	opts.PartCount = len(sheets)
	total := 0

	cells, err := p.collectCells(f, sheets)
	if err != nil {
		return nil, 0, err
	}

	// Cell texts and sheet names are separate batch calls sharing the same
	// chunking and retry rules.
	if len(cells) > 0 {
		units := make([]string, len(cells))
		maps := make([]*document.ProtectionMap, len(cells))
		for i, c := range cells {
			units[i], maps[i] = p.protector.Mask(c.text, opts.SourceLang, opts.TargetLang)
		}
		translated, err := p.batch.TranslateAll(ctx, units, opts)
		if err != nil {
			return nil, 0, err
		}
		for i, c := range cells {
			restored := maps[i].Restore(translated[i])
			if err := f.SetCellStr(c.sheet, c.ref, restored); err != nil {
				p.logger.Warn("failed to write cell",
					zap.String("sheet", c.sheet),
					zap.String("cell", c.ref),
					zap.Error(err))
			}
		}
		total += len(cells)
	}

	if n, err := p.translateSheetNames(ctx, f, sheets, opts); err != nil {
		return nil, 0, err
	} else {
		total += n
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	out, n, err := p.translateShapeTexts(ctx, buf.Bytes(), opts)
	if err != nil {
		return nil, 0, err
	}
	total += n
	return out, total, nil
}

// collectCells gathers translatable cell texts: non-empty string cells that
// are neither numeric nor formula results.
func (p *XLSXPipeline) collectCells(f *excelize.File, sheets []string) ([]cellTask, error) {
	var cells []cellTask
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		for r, row := range rows {
			for col, text := range row {
				if strings.TrimSpace(text) == "" {
					continue
				}
				if _, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
					continue
				}
				ref, err := excelize.CoordinatesToCellName(col+1, r+1)
				if err != nil {
					continue
				}
				if formula, _ := f.GetCellFormula(sheet, ref); formula != "" {
					continue
				}
				cells = append(cells, cellTask{sheet: sheet, ref: ref, text: text})
			}
		}
	}
	return cells, nil
}

// translateSheetNames translates the tab names as one batch and applies
// Excel's sheet-name constraints to the results.
func (p *XLSXPipeline) translateSheetNames(ctx context.Context, f *excelize.File, sheets []string, opts BatchOptions) (int, error) {
	if len(sheets) == 0 {
		return 0, nil
	}
	translated, err := p.batch.TranslateAll(ctx, sheets, opts)
	if err != nil {
		return 0, err
	}
	renamed := 0
	for i, old := range sheets {
		name := sanitizeSheetName(translated[i])
		if name == "" || name == old {
			continue
		}
		if err := f.SetSheetName(old, name); err != nil {
			p.logger.Warn("failed to rename sheet",
				zap.String("sheet", old),
				zap.String("name", name),
				zap.Error(err))
			continue
		}
		renamed++
	}
	return renamed, nil
}

// sanitizeSheetName enforces the 31-character limit and strips the
// characters Excel forbids in tab names.
func sanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	runes := []rune(name)
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}

// translateShapeTexts runs the coarser ZIP-level pass over the drawing
// parts. A fast pre-check skips the whole pass when no drawing carries a
// text run.
func (p *XLSXPipeline) translateShapeTexts(ctx context.Context, data []byte, opts BatchOptions) ([]byte, int, error) {
	container, err := document.OpenContainer(data)
	if err != nil {
		return nil, 0, err
	}
	if !document.HasShapeText(container) {
		return data, 0, nil
	}

	shapeTexts := document.ExtractShapeTexts(container)
	if len(shapeTexts) == 0 {
		return data, 0, nil
	}

	units := make([]string, len(shapeTexts))
	maps := make([]*document.ProtectionMap, len(shapeTexts))
	for i, st := range shapeTexts {
		units[i], maps[i] = p.protector.Mask(st.Text, opts.SourceLang, opts.TargetLang)
	}

	translated, err := p.batch.TranslateAll(ctx, units, opts)
	if err != nil {
		return nil, 0, err
	}

	// Replacement is keyed by original text value; duplicate originals share
	// one translation.
	replacements := make(map[string]string, len(shapeTexts))
	for i, st := range shapeTexts {
		replacements[st.Text] = maps[i].Restore(translated[i])
	}
	document.ReplaceShapeTexts(container, replacements)

	out, err := container.Bytes()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to serialize package: %w", err)
	}
	return out, len(shapeTexts), nil
}
