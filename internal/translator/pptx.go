package translator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/officetrans/go-office-translator/internal/document"
)

// PPTXPipeline translates a presentation package: slides, slide layouts,
// slide masters and notes slides. The parsed tree for one document is owned
// exclusively by the pipeline run; the binary container boundary is crossed
// only at the start and end.
type PPTXPipeline struct {
	batch     *BatchTranslator
	protector *document.Protector
	sizer     *document.AutoSizer
	logger    *zap.Logger
}

func NewPPTXPipeline(batch *BatchTranslator, protector *document.Protector, logger *zap.Logger) *PPTXPipeline {
	return &PPTXPipeline{
		batch:     batch,
		protector: protector,
		sizer:     document.NewAutoSizer(logger),
		logger:    logger,
	}
}

type partWork struct {
	name  string
	model *document.PartModel
	tasks []*document.TranslationTask
}

// Translate runs the full parse → protect → translate → reconstruct →
// auto-size → repack sequence over one package. It returns the translated
// package bytes and the number of translated units.
func (p *PPTXPipeline) Translate(ctx context.Context, data []byte, opts BatchOptions) ([]byte, int, error) {
	container, err := document.OpenContainer(data)
	if err != nil {
		return nil, 0, err
	}

	var parts []*partWork
	var allTasks []*document.TranslationTask
	for _, name := range container.SlideParts() {
		content, ok := container.ReadPart(name)
		if !ok {
			continue
		}
		model, err := document.ParsePart(content)
		if err != nil {
			// A part that does not parse is a local miss, not a job failure.
			p.logger.Warn("skipping unparseable part", zap.String("part", name), zap.Error(err))
			continue
		}
		tasks := model.Tasks()
		if len(tasks) == 0 {
			continue
		}
		parts = append(parts, &partWork{name: name, model: model, tasks: tasks})
		allTasks = append(allTasks, tasks...)
	}

	if len(allTasks) == 0 {
		return data, 0, nil
	}
	opts.PartCount = len(parts)

	// Mask every unit before anything goes over the wire. One ProtectionMap
	// per unit; maps never cross unit boundaries.
	units := make([]string, len(allTasks))
	maps := make([]*document.ProtectionMap, len(allTasks))
	for i, task := range allTasks {
		units[i], maps[i] = p.protector.Mask(task.Text, opts.SourceLang, opts.TargetLang)
	}

	translated, err := p.batch.TranslateAll(ctx, units, opts)
	if err != nil {
		return nil, 0, err
	}

	// Write results back in submission order, then resize shapes whose text
	// grew past the overflow thresholds.
	for i, task := range allTasks {
		restored := maps[i].Restore(translated[i])
		switch task.Kind {
		case document.TaskParagraph:
			task.Paragraph.ApplyTranslation(restored)
		case document.TaskTableRow:
			document.ApplyRowTranslation(task.Row, restored)
		}
	}
	resized := make(map[*document.ParsedShape]bool)
	for _, part := range parts {
		for _, task := range part.tasks {
			if task.Kind == document.TaskParagraph && task.Shape != nil && !resized[task.Shape] {
				resized[task.Shape] = true
				p.sizer.Resize(task.Shape)
			}
		}
		container.WritePart(part.name, part.model.Root.Serialize())
	}

	out, err := container.Bytes()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to serialize package: %w", err)
	}
	return out, len(allTasks), nil
}
