package translator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/officetrans/go-office-translator/internal/config"
	"github.com/officetrans/go-office-translator/internal/document"
	"github.com/officetrans/go-office-translator/pkg/translation"
)

// FileStatus classifies a file's outcome for reporting.
type FileStatus string

const (
	StatusTranslated FileStatus = "translated"
	StatusFailed     FileStatus = "failed"
	StatusSkipped    FileStatus = "skipped"
)

// FileResult is one queued file's outcome.
type FileResult struct {
	Input    string
	Output   string
	Status   FileStatus
	Units    int
	Duration time.Duration
	// Err carries the failure; Detail is the longer classified description
	// shown alongside the short message.
	Err    error
	Detail string
}

// Coordinator runs a multi-file translation job. Files are processed
// strictly in sequence. A per-file failure (including container
// serialization) is recorded and the job continues with the next file; a
// critical translation failure stops the loop over all remaining files,
// which are reported as skipped.
type Coordinator struct {
	cfg       *config.Config
	service   translation.Service
	protector *document.Protector
	logger    *zap.Logger
}

func NewCoordinator(cfg *config.Config, service translation.Service, blacklist []document.BlacklistEntry, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		cfg:       cfg,
		service:   service,
		protector: document.NewProtector(blacklist),
		logger:    logger,
	}
}

// Run translates every input file into outputDir. It returns per-file
// results plus the critical error that halted the job, if any.
func (c *Coordinator) Run(ctx context.Context, inputs []string, outputDir string) ([]FileResult, error) {
	jobID := uuid.NewString()
	logger := c.logger.With(zap.String("jobID", jobID))
	logger.Info("starting translation job",
		zap.Int("files", len(inputs)),
		zap.String("targetLang", c.cfg.TargetLang))

	glossary, err := config.LoadGlossary(c.cfg.GlossaryPath)
	if err != nil {
		return nil, err
	}

	batch := NewBatchTranslator(c.service, c.cfg.RetryPolicy(), logger)
	pptx := NewPPTXPipeline(batch, c.protector, logger)
	xlsx := NewXLSXPipeline(batch, c.protector, logger)

	opts := BatchOptions{
		SourceLang: c.cfg.SourceLang,
		TargetLang: c.cfg.TargetLang,
		Context:    c.cfg.Context,
		Glossary:   glossary,
	}

	results := make([]FileResult, 0, len(inputs))
	var criticalErr error

	for i, input := range inputs {
		if criticalErr != nil {
			results = append(results, FileResult{
				Input:  input,
				Status: StatusSkipped,
				Detail: "skipped after critical translation failure",
			})
			continue
		}

		start := time.Now()
		result := FileResult{Input: input, Output: outputPath(input, outputDir)}

		data, err := os.ReadFile(input)
		if err != nil {
			result.Status = StatusFailed
			result.Err = err
			result.Detail = fmt.Sprintf("failed to read input: %v", err)
			results = append(results, result)
			continue
		}

		var out []byte
		var units int
		switch strings.ToLower(filepath.Ext(input)) {
		case ".pptx":
			out, units, err = pptx.Translate(ctx, data, opts)
		case ".xlsx":
			out, units, err = xlsx.Translate(ctx, data, opts)
		default:
			err = fmt.Errorf("unsupported file type %q", filepath.Ext(input))
		}

		result.Duration = time.Since(start)
		result.Units = units

		if err != nil {
			result.Status = StatusFailed
			result.Err = err
			result.Detail = err.Error()
			if translation.IsCritical(err) {
				// Quota/auth/permission failures mean the whole job cannot
				// succeed; stop the loop, not just this file.
				criticalErr = err
				logger.Error("critical failure, halting remaining files",
					zap.String("input", input),
					zap.Error(err))
			} else {
				logger.Warn("file failed", zap.String("input", input), zap.Error(err))
			}
			results = append(results, result)
			continue
		}

		if err := os.WriteFile(result.Output, out, 0o644); err != nil {
			result.Status = StatusFailed
			result.Err = err
			result.Detail = fmt.Sprintf("failed to write output: %v", err)
			results = append(results, result)
			continue
		}

		result.Status = StatusTranslated
		logger.Info("file translated",
			zap.String("input", input),
			zap.String("output", result.Output),
			zap.Int("units", units),
			zap.Duration("took", result.Duration),
			zap.Int("remaining", len(inputs)-i-1))
		results = append(results, result)
	}

	return results, criticalErr
}

// outputPath places the translated copy next to the input (or under
// outputDir when given) with a "_translated" suffix.
func outputPath(input, outputDir string) string {
	dir := filepath.Dir(input)
	if outputDir != "" {
		dir = outputDir
	}
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+"_translated"+ext)
}
