// Package translator drives the translation pipelines: the batch
// orchestrator that talks to the backend, the per-format pipelines, and the
// multi-file job coordinator.
package translator

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/officetrans/go-office-translator/pkg/translation"
)

// Chunking constants. Smaller chunks on large jobs bound both payload size
// and the worst-case cost of a retried chunk.
const (
	smallJobChunkSize     = 40
	largeJobChunkSize     = 20
	largeJobPartThreshold = 20
)

// BatchOptions parameterizes one batch run.
type BatchOptions struct {
	SourceLang string
	TargetLang string
	Context    string
	Glossary   map[string]string
	// PartCount is the number of sheets/parts the job spans; it selects the
	// chunk size.
	PartCount int
}

// BatchTranslator turns an ordered list of masked text units into a
// same-length ordered list of translations. Chunks are processed strictly in
// sequence — one outbound request at a time — to preserve backoff semantics
// and stay inside the backend's rate limit.
type BatchTranslator struct {
	service translation.Service
	policy  translation.RetryPolicy
	logger  *zap.Logger
}

func NewBatchTranslator(service translation.Service, policy translation.RetryPolicy, logger *zap.Logger) *BatchTranslator {
	return &BatchTranslator{service: service, policy: policy, logger: logger}
}

// TranslateAll translates units in order and returns exactly len(units)
// results. A critical backend error (quota, auth, permission) propagates
// immediately: the caller must stop processing all remaining files.
// Non-critical chunk failures degrade to per-unit calls, and a per-unit
// failure substitutes the original text rather than aborting the file.
func (bt *BatchTranslator) TranslateAll(ctx context.Context, units []string, opts BatchOptions) ([]string, error) {
	if len(units) == 0 {
		return nil, nil
	}

	chunkSize := smallJobChunkSize
	if opts.PartCount > largeJobPartThreshold {
		chunkSize = largeJobChunkSize
	}

	results := make([]string, 0, len(units))
	for start := 0; start < len(units); start += chunkSize {
		end := start + chunkSize
		if end > len(units) {
			end = len(units)
		}
		chunk := units[start:end]

		translated, err := bt.translateChunk(ctx, chunk, opts)
		if err != nil {
			return nil, err
		}
		results = append(results, translated...)

		if end < len(units) {
			if err := translation.Sleep(ctx, bt.policy.InterChunkDelay); err != nil {
				return nil, err
			}
		}
	}
	return results, nil
}

// translateChunk attempts a chunk as a single batch request, retrying with
// exponential backoff. A response of the wrong length fails the attempt just
// like a transient error; a critical status aborts without retry. Exhausting
// the attempt budget falls back to per-unit translation.
func (bt *BatchTranslator) translateChunk(ctx context.Context, chunk []string, opts BatchOptions) ([]string, error) {
	req := &translation.BatchRequest{
		Texts:      chunk,
		SourceLang: opts.SourceLang,
		TargetLang: opts.TargetLang,
		Context:    opts.Context,
		Glossary:   translation.FilterGlossary(opts.Glossary, strings.Join(chunk, "\n")),
	}

	attempts := bt.policy.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		translated, err := bt.service.TranslateBatch(ctx, req)
		if err == nil {
			if len(translated) == len(chunk) {
				return translated, nil
			}
			// Treat a length mismatch the service did not catch itself as a
			// failed attempt, never as a partial success.
			err = translation.NewError(translation.ErrCodeProtocol,
				"batch result length mismatch", translation.ErrLengthMismatch)
		}

		if translation.IsCritical(err) {
			bt.logger.Error("critical translation failure, aborting without retry",
				zap.Int("chunkSize", len(chunk)),
				zap.Error(err))
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		bt.logger.Warn("batch attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Int("chunkSize", len(chunk)),
			zap.Error(err))

		if attempt < attempts-1 {
			if err := translation.Sleep(ctx, bt.policy.Backoff(attempt)); err != nil {
				return nil, err
			}
		}
	}

	bt.logger.Warn("batch retries exhausted, falling back to per-unit translation",
		zap.Int("chunkSize", len(chunk)))
	return bt.translateIndividually(ctx, chunk, opts)
}

// translateIndividually is the degraded path: one request per unit. A
// critical error still propagates; any other failure keeps the original
// text for that unit.
func (bt *BatchTranslator) translateIndividually(ctx context.Context, chunk []string, opts BatchOptions) ([]string, error) {
	results := make([]string, len(chunk))
	for i, text := range chunk {
		translated, err := bt.service.Translate(ctx, &translation.Request{
			Text:       text,
			SourceLang: opts.SourceLang,
			TargetLang: opts.TargetLang,
			Context:    opts.Context,
			Glossary:   translation.FilterGlossary(opts.Glossary, text),
		})
		if err != nil {
			if translation.IsCritical(err) {
				return nil, err
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			bt.logger.Warn("individual translation failed, keeping original text",
				zap.Int("unit", i),
				zap.Error(err))
			results[i] = text
			continue
		}
		results[i] = translated
	}
	return results, nil
}
