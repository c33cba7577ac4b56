// Package translation defines the contract between the document pipelines and
// the external translation capability: request/response shapes, the error
// taxonomy, and the retry policy consumed by the batch orchestrator.
package translation

import (
	"context"
	"strings"
)

// Request is a single-string translation request.
type Request struct {
	Text       string
	SourceLang string
	TargetLang string
	// Context is free-text background handed to the backend (document title,
	// slide subject) to steer terminology. May be empty.
	Context string
	// Glossary holds term -> translation pairs. Callers are expected to filter
	// it down to terms that literally occur in Text before issuing the request.
	Glossary map[string]string
}

// BatchRequest is an ordered list request. The backend must answer with a
// same-length ordered list; anything else is a protocol violation.
type BatchRequest struct {
	Texts      []string
	SourceLang string
	TargetLang string
	Context    string
	Glossary   map[string]string
}

// Service is the translation capability the engine calls into. Implementations
// live under pkg/providers.
type Service interface {
	Translate(ctx context.Context, req *Request) (string, error)
	// TranslateBatch returns exactly len(req.Texts) results in request order,
	// or an error. Implementations must not return partial results.
	TranslateBatch(ctx context.Context, req *BatchRequest) ([]string, error)
}

// FilterGlossary returns only the glossary entries whose term literally occurs
// in text. This keeps per-call payloads small instead of shipping the full
// glossary with every request.
func FilterGlossary(glossary map[string]string, text string) map[string]string {
	if len(glossary) == 0 {
		return nil
	}
	filtered := make(map[string]string)
	for term, tr := range glossary {
		if term != "" && strings.Contains(text, term) {
			filtered[term] = tr
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}
