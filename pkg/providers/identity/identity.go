// Package identity provides a translation backend that returns its input
// unchanged. It backs --dry-run and lets the pipelines be exercised offline.
package identity

import (
	"context"

	"github.com/officetrans/go-office-translator/pkg/translation"
)

// Provider echoes every request back.
type Provider struct{}

func New() *Provider {
	return &Provider{}
}

func (p *Provider) Translate(_ context.Context, req *translation.Request) (string, error) {
	return req.Text, nil
}

func (p *Provider) TranslateBatch(_ context.Context, req *translation.BatchRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return nil, translation.ErrEmptyBatch
	}
	out := make([]string, len(req.Texts))
	copy(out, req.Texts)
	return out, nil
}
