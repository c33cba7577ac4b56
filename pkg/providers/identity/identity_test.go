package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officetrans/go-office-translator/pkg/translation"
)

func TestIdentityEchoes(t *testing.T) {
	p := New()

	out, err := p.Translate(context.Background(), &translation.Request{Text: "Hello", TargetLang: "fr"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", out)

	batch, err := p.TranslateBatch(context.Background(), &translation.BatchRequest{
		Texts:      []string{"a", "b"},
		TargetLang: "fr",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, batch)

	_, err = p.TranslateBatch(context.Background(), &translation.BatchRequest{TargetLang: "fr"})
	assert.ErrorIs(t, err, translation.ErrEmptyBatch)
}
