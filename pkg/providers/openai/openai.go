// Package openai implements translation.Service on top of any
// OpenAI-compatible chat completion endpoint.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/officetrans/go-office-translator/pkg/providers"
	"github.com/officetrans/go-office-translator/pkg/translation"
)

// Provider is an OpenAI-compatible translation backend.
type Provider struct {
	config providers.Config
	client *goopenai.Client
}

// New creates a provider against config.BaseURL, or api.openai.com when the
// base URL is empty.
func New(config providers.Config) *Provider {
	clientConfig := goopenai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	}
	return &Provider{
		config: config,
		client: goopenai.NewClientWithConfig(clientConfig),
	}
}

// Translate translates a single string.
func (p *Provider) Translate(ctx context.Context, req *translation.Request) (string, error) {
	resp, err := p.complete(ctx, p.systemPrompt(req.SourceLang, req.TargetLang, req.Context, req.Glossary, false), req.Text)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}

// TranslateBatch sends the units as a JSON array and requires a same-length
// JSON array back. Any other response shape is a protocol error, which the
// orchestrator treats as a failed attempt.
func (p *Provider) TranslateBatch(ctx context.Context, req *translation.BatchRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return nil, translation.ErrEmptyBatch
	}

	payload, err := json.Marshal(req.Texts)
	if err != nil {
		return nil, translation.NewError(translation.ErrCodeProtocol, "failed to encode batch payload", err)
	}

	resp, err := p.complete(ctx, p.systemPrompt(req.SourceLang, req.TargetLang, req.Context, req.Glossary, true), string(payload))
	if err != nil {
		return nil, err
	}

	results, err := decodeJSONArray(resp)
	if err != nil {
		return nil, translation.NewError(translation.ErrCodeProtocol, "backend did not return a JSON array", err)
	}
	if len(results) != len(req.Texts) {
		return nil, translation.NewError(translation.ErrCodeProtocol,
			fmt.Sprintf("requested %d translations, received %d", len(req.Texts), len(results)),
			translation.ErrLengthMismatch)
	}
	return results, nil
}

func (p *Provider) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       p.config.Model,
		Temperature: p.config.Temperature,
		MaxTokens:   p.config.MaxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", translation.NewError(translation.ErrCodeProtocol, "backend returned no choices", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *Provider) systemPrompt(sourceLang, targetLang, context string, glossary map[string]string, batch bool) string {
	var b strings.Builder
	b.WriteString("You are a professional document translator. Translate from ")
	if sourceLang != "" {
		b.WriteString(sourceLang)
	} else {
		b.WriteString("the detected source language")
	}
	b.WriteString(" to ")
	b.WriteString(targetLang)
	b.WriteString(". Preserve placeholder tokens of the form __P<number>__ exactly as they appear.")
	if batch {
		b.WriteString(" The input is a JSON array of strings. Respond with only a JSON array of the translated strings, same length, same order, no commentary.")
	} else {
		b.WriteString(" Respond with only the translated text.")
	}
	if context != "" {
		b.WriteString("\nContext: ")
		b.WriteString(context)
	}
	if len(glossary) > 0 {
		terms := make([]string, 0, len(glossary))
		for term := range glossary {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		b.WriteString("\nUse this glossary:")
		for _, term := range terms {
			b.WriteString(fmt.Sprintf("\n- %s => %s", term, glossary[term]))
		}
	}
	return b.String()
}

// decodeJSONArray parses a JSON string array out of a completion, tolerating
// markdown code fences around the payload.
func decodeJSONArray(resp string) ([]string, error) {
	s := strings.TrimSpace(resp)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// classifyError maps client errors onto the translation error taxonomy,
// keeping the originating status code so critical statuses short-circuit
// retries upstream.
func classifyError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return translation.NewStatusError(apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return translation.NewStatusError(reqErr.HTTPStatusCode, reqErr.Error(), err)
	}
	return translation.NewError(translation.ErrCodeNetwork, "request failed", err)
}
