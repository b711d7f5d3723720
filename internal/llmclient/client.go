package llmclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Client is the concrete Provider backed by an OpenAI-compatible
// HTTP endpoint. One Client serves embed, generate and rerank; qmd
// never needs more than one provider instance at a time since
// spec.md §6 specifies a single LLMProvider interface rather than a
// provider-switchable service.
type Client struct {
	chat    openai.Client
	baseURL string
}

// New returns a Client pointed at baseURL (an OpenAI-compatible /v1
// endpoint). apiKey may be empty for providers that don't require one
// (Ollama, most local servers).
func New(baseURL, apiKey string) *Client {
	if apiKey == "" {
		apiKey = "not-needed"
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Client{
		chat:    openai.NewClient(opts...),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// formatEmbedInput applies spec.md §6's pre-embedding/pre-query
// formatting rules.
func formatEmbedInput(text string, opts EmbedOptions) string {
	if opts.IsQuery {
		return fmt.Sprintf("task: search result | query: %s", text)
	}
	title := opts.Title
	if title == "" {
		title = "none"
	}
	return fmt.Sprintf("title: %s | text: %s", title, text)
}

// Embed implements Provider.Embed.
func (c *Client) Embed(ctx context.Context, text string, opts EmbedOptions) (*EmbedResult, error) {
	input := formatEmbedInput(text, opts)

	resp, err := c.chat.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(opts.Model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{input}},
	})
	if err != nil {
		log.Warn("embed request failed", "model", opts.Model, "error", err)
		return nil, nil
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, nil
	}

	embedding := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		embedding[i] = float32(v)
	}

	return &EmbedResult{Embedding: embedding, Model: opts.Model}, nil
}

// Generate implements Provider.Generate.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenerateOptions) (*GenerateResult, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(opts.Model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Temperature: openai.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Logprobs {
		params.Logprobs = openai.Bool(true)
	}
	if len(opts.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: opts.Stop}
	}

	resp, err := c.chat.Chat.Completions.New(ctx, params)
	if err != nil {
		log.Warn("generate request failed", "model", opts.Model, "error", err)
		return nil, nil
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}

	choice := resp.Choices[0]
	result := &GenerateResult{
		Text: choice.Message.Content,
		Done: choice.FinishReason != "",
	}

	if opts.Logprobs && choice.Logprobs.Content != nil {
		for _, tl := range choice.Logprobs.Content {
			result.Logprobs = append(result.Logprobs, TokenLogprob{Token: tl.Token, Logprob: tl.Logprob})
		}
	}

	return result, nil
}
