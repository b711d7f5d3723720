// Package llmclient implements the LLMProvider external-collaborator
// interface of spec.md §6: embed, generate, rerank, expandQuery's
// underlying call, modelExists and pullModel, all against a single
// OpenAI-compatible HTTP endpoint (Ollama, vLLM, LM Studio, or OpenAI
// itself all speak this surface for embeddings and chat completions).
package llmclient

import "context"

// EmbedOptions configures a single embed call.
type EmbedOptions struct {
	Model   string
	IsQuery bool
	Title   string
}

// EmbedResult is the outcome of a successful embed call.
type EmbedResult struct {
	Embedding []float32
	Model     string
}

// GenerateOptions configures a single generate call.
type GenerateOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Logprobs    bool
	Raw         bool
	Stop        []string
}

// TokenLogprob is one token's log-probability, as returned alongside a
// generate response when Logprobs is requested.
type TokenLogprob struct {
	Token   string
	Logprob float64
}

// GenerateResult is the outcome of a successful generate call.
type GenerateResult struct {
	Text     string
	Logprobs []TokenLogprob
	Done     bool
}

// RerankOptions configures a batched rerank call.
type RerankOptions struct {
	Model     string
	BatchSize int
}

// RerankJudgment is one document's relevance verdict from a rerank call.
type RerankJudgment struct {
	File       string
	Relevant   bool
	Confidence float64
	Score      float64
	RawToken   string
	Logprob    float64
}

// RerankResult is the outcome of a rerank call across a batch of documents.
type RerankResult struct {
	Results []RerankJudgment
	Model   string
}

// RerankDoc is one document to be judged by rerank, keyed by a caller
// supplied identifier (the hybrid search passes the document's qmd://
// virtual path) plus the text snippet
// to show the model.
type RerankDoc struct {
	File string
	Text string
}

// ModelInfo describes whether a model is available locally.
type ModelInfo struct {
	Name       string
	Exists     bool
	Size       int64
	ModifiedAt string
}

// PullProgressFunc is called with human-readable progress lines while
// pullModel streams a model download.
type PullProgressFunc func(status string)

// Provider is the LLMProvider interface of spec.md §6. Every method
// degrades to a null/zero result rather than panicking on provider
// failure; callers decide whether a null result is fatal.
type Provider interface {
	// Embed returns nil, nil on a provider error (never a crash); the
	// core treats a nil result as "skip this item, count an error".
	Embed(ctx context.Context, text string, opts EmbedOptions) (*EmbedResult, error)
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (*GenerateResult, error)
	Rerank(ctx context.Context, query string, docs []RerankDoc, opts RerankOptions) (*RerankResult, error)
	ExpandQuery(ctx context.Context, query, model string, count int) ([]string, error)
	ModelExists(ctx context.Context, model string) (ModelInfo, error)
	PullModel(ctx context.Context, model string, onProgress PullProgressFunc) (bool, error)
}
