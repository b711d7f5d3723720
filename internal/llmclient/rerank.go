package llmclient

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

const defaultRerankBatchSize = 5

// rerankInstruction is the fixed prompt template driving the forced
// single-token yes/no judgment. The query fills %q (as a quoted
// string), then the document text fills %s.
const rerankInstruction = "You judge whether a document is relevant to a search query. " +
	"Query: %q\n\nDocument:\n%s\n\n" +
	"Answer with exactly one word, \"yes\" or \"no\": is this document relevant to the query?"

// Rerank implements Provider.Rerank: it judges docs against query in
// bounded-concurrency batches of opts.BatchSize, each judgment derived
// from a forced yes/no Generate call with logprobs.
func (c *Client) Rerank(ctx context.Context, query string, docs []RerankDoc, opts RerankOptions) (*RerankResult, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultRerankBatchSize
	}

	results := make([]RerankJudgment, len(docs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, batchSize)

	for i, doc := range docs {
		i, doc := i, doc
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = c.judgeOne(ctx, query, doc, opts.Model)
		}()
	}
	wg.Wait()

	return &RerankResult{Results: results, Model: opts.Model}, nil
}

func (c *Client) judgeOne(ctx context.Context, query string, doc RerankDoc, model string) RerankJudgment {
	prompt := fmt.Sprintf(rerankInstruction, query, doc.Text)

	resp, err := c.Generate(ctx, prompt, GenerateOptions{
		Model:     model,
		MaxTokens: 4,
		Logprobs:  true,
	})
	if err != nil || resp == nil {
		log.Debug("rerank judgment failed, scoring as error token", "file", doc.File, "error", err)
		return RerankJudgment{File: doc.File, Relevant: false, Confidence: 0, Score: 0.3, RawToken: ""}
	}

	token := strings.ToLower(strings.TrimSpace(resp.Text))

	logprob := 0.0
	rawToken := token
	if len(resp.Logprobs) > 0 {
		logprob = resp.Logprobs[0].Logprob
		rawToken = resp.Logprobs[0].Token
	}
	confidence := math.Exp(logprob)
	relevant, score := scoreFromToken(token, confidence)

	return RerankJudgment{
		File:       doc.File,
		Relevant:   relevant,
		Confidence: confidence,
		Score:      score,
		RawToken:   rawToken,
		Logprob:    logprob,
	}
}

// scoreFromToken implements spec.md §4.6.4's blend of a yes/no token
// and its exp(logprob) confidence into a relevance verdict and score.
func scoreFromToken(token string, confidence float64) (relevant bool, score float64) {
	switch {
	case strings.HasPrefix(token, "yes"):
		return true, 0.5 + 0.5*confidence
	case strings.HasPrefix(token, "no"):
		return false, 0.5 * (1 - confidence)
	default:
		return false, 0.3
	}
}
