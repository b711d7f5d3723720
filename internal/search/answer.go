package search

import (
	"context"
	"fmt"

	"github.com/qmd-project/qmd/internal/llmclient"
)

// answerSystemPrompt mirrors the teacher's llm/qa.go system prompt,
// generalized from "codebases" to qmd's markdown collections.
const answerSystemPrompt = `You are a helpful research assistant that answers questions about a collection of markdown notes.

Your role is to:
1. Analyze the provided note excerpts carefully
2. Answer the user's question accurately based on them
3. Reference specific files when citing material
4. Be concise but thorough
5. If the excerpts don't contain enough information to answer, say so

Format your answer in markdown when appropriate.`

const noResultsAnswer = "I couldn't find anything relevant. Try rephrasing the question or indexing more notes."

// Answer synthesizes a natural-language response to query from the
// given (already ranked) hits, the teacher's buildContext +
// fixed-system-prompt + single Generate call pattern generalized to
// qmd's query operation.
func (e *Engine) Answer(ctx context.Context, query, model string, hits []SearchHit) (string, error) {
	if len(hits) == 0 {
		return noResultsAnswer, nil
	}

	prompt := answerSystemPrompt + "\n\nQuestion: " + query + "\n\n" + buildAnswerContext(hits)
	result, err := e.provider.Generate(ctx, prompt, llmclient.GenerateOptions{
		Model:       model,
		MaxTokens:   1024,
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}
	if result == nil || result.Text == "" {
		return "I couldn't generate an answer from the retrieved notes.", nil
	}
	return result.Text, nil
}

func buildAnswerContext(hits []SearchHit) string {
	out := "Here are the relevant notes:\n\n"
	for i, h := range hits {
		out += fmt.Sprintf("--- Source [%d]: %s (%.0f%% match) ---\n%s\n\n", i+1, h.DisplayPath, h.Score*100, h.Snippet)
	}
	return out
}
