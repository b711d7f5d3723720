package llmclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// ollamaBaseURL strips the OpenAI-compatible "/v1" suffix so the
// client can reach Ollama's native /api/tags and /api/pull endpoints,
// which have no OpenAI-compatible equivalent.
func (c *Client) ollamaBaseURL() string {
	return strings.TrimSuffix(c.baseURL, "/v1")
}

type ollamaTagsResponse struct {
	Models []struct {
		Name       string `json:"name"`
		Size       int64  `json:"size"`
		ModifiedAt string `json:"modified_at"`
	} `json:"models"`
}

// ModelExists implements Provider.ModelExists via Ollama's native
// /api/tags listing. A request failure degrades to exists=false
// rather than an error, per spec.md §5's "treat provider errors as
// null returns" rule.
func (c *Client) ModelExists(ctx context.Context, model string) (ModelInfo, error) {
	url := c.ollamaBaseURL() + "/api/tags"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ModelInfo{Name: model, Exists: false}, nil
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Debug("model listing unreachable", "url", url, "error", err)
		return ModelInfo{Name: model, Exists: false}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ModelInfo{Name: model, Exists: false}, nil
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return ModelInfo{Name: model, Exists: false}, nil
	}

	for _, m := range tags.Models {
		if m.Name == model {
			return ModelInfo{Name: model, Exists: true, Size: m.Size, ModifiedAt: m.ModifiedAt}, nil
		}
	}

	return ModelInfo{Name: model, Exists: false}, nil
}

type ollamaPullRequest struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

type ollamaPullProgress struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// PullModel implements Provider.PullModel via Ollama's native
// /api/pull, streaming newline-delimited JSON progress lines to
// onProgress. Returns false (not an error) if the provider isn't
// reachable or doesn't support pulling.
func (c *Client) PullModel(ctx context.Context, model string, onProgress PullProgressFunc) (bool, error) {
	body, err := json.Marshal(ollamaPullRequest{Model: model, Stream: true})
	if err != nil {
		return false, fmt.Errorf("failed to marshal pull request: %w", err)
	}

	url := c.ollamaBaseURL() + "/api/pull"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, nil
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		log.Debug("model pull unreachable", "url", url, "error", err)
		return false, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}

	scanner := bufio.NewScanner(resp.Body)
	success := true
	for scanner.Scan() {
		var progress ollamaPullProgress
		if err := json.Unmarshal(scanner.Bytes(), &progress); err != nil {
			continue
		}
		if progress.Error != "" {
			log.Warn("model pull reported error", "model", model, "error", progress.Error)
			success = false
			continue
		}
		if onProgress != nil {
			onProgress(progress.Status)
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return false, nil
	}

	return success, nil
}
