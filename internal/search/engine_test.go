package search

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qmd-project/qmd/internal/llmclient"
	"github.com/qmd-project/qmd/internal/repo"
	"github.com/qmd-project/qmd/internal/store"
)

type fakeProvider struct{}

func (fakeProvider) Embed(_ context.Context, text string, opts llmclient.EmbedOptions) (*llmclient.EmbedResult, error) {
	vec := make([]float32, 4)
	for i := range vec {
		vec[i] = float32(len(text) + i)
	}
	return &llmclient.EmbedResult{Embedding: vec, Model: opts.Model}, nil
}

func (fakeProvider) Generate(context.Context, string, llmclient.GenerateOptions) (*llmclient.GenerateResult, error) {
	return nil, nil
}

func (fakeProvider) Rerank(_ context.Context, _ string, docs []llmclient.RerankDoc, _ llmclient.RerankOptions) (*llmclient.RerankResult, error) {
	results := make([]llmclient.RerankJudgment, len(docs))
	for i, d := range docs {
		results[i] = llmclient.RerankJudgment{File: d.File, Relevant: true, Score: 0.9}
	}
	return &llmclient.RerankResult{Results: results}, nil
}

func (fakeProvider) ExpandQuery(_ context.Context, query string, _ string, _ int) ([]string, error) {
	return []string{query}, nil
}

func (fakeProvider) ModelExists(context.Context, string) (llmclient.ModelInfo, error) {
	return llmclient.ModelInfo{}, nil
}

func (fakeProvider) PullModel(context.Context, string, llmclient.PullProgressFunc) (bool, error) {
	return false, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	s := newTestStore(t)
	e := New(repo.NewFTS(s), repo.NewVectors(s), repo.NewDocuments(s), repo.NewCollections(s), repo.NewCache(s), fakeProvider{})
	return e, s
}

func seedDocument(t *testing.T, s *store.Store, collectionID int64, path, title, hash, body string) {
	t.Helper()
	content := repo.NewContent(s)
	documents := repo.NewDocuments(s)
	require.NoError(t, content.Insert(hash, body))
	_, err := documents.Create(collectionID, path, title, hash, time.Now())
	require.NoError(t, err)
}

func TestSearchFTSFindsMatchingDocument(t *testing.T) {
	e, s := newTestEngine(t)
	collections := repo.NewCollections(s)
	col, err := collections.GetOrCreate("/repo", "**/*.md")
	require.NoError(t, err)

	seedDocument(t, s, col.ID, "notes.md", "Title", "h1", "the quick brown fox")

	hits, err := e.SearchFTS(context.Background(), "quick", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "notes.md", hits[0].DisplayPath)
	assert.Equal(t, "Title", hits[0].Title)
	assert.Greater(t, hits[0].Score, 0.0)
	assert.Equal(t, "fts", hits[0].Source)
}

func TestSearchFTSEmptyQueryReturnsNil(t *testing.T) {
	e, _ := newTestEngine(t)
	hits, err := e.SearchFTS(context.Background(), "!!!", DefaultOptions())
	require.NoError(t, err)
	assert.Nil(t, hits)
}

func TestSearchVectorWithoutVecTableReturnsEmpty(t *testing.T) {
	e, _ := newTestEngine(t)
	hits, err := e.SearchVector(context.Background(), "quick fox", DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestExpandQueryIsStableAcrossCalls(t *testing.T) {
	e, _ := newTestEngine(t)

	first, err := e.ExpandQuery(context.Background(), "quick fox", "model-a", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"quick fox"}, first)

	second, err := e.ExpandQuery(context.Background(), "quick fox", "model-a", 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSearchHybridFallsBackToFTSOnly(t *testing.T) {
	e, s := newTestEngine(t)
	collections := repo.NewCollections(s)
	col, err := collections.GetOrCreate("/repo", "**/*.md")
	require.NoError(t, err)

	seedDocument(t, s, col.ID, "notes.md", "Title", "h1", "the quick brown fox jumps")

	opts := DefaultOptions()
	hits, err := e.SearchHybrid(context.Background(), "quick", opts)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "notes.md", hits[0].DisplayPath)
}
