package llmclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelExistsFindsMatchingModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		fmt.Fprint(w, `{"models":[{"name":"llama3","size":123,"modified_at":"2026-01-01T00:00:00Z"}]}`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/v1", "")
	info, err := c.ModelExists(context.Background(), "llama3")
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.EqualValues(t, 123, info.Size)
}

func TestModelExistsFalseWhenNotListed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"models":[{"name":"other-model"}]}`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/v1", "")
	info, err := c.ModelExists(context.Background(), "llama3")
	require.NoError(t, err)
	assert.False(t, info.Exists)
}

func TestModelExistsDegradesOnUnreachableProvider(t *testing.T) {
	c := New("http://127.0.0.1:1/v1", "")
	info, err := c.ModelExists(context.Background(), "llama3")
	require.NoError(t, err)
	assert.False(t, info.Exists)
}

func TestPullModelStreamsProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/pull", r.URL.Path)
		fmt.Fprintln(w, `{"status":"pulling manifest"}`)
		fmt.Fprintln(w, `{"status":"success"}`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/v1", "")
	var statuses []string
	ok, err := c.PullModel(context.Background(), "llama3", func(status string) {
		statuses = append(statuses, status)
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"pulling manifest", "success"}, statuses)
}

func TestPullModelReportsFailureOnErrorLine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"error":"model not found"}`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/v1", "")
	ok, err := c.PullModel(context.Background(), "nope", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
