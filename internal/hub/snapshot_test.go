package hub

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightwhisper/lightwhisper/internal/whisper"
)

const testRepo = "mlx-community/whisper-tiny"

type fakeHub struct {
	server   *httptest.Server
	requests atomic.Int64
	files    map[string][]byte
}

func newFakeHub(t *testing.T) *fakeHub {
	t.Helper()

	hub := &fakeHub{files: map[string][]byte{
		"config.json":        []byte(`{"n_mels": 80}`),
		"model.safetensors":  []byte("safetensor-bytes"),
		"tokenizer.json":     []byte(`{}`),
		"README.md":          []byte("ignored"),
		"benchmark_plot.png": []byte("ignored"),
	}}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/models/"+testRepo+"/revision/main", func(w http.ResponseWriter, _ *http.Request) {
		hub.requests.Add(1)

		type sibling struct {
			Rfilename string `json:"rfilename"`
			Size      int64  `json:"size"`
			LFS       *struct {
				SHA256 string `json:"sha256"`
			} `json:"lfs,omitempty"`
		}

		weightsSHA := sha256.Sum256(hub.files["model.safetensors"])
		response := map[string]any{
			"sha": "abc123",
			"siblings": []sibling{
				{Rfilename: "config.json", Size: int64(len(hub.files["config.json"]))},
				{Rfilename: "model.safetensors", Size: int64(len(hub.files["model.safetensors"])), LFS: &struct {
					SHA256 string `json:"sha256"`
				}{SHA256: hex.EncodeToString(weightsSHA[:])}},
				{Rfilename: "tokenizer.json", Size: 2},
				{Rfilename: "README.md", Size: 7},
				{Rfilename: "benchmark_plot.png", Size: 7},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(response))
	})
	mux.HandleFunc(fmt.Sprintf("/%s/resolve/main/", testRepo), func(w http.ResponseWriter, r *http.Request) {
		hub.requests.Add(1)
		name := filepath.Base(r.URL.Path)
		content, ok := hub.files[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(content)
	})

	hub.server = httptest.NewServer(mux)
	t.Cleanup(hub.server.Close)
	return hub
}

func newTestFetcher(t *testing.T, hub *fakeHub) *Fetcher {
	t.Helper()

	fetcher := NewFetcher(t.TempDir(), nil)
	fetcher.NoProgress = true
	fetcher.Client.BaseURL = hub.server.URL
	return fetcher
}

func TestEnsureLocalFetchesSnapshot(t *testing.T) {
	t.Parallel()

	hub := newFakeHub(t)
	fetcher := newTestFetcher(t, hub)

	dir, err := fetcher.EnsureLocal(context.Background(), testRepo)
	require.NoError(t, err)

	onDisk, err := os.ReadFile(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	require.Equal(t, hub.files["config.json"], onDisk)

	weights, err := os.ReadFile(filepath.Join(dir, "model.safetensors"))
	require.NoError(t, err)
	require.Equal(t, hub.files["model.safetensors"], weights)

	_, err = os.Stat(filepath.Join(dir, "tokenizer.json"))
	require.NoError(t, err)

	// non-model files stay on the hub
	_, err = os.Stat(filepath.Join(dir, "README.md"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestEnsureLocalIsIdempotent(t *testing.T) {
	t.Parallel()

	hub := newFakeHub(t)
	fetcher := newTestFetcher(t, hub)

	first, err := fetcher.EnsureLocal(context.Background(), testRepo)
	require.NoError(t, err)
	fetched := hub.requests.Load()
	require.Positive(t, fetched)

	second, err := fetcher.EnsureLocal(context.Background(), testRepo)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, fetched, hub.requests.Load(), "cached snapshot must not refetch")
}

func TestEnsureLocalReturnsExistingDirectoryAsIs(t *testing.T) {
	t.Parallel()

	hub := newFakeHub(t)
	fetcher := newTestFetcher(t, hub)

	local := t.TempDir()
	dir, err := fetcher.EnsureLocal(context.Background(), whisper.Source(local))
	require.NoError(t, err)
	require.Equal(t, filepath.Clean(local), dir)
	require.Zero(t, hub.requests.Load())
}

func TestEnsureLocalUnknownRepo(t *testing.T) {
	t.Parallel()

	hub := newFakeHub(t)
	fetcher := newTestFetcher(t, hub)

	_, err := fetcher.EnsureLocal(context.Background(), "mlx-community/no-such-model")
	require.ErrorIs(t, err, whisper.ErrSourceUnavailable)
}

func TestEnsureLocalEmptySource(t *testing.T) {
	t.Parallel()

	fetcher := NewFetcher(t.TempDir(), nil)
	_, err := fetcher.EnsureLocal(context.Background(), "  ")
	require.ErrorIs(t, err, whisper.ErrInvalidArgument)
}

func TestRepoInfoAuthAndErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"sha": "x", "siblings": []}`))
	}))
	defer server.Close()

	client := &Client{BaseURL: server.URL}
	_, err := client.RepoInfo(context.Background(), "org/model", "")
	require.ErrorIs(t, err, whisper.ErrSourceUnavailable)

	client.Token = "token123"
	info, err := client.RepoInfo(context.Background(), "org/model", "")
	require.NoError(t, err)
	require.Equal(t, "x", info.SHA)
	require.Equal(t, "main", info.Revision)
}
