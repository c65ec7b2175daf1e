package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func sha256Hex(data []byte) string {
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}

func TestFileDownloadsAndVerifies(t *testing.T) {
	t.Parallel()

	content := []byte("model weights payload")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(content)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "weights.safetensors")
	err := File(context.Background(), Options{
		URL:            server.URL,
		Destination:    dest,
		ExpectedSHA256: sha256Hex(content),
		NoProgress:     true,
	})
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, content, got)

	_, err = os.Stat(dest + ".part")
	require.True(t, os.IsNotExist(err))
}

func TestFileChecksumMismatchLeavesNoArtifact(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("tampered"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "config.json")
	err := File(context.Background(), Options{
		URL:            server.URL,
		Destination:    dest,
		ExpectedSHA256: sha256Hex([]byte("original")),
		Retries:        1,
		NoProgress:     true,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "checksum mismatch")

	_, err = os.Stat(dest)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(dest + ".part")
	require.True(t, os.IsNotExist(err))
}

func TestFileRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("eventually fine"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "tokenizer.json")
	err := File(context.Background(), Options{
		URL:         server.URL,
		Destination: dest,
		Retries:     3,
		NoProgress:  true,
	})
	require.NoError(t, err)
	require.EqualValues(t, 3, requests.Load())

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "eventually fine", string(got))
}

func TestFileExhaustsRetries(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	err := File(context.Background(), Options{
		URL:         server.URL,
		Destination: filepath.Join(t.TempDir(), "missing.bin"),
		Retries:     2,
		NoProgress:  true,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status code 404")
	require.EqualValues(t, 2, requests.Load())
}

func TestFileRequiresURLAndDestination(t *testing.T) {
	t.Parallel()

	err := File(context.Background(), Options{Destination: "/tmp/x"})
	require.Error(t, err)

	err = File(context.Background(), Options{URL: "http://localhost/x"})
	require.Error(t, err)
}

func TestVerifyFileChecksum(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "file.bin")
	content := []byte("verified content")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	require.NoError(t, VerifyFileChecksum(path, sha256Hex(content)))
	require.NoError(t, VerifyFileChecksum(path, ""))

	err := VerifyFileChecksum(path, sha256Hex([]byte("other")))
	require.Error(t, err)
	require.Contains(t, err.Error(), "checksum mismatch")

	err = VerifyFileChecksum(filepath.Join(t.TempDir(), "nope.bin"), sha256Hex(content))
	require.Error(t, err)
}
