// Package hub fetches model snapshots from the HuggingFace hub into a local
// cache directory, keyed by repo identifier.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lightwhisper/lightwhisper/internal/whisper"
)

const (
	DefaultBaseURL  = "https://huggingface.co"
	DefaultRevision = "main"

	EnvToken    = "HF_TOKEN"
	EnvEndpoint = "HF_ENDPOINT"
)

// FileInfo describes one file in a remote repo. Large files carry their
// sha256 in LFS metadata, which the downloader verifies against.
type FileInfo struct {
	Name string
	Size int64
	SHA  string
}

// RepoInfo is the subset of the hub's model API response the fetcher needs.
type RepoInfo struct {
	SHA      string
	Files    []FileInfo
	Gated    bool
	Revision string
}

// Client talks to the hub's model API.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClient builds a hub client, honoring the HF_ENDPOINT and HF_TOKEN
// environment overrides.
func NewClient(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := DefaultBaseURL
	if endpoint := strings.TrimSpace(os.Getenv(EnvEndpoint)); endpoint != "" {
		baseURL = strings.TrimSuffix(endpoint, "/")
	}

	return &Client{
		BaseURL:    baseURL,
		Token:      strings.TrimSpace(os.Getenv(EnvToken)),
		HTTPClient: &http.Client{Timeout: 2 * time.Minute},
		Logger:     logger,
	}
}

// RepoInfo fetches the file listing for a repo at the given revision.
func (c *Client) RepoInfo(ctx context.Context, repo, revision string) (RepoInfo, error) {
	if revision == "" {
		revision = DefaultRevision
	}

	url := fmt.Sprintf("%s/api/models/%s/revision/%s", c.baseURL(), repo, revision)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return RepoInfo{}, fmt.Errorf("create repo info request: %w", err)
	}
	c.applyHeaders(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return RepoInfo{}, fmt.Errorf("%w: query %s: %v", whisper.ErrSourceUnavailable, repo, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return RepoInfo{}, fmt.Errorf("%w: repo %s not found on %s", whisper.ErrSourceUnavailable, repo, c.baseURL())
	case http.StatusUnauthorized, http.StatusForbidden:
		return RepoInfo{}, fmt.Errorf("%w: repo %s requires authentication; set %s", whisper.ErrSourceUnavailable, repo, EnvToken)
	default:
		return RepoInfo{}, fmt.Errorf("%w: repo %s returned status %d", whisper.ErrSourceUnavailable, repo, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RepoInfo{}, fmt.Errorf("%w: read repo info for %s: %v", whisper.ErrSourceUnavailable, repo, err)
	}

	var raw struct {
		SHA      string `json:"sha"`
		Gated    any    `json:"gated"`
		Siblings []struct {
			Rfilename string `json:"rfilename"`
			Size      int64  `json:"size"`
			LFS       *struct {
				SHA256 string `json:"sha256"`
				Size   int64  `json:"size"`
			} `json:"lfs"`
		} `json:"siblings"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return RepoInfo{}, fmt.Errorf("%w: decode repo info for %s: %v", whisper.ErrSourceUnavailable, repo, err)
	}

	info := RepoInfo{SHA: raw.SHA, Revision: revision, Gated: isGated(raw.Gated)}
	for _, sibling := range raw.Siblings {
		file := FileInfo{Name: sibling.Rfilename, Size: sibling.Size}
		if sibling.LFS != nil {
			file.SHA = sibling.LFS.SHA256
			if file.Size == 0 {
				file.Size = sibling.LFS.Size
			}
		}
		info.Files = append(info.Files, file)
	}

	return info, nil
}

// FileURL returns the direct download URL for one file in a repo.
func (c *Client) FileURL(repo, revision, name string) string {
	if revision == "" {
		revision = DefaultRevision
	}
	return fmt.Sprintf("%s/%s/resolve/%s/%s", c.baseURL(), repo, revision, name)
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "lightwhisper/1")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

func (c *Client) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimSuffix(c.BaseURL, "/")
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

// the hub reports gated as false, "auto", or "manual"
func isGated(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "auto" || v == "manual"
	default:
		return false
	}
}
