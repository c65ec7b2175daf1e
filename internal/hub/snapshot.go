package hub

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lightwhisper/lightwhisper/internal/download"
	"github.com/lightwhisper/lightwhisper/internal/modelfile"
	"github.com/lightwhisper/lightwhisper/internal/whisper"
)

// concurrent file downloads per snapshot
const fetchParallelism = 4

// sidecar files pulled alongside config and weights when the repo has them
var sidecarNames = map[string]bool{
	"tokenizer.json":           true,
	"tokenizer_config.json":    true,
	"vocab.json":               true,
	"merges.txt":               true,
	"special_tokens_map.json":  true,
	"added_tokens.json":        true,
	"preprocessor_config.json": true,
}

// Fetcher ensures resolved sources are available as local snapshot
// directories, fetching from the hub when they are not.
type Fetcher struct {
	Client     *Client
	CacheDir   string
	NoProgress bool
	Logger     *zap.Logger
}

// NewFetcher builds a fetcher storing snapshots under cacheDir.
func NewFetcher(cacheDir string, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		Client:   NewClient(logger),
		CacheDir: cacheDir,
		Logger:   logger,
	}
}

// EnsureLocal resolves a source to a local snapshot directory. A source that
// already names an existing directory is returned as is; anything else is
// treated as a repo identifier and fetched into the cache. Fetching is
// idempotent: a cached snapshot holding a config and a weights artifact is
// reused without touching the network.
func (f *Fetcher) EnsureLocal(ctx context.Context, source whisper.Source) (string, error) {
	raw := strings.TrimSpace(string(source))
	if raw == "" {
		return "", fmt.Errorf("%w: model source must not be empty", whisper.ErrInvalidArgument)
	}

	if info, err := os.Stat(raw); err == nil && info.IsDir() {
		return filepath.Clean(raw), nil
	}

	dir := f.snapshotDir(raw)
	if snapshotComplete(dir) {
		f.log().Debug("snapshot cache hit", zap.String("repo", raw), zap.String("dir", dir))
		return dir, nil
	}

	if err := f.fetchSnapshot(ctx, raw, dir); err != nil {
		return "", err
	}

	return dir, nil
}

// snapshotDir maps a repo id like "mlx-community/whisper-tiny" to a cache
// directory name that is safe on every filesystem.
func (f *Fetcher) snapshotDir(repo string) string {
	return filepath.Join(f.CacheDir, strings.ReplaceAll(repo, "/", "--"))
}

func (f *Fetcher) fetchSnapshot(ctx context.Context, repo, dir string) error {
	info, err := f.Client.RepoInfo(ctx, repo, DefaultRevision)
	if err != nil {
		return err
	}

	wanted := snapshotFiles(info.Files)
	if len(wanted) == 0 {
		return fmt.Errorf("%w: repo %s has no recognized model files", whisper.ErrSourceUnavailable, repo)
	}

	f.log().Info("fetching model snapshot",
		zap.String("repo", repo),
		zap.String("dir", dir),
		zap.Int("files", len(wanted)))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory %s: %w", dir, err)
	}

	client := &http.Client{Timeout: 0}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(fetchParallelism)
	for _, file := range wanted {
		file := file
		group.Go(func() error {
			destination := filepath.Join(dir, file.Name)
			if file.SHA != "" {
				if err := download.VerifyFileChecksum(destination, file.SHA); err == nil {
					return nil
				}
			}

			err := download.File(groupCtx, download.Options{
				URL:            f.Client.FileURL(repo, info.Revision, file.Name),
				Destination:    destination,
				ExpectedSHA256: file.SHA,
				NoProgress:     f.NoProgress,
				HTTPClient:     client,
				Logger:         f.log(),
			})
			if err != nil {
				return fmt.Errorf("%w: fetch %s from %s: %v", whisper.ErrSourceUnavailable, file.Name, repo, err)
			}
			return nil
		})
	}

	return group.Wait()
}

// snapshotFiles picks the files worth pulling: the config, every recognized
// weights artifact the repo carries, and tokenizer sidecars.
func snapshotFiles(files []FileInfo) []FileInfo {
	weightNames := make(map[string]bool)
	for _, name := range modelfile.WeightNames() {
		weightNames[name] = true
	}

	var wanted []FileInfo
	for _, file := range files {
		switch {
		case file.Name == modelfile.ConfigFileName:
			wanted = append(wanted, file)
		case weightNames[file.Name]:
			wanted = append(wanted, file)
		case sidecarNames[file.Name]:
			wanted = append(wanted, file)
		}
	}
	return wanted
}

// snapshotComplete reports whether a cached snapshot already holds a config
// and a weights artifact.
func snapshotComplete(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, modelfile.ConfigFileName)); err != nil {
		return false
	}
	_, err := modelfile.FindWeights(dir)
	return err == nil
}

func (f *Fetcher) log() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}
