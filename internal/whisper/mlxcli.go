package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// EnvEnginePath overrides the mlx_whisper executable lookup.
const EnvEnginePath = "LIGHTWHISPER_ENGINE_PATH"

const engineBinaryName = "mlx_whisper"

// ExecEngine shells out to the mlx_whisper command-line tool, the reference
// front end of the MLX whisper runtime. It is the default engine when no
// in-process runtime binding is wired.
type ExecEngine struct {
	Executable string
	Logger     *zap.Logger
}

// NewExecEngine locates the mlx_whisper executable, honoring the
// LIGHTWHISPER_ENGINE_PATH override before searching PATH.
func NewExecEngine(logger *zap.Logger) (*ExecEngine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if override := strings.TrimSpace(os.Getenv(EnvEnginePath)); override != "" {
		if err := ensureExecutable(override); err != nil {
			return nil, fmt.Errorf("%s is not executable: %w", EnvEnginePath, err)
		}
		return &ExecEngine{Executable: override, Logger: logger}, nil
	}

	path, err := exec.LookPath(engineBinaryName)
	if err != nil {
		return nil, fmt.Errorf("mlx_whisper not found on PATH; install it with `pip install mlx-whisper` or set %s", EnvEnginePath)
	}

	return &ExecEngine{Executable: path, Logger: logger}, nil
}

func (e *ExecEngine) Transcribe(ctx context.Context, req TranscriptionRequest) (Result, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return Result{}, fmt.Errorf("%w: audio path is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(string(req.Source)) == "" {
		return Result{}, fmt.Errorf("%w: model source is required", ErrInvalidArgument)
	}

	if err := ensureExecutable(e.Executable); err != nil {
		return Result{}, fmt.Errorf("mlx_whisper missing or not executable: %w", err)
	}

	outDir, err := os.MkdirTemp("", "lightwhisper-")
	if err != nil {
		return Result{}, fmt.Errorf("create output directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	args := e.buildArgs(req, outDir)

	cmd := exec.CommandContext(ctx, e.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdout = io.Discard
	if req.Verbose {
		cmd.Stdout = os.Stderr
	}

	e.log().Debug("running mlx_whisper", zap.String("engine", e.Executable), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if isMissingModuleError(errText) {
			return Result{}, fmt.Errorf("mlx_whisper is missing its Python runtime (%s); reinstall with `pip install mlx-whisper`", errText)
		}
		return Result{}, fmt.Errorf("mlx_whisper failed: %w (%s)", err, errText)
	}

	jsonOut := filepath.Join(outDir, outputBaseName(req.AudioPath)+".json")
	content, err := os.ReadFile(jsonOut)
	if err != nil {
		return Result{}, fmt.Errorf("read mlx_whisper output: %w", err)
	}

	result, err := ParseEngineOutput(content)
	if err != nil {
		return Result{}, err
	}

	return result, nil
}

func (e *ExecEngine) buildArgs(req TranscriptionRequest, outDir string) []string {
	args := []string{
		req.AudioPath,
		"--model", string(req.Source),
		"--output-dir", outDir,
		"--output-format", "json",
		"--task", string(req.Task),
	}
	if lang := strings.TrimSpace(req.Language); lang != "" && lang != "auto" {
		args = append(args, "--language", lang)
	}
	if req.WordTimestamps {
		args = append(args, "--word-timestamps", "True")
	}
	if req.BatchSize > 0 {
		args = append(args, "--batch-size", strconv.Itoa(req.BatchSize))
	}
	if !req.Verbose {
		args = append(args, "--verbose", "False")
	}
	return args
}

func (e *ExecEngine) log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// ParseEngineOutput decodes the JSON document mlx_whisper writes next to a
// transcription: full text, timestamped segments, and the detected language.
func ParseEngineOutput(content []byte) (Result, error) {
	var raw struct {
		Text     string `json:"text"`
		Language string `json:"language"`
		Segments []struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Text  string  `json:"text"`
			Words []Word  `json:"words"`
		} `json:"segments"`
	}

	if err := json.Unmarshal(content, &raw); err != nil {
		return Result{}, fmt.Errorf("decode mlx_whisper output: %w", err)
	}

	result := Result{
		Text:     strings.TrimSpace(raw.Text),
		Language: raw.Language,
	}
	for _, seg := range raw.Segments {
		result.Segments = append(result.Segments, Segment{Start: seg.Start, End: seg.End, Text: strings.TrimSpace(seg.Text)})
		result.Words = append(result.Words, seg.Words...)
	}

	return result, nil
}

// outputBaseName mirrors how mlx_whisper names its output files: the audio
// file name with the extension stripped.
func outputBaseName(audioPath string) string {
	base := filepath.Base(audioPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}

func isMissingModuleError(stderr string) bool {
	value := strings.ToLower(stderr)
	if value == "" {
		return false
	}
	return strings.Contains(value, "modulenotfounderror") || strings.Contains(value, "no module named")
}
