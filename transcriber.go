// Package lightwhisper is a thin convenience layer over an MLX-style Whisper
// runtime: friendly model names mapped to hub repos, snapshot fetching, a
// single-slot model cache, and a small transcription API.
package lightwhisper

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lightwhisper/lightwhisper/internal/hub"
	"github.com/lightwhisper/lightwhisper/internal/loader"
	"github.com/lightwhisper/lightwhisper/internal/platform"
	"github.com/lightwhisper/lightwhisper/internal/whisper"
)

// DefaultBatchSize suits the distil models; the large models want something
// closer to 6.
const DefaultBatchSize = 12

// Re-exported result types, so callers need no internal imports.
type (
	Result  = whisper.Result
	Segment = whisper.Segment
	Word    = whisper.Word
)

// Error sentinels for errors.Is checks on façade calls.
var (
	ErrInvalidArgument   = whisper.ErrInvalidArgument
	ErrSourceUnavailable = whisper.ErrSourceUnavailable
)

// Options configures a Transcriber.
type Options struct {
	// Model is a friendly name ("small", "distil-large-v3"), a hub repo, or
	// a local snapshot directory. Defaults to distil-large-v3.
	Model string

	// BatchSize is the number of audio segments decoded in parallel and must
	// be at least 1. DefaultBatchSize is a sensible starting point.
	BatchSize int

	// Quant selects a pre-quantized variant: "4bit", "8bit", or empty.
	// Names without a matching variant fall back to their unquantized repo.
	Quant string

	// ModelDir overrides the snapshot cache directory.
	ModelDir string

	// Runtime enables in-process loading and decoding. When nil, the
	// mlx_whisper executable handles transcription.
	Runtime whisper.TranscribingRuntime

	// Precision for in-process model instantiation.
	Precision whisper.Precision

	// Engine overrides the transcription engine entirely, mainly for tests.
	Engine whisper.Engine

	NoProgress bool
	Logger     *zap.Logger
}

// TranscribeOptions are the per-call knobs.
type TranscribeOptions struct {
	// Language is an ISO-639-1 code; empty means auto-detect.
	Language string

	// Task is "transcribe" or "translate"; empty means transcribe.
	Task string

	WordTimestamps bool
	Verbose        bool
}

// Transcriber resolves a model once at construction and forwards
// transcription calls to its engine.
type Transcriber struct {
	source    whisper.Source
	batchSize int
	engine    whisper.Engine
	logger    *zap.Logger
}

// New validates the options, resolves the model spec to a concrete source,
// and wires the engine. Validation happens before any resolution or loading.
func New(opts Options) (*Transcriber, error) {
	if opts.BatchSize < 1 {
		return nil, fmt.Errorf("%w: batch size must be >= 1, got %d", whisper.ErrInvalidArgument, opts.BatchSize)
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = whisper.DefaultModel
	}

	quant, err := whisper.ParseQuantization(opts.Quant)
	if err != nil {
		return nil, err
	}

	source, err := whisper.Resolve(whisper.ModelSpec{Name: model, Quant: quant})
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	engine, err := buildEngine(opts, logger)
	if err != nil {
		return nil, err
	}

	return &Transcriber{
		source:    source,
		batchSize: opts.BatchSize,
		engine:    engine,
		logger:    logger,
	}, nil
}

func buildEngine(opts Options, logger *zap.Logger) (whisper.Engine, error) {
	if opts.Engine != nil {
		return opts.Engine, nil
	}

	if opts.Runtime != nil {
		modelDir, err := platform.ResolveModelDir(opts.ModelDir)
		if err != nil {
			return nil, err
		}
		fetcher := hub.NewFetcher(modelDir, logger)
		fetcher.NoProgress = opts.NoProgress
		return loader.NewRuntimeEngine(fetcher, opts.Runtime, opts.Precision, logger), nil
	}

	return whisper.NewExecEngine(logger)
}

// Source returns the resolved model source.
func (t *Transcriber) Source() string {
	return string(t.source)
}

// Transcribe runs one transcription. Decoding is delegated entirely to the
// engine; the result carries the full text, timestamped segments, and the
// detected or declared language.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string, opts TranscribeOptions) (Result, error) {
	if strings.TrimSpace(audioPath) == "" {
		return Result{}, fmt.Errorf("%w: audio path must not be empty", whisper.ErrInvalidArgument)
	}

	task, err := whisper.ParseTask(opts.Task)
	if err != nil {
		return Result{}, err
	}

	return t.engine.Transcribe(ctx, whisper.TranscriptionRequest{
		AudioPath:      audioPath,
		Source:         t.source,
		BatchSize:      t.batchSize,
		Language:       strings.TrimSpace(strings.ToLower(opts.Language)),
		Task:           task,
		WordTimestamps: opts.WordTimestamps,
		Verbose:        opts.Verbose,
	})
}
