package loader

import (
	"context"

	"go.uber.org/zap"

	"github.com/lightwhisper/lightwhisper/internal/hub"
	"github.com/lightwhisper/lightwhisper/internal/whisper"
)

// RuntimeEngine transcribes in process: it resolves models through the cache
// and hands decoding to a transcribing runtime.
type RuntimeEngine struct {
	cache     *Cache
	runtime   whisper.TranscribingRuntime
	precision whisper.Precision
}

// NewRuntimeEngine wires a fetcher and runtime into an engine with a fresh
// single-slot cache.
func NewRuntimeEngine(fetcher *hub.Fetcher, runtime whisper.TranscribingRuntime, precision whisper.Precision, logger *zap.Logger) *RuntimeEngine {
	l := &Loader{Fetcher: fetcher, Runtime: runtime, Logger: logger}
	return &RuntimeEngine{
		cache:     NewCache(l.Load),
		runtime:   runtime,
		precision: precision,
	}
}

func (e *RuntimeEngine) Transcribe(ctx context.Context, req whisper.TranscriptionRequest) (whisper.Result, error) {
	model, err := e.cache.Get(ctx, req.Source, e.precision)
	if err != nil {
		return whisper.Result{}, err
	}
	return e.runtime.Transcribe(ctx, model, req)
}

// Cache exposes the engine's model cache, mainly for preloading.
func (e *RuntimeEngine) Cache() *Cache {
	return e.cache
}
