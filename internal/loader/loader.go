// Package loader turns resolved model sources into fully initialized models
// and caches the most recently loaded one.
package loader

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lightwhisper/lightwhisper/internal/hub"
	"github.com/lightwhisper/lightwhisper/internal/modelfile"
	"github.com/lightwhisper/lightwhisper/internal/whisper"
)

// Loader builds models from snapshot directories through a runtime. A load
// is construct-then-commit: any failure aborts before the model escapes, so
// callers never observe a partially applied model.
type Loader struct {
	Fetcher *hub.Fetcher
	Runtime whisper.Runtime
	Logger  *zap.Logger
}

// Load ensures the source is local, reads its configuration, locates the
// weights artifact, instantiates the network, applies quantization where the
// artifact carries per-layer scales, applies the weights, and forces full
// evaluation before returning.
func (l *Loader) Load(ctx context.Context, source whisper.Source, precision whisper.Precision) (whisper.Model, error) {
	dir, err := l.Fetcher.EnsureLocal(ctx, source)
	if err != nil {
		return nil, err
	}

	dims, quant, err := modelfile.ReadConfig(dir)
	if err != nil {
		return nil, err
	}

	weightsFile, err := modelfile.FindWeights(dir)
	if err != nil {
		return nil, err
	}

	index, err := modelfile.ReadIndex(weightsFile)
	if err != nil {
		return nil, err
	}

	l.log().Debug("loading model",
		zap.String("source", string(source)),
		zap.String("weights", weightsFile.Path),
		zap.String("format", weightsFile.Format.String()),
		zap.Int("tensors", index.Len()),
		zap.Bool("quantized", quant != nil))

	model, err := l.Runtime.Instantiate(dims, precision)
	if err != nil {
		return nil, fmt.Errorf("instantiate model from %s: %w", source, err)
	}

	if quant != nil {
		if err := l.Runtime.Quantize(model, *quant, ScaledLayerPredicate(index)); err != nil {
			return nil, fmt.Errorf("quantize model from %s: %w", source, err)
		}
	}

	if err := l.Runtime.Update(model, index.Tree()); err != nil {
		return nil, fmt.Errorf("apply weights from %s: %w", weightsFile.Path, err)
	}

	if err := l.Runtime.Eval(model); err != nil {
		return nil, fmt.Errorf("evaluate model from %s: %w", source, err)
	}

	return model, nil
}

// ScaledLayerPredicate builds the per-layer quantization decision for a
// weights artifact: a module is quantized only when it is a linear or
// embedding layer and the artifact actually stores its quantization scales.
// Quantizing an eligible layer whose scales are absent would corrupt the
// model, so those stay at full precision.
func ScaledLayerPredicate(index *modelfile.TensorIndex) whisper.QuantizePredicate {
	return func(path string, kind whisper.LayerKind) bool {
		if kind != whisper.KindLinear && kind != whisper.KindEmbedding {
			return false
		}
		return index.Has(path + ".scales")
	}
}

func (l *Loader) log() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}
