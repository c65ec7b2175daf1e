package whisper

import (
	"context"
	"fmt"
	"strings"
)

// Precision selects the numeric precision a model is instantiated with.
type Precision int

const (
	Float16 Precision = iota
	Float32
)

func (p Precision) String() string {
	if p == Float32 {
		return "float32"
	}
	return "float16"
}

// ModelDims are the Whisper network dimensions read from a snapshot's
// config.json.
type ModelDims struct {
	NMels       int `json:"n_mels"`
	NAudioCtx   int `json:"n_audio_ctx"`
	NAudioState int `json:"n_audio_state"`
	NAudioHead  int `json:"n_audio_head"`
	NAudioLayer int `json:"n_audio_layer"`
	NVocab      int `json:"n_vocab"`
	NTextCtx    int `json:"n_text_ctx"`
	NTextState  int `json:"n_text_state"`
	NTextHead   int `json:"n_text_head"`
	NTextLayer  int `json:"n_text_layer"`
}

// QuantizationSpec is the quantization descriptor a snapshot's config.json
// carries when its weights are stored quantized.
type QuantizationSpec struct {
	GroupSize int `json:"group_size"`
	Bits      int `json:"bits"`
}

// WeightTree is a flat tensor mapping restructured into the nested shape the
// runtime applies to a model: maps keyed by module path segments with opaque
// tensor references at the leaves.
type WeightTree map[string]any

// Model is an instantiated network owned by the runtime. Weights are
// write-once: a model is never mutated after Eval returns.
type Model interface {
	Dims() ModelDims
}

// QuantizePredicate decides per module whether quantization applies. Modules
// it rejects keep their full-precision weights.
type QuantizePredicate func(path string, kind LayerKind) bool

// Runtime is the boundary to the external ML framework. Everything behind it
// (tensor math, network architecture, decoding) is out of this module's hands.
type Runtime interface {
	// Instantiate builds the network structure from dimensions and precision.
	// No weights are applied yet.
	Instantiate(dims ModelDims, precision Precision) (Model, error)

	// Quantize converts the modules selected by the predicate to the reduced
	// precision described by spec.
	Quantize(model Model, spec QuantizationSpec, shouldQuantize QuantizePredicate) error

	// Update applies a nested weight tree to the instantiated network.
	Update(model Model, weights WeightTree) error

	// Eval forces full materialization of all parameters, so no lazy tensor
	// state escapes the load path.
	Eval(model Model) error
}

// TranscribingRuntime is a runtime that also decodes audio against a loaded
// model, enabling fully in-process transcription.
type TranscribingRuntime interface {
	Runtime
	Transcribe(ctx context.Context, model Model, req TranscriptionRequest) (Result, error)
}

// LayerKind classifies a Whisper module path by the layer type living there,
// which drives the quantization predicate: only linear and embedding layers
// are quantizable.
type LayerKind int

const (
	KindOther LayerKind = iota
	KindLinear
	KindEmbedding
	KindConv1d
	KindLayerNorm
)

func (k LayerKind) String() string {
	switch k {
	case KindLinear:
		return "linear"
	case KindEmbedding:
		return "embedding"
	case KindConv1d:
		return "conv1d"
	case KindLayerNorm:
		return "layernorm"
	default:
		return "other"
	}
}

// KindOfModule reports the layer kind at a Whisper module path such as
// "decoder.blocks.0.attn.query" or "encoder.conv1".
func KindOfModule(path string) LayerKind {
	last := path
	if idx := strings.LastIndexByte(path, '.'); idx >= 0 {
		last = path[idx+1:]
	}

	switch last {
	case "query", "key", "value", "out", "mlp1", "mlp2":
		return KindLinear
	case "token_embedding":
		return KindEmbedding
	case "conv1", "conv2":
		return KindConv1d
	case "ln", "ln_post", "attn_ln", "cross_attn_ln", "mlp_ln":
		return KindLayerNorm
	default:
		return KindOther
	}
}

// Task selects between plain speech recognition and translation to English.
type Task string

const (
	TaskTranscribe Task = "transcribe"
	TaskTranslate  Task = "translate"
)

// ParseTask validates the user-facing task spellings. An empty string means
// transcribe.
func ParseTask(input string) (Task, error) {
	switch Task(strings.ToLower(strings.TrimSpace(input))) {
	case "", TaskTranscribe:
		return TaskTranscribe, nil
	case TaskTranslate:
		return TaskTranslate, nil
	default:
		return "", fmt.Errorf("%w: task must be transcribe or translate, got %q", ErrInvalidArgument, input)
	}
}
