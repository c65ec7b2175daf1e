// Package modelfile reads the artifacts inside a model snapshot directory:
// the config.json describing network dimensions and the weights file carrying
// the tensors.
package modelfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lightwhisper/lightwhisper/internal/whisper"
)

const ConfigFileName = "config.json"

// rawConfig uses pointer fields so absent dimensions are distinguishable from
// zero values.
type rawConfig struct {
	ModelType    *string                   `json:"model_type"`
	Quantization *whisper.QuantizationSpec `json:"quantization"`
	NMels        *int                      `json:"n_mels"`
	NAudioCtx    *int                      `json:"n_audio_ctx"`
	NAudioState  *int                      `json:"n_audio_state"`
	NAudioHead   *int                      `json:"n_audio_head"`
	NAudioLayer  *int                      `json:"n_audio_layer"`
	NVocab       *int                      `json:"n_vocab"`
	NTextCtx     *int                      `json:"n_text_ctx"`
	NTextState   *int                      `json:"n_text_state"`
	NTextHead    *int                      `json:"n_text_head"`
	NTextLayer   *int                      `json:"n_text_layer"`
}

// ReadConfig parses a snapshot's config.json into model dimensions and an
// optional quantization descriptor. The model_type discriminator is read and
// discarded; the quantization object is consumed separately from the
// dimensions, mirroring how the snapshot format nests them.
func ReadConfig(dir string) (whisper.ModelDims, *whisper.QuantizationSpec, error) {
	path := filepath.Join(dir, ConfigFileName)
	content, err := os.ReadFile(path)
	if err != nil {
		return whisper.ModelDims{}, nil, fmt.Errorf("%w: read %s: %v", whisper.ErrConfig, path, err)
	}

	var raw rawConfig
	if err := json.Unmarshal(content, &raw); err != nil {
		return whisper.ModelDims{}, nil, fmt.Errorf("%w: decode %s: %v", whisper.ErrConfig, path, err)
	}

	dims := whisper.ModelDims{}
	for _, field := range []struct {
		name  string
		value *int
		dst   *int
	}{
		{"n_mels", raw.NMels, &dims.NMels},
		{"n_audio_ctx", raw.NAudioCtx, &dims.NAudioCtx},
		{"n_audio_state", raw.NAudioState, &dims.NAudioState},
		{"n_audio_head", raw.NAudioHead, &dims.NAudioHead},
		{"n_audio_layer", raw.NAudioLayer, &dims.NAudioLayer},
		{"n_vocab", raw.NVocab, &dims.NVocab},
		{"n_text_ctx", raw.NTextCtx, &dims.NTextCtx},
		{"n_text_state", raw.NTextState, &dims.NTextState},
		{"n_text_head", raw.NTextHead, &dims.NTextHead},
		{"n_text_layer", raw.NTextLayer, &dims.NTextLayer},
	} {
		if field.value == nil {
			return whisper.ModelDims{}, nil, fmt.Errorf("%w: %s missing required field %s", whisper.ErrConfig, path, field.name)
		}
		if *field.value <= 0 {
			return whisper.ModelDims{}, nil, fmt.Errorf("%w: %s field %s must be positive, got %d", whisper.ErrConfig, path, field.name, *field.value)
		}
		*field.dst = *field.value
	}

	if q := raw.Quantization; q != nil {
		if q.Bits <= 0 || q.GroupSize <= 0 {
			return whisper.ModelDims{}, nil, fmt.Errorf("%w: %s has malformed quantization descriptor", whisper.ErrConfig, path)
		}
	}

	return dims, raw.Quantization, nil
}
