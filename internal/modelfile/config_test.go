package modelfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightwhisper/lightwhisper/internal/whisper"
)

const tinyConfig = `{
	"model_type": "whisper",
	"n_mels": 80,
	"n_audio_ctx": 1500,
	"n_audio_state": 384,
	"n_audio_head": 6,
	"n_audio_layer": 4,
	"n_vocab": 51865,
	"n_text_ctx": 448,
	"n_text_state": 384,
	"n_text_head": 6,
	"n_text_layer": 4
}`

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))
}

func TestReadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, tinyConfig)

	dims, quant, err := ReadConfig(dir)
	require.NoError(t, err)
	require.Nil(t, quant)
	require.Equal(t, whisper.ModelDims{
		NMels:       80,
		NAudioCtx:   1500,
		NAudioState: 384,
		NAudioHead:  6,
		NAudioLayer: 4,
		NVocab:      51865,
		NTextCtx:    448,
		NTextState:  384,
		NTextHead:   6,
		NTextLayer:  4,
	}, dims)
}

func TestReadConfigExtractsQuantization(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `{
		"model_type": "whisper",
		"quantization": {"group_size": 64, "bits": 4},
		"n_mels": 80, "n_audio_ctx": 1500, "n_audio_state": 384,
		"n_audio_head": 6, "n_audio_layer": 4, "n_vocab": 51865,
		"n_text_ctx": 448, "n_text_state": 384, "n_text_head": 6,
		"n_text_layer": 4
	}`)

	dims, quant, err := ReadConfig(dir)
	require.NoError(t, err)
	require.NotNil(t, quant)
	require.Equal(t, whisper.QuantizationSpec{GroupSize: 64, Bits: 4}, *quant)
	require.Equal(t, 80, dims.NMels)
}

func TestReadConfigMissingField(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `{"n_mels": 80}`)

	_, _, err := ReadConfig(dir)
	require.ErrorIs(t, err, whisper.ErrConfig)
	require.Contains(t, err.Error(), "n_audio_ctx")
}

func TestReadConfigNonPositiveField(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `{
		"n_mels": 0,
		"n_audio_ctx": 1500, "n_audio_state": 384, "n_audio_head": 6,
		"n_audio_layer": 4, "n_vocab": 51865, "n_text_ctx": 448,
		"n_text_state": 384, "n_text_head": 6, "n_text_layer": 4
	}`)

	_, _, err := ReadConfig(dir)
	require.ErrorIs(t, err, whisper.ErrConfig)
}

func TestReadConfigMalformedQuantization(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `{
		"quantization": {"group_size": 0, "bits": 4},
		"n_mels": 80, "n_audio_ctx": 1500, "n_audio_state": 384,
		"n_audio_head": 6, "n_audio_layer": 4, "n_vocab": 51865,
		"n_text_ctx": 448, "n_text_state": 384, "n_text_head": 6,
		"n_text_layer": 4
	}`)

	_, _, err := ReadConfig(dir)
	require.ErrorIs(t, err, whisper.ErrConfig)
}

func TestReadConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, _, err := ReadConfig(t.TempDir())
	require.ErrorIs(t, err, whisper.ErrConfig)
}

func TestReadConfigInvalidJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "{nope")

	_, _, err := ReadConfig(dir)
	require.ErrorIs(t, err, whisper.ErrConfig)
}
