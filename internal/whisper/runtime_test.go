package whisper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOfModule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		kind LayerKind
	}{
		{"decoder.blocks.0.attn.query", KindLinear},
		{"decoder.blocks.3.cross_attn.key", KindLinear},
		{"encoder.blocks.1.mlp1", KindLinear},
		{"encoder.blocks.1.mlp2", KindLinear},
		{"decoder.blocks.0.attn.out", KindLinear},
		{"decoder.token_embedding", KindEmbedding},
		{"encoder.conv1", KindConv1d},
		{"encoder.conv2", KindConv1d},
		{"encoder.ln_post", KindLayerNorm},
		{"decoder.blocks.0.attn_ln", KindLayerNorm},
		{"decoder.blocks.0.cross_attn_ln", KindLayerNorm},
		{"decoder.blocks.0.mlp_ln", KindLayerNorm},
		{"decoder.ln", KindLayerNorm},
		{"decoder.positional_embedding", KindOther},
		{"encoder", KindOther},
	}

	for _, tt := range tests {
		require.Equalf(t, tt.kind, KindOfModule(tt.path), "path %s", tt.path)
	}
}

func TestParseTask(t *testing.T) {
	t.Parallel()

	task, err := ParseTask("")
	require.NoError(t, err)
	require.Equal(t, TaskTranscribe, task)

	task, err = ParseTask("Translate")
	require.NoError(t, err)
	require.Equal(t, TaskTranslate, task)

	_, err = ParseTask("summarize")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPrecisionAndQuantizationStrings(t *testing.T) {
	t.Parallel()

	require.Equal(t, "float16", Float16.String())
	require.Equal(t, "float32", Float32.String())
	require.Equal(t, "4bit", Quant4Bit.String())
	require.Equal(t, "8bit", Quant8Bit.String())
	require.Equal(t, "none", QuantNone.String())
}
