package whisper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEngineOutput(t *testing.T) {
	t.Parallel()

	content := []byte(`{
		"text": " Hello world. ",
		"language": "en",
		"segments": [
			{"start": 0.0, "end": 2.5, "text": " Hello"},
			{"start": 2.5, "end": 4.0, "text": " world.", "words": [
				{"start": 2.5, "end": 3.1, "word": "world."}
			]}
		]
	}`)

	result, err := ParseEngineOutput(content)
	require.NoError(t, err)
	require.Equal(t, "Hello world.", result.Text)
	require.Equal(t, "en", result.Language)
	require.Len(t, result.Segments, 2)
	require.Equal(t, "Hello", result.Segments[0].Text)
	require.Equal(t, 4.0, result.Segments[1].End)
	require.Len(t, result.Words, 1)
	require.Equal(t, 4.0, result.Duration())
}

func TestParseEngineOutputRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := ParseEngineOutput([]byte("not json"))
	require.Error(t, err)
}

func TestResultDurationEmpty(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0.0, Result{}.Duration())
}

func TestNewExecEngineHonorsPathOverride(t *testing.T) {
	fake := filepath.Join(t.TempDir(), "mlx_whisper")
	require.NoError(t, os.WriteFile(fake, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	t.Setenv(EnvEnginePath, fake)

	engine, err := NewExecEngine(nil)
	require.NoError(t, err)
	require.Equal(t, fake, engine.Executable)
}

func TestNewExecEngineRejectsNonExecutableOverride(t *testing.T) {
	fake := filepath.Join(t.TempDir(), "mlx_whisper")
	require.NoError(t, os.WriteFile(fake, []byte("data"), 0o644))
	t.Setenv(EnvEnginePath, fake)

	_, err := NewExecEngine(nil)
	require.Error(t, err)
}

func TestOutputBaseName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "speech", outputBaseName("/tmp/audio/speech.mp3"))
	require.Equal(t, "clip", outputBaseName("clip.wav"))
	require.Equal(t, "noext", outputBaseName("noext"))
}
