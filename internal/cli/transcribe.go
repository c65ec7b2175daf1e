package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lightwhisper/lightwhisper"
)

func newTranscribeCmd(app *appState) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			audioPath := filepath.Clean(args[0])
			if _, err := os.Stat(audioPath); err != nil {
				return fmt.Errorf("audio file not found: %w", err)
			}

			transcriber, err := app.transcriber()
			if err != nil {
				return err
			}

			app.log().Info("transcribing...",
				zap.String("audio", audioPath),
				zap.String("source", transcriber.Source()),
				zap.String("language", app.language),
				zap.String("task", app.task))

			stopSpinner := startSpinner(app.progressEnabled(), "Transcribing")
			started := time.Now()

			result, err := transcriber.Transcribe(cmd.Context(), audioPath, transcribeOptions(app))
			stopSpinner()
			if err != nil {
				app.log().Warn("transcription failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
				return err
			}
			app.log().Info("transcription finished",
				zap.Duration("elapsed", time.Since(started)),
				zap.String("language", result.Language),
				zap.Int("segments", len(result.Segments)))

			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(result)
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Text)
			return nil
		},
	}

	bindModelFlags(cmd, app)
	bindDecodeFlags(cmd, app)
	cmd.Flags().BoolVar(&asJSON, "output-json", false, "Print the full result (segments, language) as JSON")

	return cmd
}

func transcribeOptions(app *appState) lightwhisper.TranscribeOptions {
	return lightwhisper.TranscribeOptions{
		Language:       app.language,
		Task:           app.task,
		WordTimestamps: app.wordTimestamps,
		Verbose:        app.verbose,
	}
}
