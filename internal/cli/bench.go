package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lightwhisper/lightwhisper/internal/bench"
	"github.com/lightwhisper/lightwhisper/internal/whisper"
)

func newBenchCmd(app *appState) *cobra.Command {
	var (
		runs   int
		warmup int
	)

	cmd := &cobra.Command{
		Use:   "bench <audio-file>",
		Short: "Benchmark transcription throughput",
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

			app.log().Info("benchmarking",
				zap.String("audio", audioPath),
				zap.String("source", transcriber.Source()),
				zap.Int("runs", runs),
				zap.Int("warmup", warmup))

			runner := &bench.Runner{
				Transcribe: func(ctx context.Context) (whisper.Result, error) {
					return transcriber.Transcribe(ctx, audioPath, transcribeOptions(app))
				},
				WarmupRuns: warmup,
				Runs:       runs,
			}

			stats, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Audio duration:  %.2fs\n", stats.AudioDuration)
			fmt.Fprintf(out, "Avg time:        %.3fs\n", stats.Avg.Seconds())
			fmt.Fprintf(out, "Min time:        %.3fs\n", stats.Min.Seconds())
			fmt.Fprintf(out, "Max time:        %.3fs\n", stats.Max.Seconds())
			fmt.Fprintf(out, "Real-time factor: %.2fx\n", stats.RealTimeFactor)
			if stats.SampleText != "" {
				fmt.Fprintf(out, "\nSample output:\n%s\n", stats.SampleText)
			}
			return nil
		},
	}

	bindModelFlags(cmd, app)
	bindDecodeFlags(cmd, app)
	cmd.Flags().IntVar(&runs, "runs", 3, "Timed benchmark runs")
	cmd.Flags().IntVar(&warmup, "warmup", 1, "Warmup runs excluded from timing")

	return cmd
}
