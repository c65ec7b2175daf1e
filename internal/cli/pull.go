package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lightwhisper/lightwhisper/internal/hub"
	"github.com/lightwhisper/lightwhisper/internal/platform"
	"github.com/lightwhisper/lightwhisper/internal/whisper"
)

func newPullCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Fetch a model snapshot into the local cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			quant, err := whisper.ParseQuantization(app.quant)
			if err != nil {
				return err
			}

			source, err := whisper.Resolve(whisper.ModelSpec{Name: app.model, Quant: quant})
			if err != nil {
				return err
			}

			modelDir, err := platform.ResolveModelDir(app.modelDir)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(modelDir, 0o755); err != nil {
				return fmt.Errorf("create model directory %s: %w", modelDir, err)
			}

			app.log().Info("pulling model",
				zap.String("model", app.model),
				zap.String("source", string(source)),
				zap.String("dir", modelDir))

			fetcher := hub.NewFetcher(modelDir, app.log())
			fetcher.NoProgress = app.noProgress

			dir, err := fetcher.EnsureLocal(cmd.Context(), source)
			if err != nil {
				return fmt.Errorf("pull model %q: %w", app.model, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Model %s available at %s\n", source, dir)
			return nil
		},
	}

	bindModelFlags(cmd, app)

	return cmd
}
