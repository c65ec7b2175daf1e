package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lightwhisper/lightwhisper/internal/whisper"
)

func newModelsCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List known model names and their quantized variants",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, name := range whisper.ModelNames() {
				repo, _ := whisper.LookupRepo(name)

				variants := whisper.Variants(name)
				if len(variants) == 0 {
					fmt.Fprintf(out, "%-18s %s\n", name, repo)
					continue
				}

				labels := make([]string, len(variants))
				for i, variant := range variants {
					labels[i] = variant.String()
				}
				fmt.Fprintf(out, "%-18s %s (quantized: %s)\n", name, repo, strings.Join(labels, ", "))
			}
			return nil
		},
	}
}
