package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/lightwhisper/lightwhisper"
	"github.com/lightwhisper/lightwhisper/internal/config"
	"github.com/lightwhisper/lightwhisper/internal/logging"
	"github.com/lightwhisper/lightwhisper/internal/platform"
	"github.com/lightwhisper/lightwhisper/internal/version"
	"github.com/lightwhisper/lightwhisper/internal/whisper"
)

type appState struct {
	verbose    bool
	jsonLogs   bool
	noProgress bool

	model          string
	quant          string
	batchSize      int
	language       string
	task           string
	wordTimestamps bool
	modelDir       string
	configPath     string

	logger *zap.Logger
	out    io.Writer

	// injectable for tests
	newTranscriber func(opts lightwhisper.Options) (*lightwhisper.Transcriber, error)
}

func NewRootCmd() *cobra.Command {
	app := &appState{
		model:     whisper.DefaultModel,
		batchSize: lightwhisper.DefaultBatchSize,
		task:      string(whisper.TaskTranscribe),
		out:       os.Stdout,
	}
	app.newTranscriber = lightwhisper.New

	cmd := &cobra.Command{
		Use:           "lightwhisper",
		Short:         "Fast whisper transcription on the MLX runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logging.New(logging.Options{Verbose: app.verbose, JSON: app.jsonLogs})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.logger = logger
			return app.applyConfigFile(cmd)
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindLoggingFlags(cmd, app)

	cmd.AddCommand(newTranscribeCmd(app))
	cmd.AddCommand(newPullCmd(app))
	cmd.AddCommand(newModelsCmd(app))
	cmd.AddCommand(newBenchCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindLoggingFlags(cmd *cobra.Command, app *appState) {
	cmd.PersistentFlags().BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	cmd.PersistentFlags().BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
	cmd.PersistentFlags().BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
	cmd.PersistentFlags().StringVar(&app.configPath, "config", app.configPath, "Config file path")
}

func bindModelFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.model, "model", app.model, "Model name, hub repo, or local snapshot directory")
	cmd.Flags().StringVar(&app.quant, "quant", app.quant, "Quantization level: 4bit or 8bit")
	cmd.Flags().StringVar(&app.modelDir, "model-dir", app.modelDir, "Directory where model snapshots are cached")
}

func bindDecodeFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().IntVar(&app.batchSize, "batch-size", app.batchSize, "Audio segments decoded in parallel")
	cmd.Flags().StringVar(&app.language, "language", app.language, "Language code (en|de|...); empty auto-detects")
	cmd.Flags().StringVar(&app.task, "task", app.task, "Task: transcribe or translate")
	cmd.Flags().BoolVar(&app.wordTimestamps, "word-timestamps", app.wordTimestamps, "Include word-level timestamps")
}

// applyConfigFile fills in settings from the user config file, keeping any
// value the user set on the command line.
func (a *appState) applyConfigFile(cmd *cobra.Command) error {
	path, err := platform.ResolveConfigPath(a.configPath)
	if err != nil {
		return err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if cfg.Model != "" && !flags.Changed("model") {
		a.model = cfg.Model
	}
	if cfg.Quant != "" && !flags.Changed("quant") {
		a.quant = cfg.Quant
	}
	if cfg.BatchSize > 0 && !flags.Changed("batch-size") {
		a.batchSize = cfg.BatchSize
	}
	if cfg.Language != "" && !flags.Changed("language") {
		a.language = cfg.Language
	}
	if cfg.ModelDir != "" && !flags.Changed("model-dir") {
		a.modelDir = cfg.ModelDir
	}

	return nil
}

func (a *appState) transcriber() (*lightwhisper.Transcriber, error) {
	newTranscriber := a.newTranscriber
	if newTranscriber == nil {
		newTranscriber = lightwhisper.New
	}

	return newTranscriber(lightwhisper.Options{
		Model:      a.model,
		BatchSize:  a.batchSize,
		Quant:      a.quant,
		ModelDir:   a.modelDir,
		NoProgress: a.noProgress,
		Logger:     a.log(),
	})
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (a *appState) outWriter() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}
