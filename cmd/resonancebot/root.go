package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/resonance-bot/internal/platform/config"
	"github.com/jsamuelsen/resonance-bot/internal/platform/logging"
)

const defaultProfile = "local"

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	profile   string
	configDir string
	envFiles  []string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "resonancebot",
		Short: "Publish Schumann resonance spectrograms to Telegram",
		Long: "resonancebot fetches the Tomsk observatory spectrograms and posts them as one " +
			"media group, first at the next midnight in the reference zone and then every " +
			"schedule.update_hours hours. Without a subcommand it runs the job.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runJob(cmd.Context(), opts)
		},
		Example: `  resonancebot --profile prod
  resonancebot preview --fetch
  resonancebot next --count 8`,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.profile, "profile", "", "configuration profile, loads <config-dir>/<profile>.yaml (default $APP_ENVIRONMENT or local)")
	flags.StringVar(&opts.configDir, "config-dir", "configs", "directory holding base.yaml and the profile files")
	flags.StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "dotenv files loaded before the environment is read")

	cmd.AddCommand(
		newRunCommand(opts),
		newPreviewCommand(opts),
		newNextCommand(opts),
	)

	return cmd
}

// loadConfig loads the dotenv files and the layered configuration, then validates it.
// Commands that never contact the Bot API pass requireBot=false so a missing
// token does not stop them.
func loadConfig(opts *rootOptions, requireBot bool) (*config.Config, error) {
	if err := config.LoadDotEnv(opts.envFiles...); err != nil {
		return nil, fmt.Errorf("loading env files: %w", err)
	}

	profile := opts.profile
	if profile == "" {
		profile = os.Getenv("APP_ENVIRONMENT")
	}

	if profile == "" {
		profile = defaultProfile
	}

	cfg, err := config.LoadDir(opts.configDir, profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if !requireBot && strings.TrimSpace(cfg.Bot.Token) == "" {
		cfg.Bot.Token = "unused"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.NewWithWriter(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	}, w)
}
