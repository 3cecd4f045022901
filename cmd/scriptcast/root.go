package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/example/scriptcast/internal/config"
	"github.com/example/scriptcast/internal/script"
	"github.com/example/scriptcast/internal/server"
	"github.com/example/scriptcast/internal/tts"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	activeCfg config.Config
	cfgLoaded bool
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "scriptcast",
		Short: "Generate spoken audio from a topic or script",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = loaded
			cfgLoaded = true
			setupLogger(loaded.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newHealthCmd())

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(levelStr string) {
	lvl, err := server.ParseLogLevel(levelStr)
	if err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

func requireConfig() (config.Config, error) {
	if !cfgLoaded {
		return config.Config{}, fmt.Errorf("configuration not loaded")
	}
	return activeCfg, nil
}

// buildPipeline assembles the script-to-audio service from the loaded
// config. The script generator is optional; without credentials the
// pipeline still serves pre-written text.
func buildPipeline(cfg config.Config) (*tts.Service, error) {
	speech, err := tts.NewHTTPClient(cfg.TTS.Endpoint, tts.WithAPIKey(cfg.TTS.APIKey))
	if err != nil {
		return nil, err
	}

	var scripts script.Generator
	if cfg.Script.APIKey != "" {
		opts := []script.Option{
			script.WithTimeout(time.Duration(cfg.Script.Timeout) * time.Second),
		}
		if cfg.Script.BaseURL != "" {
			opts = append(opts, script.WithBaseURL(cfg.Script.BaseURL))
		}
		scripts, err = script.NewOpenAIGenerator(cfg.Script.APIKey, cfg.Script.Model, opts...)
		if err != nil {
			return nil, err
		}
	}

	return tts.NewService(scripts, speech)
}
