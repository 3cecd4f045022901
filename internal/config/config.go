package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel string       `mapstructure:"log_level"`
	Script   ScriptConfig `mapstructure:"script"`
	TTS      TTSConfig    `mapstructure:"tts"`
	Audio    AudioConfig  `mapstructure:"audio"`
	Server   ServerConfig `mapstructure:"server"`
}

type ScriptConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

type TTSConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
	Voice    string `mapstructure:"voice"`
}

type AudioConfig struct {
	FadeInMS  float64 `mapstructure:"fade_in_ms"`
	FadeOutMS float64 `mapstructure:"fade_out_ms"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	Workers         int    `mapstructure:"workers"`
	MaxTextBytes    int    `mapstructure:"max_text_bytes"`
	RequestTimeout  int    `mapstructure:"request_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Script: ScriptConfig{
			APIKey:  "",
			Model:   "gpt-4o-mini",
			BaseURL: "",
			Timeout: 60,
		},
		TTS: TTSConfig{
			Endpoint: "http://localhost:8880/synthesize",
			APIKey:   "",
			Voice:    "",
		},
		Audio: AudioConfig{
			FadeInMS:  0,
			FadeOutMS: 0,
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			Workers:         2,
			MaxTextBytes:    4096,
			RequestTimeout:  60,
			ShutdownTimeout: 30,
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
	fs.String("script-api-key", defaults.Script.APIKey, "API key for the script-generation service")
	fs.String("script-model", defaults.Script.Model, "Model used for script generation")
	fs.String("script-base-url", defaults.Script.BaseURL, "Base URL of an OpenAI-compatible script service")
	fs.Int("script-timeout", defaults.Script.Timeout, "Script-generation request timeout in seconds")
	fs.String("tts-endpoint", defaults.TTS.Endpoint, "Speech-synthesis service endpoint")
	fs.String("tts-api-key", defaults.TTS.APIKey, "API key for the speech-synthesis service")
	fs.String("tts-voice", defaults.TTS.Voice, "Default voice passed to the speech service")
	fs.Float64("audio-fade-in-ms", defaults.Audio.FadeInMS, "Fade-in ramp in milliseconds (0 disables)")
	fs.Float64("audio-fade-out-ms", defaults.Audio.FadeOutMS, "Fade-out ramp in milliseconds (0 disables)")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("server-workers", defaults.Server.Workers, "Max concurrent pipeline runs")
	fs.Int("server-max-text-bytes", defaults.Server.MaxTextBytes, "Maximum request text size in bytes")
	fs.Int("server-request-timeout", defaults.Server.RequestTimeout, "Per-request pipeline timeout in seconds")
	fs.Int("server-shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown drain period in seconds")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("SCRIPTCAST")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.BindEnv("script.api_key", "SCRIPTCAST_SCRIPT_API_KEY", "OPENAI_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind script env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("scriptcast")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("script.api_key", c.Script.APIKey)
	v.SetDefault("script.model", c.Script.Model)
	v.SetDefault("script.base_url", c.Script.BaseURL)
	v.SetDefault("script.timeout", c.Script.Timeout)
	v.SetDefault("tts.endpoint", c.TTS.Endpoint)
	v.SetDefault("tts.api_key", c.TTS.APIKey)
	v.SetDefault("tts.voice", c.TTS.Voice)
	v.SetDefault("audio.fade_in_ms", c.Audio.FadeInMS)
	v.SetDefault("audio.fade_out_ms", c.Audio.FadeOutMS)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("log_level", "log-level")
	v.RegisterAlias("script.api_key", "script-api-key")
	v.RegisterAlias("script.model", "script-model")
	v.RegisterAlias("script.base_url", "script-base-url")
	v.RegisterAlias("script.timeout", "script-timeout")
	v.RegisterAlias("tts.endpoint", "tts-endpoint")
	v.RegisterAlias("tts.api_key", "tts-api-key")
	v.RegisterAlias("tts.voice", "tts-voice")
	v.RegisterAlias("audio.fade_in_ms", "audio-fade-in-ms")
	v.RegisterAlias("audio.fade_out_ms", "audio-fade-out-ms")
	v.RegisterAlias("server.listen_addr", "server-listen-addr")
	v.RegisterAlias("server.workers", "server-workers")
	v.RegisterAlias("server.max_text_bytes", "server-max-text-bytes")
	v.RegisterAlias("server.request_timeout", "server-request-timeout")
	v.RegisterAlias("server.shutdown_timeout", "server-shutdown-timeout")
}
