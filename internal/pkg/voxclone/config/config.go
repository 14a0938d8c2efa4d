package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	SampleDir   string  `mapstructure:"sample_dir"`
	ModelPath   string  `mapstructure:"model_path"`
	Backend     string  `mapstructure:"backend"`
	Language    string  `mapstructure:"language"`
	Text        string  `mapstructure:"text"`
	Output      string  `mapstructure:"output"`
	Speed       float32 `mapstructure:"speed"`
	ChunkMaxLen int     `mapstructure:"chunk_max_len"`
	TopK        int     `mapstructure:"top_k"`
	Policy      string  `mapstructure:"policy"`
	GapMs       int     `mapstructure:"gap_ms"`
	MinClipSec  float64 `mapstructure:"min_clip_sec"`
	MaxClipSec  float64 `mapstructure:"max_clip_sec"`
	Listen      string  `mapstructure:"listen"`
	Serve       bool    `mapstructure:"serve"`
	ListSamples bool    `mapstructure:"list_samples"`
	LogLevel    string  `mapstructure:"log_level"`
	LogFile     string  `mapstructure:"log_file"`
}

func LoadAndParse() (*Config, error) {
	viper.SetDefault("sample_dir", "Sound")
	viper.SetDefault("model_path", "models/xtts")
	viper.SetDefault("backend", "xtts")
	viper.SetDefault("language", "en")
	viper.SetDefault("output", "output.wav")
	viper.SetDefault("speed", 1.0)
	viper.SetDefault("chunk_max_len", 500)
	viper.SetDefault("top_k", 5)
	viper.SetDefault("policy", "best")
	viper.SetDefault("gap_ms", 200)
	viper.SetDefault("min_clip_sec", 2.0)
	viper.SetDefault("max_clip_sec", 15.0)
	viper.SetDefault("listen", ":8080")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_file", "")

	flagSet := pflag.NewFlagSet("voxclone", pflag.ContinueOnError)
	configFile := flagSet.StringP("config", "c", "", "Path to config file")
	flagSet.StringP("text", "t", "", "Text to synthesize (use '-' to read from stdin)")
	flagSet.StringP("file", "f", "", "Read text from file")
	flagSet.StringP("output", "o", "", "Output WAV file")
	flagSet.StringP("samples", "d", "", "Directory of reference voice samples")
	flagSet.StringP("model", "m", "", "Path to model directory")
	flagSet.StringP("backend", "b", "", "Synthesis backend")
	flagSet.String("language", "", "Language code")
	flagSet.Float32P("speed", "s", 1.0, "Speech speed (0.5-2.0)")
	flagSet.Int("chunk-max-len", 500, "Maximum characters per synthesis chunk")
	flagSet.IntP("top-k", "k", 5, "Number of reference clips to select")
	flagSet.String("policy", "", "Reference selection policy (best, pool)")
	flagSet.Int("gap-ms", 200, "Silence gap between chunks in milliseconds")
	flagSet.String("listen", "", "HTTP listen address (with --serve)")
	flagSet.Bool("serve", false, "Run the HTTP server instead of a one-shot synthesis")
	flagSet.Bool("list-samples", false, "List the ranked sample pool and exit")
	flagSet.StringP("log-level", "l", "", "Log level (debug, info, warn, error)")
	flagSet.String("log-file", "", "Log file path")
	helpFlag := flagSet.BoolP("help", "h", false, "Show help message")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if *helpFlag {
		fmt.Fprintf(os.Stderr, "Usage: voxclone [options] [text]\n\nOptions:\n")
		flagSet.PrintDefaults()
		os.Exit(0)
	}

	bindings := map[string]string{
		"text":          "text",
		"output":        "output",
		"sample_dir":    "samples",
		"model_path":    "model",
		"backend":       "backend",
		"language":      "language",
		"speed":         "speed",
		"chunk_max_len": "chunk-max-len",
		"top_k":         "top-k",
		"policy":        "policy",
		"gap_ms":        "gap-ms",
		"listen":        "listen",
		"serve":         "serve",
		"list_samples":  "list-samples",
		"log_level":     "log-level",
		"log_file":      "log-file",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, flagSet.Lookup(flag)); err != nil {
			return nil, err
		}
	}

	if *configFile != "" {
		viper.SetConfigFile(*configFile)
	} else {
		viper.SetConfigName("voxclone.cfg")
		viper.SetConfigType("toml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("configs")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "voxclone"))
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	viper.SetEnvPrefix("VOXCLONE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	textFile, _ := flagSet.GetString("file")
	if textFile != "" {
		content, err := os.ReadFile(textFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read text file: %w", err)
		}
		cfg.Text = strings.TrimSpace(string(content))
	} else if cfg.Text == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
		cfg.Text = strings.TrimSpace(string(content))
	} else if cfg.Text == "" {
		args := flagSet.Args()
		if len(args) > 0 {
			cfg.Text = strings.Join(args, " ")
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.Text == "" && !cfg.ListSamples && !cfg.Serve {
		return fmt.Errorf("text is required (use -t, -f, or provide as argument)")
	}
	if cfg.Speed < 0.5 || cfg.Speed > 2.0 {
		return fmt.Errorf("speed must be between 0.5 and 2.0")
	}
	if cfg.ChunkMaxLen < 1 {
		return fmt.Errorf("chunk-max-len must be positive")
	}
	if cfg.Policy != "best" && cfg.Policy != "pool" {
		return fmt.Errorf("policy must be 'best' or 'pool'")
	}
	if cfg.MinClipSec >= cfg.MaxClipSec {
		return fmt.Errorf("min-clip-sec must be below max-clip-sec")
	}
	return nil
}
