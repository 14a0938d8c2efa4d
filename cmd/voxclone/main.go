package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"voxclone/internal/pkg/voxclone/config"
	"voxclone/internal/pkg/voxclone/engine"
	"voxclone/internal/pkg/voxclone/samples"
	"voxclone/internal/pkg/voxclone/server"
	"voxclone/internal/pkg/voxclone/synth"

	_ "voxclone/internal/pkg/voxclone/backends/xtts"
)

func main() {
	fmt.Fprintf(os.Stderr, "voxclone %s\n", Version)

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.LoadAndParse()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse configuration")
	}

	if err := setupLogging(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to setup logging")
	}

	log.Debug().
		Str("samples", cfg.SampleDir).
		Str("model", cfg.ModelPath).
		Str("backend", cfg.Backend).
		Str("policy", cfg.Policy).
		Int("chunk_max_len", cfg.ChunkMaxLen).
		Float32("speed", cfg.Speed).
		Msg("Configuration loaded")

	scanner := samples.NewScanner(samples.Options{
		MinDuration: cfg.MinClipSec,
		MaxDuration: cfg.MaxClipSec,
	})
	cache := samples.NewCache(scanner)

	if cfg.ListSamples {
		listSamples(cache, cfg.SampleDir)
		return
	}

	log.Info().Str("backend", cfg.Backend).Msg("Loading synthesis engine...")
	eng, err := engine.New(cfg.Backend, engine.Config{
		ModelPath: cfg.ModelPath,
		Language:  cfg.Language,
		Speed:     cfg.Speed,
	})
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("Failed to load engine")
	}
	defer eng.Close()

	info := eng.Info()
	log.Debug().
		Str("engine", info.Name).
		Strs("languages", info.Languages).
		Int("sample_rate", info.SampleRate).
		Msg("Engine loaded")

	synthesizer := synth.New(eng, cache, synth.Options{
		SampleDir:   cfg.SampleDir,
		MaxChunkLen: cfg.ChunkMaxLen,
		TopK:        cfg.TopK,
		Policy:      synth.SelectionPolicy(cfg.Policy),
		Gap:         time.Duration(cfg.GapMs) * time.Millisecond,
	})

	if cfg.Serve {
		srv := server.New(synthesizer)
		log.Info().Str("addr", cfg.Listen).Msg("Serving HTTP")
		if err := srv.Listen(cfg.Listen); err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
		return
	}

	log.Info().Str("text", truncateText(cfg.Text, 50)).Msg("Generating speech with voice cloning...")
	startTime := time.Now()

	if err := synthesizer.SynthesizeToFile(cfg.Text, cfg.Output); err != nil {
		log.Fatal().Err(err).Msg("Failed to generate audio")
	}

	log.Info().
		Dur("elapsed", time.Since(startTime)).
		Str("output", cfg.Output).
		Msg("Audio saved successfully")
}

func listSamples(cache *samples.Cache, dir string) {
	pool, err := cache.Get(dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", dir).Msg("Failed to scan samples")
	}
	fmt.Fprintf(os.Stderr, "Ranked samples in %s (%d):\n", dir, len(pool))
	for _, clip := range pool {
		fmt.Fprintf(os.Stderr, "  %-40s  %5.2fs  score=%.3f\n", clip.Path, clip.Duration, clip.Score)
	}
}

func setupLogging(cfg *config.Config) error {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		log.Logger = zerolog.New(f).With().Timestamp().Logger()
	}

	return nil
}

func truncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}
