// Package xtts is the ONNX-backed multilingual voice-cloning backend.
package xtts

import (
	"fmt"
	"strings"

	"voxclone/internal/pkg/voxclone/audio"
	"voxclone/internal/pkg/voxclone/engine"
	"voxclone/internal/pkg/voxclone/phonemizer"
)

const sampleRate = 22050

func init() {
	engine.Register("xtts", NewEngine)
}

type Engine struct {
	pipeline   *pipeline
	phonemizer *phonemizer.Phonemizer
	tokenizer  *tokenizer
	language   string
	speed      float32
}

func NewEngine(cfg engine.Config) (engine.Engine, error) {
	modelDir := cfg.ModelPath
	if strings.HasSuffix(modelDir, ".onnx") {
		return nil, fmt.Errorf("xtts expects a model directory, got file %s", modelDir)
	}

	p, err := newPipeline(modelDir)
	if err != nil {
		return nil, err
	}

	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}
	speed := cfg.Speed
	if speed == 0 {
		speed = 1.0
	}

	return &Engine{
		pipeline:   p,
		phonemizer: phonemizer.New(lang),
		tokenizer:  newTokenizer(),
		language:   lang,
		speed:      speed,
	}, nil
}

func (e *Engine) Synthesize(text string, ref *audio.Audio) (*audio.Audio, error) {
	if e.pipeline == nil {
		return nil, engine.ErrNotInitialized
	}
	if ref == nil || len(ref.Samples) == 0 {
		return nil, fmt.Errorf("reference audio is required")
	}

	phonemes := e.phonemizer.Phonemize(text)
	tokens := e.tokenizer.encode(phonemes)
	if len(tokens) <= 1 {
		return nil, fmt.Errorf("no encodable symbols in text")
	}

	embedding, err := e.pipeline.encodeSpeaker(ref.Resample(sampleRate).Samples)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reference: %w", err)
	}

	waveform, err := e.pipeline.synthesize(tokens, embedding, e.speed)
	if err != nil {
		return nil, err
	}

	return audio.New(waveform, sampleRate), nil
}

func (e *Engine) Info() engine.Info {
	return engine.Info{
		Name:       "xtts",
		Languages:  []string{"en", "vi", "es", "fr", "de", "pt", "it"},
		SampleRate: sampleRate,
	}
}

func (e *Engine) Close() error {
	if e.pipeline == nil {
		return nil
	}
	err := e.pipeline.close()
	e.pipeline = nil
	return err
}
