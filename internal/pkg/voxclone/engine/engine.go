// Package engine defines the synthesis backend contract and the backend
// registry.
package engine

import (
	"errors"

	"voxclone/internal/pkg/voxclone/audio"
)

// ErrNotInitialized reports a synthesis call on an engine whose model
// handle is not (or no longer) loaded.
var ErrNotInitialized = errors.New("engine not initialized")

// Engine is a voice-cloning synthesis backend. Synthesize conditions
// the model on the reference recording and renders text in that voice.
// Implementations are not safe for concurrent Synthesize calls.
type Engine interface {
	Synthesize(text string, ref *audio.Audio) (*audio.Audio, error)
	Info() Info
	Close() error
}

type Info struct {
	Name       string
	Languages  []string
	SampleRate int
}

// Config carries backend construction parameters.
type Config struct {
	ModelPath    string
	ModelVariant string
	Backend      string
	Language     string
	Speed        float32
}
