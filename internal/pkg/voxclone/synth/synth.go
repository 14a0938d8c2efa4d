// Package synth orchestrates one synthesis request: reference
// selection, text chunking, per-chunk engine calls, concatenation, and
// the final file write.
package synth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"voxclone/internal/pkg/voxclone/audio"
	"voxclone/internal/pkg/voxclone/chunker"
	"voxclone/internal/pkg/voxclone/engine"
	"voxclone/internal/pkg/voxclone/preprocess"
	"voxclone/internal/pkg/voxclone/samples"
)

// SelectionPolicy controls how reference clips are assigned to chunks.
type SelectionPolicy string

const (
	// PolicyBest conditions every chunk on the single top-ranked clip.
	PolicyBest SelectionPolicy = "best"
	// PolicyPool rotates through the top-K clips across chunks.
	PolicyPool SelectionPolicy = "pool"
)

// SynthesisError reports an engine failure that survived one retry,
// naming the chunk it happened on.
type SynthesisError struct {
	Chunk int
	Err   error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed at chunk %d: %v", e.Chunk, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

type Options struct {
	SampleDir   string
	MaxChunkLen int
	TopK        int
	Policy      SelectionPolicy
	Gap         time.Duration
}

func DefaultOptions(sampleDir string) Options {
	return Options{
		SampleDir:   sampleDir,
		MaxChunkLen: chunker.DefaultMaxLen,
		TopK:        5,
		Policy:      PolicyBest,
		Gap:         200 * time.Millisecond,
	}
}

// Synthesizer owns the engine handle for its lifetime. Requests are
// serialized; the engine is not built for concurrent invocation.
type Synthesizer struct {
	mu      sync.Mutex
	eng     engine.Engine
	cache   *samples.Cache
	chunker *chunker.Chunker
	pre     *preprocess.Processor
	opts    Options
}

func New(eng engine.Engine, cache *samples.Cache, opts Options) *Synthesizer {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.Policy == "" {
		opts.Policy = PolicyBest
	}
	return &Synthesizer{
		eng:     eng,
		cache:   cache,
		chunker: chunker.New(opts.MaxChunkLen),
		pre:     preprocess.NewProcessor(),
		opts:    opts,
	}
}

// Samples returns the ranked reference pool, scanning on first use.
func (s *Synthesizer) Samples() ([]samples.Clip, error) {
	return s.cache.Get(s.opts.SampleDir)
}

// RefreshSamples invalidates the pool and rescans the directory.
func (s *Synthesizer) RefreshSamples() ([]samples.Clip, error) {
	return s.cache.Refresh(s.opts.SampleDir)
}

// Synthesize renders text in the cloned voice and returns the joined
// audio. Chunks are synthesized in order; a chunk that fails twice
// aborts the whole request.
func (s *Synthesizer) Synthesize(text string) (*audio.Audio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.eng == nil {
		return nil, engine.ErrNotInitialized
	}

	refs, err := s.loadReferences()
	if err != nil {
		return nil, err
	}

	chunks := s.chunker.Split(s.pre.Process(text))
	if len(chunks) == 0 {
		return nil, errors.New("no synthesizable text")
	}
	log.Debug().Int("chunks", len(chunks)).Int("references", len(refs)).Msg("Synthesizing")

	segments := make([]*audio.Audio, 0, len(chunks))
	for i, chunk := range chunks {
		ref := refs[0]
		if s.opts.Policy == PolicyPool {
			ref = refs[i%len(refs)]
		}

		seg, err := s.synthesizeChunk(i, chunk, ref)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}

	out := audio.Concat(segments, s.opts.Gap)
	out.Normalize(0.95)
	return out, nil
}

// SynthesizeToFile writes the result to outPath atomically: the WAV is
// rendered into a temp file in the target directory and renamed into
// place, so a failed request never leaves a partial file.
func (s *Synthesizer) SynthesizeToFile(text, outPath string) error {
	out, err := s.Synthesize(text)
	if err != nil {
		return err
	}

	dir := filepath.Dir(outPath)
	tmp, err := os.CreateTemp(dir, ".voxclone-*.wav")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := out.SaveWAV(tmpPath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	log.Info().
		Str("output", outPath).
		Float64("duration_sec", out.Duration()).
		Msg("Audio written")
	return nil
}

func (s *Synthesizer) synthesizeChunk(index int, text string, ref *audio.Audio) (*audio.Audio, error) {
	seg, err := s.eng.Synthesize(text, ref)
	if err == nil {
		return seg, nil
	}

	log.Warn().Err(err).Int("chunk", index).Msg("Chunk synthesis failed, retrying once")
	seg, err = s.eng.Synthesize(text, ref)
	if err != nil {
		return nil, &SynthesisError{Chunk: index, Err: err}
	}
	return seg, nil
}

// loadReferences resolves the top-K clips into decoded audio. Clips
// that fail to decode are skipped; an empty result is
// ErrNoSamplesAvailable.
func (s *Synthesizer) loadReferences() ([]*audio.Audio, error) {
	pool, err := s.cache.Get(s.opts.SampleDir)
	if err != nil {
		return nil, err
	}

	top := samples.TopK(pool, s.opts.TopK)
	if s.opts.Policy == PolicyBest {
		top = top[:1]
	}

	refs := make([]*audio.Audio, 0, len(top))
	for _, clip := range top {
		ref, err := audio.LoadWAV(clip.Path)
		if err != nil {
			log.Warn().Err(err).Str("file", clip.Path).Msg("Failed to load reference clip")
			continue
		}
		refs = append(refs, ref)
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("all selected clips failed to load: %w", samples.ErrNoSamplesAvailable)
	}
	return refs, nil
}
