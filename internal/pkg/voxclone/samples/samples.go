// Package samples scans a directory of short reference recordings and
// ranks them by suitability as voice-cloning prompts.
package samples

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"voxclone/internal/pkg/voxclone/audio"
)

// ErrNoSamplesAvailable reports an empty or fully-rejected sample pool.
var ErrNoSamplesAvailable = errors.New("no usable voice samples available")

// Clip describes one scanned reference recording. Immutable once built.
type Clip struct {
	Path       string  `json:"path"`
	Duration   float64 `json:"duration"`
	SampleRate int     `json:"sample_rate"`
	RMS        float64 `json:"rms"`
	Peak       float64 `json:"peak"`
	ClipRatio  float64 `json:"clip_ratio"`
	Score      float64 `json:"score"`
}

type Options struct {
	// Acceptable duration band in seconds. Clips shorter than the
	// minimum carry too little prosody; longer ones slow inference.
	MinDuration   float64
	MaxDuration   float64
	IdealDuration float64

	// MinRMS rejects near-silent recordings.
	MinRMS float64

	// MaxClipRatio rejects recordings where too many samples sit at
	// full scale (digital clipping).
	MaxClipRatio float64
}

func DefaultOptions() Options {
	return Options{
		MinDuration:   2.0,
		MaxDuration:   15.0,
		IdealDuration: 8.0,
		MinRMS:        0.01,
		MaxClipRatio:  0.02,
	}
}

type Scanner struct {
	opts Options
}

func NewScanner(opts Options) *Scanner {
	if opts.MinDuration <= 0 && opts.MaxDuration <= 0 {
		opts = DefaultOptions()
	}
	if opts.IdealDuration <= 0 {
		opts.IdealDuration = (opts.MinDuration + opts.MaxDuration) / 2
	}
	return &Scanner{opts: opts}
}

// ScanDir reads every WAV file in dir and returns the surviving clips
// ranked by score, best first. Unreadable or rejected files are skipped
// with a warning; an empty surviving pool is ErrNoSamplesAvailable.
func (s *Scanner) ScanDir(dir string) ([]Clip, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sample directory %s: %w", dir, ErrNoSamplesAvailable)
	}

	var clips []Clip
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		clip, err := s.scanFile(path)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("Skipping unreadable sample")
			continue
		}

		if reason := s.reject(clip); reason != "" {
			log.Debug().
				Str("file", path).
				Str("reason", reason).
				Float64("duration", clip.Duration).
				Msg("Rejected sample")
			continue
		}

		clip.Score = s.score(clip)
		clips = append(clips, clip)
	}

	if len(clips) == 0 {
		return nil, fmt.Errorf("no suitable clips in %s: %w", dir, ErrNoSamplesAvailable)
	}

	sort.Slice(clips, func(i, j int) bool {
		if clips[i].Score != clips[j].Score {
			return clips[i].Score > clips[j].Score
		}
		return clips[i].Path < clips[j].Path
	})
	return clips, nil
}

func (s *Scanner) scanFile(path string) (Clip, error) {
	a, err := audio.LoadWAV(path)
	if err != nil {
		return Clip{}, err
	}

	clipped := 0
	for _, sample := range a.Samples {
		if sample >= 0.985 || sample <= -0.985 {
			clipped++
		}
	}

	return Clip{
		Path:       path,
		Duration:   a.Duration(),
		SampleRate: a.SampleRate,
		RMS:        a.RMS(),
		Peak:       a.Peak(),
		ClipRatio:  float64(clipped) / float64(len(a.Samples)),
	}, nil
}

func (s *Scanner) reject(c Clip) string {
	switch {
	case c.Duration < s.opts.MinDuration:
		return "too short"
	case c.Duration > s.opts.MaxDuration:
		return "too long"
	case c.RMS < s.opts.MinRMS:
		return "near silent"
	case c.ClipRatio > s.opts.MaxClipRatio:
		return "clipped"
	default:
		return ""
	}
}

// score combines closeness to the ideal duration with signal quality.
// Both terms are in [0, 1]; duration fit dominates.
func (s *Scanner) score(c Clip) float64 {
	span := s.opts.MaxDuration - s.opts.MinDuration
	if span <= 0 {
		span = 1
	}
	durFit := 1 - math.Abs(c.Duration-s.opts.IdealDuration)/span
	if durFit < 0 {
		durFit = 0
	}

	energy := c.RMS / (c.RMS + 0.05)
	cleanliness := 1 - c.ClipRatio/s.opts.MaxClipRatio
	if cleanliness < 0 {
		cleanliness = 0
	}

	return 0.6*durFit + 0.4*energy*cleanliness
}

// TopK returns the k best clips from an already-ranked pool.
func TopK(clips []Clip, k int) []Clip {
	if k <= 0 || k > len(clips) {
		k = len(clips)
	}
	return clips[:k]
}
