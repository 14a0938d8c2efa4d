package audio

import (
	"fmt"
	"math"
	"os"
	"time"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	NumChannels   = 1
	BitsPerSample = 16
)

// Audio holds mono float32 samples in the [-1, 1] range.
type Audio struct {
	Samples    []float32
	SampleRate int
}

func New(samples []float32, sampleRate int) *Audio {
	return &Audio{
		Samples:    samples,
		SampleRate: sampleRate,
	}
}

// LoadWAV decodes a WAV file into mono float32 samples. Multi-channel
// input is downmixed by averaging.
func LoadWAV(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if buf.Format == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("empty audio data in %s", path)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	bitDepth := int(dec.BitDepth)
	if buf.SourceBitDepth != 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth <= 0 {
		bitDepth = BitsPerSample
	}
	scale := float32(int64(1) << (bitDepth - 1))

	frames := len(buf.Data) / channels
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += float32(buf.Data[i*channels+ch]) / scale
		}
		samples[i] = sum / float32(channels)
	}

	return &Audio{Samples: samples, SampleRate: buf.Format.SampleRate}, nil
}

// SaveWAV writes the audio as 16-bit PCM mono.
func (a *Audio) SaveWAV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	enc := wav.NewEncoder(f, a.SampleRate, BitsPerSample, NumChannels, 1)

	data := make([]int, len(a.Samples))
	for i, s := range a.Samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		data[i] = int(s * math.MaxInt16)
	}

	buf := &gaudio.IntBuffer{
		Format: &gaudio.Format{
			NumChannels: NumChannels,
			SampleRate:  a.SampleRate,
		},
		Data:           data,
		SourceBitDepth: BitsPerSample,
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("failed to write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}
	return f.Close()
}

func (a *Audio) Duration() float64 {
	if a.SampleRate == 0 {
		return 0
	}
	return float64(len(a.Samples)) / float64(a.SampleRate)
}

// Peak returns the largest absolute sample value.
func (a *Audio) Peak() float64 {
	var peak float64
	for _, s := range a.Samples {
		v := math.Abs(float64(s))
		if v > peak {
			peak = v
		}
	}
	return peak
}

// RMS returns the root-mean-square signal level.
func (a *Audio) RMS() float64 {
	if len(a.Samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range a.Samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(a.Samples)))
}

// Normalize scales samples so the peak sits at headroom (e.g. 0.95).
// Silent audio is left untouched.
func (a *Audio) Normalize(headroom float32) {
	peak := a.Peak()
	if peak == 0 {
		return
	}
	gain := headroom / float32(peak)
	for i := range a.Samples {
		a.Samples[i] *= gain
	}
}

// Resample converts the audio to the target rate using linear
// interpolation. Returns the receiver when the rate already matches.
func (a *Audio) Resample(rate int) *Audio {
	if rate == a.SampleRate || len(a.Samples) == 0 {
		return a
	}

	ratio := float64(a.SampleRate) / float64(rate)
	n := int(float64(len(a.Samples)) / ratio)
	if n < 1 {
		n = 1
	}

	out := make([]float32, n)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(a.Samples)-1 {
			out[i] = a.Samples[len(a.Samples)-1]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = a.Samples[idx]*(1-frac) + a.Samples[idx+1]*frac
	}

	return &Audio{Samples: out, SampleRate: rate}
}

// Concat joins segments in order with a silence gap between them,
// resampling any segment whose rate differs from the first. The gap is
// not appended after the final segment.
func Concat(segments []*Audio, gap time.Duration) *Audio {
	if len(segments) == 0 {
		return &Audio{}
	}

	rate := segments[0].SampleRate
	gapSamples := int(float64(rate) * gap.Seconds())

	total := 0
	resampled := make([]*Audio, len(segments))
	for i, seg := range segments {
		resampled[i] = seg.Resample(rate)
		total += len(resampled[i].Samples)
	}
	total += gapSamples * (len(segments) - 1)

	out := make([]float32, 0, total)
	for i, seg := range resampled {
		out = append(out, seg.Samples...)
		if i < len(resampled)-1 {
			out = append(out, make([]float32, gapSamples)...)
		}
	}

	return &Audio{Samples: out, SampleRate: rate}
}
