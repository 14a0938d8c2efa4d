package synth

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voxclone/internal/pkg/voxclone/audio"
	"voxclone/internal/pkg/voxclone/engine"
	"voxclone/internal/pkg/voxclone/samples"
)

const testRate = 22050

// fakeEngine renders a constant-level segment per successful call, so
// tests can verify ordering in the concatenated output.
type fakeEngine struct {
	calls     int
	successes int
	failText  string
	failLeft  int
	segLen    int
}

func (f *fakeEngine) Synthesize(text string, ref *audio.Audio) (*audio.Audio, error) {
	f.calls++
	if f.failText != "" && strings.Contains(text, f.failText) && f.failLeft != 0 {
		if f.failLeft > 0 {
			f.failLeft--
		}
		return nil, errors.New("engine exploded")
	}
	f.successes++
	data := make([]float32, f.segLen)
	level := 0.1 * float32(f.successes)
	for i := range data {
		data[i] = level
	}
	return audio.New(data, testRate), nil
}

func (f *fakeEngine) Info() engine.Info {
	return engine.Info{Name: "fake", SampleRate: testRate}
}

func (f *fakeEngine) Close() error { return nil }

func writeTone(t *testing.T, path string, seconds float64, amplitude float32) {
	t.Helper()
	n := int(testRate * seconds)
	data := make([]float32, n)
	for i := range data {
		data[i] = amplitude * float32(math.Sin(2*math.Pi*220*float64(i)/testRate))
	}
	if err := audio.New(data, testRate).SaveWAV(path); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newTestSynthesizer(t *testing.T, eng engine.Engine, maxChunkLen int) *Synthesizer {
	t.Helper()
	sampleDir := t.TempDir()
	writeTone(t, filepath.Join(sampleDir, "ref.wav"), 3.0, 0.5)

	cache := samples.NewCache(samples.NewScanner(samples.DefaultOptions()))
	opts := DefaultOptions(sampleDir)
	opts.MaxChunkLen = maxChunkLen
	return New(eng, cache, opts)
}

// Three short sentences that chunk to three pieces at maxLen 30.
const threeChunkText = "Red fox runs fast. Blue bird sings now. Green frog jumps high."

func TestSynthesizeToFileThreeChunks(t *testing.T) {
	eng := &fakeEngine{segLen: testRate / 2}
	s := newTestSynthesizer(t, eng, 30)

	outDir := t.TempDir()
	outPath := filepath.Join(outDir, "out.wav")
	if err := s.SynthesizeToFile(threeChunkText, outPath); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if eng.calls != 3 {
		t.Fatalf("engine called %d times, want 3", eng.calls)
	}

	out, err := audio.LoadWAV(outPath)
	if err != nil {
		t.Fatalf("load output: %v", err)
	}

	gap := int(float64(testRate) * 0.2)
	wantLen := 3*eng.segLen + 2*gap
	if len(out.Samples) != wantLen {
		t.Fatalf("output length = %d, want %d (3 segments + 2 gaps)", len(out.Samples), wantLen)
	}

	// Segment levels rise per call, so order survives concatenation
	// and peak normalization.
	mid := eng.segLen / 2
	first := out.Samples[mid]
	second := out.Samples[eng.segLen+gap+mid]
	third := out.Samples[2*(eng.segLen+gap)+mid]
	if !(first < second && second < third) {
		t.Fatalf("segments out of order: %f %f %f", first, second, third)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("stray files left in output dir: %v", entries)
	}
}

func TestSingleChunkShortText(t *testing.T) {
	eng := &fakeEngine{segLen: testRate / 4}
	s := newTestSynthesizer(t, eng, 500)

	out, err := s.Synthesize("Hello there.")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if eng.calls != 1 {
		t.Fatalf("engine called %d times, want 1", eng.calls)
	}
	if len(out.Samples) != eng.segLen {
		t.Fatalf("single chunk must have no gaps")
	}
}

func TestEmptyTextNoEngineCall(t *testing.T) {
	eng := &fakeEngine{segLen: 100}
	s := newTestSynthesizer(t, eng, 30)

	if _, err := s.Synthesize("   "); err == nil {
		t.Fatalf("expected error for blank text")
	}
	if eng.calls != 0 {
		t.Fatalf("engine must not be called for blank text")
	}
}

func TestRetryRecoversTransientFailure(t *testing.T) {
	eng := &fakeEngine{segLen: 100, failText: "blue bird", failLeft: 1}
	s := newTestSynthesizer(t, eng, 30)

	if _, err := s.Synthesize(threeChunkText); err != nil {
		t.Fatalf("one transient failure must be retried: %v", err)
	}
	if eng.calls != 4 {
		t.Fatalf("engine called %d times, want 4 (3 chunks + 1 retry)", eng.calls)
	}
}

func TestPersistentFailureAbortsWithChunkIndex(t *testing.T) {
	eng := &fakeEngine{segLen: 100, failText: "blue bird", failLeft: -1}
	s := newTestSynthesizer(t, eng, 30)

	outPath := filepath.Join(t.TempDir(), "out.wav")
	err := s.SynthesizeToFile(threeChunkText, outPath)
	if err == nil {
		t.Fatalf("expected failure")
	}

	var synthErr *SynthesisError
	if !errors.As(err, &synthErr) {
		t.Fatalf("got %T, want *SynthesisError", err)
	}
	if synthErr.Chunk != 1 {
		t.Fatalf("failing chunk = %d, want 1", synthErr.Chunk)
	}
	if _, statErr := os.Stat(outPath); !os.IsNotExist(statErr) {
		t.Fatalf("partial output must not be written")
	}
}

func TestNoSamplesAvailable(t *testing.T) {
	eng := &fakeEngine{segLen: 100}
	cache := samples.NewCache(samples.NewScanner(samples.DefaultOptions()))
	s := New(eng, cache, DefaultOptions(t.TempDir()))

	_, err := s.Synthesize("Hello.")
	if !errors.Is(err, samples.ErrNoSamplesAvailable) {
		t.Fatalf("got %v, want ErrNoSamplesAvailable", err)
	}
	if eng.calls != 0 {
		t.Fatalf("engine must not be called without samples")
	}
}

func TestPoolPolicyRotatesReferences(t *testing.T) {
	eng := &fakeEngine{segLen: 100}
	sampleDir := t.TempDir()
	writeTone(t, filepath.Join(sampleDir, "a.wav"), 3.0, 0.5)
	writeTone(t, filepath.Join(sampleDir, "b.wav"), 8.0, 0.5)

	cache := samples.NewCache(samples.NewScanner(samples.DefaultOptions()))
	opts := DefaultOptions(sampleDir)
	opts.MaxChunkLen = 30
	opts.Policy = PolicyPool
	s := New(eng, cache, opts)

	if _, err := s.Synthesize(threeChunkText); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if eng.calls != 3 {
		t.Fatalf("engine called %d times, want 3", eng.calls)
	}
}

func TestRefreshSamplesSeesNewClips(t *testing.T) {
	eng := &fakeEngine{segLen: 100}
	s := newTestSynthesizer(t, eng, 30)

	pool, err := s.Samples()
	if err != nil {
		t.Fatalf("samples: %v", err)
	}
	if len(pool) != 1 {
		t.Fatalf("got %d clips, want 1", len(pool))
	}

	writeTone(t, filepath.Join(s.opts.SampleDir, "extra.wav"), 8.0, 0.5)
	pool, err = s.RefreshSamples()
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("got %d clips after refresh, want 2", len(pool))
	}
}

func TestGapDuration(t *testing.T) {
	eng := &fakeEngine{segLen: 1000}
	sampleDir := t.TempDir()
	writeTone(t, filepath.Join(sampleDir, "ref.wav"), 3.0, 0.5)

	cache := samples.NewCache(samples.NewScanner(samples.DefaultOptions()))
	opts := DefaultOptions(sampleDir)
	opts.MaxChunkLen = 30
	opts.Gap = 100 * time.Millisecond
	s := New(eng, cache, opts)

	out, err := s.Synthesize(threeChunkText)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	gap := int(float64(testRate) * 0.1)
	if want := 3*1000 + 2*gap; len(out.Samples) != want {
		t.Fatalf("length = %d, want %d", len(out.Samples), want)
	}
}
