package samples

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"voxclone/internal/pkg/voxclone/audio"
)

const testRate = 22050

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

func TestScanDirEmpty(t *testing.T) {
	s := NewScanner(DefaultOptions())
	_, err := s.ScanDir(t.TempDir())
	if !errors.Is(err, ErrNoSamplesAvailable) {
		t.Fatalf("got %v, want ErrNoSamplesAvailable", err)
	}
}

func TestScanDirMissing(t *testing.T) {
	s := NewScanner(DefaultOptions())
	_, err := s.ScanDir(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrNoSamplesAvailable) {
		t.Fatalf("got %v, want ErrNoSamplesAvailable", err)
	}
}

func TestScanDirRejectsShortClip(t *testing.T) {
	dir := t.TempDir()
	writeTone(t, filepath.Join(dir, "short.wav"), 0.2, 0.5)
	writeTone(t, filepath.Join(dir, "good.wav"), 3.0, 0.5)

	s := NewScanner(DefaultOptions())
	clips, err := s.ScanDir(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(clips) != 1 {
		t.Fatalf("got %d clips, want 1", len(clips))
	}
	if filepath.Base(clips[0].Path) != "good.wav" {
		t.Fatalf("top clip = %s, want good.wav", clips[0].Path)
	}
}

func TestScanDirRejectsSilentAndClipped(t *testing.T) {
	dir := t.TempDir()
	writeTone(t, filepath.Join(dir, "silent.wav"), 3.0, 0.001)
	writeTone(t, filepath.Join(dir, "clipped.wav"), 3.0, 1.0)
	writeTone(t, filepath.Join(dir, "good.wav"), 3.0, 0.5)

	s := NewScanner(DefaultOptions())
	clips, err := s.ScanDir(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(clips) != 1 || filepath.Base(clips[0].Path) != "good.wav" {
		t.Fatalf("got %v, want only good.wav", clips)
	}
}

func TestScanDirSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.wav"), []byte("not audio"), 0644); err != nil {
		t.Fatal(err)
	}
	writeTone(t, filepath.Join(dir, "good.wav"), 3.0, 0.5)

	s := NewScanner(DefaultOptions())
	clips, err := s.ScanDir(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(clips) != 1 {
		t.Fatalf("got %d clips, want 1", len(clips))
	}
}

func TestRankingPrefersIdealDuration(t *testing.T) {
	dir := t.TempDir()
	writeTone(t, filepath.Join(dir, "okay.wav"), 3.0, 0.5)
	writeTone(t, filepath.Join(dir, "ideal.wav"), 8.0, 0.5)

	s := NewScanner(DefaultOptions())
	clips, err := s.ScanDir(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("got %d clips, want 2", len(clips))
	}
	if filepath.Base(clips[0].Path) != "ideal.wav" {
		t.Fatalf("top clip = %s, want ideal.wav", clips[0].Path)
	}
	if clips[0].Score <= clips[1].Score {
		t.Fatalf("scores not descending: %f <= %f", clips[0].Score, clips[1].Score)
	}
}

func TestTopK(t *testing.T) {
	clips := []Clip{{Path: "a"}, {Path: "b"}, {Path: "c"}}
	if got := TopK(clips, 2); len(got) != 2 {
		t.Fatalf("got %d, want 2", len(got))
	}
	if got := TopK(clips, 0); len(got) != 3 {
		t.Fatalf("k=0 must return all, got %d", len(got))
	}
	if got := TopK(clips, 10); len(got) != 3 {
		t.Fatalf("k>len must return all, got %d", len(got))
	}
}

func TestCacheLazyAndInvalidate(t *testing.T) {
	dir := t.TempDir()
	writeTone(t, filepath.Join(dir, "first.wav"), 3.0, 0.5)

	cache := NewCache(NewScanner(DefaultOptions()))

	pool, err := cache.Get(dir)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(pool) != 1 {
		t.Fatalf("got %d clips, want 1", len(pool))
	}

	// A new file must not appear until the cache is invalidated.
	writeTone(t, filepath.Join(dir, "second.wav"), 8.0, 0.5)
	pool, err = cache.Get(dir)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(pool) != 1 {
		t.Fatalf("cached pool grew to %d without invalidation", len(pool))
	}

	cache.Invalidate(dir)
	pool, err = cache.Get(dir)
	if err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("got %d clips after rescan, want 2", len(pool))
	}
	if filepath.Base(pool[0].Path) != "second.wav" {
		t.Fatalf("rescan must rank the 8s clip first, got %s", pool[0].Path)
	}
}

func TestCacheRefresh(t *testing.T) {
	dir := t.TempDir()
	writeTone(t, filepath.Join(dir, "first.wav"), 3.0, 0.5)

	cache := NewCache(NewScanner(DefaultOptions()))
	if _, err := cache.Get(dir); err != nil {
		t.Fatalf("get: %v", err)
	}

	writeTone(t, filepath.Join(dir, "second.wav"), 8.0, 0.5)
	pool, err := cache.Refresh(dir)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("got %d clips after refresh, want 2", len(pool))
	}
}
