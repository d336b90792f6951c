package logging

import "testing"

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(25)
	steps := []struct {
		percent float64
		want    bool
	}{
		{0, true},
		{12.5, false},
		{25, true},
		{49.9, false},
		{50, true},
		{100, true},
		{104, false},
	}
	for _, step := range steps {
		if got := s.ShouldLog(step.percent, "download"); got != step.want {
			t.Fatalf("ShouldLog(%v) = %v, want %v", step.percent, got, step.want)
		}
	}
}

func TestProgressSamplerDefaultsBucketSize(t *testing.T) {
	if s := NewProgressSampler(0); s.bucketSize != 5 {
		t.Fatalf("bucketSize = %v, want 5", s.bucketSize)
	}
}

func TestProgressSamplerPhaseChangeEmits(t *testing.T) {
	s := NewProgressSampler(5)
	s.ShouldLog(100, "download")
	if !s.ShouldLog(-1, "ExtractAudio") {
		t.Fatal("expected postprocessor phase to emit")
	}
	if s.ShouldLog(-1, "ExtractAudio") {
		t.Fatal("expected repeated phase without percent to be suppressed")
	}
	if !s.ShouldLog(-1, " Metadata ") {
		t.Fatal("expected trimmed phase change to emit")
	}
}

func TestProgressSamplerCountsRestartedTransfers(t *testing.T) {
	s := NewProgressSampler(10)
	for _, pct := range []float64{0, 50, 100} {
		s.ShouldLog(pct, "download")
	}
	if !s.ShouldLog(2, "download") {
		t.Fatal("expected a restart at low percent to emit")
	}
	if s.ShouldLog(5, "download") {
		t.Fatal("expected same bucket after restart to be suppressed")
	}
	if got := s.Transfers(); got != 2 {
		t.Fatalf("Transfers() = %d, want 2", got)
	}
}

func TestProgressSamplerNil(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "download") {
		t.Fatal("nil sampler should log everything")
	}
	if s.Transfers() != 0 {
		t.Fatal("nil sampler should report no transfers")
	}
}
