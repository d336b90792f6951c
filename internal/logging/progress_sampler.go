package logging

import "strings"

// ProgressSampler thins yt-dlp progress output down to one line per percentage
// bucket. A phase change always emits, and so does a percentage that falls
// back below the current bucket: yt-dlp restarts at 0% for every file it
// transfers (subtitles first, then the audio stream).
type ProgressSampler struct {
	bucketSize float64
	phase      string
	bucket     int
	transfers  int
}

// NewProgressSampler returns a sampler with the given bucket width in percent.
// Non-positive widths fall back to 5%.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 5
	}
	return &ProgressSampler{bucketSize: bucketSize, bucket: -1}
}

// ShouldLog reports whether an update for phase at percent is worth a log line.
// A negative percent means the line had none. A nil sampler logs everything.
func (s *ProgressSampler) ShouldLog(percent float64, phase string) bool {
	if s == nil {
		return true
	}
	emit := false
	if phase = strings.TrimSpace(phase); phase != "" && phase != s.phase {
		s.phase = phase
		s.bucket = -1
		emit = true
	}
	if percent < 0 {
		return emit
	}
	bucket := int(min(percent, 100) / s.bucketSize)
	switch {
	case bucket > s.bucket:
		if s.bucket < 0 {
			s.transfers++
		}
	case bucket < s.bucket:
		s.transfers++
	default:
		return emit
	}
	s.bucket = bucket
	return true
}

// Transfers returns how many separate transfers the sampler has seen.
func (s *ProgressSampler) Transfers() int {
	if s == nil {
		return 0
	}
	return s.transfers
}
