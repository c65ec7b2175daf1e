// Package bench measures transcription throughput: warmup runs to settle JIT
// state in the runtime, then timed runs reporting wall time and real-time
// factor.
package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lightwhisper/lightwhisper/internal/whisper"
)

const sampleTextLimit = 200

// Runner drives repeated transcriptions of the same input.
type Runner struct {
	// Transcribe runs one transcription of the benchmark input.
	Transcribe func(ctx context.Context) (whisper.Result, error)

	WarmupRuns int
	Runs       int

	// now is injectable for tests.
	Now func() time.Time
}

// Stats are the timing results of a benchmark.
type Stats struct {
	Runs           int
	Avg            time.Duration
	Min            time.Duration
	Max            time.Duration
	AudioDuration  float64
	RealTimeFactor float64
	SampleText     string
}

// Run performs the warmup and timed runs. Warmup results are discarded; the
// last timed result provides the audio duration and sample text.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	if r.Transcribe == nil {
		return Stats{}, errors.New("bench runner needs a transcribe function")
	}
	if r.Runs < 1 {
		return Stats{}, fmt.Errorf("%w: benchmark needs at least one timed run, got %d", whisper.ErrInvalidArgument, r.Runs)
	}

	now := r.Now
	if now == nil {
		now = time.Now
	}

	for i := 0; i < r.WarmupRuns; i++ {
		if _, err := r.Transcribe(ctx); err != nil {
			return Stats{}, fmt.Errorf("warmup run %d: %w", i+1, err)
		}
	}

	var (
		total time.Duration
		min   time.Duration
		max   time.Duration
		last  whisper.Result
	)
	for i := 0; i < r.Runs; i++ {
		started := now()
		result, err := r.Transcribe(ctx)
		if err != nil {
			return Stats{}, fmt.Errorf("benchmark run %d: %w", i+1, err)
		}
		elapsed := now().Sub(started)

		total += elapsed
		if i == 0 || elapsed < min {
			min = elapsed
		}
		if elapsed > max {
			max = elapsed
		}
		last = result
	}

	stats := Stats{
		Runs:          r.Runs,
		Avg:           total / time.Duration(r.Runs),
		Min:           min,
		Max:           max,
		AudioDuration: last.Duration(),
		SampleText:    truncate(last.Text, sampleTextLimit),
	}
	if stats.Avg > 0 {
		stats.RealTimeFactor = stats.AudioDuration / stats.Avg.Seconds()
	}

	return stats, nil
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
