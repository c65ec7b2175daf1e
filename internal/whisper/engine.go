package whisper

import "context"

// TranscriptionRequest carries one transcription call through an engine. The
// model source must already be resolved; engines that need local files fetch
// the snapshot themselves.
type TranscriptionRequest struct {
	AudioPath      string
	Source         Source
	BatchSize      int
	Language       string
	Task           Task
	WordTimestamps bool
	Verbose        bool
}

// Segment is one timestamped slice of the transcript. Times are seconds from
// the start of the audio, matching the decoder's output.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Word is a word-level timestamp, present when word timestamps were requested.
type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

// Result is a finished transcription.
type Result struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Words    []Word    `json:"words,omitempty"`
	Language string    `json:"language"`
}

// Duration returns the audio span covered by the transcript in seconds,
// taken from the last segment's end.
func (r Result) Duration() float64 {
	if len(r.Segments) == 0 {
		return 0
	}
	return r.Segments[len(r.Segments)-1].End
}

// Engine runs the actual decoding. The in-process implementation drives a
// Runtime through the loader cache; the exec implementation shells out to the
// mlx_whisper tool.
type Engine interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (Result, error)
}
