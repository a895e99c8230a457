package stt

import (
	"context"
	"io"
)

const (
	// Default audio settings expected by local transcription backends.
	DefaultSampleRate = 16000
	DefaultChannels   = 1
	DefaultBitDepth   = 16

	// Common audio formats.
	FormatPCM = "pcm"
	FormatWAV = "wav"
	FormatMP3 = "mp3"
)

// Result is the outcome of a transcription call.
type Result struct {
	// Text is the full transcript. Never silently truncated; partial results
	// are only delivered through the streaming contract.
	Text string

	// Language is the detected (or configured) language code, e.g. "en".
	Language string

	// LanguageProbability is the backend's confidence in the detected
	// language, in [0, 1]. 1.0 when the backend does not report one.
	LanguageProbability float64

	// Duration is the audio duration in seconds. 0 when unknown.
	Duration float64
}

// Service transcribes audio to text.
// This interface abstracts different STT backends (local whisper.cpp, a local
// faster-whisper server, OpenAI Whisper, Google Cloud Speech) enabling voice
// applications to use any backend interchangeably.
type Service interface {
	// Name returns the provider identifier (for logging/debugging).
	Name() string

	// Transcribe reads a local audio file and blocks until a transcript is
	// available. File-level problems surface as wrapped input errors,
	// unreachable backends as ErrServiceUnavailable, and any other backend
	// failure as a *TranscriptionError.
	Transcribe(ctx context.Context, audioPath string) (*Result, error)

	// TranscribeStream transcribes streaming audio, emitting partial results
	// as they become available. No current adapter implements streaming; they
	// all fail deterministically with ErrStreamingNotSupported. The method is
	// part of the contract so future realtime support is non-breaking.
	TranscribeStream(ctx context.Context, audio io.Reader) (<-chan Result, error)
}

// StreamingService marks adapters with a real streaming implementation.
// Callers should type-assert against it before relying on TranscribeStream.
type StreamingService interface {
	Service

	// SupportsStreaming reports whether TranscribeStream delivers partial
	// results rather than failing with ErrStreamingNotSupported.
	SupportsStreaming() bool
}

// QuickTranscribe is a convenience helper that instantiates a provider for a
// single transcription and returns just the transcript text.
func QuickTranscribe(ctx context.Context, provider, audioPath string, cfg map[string]any) (string, error) {
	svc, err := New(provider, cfg)
	if err != nil {
		return "", err
	}

	result, err := svc.Transcribe(ctx, audioPath)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}
