package tts

import (
	"context"
)

// Common audio format names accepted by the adapters.
const (
	FormatMP3  = "mp3"
	FormatWAV  = "wav"
	FormatOGG  = "ogg"
	FormatFLAC = "flac"
	FormatPCM  = "pcm"
	FormatOpus = "opus"
	FormatAAC  = "aac"
)

// Service converts text to speech audio.
// This interface abstracts different TTS backends (a local Kokoro server,
// OpenAI, ElevenLabs, Edge neural voices) enabling voice applications to use
// any backend interchangeably.
type Service interface {
	// Name returns the provider identifier (for logging/debugging).
	Name() string

	// Synthesize writes a complete audio file to outputPath. Options supply
	// per-call voice/format overrides that take precedence over the adapter's
	// configured defaults without mutating them. Empty text fails with
	// ErrEmptyText and writes nothing.
	Synthesize(ctx context.Context, text, outputPath string, opts ...Option) error

	// SynthesizeStream converts text to audio with incremental delivery.
	// The channel is closed when synthesis completes or an error occurs.
	// Adapters that cannot stream fail with ErrStreamingNotSupported rather
	// than buffering and emitting one giant chunk.
	SynthesizeStream(ctx context.Context, text string, opts ...Option) (<-chan Chunk, error)

	// Voices returns the identifiers of currently available voices, either
	// from a remote list endpoint or a static built-in table. Never mutates
	// backend state; an empty result is not an error.
	Voices(ctx context.Context) ([]string, error)
}

// StreamingService marks adapters with a real streaming implementation.
type StreamingService interface {
	Service

	// SupportsStreaming reports whether SynthesizeStream delivers incremental
	// chunks rather than failing with ErrStreamingNotSupported.
	SupportsStreaming() bool
}

// Chunk is a piece of synthesized audio delivered during streaming.
type Chunk struct {
	// Data is the raw audio bytes.
	Data []byte

	// Index is the chunk sequence number (0-indexed).
	Index int

	// Final indicates this is the last chunk.
	Final bool

	// Err is set if an error occurred during synthesis.
	Err error
}

// SynthesisRequest collects the per-call overrides assembled from options.
// Zero-valued fields fall back to the adapter's configured defaults.
type SynthesisRequest struct {
	// Voice overrides the configured voice for this call only.
	Voice string

	// Format overrides the configured output format for this call only.
	Format string

	// Model overrides the configured model for this call only.
	Model string
}

// Option configures a single synthesis call.
type Option func(*SynthesisRequest)

// WithVoice overrides the voice for one call.
func WithVoice(voice string) Option {
	return func(r *SynthesisRequest) {
		r.Voice = voice
	}
}

// WithFormat overrides the output audio format for one call.
func WithFormat(format string) Option {
	return func(r *SynthesisRequest) {
		r.Format = format
	}
}

// WithModel overrides the synthesis model for one call.
func WithModel(model string) Option {
	return func(r *SynthesisRequest) {
		r.Model = model
	}
}

// applyOptions builds a SynthesisRequest from per-call options.
func applyOptions(opts []Option) SynthesisRequest {
	var req SynthesisRequest
	for _, opt := range opts {
		opt(&req)
	}
	return req
}

// QuickSynthesize is a convenience helper that instantiates a provider for a
// single synthesis call.
func QuickSynthesize(ctx context.Context, provider, text, outputPath string, cfg map[string]any) error {
	svc, err := New(provider, cfg)
	if err != nil {
		return err
	}
	return svc.Synthesize(ctx, text, outputPath)
}
