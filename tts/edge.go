package tts

import (
	"context"
	"fmt"
	"os"

	"github.com/wujunwei928/edge-tts-go/edge_tts"

	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/internal/confmap"
	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/logger"
)

const (
	// Default Edge neural voice.
	defaultEdgeVoice = "en-US-AriaNeural"

	// File permissions for written audio.
	edgeFilePermissions = 0600
)

// edgeVoices is a static sample of common Edge neural voices. The service has
// many more; this table covers the ones the adapter is typically used with.
var edgeVoices = []string{
	"en-US-AriaNeural",
	"en-US-GuyNeural",
	"en-GB-SoniaNeural",
	"de-DE-KatjaNeural",
	"fr-FR-DeniseNeural",
	"es-ES-ElviraNeural",
	"zh-CN-XiaoxiaoNeural",
	"ja-JP-NanamiNeural",
}

// EdgeConfig configures the Microsoft Edge TTS provider.
type EdgeConfig struct {
	// Voice is the default neural voice identifier.
	Voice string `yaml:"voice"`
}

// EdgeService implements TTS using Microsoft Edge's free neural voices. No
// API key is needed; each call opens a fresh websocket session to the
// service, so failures surface per call rather than at construction.
type EdgeService struct {
	voice string
}

func init() {
	Register("edge", func(cfg map[string]any) (Service, error) {
		return NewEdge(cfg)
	})
}

// NewEdge creates an Edge TTS service.
func NewEdge(cfg map[string]any) (*EdgeService, error) {
	config := EdgeConfig{Voice: defaultEdgeVoice}
	if err := confmap.Decode(cfg, &config); err != nil {
		return nil, &InitError{Provider: "edge", Cause: err}
	}
	return &EdgeService{voice: config.Voice}, nil
}

// Name returns the provider identifier.
func (s *EdgeService) Name() string {
	return "edge"
}

// Synthesize converts text to MP3 audio and writes the result to outputPath.
// Edge always emits MP3; format overrides are ignored.
func (s *EdgeService) Synthesize(ctx context.Context, text, outputPath string, opts ...Option) error {
	if text == "" {
		return ErrEmptyText
	}
	req := applyOptions(opts)

	voice := req.Voice
	if voice == "" {
		voice = s.voice
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	communicate, err := edge_tts.NewCommunicate(text, edge_tts.SetVoice(voice))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	audio, err := communicate.Stream()
	if err != nil {
		return NewSynthesisError("edge", "", "synthesis failed", err, true)
	}

	logger.Debug("edge synthesis complete", "voice", voice, "bytes", len(audio))

	if err := os.WriteFile(outputPath, audio, edgeFilePermissions); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	return nil
}

// SynthesizeStream is not implemented for Edge.
func (s *EdgeService) SynthesizeStream(_ context.Context, _ string, _ ...Option) (<-chan Chunk, error) {
	return nil, fmt.Errorf("edge: %w", ErrStreamingNotSupported)
}

// Voices returns the static voice table.
func (s *EdgeService) Voices(_ context.Context) ([]string, error) {
	voices := make([]string, len(edgeVoices))
	copy(voices, edgeVoices)
	return voices, nil
}
