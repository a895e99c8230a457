package voice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/logger"
	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/media"
	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/metrics"
	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/stt"
	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/tts"
)

const (
	// transcriptPreviewLen bounds transcript text in log output.
	transcriptPreviewLen = 100

	// probeDuration is the length of the silent audio used by TestConnection.
	probeDuration = time.Second

	// probeText is synthesized by the TTS leg of TestConnection.
	probeText = "Test"
)

// Status reports per-leg liveness from TestConnection.
type Status struct {
	// STT is true when the transcription leg answered the probe.
	STT bool

	// TTS is true when the synthesis leg answered the probe.
	TTS bool
}

// Handler owns one STT provider, one TTS provider, and an optional audio
// converter, and exposes the transcribe/synthesize surface a hosting agent
// calls. Instances are not shared; each Handler exclusively owns its
// services.
type Handler struct {
	transcriber stt.Service
	synthesizer tts.Service
	converter   *media.Converter
	defaults    Defaults
}

// New creates a Handler from already-constructed services. The converter may
// be nil, in which case inbound audio is passed to the transcriber as-is.
func New(transcriber stt.Service, synthesizer tts.Service, converter *media.Converter, defaults Defaults) *Handler {
	return &Handler{
		transcriber: transcriber,
		synthesizer: synthesizer,
		converter:   converter,
		defaults:    defaults,
	}
}

// FromConfig builds a Handler from a declarative configuration, resolving
// both providers through their registries. Construction failures surface
// immediately; a Handler is never returned half-initialized.
func FromConfig(cfg *Config) (*Handler, error) {
	sttName, sttCfg := providerName(cfg.STT)
	if sttName == "" {
		return nil, errors.New("stt section missing provider name")
	}
	ttsName, ttsCfg := providerName(cfg.TTS)
	if ttsName == "" {
		return nil, errors.New("tts section missing provider name")
	}

	transcriber, err := stt.New(sttName, sttCfg)
	if err != nil {
		return nil, err
	}
	synthesizer, err := tts.New(ttsName, ttsCfg)
	if err != nil {
		return nil, err
	}

	logger.Info("voice handler configured",
		"stt", transcriber.Name(),
		"tts", synthesizer.Name(),
	)

	return New(transcriber, synthesizer, media.NewConverter(media.DefaultConverterConfig()), cfg.Defaults), nil
}

// Transcribe converts an audio file to text. Failures are logged with the
// provider's diagnostic detail and re-raised unchanged.
func (h *Handler) Transcribe(ctx context.Context, audioPath string) (string, error) {
	start := time.Now()
	result, err := h.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		metrics.RecordTranscription(h.transcriber.Name(), "error", time.Since(start).Seconds())
		logger.Error("transcription failed",
			"provider", h.transcriber.Name(),
			"path", audioPath,
			"error", err,
		)
		return "", err
	}
	metrics.RecordTranscription(h.transcriber.Name(), "success", time.Since(start).Seconds())

	logger.Info("transcription complete",
		"provider", h.transcriber.Name(),
		"language", result.Language,
		"text", logger.Preview(result.Text, transcriptPreviewLen),
	)
	return result.Text, nil
}

// ProcessVoiceMessage runs the full inbound leg: convert the platform's
// audio into transcription-friendly WAV when a converter is available, then
// transcribe. The intermediate file is removed afterwards.
func (h *Handler) ProcessVoiceMessage(ctx context.Context, audioPath string) (string, error) {
	path := audioPath
	if h.converter != nil && h.converter.Available() {
		start := time.Now()
		converted, err := h.converter.ConvertForTranscription(ctx, audioPath)
		if err != nil {
			metrics.RecordConversion("transcription", "error", time.Since(start).Seconds())
			logger.Error("inbound audio conversion failed", "path", audioPath, "error", err)
			return "", err
		}
		metrics.RecordConversion("transcription", "success", time.Since(start).Seconds())
		path = converted
		defer func() {
			if err := os.Remove(converted); err != nil && !os.IsNotExist(err) {
				logger.Warn("failed to remove converted audio", "path", converted, "error", err)
			}
		}()
	}
	return h.Transcribe(ctx, path)
}

// Synthesize converts text to an audio file. voice and format override the
// adapter's configured defaults for this call only; empty strings leave the
// defaults untouched. Failures are logged and re-raised unchanged.
func (h *Handler) Synthesize(ctx context.Context, text, outputPath, voice, format string) error {
	var opts []tts.Option
	if voice != "" {
		opts = append(opts, tts.WithVoice(voice))
	}
	if format != "" {
		opts = append(opts, tts.WithFormat(format))
	}

	start := time.Now()
	if err := h.synthesizer.Synthesize(ctx, text, outputPath, opts...); err != nil {
		metrics.RecordSynthesis(h.synthesizer.Name(), "error", time.Since(start).Seconds())
		logger.Error("synthesis failed",
			"provider", h.synthesizer.Name(),
			"text", logger.Preview(text, transcriptPreviewLen),
			"error", err,
		)
		return err
	}
	metrics.RecordSynthesis(h.synthesizer.Name(), "success", time.Since(start).Seconds())

	logger.Info("synthesis complete",
		"provider", h.synthesizer.Name(),
		"output", outputPath,
	)
	return nil
}

// SynthesizeForPlatform synthesizes text and re-encodes the result for the
// named platform. When ffmpeg is unavailable the synthesized file is
// returned unconverted.
func (h *Handler) SynthesizeForPlatform(ctx context.Context, text, outputPath, platform string) (string, error) {
	if err := h.Synthesize(ctx, text, outputPath, "", ""); err != nil {
		return "", err
	}
	if h.converter == nil {
		return outputPath, nil
	}

	start := time.Now()
	converted, err := h.converter.ConvertForPlatform(ctx, outputPath, platform)
	if err != nil {
		metrics.RecordConversion("platform", "error", time.Since(start).Seconds())
		logger.Error("outbound audio conversion failed",
			"path", outputPath, "platform", platform, "error", err)
		return "", err
	}
	metrics.RecordConversion("platform", "success", time.Since(start).Seconds())
	return converted, nil
}

// Voices lists the synthesizer's available voice identifiers. Listing is
// advisory; failures are logged and collapse to an empty slice rather than
// propagating.
func (h *Handler) Voices(ctx context.Context) []string {
	voices, err := h.synthesizer.Voices(ctx)
	if err != nil {
		logger.Warn("voice listing failed",
			"provider", h.synthesizer.Name(),
			"error", err,
		)
		return []string{}
	}
	return voices
}

// TestConnection probes both legs with real calls: a transcription of a
// one-second silent WAV and a short synthesis. It never returns an error;
// each failure is logged and reported as false. This is a liveness probe,
// not a correctness probe.
func (h *Handler) TestConnection(ctx context.Context) Status {
	var status Status

	probePath := filepath.Join(os.TempDir(), "voice_probe_"+uuid.NewString()+".wav")
	if err := stt.WriteSilentWAV(probePath, probeDuration); err != nil {
		logger.Warn("failed to write STT probe audio", "error", err)
	} else {
		defer os.Remove(probePath)
		if _, err := h.transcriber.Transcribe(ctx, probePath); err != nil {
			logger.Warn("STT connection test failed",
				"provider", h.transcriber.Name(), "error", err)
		} else {
			status.STT = true
		}
	}

	outPath := filepath.Join(os.TempDir(), "voice_probe_"+uuid.NewString()+".ogg")
	if err := h.synthesizer.Synthesize(ctx, probeText, outPath); err != nil {
		logger.Warn("TTS connection test failed",
			"provider", h.synthesizer.Name(), "error", err)
	} else {
		status.TTS = true
		defer os.Remove(outPath)
	}

	logger.Info("connection test complete", "stt", status.STT, "tts", status.TTS)
	return status
}

// DefaultBehavior returns a snapshot of the orchestration policy.
func (h *Handler) DefaultBehavior() Defaults {
	return h.defaults
}

// IncludeTranscriptionOnVoiceResponse reports whether voice replies should
// carry the transcript text.
func (h *Handler) IncludeTranscriptionOnVoiceResponse() bool {
	return h.defaults.IncludeTranscriptionOnVoiceResponse
}

// VoiceResponseToTextMessage reports whether plain text messages should be
// answered with voice.
func (h *Handler) VoiceResponseToTextMessage() bool {
	return h.defaults.VoiceResponseToTextMessage
}

// Cleanup removes leftover temporary voice files, scoped by an explicit glob
// pattern or the converter's default prefixes when pattern is empty.
// Best-effort; never fails.
func (h *Handler) Cleanup(dir, pattern string) int {
	if h.converter == nil {
		return 0
	}
	return h.converter.Cleanup(dir, pattern)
}

// TranscriberName returns the active STT provider name.
func (h *Handler) TranscriberName() string {
	return h.transcriber.Name()
}

// SynthesizerName returns the active TTS provider name.
func (h *Handler) SynthesizerName() string {
	return h.synthesizer.Name()
}
