package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/internal/confmap"
	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/logger"
)

const (
	// Default endpoint of the bundled faster-whisper server.
	defaultFasterWhisperURL = "http://localhost:8000/v1"

	// Default model size.
	defaultFasterWhisperModel = "base"

	// Timeout for the construction-time reachability probe.
	fasterWhisperProbeTimeout = 5 * time.Second
)

// FasterWhisperConfig configures the faster-whisper provider. The model runs
// inside the local faster-whisper server process; this adapter talks to its
// OpenAI-compatible HTTP surface.
type FasterWhisperConfig struct {
	// BaseURL is the faster-whisper server endpoint.
	BaseURL string `yaml:"base_url"`

	// Model is the model size (tiny, base, small, medium, large-v3).
	Model string `yaml:"model"`

	// Device selects the inference device (cpu, cuda). Forwarded to the
	// server deployment; recorded here for config parity and logging.
	Device string `yaml:"device"`

	// ComputeType selects the quantization (int8, float16, float32).
	ComputeType string `yaml:"compute_type"`

	// Language is an optional transcription language hint.
	Language string `yaml:"language"`

	// APIKey is an optional bearer token, for servers behind a proxy.
	APIKey string `yaml:"api_key"`
}

// FasterWhisperService implements STT against a local faster-whisper server.
type FasterWhisperService struct {
	client   *openai.Client
	baseURL  string
	model    string
	language string
}

func init() {
	Register("faster-whisper", func(cfg map[string]any) (Service, error) {
		return NewFasterWhisper(cfg)
	})
}

// NewFasterWhisper creates a faster-whisper STT service. Construction probes
// the server so a missing dependency fails loudly instead of on first use.
func NewFasterWhisper(cfg map[string]any) (*FasterWhisperService, error) {
	config := FasterWhisperConfig{
		BaseURL:     defaultFasterWhisperURL,
		Model:       defaultFasterWhisperModel,
		Device:      "cpu",
		ComputeType: "int8",
	}
	if err := confmap.Decode(cfg, &config); err != nil {
		return nil, &InitError{Provider: "faster-whisper", Cause: err}
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = config.BaseURL
	client := openai.NewClientWithConfig(clientConfig)

	svc := &FasterWhisperService{
		client:   client,
		baseURL:  config.BaseURL,
		model:    config.Model,
		language: config.Language,
	}

	probeCtx, cancel := context.WithTimeout(context.Background(), fasterWhisperProbeTimeout)
	defer cancel()
	if _, err := client.ListModels(probeCtx); err != nil {
		return nil, &InitError{
			Provider: "faster-whisper",
			Cause: fmt.Errorf("faster-whisper server not reachable at %s (install faster-whisper-server and start it): %w",
				config.BaseURL, err),
		}
	}

	logger.Debug("faster-whisper ready",
		"base_url", config.BaseURL,
		"model", config.Model,
		"device", config.Device,
		"compute_type", config.ComputeType,
	)
	return svc, nil
}

// Name returns the provider identifier.
func (s *FasterWhisperService) Name() string {
	return "faster-whisper"
}

// Transcribe uploads the audio file to the local server and returns the
// verbose transcription result.
func (s *FasterWhisperService) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, fmt.Errorf("audio file not readable: %w", err)
	}

	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: s.language,
	})
	if err != nil {
		return nil, classifyOpenAIError("faster-whisper", err)
	}

	language := resp.Language
	if language == "" {
		language = "en"
	}

	return &Result{
		Text:                resp.Text,
		Language:            language,
		LanguageProbability: 1.0,
		Duration:            resp.Duration,
	}, nil
}

// TranscribeStream is not implemented for faster-whisper.
func (s *FasterWhisperService) TranscribeStream(_ context.Context, _ io.Reader) (<-chan Result, error) {
	return nil, ErrStreamingNotSupported
}

// classifyOpenAIError translates go-openai client failures into the STT error
// taxonomy: API-level failures become TranscriptionError, transport failures
// mean the backend is unreachable.
func classifyOpenAIError(provider string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := fmt.Sprintf("%v", apiErr.Code)
		if apiErr.Code == nil {
			code = fmt.Sprintf("%d", apiErr.HTTPStatusCode)
		}
		retryable := apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
		var cause error
		if apiErr.HTTPStatusCode == 429 {
			cause = ErrRateLimited
		}
		return NewTranscriptionError(provider, code, apiErr.Message, cause, retryable)
	}
	return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
}
