package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/internal/confmap"
	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/logger"
)

// OpenAIConfig configures the OpenAI Whisper API provider.
type OpenAIConfig struct {
	// APIKey is the OpenAI API key. Required.
	APIKey string `yaml:"api_key"`

	// Model is the transcription model. Default: whisper-1.
	Model string `yaml:"model"`

	// BaseURL overrides the API endpoint (for proxies or testing).
	BaseURL string `yaml:"base_url"`

	// Language is an optional transcription language hint.
	Language string `yaml:"language"`
}

// OpenAIService implements STT using OpenAI's Whisper API.
type OpenAIService struct {
	client   *openai.Client
	model    string
	language string
}

func init() {
	Register("openai", func(cfg map[string]any) (Service, error) {
		return NewOpenAI(cfg)
	})
}

// NewOpenAI creates an OpenAI Whisper STT service.
func NewOpenAI(cfg map[string]any) (*OpenAIService, error) {
	config := OpenAIConfig{
		Model: openai.Whisper1,
	}
	if err := confmap.Decode(cfg, &config); err != nil {
		return nil, &InitError{Provider: "openai", Cause: err}
	}
	if config.APIKey == "" {
		return nil, &InitError{Provider: "openai", Cause: errors.New("missing api_key")}
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	logger.Debug("openai whisper configured", "model", config.Model, "api_key", logger.Redact(config.APIKey))

	return &OpenAIService{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    config.Model,
		language: config.Language,
	}, nil
}

// Name returns the provider identifier, matching the registry key.
func (s *OpenAIService) Name() string {
	return "openai"
}

// Transcribe uploads the audio file to the Whisper API. The verbose response
// format carries the detected language and audio duration.
func (s *OpenAIService) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
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
		return nil, classifyOpenAIError("openai", err)
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

// TranscribeStream is not supported by the OpenAI Whisper API.
func (s *OpenAIService) TranscribeStream(_ context.Context, _ io.Reader) (<-chan Result, error) {
	return nil, ErrStreamingNotSupported
}
