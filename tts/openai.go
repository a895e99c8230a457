package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/internal/confmap"
	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/logger"
)

const (
	// Default OpenAI TTS voice.
	defaultOpenAIVoice = "alloy"

	// Default output format.
	defaultOpenAIFormat = FormatMP3

	// Chunk size for streaming synthesis.
	openAIStreamChunkSize = 4096

	// File permissions for written audio.
	openAIFilePermissions = 0600
)

// openAIVoices is the static OpenAI voice table; the API has no list endpoint.
var openAIVoices = []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"}

// OpenAIConfig configures the OpenAI TTS provider.
type OpenAIConfig struct {
	// APIKey is the OpenAI API key. Required.
	APIKey string `yaml:"api_key"`

	// Model is the TTS model: tts-1 (fast) or tts-1-hd (quality).
	Model string `yaml:"model"`

	// Voice is the default voice.
	Voice string `yaml:"voice"`

	// Format is the default output format (mp3, opus, aac, flac, wav, pcm).
	Format string `yaml:"format"`

	// BaseURL overrides the API endpoint (for proxies or testing).
	BaseURL string `yaml:"base_url"`
}

// OpenAIService implements TTS using OpenAI's speech API.
type OpenAIService struct {
	client *openai.Client
	model  string
	voice  string
	format string
}

func init() {
	Register("openai", func(cfg map[string]any) (Service, error) {
		return NewOpenAI(cfg)
	})
}

// NewOpenAI creates an OpenAI TTS service.
func NewOpenAI(cfg map[string]any) (*OpenAIService, error) {
	config := OpenAIConfig{
		Model:  string(openai.TTSModel1),
		Voice:  defaultOpenAIVoice,
		Format: defaultOpenAIFormat,
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

	logger.Debug("openai tts configured",
		"model", config.Model,
		"voice", config.Voice,
		"api_key", logger.Redact(config.APIKey),
	)

	return &OpenAIService{
		client: openai.NewClientWithConfig(clientConfig),
		model:  config.Model,
		voice:  config.Voice,
		format: config.Format,
	}, nil
}

// Name returns the provider identifier.
func (s *OpenAIService) Name() string {
	return "openai"
}

// speak issues the speech request with per-call overrides folded in.
func (s *OpenAIService) speak(ctx context.Context, text string, req SynthesisRequest) (io.ReadCloser, error) {
	voice := req.Voice
	if voice == "" {
		voice = s.voice
	}
	format := req.Format
	if format == "" {
		format = s.format
	}
	model := req.Model
	if model == "" {
		model = s.model
	}

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(model),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormat(format),
	})
	if err != nil {
		return nil, classifySpeechError("openai", err)
	}
	return resp, nil
}

// Synthesize converts text to audio and writes the result to outputPath.
func (s *OpenAIService) Synthesize(ctx context.Context, text, outputPath string, opts ...Option) error {
	if text == "" {
		return ErrEmptyText
	}

	body, err := s.speak(ctx, text, applyOptions(opts))
	if err != nil {
		return err
	}
	defer body.Close()

	audio, err := io.ReadAll(body)
	if err != nil {
		return NewSynthesisError("openai", "", "failed to read audio response", err, true)
	}

	if err := os.WriteFile(outputPath, audio, openAIFilePermissions); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	return nil
}

// SynthesizeStream reads the speech response incrementally.
func (s *OpenAIService) SynthesizeStream(ctx context.Context, text string, opts ...Option) (<-chan Chunk, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	body, err := s.speak(ctx, text, applyOptions(opts))
	if err != nil {
		return nil, err
	}

	chunks := make(chan Chunk)
	go func() {
		defer close(chunks)
		defer body.Close()

		index := 0
		buf := make([]byte, openAIStreamChunkSize)
		for {
			n, readErr := body.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				select {
				case chunks <- Chunk{Data: data, Index: index}:
					index++
				case <-ctx.Done():
					return
				}
			}
			if readErr != nil {
				final := Chunk{Index: index, Final: true}
				if readErr != io.EOF {
					final.Err = readErr
				}
				select {
				case chunks <- final:
				case <-ctx.Done():
				}
				return
			}
		}
	}()
	return chunks, nil
}

// SupportsStreaming reports that the OpenAI adapter streams the response body.
func (s *OpenAIService) SupportsStreaming() bool {
	return true
}

// Voices returns the static OpenAI voice table.
func (s *OpenAIService) Voices(_ context.Context) ([]string, error) {
	voices := make([]string, len(openAIVoices))
	copy(voices, openAIVoices)
	return voices, nil
}

// classifySpeechError translates go-openai client failures into the TTS error
// taxonomy.
func classifySpeechError(provider string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := fmt.Sprintf("%v", apiErr.Code)
		if apiErr.Code == nil {
			code = fmt.Sprintf("%d", apiErr.HTTPStatusCode)
		}
		retryable := apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
			apiErr.HTTPStatusCode >= http.StatusInternalServerError
		var cause error
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			cause = ErrRateLimited
		case http.StatusPaymentRequired:
			cause = ErrQuotaExceeded
		}
		return NewSynthesisError(provider, code, apiErr.Message, cause, retryable)
	}
	return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
}
