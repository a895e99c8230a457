package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/internal/confmap"
	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/logger"
)

const (
	defaultElevenLabsURL = "https://api.elevenlabs.io/v1"

	// ElevenLabsModelMultilingual is the multilingual v2 model.
	ElevenLabsModelMultilingual = "eleven_multilingual_v2"
	// ElevenLabsModelTurbo is the fast turbo v2.5 model.
	ElevenLabsModelTurbo = "eleven_turbo_v2_5"

	// Default voice ID (Rachel).
	elevenLabsDefaultVoice = "21m00Tcm4TlvDq8ikWAM"

	// Default timeout for ElevenLabs requests.
	defaultElevenLabsTimeout = 60 * time.Second

	// Default voice settings.
	elevenLabsDefaultStability       = 0.5
	elevenLabsDefaultSimilarityBoost = 0.75

	// Output format query values.
	elevenLabsFormatMP3 = "mp3_44100_128"
	elevenLabsFormatPCM = "pcm_24000"

	// File permissions for written audio.
	elevenLabsFilePermissions = 0600
)

// ElevenLabsConfig configures the ElevenLabs provider.
type ElevenLabsConfig struct {
	// APIKey is the ElevenLabs API key. Required.
	APIKey string `yaml:"api_key"`

	// VoiceID is the default voice identifier.
	VoiceID string `yaml:"voice_id"`

	// Model is the synthesis model.
	Model string `yaml:"model"`

	// BaseURL overrides the API endpoint (for testing).
	BaseURL string `yaml:"base_url"`
}

// ElevenLabsService implements TTS using ElevenLabs' API.
// ElevenLabs specializes in high-quality voice cloning and natural-sounding
// speech.
type ElevenLabsService struct {
	apiKey  string
	baseURL string
	voiceID string
	model   string
	client  *http.Client
}

func init() {
	Register("elevenlabs", func(cfg map[string]any) (Service, error) {
		return NewElevenLabs(cfg)
	})
}

// NewElevenLabs creates an ElevenLabs TTS service.
func NewElevenLabs(cfg map[string]any) (*ElevenLabsService, error) {
	config := ElevenLabsConfig{
		VoiceID: elevenLabsDefaultVoice,
		Model:   ElevenLabsModelMultilingual,
		BaseURL: defaultElevenLabsURL,
	}
	if err := confmap.Decode(cfg, &config); err != nil {
		return nil, &InitError{Provider: "elevenlabs", Cause: err}
	}
	if config.APIKey == "" {
		return nil, &InitError{Provider: "elevenlabs", Cause: errors.New("missing api_key")}
	}

	logger.Debug("elevenlabs configured",
		"voice_id", config.VoiceID,
		"model", config.Model,
		"api_key", logger.Redact(config.APIKey),
	)

	return &ElevenLabsService{
		apiKey:  config.APIKey,
		baseURL: config.BaseURL,
		voiceID: config.VoiceID,
		model:   config.Model,
		client:  &http.Client{Timeout: defaultElevenLabsTimeout},
	}, nil
}

// Name returns the provider identifier.
func (s *ElevenLabsService) Name() string {
	return "elevenlabs"
}

// elevenLabsRequest is the request body for the text-to-speech endpoint.
type elevenLabsRequest struct {
	Text          string                   `json:"text"`
	ModelID       string                   `json:"model_id,omitempty"`
	VoiceSettings *elevenLabsVoiceSettings `json:"voice_settings,omitempty"`
}

// elevenLabsVoiceSettings configures voice parameters.
type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize converts text to audio and writes the result to outputPath.
func (s *ElevenLabsService) Synthesize(ctx context.Context, text, outputPath string, opts ...Option) error {
	if text == "" {
		return ErrEmptyText
	}
	req := applyOptions(opts)

	voice := req.Voice
	if voice == "" {
		voice = s.voiceID
	}
	model := req.Model
	if model == "" {
		model = s.model
	}

	payload, err := json.Marshal(elevenLabsRequest{
		Text:    text,
		ModelID: model,
		VoiceSettings: &elevenLabsVoiceSettings{
			Stability:       elevenLabsDefaultStability,
			SimilarityBoost: elevenLabsDefaultSimilarityBoost,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/text-to-speech/%s?output_format=%s",
		s.baseURL, voice, mapElevenLabsFormat(req.Format))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return s.handleError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewSynthesisError("elevenlabs", "", "failed to read audio response", err, true)
	}

	if err := os.WriteFile(outputPath, audio, elevenLabsFilePermissions); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	return nil
}

// SynthesizeStream is not implemented for ElevenLabs.
func (s *ElevenLabsService) SynthesizeStream(_ context.Context, _ string, _ ...Option) (<-chan Chunk, error) {
	return nil, fmt.Errorf("elevenlabs: %w", ErrStreamingNotSupported)
}

// mapElevenLabsFormat converts a generic format name to the output_format
// query value.
func mapElevenLabsFormat(format string) string {
	switch format {
	case FormatPCM:
		return elevenLabsFormatPCM
	default:
		return elevenLabsFormatMP3
	}
}

// elevenLabsErrorResponse is the error payload shape.
type elevenLabsErrorResponse struct {
	Detail struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"detail"`
}

// handleError converts a non-200 response into a SynthesisError.
func (s *ElevenLabsService) handleError(resp *http.Response) error {
	var errResp elevenLabsErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return NewSynthesisError("elevenlabs",
			fmt.Sprintf("%d", resp.StatusCode),
			"unknown error",
			err,
			resp.StatusCode >= http.StatusInternalServerError,
		)
	}

	retryable := resp.StatusCode == http.StatusTooManyRequests ||
		resp.StatusCode >= http.StatusInternalServerError

	var cause error
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		cause = ErrRateLimited
	case http.StatusUnauthorized:
		cause = errors.New("invalid API key")
	case http.StatusNotFound:
		cause = ErrInvalidVoice
	}

	return NewSynthesisError("elevenlabs",
		errResp.Detail.Status,
		errResp.Detail.Message,
		cause,
		retryable,
	)
}

// elevenLabsVoicesResponse is the voice-list payload shape.
type elevenLabsVoicesResponse struct {
	Voices []struct {
		VoiceID string `json:"voice_id"`
		Name    string `json:"name"`
	} `json:"voices"`
}

// Voices queries the ElevenLabs voice-list endpoint and returns voice IDs,
// including any custom cloned voices on the account.
func (s *ElevenLabsService) Voices(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, s.handleError(resp)
	}

	var payload elevenLabsVoicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewSynthesisError("elevenlabs", "", "failed to parse voice list", err, false)
	}

	ids := make([]string, 0, len(payload.Voices))
	for _, v := range payload.Voices {
		ids = append(ids, v.VoiceID)
	}
	return ids, nil
}
