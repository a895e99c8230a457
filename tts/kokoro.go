package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/internal/confmap"
	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/logger"
)

const (
	// Default endpoint of the local Kokoro FastAPI server.
	defaultKokoroURL = "http://localhost:8880/v1"

	// Default Kokoro voice.
	defaultKokoroVoice = "af_bella"

	// Default output format.
	defaultKokoroFormat = FormatOGG

	// Kokoro model identifier sent on every request.
	kokoroModel = "kokoro"

	// Default timeout for synthesis requests.
	defaultKokoroTimeout = 60 * time.Second

	// Chunk size for streaming synthesis.
	kokoroStreamChunkSize = 4096

	// File permissions for written audio.
	kokoroFilePermissions = 0600

	kokoroSpeechEndpoint = "/audio/speech"
	kokoroVoicesEndpoint = "/audio/voices"
)

// KokoroConfig configures the Kokoro-82M provider.
type KokoroConfig struct {
	// BaseURL is the Kokoro FastAPI server endpoint.
	BaseURL string `yaml:"base_url"`

	// Voice is the default voice.
	Voice string `yaml:"voice"`

	// Format is the default output audio format (ogg, mp3, wav, flac, pcm).
	Format string `yaml:"format"`
}

// KokoroService implements TTS against a local Kokoro-82M server exposing an
// OpenAI-compatible speech endpoint plus a voice-list endpoint.
type KokoroService struct {
	baseURL string
	voice   string
	format  string
	client  *http.Client
}

func init() {
	Register("kokoro", func(cfg map[string]any) (Service, error) {
		return NewKokoro(cfg)
	})
}

// NewKokoro creates a Kokoro TTS service. The server is not probed at
// construction; an unreachable backend surfaces as ErrServiceUnavailable on
// the first call.
func NewKokoro(cfg map[string]any) (*KokoroService, error) {
	config := KokoroConfig{
		BaseURL: defaultKokoroURL,
		Voice:   defaultKokoroVoice,
		Format:  defaultKokoroFormat,
	}
	if err := confmap.Decode(cfg, &config); err != nil {
		return nil, &InitError{Provider: "kokoro", Cause: err}
	}

	return &KokoroService{
		baseURL: config.BaseURL,
		voice:   config.Voice,
		format:  config.Format,
		client:  &http.Client{Timeout: defaultKokoroTimeout},
	}, nil
}

// Name returns the provider identifier.
func (s *KokoroService) Name() string {
	return "kokoro"
}

// kokoroRequest is the request body for the Kokoro speech endpoint.
type kokoroRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize converts text to audio and writes the result to outputPath.
func (s *KokoroService) Synthesize(ctx context.Context, text, outputPath string, opts ...Option) error {
	if text == "" {
		return ErrEmptyText
	}
	req := applyOptions(opts)

	voice := req.Voice
	if voice == "" {
		voice = s.voice
	}
	format := req.Format
	if format == "" {
		format = s.format
	}

	body, err := s.speak(ctx, kokoroRequest{
		Model:          kokoroModel,
		Input:          text,
		Voice:          voice,
		ResponseFormat: format,
	})
	if err != nil {
		return err
	}
	defer body.Close()

	audio, err := io.ReadAll(body)
	if err != nil {
		return NewSynthesisError("kokoro", "", "failed to read audio response", err, true)
	}

	if err := os.WriteFile(outputPath, audio, kokoroFilePermissions); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	return nil
}

// SynthesizeStream streams PCM audio chunks as the server generates them.
func (s *KokoroService) SynthesizeStream(ctx context.Context, text string, opts ...Option) (<-chan Chunk, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	req := applyOptions(opts)

	voice := req.Voice
	if voice == "" {
		voice = s.voice
	}

	// PCM keeps chunk boundaries meaningful during incremental playback.
	body, err := s.speak(ctx, kokoroRequest{
		Model:          kokoroModel,
		Input:          text,
		Voice:          voice,
		ResponseFormat: FormatPCM,
	})
	if err != nil {
		return nil, err
	}

	chunks := make(chan Chunk)
	go func() {
		defer close(chunks)
		defer body.Close()

		index := 0
		buf := make([]byte, kokoroStreamChunkSize)
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
			if readErr == io.EOF {
				select {
				case chunks <- Chunk{Index: index, Final: true}:
				case <-ctx.Done():
				}
				return
			}
			if readErr != nil {
				select {
				case chunks <- Chunk{Index: index, Final: true, Err: readErr}:
				case <-ctx.Done():
				}
				return
			}
		}
	}()
	return chunks, nil
}

// SupportsStreaming reports that Kokoro delivers real incremental chunks.
func (s *KokoroService) SupportsStreaming() bool {
	return true
}

// speak posts a synthesis request and returns the raw audio body.
func (s *KokoroService) speak(ctx context.Context, reqBody kokoroRequest) (io.ReadCloser, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+kokoroSpeechEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		detail, _ := io.ReadAll(resp.Body)
		return nil, NewSynthesisError("kokoro",
			fmt.Sprintf("%d", resp.StatusCode),
			string(bytes.TrimSpace(detail)),
			nil,
			resp.StatusCode >= http.StatusInternalServerError,
		)
	}
	return resp.Body, nil
}

// kokoroVoicesResponse is the voice-list endpoint payload.
type kokoroVoicesResponse struct {
	Voices []string `json:"voices"`
}

// Voices queries the server's voice-list endpoint.
func (s *KokoroService) Voices(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+kokoroVoicesEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewSynthesisError("kokoro",
			fmt.Sprintf("%d", resp.StatusCode),
			"voice listing failed",
			nil,
			resp.StatusCode >= http.StatusInternalServerError,
		)
	}

	var payload kokoroVoicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewSynthesisError("kokoro", "", "failed to parse voice list", err, false)
	}

	logger.Debug("kokoro voices listed", "count", len(payload.Voices))
	return payload.Voices, nil
}
