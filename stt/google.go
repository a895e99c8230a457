package stt

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/internal/confmap"
	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/logger"
)

// GoogleConfig configures the Google Cloud Speech-to-Text provider.
type GoogleConfig struct {
	// APIKey authenticates with an API key. When empty, Application Default
	// Credentials are used.
	APIKey string `yaml:"api_key"`

	// CredentialsFile points at a service-account JSON file. Takes precedence
	// over APIKey when set.
	CredentialsFile string `yaml:"credentials_file"`

	// Language is the recognition language code. Default: en-US.
	Language string `yaml:"language"`
}

// GoogleService implements STT using Google Cloud Speech-to-Text.
type GoogleService struct {
	client   *speech.Client
	language string
}

func init() {
	Register("google", func(cfg map[string]any) (Service, error) {
		return NewGoogle(context.Background(), cfg)
	})
}

// NewGoogle creates a Google Cloud STT service. Credential problems surface
// at construction when the underlying gRPC client is created.
func NewGoogle(ctx context.Context, cfg map[string]any) (*GoogleService, error) {
	config := GoogleConfig{
		Language: "en-US",
	}
	if err := confmap.Decode(cfg, &config); err != nil {
		return nil, &InitError{Provider: "google", Cause: err}
	}

	var opts []option.ClientOption
	switch {
	case config.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(config.CredentialsFile))
	case config.APIKey != "":
		opts = append(opts, option.WithAPIKey(config.APIKey))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, &InitError{
			Provider: "google",
			Cause:    fmt.Errorf("failed to create speech client: %w", err),
		}
	}

	return &GoogleService{client: client, language: config.Language}, nil
}

// Name returns the provider identifier.
func (s *GoogleService) Name() string {
	return "google"
}

// Transcribe sends the audio file content through the synchronous Recognize
// API. Input is expected as 16 kHz mono linear PCM (the converter's ingress
// format).
func (s *GoogleService) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	content, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("audio file not readable: %w", err)
	}
	if len(content) == 0 {
		return nil, ErrEmptyAudio
	}

	resp, err := s.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            DefaultSampleRate,
			LanguageCode:               s.language,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: content},
		},
	})
	if err != nil {
		return nil, classifyGoogleError(err)
	}

	var transcripts []string
	confidence := 1.0
	var duration float64
	for i, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		alt := result.Alternatives[0]
		transcripts = append(transcripts, alt.Transcript)
		if i == 0 && alt.Confidence > 0 {
			confidence = float64(alt.Confidence)
		}
		if end := result.ResultEndTime; end != nil {
			duration = end.AsDuration().Seconds()
		}
	}

	return &Result{
		Text:                strings.Join(transcripts, " "),
		Language:            s.language,
		LanguageProbability: confidence,
		Duration:            duration,
	}, nil
}

// TranscribeStream is not implemented; the synchronous contract covers the
// voice-message flow. Google's streaming API can back this method later.
func (s *GoogleService) TranscribeStream(_ context.Context, _ io.Reader) (<-chan Result, error) {
	return nil, ErrStreamingNotSupported
}

// Close releases the underlying gRPC connection.
func (s *GoogleService) Close() error {
	return s.client.Close()
}

// classifyGoogleError translates gRPC failures into the STT error taxonomy.
func classifyGoogleError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return NewTranscriptionError("google", "", err.Error(), err, false)
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	case codes.ResourceExhausted:
		return NewTranscriptionError("google", st.Code().String(), st.Message(), ErrRateLimited, true)
	default:
		logger.Debug("google recognize failed", "code", st.Code().String())
		return NewTranscriptionError("google", st.Code().String(), st.Message(), err, false)
	}
}
