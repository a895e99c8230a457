package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/internal/confmap"
	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/logger"
)

const (
	// Default whisper.cpp CLI binary, resolved through PATH.
	defaultWhisperBinary = "whisper-cli"

	// Default model size when the config names none.
	defaultWhisperModel = "tiny"

	// Maximum runtime for a single transcription subprocess.
	defaultWhisperTimeout = 5 * time.Minute
)

// WhisperConfig configures the local whisper.cpp provider.
type WhisperConfig struct {
	// Model is the model size (tiny, base, small, medium, large-v3).
	// Ignored when ModelPath is set.
	Model string `yaml:"model"`

	// ModelPath is an explicit path to a ggml model file.
	ModelPath string `yaml:"model_path"`

	// ModelDir is the directory searched for ggml-<model>.bin files.
	// Default: <user cache dir>/whisper.cpp.
	ModelDir string `yaml:"model_dir"`

	// Binary is the whisper.cpp CLI binary name or path.
	Binary string `yaml:"binary"`

	// Language is the transcription language hint ("auto" detects).
	Language string `yaml:"language"`
}

// WhisperService implements STT by shelling out to the whisper.cpp CLI.
// The model runs fully locally; the binary and model file are resolved once
// at construction so misconfiguration fails immediately.
type WhisperService struct {
	binaryPath string
	modelPath  string
	language   string
	timeout    time.Duration
}

func init() {
	Register("whisper", func(cfg map[string]any) (Service, error) {
		return NewWhisper(cfg)
	})
}

// NewWhisper creates a whisper.cpp STT service from a provider config map.
func NewWhisper(cfg map[string]any) (*WhisperService, error) {
	config := WhisperConfig{
		Model:    defaultWhisperModel,
		Binary:   defaultWhisperBinary,
		Language: "auto",
	}
	if err := confmap.Decode(cfg, &config); err != nil {
		return nil, &InitError{Provider: "whisper", Cause: err}
	}

	binaryPath, err := exec.LookPath(config.Binary)
	if err != nil {
		return nil, &InitError{
			Provider: "whisper",
			Cause: fmt.Errorf("whisper.cpp binary %q not found in PATH (install whisper.cpp or set the binary config key): %w",
				config.Binary, err),
		}
	}

	modelPath, err := resolveWhisperModel(config)
	if err != nil {
		return nil, &InitError{Provider: "whisper", Cause: err}
	}

	return &WhisperService{
		binaryPath: binaryPath,
		modelPath:  modelPath,
		language:   config.Language,
		timeout:    defaultWhisperTimeout,
	}, nil
}

// resolveWhisperModel locates the ggml model file for the configured size.
func resolveWhisperModel(config WhisperConfig) (string, error) {
	if config.ModelPath != "" {
		if _, err := os.Stat(config.ModelPath); err != nil {
			return "", fmt.Errorf("whisper model file %q not found: %w", config.ModelPath, err)
		}
		return config.ModelPath, nil
	}

	modelDir := config.ModelDir
	if modelDir == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine model directory: %w", err)
		}
		modelDir = filepath.Join(cacheDir, "whisper.cpp")
	}

	modelPath := filepath.Join(modelDir, "ggml-"+config.Model+".bin")
	if _, err := os.Stat(modelPath); err != nil {
		return "", fmt.Errorf("whisper model %q not found at %s (download it with whisper.cpp's download-ggml-model script): %w",
			config.Model, modelPath, err)
	}
	return modelPath, nil
}

// Name returns the provider identifier.
func (s *WhisperService) Name() string {
	return "whisper"
}

// whisperOutput mirrors the JSON document written by whisper.cpp's -oj flag.
type whisperOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Text    string `json:"text"`
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
	} `json:"transcription"`
}

// Transcribe runs the whisper.cpp CLI on the audio file and parses its JSON
// output. The subprocess runtime is bounded by an internal timeout.
func (s *WhisperService) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, fmt.Errorf("audio file not readable: %w", err)
	}

	outDir, err := os.MkdirTemp("", "whisper-out-")
	if err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	defer func() {
		if removeErr := os.RemoveAll(outDir); removeErr != nil {
			logger.Warn("failed to remove whisper output directory", "path", outDir, "error", removeErr)
		}
	}()

	outBase := filepath.Join(outDir, "transcript")
	args := s.buildArgs(audioPath, outBase)

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, s.binaryPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug("running whisper.cpp", "args", args)

	if runErr := cmd.Run(); runErr != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, NewTranscriptionError("whisper", "timeout", "transcription timed out", runCtx.Err(), false)
		}
		return nil, NewTranscriptionError("whisper", "",
			strings.TrimSpace(stderr.String()), runErr, false)
	}

	raw, err := os.ReadFile(outBase + ".json")
	if err != nil {
		return nil, NewTranscriptionError("whisper", "", "no transcription output produced", err, false)
	}

	return parseWhisperOutput(raw)
}

// buildArgs constructs the whisper.cpp CLI arguments.
func (s *WhisperService) buildArgs(audioPath, outBase string) []string {
	args := []string{
		"-m", s.modelPath,
		"-f", audioPath,
		"-oj",
		"-of", outBase,
	}
	if s.language != "" {
		args = append(args, "-l", s.language)
	}
	return args
}

// parseWhisperOutput converts whisper.cpp JSON output to a Result.
func parseWhisperOutput(raw []byte) (*Result, error) {
	var out whisperOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, NewTranscriptionError("whisper", "", "failed to parse transcription output", err, false)
	}

	var text strings.Builder
	var endMillis int64
	for _, segment := range out.Transcription {
		text.WriteString(segment.Text)
		if segment.Offsets.To > endMillis {
			endMillis = segment.Offsets.To
		}
	}

	language := out.Result.Language
	if language == "" {
		language = "en"
	}

	return &Result{
		Text:                strings.TrimSpace(text.String()),
		Language:            language,
		LanguageProbability: 1.0,
		Duration:            float64(endMillis) / 1000.0,
	}, nil
}

// TranscribeStream is not implemented for whisper.cpp.
func (s *WhisperService) TranscribeStream(_ context.Context, _ io.Reader) (<-chan Result, error) {
	return nil, ErrStreamingNotSupported
}
