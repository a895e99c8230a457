// Package media converts audio between the formats that speech backends and
// chat platforms expect, using ffmpeg.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Omni-NexusAI/openclaw-voice-messaging-skill/logger"
)

// FFmpeg error types.
var (
	ErrFFmpegNotFound = errors.New("ffmpeg not found in PATH")
	ErrFFmpegTimeout  = errors.New("ffmpeg execution timed out")
)

// Default configuration values.
const (
	DefaultFFmpegPath         = "ffmpeg"
	DefaultFFmpegTimeout      = 300 // seconds
	DefaultFFmpegCheckTimeout = 5   // seconds for availability check

	// Transcription target: what speech models consume best.
	transcriptionSampleRate = 16000
	transcriptionChannels   = 1

	// Platform delivery targets.
	telegramCodec   = "libopus"
	telegramBitRate = "64k"
	discordCodec    = "libmp3lame"
	discordBitRate  = "128k"
)

// Platform identifiers for ConvertForPlatform.
const (
	PlatformTelegram = "telegram"
	PlatformDiscord  = "discord"
)

// tempFilePrefixes are the name prefixes Cleanup sweeps from a directory.
var tempFilePrefixes = []string{"voice_", "converted_", "response_"}

// ConversionError represents an ffmpeg invocation that ran but failed.
type ConversionError struct {
	// Input is the source file path.
	Input string

	// Stderr is the captured ffmpeg diagnostic output.
	Stderr string

	// Cause is the underlying process error.
	Cause error
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("audio conversion failed for %s: %v: %s", e.Input, e.Cause, e.Stderr)
	}
	return fmt.Sprintf("audio conversion failed for %s: %v", e.Input, e.Cause)
}

// Unwrap returns the underlying error.
func (e *ConversionError) Unwrap() error {
	return e.Cause
}

// ConverterConfig configures audio conversion behavior.
type ConverterConfig struct {
	// FFmpegPath is the path to the ffmpeg binary. Default: "ffmpeg" (PATH).
	FFmpegPath string

	// FFmpegTimeout is the maximum time for an ffmpeg run, in seconds.
	FFmpegTimeout int

	// TempDir is where converted files are written. Default: os.TempDir().
	TempDir string
}

// DefaultConverterConfig returns sensible defaults.
func DefaultConverterConfig() ConverterConfig {
	return ConverterConfig{
		FFmpegPath:    DefaultFFmpegPath,
		FFmpegTimeout: DefaultFFmpegTimeout,
		TempDir:       os.TempDir(),
	}
}

// Converter shapes audio for the two directions of a voice pipeline: inbound
// platform audio into transcription-friendly WAV, and synthesized audio into
// the format each chat platform plays natively.
type Converter struct {
	config    ConverterConfig
	available bool
}

// NewConverter creates a converter and probes ffmpeg availability once. A
// missing ffmpeg does not fail construction; ingress conversion will error
// and egress conversion degrades to pass-through.
func NewConverter(config ConverterConfig) *Converter {
	if config.FFmpegPath == "" {
		config.FFmpegPath = DefaultFFmpegPath
	}
	if config.FFmpegTimeout <= 0 {
		config.FFmpegTimeout = DefaultFFmpegTimeout
	}
	if config.TempDir == "" {
		config.TempDir = os.TempDir()
	}

	available := CheckFFmpeg(config.FFmpegPath) == nil
	if !available {
		logger.Warn("ffmpeg not available, audio conversion disabled",
			"path", config.FFmpegPath)
	}

	return &Converter{config: config, available: available}
}

// Available reports the result of the construction-time ffmpeg probe.
func (c *Converter) Available() bool {
	return c.available
}

// ConvertForTranscription converts any inbound audio file to 16kHz mono
// 16-bit WAV, the format speech recognition consumes. Transcription quality
// depends on this conversion, so a missing ffmpeg is an error here rather
// than a pass-through.
func (c *Converter) ConvertForTranscription(ctx context.Context, inputPath string) (string, error) {
	if !c.available {
		return "", ErrFFmpegNotFound
	}
	if _, err := os.Stat(inputPath); err != nil {
		return "", fmt.Errorf("input audio not accessible: %w", err)
	}

	outputPath := filepath.Join(c.config.TempDir, "converted_"+uuid.NewString()+".wav")

	args := []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-ar", fmt.Sprintf("%d", transcriptionSampleRate),
		"-ac", fmt.Sprintf("%d", transcriptionChannels),
		"-acodec", "pcm_s16le",
		outputPath,
	}

	if err := c.runFFmpeg(ctx, inputPath, args); err != nil {
		return "", err
	}

	logger.Debug("converted audio for transcription",
		"input", inputPath, "output", outputPath)
	return outputPath, nil
}

// ConvertForPlatform converts synthesized audio into the voice-message format
// the named platform plays natively: Opus-in-OGG for Telegram, MP3 for
// Discord and everything else. Degrades gracefully when ffmpeg is missing by
// returning the input unchanged; most platforms accept common formats as
// plain file attachments.
func (c *Converter) ConvertForPlatform(ctx context.Context, inputPath, platform string) (string, error) {
	if !c.available {
		logger.Warn("ffmpeg unavailable, sending audio unconverted",
			"input", inputPath, "platform", platform)
		return inputPath, nil
	}
	if _, err := os.Stat(inputPath); err != nil {
		return "", fmt.Errorf("input audio not accessible: %w", err)
	}

	var codec, bitRate, ext string
	switch strings.ToLower(platform) {
	case PlatformTelegram:
		codec, bitRate, ext = telegramCodec, telegramBitRate, "ogg"
	default:
		codec, bitRate, ext = discordCodec, discordBitRate, "mp3"
	}

	outputPath := filepath.Join(c.config.TempDir, "response_"+uuid.NewString()+"."+ext)

	args := []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-acodec", codec,
		"-b:a", bitRate,
		outputPath,
	}

	if err := c.runFFmpeg(ctx, inputPath, args); err != nil {
		return "", err
	}

	logger.Debug("converted audio for platform",
		"input", inputPath, "output", outputPath, "platform", platform)
	return outputPath, nil
}

// runFFmpeg executes ffmpeg with timeout and stderr capture.
func (c *Converter) runFFmpeg(ctx context.Context, inputPath string, args []string) error {
	timeout := time.Duration(c.config.FFmpegTimeout) * time.Second
	ffmpegCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ffmpegCtx, c.config.FFmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug("running ffmpeg", "args", args)

	if err := cmd.Run(); err != nil {
		if ffmpegCtx.Err() == context.DeadlineExceeded {
			return ErrFFmpegTimeout
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return ErrFFmpegNotFound
		}
		return &ConversionError{
			Input:  inputPath,
			Stderr: strings.TrimSpace(stderr.String()),
			Cause:  err,
		}
	}
	return nil
}

// Cleanup removes leftover temporary voice files from dir. An explicit glob
// pattern scopes the sweep to matching names; when empty, files carrying the
// pipeline's known prefixes are removed. Removal failures are logged and
// skipped. Returns the number of files removed.
func (c *Converter) Cleanup(dir, pattern string) int {
	if dir == "" {
		dir = c.config.TempDir
	}

	patterns := make([]string, 0, len(tempFilePrefixes))
	if pattern != "" {
		patterns = append(patterns, pattern)
	} else {
		for _, prefix := range tempFilePrefixes {
			patterns = append(patterns, prefix+"*")
		}
	}

	removed := 0
	for _, p := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, p))
		if err != nil {
			logger.Warn("invalid cleanup pattern", "pattern", p, "error", err)
			continue
		}
		for _, path := range matches {
			if err := os.Remove(path); err != nil {
				logger.Warn("failed to remove temp file", "path", path, "error", err)
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		logger.Debug("cleaned up temp audio files", "dir", dir, "count", removed)
	}
	return removed
}

// CheckFFmpeg checks whether the ffmpeg binary runs.
func CheckFFmpeg(ffmpegPath string) error {
	if ffmpegPath == "" {
		ffmpegPath = DefaultFFmpegPath
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultFFmpegCheckTimeout*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffmpegPath, "-version")
	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return ErrFFmpegNotFound
		}
		return fmt.Errorf("ffmpeg check failed: %w", err)
	}
	return nil
}
