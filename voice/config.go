// Package voice wires a speech-to-text provider, a text-to-speech provider,
// and an audio converter into the single surface a hosting agent calls.
package voice

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults is the orchestration policy for the hosting agent. It governs how
// transcripts and replies are presented, not the pipeline itself. Read-only
// after construction.
type Defaults struct {
	// IncludeTranscriptionOnVoiceResponse includes the transcript text
	// alongside a synthesized voice reply. Default true.
	IncludeTranscriptionOnVoiceResponse bool

	// VoiceResponseToTextMessage answers plain text messages with voice.
	// Default false.
	VoiceResponseToTextMessage bool
}

// DefaultPolicy returns the policy used when the defaults section is absent.
func DefaultPolicy() Defaults {
	return Defaults{
		IncludeTranscriptionOnVoiceResponse: true,
		VoiceResponseToTextMessage:          false,
	}
}

// UnmarshalYAML decodes the defaults section, keeping the documented default
// for any key the document omits.
func (d *Defaults) UnmarshalYAML(value *yaml.Node) error {
	raw := struct {
		IncludeTranscriptionOnVoiceResponse *bool `yaml:"include_transcription_on_voice_response"`
		VoiceResponseToTextMessage          *bool `yaml:"voice_response_to_text_message"`
	}{}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	*d = DefaultPolicy()
	if raw.IncludeTranscriptionOnVoiceResponse != nil {
		d.IncludeTranscriptionOnVoiceResponse = *raw.IncludeTranscriptionOnVoiceResponse
	}
	if raw.VoiceResponseToTextMessage != nil {
		d.VoiceResponseToTextMessage = *raw.VoiceResponseToTextMessage
	}
	return nil
}

// Config is the declarative provider configuration. Each provider section
// carries a "provider" key selecting the registry name; the remaining keys
// are forwarded verbatim to the adapter constructor.
type Config struct {
	// STT configures the speech-to-text provider.
	STT map[string]any `yaml:"stt"`

	// TTS configures the text-to-speech provider.
	TTS map[string]any `yaml:"tts"`

	// Defaults is the orchestration policy.
	Defaults Defaults `yaml:"defaults"`
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Config{Defaults: DefaultPolicy()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// providerName extracts and strips the "provider" discriminator from a
// section, returning the name and the remaining keys.
func providerName(section map[string]any) (string, map[string]any) {
	rest := make(map[string]any, len(section))
	name := ""
	for k, v := range section {
		if k == "provider" {
			if s, ok := v.(string); ok {
				name = s
			}
			continue
		}
		rest[k] = v
	}
	return name, rest
}
