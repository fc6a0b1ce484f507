// Package config loads and watches the daemon settings file. Components
// take a snapshot per pipeline run and resubscribe for changes instead
// of polling.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"murmur/hotkey"
)

// Config is an immutable snapshot of the settings file.
type Config struct {
	// Provider selects the active LLM completer: "openai" or "claude".
	Provider string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	ClaudeAPIKey  string
	ClaudeModel   string

	WhisperAPIKey string
	WhisperURL    string
	WhisperModel  string
	Language      string

	// PromptSystem is the instruction for prompt-capture transmissions.
	PromptSystem string
	// VisionPrompt is the instruction for vision transmissions.
	VisionPrompt string

	NotifyPlain      bool
	NotifyLLM        bool
	RetainRecordings bool
	HistoryEnabled   bool
	AutoPaste        bool

	// ArtifactFormat is "wav" or "flac".
	ArtifactFormat string
	TempDir        string
	HistoryDir     string

	TTSCommand string

	CaptureKey hotkey.Key
	PromptKey  hotkey.Key
	VisionKey  hotkey.Key
}

// Store owns the viper instance and fans out change notifications.
type Store struct {
	mu   sync.RWMutex
	v    *viper.Viper
	snap Config
	subs []func(Config)
}

// Load reads the settings file at path (created from defaults when
// missing) and starts watching it for changes.
func Load(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v)

	v.SetEnvPrefix("murmur")
	v.AutomaticEnv()
	// API keys follow the conventional variable names.
	v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	v.BindEnv("claude_api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("whisper_api_key", "GROQ_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		if err := v.SafeWriteConfigAs(path); err != nil {
			return nil, err
		}
	}

	s := &Store{v: v}
	s.snap = s.build()

	v.OnConfigChange(func(fsnotify.Event) {
		s.mu.Lock()
		s.snap = s.build()
		snap := s.snap
		subs := append([]func(Config){}, s.subs...)
		s.mu.Unlock()
		for _, fn := range subs {
			fn(snap)
		}
	})
	v.WatchConfig()

	return s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "openai")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("openai_base_url", "")
	v.SetDefault("claude_model", "claude-3-5-haiku-latest")
	v.SetDefault("whisper_url", "https://api.groq.com/openai/v1/audio/transcriptions")
	v.SetDefault("whisper_model", "whisper-large-v3-turbo")
	v.SetDefault("language", "en")
	v.SetDefault("prompt_system", "Rewrite the following dictated text so it is clear and well formed. Output only the rewritten text.")
	v.SetDefault("vision_prompt", "Describe what is relevant in the captured screen for the spoken request. Output only the answer.")
	v.SetDefault("notify_plain", true)
	v.SetDefault("notify_llm", true)
	v.SetDefault("retain_recordings", false)
	v.SetDefault("history_enabled", true)
	v.SetDefault("auto_paste", false)
	v.SetDefault("artifact_format", "wav")
	v.SetDefault("temp_dir", os.TempDir())
	v.SetDefault("history_dir", "")
	v.SetDefault("tts_command", "")
	v.SetDefault("capture_key", uint16(hotkey.KeyF8))
	v.SetDefault("prompt_key", uint16(hotkey.KeyF9))
	v.SetDefault("vision_key", uint16(hotkey.KeyF10))
}

func (s *Store) build() Config {
	v := s.v
	return Config{
		Provider:         v.GetString("provider"),
		OpenAIAPIKey:     v.GetString("openai_api_key"),
		OpenAIBaseURL:    v.GetString("openai_base_url"),
		OpenAIModel:      v.GetString("openai_model"),
		ClaudeAPIKey:     v.GetString("claude_api_key"),
		ClaudeModel:      v.GetString("claude_model"),
		WhisperAPIKey:    v.GetString("whisper_api_key"),
		WhisperURL:       v.GetString("whisper_url"),
		WhisperModel:     v.GetString("whisper_model"),
		Language:         v.GetString("language"),
		PromptSystem:     v.GetString("prompt_system"),
		VisionPrompt:     v.GetString("vision_prompt"),
		NotifyPlain:      v.GetBool("notify_plain"),
		NotifyLLM:        v.GetBool("notify_llm"),
		RetainRecordings: v.GetBool("retain_recordings"),
		HistoryEnabled:   v.GetBool("history_enabled"),
		AutoPaste:        v.GetBool("auto_paste"),
		ArtifactFormat:   v.GetString("artifact_format"),
		TempDir:          v.GetString("temp_dir"),
		HistoryDir:       v.GetString("history_dir"),
		TTSCommand:       v.GetString("tts_command"),
		CaptureKey:       hotkey.Key(v.GetUint16("capture_key")),
		PromptKey:        hotkey.Key(v.GetUint16("prompt_key")),
		VisionKey:        hotkey.Key(v.GetUint16("vision_key")),
	}
}

// Snapshot returns the current settings copy.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers fn to run on every settings change.
func (s *Store) Subscribe(fn func(Config)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// Triggers returns the configured trigger keys.
func (c Config) Triggers() hotkey.Triggers {
	return hotkey.Triggers{Capture: c.CaptureKey, Prompt: c.PromptKey, Vision: c.VisionKey}
}

// DefaultPath returns the settings file location under the user config dir.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "murmur", "config.yaml"), nil
}
