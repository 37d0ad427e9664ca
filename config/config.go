package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/mitchellh/go-homedir"
)

// AppName names the config directory
const AppName = "hue-ambient"

const (
	DefaultSampleRate   = 44100
	DefaultBufferSize   = 512
	DefaultMasterVolume = 0.7
	DefaultPollInterval = 500 * time.Millisecond
	DefaultMaxErrors    = 5
)

// AudioConfig defines the output stream
type AudioConfig struct {
	SampleRate   int     `json:"sampleRate"`
	BufferSize   int     `json:"bufferSize"`   // samples per render
	MasterVolume float64 `json:"masterVolume"` // 0-1
}

// PollConfig defines how often the bridge is read
type PollConfig struct {
	IntervalMs           int `json:"pollIntervalMs"`
	MaxConsecutiveErrors int `json:"maxConsecutiveErrors"`
}

// BridgeConfig stores the Hue bridge credentials
type BridgeConfig struct {
	IP       string `json:"bridgeIP,omitempty"`
	Username string `json:"username,omitempty"`
}

// MIDIConfig selects trigger inputs
type MIDIConfig struct {
	Input string `json:"midiInput,omitempty"` // port name substring, empty disables
}

// HTTPConfig enables the control API
type HTTPConfig struct {
	Addr string `json:"httpAddr,omitempty"` // e.g. "localhost:8765", empty disables
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty"` // optional GIMP .gpl file
}

// Config is the main configuration structure
type Config struct {
	Audio  AudioConfig  `json:"audio"`
	Poll   PollConfig   `json:"poll"`
	Bridge BridgeConfig `json:"bridge,omitempty"`
	MIDI   MIDIConfig   `json:"midi,omitempty"`
	HTTP   HTTPConfig   `json:"http,omitempty"`
	UI     UIConfig     `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate:   DefaultSampleRate,
			BufferSize:   DefaultBufferSize,
			MasterVolume: DefaultMasterVolume,
		},
		Poll: PollConfig{
			IntervalMs:           int(DefaultPollInterval / time.Millisecond),
			MaxConsecutiveErrors: DefaultMaxErrors,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fault.Wrap(err, fmsg.With("resolve home directory"), ftag.With(ftag.Internal))
	}
	return filepath.Join(home, ".config", AppName), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found. Fields
// missing from the file keep their defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fault.Wrap(err, fmsg.With("read config"), ftag.With(ftag.Internal))
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fault.Wrap(err,
			fmsg.WithDesc("parse config", "The config file "+path+" is not valid JSON"),
			ftag.With(ftag.InvalidArgument))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fault.Wrap(err, fmsg.With("create config dir"), ftag.With(ftag.Internal))
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fault.Wrap(err, fmsg.With("encode config"), ftag.With(ftag.Internal))
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fault.Wrap(err, fmsg.With("write config"), ftag.With(ftag.Internal))
	}
	return nil
}

// Validate clamps the master volume and rejects unusable audio or poll settings
func (c *Config) Validate() error {
	c.Audio.MasterVolume = max(0, min(1, c.Audio.MasterVolume))

	switch {
	case c.Audio.SampleRate <= 0:
		return fault.New("sample rate must be positive", ftag.With(ftag.InvalidArgument))
	case c.Audio.BufferSize <= 0:
		return fault.New("buffer size must be positive", ftag.With(ftag.InvalidArgument))
	case c.Poll.IntervalMs <= 0:
		return fault.New("poll interval must be positive", ftag.With(ftag.InvalidArgument))
	}
	if c.Poll.MaxConsecutiveErrors <= 0 {
		c.Poll.MaxConsecutiveErrors = DefaultConfig().Poll.MaxConsecutiveErrors
	}
	return nil
}

// PollInterval returns the poll interval as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalMs) * time.Millisecond
}

// HasBridge reports whether saved bridge credentials exist
func (c *Config) HasBridge() bool {
	return c.Bridge.IP != "" && c.Bridge.Username != ""
}

// SetBridge stores bridge credentials
func (c *Config) SetBridge(ip, username string) {
	c.Bridge = BridgeConfig{IP: ip, Username: username}
}

// PalettePath returns the palette file with ~ expanded, or "" if unset
func (c *Config) PalettePath() string {
	if c.UI.Palette == "" {
		return ""
	}
	p, err := homedir.Expand(c.UI.Palette)
	if err != nil {
		return c.UI.Palette
	}
	return p
}
