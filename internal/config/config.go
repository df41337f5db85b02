// Package config handles TOML-based configuration loading and
// validation. The config file is parsed as data only.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"kani/internal/lang"
)

// Dirs are the working directories of the downloader.
type Dirs struct {
	Content string `toml:"content"` // where output files are written
	Trash   string `toml:"trash"`   // holding dir for --nocleanup
	Fonts   string `toml:"fonts"`   // font files for mkv attachment
}

// Bins are paths to the external muxer binaries.
type Bins struct {
	FFmpeg   string `toml:"ffmpeg"`
	MKVMerge string `toml:"mkvmerge"`
}

// CLI holds the defaults for the command line flags.
type CLI struct {
	Quality      string `toml:"quality"`
	DubLanguage  string `toml:"dub_language"`
	Server       int    `toml:"server"`
	OldSubs      bool   `toml:"old_subs"`
	MP4          bool   `toml:"mp4"`
	MuxSubs      bool   `toml:"mux_subs"`
	SubsLanguage string `toml:"subs_language"` // all | none | one ISO code
	ReleaseGroup string `toml:"release_group"`
	Suffix       string `toml:"suffix"`
	NoCleanup    bool   `toml:"no_cleanup"`
}

// Net holds transport settings.
type Net struct {
	Proxy       string   `toml:"proxy"`
	Concurrency int      `toml:"concurrency"`
	// Servers lists preferred CDN hostname suffixes, highest priority
	// first. Matching servers sort before all others.
	Servers []string `toml:"servers"`
}

// Config holds all application configuration.
type Config struct {
	Base  string `toml:"base"` // site hostname
	Debug bool   `toml:"debug"`
	Dirs  Dirs   `toml:"dir"`
	Bins  Bins   `toml:"bin"`
	CLI   CLI    `toml:"cli"`
	Net   Net    `toml:"net"`
}

// qualityLabels are the encoded resolutions the service offers, plus
// the "max" sentinel.
var qualityLabels = map[string]bool{
	"240p": true, "360p": true, "480p": true,
	"720p": true, "1080p": true, "max": true,
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Base: "www.crunchyroll.com",
		Dirs: Dirs{
			Content: "./videos",
			Trash:   "./videos/trash",
			Fonts:   "./fonts",
		},
		Bins: Bins{
			FFmpeg:   "ffmpeg",
			MKVMerge: "mkvmerge",
		},
		CLI: CLI{
			Quality:      "720p",
			DubLanguage:  "jpn",
			Server:       1,
			MuxSubs:      true,
			SubsLanguage: "all",
			ReleaseGroup: "KANI",
			Suffix:       "SIZEp",
		},
		Net: Net{
			Concurrency: 10,
			Servers:     []string{".vrv.co"},
		},
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "kani"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "kani"), nil
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults. A missing
// file yields the defaults.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if !IsQuality(c.CLI.Quality) {
		return fmt.Errorf("unsupported quality %q (valid: 240p, 360p, 480p, 720p, 1080p, max)", c.CLI.Quality)
	}
	if !lang.IsDubCode(c.CLI.DubLanguage) {
		return fmt.Errorf("unsupported dub language %q (valid: %s)", c.CLI.DubLanguage, strings.Join(lang.DubCodes(), ", "))
	}
	if c.CLI.Server < 1 {
		return fmt.Errorf("server index must be 1-based, got %d", c.CLI.Server)
	}
	if c.Net.Concurrency < 1 || c.Net.Concurrency > 64 {
		return fmt.Errorf("concurrency %d out of range 1..64", c.Net.Concurrency)
	}
	if c.Base == "" {
		return fmt.Errorf("base hostname cannot be empty")
	}
	if sl := c.CLI.SubsLanguage; sl != "all" && sl != "none" && !lang.IsDubCode(sl) {
		return fmt.Errorf("unsupported subtitle language filter %q (valid: all, none, or one language code)", sl)
	}
	return nil
}

// IsQuality reports whether label is a known quality label.
func IsQuality(label string) bool { return qualityLabels[label] }

// ExpandDir resolves ~ and makes the directory path absolute.
func ExpandDir(dir string) (string, error) {
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}
	return filepath.Abs(dir)
}
