package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	formatPlain    = "plain"
	formatMarkdown = "markdown"
	formatJSON     = "json"

	stdinSource       = "-"
	defaultWheelLines = 3
	defaultTheme      = "dracula"
)

var knownFormats = []string{formatPlain, formatMarkdown, formatJSON}

type Config struct {
	DefaultProfile string             `toml:"default_profile"`
	Profiles       map[string]Profile `toml:"profiles"`
	Theme          string             `toml:"theme"`
}

type Profile struct {
	Source      string   `toml:"source"`
	VisibleRows int      `toml:"visible_rows"`
	Reversed    bool     `toml:"reversed"`
	WheelPixels int      `toml:"wheel_pixels"`
	Follow      bool     `toml:"follow"`
	Format      string   `toml:"format"`
	Columns     []string `toml:"columns"`
}

type ResolvedProfile struct {
	Name        string
	Source      string
	VisibleRows int // 0 means fit the terminal
	Reversed    bool
	WheelLines  int
	Follow      bool
	Format      string
	Columns     []string
	Theme       string
}

// IsStdin reports whether records are read from standard input.
func (p *ResolvedProfile) IsStdin() bool {
	return p.Source == stdinSource
}

type ProfileError struct {
	Profile string
	Field   string
	Err     error
}

func (e *ProfileError) Error() string {
	if e.Profile == "" {
		return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
	}

	if e.Field == "" {
		return fmt.Sprintf("profile %q: %v", e.Profile, e.Err)
	}

	return fmt.Sprintf("profile %q: %s: %v", e.Profile, e.Field, e.Err)
}

func (e *ProfileError) Unwrap() error {
	return e.Err
}

var (
	ErrEmptyPath       = errors.New("path is empty")
	ErrPathNotExist    = errors.New("path does not exist")
	ErrIsDirectory     = errors.New("path is a directory")
	ErrUnknownFormat   = errors.New("unknown format")
	ErrNegativeRows    = errors.New("must not be negative")
	ErrMissingColumns  = errors.New("json format needs at least one column")
	ErrFollowNeedsFile = errors.New("follow needs a file source")
)

func validateProfile(name string, p Profile) error {
	if strings.TrimSpace(p.Source) == "" {
		return &ProfileError{Profile: name, Field: "source", Err: ErrEmptyPath}
	}

	if p.VisibleRows < 0 {
		return &ProfileError{Profile: name, Field: "visible_rows", Err: ErrNegativeRows}
	}

	if p.WheelPixels < 0 {
		return &ProfileError{Profile: name, Field: "wheel_pixels", Err: ErrNegativeRows}
	}

	format := strings.ToLower(strings.TrimSpace(p.Format))
	if format != "" && !slices.Contains(knownFormats, format) {
		return &ProfileError{Profile: name, Field: "format", Err: fmt.Errorf("%w: %s", ErrUnknownFormat, p.Format)}
	}

	if format == formatJSON && len(p.Columns) == 0 {
		return &ProfileError{Profile: name, Field: "columns", Err: ErrMissingColumns}
	}

	if p.Follow && strings.TrimSpace(p.Source) == stdinSource {
		return &ProfileError{Profile: name, Field: "follow", Err: ErrFollowNeedsFile}
	}

	return nil
}

func validateSourceExists(name, source string) error {
	info, err := os.Stat(source)

	if err != nil {
		if os.IsNotExist(err) {
			return &ProfileError{Profile: name, Field: "source", Err: fmt.Errorf("%w: %s", ErrPathNotExist, source)}
		}

		return &ProfileError{Profile: name, Field: "source", Err: err}
	}

	if info.IsDir() {
		return &ProfileError{Profile: name, Field: "source", Err: fmt.Errorf("%w: %s", ErrIsDirectory, source)}
	}

	return nil
}

func validateConfig(cfg Config) error {
	if cfg.DefaultProfile != "" && cfg.Profiles != nil {
		if _, ok := cfg.Profiles[cfg.DefaultProfile]; !ok {
			return &ProfileError{Field: "default_profile", Err: fmt.Errorf("profile %q not found", cfg.DefaultProfile)}
		}
	}

	return nil
}

func selectProfile(profileFlag string, cfg Config) (string, *Profile, error) {
	if profileFlag != "" {
		if cfg.Profiles == nil {
			return "", nil, &ProfileError{Profile: profileFlag, Err: errors.New("no profiles defined in config")}
		}

		p, ok := cfg.Profiles[profileFlag]

		if !ok {
			return "", nil, &ProfileError{Profile: profileFlag, Err: errors.New("profile not found")}
		}

		return profileFlag, &p, nil
	}

	if cfg.DefaultProfile != "" {
		if cfg.Profiles == nil {
			return "", nil, &ProfileError{Field: "default_profile", Err: fmt.Errorf("profile %q not found", cfg.DefaultProfile)}
		}

		p, ok := cfg.Profiles[cfg.DefaultProfile]

		if !ok {
			return "", nil, &ProfileError{Field: "default_profile", Err: fmt.Errorf("profile %q not found", cfg.DefaultProfile)}
		}

		return cfg.DefaultProfile, &p, nil
	}

	return "", nil, nil
}

// resolveProfile validates p and fills in defaults. Sources other than
// stdin are expanded and must be existing files.
func resolveProfile(name string, p Profile, theme string) (*ResolvedProfile, error) {
	if err := validateProfile(name, p); err != nil {
		return nil, err
	}

	source := strings.TrimSpace(p.Source)
	if source != stdinSource {
		expanded, err := expandPath(source)
		if err != nil {
			return nil, &ProfileError{Profile: name, Field: "source", Err: err}
		}

		source = filepath.Clean(expanded)
		if resolved, err := filepath.EvalSymlinks(source); err == nil {
			source = resolved
		}

		if err := validateSourceExists(name, source); err != nil {
			return nil, err
		}
	}

	format := strings.ToLower(strings.TrimSpace(p.Format))
	if format == "" {
		format = formatPlain
	}

	wheel := p.WheelPixels
	if wheel == 0 {
		wheel = defaultWheelLines
	}

	if theme == "" {
		theme = defaultTheme
	}

	return &ResolvedProfile{
		Name:        name,
		Source:      source,
		VisibleRows: p.VisibleRows,
		Reversed:    p.Reversed,
		WheelLines:  wheel,
		Follow:      p.Follow,
		Format:      format,
		Columns:     p.Columns,
		Theme:       theme,
	}, nil
}

func configPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "vtab", "config.toml"), nil
}

func loadConfig() (Config, string, error) {
	path, err := configPath()

	if err != nil {
		return Config{}, "", err
	}

	data, err := os.ReadFile(path)

	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, path, nil
		}

		return Config{}, path, err
	}

	var cfg Config

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, path, err
	}

	return cfg, path, nil
}

func expandPath(value string) (string, error) {
	value = strings.TrimSpace(value)

	if value == "" {
		return value, nil
	}

	expanded := os.ExpandEnv(value)

	if !strings.HasPrefix(expanded, "~") {
		return expanded, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if expanded == "~" {
		return homeDir, nil
	}

	if strings.HasPrefix(expanded, "~/") {
		return filepath.Join(homeDir, expanded[2:]), nil
	}

	if strings.HasPrefix(expanded, "~\\") {
		return filepath.Join(homeDir, expanded[2:]), nil
	}

	return expanded, nil
}
