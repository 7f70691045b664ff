package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultFeedTitle       = "The Economist Weekly Edition (Chapters)"
	defaultFeedDescription = "The Economist Weekly Edition split into chapters for easier listening"
	defaultFeedLanguage    = "en-us"
	defaultFeedAuthor      = "The Economist (Processed)"
	defaultFeedExplicit    = "no"
	defaultFFmpegBinary    = "ffmpeg"
	defaultDebounceMS      = 500
)

// Feed holds the channel-level metadata rendered into the feed document.
type Feed struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
	Author      string `yaml:"author"`
	Explicit    string `yaml:"explicit"`
}

// Config is the immutable settings value passed into every pipeline stage.
type Config struct {
	BaseDir        string
	GitHubUsername string
	GitHubRepo     string
	FFmpeg         string
	Debounce       time.Duration
	Feed           Feed
}

type fileConfig struct {
	BaseDir        string `yaml:"base_dir"`
	GitHubUsername string `yaml:"github_username"`
	GitHubRepo     string `yaml:"github_repo"`
	FFmpeg         string `yaml:"ffmpeg"`
	DebounceMS     *int   `yaml:"debounce_ms"`
	Feed           Feed   `yaml:"feed"`
}

// SiteURL returns the GitHub Pages prefix all published files live under.
func (c Config) SiteURL() string {
	return fmt.Sprintf("https://%s.github.io/%s", c.GitHubUsername, c.GitHubRepo)
}

// FeedURL returns the public address of the feed document.
func (c Config) FeedURL() string {
	return c.SiteURL() + "/feed.xml"
}

// Load builds the configuration from defaults, an optional YAML file, and
// ECONOMIST_* environment overrides, in that precedence order. When path is
// empty the file named by ECONOMIST_CONFIG is used, if any.
func Load(path string) (Config, error) {
	cfg := Config{
		FFmpeg:   defaultFFmpegBinary,
		Debounce: defaultDebounceMS * time.Millisecond,
		Feed: Feed{
			Title:       defaultFeedTitle,
			Description: defaultFeedDescription,
			Language:    defaultFeedLanguage,
			Author:      defaultFeedAuthor,
			Explicit:    defaultFeedExplicit,
		},
	}

	if path == "" {
		path = strings.TrimSpace(os.Getenv("ECONOMIST_CONFIG"))
	}
	if path != "" {
		resolved, err := expandPath(path)
		if err != nil {
			return Config{}, err
		}
		data, err := os.ReadFile(resolved)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", resolved, err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", resolved, err)
		}
		applyFile(&cfg, fc)
	}

	applyEnv(&cfg)

	baseDir, err := resolveBaseDir(cfg.BaseDir)
	if err != nil {
		return Config{}, err
	}
	cfg.BaseDir = baseDir

	if cfg.GitHubUsername == "" || cfg.GitHubRepo == "" {
		return Config{}, errors.New("github_username and github_repo must be configured")
	}

	return cfg, nil
}

func applyFile(cfg *Config, fc fileConfig) {
	if value := strings.TrimSpace(fc.BaseDir); value != "" {
		cfg.BaseDir = value
	}
	if value := strings.TrimSpace(fc.GitHubUsername); value != "" {
		cfg.GitHubUsername = value
	}
	if value := strings.TrimSpace(fc.GitHubRepo); value != "" {
		cfg.GitHubRepo = value
	}
	if value := strings.TrimSpace(fc.FFmpeg); value != "" {
		cfg.FFmpeg = value
	}
	if fc.DebounceMS != nil && *fc.DebounceMS >= 0 {
		cfg.Debounce = time.Duration(*fc.DebounceMS) * time.Millisecond
	}
	if value := strings.TrimSpace(fc.Feed.Title); value != "" {
		cfg.Feed.Title = value
	}
	if value := strings.TrimSpace(fc.Feed.Description); value != "" {
		cfg.Feed.Description = value
	}
	if value := strings.TrimSpace(fc.Feed.Language); value != "" {
		cfg.Feed.Language = value
	}
	if value := strings.TrimSpace(fc.Feed.Author); value != "" {
		cfg.Feed.Author = value
	}
	if value := strings.TrimSpace(fc.Feed.Explicit); value != "" {
		cfg.Feed.Explicit = value
	}
}

func applyEnv(cfg *Config) {
	if value := strings.TrimSpace(os.Getenv("ECONOMIST_BASE_DIR")); value != "" {
		cfg.BaseDir = value
	}
	if value := strings.TrimSpace(os.Getenv("ECONOMIST_GITHUB_USERNAME")); value != "" {
		cfg.GitHubUsername = value
	}
	if value := strings.TrimSpace(os.Getenv("ECONOMIST_GITHUB_REPO")); value != "" {
		cfg.GitHubRepo = value
	}
	if value := strings.TrimSpace(os.Getenv("ECONOMIST_FFMPEG")); value != "" {
		cfg.FFmpeg = value
	}
	if value := strings.TrimSpace(os.Getenv("ECONOMIST_DEBOUNCE_MS")); value != "" {
		if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
			cfg.Debounce = time.Duration(ms) * time.Millisecond
		}
	}
	if value := strings.TrimSpace(os.Getenv("ECONOMIST_FEED_TITLE")); value != "" {
		cfg.Feed.Title = value
	}
	if value := strings.TrimSpace(os.Getenv("ECONOMIST_FEED_DESCRIPTION")); value != "" {
		cfg.Feed.Description = value
	}
	if value := strings.TrimSpace(os.Getenv("ECONOMIST_FEED_LANGUAGE")); value != "" {
		cfg.Feed.Language = value
	}
	if value := strings.TrimSpace(os.Getenv("ECONOMIST_FEED_AUTHOR")); value != "" {
		cfg.Feed.Author = value
	}
	if value := strings.TrimSpace(os.Getenv("ECONOMIST_FEED_EXPLICIT")); value != "" {
		cfg.Feed.Explicit = value
	}
}

// resolveBaseDir returns the absolute drop/publish directory, creating it
// when it does not yet exist. An empty value falls back to the working
// directory.
func resolveBaseDir(dir string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = cwd
	}

	abs, err := expandPath(dir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", err
	}

	return abs, nil
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	return filepath.Abs(path)
}
