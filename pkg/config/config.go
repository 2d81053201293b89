package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sambabib/versioneye-check/pkg/policy"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the project directory and its parents.
const FileName = ".versioneye.yaml"

// DefaultBaseURL is the public VersionEye service.
const DefaultBaseURL = "https://www.versioneye.com/"

// Visibility of the project on the remote service.
type Visibility string

const (
	VisibilityUnspecified Visibility = ""
	VisibilityPublic      Visibility = "public"
	VisibilityPrivate     Visibility = "private"
)

// Config represents the configuration for a VersionEye check
type Config struct {
	BaseURL    string     `yaml:"baseUrl"`
	Colors     bool       `yaml:"colors"`
	Quiet      bool       `yaml:"quiet"`
	Verbose    bool       `yaml:"verbose"`
	Name       string     `yaml:"name"` // Display name override
	Org        string     `yaml:"org"`
	Team       string     `yaml:"team"`
	Visibility Visibility `yaml:"visibility"`
	Temp       bool       `yaml:"temp"`

	// FailOn lists the categories that fail the build. nil means the default set,
	// an explicit empty list means report only.
	FailOn []string `yaml:"failOn"`

	// Strict turns configuration, transport and remote errors into build failures.
	Strict bool `yaml:"strict"`
}

// Error reports a missing or invalid setting.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    DefaultBaseURL,
		Colors:     true,
		Verbose:    true,
		Visibility: VisibilityPublic,
	}
}

// LoadConfig loads the configuration from the specified file path
// If no path is provided, it looks for .versioneye.yaml in the current directory
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = FileName
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	return readConfig(configPath)
}

// FindAndLoadConfig searches for a config file in the project directory and its parents
func FindAndLoadConfig(projectPath string) (*Config, error) {
	currentDir := projectPath
	for {
		configPath := filepath.Join(currentDir, FileName)
		if _, err := os.Stat(configPath); err == nil {
			return readConfig(configPath)
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return DefaultConfig(), nil
}

func readConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configPath, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", configPath, err)
	}

	return config, nil
}

// Validate checks required settings and normalizes the base URL to end with a slash.
// It is idempotent.
func (c *Config) Validate() error {
	c.BaseURL = normalizeBaseURL(c.BaseURL)
	if c.BaseURL == "" {
		return &Error{Field: "baseUrl", Reason: "must not be blank"}
	}

	switch Visibility(strings.ToLower(string(c.Visibility))) {
	case VisibilityPrivate:
		c.Visibility = VisibilityPrivate
	case VisibilityPublic:
		c.Visibility = VisibilityPublic
	default:
		c.Visibility = VisibilityUnspecified
	}

	if c.FailOn != nil {
		if _, err := policy.ParseFailSet(c.FailOn); err != nil {
			return &Error{Field: "failOn", Reason: err.Error()}
		}
	}

	return nil
}

// FailSet returns the categories that fail the build, derived from FailOn alone.
// A nil FailOn gives the default set. Unknown names are skipped; Validate reports them.
func (c *Config) FailSet() policy.FailSet {
	if c.FailOn == nil {
		return policy.DefaultFailSet()
	}
	categories := make([]policy.FailCategory, 0, len(c.FailOn))
	for _, name := range c.FailOn {
		if cat, err := policy.ParseCategory(name); err == nil {
			categories = append(categories, cat)
		}
	}
	return policy.NewFailSet(categories...)
}

// SetFailOn replaces the fail set.
func (c *Config) SetFailOn(categories ...policy.FailCategory) {
	c.FailOn = make([]string, 0, len(categories))
	for _, cat := range categories {
		c.FailOn = append(c.FailOn, cat.String())
	}
}

// ProjectURL is the page of the project on the remote service.
func (c *Config) ProjectURL(projectID string) string {
	return normalizeBaseURL(c.BaseURL) + "user/projects/" + projectID
}

func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return baseURL
}
