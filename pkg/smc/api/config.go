package api

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the corresponding profile field is unset.
const (
	defaultAPIVersion = "6.4"
	defaultTimeout    = 30 * time.Second
)

// Profile holds the connection settings for a management server session.
// Profiles are usually loaded from ~/.smc-go.yml but can be constructed
// directly for programmatic use.
type Profile struct {
	// URL is the management server base URL, e.g. https://smc.example.net:8082
	URL string `yaml:"url"`

	// APIKey is the authentication key of the API client element.
	APIKey string `yaml:"api_key"`

	// APIVersion selects the API version path segment (default 6.4).
	APIVersion string `yaml:"api_version,omitempty"`

	// Timeout is the per-request timeout in seconds (default 30).
	Timeout int `yaml:"timeout,omitempty"`

	// Verify enables TLS certificate verification. The management server
	// commonly runs with a self-signed certificate, so this defaults off.
	Verify bool `yaml:"verify,omitempty"`
}

// DefaultProfilePath returns the default path for the profile file.
func DefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".smc-go.yml"
	}
	return filepath.Join(home, ".smc-go.yml")
}

// LoadProfile reads a profile from the default location.
func LoadProfile() (*Profile, error) {
	return LoadProfileFrom(DefaultProfilePath())
}

// LoadProfileFrom reads a profile from a specific path.
func LoadProfileFrom(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := &Profile{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// SaveTo writes the profile to a specific path with restrictive permissions,
// since it carries the API key.
func (p *Profile) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func (p *Profile) validate() error {
	if p.URL == "" {
		return fmt.Errorf("url is required")
	}
	if p.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}
	return nil
}

func (p *Profile) version() string {
	if p.APIVersion == "" {
		return defaultAPIVersion
	}
	return p.APIVersion
}

func (p *Profile) timeout() time.Duration {
	if p.Timeout <= 0 {
		return defaultTimeout
	}
	return time.Duration(p.Timeout) * time.Second
}
