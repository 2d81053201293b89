// Package keystore persists the VersionEye API key and project id in a Java properties file.
package keystore

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"
)

const (
	// FileName is the key file kept in the project directory.
	FileName = "local.properties"

	APIKeyProperty    = "api_key"
	ProjectIDProperty = "project_id"
)

// Credentials are the two secrets a run needs.
type Credentials struct {
	APIKey    string
	ProjectID string
}

// Store is the content of a key file. Keys it does not know about, and their
// comments, are written back unchanged. Values are never expanded.
type Store struct {
	path  string
	props *properties.Properties
}

// PathFor returns the key file location for a project directory.
func PathFor(projectDir string) string {
	return filepath.Join(projectDir, FileName)
}

// Open reads the key file. A missing file gives an empty store.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		props := properties.NewProperties()
		props.DisableExpansion = true
		return &Store{path: path, props: props}, nil
	}

	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := loader.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %s: %w", path, err)
	}
	return &Store{path: path, props: props}, nil
}

// Path returns the file the store was opened from.
func (s *Store) Path() string {
	return s.path
}

// Get returns a raw value.
func (s *Store) Get(key string) string {
	v, _ := s.props.Get(key)
	return v
}

// Credentials returns the stored API key and project id.
func (s *Store) Credentials() Credentials {
	return Credentials{
		APIKey:    strings.TrimSpace(s.Get(APIKeyProperty)),
		ProjectID: strings.TrimSpace(s.Get(ProjectIDProperty)),
	}
}

// SetAPIKey stages an API key for saving.
func (s *Store) SetAPIKey(key string) {
	s.set(APIKeyProperty, key)
}

// SetProjectID stages a project id for saving.
func (s *Store) SetProjectID(id string) {
	s.set(ProjectIDProperty, id)
}

func (s *Store) set(key, value string) {
	// cannot fail with expansion disabled
	_, _, _ = s.props.Set(key, value)
}

// Save writes every key back to the file in properties format.
func (s *Store) Save() error {
	var buf bytes.Buffer
	if _, err := s.props.WriteComment(&buf, "# ", properties.UTF8); err != nil {
		return fmt.Errorf("failed to encode key file %s: %w", s.path, err)
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write key file %s: %w", s.path, err)
	}
	return nil
}
