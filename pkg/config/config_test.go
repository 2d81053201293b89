package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sambabib/versioneye-check/pkg/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.True(t, cfg.Colors)
	assert.True(t, cfg.Verbose)
	assert.False(t, cfg.Quiet)
	assert.False(t, cfg.Strict)
	assert.Equal(t, VisibilityPublic, cfg.Visibility)
	assert.Equal(t, policy.DefaultFailSet(), cfg.FailSet())
}

func TestValidate_NormalizesBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = " https://versioneye.example.com "
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://versioneye.example.com/", cfg.BaseURL)
	assert.Equal(t, "https://versioneye.example.com/user/projects/42", cfg.ProjectURL("42"))

	// idempotent
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://versioneye.example.com/", cfg.BaseURL)
}

func TestValidate_BlankBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "   "
	err := cfg.Validate()
	require.Error(t, err)

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "baseUrl", cfgErr.Field)
}

func TestValidate_Visibility(t *testing.T) {
	tests := map[Visibility]Visibility{
		"PRIVATE": VisibilityPrivate,
		"public":  VisibilityPublic,
		"":        VisibilityUnspecified,
		"hidden":  VisibilityUnspecified,
	}
	for in, expected := range tests {
		cfg := DefaultConfig()
		cfg.Visibility = in
		require.NoError(t, cfg.Validate())
		assert.Equal(t, expected, cfg.Visibility, "visibility %q", in)
	}
}

func TestValidate_FailOn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailOn = []string{"licensesCheck", "dependencies"}
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.FailSet().Contains(policy.Licenses))
	assert.True(t, cfg.FailSet().Contains(policy.Dependencies))
	assert.False(t, cfg.FailSet().Contains(policy.Security))

	cfg = DefaultConfig()
	cfg.FailOn = []string{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0, cfg.FailSet().Len(), "explicit empty list is report only")

	cfg = DefaultConfig()
	cfg.FailOn = []string{"nope"}
	assert.Error(t, cfg.Validate())
}

func TestValidate_ZeroValueConfigUsesDefaultFailSet(t *testing.T) {
	cfg := &Config{BaseURL: "https://x"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, policy.DefaultFailSet(), cfg.FailSet())
	assert.True(t, cfg.FailSet().Contains(policy.Security))
	assert.Equal(t, "https://x/user/projects/7", cfg.ProjectURL("7"))

	// FailOn alone decides the set, before and after validation.
	cfg = &Config{FailOn: []string{"licenses"}}
	assert.Equal(t, []policy.FailCategory{policy.Licenses}, cfg.FailSet().Categories())
	cfg.FailOn = nil
	assert.Equal(t, policy.DefaultFailSet(), cfg.FailSet())
}

func TestSetFailOn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetFailOn(policy.LicensesUnknown)
	assert.Equal(t, []string{"licensesUnknown"}, cfg.FailOn)
	assert.True(t, cfg.FailSet().Contains(policy.LicensesUnknown))
	assert.False(t, cfg.FailSet().Contains(policy.Security))
}

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
}

func TestFindAndLoadConfig(t *testing.T) {
	root := t.TempDir()
	content := `baseUrl: https://ve.internal
colors: false
org: acme
team: core
visibility: private
temp: true
failOn:
  - licenses
  - securityCheck
`
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(content), 0644))

	sub := filepath.Join(root, "module", "sub")
	require.NoError(t, os.MkdirAll(sub, 0755))

	cfg, err := FindAndLoadConfig(sub)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://ve.internal/", cfg.BaseURL)
	assert.False(t, cfg.Colors)
	assert.True(t, cfg.Verbose, "unset keys keep defaults")
	assert.Equal(t, "acme", cfg.Org)
	assert.Equal(t, "core", cfg.Team)
	assert.Equal(t, VisibilityPrivate, cfg.Visibility)
	assert.True(t, cfg.Temp)
	assert.Equal(t, []policy.FailCategory{policy.Licenses, policy.Security}, cfg.FailSet().Categories())
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("colors: [unterminated"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error parsing config file")
}
