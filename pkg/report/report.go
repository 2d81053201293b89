package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sambabib/versioneye-check/pkg/policy"
)

// Response mirrors the JSON returned by the projects API
type Response struct {
	ID              flexString   `json:"id"`
	DepNumber       int          `json:"dep_number"`
	OutNumber       int          `json:"out_number"`
	LicensesRed     int          `json:"licenses_red"`
	LicensesUnknown int          `json:"licenses_unknown"`
	SvCount         int          `json:"sv_count"`
	Dependencies    []Dependency `json:"dependencies"`
	Error           string       `json:"error,omitempty"`
}

// Dependency is one entry of the dependencies array
type Dependency struct {
	Name             string            `json:"name"`
	VersionCurrent   *string           `json:"version_current"`
	VersionRequested string            `json:"version_requested"`
	Outdated         bool              `json:"outdated"`
	Licenses         []License         `json:"licenses"`
	Vulnerabilities  []json.RawMessage `json:"security_vulnerabilities"`
}

// License is a license record attached to a dependency
type License struct {
	Name        string   `json:"name"`
	OnWhitelist flexBool `json:"on_whitelist"`
	OnCwl       flexBool `json:"on_cwl"`
}

// Report is the classified result of an analysis
type Report struct {
	ProjectID             string              `json:"project_id"`
	DepCount              int                 `json:"dep_count"`
	OutdatedCount         int                 `json:"outdated_count"`
	LicenseViolationCount int                 `json:"license_violation_count"`
	UnknownLicenseCount   int                 `json:"unknown_license_count"`
	VulnerabilityCount    int                 `json:"vulnerability_count"`
	Dependencies          []DependencyFinding `json:"dependencies"`
}

// DependencyFinding holds what was found for a single dependency.
// UnknownVersion and Outdated never both hold.
type DependencyFinding struct {
	Name                string `json:"name"`
	CurrentVersion      string `json:"current_version,omitempty"`
	RequestedVersion    string `json:"requested_version,omitempty"`
	Outdated            bool   `json:"outdated"`
	UnknownVersion      bool   `json:"unknown_version"`
	UpdateType          string `json:"update_type,omitempty"` // major, minor or patch
	WhitelistViolations int    `json:"whitelist_violations"`
	UnknownLicenses     int    `json:"unknown_licenses"`
	HasSecurityInfo     bool   `json:"has_security_info"`
	VulnerabilityCount  int    `json:"vulnerability_count"`
}

// Parse decodes a projects API response body.
func Parse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("invalid report: %w", err)
	}
	return &resp, nil
}

// Counts returns the aggregate numbers used by the fail policy.
func (r *Report) Counts() policy.Counts {
	return policy.Counts{
		Outdated:          r.OutdatedCount,
		LicenseViolations: r.LicenseViolationCount,
		UnknownLicenses:   r.UnknownLicenseCount,
		Vulnerabilities:   r.VulnerabilityCount,
	}
}

// UnknownVersionCount is the number of dependencies without a known current version.
func (r *Report) UnknownVersionCount() int {
	n := 0
	for _, d := range r.Dependencies {
		if d.UnknownVersion {
			n++
		}
	}
	return n
}

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*s = flexString(n.String())
	return nil
}

// flexBool keeps a JSON boolean that may arrive as true, false, "true", "false" or null.
type flexBool string

func (f *flexBool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case bool:
		*f = flexBool(strconv.FormatBool(v))
	case string:
		*f = flexBool(strings.ToLower(strings.TrimSpace(v)))
	default:
		*f = flexBool(string(b))
	}
	return nil
}

func (f flexBool) MarshalJSON() ([]byte, error) {
	switch f {
	case "":
		return []byte("null"), nil
	case "true", "false":
		return []byte(f), nil
	}
	return json.Marshal(string(f))
}

func (f flexBool) isFalse() bool {
	return f == "false"
}

func (f flexBool) isTrue() bool {
	return f == "true"
}
