package output

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sambabib/versioneye-check/pkg/policy"
	"github.com/sambabib/versioneye-check/pkg/report"
)

// SARIF format specification: https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-v2.1.0.html

// SarifReport represents the top-level SARIF report structure
type SarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SarifRun `json:"runs"`
}

// SarifRun represents a single run of the analysis tool
type SarifRun struct {
	Tool        SarifTool         `json:"tool"`
	Results     []SarifResult     `json:"results"`
	Invocations []SarifInvocation `json:"invocations"`
}

// SarifTool represents the tool that performed the analysis
type SarifTool struct {
	Driver SarifDriver `json:"driver"`
}

// SarifDriver represents the driver of the tool
type SarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []SarifRule `json:"rules"`
}

// SarifRule represents a rule that was evaluated during the analysis
type SarifRule struct {
	ID               string            `json:"id"`
	ShortDescription SarifMessage      `json:"shortDescription"`
	FullDescription  SarifMessage      `json:"fullDescription"`
	Help             SarifMessage      `json:"help"`
	Properties       map[string]string `json:"properties,omitempty"`
}

// SarifResult represents a result of the analysis
type SarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   SarifMessage    `json:"message"`
	Locations []SarifLocation `json:"locations"`
}

// SarifMessage represents a message in the SARIF report
type SarifMessage struct {
	Text string `json:"text"`
}

// SarifLocation represents a location in the code
type SarifLocation struct {
	PhysicalLocation SarifPhysicalLocation `json:"physicalLocation"`
}

// SarifPhysicalLocation represents a physical location in the code
type SarifPhysicalLocation struct {
	ArtifactLocation SarifArtifactLocation `json:"artifactLocation"`
	Region           *SarifRegion          `json:"region,omitempty"`
}

// SarifArtifactLocation represents the location of an artifact
type SarifArtifactLocation struct {
	URI string `json:"uri"`
}

// SarifRegion represents a region in the code
type SarifRegion struct {
	StartLine int `json:"startLine,omitempty"`
}

// SarifInvocation represents an invocation of the tool
type SarifInvocation struct {
	ExecutionSuccessful bool   `json:"executionSuccessful"`
	StartTimeUtc        string `json:"startTimeUtc"`
	EndTimeUtc          string `json:"endTimeUtc"`
}

// Version is reported as the SARIF driver version. Set by cmd from the build version.
var Version = "dev"

var sarifRules = []SarifRule{
	{
		ID:               "outdated-major",
		ShortDescription: SarifMessage{Text: "Major version update available"},
		FullDescription:  SarifMessage{Text: "A newer major version of this dependency exists, which may include breaking changes."},
		Help:             SarifMessage{Text: "Consider updating with caution and review the changelog for breaking changes."},
	},
	{
		ID:               "outdated-minor",
		ShortDescription: SarifMessage{Text: "Minor version update available"},
		FullDescription:  SarifMessage{Text: "A newer minor version of this dependency exists."},
		Help:             SarifMessage{Text: "Consider updating to get new features."},
	},
	{
		ID:               "outdated-patch",
		ShortDescription: SarifMessage{Text: "Patch update available"},
		FullDescription:  SarifMessage{Text: "A newer patch version of this dependency exists."},
		Help:             SarifMessage{Text: "Consider updating to get bug fixes."},
	},
	{
		ID:               "outdated",
		ShortDescription: SarifMessage{Text: "Outdated dependency"},
		FullDescription:  SarifMessage{Text: "VersionEye reports a newer version of this dependency."},
		Help:             SarifMessage{Text: "Update to the current version."},
	},
	{
		ID:               "unknown-version",
		ShortDescription: SarifMessage{Text: "Unknown current version"},
		FullDescription:  SarifMessage{Text: "VersionEye does not know the current version of this dependency."},
		Help:             SarifMessage{Text: "Check that the coordinates of the dependency are correct."},
	},
	{
		ID:               "license-whitelist",
		ShortDescription: SarifMessage{Text: "License whitelist violation"},
		FullDescription:  SarifMessage{Text: "A license of this dependency is not on the license whitelist."},
		Help:             SarifMessage{Text: "Replace the dependency or add its license to the whitelist."},
	},
	{
		ID:               "license-unknown",
		ShortDescription: SarifMessage{Text: "Unknown license"},
		FullDescription:  SarifMessage{Text: "No license is known for this dependency."},
		Help:             SarifMessage{Text: "Review the license of the dependency manually."},
	},
	{
		ID:               "security",
		ShortDescription: SarifMessage{Text: "Known security vulnerabilities"},
		FullDescription:  SarifMessage{Text: "This dependency has known security vulnerabilities."},
		Help:             SarifMessage{Text: "Update to a version without known vulnerabilities."},
	},
}

// sarifLevel is "error" for failing categories, otherwise the given level.
func sarifLevel(failing bool, otherwise string) string {
	if failing {
		return "error"
	}
	return otherwise
}

// GenerateSarifReport converts a classified report to SARIF format
func GenerateSarifReport(r *report.Report, failOn policy.FailSet, manifestPath string) ([]byte, error) {
	flags := policy.FlagsFor(r.Counts(), failOn)
	results := []SarifResult{}

	add := func(ruleID, level, text string) {
		results = append(results, SarifResult{
			RuleID:  ruleID,
			Level:   level,
			Message: SarifMessage{Text: text},
			Locations: []SarifLocation{
				{
					PhysicalLocation: SarifPhysicalLocation{
						ArtifactLocation: SarifArtifactLocation{URI: manifestPath},
					},
				},
			},
		})
	}

	for _, d := range r.Dependencies {
		switch {
		case d.UnknownVersion:
			add("unknown-version", sarifLevel(flags.Deps, "note"),
				fmt.Sprintf("%s: current version unknown", d.Name))
		case d.Outdated:
			ruleID := "outdated"
			if d.UpdateType != "" {
				ruleID = "outdated-" + d.UpdateType
			}
			add(ruleID, sarifLevel(flags.Deps, "warning"),
				fmt.Sprintf("%s: requested version %s, current version %s", d.Name, d.RequestedVersion, d.CurrentVersion))
		}

		if d.WhitelistViolations > 0 {
			add("license-whitelist", sarifLevel(flags.License, "warning"),
				fmt.Sprintf("%s: %d whitelist %s", d.Name, d.WhitelistViolations, Plural("violation", d.WhitelistViolations, "s")))
		}
		if d.UnknownLicenses > 0 {
			add("license-unknown", sarifLevel(flags.UnknownLicense, "note"),
				fmt.Sprintf("%s: %d %s", d.Name, d.UnknownLicenses, Plural("unknown license", d.UnknownLicenses, "s")))
		}
		if d.VulnerabilityCount > 0 {
			add("security", sarifLevel(flags.Security, "warning"),
				fmt.Sprintf("%s: %d %s", d.Name, d.VulnerabilityCount, Plural("known issue", d.VulnerabilityCount, "s")))
		}
	}

	now := time.Now().UTC()
	sarifReport := SarifReport{
		Schema:  "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json",
		Version: "2.1.0",
		Runs: []SarifRun{
			{
				Tool: SarifTool{
					Driver: SarifDriver{
						Name:           "versioneye-check",
						Version:        Version,
						InformationURI: "https://github.com/sambabib/versioneye-check",
						Rules:          sarifRules,
					},
				},
				Results: results,
				Invocations: []SarifInvocation{
					{
						ExecutionSuccessful: true,
						StartTimeUtc:        now.Add(-time.Second).Format(time.RFC3339),
						EndTimeUtc:          now.Format(time.RFC3339),
					},
				},
			},
		},
	}

	return json.MarshalIndent(sarifReport, "", "  ")
}
