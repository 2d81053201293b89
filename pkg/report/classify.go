package report

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Classify turns a raw response into a Report. It has no side effects, so classifying
// the same response twice gives equal results. Dependency order is kept as received.
func Classify(resp *Response) *Report {
	r := &Report{
		ProjectID:             strings.TrimSpace(string(resp.ID)),
		DepCount:              resp.DepNumber,
		OutdatedCount:         resp.OutNumber,
		LicenseViolationCount: resp.LicensesRed,
		UnknownLicenseCount:   resp.LicensesUnknown,
		VulnerabilityCount:    resp.SvCount,
		Dependencies:          make([]DependencyFinding, 0, len(resp.Dependencies)),
	}

	for _, dep := range resp.Dependencies {
		r.Dependencies = append(r.Dependencies, classifyDependency(dep))
	}

	return r
}

func classifyDependency(dep Dependency) DependencyFinding {
	f := DependencyFinding{
		Name:             dep.Name,
		RequestedVersion: dep.VersionRequested,
	}

	if dep.VersionCurrent == nil {
		f.UnknownVersion = true
	} else {
		f.CurrentVersion = *dep.VersionCurrent
		if dep.Outdated {
			f.Outdated = true
			f.UpdateType = updateType(dep.VersionRequested, f.CurrentVersion)
		}
	}

	if len(dep.Licenses) > 0 {
		for _, l := range dep.Licenses {
			if l.OnWhitelist.isFalse() && !l.OnCwl.isTrue() {
				f.WhitelistViolations++
			}
		}
	} else {
		f.UnknownLicenses = 1
	}

	if dep.Vulnerabilities != nil {
		f.HasSecurityInfo = true
		f.VulnerabilityCount = len(dep.Vulnerabilities)
	}

	return f
}

// updateType compares the requested and current versions. It returns "" when either
// version is not valid semver or the requested version is not behind.
func updateType(requested, current string) string {
	req, err := semver.NewVersion(requested)
	if err != nil {
		return ""
	}
	cur, err := semver.NewVersion(current)
	if err != nil {
		return ""
	}
	if !req.LessThan(cur) {
		return ""
	}

	switch {
	case req.Major() < cur.Major():
		return "major"
	case req.Minor() < cur.Minor():
		return "minor"
	default:
		return "patch"
	}
}
