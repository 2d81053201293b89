package output

import (
	"fmt"
	"strconv"

	"github.com/sambabib/versioneye-check/pkg/config"
	"github.com/sambabib/versioneye-check/pkg/logger"
	"github.com/sambabib/versioneye-check/pkg/policy"
	"github.com/sambabib/versioneye-check/pkg/report"
)

// ANSI escape sequences
const (
	Red    = "\u001B[31m"
	Green  = "\u001B[32m"
	Yellow = "\u001B[33m"
	Reset  = "\u001B[0m"
)

// FailedSuffix marks a failing line when colors are off.
const FailedSuffix = " [FAILED]"

// Plural appends plural when count > 1, otherwise the optional singular suffix.
func Plural(text string, count int, plural string, singular ...string) string {
	if count > 1 {
		return text + plural
	}
	if len(singular) > 0 {
		return text + singular[0]
	}
	return text
}

// Alt returns the failure suffix used instead of red.
func Alt(failed bool) string {
	if failed {
		return FailedSuffix
	}
	return ""
}

// RedLight colors text green for a zero count, yellow for a nonzero count and red
// when the count is nonzero and failing. Without colors the text is returned as is.
func RedLight(text string, count int, fail, colors bool) string {
	if !colors {
		return text
	}
	switch {
	case fail && count > 0:
		return Red + text + Reset
	case count > 0:
		return Yellow + text + Reset
	default:
		return Green + text + Reset
	}
}

// IsVerbose is true when the config asks for details or the log level is raised.
func IsVerbose(cfg *config.Config) bool {
	return cfg.Verbose || logger.Level() > logger.DefaultLevel
}

// Render builds the summary. It returns nil when the config is quiet.
func Render(r *report.Report, flags policy.Flags, cfg *config.Config, verbose bool) []string {
	if cfg.Quiet {
		return nil
	}

	var deps, licenses, security []string

	// detail renders one finding line; fail is the category flag, so a finding is only
	// red when the whole category fails.
	detail := func(text string, count int, fail bool) string {
		failing := fail && count > 0
		line := RedLight("    - "+text, count, failing, cfg.Colors)
		if !cfg.Colors {
			line += Alt(failing)
		}
		return line
	}

	for _, d := range r.Dependencies {
		if d.UnknownVersion {
			deps = append(deps, detail(d.Name+" -> unknown version", 1, flags.Deps))
		} else if d.Outdated {
			deps = append(deps, detail(d.Name+" -> "+d.CurrentVersion, 1, flags.Deps))
		}

		if d.WhitelistViolations > 0 {
			licenses = append(licenses, detail(fmt.Sprintf("%s: %d whitelist %s", d.Name, d.WhitelistViolations,
				Plural("violation", d.WhitelistViolations, "s")), d.WhitelistViolations, flags.License))
		}
		if d.UnknownLicenses > 0 {
			licenses = append(licenses, detail(fmt.Sprintf("%s: %d %s", d.Name, d.UnknownLicenses,
				Plural("unknown license", d.UnknownLicenses, "s")), d.UnknownLicenses, flags.UnknownLicense))
		}

		if d.HasSecurityInfo {
			security = append(security, detail(fmt.Sprintf("%s: %d %s", d.Name, d.VulnerabilityCount,
				Plural("known issue", d.VulnerabilityCount, "s")), d.VulnerabilityCount, flags.Security))
		}
	}

	light := func(count int, fail bool) string {
		return RedLight(strconv.Itoa(count), count, fail, cfg.Colors)
	}
	suffix := func(fail bool) string {
		if cfg.Colors {
			return ""
		}
		return Alt(fail)
	}

	unknownVersions := r.UnknownVersionCount()
	lines := []string{
		"  Dependencies: " + light(r.OutdatedCount, flags.Deps) + " outdated, " +
			light(unknownVersions, flags.Deps) + " unknown of " + strconv.Itoa(r.DepCount) + " total" +
			suffix(flags.Deps),
	}
	if verbose {
		lines = append(lines, deps...)
	}

	lines = append(lines, "  Licenses: "+light(r.LicenseViolationCount, flags.License)+" whitelist, "+
		light(r.UnknownLicenseCount, flags.UnknownLicense)+Plural(" unknown", r.UnknownLicenseCount, "s")+
		suffix(flags.License || flags.UnknownLicense))
	if verbose {
		lines = append(lines, licenses...)
	}

	lines = append(lines, "  Security: "+light(r.VulnerabilityCount, flags.Security)+" "+
		Plural("vulnerabilit", r.VulnerabilityCount, "ies", "y")+suffix(flags.Security))
	if verbose {
		lines = append(lines, security...)
	}

	return append(lines, "  View more at: "+cfg.ProjectURL(r.ProjectID))
}
