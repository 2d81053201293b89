package output

import (
	"strings"
	"testing"

	"github.com/sambabib/versioneye-check/pkg/config"
	"github.com/sambabib/versioneye-check/pkg/logger"
	"github.com/sambabib/versioneye-check/pkg/policy"
	"github.com/sambabib/versioneye-check/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlural(t *testing.T) {
	assert.Equal(t, "foo", Plural("foo", 0, "s"))
	assert.Equal(t, "foo", Plural("foo", 1, "s"))
	assert.Equal(t, "foos", Plural("foo", 2, "s"))

	assert.Equal(t, "vulnerability", Plural("vulnerabilit", 0, "ies", "y"))
	assert.Equal(t, "vulnerability", Plural("vulnerabilit", 1, "ies", "y"))
	assert.Equal(t, "vulnerabilities", Plural("vulnerabilit", 2, "ies", "y"))
}

func TestAlt(t *testing.T) {
	assert.Equal(t, "", Alt(false))
	assert.Equal(t, " [FAILED]", Alt(true))
}

func TestRedLight(t *testing.T) {
	text := "This is a test"
	assert.Equal(t, Red+text+Reset, RedLight(text, 1, true, true))
	assert.Equal(t, Yellow+text+Reset, RedLight(text, 1, false, true))
	assert.Equal(t, Green+text+Reset, RedLight(text, 0, false, true))
	assert.Equal(t, Green+text+Reset, RedLight(text, 0, true, true), "zero count is never red")
	assert.Equal(t, text, RedLight(text, 1, true, false))
}

func testConfig(t *testing.T, colors, verbose bool) *config.Config {
	cfg := config.DefaultConfig()
	cfg.BaseURL = "https://www.versioneye.com"
	cfg.Colors = colors
	cfg.Verbose = verbose
	require.NoError(t, cfg.Validate())
	return cfg
}

func sampleReport() *report.Report {
	return &report.Report{
		ProjectID:             "42",
		DepCount:              10,
		OutdatedCount:         2,
		LicenseViolationCount: 0,
		UnknownLicenseCount:   1,
		VulnerabilityCount:    0,
		Dependencies: []report.DependencyFinding{
			{Name: "a", CurrentVersion: "2.0", Outdated: true},
			{Name: "b", UnknownVersion: true, UnknownLicenses: 1},
			{Name: "c", CurrentVersion: "1.0", HasSecurityInfo: true},
		},
	}
}

func TestRender_Quiet(t *testing.T) {
	cfg := testConfig(t, false, true)
	cfg.Quiet = true
	assert.Nil(t, Render(sampleReport(), policy.Flags{}, cfg, true))
}

func TestRender_SummaryNoColors(t *testing.T) {
	cfg := testConfig(t, false, false)
	r := sampleReport()
	flags := policy.FlagsFor(r.Counts(), policy.NewFailSet(policy.LicensesUnknown))

	lines := Render(r, flags, cfg, false)
	assert.Equal(t, []string{
		"  Dependencies: 2 outdated, 1 unknown of 10 total",
		"  Licenses: 0 whitelist, 1 unknown [FAILED]",
		"  Security: 0 vulnerability",
		"  View more at: https://www.versioneye.com/user/projects/42",
	}, lines)
}

func TestRender_VerboseDetails(t *testing.T) {
	cfg := testConfig(t, false, true)
	r := sampleReport()
	flags := policy.FlagsFor(r.Counts(), policy.NewFailSet(policy.Dependencies))

	lines := Render(r, flags, cfg, true)
	assert.Equal(t, []string{
		"  Dependencies: 2 outdated, 1 unknown of 10 total [FAILED]",
		"    - a -> 2.0 [FAILED]",
		"    - b -> unknown version [FAILED]",
		"  Licenses: 0 whitelist, 1 unknown",
		"    - b: 1 unknown license",
		"  Security: 0 vulnerability",
		"    - c: 0 known issue",
		"  View more at: https://www.versioneye.com/user/projects/42",
	}, lines)
}

func TestRender_Colors(t *testing.T) {
	cfg := testConfig(t, true, true)
	r := sampleReport()
	r.VulnerabilityCount = 3
	r.Dependencies[2].VulnerabilityCount = 3
	flags := policy.FlagsFor(r.Counts(), policy.DefaultFailSet())

	lines := Render(r, flags, cfg, true)
	for _, line := range lines {
		assert.NotContains(t, line, FailedSuffix)
	}
	assert.Equal(t, "  Dependencies: "+Yellow+"2"+Reset+" outdated, "+Yellow+"1"+Reset+" unknown of 10 total", lines[0])
	assert.Contains(t, lines, "  Security: "+Red+"3"+Reset+" vulnerabilities")
	assert.Contains(t, lines, Red+"    - c: 3 known issues"+Reset)
	assert.Contains(t, lines, "  Licenses: "+Green+"0"+Reset+" whitelist, "+Yellow+"1"+Reset+" unknown")
}

func TestRender_FailSuffixOnlyOnFailingLines(t *testing.T) {
	cfg := testConfig(t, false, true)
	r := &report.Report{
		ProjectID: "1",
		DepCount:  3,
		Dependencies: []report.DependencyFinding{
			{Name: "x", CurrentVersion: "1.0", HasSecurityInfo: true},
		},
	}
	all := policy.NewFailSet(policy.Dependencies, policy.Licenses, policy.LicensesUnknown, policy.Security)

	lines := Render(r, policy.FlagsFor(r.Counts(), all), cfg, true)
	for _, line := range lines {
		assert.NotContains(t, line, "[FAILED]", "zero counts never fail")
	}

	r.VulnerabilityCount = 2
	r.Dependencies[0].VulnerabilityCount = 2
	lines = Render(r, policy.FlagsFor(r.Counts(), all), cfg, true)
	assert.Equal(t, "  Security: 2 vulnerabilities [FAILED]", lines[2])
	assert.Equal(t, 1, strings.Count(lines[2], "[FAILED]"))
	assert.Equal(t, "    - x: 2 known issues [FAILED]", lines[3])
}

// Every line marked as failing must come from a category whose flag is set.
func TestRender_AgreesWithPolicy(t *testing.T) {
	cfg := testConfig(t, false, true)
	sets := []policy.FailSet{
		policy.NewFailSet(),
		policy.DefaultFailSet(),
		policy.NewFailSet(policy.Dependencies),
		policy.NewFailSet(policy.Licenses, policy.LicensesUnknown),
		policy.NewFailSet(policy.Dependencies, policy.Licenses, policy.LicensesUnknown, policy.Security),
	}
	r := sampleReport()
	r.VulnerabilityCount = 1
	r.Dependencies[2].VulnerabilityCount = 1

	for _, s := range sets {
		flags := policy.FlagsFor(r.Counts(), s)
		lines := Render(r, flags, cfg, true)
		anyFailed := false
		for _, line := range lines {
			if strings.HasSuffix(line, FailedSuffix) {
				anyFailed = true
			}
		}
		assert.Equal(t, flags.Failed(), anyFailed, "fail set %s", s)
		assert.Equal(t, flags.Failed(), policy.Evaluate(r.Counts(), s))
	}
}

func TestIsVerbose(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Verbose = false
	assert.False(t, IsVerbose(cfg))

	logger.SetLevel(logger.DefaultLevel + 1)
	defer logger.SetLevel(logger.DefaultLevel)
	assert.True(t, IsVerbose(cfg))

	logger.SetLevel(logger.DefaultLevel)
	cfg.Verbose = true
	assert.True(t, IsVerbose(cfg))
}
