package output

import (
	"encoding/json"

	"github.com/sambabib/versioneye-check/pkg/policy"
	"github.com/sambabib/versioneye-check/pkg/report"
)

// JSONReport is the machine readable result of a check
type JSONReport struct {
	Success    bool           `json:"success"`
	FailOn     []string       `json:"fail_on"`
	Failed     []string       `json:"failed"` // categories that failed the build
	ProjectURL string         `json:"project_url"`
	Report     *report.Report `json:"report"`
}

// GenerateJSONReport converts a classified report to JSON format
func GenerateJSONReport(r *report.Report, failOn policy.FailSet, projectURL string) ([]byte, error) {
	flags := policy.FlagsFor(r.Counts(), failOn)

	out := JSONReport{
		Success:    !flags.Failed(),
		FailOn:     []string{},
		Failed:     failedCategories(flags),
		ProjectURL: projectURL,
		Report:     r,
	}
	for _, c := range failOn.Categories() {
		out.FailOn = append(out.FailOn, c.String())
	}

	return json.MarshalIndent(out, "", "  ")
}

func failedCategories(flags policy.Flags) []string {
	failed := []string{}
	if flags.Deps {
		failed = append(failed, policy.Dependencies.String())
	}
	if flags.UnknownLicense {
		failed = append(failed, policy.LicensesUnknown.String())
	}
	if flags.License {
		failed = append(failed, policy.Licenses.String())
	}
	if flags.Security {
		failed = append(failed, policy.Security.String())
	}
	return failed
}
