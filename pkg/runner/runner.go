// Package runner ties the key store, client, policy and renderer into one check.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sambabib/versioneye-check/pkg/client"
	"github.com/sambabib/versioneye-check/pkg/config"
	"github.com/sambabib/versioneye-check/pkg/keystore"
	"github.com/sambabib/versioneye-check/pkg/logger"
	"github.com/sambabib/versioneye-check/pkg/output"
	"github.com/sambabib/versioneye-check/pkg/policy"
	"github.com/sambabib/versioneye-check/pkg/report"
)

// Submitter sends a manifest for analysis. *client.Client implements it.
type Submitter interface {
	Submit(ctx context.Context, name string, manifest []byte, creds keystore.Credentials, cfg *config.Config) (*report.Report, error)
}

// Input is what the build hands over for one check.
type Input struct {
	ProjectName string
	Manifest    []byte
	ProjectDir  string

	// Overrides replace the stored credentials when non-blank and are saved with them.
	Overrides keystore.Credentials
}

// Result is the outcome of a check.
type Result struct {
	Success  bool
	Lines    []string
	Warnings []string
	Report   *report.Report
	Flags    policy.Flags
	Err      error // non-policy error that was downgraded or caused failure
}

// PolicyFailure is set as Result.Err when findings breach the fail set.
type PolicyFailure struct {
	Flags policy.Flags
}

func (e *PolicyFailure) Error() string {
	var failed []string
	if e.Flags.Deps {
		failed = append(failed, "outdated dependencies")
	}
	if e.Flags.License {
		failed = append(failed, "license whitelist violations")
	}
	if e.Flags.UnknownLicense {
		failed = append(failed, "unknown licenses")
	}
	if e.Flags.Security {
		failed = append(failed, "security vulnerabilities")
	}
	return "VersionEye check failed: " + strings.Join(failed, ", ")
}

// Runner runs checks. It holds no per-run state.
type Runner struct {
	Submitter Submitter
}

// New creates a runner using the default HTTP client.
func New() *Runner {
	return &Runner{Submitter: client.New()}
}

// Run submits the manifest and evaluates the report. Configuration, transport and
// remote errors produce a warning and a successful result unless cfg.Strict is set.
// Only a policy failure makes the result unsuccessful in lenient mode.
// Run validates a copy of cfg and leaves the caller's value unchanged.
func (r *Runner) Run(ctx context.Context, in Input, cfg *config.Config) Result {
	var res Result

	warn := func(message string) {
		res.Warnings = append(res.Warnings, message)
	}
	ctx = client.WithWarnCallback(ctx, warn)

	degrade := func(err error) Result {
		logger.Warnf("%v", err)
		warn(err.Error())
		res.Err = err
		res.Success = !cfg.Strict
		return res
	}

	validated := *cfg
	if err := validated.Validate(); err != nil {
		return degrade(err)
	}
	cfg = &validated

	store, err := keystore.Open(keystore.PathFor(in.ProjectDir))
	if err != nil {
		return degrade(err)
	}

	if key := strings.TrimSpace(in.Overrides.APIKey); key != "" {
		store.SetAPIKey(key)
	}
	if id := strings.TrimSpace(in.Overrides.ProjectID); id != "" {
		store.SetProjectID(id)
	}

	creds := store.Credentials()
	if creds.APIKey == "" {
		return degrade(&config.Error{Field: keystore.APIKeyProperty, Reason: "is missing, please provide a valid VersionEye API key"})
	}

	name := in.ProjectName
	if strings.TrimSpace(cfg.Name) != "" {
		name = cfg.Name
	}

	rep, submitErr := r.Submitter.Submit(ctx, name, in.Manifest, creds, cfg)
	if submitErr == nil && creds.ProjectID == "" && !cfg.Temp && rep.ProjectID != "" {
		store.SetProjectID(rep.ProjectID)
		logger.Debugf("VersionEye: new project id %s", rep.ProjectID)
	}

	if err := store.Save(); err != nil {
		logger.Errorf("%v", err)
		warn(err.Error())
	}

	if submitErr != nil {
		return degrade(submitErr)
	}

	res.Report = rep
	res.Flags = policy.FlagsFor(rep.Counts(), cfg.FailSet())
	res.Lines = output.Render(rep, res.Flags, cfg, output.IsVerbose(cfg))
	res.Success = !res.Flags.Failed()
	if !res.Success {
		res.Err = &PolicyFailure{Flags: res.Flags}
	}
	return res
}

// IsPolicyFailure reports whether err is a policy failure.
func IsPolicyFailure(err error) bool {
	var pf *PolicyFailure
	return errors.As(err, &pf)
}

// Describe gives a short label for the kind of error, for logs.
func Describe(err error) string {
	var (
		cfgErr       *config.Error
		transportErr *client.TransportError
		remoteErr    *client.RemoteError
	)
	switch {
	case err == nil:
		return "ok"
	case IsPolicyFailure(err):
		return "policy failure"
	case errors.As(err, &cfgErr):
		return "configuration error"
	case errors.As(err, &transportErr):
		return "transport error"
	case errors.As(err, &remoteErr):
		return fmt.Sprintf("remote error (%d)", remoteErr.StatusCode)
	default:
		return "error"
	}
}
