package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sambabib/versioneye-check/pkg/config"
	"github.com/sambabib/versioneye-check/pkg/keystore"
	"github.com/sambabib/versioneye-check/pkg/logger"
	"github.com/sambabib/versioneye-check/pkg/manifest"
	"github.com/sambabib/versioneye-check/pkg/output"
	"github.com/sambabib/versioneye-check/pkg/runner"
	"github.com/spf13/cobra"
)

// Environment variables that override stored credentials and display flags.
const (
	envAPIKey     = "VERSIONEYE_API_KEY"
	envProjectKey = "VERSIONEYE_PROJECT_KEY"
	envColors     = "VERSIONEYE_COLORS"
	envVerbose    = "VERSIONEYE_VERBOSE"
	envQuiet      = "VERSIONEYE_QUIET"
)

var checkOpts struct {
	manifestPath string
	projectDir   string
	configPath   string
	format       string

	name       string
	baseURL    string
	org        string
	team       string
	visibility string
	failOn     []string
	colors     bool
	quiet      bool
	verbose    bool
	temp       bool
	strict     bool
}

// checkCmd represents the check subcommand
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Upload the manifest and check dependencies",
	Long:  "Upload the project's dependency manifest to VersionEye, print outdated dependencies, license and security findings, and fail according to the configured fail set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFile(checkOpts.projectDir); err != nil {
			return err
		}

		cfg, err := loadCheckConfig(cmd)
		if err != nil {
			return err
		}

		data, err := manifest.Load(checkOpts.manifestPath)
		if err != nil {
			return err
		}

		in := runner.Input{
			ProjectName: manifest.ProjectName(checkOpts.manifestPath, data),
			Manifest:    data,
			ProjectDir:  checkOpts.projectDir,
			Overrides: keystore.Credentials{
				APIKey:    os.Getenv(envAPIKey),
				ProjectID: os.Getenv(envProjectKey),
			},
		}

		res := runner.New().Run(cmd.Context(), in, cfg)
		logger.Debugf("VersionEye: %s", runner.Describe(res.Err))

		if res.Report != nil {
			switch checkOpts.format {
			case "json":
				out, err := output.GenerateJSONReport(res.Report, cfg.FailSet(), cfg.ProjectURL(res.Report.ProjectID))
				if err != nil {
					return fmt.Errorf("failed to marshal report to JSON: %w", err)
				}
				fmt.Println(string(out))
			case "sarif":
				out, err := output.GenerateSarifReport(res.Report, cfg.FailSet(), checkOpts.manifestPath)
				if err != nil {
					return fmt.Errorf("failed to marshal report to SARIF: %w", err)
				}
				fmt.Println(string(out))
			default:
				for _, line := range res.Lines {
					logger.Infof("%s", line)
				}
			}
		}

		if !res.Success {
			return res.Err
		}
		return nil
	},
}

// loadEnvFile exports the variables of a .env file in the project directory.
// Variables already set in the environment win.
func loadEnvFile(projectDir string) error {
	path := filepath.Join(projectDir, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	logger.Debugf("Loaded environment from %s", path)
	return nil
}

// loadCheckConfig reads the config file, then applies flags and environment overrides.
func loadCheckConfig(cmd *cobra.Command) (*config.Config, error) {
	switch checkOpts.format {
	case "text", "json", "sarif":
	default:
		return nil, fmt.Errorf("unsupported output format %q (use text, json or sarif)", checkOpts.format)
	}

	var (
		cfg *config.Config
		err error
	)
	if checkOpts.configPath != "" {
		cfg, err = config.LoadConfig(checkOpts.configPath)
	} else {
		cfg, err = config.FindAndLoadConfig(checkOpts.projectDir)
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		cfg.Name = checkOpts.name
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = checkOpts.baseURL
	}
	if flags.Changed("org") {
		cfg.Org = checkOpts.org
	}
	if flags.Changed("team") {
		cfg.Team = checkOpts.team
	}
	if flags.Changed("visibility") {
		cfg.Visibility = config.Visibility(checkOpts.visibility)
	}
	if flags.Changed("fail-on") {
		cfg.FailOn = checkOpts.failOn
		if cfg.FailOn == nil {
			cfg.FailOn = []string{}
		}
	}
	if flags.Changed("colors") {
		cfg.Colors = checkOpts.colors
	}
	if flags.Changed("quiet") {
		cfg.Quiet = checkOpts.quiet
	}
	if flags.Changed("verbose") {
		cfg.Verbose = checkOpts.verbose
	}
	if flags.Changed("temp") {
		cfg.Temp = checkOpts.temp
	}
	if flags.Changed("strict") {
		cfg.Strict = checkOpts.strict
	}

	for env, target := range map[string]*bool{envColors: &cfg.Colors, envVerbose: &cfg.Verbose, envQuiet: &cfg.Quiet} {
		if v, ok := os.LookupEnv(env); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("invalid value %q for %s: %w", v, env, err)
			}
			*target = b
		}
	}

	if checkOpts.format != "text" {
		// Machine output goes to stdout, keep it free of summary lines.
		cfg.Quiet = true
	}
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
	f := checkCmd.Flags()
	f.StringVarP(&checkOpts.manifestPath, "manifest", "m", "pom.xml", "Path to the dependency manifest to upload")
	f.StringVarP(&checkOpts.projectDir, "dir", "d", ".", "Project directory holding "+keystore.FileName)
	f.StringVarP(&checkOpts.configPath, "config", "c", "", "Path to config file (default: "+config.FileName+" in the project directory or its parents)")
	f.StringVarP(&checkOpts.format, "format", "f", "text", "Output format: text, json or sarif")
	f.StringVar(&checkOpts.name, "name", "", "Project name shown on VersionEye")
	f.StringVar(&checkOpts.baseURL, "base-url", config.DefaultBaseURL, "VersionEye base URL")
	f.StringVar(&checkOpts.org, "org", "", "VersionEye organisation")
	f.StringVar(&checkOpts.team, "team", "", "VersionEye team, requires --org")
	f.StringVar(&checkOpts.visibility, "visibility", "public", "Project visibility: public or private")
	f.StringSliceVar(&checkOpts.failOn, "fail-on", []string{"security"}, "Categories that fail the build: dependencies, licenses, licensesUnknown, security")
	f.BoolVar(&checkOpts.colors, "colors", true, "Color the summary")
	f.BoolVarP(&checkOpts.quiet, "quiet", "q", false, "Print nothing, only set the exit code")
	f.BoolVarP(&checkOpts.verbose, "verbose", "v", true, "Print one line per finding")
	f.BoolVar(&checkOpts.temp, "temp", false, "Create a temporary project and do not store its id")
	f.BoolVar(&checkOpts.strict, "strict", false, "Fail on configuration, network and server errors too")
}
