package cmd

import (
	"fmt"
	"os"

	"github.com/sambabib/versioneye-check/pkg/logger"
	"github.com/sambabib/versioneye-check/pkg/output"
	"github.com/spf13/cobra"
)

// Version is set during build using ldflags
var Version = "dev"

var logLevel int

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "versioneye",
	Short:   "Checks project dependencies on VersionEye",
	Long:    `versioneye uploads a project's dependency manifest to VersionEye and fails the build on outdated dependencies, license violations or known security vulnerabilities.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetLevel(logLevel)
		output.Version = Version
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVar(&logLevel, "log-level", logger.DefaultLevel, "Log level, values above 1 print details and debug output")
}
