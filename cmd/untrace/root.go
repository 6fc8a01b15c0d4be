package main

import (
	"fmt"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	untrace "github.com/untrace-dev/untrace-go"
	"github.com/untrace-dev/untrace-go/core"
)

type globalFlags struct {
	file    string
	envFile string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "untrace",
		Short: "Inspect and test the Untrace SDK configuration",
		Long: `untrace resolves the SDK configuration the same way an instrumented
application does: defaults, then UNTRACE_* environment variables, then an
optional config file.

Examples:
  # Show the resolved configuration
  untrace config

  # Check which providers will be traced
  untrace providers

  # Send a test span and wait for it to be exported
  untrace ping --timeout 10s`,
		Version:       untrace.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flags.envFile == "" {
				return nil
			}
			// Variables already set in the environment win over the file.
			if err := godotenv.Load(flags.envFile); err != nil {
				return fmt.Errorf("failed to load env file: %w", err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&flags.file, "file", "f", "", "config file (.yaml, .yml or .json) applied over the environment")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "dotenv file loaded before the environment is read")

	root.AddCommand(
		newConfigCmd(flags),
		newProvidersCmd(flags),
		newPingCmd(flags),
		newVersionCmd(),
	)
	return root
}

// loadConfig resolves defaults, environment and the --file flag without
// validating, so callers can show an invalid configuration.
func loadConfig(flags *globalFlags) (*core.Config, error) {
	cfg := core.DefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	if flags.file != "" {
		if err := cfg.LoadFromFile(flags.file); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", untrace.Name, untrace.Version)
			fmt.Fprintf(out, "Git Commit: %s\n", untrace.GitCommit)
			fmt.Fprintf(out, "Build Date: %s\n", untrace.BuildDate)
			fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
		},
	}
}
