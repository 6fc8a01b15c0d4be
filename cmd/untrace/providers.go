package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/untrace-dev/untrace-go/core"
	"github.com/untrace-dev/untrace-go/providers"
)

func newProvidersCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List LLM providers and whether they will be traced",
		Long: `List the built-in providers after applying the configured selection
(UNTRACE_PROVIDERS), and whether credentials for each were found in the
environment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			registry := providers.NewRegistry(&core.NoOpLogger{})
			registry.RegisterDefaults()
			registry.ApplySelection(cfg.Providers)

			detected := make(map[string]bool)
			for _, name := range providers.DetectCredentials() {
				detected[name] = true
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVERSION\tENABLED\tCREDENTIALS")
			for _, p := range registry.All() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.Version, yesNo(p.Enabled), yesNo(detected[p.Name]))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nselection: %s\n", strings.Join(cfg.Providers, ","))
			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
