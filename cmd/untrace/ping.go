package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	untrace "github.com/untrace-dev/untrace-go"
	"github.com/untrace-dev/untrace-go/core"
	"github.com/untrace-dev/untrace-go/telemetry"
)

func newPingCmd(flags *globalFlags) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Send one test span to the configured endpoint",
		Long: `Initialize the SDK from the environment (and --file), record a single
LLM span and wait until it has been exported. Fails if the endpoint rejects
the export or the timeout expires.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []core.Option
			if flags.file != "" {
				opts = append(opts, core.WithConfigFile(flags.file))
			}
			u, err := untrace.InitFromEnv(opts...)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			_, span := u.Tracer().StartLLMSpan(ctx, "untrace.ping", untrace.LLMSpanOptions{
				Provider:  "untrace",
				Model:     "ping",
				Operation: untrace.OperationCompletion,
			})
			traceID := span.SpanContext().TraceID().String()
			telemetry.RecordLLMResult(span, untrace.LLMResult{RequestID: "ping"})
			span.End()

			flushErr := u.Flush(ctx)
			shutdownErr := u.Shutdown(ctx)
			if flushErr != nil {
				return fmt.Errorf("export failed: %w", flushErr)
			}
			if shutdownErr != nil {
				return fmt.Errorf("shutdown failed: %w", shutdownErr)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "sent trace %s to %s\n", traceID, u.Config().BaseURL)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "how long to wait for the export")
	return cmd
}
