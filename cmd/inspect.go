// File: cmd/inspect.go
package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/extjswd/internal/config"
	"github.com/xkilldash9x/extjswd/internal/observability"
)

func newInspectCmd() *cobra.Command {
	var format string
	inspectCmd := &cobra.Command{
		Use:   "inspect URL",
		Short: "Report the type and state of every ExtJS form field on a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd.Context())
			if err != nil {
				return err
			}
			return runInspect(cmd.Context(), cfg, args[0], format, cmd.OutOrStdout())
		},
	}
	inspectCmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text or json")
	return inspectCmd
}

func runInspect(ctx context.Context, cfg config.Interface, url, format string, out io.Writer) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	logger := observability.GetLogger().Named("inspect")

	s, fields, err := openPage(ctx, cfg, url, logger)
	if err != nil {
		return err
	}
	defer closeScenario(ctx, s, logger)

	return writeReports(out, format, collectReports(ctx, fields))
}
