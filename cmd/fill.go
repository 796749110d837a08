// File: cmd/fill.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/extjswd/internal/config"
	"github.com/xkilldash9x/extjswd/internal/extjs"
	"github.com/xkilldash9x/extjswd/internal/observability"
)

func newFillCmd() *cobra.Command {
	var format string
	fillCmd := &cobra.Command{
		Use:   "fill URL",
		Short: "Put a plausible value into every ExtJS form field on a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd.Context())
			if err != nil {
				return err
			}
			return runFill(cmd.Context(), cfg, args[0], format, cmd.OutOrStdout())
		},
	}
	fillCmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text or json")
	return fillCmd
}

func runFill(ctx context.Context, cfg config.Interface, url, format string, out io.Writer) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	logger := observability.GetLogger().Named("fill")

	s, fields, err := openPage(ctx, cfg, url, logger)
	if err != nil {
		return err
	}
	defer closeScenario(ctx, s, logger)

	outcomes, err := fillFields(ctx, fields, newLimiter(cfg.Fill().ActionsPerSecond), logger)
	if err != nil {
		return err
	}
	if err := s.WaitUntilAjaxLoadingDone(ctx); err != nil {
		logger.Warn("AJAX activity still pending after fill", zap.Error(err))
	}

	reports := collectReports(ctx, fields)
	applyOutcomes(reports, outcomes)
	return writeReports(out, format, reports)
}

// newLimiter paces field actions. Zero or less means no pacing.
func newLimiter(actionsPerSecond float64) *rate.Limiter {
	if actionsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(actionsPerSecond), 1)
}

type fillOutcome struct {
	skipped bool
	err     error
}

// fillFields fills each field in document order. Per field failures are
// recorded and do not stop the run; only cancellation does.
func fillFields(ctx context.Context, fields []*extjs.Element, limiter *rate.Limiter, logger *zap.Logger) ([]fillOutcome, error) {
	outcomes := make([]fillOutcome, len(fields))
	for i, field := range fields {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("fill interrupted at field %d: %w", i, err)
		}

		err := field.FillFieldWithRandomValue(ctx)
		switch {
		case err == nil:
			logger.Debug("Field filled", zap.Int("index", i))
		case errors.Is(err, extjs.ErrUnsupportedFieldType):
			outcomes[i].skipped = true
			logger.Debug("Field skipped", zap.Int("index", i), zap.Error(err))
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			outcomes[i].err = err
			logger.Warn("Field could not be filled", zap.Int("index", i), zap.Error(err))
		}
	}
	return outcomes, nil
}

func applyOutcomes(reports []FieldReport, outcomes []fillOutcome) {
	for i := range reports {
		if i >= len(outcomes) {
			return
		}
		reports[i].Skipped = outcomes[i].skipped
		if err := outcomes[i].err; err != nil && reports[i].Error == "" {
			reports[i].Error = err.Error()
		}
	}
}
