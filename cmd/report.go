// File: cmd/report.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/extjswd/internal/browser"
	"github.com/xkilldash9x/extjswd/internal/config"
	"github.com/xkilldash9x/extjswd/internal/extjs"
	"github.com/xkilldash9x/extjswd/internal/scenario"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	formatText = "text"
	formatJSON = "json"
)

// FieldReport is the state of one form field as the inspect and fill
// commands print it.
type FieldReport struct {
	Index    int                 `json:"index"`
	Tag      string              `json:"tag"`
	Type     extjs.FormFieldType `json:"type"`
	Name     string              `json:"name,omitempty"`
	Value    string              `json:"value"`
	Checked  bool                `json:"checked"`
	Enabled  bool                `json:"enabled"`
	Required bool                `json:"required"`
	Skipped  bool                `json:"skipped,omitempty"`
	Error    string              `json:"error,omitempty"`
}

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (want %s or %s)", format, formatText, formatJSON)
	}
}

// collectReports reads every field. A field that fails to read still gets a
// row carrying the error.
func collectReports(ctx context.Context, fields []*extjs.Element) []FieldReport {
	reports := make([]FieldReport, 0, len(fields))
	for i, field := range fields {
		r := FieldReport{Index: i, Tag: field.TagName()}
		if err := readField(ctx, field, &r); err != nil {
			r.Error = err.Error()
		}
		reports = append(reports, r)
	}
	return reports
}

func readField(ctx context.Context, field *extjs.Element, r *FieldReport) error {
	var err error
	if r.Type, _, err = field.ResolveFormFieldType(ctx); err != nil {
		return err
	}
	if r.Name, err = field.Attribute(ctx, "name"); err != nil {
		return err
	}
	if r.Value, err = field.Value(ctx); err != nil {
		return err
	}
	if r.Checked, err = field.FieldChecked(ctx); err != nil {
		return err
	}
	if r.Enabled, err = field.IsEnabled(ctx); err != nil {
		return err
	}
	r.Required, err = field.IsRequired(ctx)
	if errors.Is(err, extjs.ErrNoSuchElement) {
		// No inner input to carry the marker.
		r.Required, err = false, nil
	}
	return err
}

func writeReports(w io.Writer, format string, reports []FieldReport) error {
	if format == formatJSON {
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tTAG\tTYPE\tNAME\tVALUE\tCHECKED\tENABLED\tREQUIRED\tNOTE")
	for _, r := range reports {
		note := r.Error
		if r.Skipped && note == "" {
			note = "skipped"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Index, r.Tag, r.Type, dash(r.Name), dash(strconv.Quote(r.Value)),
			yesNo(r.Checked), yesNo(r.Enabled), yesNo(r.Required), dash(note))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" || s == `""` {
		return "-"
	}
	return strings.ReplaceAll(s, "\t", " ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// openPage starts the scenario, loads url and returns the fields matched by
// the configured selector once AJAX activity has settled.
func openPage(ctx context.Context, cfg config.Interface, url string, logger *zap.Logger) (*scenario.Scenario, []*extjs.Element, error) {
	s, err := scenario.Init(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	fields, err := loadFields(ctx, s, cfg.ExtJS().FieldSelector, url)
	if err != nil {
		closeScenario(ctx, s, logger)
		return nil, nil, err
	}
	logger.Info("Page loaded", zap.String("url", url), zap.Int("fields", len(fields)))
	return s, fields, nil
}

func loadFields(ctx context.Context, s *scenario.Scenario, selector, url string) ([]*extjs.Element, error) {
	if err := s.Navigate(ctx, url); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := s.WaitUntilAjaxLoadingDone(ctx); err != nil {
		return nil, fmt.Errorf("page never settled: %w", err)
	}
	fields, err := s.FindAll(ctx, extjs.ByCSS(selector))
	if err != nil {
		return nil, fmt.Errorf("failed to find fields %q: %w", selector, err)
	}
	return fields, nil
}

// closeScenario shuts the browser down even when ctx is already cancelled.
func closeScenario(ctx context.Context, s *scenario.Scenario, logger *zap.Logger) {
	shutdownCtx, cancel := context.WithTimeout(browser.Detach(ctx), 30*time.Second)
	defer cancel()
	if err := s.Close(shutdownCtx); err != nil {
		logger.Warn("Browser shutdown failed", zap.Error(err))
	}
}
