// Package cli provides the roas command-line interface.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/AngelCh415/ROAS_GO/internal/columns"
	"github.com/AngelCh415/ROAS_GO/internal/config"
	"github.com/AngelCh415/ROAS_GO/internal/ingest"
	"github.com/AngelCh415/ROAS_GO/internal/models"
	"github.com/AngelCh415/ROAS_GO/internal/report"
	"github.com/AngelCh415/ROAS_GO/internal/telemetry"
)

var Version = "0.1.0"

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "roas",
		Short:         "Reconcile product cost with ad performance exports",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

type runFlags struct {
	cost            []string
	performance     []string
	names           string
	format          string
	output          string
	raw             bool
	summary         bool
	enrich          bool
	multipleCost    bool
	selection       string
	costCols        map[string]string
	performanceCols map[string]string
	namesCols       map[string]string
	verbose         bool
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compute CPM, CPC, CTR, CR, ROAS and CPP per product",
		Example: `  roas run --cost cost.xlsx --performance creatives.xlsx --summary
  roas run --cost jan.csv --cost feb.csv --allow-multiple-cost --performance ads.csv --format csv --raw`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.StringSliceVar(&f.cost, "cost", nil, "cost file (product id + cost); repeatable")
	fl.StringSliceVar(&f.performance, "performance", nil, "creative/ad performance file; repeatable")
	fl.StringVar(&f.names, "names", "", "optional product id -> product name file")
	fl.StringVar(&f.format, "format", "table", "output format: table, csv, summary.csv or json")
	fl.StringVarP(&f.output, "output", "o", "", "write output to this file instead of stdout")
	fl.BoolVar(&f.raw, "raw", false, "keep full decimal precision")
	fl.BoolVar(&f.summary, "summary", false, "include the monthly summary; when unset, pipeline.include_summary decides (on by default), use --summary=false to omit it")
	fl.BoolVar(&f.enrich, "enrich", true, "attach product names from --names")
	fl.BoolVar(&f.multipleCost, "allow-multiple-cost", false, "accept more than one --cost file")
	fl.StringVar(&f.selection, "column-selection", "", "auto or manual")
	fl.StringToStringVar(&f.costCols, "cost-column", nil, "manual column for a cost role, e.g. cost=spend")
	fl.StringToStringVar(&f.performanceCols, "performance-column", nil, "manual column for a performance role")
	fl.StringToStringVar(&f.namesCols, "names-column", nil, "manual column for a name-table role")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging to stderr")
	_ = cmd.MarkFlagRequired("cost")
	_ = cmd.MarkFlagRequired("performance")
	return cmd
}

func runPipeline(cmd *cobra.Command, f runFlags) error {
	if err := checkFormat(f.format); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	lvl := cfg.LogLevel
	if f.verbose {
		lvl = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))

	opts, err := cfg.Pipeline.Options()
	if err != nil {
		return err
	}
	fl := cmd.Flags()
	changedBool(fl, "summary", &opts.IncludeSummary, f.summary)
	changedBool(fl, "enrich", &opts.EnrichmentEnabled, f.enrich)
	changedBool(fl, "allow-multiple-cost", &opts.AllowMultipleCostFiles, f.multipleCost)
	if fl.Changed("column-selection") {
		if opts.ColumnSelection, err = columns.ParseSelection(f.selection); err != nil {
			return err
		}
	}
	if opts.Overrides, err = overrides(opts.ColumnSelection, f); err != nil {
		return err
	}

	prec := report.Display
	if f.raw {
		prec = report.Raw
	}

	var files []*os.File
	defer func() {
		for _, fh := range files {
			fh.Close()
		}
	}()
	open := func(paths []string) ([]ingest.File, error) {
		out := make([]ingest.File, 0, len(paths))
		for _, p := range paths {
			fh, err := os.Open(p)
			if err != nil {
				return nil, err
			}
			files = append(files, fh)
			out = append(out, ingest.File{Name: p, Data: fh})
		}
		return out, nil
	}

	b := ingest.Batch{Options: opts}
	if b.Cost, err = open(f.cost); err != nil {
		return err
	}
	if b.Performance, err = open(f.performance); err != nil {
		return err
	}
	if f.names != "" {
		nf, err := open([]string{f.names})
		if err != nil {
			return err
		}
		b.Names = &nf[0]
	}

	res, err := ingest.NewETL(log, telemetry.New()).Run(cmd.Context(), b)
	if err != nil {
		return err
	}

	if f.format == "summary.csv" && res.Summary == nil {
		return fmt.Errorf("%w: summary.csv needs the summary, drop --summary=false", models.ErrInvalidOptions)
	}

	var w io.Writer = cmd.OutOrStdout()
	if f.output != "" {
		out, err := os.Create(f.output)
		if err != nil {
			return err
		}
		defer out.Close()
		w = out
	}
	return write(w, f.format, res, prec)
}

// changedBool lets an explicitly set flag override the configured default.
func changedBool(fl *pflag.FlagSet, name string, dst *bool, v bool) {
	if fl.Changed(name) {
		*dst = v
	}
}

func checkFormat(format string) error {
	switch format {
	case "", "table", "csv", "summary.csv", "json":
		return nil
	}
	return fmt.Errorf("%w: unknown format %q (want table, csv, summary.csv or json)", models.ErrInvalidOptions, format)
}

func write(w io.Writer, format string, res *models.Result, prec report.Precision) error {
	switch format {
	case "csv":
		return report.WriteCSV(w, res, prec)
	case "summary.csv":
		return report.WriteSummaryCSV(w, res, prec)
	case "json":
		return report.WriteJSON(w, res, prec)
	}
	return report.RenderTable(w, res, prec)
}

func overrides(sel columns.Selection, f runFlags) (map[models.TableKind]map[models.Role]string, error) {
	out := map[models.TableKind]map[models.Role]string{}
	for kind, m := range map[models.TableKind]map[string]string{
		models.KindCost:        f.costCols,
		models.KindPerformance: f.performanceCols,
		models.KindNames:       f.namesCols,
	} {
		for role, col := range m {
			if _, ok := columns.Def(models.Role(role)); !ok {
				return nil, fmt.Errorf("%w: unknown role %q for %s table", models.ErrInvalidOptions, role, kind)
			}
			if out[kind] == nil {
				out[kind] = map[models.Role]string{}
			}
			out[kind][models.Role(role)] = col
		}
	}
	if len(out) > 0 && sel != columns.SelectManual {
		return nil, fmt.Errorf("%w: column overrides need --column-selection manual", models.ErrInvalidOptions)
	}
	return out, nil
}
