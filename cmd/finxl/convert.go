package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kmarankit/Money-Stories-Final/internal/dataprocessing"
	"github.com/kmarankit/Money-Stories-Final/internal/exporter"
	"github.com/kmarankit/Money-Stories-Final/internal/files"
	"github.com/kmarankit/Money-Stories-Final/internal/validation"
	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

const (
	formatXLSX = "xlsx"
	formatCSV  = "csv"
)

type convertOptions struct {
	outDir  string
	format  string
	workers int
	bare    bool
}

// convertResult describes what happened to one input document.
type convertResult struct {
	Source         string
	Output         string
	Classification domain.Classification
	Rows           int
	Err            error
}

func newConvertCmd(g *globalOptions) *cobra.Command {
	opts := convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert <files or directories...>",
		Short: "Convert statement documents to xlsx or csv",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, g, opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.outDir, "output", "o", ".", "output directory")
	cmd.Flags().StringVar(&opts.format, "format", formatXLSX, "output format: xlsx or csv")
	cmd.Flags().IntVar(&opts.workers, "workers", runtime.NumCPU(), "documents converted concurrently")
	cmd.Flags().BoolVar(&opts.bare, "bare", false, "write workbooks without styling")
	return cmd
}

func runConvert(cmd *cobra.Command, g *globalOptions, opts convertOptions, args []string) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}

	opts.format = strings.ToLower(opts.format)
	if opts.format != formatXLSX && opts.format != formatCSV {
		return fmt.Errorf("invalid format %q: must be xlsx or csv", opts.format)
	}
	if opts.workers <= 0 {
		opts.workers = 1
	}

	docs, err := files.NewDiscovery("").Expand(args)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents found (looked for %s)", strings.Join(files.DocumentExtensions, ", "))
	}

	validator := validation.NewFileValidator(files.DocumentExtensions, 0, logger)
	if err := validator.ValidateOutputDirectory(opts.outDir); err != nil {
		return err
	}

	c := &converter{
		encoder: exporter.NewEncoder(
			exporter.WithStyling(cfg.Excel.Styled && !opts.bare),
			exporter.WithLogger(logger),
		),
		csv:       exporter.NewCSVWriter(logger),
		validator: validator,
		format:    opts.format,
		logger:    logger,
	}

	results := c.convertAll(cmd.Context(), docs, outputPaths(docs, opts.outDir, opts.format), opts.workers)
	printResults(cmd.OutOrStdout(), results)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

type converter struct {
	encoder   *exporter.Encoder
	csv       *exporter.CSVWriter
	validator *validation.FileValidator
	format    string
	logger    *slog.Logger
}

// convertAll converts docs with at most workers in flight. One failing
// document does not stop the others; a cancelled context does.
func (c *converter) convertAll(ctx context.Context, docs []files.FileInfo, outputs []string, workers int) []convertResult {
	results := make([]convertResult, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = convertResult{Source: doc.Path, Err: err}
				return err
			}
			results[i] = c.convert(doc.Path, outputs[i])
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (c *converter) convert(source, output string) convertResult {
	res := convertResult{Source: source, Output: output}
	if err := c.validator.ValidateFile(source); err != nil {
		res.Err = err
		return res
	}

	text, err := os.ReadFile(source)
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", source, err)
		return res
	}

	out, err := dataprocessing.ProcessText(string(text))
	if err != nil {
		res.Err = fmt.Errorf("process %s: %w", source, err)
		return res
	}
	res.Classification = out.Classification
	res.Rows = len(out.Records)

	if !out.HasData() {
		c.logger.Warn("No financial data found",
			slog.String("file", source),
			slog.Int("tables_found", out.TablesFound))
	}

	switch c.format {
	case formatCSV:
		err = c.csv.WriteFile(output, out.Records, exporter.WriteOptions{BOMPrefix: true, HeaderLabels: true})
	default:
		var data []byte
		data, err = c.encoder.Encode(out.Records, out.NumericColumns)
		if err == nil {
			err = os.WriteFile(output, data, 0o644)
		}
	}
	if err != nil {
		res.Err = fmt.Errorf("write %s: %w", output, err)
		return res
	}

	c.logger.Info("Document converted",
		slog.String("file", source),
		slog.String("output", output),
		slog.Int("rows", res.Rows))
	return res
}

// outputPaths names each output after its source. Sources sharing a base
// name get a numeric suffix so no output overwrites another.
func outputPaths(docs []files.FileInfo, dir, format string) []string {
	used := make(map[string]int, len(docs))
	out := make([]string, len(docs))
	for i, doc := range docs {
		base := strings.TrimSuffix(doc.Name, filepath.Ext(doc.Name))
		key := strings.ToLower(base)
		name := base
		if n := used[key]; n > 0 {
			name = base + "_" + strconv.Itoa(n+1)
		}
		used[key]++
		out[i] = filepath.Join(dir, name+"."+format)
	}
	return out
}

func printResults(w io.Writer, results []convertResult) {
	table := tablewriter.NewWriter(w)
	table.Header("Document", "Classification", "Rows", "Result")
	for _, r := range results {
		outcome := r.Output
		if r.Err != nil {
			outcome = "error: " + r.Err.Error()
		} else if r.Rows == 0 {
			outcome = r.Output + " (no data)"
		}
		class := string(r.Classification)
		if class == "" {
			class = "-"
		}
		_ = table.Append([]string{filepath.Base(r.Source), class, strconv.Itoa(r.Rows), outcome})
	}
	_ = table.Render()
}
