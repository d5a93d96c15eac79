package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kmarankit/Money-Stories-Final/internal/dataprocessing"
	"github.com/kmarankit/Money-Stories-Final/internal/files"
	"github.com/kmarankit/Money-Stories-Final/internal/validation"
	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

// headerPreviewWidth caps how much of a table header the candidate listing shows.
const headerPreviewWidth = 60

func newInspectCmd(g *globalOptions) *cobra.Command {
	var rows int
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show candidate tables and the rows that would be exported",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := g.setup()
			if err != nil {
				return err
			}
			if err := validation.NewFileValidator(files.DocumentExtensions, 0, logger).ValidateFile(args[0]); err != nil {
				return err
			}
			text, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return inspect(cmd.OutOrStdout(), string(text), rows)
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 10, "number of normalized rows to preview (0 for all)")
	return cmd
}

func inspect(w io.Writer, text string, rows int) error {
	tables := dataprocessing.Segment(text)
	if len(tables) == 0 {
		fmt.Fprintln(w, "No tables found.")
		return nil
	}

	candidates := tablewriter.NewWriter(w)
	candidates.Header("#", "Classification", "Rows", "Header")
	for i, table := range tables {
		class, err := dataprocessing.Classify(table)
		if err != nil {
			return fmt.Errorf("table %d: %w", i+1, err)
		}
		_ = candidates.Append([]string{
			strconv.Itoa(i + 1),
			string(class),
			strconv.Itoa(len(table.DataRows())),
			truncate(strings.Join(table.Header(), " | "), headerPreviewWidth),
		})
	}
	if err := candidates.Render(); err != nil {
		return err
	}

	res, err := dataprocessing.ProcessText(text)
	if err != nil {
		return err
	}
	if !res.HasData() {
		fmt.Fprintln(w, "\nNo annual or quarterly Profit & Loss table selected.")
		return nil
	}

	fmt.Fprintf(w, "\nSelected %s table: %d rows, numeric columns: %s\n",
		res.Classification, len(res.Records), strings.Join(res.NumericColumns, ", "))
	return previewRecords(w, res.Records, rows)
}

func previewRecords(w io.Writer, records []domain.Record, limit int) error {
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	cols := domain.Columns(records)

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	table := tablewriter.NewWriter(w)
	table.Header(header...)
	for _, rec := range records {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = rec.Value(c).String()
		}
		_ = table.Append(row)
	}
	return table.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
